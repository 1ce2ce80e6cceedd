// Package seed provides database seeding utilities for development and demos.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"foodgram/internal/models"
	"foodgram/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "Password123"

// Options configuration for the seeder
type Options struct {
	NumUsers   int
	NumRecipes int
}

var defaultTags = []models.Tag{
	{Name: "Breakfast", Slug: "breakfast"},
	{Name: "Lunch", Slug: "lunch"},
	{Name: "Dinner", Slug: "dinner"},
	{Name: "Dessert", Slug: "dessert"},
}

var defaultIngredients = []models.Ingredient{
	{Name: "flour", MeasurementUnit: "g"},
	{Name: "sugar", MeasurementUnit: "g"},
	{Name: "salt", MeasurementUnit: "g"},
	{Name: "butter", MeasurementUnit: "g"},
	{Name: "milk", MeasurementUnit: "ml"},
	{Name: "water", MeasurementUnit: "ml"},
	{Name: "olive oil", MeasurementUnit: "ml"},
	{Name: "egg", MeasurementUnit: "pcs"},
	{Name: "onion", MeasurementUnit: "pcs"},
	{Name: "garlic clove", MeasurementUnit: "pcs"},
	{Name: "tomato", MeasurementUnit: "pcs"},
	{Name: "chicken breast", MeasurementUnit: "g"},
	{Name: "rice", MeasurementUnit: "g"},
	{Name: "pasta", MeasurementUnit: "g"},
	{Name: "cheese", MeasurementUnit: "g"},
}

// Seeder populates the database with demo data.
type Seeder struct {
	db         *gorm.DB
	recipeRepo repository.RecipeRepository
}

// NewSeeder returns a Seeder for the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, recipeRepo: repository.NewRecipeRepository(db)}
}

// ClearAll removes every seeded record. Dependent tables go first so the
// deletes succeed regardless of foreign key enforcement.
func (s *Seeder) ClearAll() error {
	tables := []string{
		"short_links", "shopping_carts", "favorites", "recipe_ingredients",
		"recipe_tags", "recipes", "follows", "ingredients", "tags", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	log.Println("Database cleared")
	return nil
}

// Run seeds tags, ingredients, users, recipes and social edges.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	tags, err := s.seedTags()
	if err != nil {
		return err
	}
	ingredients, err := s.seedIngredients()
	if err != nil {
		return err
	}

	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return err
	}

	recipes, err := s.seedRecipes(ctx, opts.NumRecipes, users, tags, ingredients)
	if err != nil {
		return err
	}

	if err := s.seedEdges(users, recipes); err != nil {
		return err
	}

	log.Printf("Seeded %d users, %d recipes (password for all accounts: %s)",
		len(users), len(recipes), DefaultPassword)
	return nil
}

func (s *Seeder) seedTags() ([]models.Tag, error) {
	tags := make([]models.Tag, len(defaultTags))
	copy(tags, defaultTags)
	for i := range tags {
		if err := s.db.Where(models.Tag{Slug: tags[i].Slug}).
			FirstOrCreate(&tags[i]).Error; err != nil {
			return nil, fmt.Errorf("seeding tag %s: %w", tags[i].Slug, err)
		}
	}
	return tags, nil
}

func (s *Seeder) seedIngredients() ([]models.Ingredient, error) {
	ingredients := make([]models.Ingredient, len(defaultIngredients))
	copy(ingredients, defaultIngredients)
	for i := range ingredients {
		if err := s.db.Where(models.Ingredient{
			Name:            ingredients[i].Name,
			MeasurementUnit: ingredients[i].MeasurementUnit,
		}).FirstOrCreate(&ingredients[i]).Error; err != nil {
			return nil, fmt.Errorf("seeding ingredient %s: %w", ingredients[i].Name, err)
		}
	}
	return ingredients, nil
}

func (s *Seeder) seedUsers(n int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := models.User{
			Email:     fmt.Sprintf("user%d@%s", i, gofakeit.DomainName()),
			Username:  fmt.Sprintf("%s%d", gofakeit.Username(), i),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Password:  string(hashed),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("seeding user %d: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedRecipes(ctx context.Context, n int, users []models.User, tags []models.Tag, ingredients []models.Ingredient) ([]models.Recipe, error) {
	if len(users) == 0 {
		return nil, nil
	}

	recipes := make([]models.Recipe, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]

		recipe := &models.Recipe{
			Name:     fmt.Sprintf("%s #%d", gofakeit.Dinner(), i+1),
			AuthorID: author.ID,
			Text:     gofakeit.Paragraph(1, 3, 12, " "),
			// Placeholder path; seeded recipes have no uploaded file
			Image:       "recipes/placeholder.png",
			CookingTime: 5 + rand.Intn(120),
		}

		rows := pickIngredients(ingredients)
		recipeTags := []models.Tag{tags[rand.Intn(len(tags))]}

		if err := s.recipeRepo.Create(ctx, recipe, rows, recipeTags); err != nil {
			return nil, fmt.Errorf("seeding recipe %d: %w", i, err)
		}
		recipes = append(recipes, *recipe)
	}
	return recipes, nil
}

func pickIngredients(ingredients []models.Ingredient) []models.RecipeIngredient {
	count := 2 + rand.Intn(4)
	perm := rand.Perm(len(ingredients))
	if count > len(perm) {
		count = len(perm)
	}

	rows := make([]models.RecipeIngredient, 0, count)
	for _, idx := range perm[:count] {
		rows = append(rows, models.RecipeIngredient{
			IngredientID: ingredients[idx].ID,
			Amount:       10 + rand.Intn(500),
		})
	}
	return rows
}

// seedEdges creates follows, favorites and cart entries. Each user follows
// a handful of others and stars a few random recipes.
func (s *Seeder) seedEdges(users []models.User, recipes []models.Recipe) error {
	for i, user := range users {
		for j := 1; j <= 2 && j < len(users); j++ {
			author := users[(i+j)%len(users)]
			if author.ID == user.ID {
				continue
			}
			follow := models.Follow{UserID: user.ID, AuthorID: author.ID}
			if err := s.db.Where(models.Follow{UserID: user.ID, AuthorID: author.ID}).
				FirstOrCreate(&follow).Error; err != nil {
				return fmt.Errorf("seeding follow: %w", err)
			}
		}

		for _, idx := range rand.Perm(len(recipes)) {
			if idx%3 != i%3 {
				continue
			}
			recipe := recipes[idx]
			if err := s.db.Where(models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).
				FirstOrCreate(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error; err != nil {
				return fmt.Errorf("seeding favorite: %w", err)
			}
			if idx%2 == 0 {
				if err := s.db.Where(models.ShoppingCart{UserID: user.ID, RecipeID: recipe.ID}).
					FirstOrCreate(&models.ShoppingCart{UserID: user.ID, RecipeID: recipe.ID}).Error; err != nil {
					return fmt.Errorf("seeding cart entry: %w", err)
				}
			}
		}
	}
	return nil
}
