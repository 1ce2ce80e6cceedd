package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// IngredientRef names one ingredient row in a recipe payload.
type IngredientRef struct {
	ID     uint
	Amount int
}

// RecipeInput carries the writable fields of a recipe. Image holds a base64
// data URI and may be empty on update to keep the stored image.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Ingredients []IngredientRef
	TagIDs      []uint
}

// RecipeService handles recipe CRUD, favorites and cart edges.
type RecipeService struct {
	recipeRepo     repository.RecipeRepository
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
	media          *MediaService
}

// NewRecipeService returns a new RecipeService.
func NewRecipeService(recipeRepo repository.RecipeRepository, tagRepo repository.TagRepository, ingredientRepo repository.IngredientRepository, media *MediaService) *RecipeService {
	return &RecipeService{
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		media:          media,
	}
}

// validateInput checks field bounds and resolves tag and ingredient
// references. Returns the resolved associations ready for persistence.
func (s *RecipeService) validateInput(ctx context.Context, in RecipeInput) ([]models.RecipeIngredient, []models.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, models.NewValidationError("Recipe name is required")
	}
	// Length limits count characters, not bytes
	if utf8.RuneCountInString(name) > models.MaxRecipeNameLen {
		return nil, nil, models.NewValidationError(fmt.Sprintf("Recipe name must not exceed %d characters", models.MaxRecipeNameLen))
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, nil, models.NewValidationError("Recipe description is required")
	}
	if utf8.RuneCountInString(in.Text) > models.MaxRecipeTextLen {
		return nil, nil, models.NewValidationError(fmt.Sprintf("Recipe description must not exceed %d characters", models.MaxRecipeTextLen))
	}
	if in.CookingTime < models.MinCookingTime || in.CookingTime > models.MaxCookingTime {
		return nil, nil, models.NewValidationError(fmt.Sprintf("Cooking time must be between %d and %d minutes", models.MinCookingTime, models.MaxCookingTime))
	}

	if len(in.Ingredients) == 0 {
		return nil, nil, models.NewValidationError("At least one ingredient is required")
	}
	seenIngredients := make(map[uint]bool, len(in.Ingredients))
	ingredientIDs := make([]uint, 0, len(in.Ingredients))
	for _, ref := range in.Ingredients {
		if seenIngredients[ref.ID] {
			return nil, nil, models.NewValidationError("Duplicate ingredient in recipe")
		}
		seenIngredients[ref.ID] = true
		if ref.Amount < models.MinIngredientAmount || ref.Amount > models.MaxIngredientAmount {
			return nil, nil, models.NewValidationError(fmt.Sprintf("Ingredient amount must be between %d and %d", models.MinIngredientAmount, models.MaxIngredientAmount))
		}
		ingredientIDs = append(ingredientIDs, ref.ID)
	}

	if len(in.TagIDs) == 0 {
		return nil, nil, models.NewValidationError("At least one tag is required")
	}
	seenTags := make(map[uint]bool, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if seenTags[id] {
			return nil, nil, models.NewValidationError("Duplicate tag in recipe")
		}
		seenTags[id] = true
	}

	ingredients, err := s.ingredientRepo.GetByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(ingredients) != len(ingredientIDs) {
		return nil, nil, models.NewValidationError("Recipe references an unknown ingredient")
	}

	tags, err := s.tagRepo.GetByIDs(ctx, in.TagIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(in.TagIDs) {
		return nil, nil, models.NewValidationError("Recipe references an unknown tag")
	}

	rows := make([]models.RecipeIngredient, len(in.Ingredients))
	for i, ref := range in.Ingredients {
		rows[i] = models.RecipeIngredient{IngredientID: ref.ID, Amount: ref.Amount}
	}
	return rows, tags, nil
}

// Create validates the payload, stores the image and creates the recipe
// with its associations and short link in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error) {
	span, ctx := observability.NewSpan(ctx, "recipe.create")
	defer span.End()

	rows, tags, err := s.validateInput(ctx, in)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if in.Image == "" {
		return nil, models.NewValidationError("Recipe image is required")
	}

	imagePath, err := s.media.SaveDataURI(in.Image, "recipes")
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	recipe := &models.Recipe{
		Name:        strings.TrimSpace(in.Name),
		AuthorID:    authorID,
		Text:        in.Text,
		Image:       imagePath,
		CookingTime: in.CookingTime,
	}
	if err := s.recipeRepo.Create(ctx, recipe, rows, tags); err != nil {
		span.SetError(err)
		s.removeImageIfUnused(ctx, imagePath)
		return nil, err
	}

	span.AddAttributes(attribute.Int("recipe.id", int(recipe.ID)))
	observability.RecipesCreated.Inc()
	return s.recipeRepo.GetByID(ctx, recipe.ID)
}

// Update replaces the recipe's fields and associations. Only the author may
// update a recipe.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uint, in RecipeInput) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, models.NewForbiddenError("Only the author can edit this recipe")
	}

	rows, tags, err := s.validateInput(ctx, in)
	if err != nil {
		return nil, err
	}

	oldImage := recipe.Image
	newImage := ""
	if in.Image != "" {
		newImage, err = s.media.SaveDataURI(in.Image, "recipes")
		if err != nil {
			return nil, err
		}
		recipe.Image = newImage
	}

	recipe.Name = strings.TrimSpace(in.Name)
	recipe.Text = in.Text
	recipe.CookingTime = in.CookingTime
	// Associations loaded by GetByID must not be saved as-is
	recipe.Tags = nil
	recipe.Ingredients = nil

	if err := s.recipeRepo.Update(ctx, recipe, rows, tags); err != nil {
		if newImage != "" {
			s.removeImageIfUnused(ctx, newImage)
		}
		return nil, err
	}
	if newImage != "" && oldImage != newImage {
		s.removeImageIfUnused(ctx, oldImage)
	}

	return s.recipeRepo.GetByID(ctx, recipe.ID)
}

// Delete removes the recipe. Only the author may delete it.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID {
		return models.NewForbiddenError("Only the author can delete this recipe")
	}

	if err := s.recipeRepo.Delete(ctx, recipeID); err != nil {
		return err
	}
	s.removeImageIfUnused(ctx, recipe.Image)
	return nil
}

// removeImageIfUnused deletes the stored file unless another recipe still
// points at it. Images are content-addressed, so identical uploads share
// one file on disk.
func (s *RecipeService) removeImageIfUnused(ctx context.Context, imagePath string) {
	if imagePath == "" {
		return
	}
	refs, err := s.recipeRepo.CountByImage(ctx, imagePath)
	if err != nil || refs > 0 {
		return
	}
	s.media.Remove(imagePath)
}

// Get returns one recipe with its author, tags and ingredients.
func (s *RecipeService) Get(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	return s.recipeRepo.GetByID(ctx, recipeID)
}

// List returns a filtered page of recipes plus the total count.
func (s *RecipeService) List(ctx context.Context, filter repository.RecipeFilter) ([]models.Recipe, int64, error) {
	recipes, err := s.recipeRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recipeRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// FavoriteSet returns which of recipeIDs the user has favorited.
func (s *RecipeService) FavoriteSet(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if userID == 0 {
		return set, nil
	}
	ids, err := s.recipeRepo.GetFavoriteRecipeIDs(ctx, userID, recipeIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CartSet returns which of recipeIDs are in the user's shopping cart.
func (s *RecipeService) CartSet(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if userID == 0 {
		return set, nil
	}
	ids, err := s.recipeRepo.GetCartRecipeIDs(ctx, userID, recipeIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Favorite adds the recipe to the user's favorites and returns it.
func (s *RecipeService) Favorite(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.recipeRepo.AddFavorite(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Unfavorite removes the recipe from the user's favorites.
func (s *RecipeService) Unfavorite(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.recipeRepo.GetByID(ctx, recipeID); err != nil {
		return err
	}
	return s.recipeRepo.RemoveFavorite(ctx, userID, recipeID)
}

// AddToCart adds the recipe to the user's shopping cart and returns it.
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.recipeRepo.AddToCart(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	return recipe, nil
}

// RemoveFromCart removes the recipe from the user's shopping cart.
func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.recipeRepo.GetByID(ctx, recipeID); err != nil {
		return err
	}
	return s.recipeRepo.RemoveFromCart(ctx, userID, recipeID)
}

// GetShortCode returns the short code allocated for the recipe.
func (s *RecipeService) GetShortCode(ctx context.Context, recipeID uint) (string, error) {
	if _, err := s.recipeRepo.GetByID(ctx, recipeID); err != nil {
		return "", err
	}
	link, err := s.recipeRepo.GetShortLinkByRecipeID(ctx, recipeID)
	if err != nil {
		return "", err
	}
	return link.Code, nil
}

// ResolveShortCode maps a short code back to its recipe ID.
func (s *RecipeService) ResolveShortCode(ctx context.Context, code string) (uint, error) {
	link, err := s.recipeRepo.GetShortLinkByCode(ctx, code)
	if err != nil {
		return 0, err
	}
	observability.ShortLinkRedirects.Inc()
	return link.RecipeID, nil
}
