package repository

import (
	"context"
	"errors"

	"foodgram/internal/cache"
	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/shortcode"

	"gorm.io/gorm"
)

// RecipeFilter narrows recipe listings. Zero values mean "no filter".
type RecipeFilter struct {
	AuthorID    uint
	TagSlugs    []string
	FavoritedBy uint
	InCartOf    uint
	Limit       int
	Offset      int
}

// ShoppingListItem is one aggregated row of a user's shopping list.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// RecipeRepository defines persistence operations for recipes and their
// favorite/cart edges and short links.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error
	Update(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error)
	Count(ctx context.Context, filter RecipeFilter) (int64, error)
	Delete(ctx context.Context, id uint) error
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
	// CountByImage reports how many recipes reference a stored image file.
	CountByImage(ctx context.Context, imagePath string) (int64, error)

	AddFavorite(ctx context.Context, userID, recipeID uint) error
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	GetFavoriteRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error)

	AddToCart(ctx context.Context, userID, recipeID uint) error
	RemoveFromCart(ctx context.Context, userID, recipeID uint) error
	GetCartRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error)
	AggregateShoppingList(ctx context.Context, userID uint) ([]ShoppingListItem, error)

	GetShortLinkByRecipeID(ctx context.Context, recipeID uint) (*models.ShortLink, error)
	GetShortLinkByCode(ctx context.Context, code string) (*models.ShortLink, error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// allocateShortLink inserts a short link for the recipe, trying one random
// code per length from the shortest up. Collisions with existing codes move
// on to the next length.
func allocateShortLink(tx *gorm.DB, recipeID uint) error {
	for length := shortcode.MinLen; length <= shortcode.MaxLen; length++ {
		code, err := shortcode.Random(length)
		if err != nil {
			return models.NewInternalError(err)
		}

		var count int64
		if err := tx.Model(&models.ShortLink{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		if count > 0 {
			continue
		}

		link := models.ShortLink{RecipeID: recipeID, Code: code}
		if err := tx.Create(&link).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}
	return models.NewInternalError(errors.New("could not allocate a unique short code"))
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Create", "recipes")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients", "Author").Create(recipe).Error; err != nil {
			return err
		}

		for i := range ingredients {
			ingredients[i].RecipeID = recipe.ID
		}
		if len(ingredients) > 0 {
			if err := tx.Create(&ingredients).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}

		return allocateShortLink(tx, recipe.ID)
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("You already have a recipe with this name")
		}
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients", "Author").Save(recipe).Error; err != nil {
			return err
		}

		// Ingredient rows are replaced wholesale
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		for i := range ingredients {
			ingredients[i].ID = 0
			ingredients[i].RecipeID = recipe.ID
		}
		if len(ingredients) > 0 {
			if err := tx.Create(&ingredients).Error; err != nil {
				return err
			}
		}

		return tx.Model(recipe).Association("Tags").Replace(tags)
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("You already have a recipe with this name")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateRecipe(ctx, recipe.ID)
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	return cache.Aside(ctx, cache.RecipeKey(id), cache.RecipeTTL, func() (*models.Recipe, error) {
		var recipe models.Recipe
		err := r.db.WithContext(ctx).
			Preload("Author").
			Preload("Tags").
			Preload("Ingredients.Ingredient").
			First(&recipe, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Recipe", id)
			}
			return nil, models.NewInternalError(err)
		}
		return &recipe, nil
	})
}

// applyFilter builds the filtered recipe query shared by List and Count.
func (r *recipeRepository) applyFilter(ctx context.Context, filter RecipeFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs).
			Distinct("recipes.*")
	}
	if filter.FavoritedBy != 0 {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", filter.FavoritedBy)
	}
	if filter.InCartOf != 0 {
		query = query.
			Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
			Where("shopping_carts.user_id = ?", filter.InCartOf)
	}

	return query
}

func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "List", "recipes")
	defer span.End()

	var recipes []models.Recipe
	err := r.applyFilter(ctx, filter).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC, recipes.id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&recipes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

func (r *recipeRepository) Count(ctx context.Context, filter RecipeFilter) (int64, error) {
	var count int64
	query := r.applyFilter(ctx, filter)
	if len(filter.TagSlugs) > 0 {
		query = query.Distinct("recipes.id")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	// The short link code is needed after commit to drop its cache entry
	var link models.ShortLink
	hasLink := r.db.WithContext(ctx).Where("recipe_id = ?", id).First(&link).Error == nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SQLite builds don't enforce the FK cascades GORM declares, so
		// dependent rows are removed explicitly.
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.ShortLink{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Recipe{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateRecipe(ctx, id)
	if hasLink {
		cache.InvalidateShortLink(ctx, link.Code)
	}
	return nil
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	query := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

func (r *recipeRepository) CountByImage(ctx context.Context, imagePath string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("image = ?", imagePath).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *recipeRepository) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := r.db.WithContext(ctx).Create(&fav).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Recipe is already in favorites")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Favorite", recipeID)
	}
	return nil
}

func (r *recipeRepository) GetFavoriteRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *recipeRepository) AddToCart(ctx context.Context, userID, recipeID uint) error {
	item := models.ShoppingCart{UserID: userID, RecipeID: recipeID}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Recipe is already in the shopping cart")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *recipeRepository) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingCart{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Shopping cart item", recipeID)
	}
	return nil
}

func (r *recipeRepository) GetCartRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.ShoppingCart{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *recipeRepository) AggregateShoppingList(ctx context.Context, userID uint) ([]ShoppingListItem, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "AggregateShoppingList", "recipe_ingredients")
	defer span.End()

	var items []ShoppingListItem
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *recipeRepository) GetShortLinkByRecipeID(ctx context.Context, recipeID uint) (*models.ShortLink, error) {
	var link models.ShortLink
	if err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Short link", recipeID)
		}
		return nil, models.NewInternalError(err)
	}
	return &link, nil
}

func (r *recipeRepository) GetShortLinkByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	return cache.Aside(ctx, cache.ShortLinkKey(code), cache.ShortLinkTTL, func() (*models.ShortLink, error) {
		var link models.ShortLink
		if err := r.db.WithContext(ctx).Where("code = ?", code).First(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Short link", code)
			}
			return nil, models.NewInternalError(err)
		}
		return &link, nil
	})
}
