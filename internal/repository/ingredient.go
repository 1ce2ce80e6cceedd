package repository

import (
	"context"
	"errors"

	"foodgram/internal/cache"
	"foodgram/internal/models"

	"gorm.io/gorm"
)

// IngredientRepository defines read and import operations for ingredients.
type IngredientRepository interface {
	// Search returns ingredients whose name starts with the given prefix,
	// case-insensitively. An empty prefix returns everything.
	Search(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetByID(ctx context.Context, id uint) (*models.Ingredient, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error)
	// GetOrCreate finds an ingredient by name and unit, creating it when
	// absent. Returns true when a new row was inserted.
	GetOrCreate(ctx context.Context, ingredient *models.Ingredient) (bool, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository returns a new IngredientRepository implementation.
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) Search(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	// The full catalog is the common autocomplete bootstrap request, so it
	// is served cache-aside. Prefix queries stay on the indexed LIKE.
	if namePrefix == "" {
		return cache.Aside(ctx, cache.IngredientListKey, cache.IngredientListTTL, func() ([]models.Ingredient, error) {
			return r.search(ctx, "")
		})
	}
	return r.search(ctx, namePrefix)
}

func (r *ingredientRepository) search(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	query := r.db.WithContext(ctx).Order("name")
	if namePrefix != "" {
		// LOWER + LIKE keeps the prefix match portable between Postgres and SQLite
		query = query.Where("LOWER(name) LIKE LOWER(?)", namePrefix+"%")
	}
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ingredients, nil
}

func (r *ingredientRepository) GetByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Ingredient", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &ingredient, nil
}

func (r *ingredientRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ingredients []models.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ingredients, nil
}

func (r *ingredientRepository) GetOrCreate(ctx context.Context, ingredient *models.Ingredient) (bool, error) {
	var existing models.Ingredient
	err := r.db.WithContext(ctx).
		Where("name = ? AND measurement_unit = ?", ingredient.Name, ingredient.MeasurementUnit).
		First(&existing).Error
	if err == nil {
		*ingredient = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, models.NewInternalError(err)
	}

	if err := r.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		if isUniqueConstraintError(err) {
			return false, models.NewConflictError("An ingredient with this name and unit already exists")
		}
		return false, models.NewInternalError(err)
	}
	cache.InvalidateIngredients(ctx)
	return true, nil
}
