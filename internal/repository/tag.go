package repository

import (
	"context"
	"errors"

	"foodgram/internal/cache"
	"foodgram/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines read and import operations for recipe tags.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	// GetOrCreate finds a tag by name and slug, creating it when absent.
	// Returns true when a new row was inserted.
	GetOrCreate(ctx context.Context, tag *models.Tag) (bool, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	return cache.Aside(ctx, cache.TagListKey, cache.TagListTTL, func() ([]models.Tag, error) {
		var tags []models.Tag
		if err := r.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		return tags, nil
	})
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

func (r *tagRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) GetOrCreate(ctx context.Context, tag *models.Tag) (bool, error) {
	var existing models.Tag
	err := r.db.WithContext(ctx).
		Where("name = ? AND slug = ?", tag.Name, tag.Slug).
		First(&existing).Error
	if err == nil {
		*tag = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, models.NewInternalError(err)
	}

	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if isUniqueConstraintError(err) {
			return false, models.NewConflictError("A tag with this name or slug already exists")
		}
		return false, models.NewInternalError(err)
	}
	cache.InvalidateTags(ctx)
	return true, nil
}
