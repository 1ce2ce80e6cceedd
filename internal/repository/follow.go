package repository

import (
	"context"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for subscription edges.
type FollowRepository interface {
	Create(ctx context.Context, userID, authorID uint) error
	Delete(ctx context.Context, userID, authorID uint) error
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
	// GetFollowedAuthorIDs returns the subset of authorIDs the user follows.
	GetFollowedAuthorIDs(ctx context.Context, userID uint, authorIDs []uint) ([]uint, error)
	ListAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	CountAuthors(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, userID, authorID uint) error {
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	if err := r.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("You are already subscribed to this author")
		}
		if isCheckConstraintError(err) {
			return models.NewValidationError("You cannot subscribe to yourself")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, userID, authorID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Subscription", authorID)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) GetFollowedAuthorIDs(ctx context.Context, userID uint, authorIDs []uint) ([]uint, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var followed []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &followed).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return followed, nil
}

func (r *followRepository) ListAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var authors []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return authors, nil
}

func (r *followRepository) CountAuthors(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
