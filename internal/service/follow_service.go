package service

import (
	"context"

	"foodgram/internal/models"
	"foodgram/internal/repository"
)

// FollowService manages subscriptions between users.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	recipeRepo repository.RecipeRepository
}

// Subscription bundles an author with their recipe preview for responses.
type Subscription struct {
	Author      models.User
	Recipes     []models.Recipe
	RecipeCount int64
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, recipeRepo repository.RecipeRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo, recipeRepo: recipeRepo}
}

// Subscribe creates a follow edge from userID to authorID.
func (s *FollowService) Subscribe(ctx context.Context, userID, authorID uint) (*Subscription, error) {
	if userID == authorID {
		return nil, models.NewValidationError("You cannot subscribe to yourself")
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if err := s.followRepo.Create(ctx, userID, authorID); err != nil {
		return nil, err
	}

	return s.buildSubscription(ctx, *author, 0)
}

// Unsubscribe removes the follow edge from userID to authorID.
func (s *FollowService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return err
	}
	return s.followRepo.Delete(ctx, userID, authorID)
}

// IsSubscribed reports whether userID follows authorID. Anonymous viewers
// (userID zero) are never subscribed.
func (s *FollowService) IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, authorID)
}

// FollowedAuthorSet returns the subset of authorIDs that userID follows,
// as a set for constant-time membership checks.
func (s *FollowService) FollowedAuthorSet(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if userID == 0 {
		return set, nil
	}
	ids, err := s.followRepo.GetFollowedAuthorIDs(ctx, userID, authorIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// ListSubscriptions returns a page of followed authors, each with up to
// recipesLimit of their latest recipes (zero means no limit).
func (s *FollowService) ListSubscriptions(ctx context.Context, userID uint, limit, offset, recipesLimit int) ([]Subscription, int64, error) {
	authors, err := s.followRepo.ListAuthors(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.followRepo.CountAuthors(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	authorIDs := make([]uint, len(authors))
	for i, a := range authors {
		authorIDs[i] = a.ID
	}
	counts, err := s.recipeRepo.CountByAuthors(ctx, authorIDs)
	if err != nil {
		return nil, 0, err
	}

	subs := make([]Subscription, 0, len(authors))
	for _, author := range authors {
		recipes, err := s.recipeRepo.ListByAuthor(ctx, author.ID, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, Subscription{
			Author:      author,
			Recipes:     recipes,
			RecipeCount: counts[author.ID],
		})
	}
	return subs, total, nil
}

func (s *FollowService) buildSubscription(ctx context.Context, author models.User, recipesLimit int) (*Subscription, error) {
	recipes, err := s.recipeRepo.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	counts, err := s.recipeRepo.CountByAuthors(ctx, []uint{author.ID})
	if err != nil {
		return nil, err
	}
	return &Subscription{Author: author, Recipes: recipes, RecipeCount: counts[author.ID]}, nil
}
