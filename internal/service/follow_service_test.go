package service

import (
	"context"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newFollowService(db *gorm.DB) *FollowService {
	return NewFollowService(
		repository.NewFollowRepository(db),
		repository.NewUserRepository(db),
		repository.NewRecipeRepository(db),
	)
}

func TestFollowService_Subscribe(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := newFollowService(db)
	ctx := context.Background()

	follower := testutil.MakeUser(t, db)
	author := testutil.MakeUser(t, db)
	testutil.MakeRecipe(t, db, author.ID)
	testutil.MakeRecipe(t, db, author.ID)

	sub, err := svc.Subscribe(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, sub.Author.ID)
	assert.EqualValues(t, 2, sub.RecipeCount)
	assert.Len(t, sub.Recipes, 2)

	ok, err := svc.IsSubscribed(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFollowService_Subscribe_Errors(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := newFollowService(db)
	ctx := context.Background()

	follower := testutil.MakeUser(t, db)
	author := testutil.MakeUser(t, db)

	// Self-subscription
	_, err := svc.Subscribe(ctx, follower.ID, follower.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	// Unknown author
	_, err = svc.Subscribe(ctx, follower.ID, 9999)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	// Duplicate subscription
	_, err = svc.Subscribe(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, follower.ID, author.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestFollowService_Unsubscribe(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := newFollowService(db)
	ctx := context.Background()

	follower := testutil.MakeUser(t, db)
	author := testutil.MakeUser(t, db)

	// Not subscribed yet
	err := svc.Unsubscribe(ctx, follower.ID, author.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	_, err = svc.Subscribe(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(ctx, follower.ID, author.ID))

	ok, err := svc.IsSubscribed(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowService_ListSubscriptions(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := newFollowService(db)
	ctx := context.Background()

	follower := testutil.MakeUser(t, db)
	a1 := testutil.MakeUser(t, db)
	a2 := testutil.MakeUser(t, db)
	for i := 0; i < 3; i++ {
		testutil.MakeRecipe(t, db, a1.ID)
	}

	_, err := svc.Subscribe(ctx, follower.ID, a1.ID)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, follower.ID, a2.ID)
	require.NoError(t, err)

	subs, total, err := svc.ListSubscriptions(ctx, follower.ID, 10, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, subs, 2)

	for _, sub := range subs {
		if sub.Author.ID == a1.ID {
			// recipes_limit trims the preview but not the count
			assert.Len(t, sub.Recipes, 2)
			assert.EqualValues(t, 3, sub.RecipeCount)
		}
	}

	// Anonymous check helper
	set, err := svc.FollowedAuthorSet(ctx, 0, []uint{a1.ID})
	require.NoError(t, err)
	assert.Empty(t, set)

	set, err = svc.FollowedAuthorSet(ctx, follower.ID, []uint{a1.ID, a2.ID})
	require.NoError(t, err)
	assert.True(t, set[a1.ID])
	assert.True(t, set[a2.ID])
}
