package seed

import (
	"context"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeederRun(t *testing.T) {
	db := testutil.OpenTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Run(context.Background(), Options{NumUsers: 5, NumRecipes: 10}))

	var userCount, recipeCount, tagCount, linkCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipeCount).Error)
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	require.NoError(t, db.Model(&models.ShortLink{}).Count(&linkCount).Error)

	assert.Equal(t, int64(5), userCount)
	assert.Equal(t, int64(10), recipeCount)
	assert.Equal(t, int64(len(defaultTags)), tagCount)
	// Every seeded recipe gets a short link
	assert.Equal(t, recipeCount, linkCount)

	var followCount int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&followCount).Error)
	assert.Positive(t, followCount)
}

func TestSeederClearAll(t *testing.T) {
	db := testutil.OpenTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Run(context.Background(), Options{NumUsers: 3, NumRecipes: 4}))
	require.NoError(t, s.ClearAll())

	var userCount, recipeCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipeCount).Error)
	assert.Zero(t, userCount)
	assert.Zero(t, recipeCount)
}

func TestSeederIdempotentReferenceData(t *testing.T) {
	db := testutil.OpenTestDB(t)
	s := NewSeeder(db)

	_, err := s.seedTags()
	require.NoError(t, err)
	_, err = s.seedTags()
	require.NoError(t, err)

	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.Equal(t, int64(len(defaultTags)), tagCount)
}
