package repository

import (
	"context"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagRepository_ListAndGet(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	breakfast := &models.Tag{Name: "Breakfast", Slug: "breakfast"}
	dinner := &models.Tag{Name: "Dinner", Slug: "dinner"}
	require.NoError(t, db.Create(breakfast).Error)
	require.NoError(t, db.Create(dinner).Error)

	tags, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	got, err := repo.GetByID(ctx, breakfast.ID)
	require.NoError(t, err)
	assert.Equal(t, "breakfast", got.Slug)

	_, err = repo.GetByID(ctx, 999)
	assert.Error(t, err)

	bySlug, err := repo.GetBySlugs(ctx, []string{"dinner", "missing"})
	require.NoError(t, err)
	require.Len(t, bySlug, 1)
	assert.Equal(t, dinner.ID, bySlug[0].ID)

	byIDs, err := repo.GetByIDs(ctx, []uint{breakfast.ID, dinner.ID})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)
}

func TestTagRepository_GetOrCreate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	tag := &models.Tag{Name: "Lunch", Slug: "lunch"}
	created, err := repo.GetOrCreate(ctx, tag)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, tag.ID)

	again := &models.Tag{Name: "Lunch", Slug: "lunch"}
	created, err = repo.GetOrCreate(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tag.ID, again.ID)
}

func TestIngredientRepository_Search(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	for _, row := range []models.Ingredient{
		{Name: "Sugar", MeasurementUnit: "g"},
		{Name: "sunflower oil", MeasurementUnit: "ml"},
		{Name: "Salt", MeasurementUnit: "g"},
		{Name: "Pepper", MeasurementUnit: "g"},
	} {
		r := row
		require.NoError(t, db.Create(&r).Error)
	}

	// Case-insensitive prefix match
	found, err := repo.Search(ctx, "su")
	require.NoError(t, err)
	require.Len(t, found, 2)

	// Empty prefix returns everything, name-sorted
	all, err := repo.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := repo.Search(ctx, "xyz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIngredientRepository_GetOrCreate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	ing := &models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	created, err := repo.GetOrCreate(ctx, ing)
	require.NoError(t, err)
	assert.True(t, created)

	// Same name with a different unit is a distinct row
	other := &models.Ingredient{Name: "flour", MeasurementUnit: "cup"}
	created, err = repo.GetOrCreate(ctx, other)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, ing.ID, other.ID)

	dup := &models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	created, err = repo.GetOrCreate(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, ing.ID, dup.ID)
}
