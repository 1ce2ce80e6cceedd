package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderShoppingList(t *testing.T) {
	user := &models.User{Username: "anna_cook"}
	items := []repository.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 700},
		{Name: "milk", MeasurementUnit: "ml", Amount: 300},
	}
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	content := renderShoppingList(user, items, now)

	assert.Contains(t, content, "Shopping list for: anna_cook")
	assert.Contains(t, content, "Date: 2026-08-29")
	assert.Contains(t, content, "- flour (g) — 700")
	assert.Contains(t, content, "- milk (ml) — 300")
	assert.True(t, strings.HasSuffix(content, "Foodgram (2026)"))

	// Bullets keep the aggregation order
	flourIdx := strings.Index(content, "- flour")
	milkIdx := strings.Index(content, "- milk")
	assert.Less(t, flourIdx, milkIdx)
}

func TestShoppingListService_BuildFile(t *testing.T) {
	db := testutil.OpenTestDB(t)
	recipeRepo := repository.NewRecipeRepository(db)
	svc := NewShoppingListService(recipeRepo, repository.NewUserRepository(db))
	ctx := context.Background()

	user := testutil.MakeUser(t, db)

	flour := &models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	require.NoError(t, db.Create(flour).Error)

	recipe := &models.Recipe{Name: "Bread", AuthorID: user.ID, Text: "t", Image: "i", CookingTime: 60}
	require.NoError(t, recipeRepo.Create(ctx, recipe,
		[]models.RecipeIngredient{{IngredientID: flour.ID, Amount: 500}}, nil))
	require.NoError(t, recipeRepo.AddToCart(ctx, user.ID, recipe.ID))

	content, filename, err := svc.BuildFile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%s_shopping_list.txt", user.Username), filename)
	assert.Contains(t, content, "- flour (g) — 500")
}

func TestShoppingListService_BuildFile_EmptyCart(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewShoppingListService(repository.NewRecipeRepository(db), repository.NewUserRepository(db))

	user := testutil.MakeUser(t, db)

	_, _, err := svc.BuildFile(context.Background(), user.ID)
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}
