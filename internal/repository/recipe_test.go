package repository

import (
	"context"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/shortcode"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeRepository_CreateWithRelations(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := testutil.MakeUser(t, db)
	tag := testutil.MakeTag(t, db)
	ing := testutil.MakeIngredient(t, db)

	recipe := &models.Recipe{
		Name:        "Borscht",
		AuthorID:    author.ID,
		Text:        "Slow-cooked beet soup",
		Image:       "recipes/borscht.png",
		CookingTime: 90,
	}
	rows := []models.RecipeIngredient{{IngredientID: ing.ID, Amount: 300}}

	require.NoError(t, repo.Create(ctx, recipe, rows, []models.Tag{*tag}))
	require.NotZero(t, recipe.ID)

	got, err := repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Borscht", got.Name)
	assert.Equal(t, author.ID, got.Author.ID)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, tag.Slug, got.Tags[0].Slug)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, 300, got.Ingredients[0].Amount)
	assert.Equal(t, ing.Name, got.Ingredients[0].Ingredient.Name)

	// A short link is allocated in the same transaction
	link, err := repo.GetShortLinkByRecipeID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(link.Code), shortcode.MinLen)
	assert.LessOrEqual(t, len(link.Code), shortcode.MaxLen)

	byCode, err := repo.GetShortLinkByCode(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, byCode.RecipeID)
}

func TestRecipeRepository_DuplicateNamePerAuthor(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := testutil.MakeUser(t, db)
	other := testutil.MakeUser(t, db)
	ing := testutil.MakeIngredient(t, db)

	first := &models.Recipe{Name: "Pancakes", AuthorID: author.ID, Text: "t", Image: "i", CookingTime: 10}
	require.NoError(t, repo.Create(ctx, first, []models.RecipeIngredient{{IngredientID: ing.ID, Amount: 1}}, nil))

	dup := &models.Recipe{Name: "Pancakes", AuthorID: author.ID, Text: "t", Image: "i", CookingTime: 10}
	err := repo.Create(ctx, dup, []models.RecipeIngredient{{IngredientID: ing.ID, Amount: 1}}, nil)
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	// Same name under a different author is fine
	theirs := &models.Recipe{Name: "Pancakes", AuthorID: other.ID, Text: "t", Image: "i", CookingTime: 10}
	assert.NoError(t, repo.Create(ctx, theirs, []models.RecipeIngredient{{IngredientID: ing.ID, Amount: 1}}, nil))
}

func TestRecipeRepository_UpdateReplacesRelations(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	author := testutil.MakeUser(t, db)
	tagA := testutil.MakeTag(t, db)
	tagB := testutil.MakeTag(t, db)
	ingA := testutil.MakeIngredient(t, db)
	ingB := testutil.MakeIngredient(t, db)

	recipe := &models.Recipe{Name: "Salad", AuthorID: author.ID, Text: "t", Image: "i", CookingTime: 5}
	require.NoError(t, repo.Create(ctx, recipe,
		[]models.RecipeIngredient{{IngredientID: ingA.ID, Amount: 50}},
		[]models.Tag{*tagA}))

	recipe.Name = "Green salad"
	recipe.CookingTime = 7
	require.NoError(t, repo.Update(ctx, recipe,
		[]models.RecipeIngredient{{IngredientID: ingB.ID, Amount: 80}},
		[]models.Tag{*tagB}))

	got, err := repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green salad", got.Name)
	assert.Equal(t, 7, got.CookingTime)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, tagB.ID, got.Tags[0].ID)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, ingB.ID, got.Ingredients[0].IngredientID)
	assert.Equal(t, 80, got.Ingredients[0].Amount)
}

func TestRecipeRepository_ListFilters(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	alice := testutil.MakeUser(t, db)
	bob := testutil.MakeUser(t, db)
	breakfast := testutil.MakeTag(t, db)
	dinner := testutil.MakeTag(t, db)
	ing := testutil.MakeIngredient(t, db)

	porridge := &models.Recipe{Name: "Porridge", AuthorID: alice.ID, Text: "t", Image: "i", CookingTime: 10}
	require.NoError(t, repo.Create(ctx, porridge,
		[]models.RecipeIngredient{{IngredientID: ing.ID, Amount: 1}}, []models.Tag{*breakfast}))

	stew := &models.Recipe{Name: "Stew", AuthorID: bob.ID, Text: "t", Image: "i", CookingTime: 60}
	require.NoError(t, repo.Create(ctx, stew,
		[]models.RecipeIngredient{{IngredientID: ing.ID, Amount: 2}}, []models.Tag{*dinner}))

	both := &models.Recipe{Name: "Omelette", AuthorID: alice.ID, Text: "t", Image: "i", CookingTime: 8}
	require.NoError(t, repo.Create(ctx, both,
		[]models.RecipeIngredient{{IngredientID: ing.ID, Amount: 3}}, []models.Tag{*breakfast, *dinner}))

	// By author
	recipes, err := repo.List(ctx, RecipeFilter{AuthorID: alice.ID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, recipes, 2)

	// By single tag
	recipes, err = repo.List(ctx, RecipeFilter{TagSlugs: []string{dinner.Slug}, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, recipes, 2)

	// Multiple tag slugs OR together, without duplicating rows
	recipes, err = repo.List(ctx, RecipeFilter{TagSlugs: []string{breakfast.Slug, dinner.Slug}, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, recipes, 3)

	count, err := repo.Count(ctx, RecipeFilter{TagSlugs: []string{breakfast.Slug, dinner.Slug}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	// Favorites filter
	require.NoError(t, repo.AddFavorite(ctx, bob.ID, porridge.ID))
	recipes, err = repo.List(ctx, RecipeFilter{FavoritedBy: bob.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, porridge.ID, recipes[0].ID)

	// Cart filter
	require.NoError(t, repo.AddToCart(ctx, bob.ID, stew.ID))
	recipes, err = repo.List(ctx, RecipeFilter{InCartOf: bob.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, stew.ID, recipes[0].ID)
}

func TestRecipeRepository_FavoriteEdgeCases(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testutil.MakeUser(t, db)
	recipe := testutil.MakeRecipe(t, db, user.ID)

	require.NoError(t, repo.AddFavorite(ctx, user.ID, recipe.ID))

	err := repo.AddFavorite(ctx, user.ID, recipe.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	require.NoError(t, repo.RemoveFavorite(ctx, user.ID, recipe.ID))

	err = repo.RemoveFavorite(ctx, user.ID, recipe.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestRecipeRepository_GetIDSets(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testutil.MakeUser(t, db)
	r1 := testutil.MakeRecipe(t, db, user.ID)
	r2 := testutil.MakeRecipe(t, db, user.ID)
	r3 := testutil.MakeRecipe(t, db, user.ID)

	require.NoError(t, repo.AddFavorite(ctx, user.ID, r1.ID))
	require.NoError(t, repo.AddToCart(ctx, user.ID, r2.ID))

	ids := []uint{r1.ID, r2.ID, r3.ID}

	favs, err := repo.GetFavoriteRecipeIDs(ctx, user.ID, ids)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{r1.ID}, favs)

	cart, err := repo.GetCartRecipeIDs(ctx, user.ID, ids)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{r2.ID}, cart)

	empty, err := repo.GetFavoriteRecipeIDs(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRecipeRepository_AggregateShoppingList(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testutil.MakeUser(t, db)

	flour := &models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	require.NoError(t, db.Create(flour).Error)
	milk := &models.Ingredient{Name: "milk", MeasurementUnit: "ml"}
	require.NoError(t, db.Create(milk).Error)

	pancakes := &models.Recipe{Name: "Pancakes", AuthorID: user.ID, Text: "t", Image: "i", CookingTime: 20}
	require.NoError(t, repo.Create(ctx, pancakes, []models.RecipeIngredient{
		{IngredientID: flour.ID, Amount: 200},
		{IngredientID: milk.ID, Amount: 300},
	}, nil))

	bread := &models.Recipe{Name: "Bread", AuthorID: user.ID, Text: "t", Image: "i", CookingTime: 120}
	require.NoError(t, repo.Create(ctx, bread, []models.RecipeIngredient{
		{IngredientID: flour.ID, Amount: 500},
	}, nil))

	notInCart := &models.Recipe{Name: "Cake", AuthorID: user.ID, Text: "t", Image: "i", CookingTime: 60}
	require.NoError(t, repo.Create(ctx, notInCart, []models.RecipeIngredient{
		{IngredientID: flour.ID, Amount: 999},
	}, nil))

	require.NoError(t, repo.AddToCart(ctx, user.ID, pancakes.ID))
	require.NoError(t, repo.AddToCart(ctx, user.ID, bread.ID))

	items, err := repo.AggregateShoppingList(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Sorted by ingredient name, amounts summed across recipes
	assert.Equal(t, "flour", items[0].Name)
	assert.EqualValues(t, 700, items[0].Amount)
	assert.Equal(t, "milk", items[1].Name)
	assert.EqualValues(t, 300, items[1].Amount)
}

func TestRecipeRepository_DeleteCleansUpRelations(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	user := testutil.MakeUser(t, db)
	ing := testutil.MakeIngredient(t, db)
	tag := testutil.MakeTag(t, db)

	recipe := &models.Recipe{Name: "Soup", AuthorID: user.ID, Text: "t", Image: "i", CookingTime: 30}
	require.NoError(t, repo.Create(ctx, recipe,
		[]models.RecipeIngredient{{IngredientID: ing.ID, Amount: 10}}, []models.Tag{*tag}))
	require.NoError(t, repo.AddFavorite(ctx, user.ID, recipe.ID))
	require.NoError(t, repo.AddToCart(ctx, user.ID, recipe.ID))

	require.NoError(t, repo.Delete(ctx, recipe.ID))

	_, err := repo.GetByID(ctx, recipe.ID)
	assert.Error(t, err)

	var count int64
	db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Favorite{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.ShoppingCart{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.ShortLink{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.Zero(t, count)
}

func TestRecipeRepository_DeleteMissing(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecipeRepository(db)

	err := repo.Delete(context.Background(), 12345)
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestRecipeRepository_CountByAuthors(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	alice := testutil.MakeUser(t, db)
	bob := testutil.MakeUser(t, db)
	testutil.MakeRecipe(t, db, alice.ID)
	testutil.MakeRecipe(t, db, alice.ID)
	testutil.MakeRecipe(t, db, bob.ID)

	counts, err := repo.CountByAuthors(ctx, []uint{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[alice.ID])
	assert.EqualValues(t, 1, counts[bob.ID])
}
