// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"foodgram/internal/database"
	"foodgram/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TinyPNGBase64 is a valid 1x1 PNG wrapped in a data URI, small enough to
// embed in request bodies.
const TinyPNGBase64 = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

var dbCounter atomic.Int64

// OpenTestDB opens a fresh in-memory SQLite database with the full schema
// migrated. Each call returns an isolated database.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A uniquely named shared-cache DB keeps all pooled connections on the
	// same in-memory database while isolating tests from each other.
	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.InstrumentQueries(db))
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// MakeUser inserts and returns a user with randomized unique fields.
func MakeUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Email:     gofakeit.Email(),
		Username:  fmt.Sprintf("%s_%d", gofakeit.Username(), gofakeit.Number(1, 1_000_000)),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Password:  "$2a$10$notarealhashnotarealhashnotarealhash1234567890123",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// MakeTag inserts and returns a tag with a unique name and slug.
func MakeTag(t *testing.T, db *gorm.DB) *models.Tag {
	t.Helper()

	suffix := gofakeit.Number(1, 1_000_000)
	tag := &models.Tag{
		Name: fmt.Sprintf("tag%d", suffix),
		Slug: fmt.Sprintf("slug%d", suffix),
	}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// MakeIngredient inserts and returns an ingredient with a unique name.
func MakeIngredient(t *testing.T, db *gorm.DB) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{
		Name:            fmt.Sprintf("%s %d", gofakeit.Fruit(), gofakeit.Number(1, 1_000_000)),
		MeasurementUnit: "g",
	}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// MakeRecipe inserts and returns a minimal recipe for the author.
func MakeRecipe(t *testing.T, db *gorm.DB, authorID uint) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Name:        fmt.Sprintf("%s %d", gofakeit.Dinner(), gofakeit.Number(1, 1_000_000)),
		AuthorID:    authorID,
		Text:        gofakeit.Sentence(8),
		Image:       "recipes/test.png",
		CookingTime: gofakeit.Number(models.MinCookingTime, 120),
	}
	require.NoError(t, db.Omit("Tags", "Ingredients", "Author").Create(recipe).Error)
	return recipe
}
