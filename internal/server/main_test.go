package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"foodgram/internal/config"
	"foodgram/internal/models"
	"foodgram/internal/service"
	"foodgram/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:            "test_secret",
		Port:                 "8000",
		Env:                  "test",
		BaseURL:              "http://localhost:8000",
		MediaRoot:            t.TempDir(),
		PageSize:             6,
		ImageMaxUploadSizeMB: 10,
	}

	db := testutil.OpenTestDB(t)
	s := NewServerWithDeps(cfg, db, nil)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

// registerUser creates an account through the service layer and returns the
// user together with a valid auth token.
func registerUser(t *testing.T, s *Server, username string) (*models.User, string) {
	t.Helper()

	user, err := s.userService.Register(context.Background(), service.RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "Password123",
	})
	require.NoError(t, err)

	token, err := s.generateToken(user)
	require.NoError(t, err)
	return user, token
}

// makeRecipe creates a recipe through the service layer so tags,
// ingredients and the short link are all in place.
func makeRecipe(t *testing.T, s *Server, authorID uint, name string) *models.Recipe {
	t.Helper()

	tag := testutil.MakeTag(t, s.db)
	ingredient := testutil.MakeIngredient(t, s.db)

	recipe, err := s.recipeService.Create(context.Background(), authorID, service.RecipeInput{
		Name:        name,
		Text:        "Mix and serve.",
		Image:       testutil.TinyPNGBase64,
		CookingTime: 15,
		Ingredients: []service.IngredientRef{{ID: ingredient.ID, Amount: 100}},
		TagIDs:      []uint{tag.ID},
	})
	require.NoError(t, err)
	return recipe
}

// testRequest performs a JSON request against the test app. An empty token
// leaves the request anonymous.
func testRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, payload
}

func decodeJSON(t *testing.T, payload []byte, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(payload, out))
}
