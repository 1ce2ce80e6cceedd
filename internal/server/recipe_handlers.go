package server

import (
	"fmt"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// recipeBody is the JSON payload for recipe create and update requests.
type recipeBody struct {
	Ingredients []struct {
		ID     uint `json:"id"`
		Amount int  `json:"amount"`
	} `json:"ingredients"`
	Tags        []uint `json:"tags"`
	Image       string `json:"image"`
	Name        string `json:"name"`
	Text        string `json:"text"`
	CookingTime int    `json:"cooking_time"`
}

func (b recipeBody) toInput() service.RecipeInput {
	refs := make([]service.IngredientRef, len(b.Ingredients))
	for i, ing := range b.Ingredients {
		refs[i] = service.IngredientRef{ID: ing.ID, Amount: ing.Amount}
	}
	return service.RecipeInput{
		Name:        b.Name,
		Text:        b.Text,
		Image:       b.Image,
		CookingTime: b.CookingTime,
		Ingredients: refs,
		TagIDs:      b.Tags,
	}
}

// recipeFilterFromQuery builds the list filter from query parameters. The
// favorite and cart filters only apply to authenticated viewers.
func recipeFilterFromQuery(c *fiber.Ctx, viewerID uint) repository.RecipeFilter {
	filter := repository.RecipeFilter{
		AuthorID: uint(c.QueryInt("author", 0)),
	}
	for _, raw := range c.Context().QueryArgs().PeekMulti("tags") {
		if slug := string(raw); slug != "" {
			filter.TagSlugs = append(filter.TagSlugs, slug)
		}
	}
	if viewerID != 0 {
		if c.Query("is_favorited") == "1" {
			filter.FavoritedBy = viewerID
		}
		if c.Query("is_in_shopping_cart") == "1" {
			filter.InCartOf = viewerID
		}
	}
	return filter
}

// GetRecipes returns a filtered page of recipes.
func (s *Server) GetRecipes(c *fiber.Ctx) error {
	viewerID := currentUserID(c)
	page, limit := s.parsePagination(c)

	filter := recipeFilterFromQuery(c, viewerID)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	recipes, total, err := s.recipeService.List(c.UserContext(), filter)
	if err != nil {
		return s.respondError(c, err)
	}

	flags, err := s.loadRecipeFlags(c.UserContext(), viewerID, recipes)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(s.buildPage(c, total, page, limit, s.recipeResponses(recipes, flags)))
}

// GetRecipe returns one recipe with its full representation.
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	recipe, err := s.recipeService.Get(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	flags, err := s.loadRecipeFlags(c.UserContext(), currentUserID(c), []models.Recipe{*recipe})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(s.recipeResponse(recipe, flags))
}

// CreateRecipe publishes a new recipe owned by the authenticated user.
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	var body recipeBody
	if err := c.BodyParser(&body); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	userID := currentUserID(c)
	recipe, err := s.recipeService.Create(c.UserContext(), userID, body.toInput())
	if err != nil {
		return s.respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "recipe created", "recipe_id", recipe.ID, "author_id", userID)

	flags, err := s.loadRecipeFlags(c.UserContext(), userID, []models.Recipe{*recipe})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.recipeResponse(recipe, flags))
}

// UpdateRecipe replaces the recipe's fields and associations.
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	var body recipeBody
	if err := c.BodyParser(&body); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	viewerID := currentUserID(c)
	recipe, err := s.recipeService.Update(c.UserContext(), viewerID, id, body.toInput())
	if err != nil {
		return s.respondError(c, err)
	}

	flags, err := s.loadRecipeFlags(c.UserContext(), viewerID, []models.Recipe{*recipe})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(s.recipeResponse(recipe, flags))
}

// DeleteRecipe removes a recipe owned by the authenticated user.
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.recipeService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddFavorite stars a recipe for the authenticated user.
func (s *Server) AddFavorite(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	recipe, err := s.recipeService.Favorite(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.recipeMinified(recipe))
}

// RemoveFavorite removes a recipe from the user's favorites.
func (s *Server) RemoveFavorite(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.recipeService.Unfavorite(c.UserContext(), currentUserID(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddToShoppingCart adds a recipe to the user's shopping cart.
func (s *Server) AddToShoppingCart(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	recipe, err := s.recipeService.AddToCart(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.recipeMinified(recipe))
}

// RemoveFromShoppingCart removes a recipe from the user's shopping cart.
func (s *Server) RemoveFromShoppingCart(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.recipeService.RemoveFromCart(c.UserContext(), currentUserID(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DownloadShoppingCart streams the aggregated shopping list as a text file.
func (s *Server) DownloadShoppingCart(c *fiber.Ctx) error {
	content, filename, err := s.shoppingListService.BuildFile(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.SendString(content)
}

// GetRecipeLink returns the recipe's permanent short link.
func (s *Server) GetRecipeLink(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	code, err := s.recipeService.GetShortCode(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"short-link": fmt.Sprintf("%s/s/%s", s.config.BaseURL, code),
	})
}
