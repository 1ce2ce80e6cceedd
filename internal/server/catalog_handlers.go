package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetTags returns every tag. Tags are reference data and are not paginated.
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.tagRepo.List(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(tags)
}

// GetTag returns one tag by ID.
func (s *Server) GetTag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	tag, err := s.tagRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(tag)
}

// GetIngredients returns ingredients, optionally filtered by a
// case-insensitive name prefix.
func (s *Server) GetIngredients(c *fiber.Ctx) error {
	ingredients, err := s.ingredientRepo.Search(c.UserContext(), c.Query("name"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(ingredients)
}

// GetIngredient returns one ingredient by ID.
func (s *Server) GetIngredient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	ingredient, err := s.ingredientRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(ingredient)
}
