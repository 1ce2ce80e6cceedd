package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ResolveShortLink redirects a short code to the recipe's page.
func (s *Server) ResolveShortLink(c *fiber.Ctx) error {
	recipeID, err := s.recipeService.ResolveShortCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Redirect(fmt.Sprintf("%s/recipes/%d", s.config.BaseURL, recipeID), fiber.StatusFound)
}
