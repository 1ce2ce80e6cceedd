package server

import (
	"fmt"
	"strconv"
	"time"

	"foodgram/internal/middleware"
	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenTTL is how long issued tokens stay valid.
const tokenTTL = 7 * 24 * time.Hour

// generateToken issues a signed JWT for the user.
func (s *Server) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"iss":      "foodgram-api",
		"aud":      "foodgram-client",
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// Login exchanges email and password for an auth token.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := s.validateBody(&req); err != nil {
		return s.respondError(c, err)
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user logged in", "user_id", user.ID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"auth_token": token,
	})
}

// Logout revokes the current token by blacklisting its JTI for the rest of
// the token's lifetime.
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("tokenJTI").(string)
	if err := middleware.BlacklistToken(c.UserContext(), s.redis, jti, tokenTTL); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "token revocation failed", "error", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
