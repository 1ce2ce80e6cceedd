package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"foodgram/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

var (
	cfg *config.Config
	rdb *redis.Client
)

// InitMiddleware initializes authentication middleware with the given config and Redis client.
// The Redis client may be nil; revocation checks are skipped in that case.
func InitMiddleware(c *config.Config, r *redis.Client) {
	cfg = c
	rdb = r
}

// BlacklistToken marks a token's JTI as revoked until its expiry.
func BlacklistToken(ctx context.Context, r *redis.Client, jti string, ttl time.Duration) error {
	if r == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return r.Set(ctx, "token:blacklist:"+jti, "1", ttl).Err()
}

func isBlacklisted(ctx context.Context, jti string) bool {
	if rdb == nil || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, "token:blacklist:"+jti).Result()
	if err != nil {
		// Fail open on store errors so an outage does not lock everyone out
		return false
	}
	return n > 0
}

// parseToken validates the token string and returns the user ID and JTI.
func parseToken(tokenString string) (uint, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	// User ID comes from "sub" (subject claim per RFC 7519)
	subClaim, ok := claims["sub"]
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing subject")
	}

	subStr, ok := subClaim.(string)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject type")
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	jti, _ := claims["jti"].(string)
	return uint(userIDVal), jti, nil
}

// extractToken pulls the token string out of the Authorization header.
// Both "Token <key>" and "Bearer <key>" schemes are accepted.
func extractToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || (parts[0] != "Token" && parts[0] != "Bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	tokenString, ok := extractToken(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	userID, jti, err := parseToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if isBlacklisted(c.UserContext(), jti) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Token has been revoked",
		})
	}

	c.Locals("userID", userID)
	c.Locals("tokenJTI", jti)

	return c.Next()
}

// OptionalAuth resolves the user from the Authorization header when present
// but never rejects the request. Anonymous requests simply proceed without
// a userID local.
func OptionalAuth(c *fiber.Ctx) error {
	tokenString, ok := extractToken(c)
	if !ok {
		return c.Next()
	}

	userID, jti, err := parseToken(tokenString)
	if err != nil || isBlacklisted(c.UserContext(), jti) {
		return c.Next()
	}

	c.Locals("userID", userID)
	c.Locals("tokenJTI", jti)

	return c.Next()
}
