package server

import (
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register creates a new account.
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email     string `json:"email" validate:"required"`
		Username  string `json:"username" validate:"required"`
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Password  string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := s.validateBody(&req); err != nil {
		return s.respondError(c, err)
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered", "user_id", user.ID, "username", user.Username)
	return c.Status(fiber.StatusCreated).JSON(RegisterResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// GetUsers returns a page of all accounts.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page, limit := s.parsePagination(c)

	users, total, err := s.userService.ListUsers(c.UserContext(), limit, (page-1)*limit)
	if err != nil {
		return s.respondError(c, err)
	}

	viewerID := currentUserID(c)
	authorIDs := make([]uint, len(users))
	for i, u := range users {
		authorIDs[i] = u.ID
	}
	following, err := s.followService.FollowedAuthorSet(c.UserContext(), viewerID, authorIDs)
	if err != nil {
		return s.respondError(c, err)
	}

	results := make([]UserResponse, len(users))
	for i := range users {
		results[i] = s.userResponse(&users[i], following[users[i].ID])
	}
	return c.JSON(s.buildPage(c, total, page, limit, results))
}

// GetMyProfile returns the authenticated user's own profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(s.userResponse(user, false))
}

// GetUserProfile returns one user's public profile.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	subscribed, err := s.followService.IsSubscribed(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(s.userResponse(user, subscribed))
}

// SetPassword changes the authenticated user's password.
func (s *Server) SetPassword(c *fiber.Ctx) error {
	var req struct {
		NewPassword     string `json:"new_password" validate:"required"`
		CurrentPassword string `json:"current_password" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := s.validateBody(&req); err != nil {
		return s.respondError(c, err)
	}

	if err := s.userService.SetPassword(c.UserContext(), currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetAvatar stores a new avatar supplied as a base64 data URI.
func (s *Server) SetAvatar(c *fiber.Ctx) error {
	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.SetAvatar(c.UserContext(), currentUserID(c), req.Avatar)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"avatar": s.mediaService.URL(user.Avatar),
	})
}

// DeleteAvatar removes the authenticated user's avatar.
func (s *Server) DeleteAvatar(c *fiber.Ctx) error {
	if err := s.userService.DeleteAvatar(c.UserContext(), currentUserID(c)); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Subscribe follows an author.
func (s *Server) Subscribe(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	sub, err := s.followService.Subscribe(c.UserContext(), currentUserID(c), authorID)
	if err != nil {
		return s.respondError(c, err)
	}

	recipesLimit := c.QueryInt("recipes_limit", 0)
	return c.Status(fiber.StatusCreated).JSON(s.subscriptionResponse(sub, recipesLimit))
}

// Unsubscribe removes a follow.
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.followService.Unsubscribe(c.UserContext(), currentUserID(c), authorID); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetSubscriptions returns a page of followed authors with recipe previews.
func (s *Server) GetSubscriptions(c *fiber.Ctx) error {
	page, limit := s.parsePagination(c)
	recipesLimit := c.QueryInt("recipes_limit", 0)

	subs, total, err := s.followService.ListSubscriptions(c.UserContext(), currentUserID(c), limit, (page-1)*limit, recipesLimit)
	if err != nil {
		return s.respondError(c, err)
	}

	results := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		results[i] = s.subscriptionResponse(&subs[i], recipesLimit)
	}
	return c.JSON(s.buildPage(c, total, page, limit, results))
}
