package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/observability"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// maxPageLimit caps the page size a client may request.
const maxPageLimit = 100

// errResponseWritten signals that a helper already wrote the error response
// and the handler should just return it.
var errResponseWritten = errors.New("response already written")

// respondError maps application errors to HTTP statuses and writes the
// standardized error body.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errResponseWritten) {
		return nil
	}

	status := fiber.StatusInternalServerError
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "VALIDATION_ERROR", "CONFLICT":
			status = fiber.StatusBadRequest
		case "UNAUTHORIZED":
			status = fiber.StatusUnauthorized
		case "FORBIDDEN":
			status = fiber.StatusForbidden
		case "NOT_FOUND":
			status = fiber.StatusNotFound
		}
	}
	if status == fiber.StatusInternalServerError {
		// Expected client errors stay off the trace; failures get recorded
		// on the request span.
		observability.RecordErrorInContext(c.UserContext(), err)
	}
	return models.RespondWithError(c, status, err)
}

// validateBody runs struct-tag validation on a parsed request body.
func (s *Server) validateBody(body interface{}) error {
	err := s.validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return models.NewValidationError(
			fmt.Sprintf("Field %q failed validation: %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return models.NewValidationError(err.Error())
}

// parseID reads a numeric path parameter. On failure it writes a 404 and
// returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Object", raw))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user's ID, or zero for anonymous
// requests that passed through OptionalAuth.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// parsePagination reads page-number pagination parameters. The page size
// comes from the limit query parameter, defaulting to the configured page
// size and capped at maxPageLimit.
func (s *Server) parsePagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", s.config.PageSize)
	if limit < 1 {
		limit = s.config.PageSize
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// PageResponse is the envelope for every paginated list endpoint.
type PageResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// buildPage wraps results in the pagination envelope with absolute next and
// previous page URLs.
func (s *Server) buildPage(c *fiber.Ctx, count int64, page, limit int, results interface{}) PageResponse {
	resp := PageResponse{Count: count, Results: results}
	if int64(page)*int64(limit) < count {
		u := s.pageURL(c, page+1)
		resp.Next = &u
	}
	if page > 1 {
		u := s.pageURL(c, page-1)
		resp.Previous = &u
	}
	return resp
}

// pageURL rebuilds the request URL with the page parameter replaced,
// preserving every other query parameter including repeated ones.
func (s *Server) pageURL(c *fiber.Ctx, page int) string {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		if string(key) != "page" {
			values.Add(string(key), string(value))
		}
	})
	values.Set("page", strconv.Itoa(page))

	base := strings.TrimRight(s.config.BaseURL, "/")
	return base + c.Path() + "?" + values.Encode()
}
