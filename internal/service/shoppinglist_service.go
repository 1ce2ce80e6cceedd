package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
)

// ShoppingListService aggregates cart ingredients into a downloadable list.
type ShoppingListService struct {
	recipeRepo repository.RecipeRepository
	userRepo   repository.UserRepository
}

// NewShoppingListService returns a new ShoppingListService.
func NewShoppingListService(recipeRepo repository.RecipeRepository, userRepo repository.UserRepository) *ShoppingListService {
	return &ShoppingListService{recipeRepo: recipeRepo, userRepo: userRepo}
}

// BuildFile aggregates the user's cart and renders the plain-text shopping
// list. Returns the file content and its suggested filename.
func (s *ShoppingListService) BuildFile(ctx context.Context, userID uint) (content, filename string, err error) {
	span, ctx := observability.NewSpan(ctx, "shoppinglist.build")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.SetError(err)
		return "", "", err
	}

	items, err := s.recipeRepo.AggregateShoppingList(ctx, userID)
	if err != nil {
		span.SetError(err)
		return "", "", err
	}
	if len(items) == 0 {
		return "", "", models.NewValidationError("Shopping cart is empty")
	}

	observability.ShoppingListDownloads.Inc()
	return renderShoppingList(user, items, time.Now()), fmt.Sprintf("%s_shopping_list.txt", user.Username), nil
}

// renderShoppingList formats the aggregated items as a plain-text document:
// a two-line header, one dash bullet per ingredient sorted by name, and a
// dated footer.
func renderShoppingList(user *models.User, items []repository.ShoppingListItem, now time.Time) string {
	lines := []string{
		fmt.Sprintf("Shopping list for: %s\n", user.Username),
		fmt.Sprintf("Date: %s\n", now.Format("2006-01-02")),
	}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s (%s) — %d", item.Name, item.MeasurementUnit, item.Amount))
	}
	lines = append(lines, fmt.Sprintf("\n\nFoodgram (%d)", now.Year()))
	return strings.Join(lines, "\n")
}
