package server

import (
	"context"

	"foodgram/internal/models"
	"foodgram/internal/service"
)

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
	Avatar       string `json:"avatar"`
}

// RegisterResponse is the trimmed representation returned on signup.
type RegisterResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RecipeIngredientResponse is one ingredient row inside a recipe, keyed by
// the ingredient's own ID.
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the full representation of a recipe, including
// viewer-dependent flags.
type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeMinifiedResponse is the short recipe form used for favorites, cart
// entries and subscription previews.
type RecipeMinifiedResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionResponse is an author the viewer follows, with a preview of
// their recipes.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeMinifiedResponse `json:"recipes"`
	RecipesCount int64                    `json:"recipes_count"`
}

func (s *Server) userResponse(u *models.User, isSubscribed bool) UserResponse {
	avatar := ""
	if u.Avatar != "" {
		avatar = s.mediaService.URL(u.Avatar)
	}
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
		Avatar:       avatar,
	}
}

func (s *Server) recipeMinified(r *models.Recipe) RecipeMinifiedResponse {
	return RecipeMinifiedResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       s.mediaService.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

// recipeFlags holds the viewer-dependent sets needed to render recipes.
type recipeFlags struct {
	favorited map[uint]bool
	inCart    map[uint]bool
	following map[uint]bool
}

// loadRecipeFlags batches the favorite, cart and follow lookups for a page
// of recipes. All sets come back empty for anonymous viewers.
func (s *Server) loadRecipeFlags(ctx context.Context, viewerID uint, recipes []models.Recipe) (recipeFlags, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	favorited, err := s.recipeService.FavoriteSet(ctx, viewerID, recipeIDs)
	if err != nil {
		return recipeFlags{}, err
	}
	inCart, err := s.recipeService.CartSet(ctx, viewerID, recipeIDs)
	if err != nil {
		return recipeFlags{}, err
	}
	following, err := s.followService.FollowedAuthorSet(ctx, viewerID, authorIDs)
	if err != nil {
		return recipeFlags{}, err
	}
	return recipeFlags{favorited: favorited, inCart: inCart, following: following}, nil
}

func (s *Server) recipeResponse(r *models.Recipe, f recipeFlags) RecipeResponse {
	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	ingredients := make([]RecipeIngredientResponse, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		ingredients[i] = RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		}
	}
	return RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           s.userResponse(&r.Author, f.following[r.AuthorID]),
		Ingredients:      ingredients,
		IsFavorited:      f.favorited[r.ID],
		IsInShoppingCart: f.inCart[r.ID],
		Name:             r.Name,
		Image:            s.mediaService.URL(r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func (s *Server) recipeResponses(recipes []models.Recipe, f recipeFlags) []RecipeResponse {
	out := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		out[i] = s.recipeResponse(&recipes[i], f)
	}
	return out
}

// subscriptionResponse renders a followed author. recipesLimit trims the
// recipe preview without affecting recipes_count; zero keeps every recipe.
func (s *Server) subscriptionResponse(sub *service.Subscription, recipesLimit int) SubscriptionResponse {
	recipes := sub.Recipes
	if recipesLimit > 0 && len(recipes) > recipesLimit {
		recipes = recipes[:recipesLimit]
	}
	preview := make([]RecipeMinifiedResponse, len(recipes))
	for i := range recipes {
		preview[i] = s.recipeMinified(&recipes[i])
	}
	return SubscriptionResponse{
		UserResponse: s.userResponse(&sub.Author, true),
		Recipes:      preview,
		RecipesCount: sub.RecipeCount,
	}
}
