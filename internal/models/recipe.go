package models

import (
	"time"
)

// Bounds on user-supplied numeric recipe fields.
const (
	MinCookingTime      = 1
	MaxCookingTime      = 32000
	MinIngredientAmount = 1
	MaxIngredientAmount = 32000

	MaxRecipeNameLen = 256
	MaxRecipeTextLen = 1000
)

// Recipe is a published dish owned by exactly one author. Tag and
// ingredient associations are replaced wholesale on update.
type Recipe struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:256;not null;uniqueIndex:idx_recipe_name_author" json:"name"`
	AuthorID    uint      `gorm:"not null;index;uniqueIndex:idx_recipe_name_author" json:"author_id"`
	Text        string    `gorm:"size:1000;not null" json:"text"`
	Image       string    `gorm:"size:255;not null" json:"image"`
	CookingTime int       `gorm:"not null;check:chk_cooking_time,cooking_time >= 1 AND cooking_time <= 32000" json:"cooking_time"`
	CreatedAt   time.Time `gorm:"index:idx_recipes_pub_date,sort:desc" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Author      User               `gorm:"foreignKey:AuthorID" json:"author"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
}

// TableName specifies the table name for GORM
func (Recipe) TableName() string {
	return "recipes"
}

// RecipeIngredient joins a recipe to one ingredient with an amount.
type RecipeIngredient struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	RecipeID     uint `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       int  `gorm:"not null;check:chk_ingredient_amount,amount >= 1 AND amount <= 32000" json:"amount"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"ingredient"`
}

// TableName specifies the table name for GORM
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// Favorite marks a recipe as starred by a user.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Favorite) TableName() string {
	return "favorites"
}

// ShoppingCart marks a recipe whose ingredients are included in the
// user's aggregated shopping list.
type ShoppingCart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (ShoppingCart) TableName() string {
	return "shopping_carts"
}
