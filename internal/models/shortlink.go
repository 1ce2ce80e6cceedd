package models

import (
	"time"
)

// ShortLink maps a globally unique short code to one recipe. At most one
// code exists per recipe; uniqueness of the code spans the whole table
// regardless of code length.
type ShortLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex" json:"recipe_id"`
	Code      string    `gorm:"size:16;uniqueIndex;not null" json:"code"`
	CreatedAt time.Time `json:"created_at"`

	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (ShortLink) TableName() string {
	return "short_links"
}
