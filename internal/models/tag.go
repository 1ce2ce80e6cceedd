package models

// Tag categorizes recipes. Tags are immutable reference data seeded by the
// import command.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:32;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:32;uniqueIndex;not null" json:"slug"`
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "tags"
}
