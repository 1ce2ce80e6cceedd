package models

// Ingredient is immutable reference data: a name plus the unit its amounts
// are measured in. The same name may appear with different units.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:128;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:64;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

// TableName specifies the table name for GORM
func (Ingredient) TableName() string {
	return "ingredients"
}
