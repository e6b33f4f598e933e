package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoomType is read-only reference data; booking logic never mutates it.
type RoomType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TypeName    string         `gorm:"column:type_name;size:100;uniqueIndex" json:"typeName"`
	Description string         `gorm:"type:text" json:"description"`
	MaxGuests   uint           `json:"max_guests"`
	BasePrice   float64        `gorm:"column:base_price" json:"basePrice"`
	Amenities   datatypes.JSON `gorm:"column:amenities" json:"amenities,omitempty"`

	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
