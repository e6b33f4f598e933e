package models

import (
	"gorm.io/gorm"
)

// Room is a physical room of a RoomType.
//
// Status is the operational flag managed by the catalog ("available" /
// "unavailable"). Whether the room is booked for some date range is a
// separate, derived signal computed by the availability resolver. The two
// stay independent fields so an administratively disabled room keeps its
// booking history intact.
type Room struct {
	gorm.Model

	RoomTypeID *uint  `json:"roomTypeId,omitempty" gorm:"column:room_type_id;index"`
	RoomNumber string `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`

	Type         string  `json:"type" gorm:"index;size:100"`
	Status       string  `json:"status" gorm:"size:32;default:available"`
	Floor        string  `json:"floor" gorm:"type:varchar(10)"`
	Price        float64 `json:"price"`
	MaxOccupancy int     `json:"maxOccupancy" gorm:"column:max_occupancy"`
	Description  string  `json:"description" gorm:"type:text"`

	RoomType RoomType `gorm:"foreignKey:RoomTypeID" json:"roomType,omitempty"`
}

const (
	RoomStatusAvailable   = "available"
	RoomStatusUnavailable = "unavailable"
)
