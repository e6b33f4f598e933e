package models

import (
	"time"

	"gorm.io/gorm"
)

// Reservation statuses. A reservation row is only created once its payment
// session reached "confirmed" (or directly by staff); "cancelled" rows are
// retained and excluded from every overlap check.
const (
	ReservationPendingPayment = "pending_payment"
	ReservationConfirmed      = "confirmed"
	ReservationCancelled      = "cancelled"
)

// Reservation claims exactly one physical room for a half-open interval
// [checkin_date, checkout_date). A multi-room request produces one row per
// claimed room, each independently cancellable.
type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint   `gorm:"index;column:user_id" json:"user_id"`
	Name   string `gorm:"size:255" json:"name"`
	Email  string `gorm:"size:255" json:"email"`
	Phone  string `gorm:"size:15" json:"phone"`

	RoomType      string `gorm:"column:room_type;size:100;index" json:"room_type"`
	NumberOfRooms int    `gorm:"column:number_of_rooms;default:1" json:"number_of_rooms"`
	Children      int    `gorm:"default:0" json:"children"`
	Member        int    `gorm:"default:1" json:"member"`

	RoomID uint `gorm:"column:room_id;index" json:"room_id"`

	Price       float64 `json:"price"`
	TotalPrice  float64 `gorm:"column:total_price" json:"total_price"`
	DepositPaid float64 `gorm:"column:deposit_paid;default:0" json:"deposit_paid"`

	CheckinDate  time.Time `gorm:"column:checkin_date;index" json:"checkin_date"`
	CheckoutDate time.Time `gorm:"column:checkout_date" json:"checkout_date"`

	Status string `gorm:"size:32;index" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
}
