package services

import (
	"fmt"
	"time"

	"hotel-reservation/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AvailabilityService computes which physical rooms of a type are free for a
// date range. It never allocates anything.
type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not count: a reservation
// checking out on the day another checks in is not a conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// filterFree subtracts the busy room ids from the catalog set, preserving the
// incoming order so repeated calls under identical state return the same
// sequence.
func filterFree(rooms []models.Room, busy map[uint]bool) []models.Room {
	free := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if !busy[room.ID] {
			free = append(free, room)
		}
	}
	return free
}

// FreeRooms returns the rooms of roomType that are operationally available and
// have no non-cancelled reservation overlapping [checkin, checkout), ordered
// by ascending room id.
func (s *AvailabilityService) FreeRooms(roomType string, checkin, checkout time.Time) ([]models.Room, error) {
	return s.freeRooms(s.DB, roomType, checkin, checkout, false)
}

// CountFree is the side-effect-free availability query.
func (s *AvailabilityService) CountFree(roomType string, checkin, checkout time.Time) (int, error) {
	free, err := s.FreeRooms(roomType, checkin, checkout)
	if err != nil {
		return 0, err
	}
	return len(free), nil
}

// freeRooms runs the overlap subtraction on the given handle so the allocation
// transaction can re-check availability under its own isolation. With lock set
// the candidate room rows are read FOR UPDATE, which serializes concurrent
// allocations for the same room type.
func (s *AvailabilityService) freeRooms(tx *gorm.DB, roomType string, checkin, checkout time.Time, lock bool) ([]models.Room, error) {
	if !checkout.After(checkin) {
		return nil, ErrInvalidDateRange
	}

	var typeCount int64
	if err := tx.Model(&models.RoomType{}).Where("type_name = ?", roomType).Count(&typeCount).Error; err != nil {
		return nil, fmt.Errorf("failed to look up room type: %w", err)
	}
	if typeCount == 0 {
		return nil, ErrInvalidRoomType
	}

	q := tx.Where("type = ? AND status = ?", roomType, models.RoomStatusAvailable).Order("id ASC")
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	if len(rooms) == 0 {
		return []models.Room{}, nil
	}

	roomIDs := make([]uint, 0, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
	}

	var reservations []models.Reservation
	if err := tx.
		Select("room_id", "checkin_date", "checkout_date").
		Where("room_id IN ? AND status <> ?", roomIDs, models.ReservationCancelled).
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}

	busy := make(map[uint]bool, len(reservations))
	for _, r := range reservations {
		if Overlaps(r.CheckinDate, r.CheckoutDate, checkin, checkout) {
			busy[r.RoomID] = true
		}
	}

	return filterFree(rooms, busy), nil
}
