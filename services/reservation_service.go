package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/utils"

	"gorm.io/gorm"
)

// AllocationRequest is a fully validated multi-room booking request. It is
// also the payload staged alongside a payment session: when the session is
// confirmed the state machine replays it through Allocate.
type AllocationRequest struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`

	RoomType      string `json:"room_type"`
	NumberOfRooms int    `json:"number_of_rooms"`
	Children      int    `json:"children"`
	Member        int    `json:"member"`

	Price       float64 `json:"price"`
	TotalPrice  float64 `json:"total_price"`
	DepositPaid float64 `json:"deposit_paid"`

	CheckinDate  time.Time `json:"checkin_date"`
	CheckoutDate time.Time `json:"checkout_date"`

	Status string `json:"status"`
}

type ReservationService struct {
	DB           *gorm.DB
	Availability *AvailabilityService
}

func NewReservationService(db *gorm.DB, availability *AvailabilityService) *ReservationService {
	return &ReservationService{DB: db, Availability: availability}
}

// Allocate atomically claims request.NumberOfRooms free rooms.
//
// Availability is re-resolved inside the transaction even when the caller
// checked earlier: time has elapsed (the payment window) and other allocations
// may have committed since. The candidate room rows are locked FOR UPDATE, so
// two simultaneous attempts for the same type and range cannot both observe
// the same free room. Either every reservation row is created or none are.
func (s *ReservationService) Allocate(req AllocationRequest) ([]models.Reservation, []uint, error) {
	if req.NumberOfRooms < 1 {
		return nil, nil, fmt.Errorf("validation: number_of_rooms must be >= 1")
	}
	if req.Status == "" {
		req.Status = models.ReservationConfirmed
	}

	var created []models.Reservation
	var claimed []uint

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		free, err := s.Availability.freeRooms(tx, req.RoomType, req.CheckinDate, req.CheckoutDate, true)
		if err != nil {
			return err
		}
		if len(free) < req.NumberOfRooms {
			return &InsufficientRoomsError{Requested: req.NumberOfRooms, Available: len(free)}
		}

		shares := SplitTotal(req.TotalPrice, req.NumberOfRooms)
		for i := 0; i < req.NumberOfRooms; i++ {
			room := free[i]
			reservation := models.Reservation{
				UserID:        req.UserID,
				Name:          req.Name,
				Email:         req.Email,
				Phone:         req.Phone,
				RoomType:      req.RoomType,
				NumberOfRooms: 1,
				Children:      req.Children,
				Member:        req.Member,
				RoomID:        room.ID,
				Price:         req.Price,
				TotalPrice:    shares[i],
				DepositPaid:   req.DepositPaid,
				CheckinDate:   req.CheckinDate,
				CheckoutDate:  req.CheckoutDate,
				Status:        req.Status,
			}
			if err := tx.Create(&reservation).Error; err != nil {
				return fmt.Errorf("failed to create reservation for room %d: %w", room.ID, err)
			}
			created = append(created, reservation)
			claimed = append(claimed, room.ID)
		}
		return nil
	})

	if txErr != nil {
		return nil, nil, txErr
	}

	// audit trail of the claimed physical rooms
	log.Printf("✅ Booking created with room IDs: %v", claimed)
	utils.ReservationsCreated.Add(float64(len(created)))

	return created, claimed, nil
}

// Cancel voids a reservation and releases its room.
//
// The requester must own the reservation, and cancellation is refused from the
// check-in instant onward. The row is retained with status "cancelled"; the
// availability resolver excludes it from every overlap check.
func (s *ReservationService) Cancel(reservationID, userID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("failed to load reservation: %w", err)
		}

		if reservation.UserID != userID {
			return ErrUnauthorized
		}
		if reservation.Status == models.ReservationCancelled {
			return nil
		}
		if !time.Now().Before(reservation.CheckinDate) {
			return ErrTooLate
		}

		if err := tx.Model(&reservation).Update("status", models.ReservationCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel reservation: %w", err)
		}

		if err := tx.Model(&models.Room{}).
			Where("id = ?", reservation.RoomID).
			Update("status", models.RoomStatusAvailable).Error; err != nil {
			return fmt.Errorf("failed to release room %d: %w", reservation.RoomID, err)
		}

		return nil
	})
}

// ListByUser returns a user's reservations, newest first.
func (s *ReservationService) ListByUser(userID uint) ([]models.Reservation, error) {
	var list []models.Reservation
	if err := s.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve reservations: %w", err)
	}
	return list, nil
}

// Search is the paginated staff listing with a free-text filter over contact
// fields and room type.
func (s *ReservationService) Search(search string, page, perPage int) ([]models.Reservation, int64, error) {
	if perPage <= 0 {
		perPage = 30
	}
	if page <= 0 {
		page = 1
	}

	q := s.DB.Model(&models.Reservation{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR phone LIKE ? OR room_type LIKE ?", like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	var list []models.Reservation
	if err := q.
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve reservations: %w", err)
	}

	return list, total, nil
}
