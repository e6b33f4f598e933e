package services

import (
	"errors"
	"fmt"
)

// Business-rule violations recovered at the HTTP boundary. Anything else that
// bubbles out of a service is treated as an opaque persistence/infra fault.
var (
	ErrInvalidRoomType     = errors.New("invalid room type")
	ErrInvalidDateRange    = errors.New("checkout date must be after checkin date")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUnauthorized        = errors.New("reservation belongs to another user")
	ErrTooLate             = errors.New("check-in time has passed or is due")

	ErrSessionNotFound   = errors.New("payment session not found")
	ErrInvalidTransition = errors.New("payment session already finalized")
	ErrSessionExpired    = errors.New("payment session expired")
)

// InsufficientRoomsError reports an allocation attempt that found fewer free
// rooms than requested. Available is included so the client can retry with a
// smaller request.
type InsufficientRoomsError struct {
	Requested int
	Available int
}

func (e *InsufficientRoomsError) Error() string {
	return fmt.Sprintf("not enough available rooms: requested %d, available %d", e.Requested, e.Available)
}
