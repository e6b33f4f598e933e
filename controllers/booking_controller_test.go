package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mocks ---

type mockReservationService struct {
	allocateFn func(req services.AllocationRequest) ([]models.Reservation, []uint, error)
	cancelFn   func(reservationID, userID uint) error
	listFn     func(userID uint) ([]models.Reservation, error)
	searchFn   func(search string, page, perPage int) ([]models.Reservation, int64, error)

	lastAllocation *services.AllocationRequest
}

func (m *mockReservationService) Allocate(req services.AllocationRequest) ([]models.Reservation, []uint, error) {
	m.lastAllocation = &req
	if m.allocateFn != nil {
		return m.allocateFn(req)
	}
	return []models.Reservation{{ID: 1, RoomID: 4, Status: req.Status}}, []uint{4}, nil
}

func (m *mockReservationService) Cancel(reservationID, userID uint) error {
	if m.cancelFn != nil {
		return m.cancelFn(reservationID, userID)
	}
	return nil
}

func (m *mockReservationService) ListByUser(userID uint) ([]models.Reservation, error) {
	if m.listFn != nil {
		return m.listFn(userID)
	}
	return nil, nil
}

func (m *mockReservationService) Search(search string, page, perPage int) ([]models.Reservation, int64, error) {
	if m.searchFn != nil {
		return m.searchFn(search, page, perPage)
	}
	return nil, 0, nil
}

type mockAvailabilityService struct {
	countFn func(roomType string, checkin, checkout time.Time) (int, error)
}

func (m *mockAvailabilityService) CountFree(roomType string, checkin, checkout time.Time) (int, error) {
	if m.countFn != nil {
		return m.countFn(roomType, checkin, checkout)
	}
	return 0, nil
}

// --- Harness ---

// authAs simulates what RequireAuth would have set on the context.
func authAs(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func bookingRouter(bc *BookingController, userID uint) *gin.Engine {
	r := gin.New()
	r.POST("/api/check-available-rooms", bc.CheckAvailableRooms)
	r.POST("/api/booking", authAs(userID), bc.CreateBooking)
	r.GET("/api/bookings", authAs(userID), bc.GetBookings)
	r.GET("/api/bookings/user/:id", authAs(userID), bc.GetUserBookings)
	r.DELETE("/api/bookings/:id", authAs(userID), bc.CancelBooking)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func validBooking() map[string]interface{} {
	checkin := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	checkout := time.Now().AddDate(0, 0, 9).Format("2006-01-02")
	return map[string]interface{}{
		"name":            "Demo Guest",
		"email":           "guest@hotel.local",
		"phone":           "0812345678",
		"room_type":       "Deluxe",
		"number_of_rooms": 2,
		"children":        0,
		"member":          2,
		"price":           2600,
		"total_price":     5200,
		"checkin_date":    checkin,
		"checkout_date":   checkout,
	}
}

// --- CreateBooking ---

func TestCreateBooking_Success(t *testing.T) {
	reservations := &mockReservationService{
		allocateFn: func(req services.AllocationRequest) ([]models.Reservation, []uint, error) {
			return []models.Reservation{
				{ID: 10, RoomID: 4, Status: req.Status},
				{ID: 11, RoomID: 5, Status: req.Status},
			}, []uint{4, 5}, nil
		},
	}
	bc := NewBookingController(reservations, &mockAvailabilityService{})
	r := bookingRouter(bc, 7)

	w := doJSON(r, http.MethodPost, "/api/booking", validBooking())

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Booking created successfully!", body["message"])
	assert.Len(t, body["room_ids"], 2)

	// the authed user owns the allocation
	assert.Equal(t, uint(7), reservations.lastAllocation.UserID)
	assert.Equal(t, models.ReservationConfirmed, reservations.lastAllocation.Status)
}

func TestCreateBooking_InsufficientRooms(t *testing.T) {
	reservations := &mockReservationService{
		allocateFn: func(req services.AllocationRequest) ([]models.Reservation, []uint, error) {
			return nil, nil, &services.InsufficientRoomsError{Requested: 2, Available: 1}
		},
	}
	bc := NewBookingController(reservations, &mockAvailabilityService{})
	r := bookingRouter(bc, 7)

	w := doJSON(r, http.MethodPost, "/api/booking", validBooking())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Not enough available rooms for the selected dates.", body["message"])
	assert.Equal(t, float64(1), body["available_rooms"])
}

func TestCreateBooking_InvalidRoomType(t *testing.T) {
	reservations := &mockReservationService{
		allocateFn: func(req services.AllocationRequest) ([]models.Reservation, []uint, error) {
			return nil, nil, services.ErrInvalidRoomType
		},
	}
	bc := NewBookingController(reservations, &mockAvailabilityService{})
	r := bookingRouter(bc, 7)

	w := doJSON(r, http.MethodPost, "/api/booking", validBooking())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid room type.", decodeBody(t, w)["message"])
}

func TestCreateBooking_ValidationFailures(t *testing.T) {
	bc := NewBookingController(&mockReservationService{}, &mockAvailabilityService{})
	r := bookingRouter(bc, 7)

	past := time.Now().AddDate(0, 0, -3).Format("2006-01-02")
	farFuture := time.Now().AddDate(0, 8, 0).Format("2006-01-02")
	farFutureEnd := time.Now().AddDate(0, 8, 2).Format("2006-01-02")
	checkin := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	tests := []struct {
		name    string
		mutate  func(m map[string]interface{})
		message string
	}{
		{
			"zero rooms",
			func(m map[string]interface{}) { m["number_of_rooms"] = -1 },
			"number_of_rooms must be at least 1.",
		},
		{
			"checkin in the past",
			func(m map[string]interface{}) { m["checkin_date"] = past },
			"Check-in date must be today or later.",
		},
		{
			"beyond booking horizon",
			func(m map[string]interface{}) {
				m["checkin_date"] = farFuture
				m["checkout_date"] = farFutureEnd
			},
			"You can only book up to 6 months in advance.",
		},
		{
			"checkout not after checkin",
			func(m map[string]interface{}) { m["checkout_date"] = checkin },
			"Check-out date must be after check-in date.",
		},
		{
			"bad date format",
			func(m map[string]interface{}) { m["checkin_date"] = "07/06/2026" },
			"Invalid checkin_date format.",
		},
		{
			"unknown status",
			func(m map[string]interface{}) { m["status"] = "checked_in" },
			"Invalid status.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validBooking()
			tt.mutate(payload)

			w := doJSON(r, http.MethodPost, "/api/booking", payload)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, tt.message, decodeBody(t, w)["message"])
		})
	}
}

func TestCreateBooking_MissingRequiredFields(t *testing.T) {
	bc := NewBookingController(&mockReservationService{}, &mockAvailabilityService{})
	r := bookingRouter(bc, 7)

	payload := validBooking()
	delete(payload, "email")

	w := doJSON(r, http.MethodPost, "/api/booking", payload)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// --- CheckAvailableRooms ---

func TestCheckAvailableRooms_ReturnsCount(t *testing.T) {
	availability := &mockAvailabilityService{
		countFn: func(roomType string, checkin, checkout time.Time) (int, error) {
			assert.Equal(t, "Deluxe", roomType)
			return 3, nil
		},
	}
	bc := NewBookingController(&mockReservationService{}, availability)
	r := bookingRouter(bc, 7)

	w := doJSON(r, http.MethodPost, "/api/check-available-rooms", map[string]interface{}{
		"room_type":     "Deluxe",
		"checkin_date":  "2026-10-01",
		"checkout_date": "2026-10-03",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decodeBody(t, w)["available_rooms"])
}

func TestCheckAvailableRooms_InvalidRoomType(t *testing.T) {
	availability := &mockAvailabilityService{
		countFn: func(roomType string, checkin, checkout time.Time) (int, error) {
			return 0, services.ErrInvalidRoomType
		},
	}
	bc := NewBookingController(&mockReservationService{}, availability)
	r := bookingRouter(bc, 7)

	w := doJSON(r, http.MethodPost, "/api/check-available-rooms", map[string]interface{}{
		"room_type":     "Penthouse",
		"checkin_date":  "2026-10-01",
		"checkout_date": "2026-10-03",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid room type.", decodeBody(t, w)["message"])
}

// --- CancelBooking ---

func TestCancelBooking_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"success", nil, http.StatusOK, "Booking cancelled successfully"},
		{"not found", services.ErrReservationNotFound, http.StatusNotFound, "Booking not found"},
		{"not owner", services.ErrUnauthorized, http.StatusForbidden, "Unauthorized"},
		{"past checkin", services.ErrTooLate, http.StatusUnprocessableEntity, "Cannot cancel booking. Check-in time has passed or is due."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reservations := &mockReservationService{
				cancelFn: func(reservationID, userID uint) error {
					assert.Equal(t, uint(42), reservationID)
					assert.Equal(t, uint(7), userID)
					return tt.err
				},
			}
			bc := NewBookingController(reservations, &mockAvailabilityService{})
			r := bookingRouter(bc, 7)

			w := doJSON(r, http.MethodDelete, "/api/bookings/42", nil)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decodeBody(t, w)["message"])
		})
	}
}

func TestCancelBooking_BadID(t *testing.T) {
	bc := NewBookingController(&mockReservationService{}, &mockAvailabilityService{})
	r := bookingRouter(bc, 7)

	w := doJSON(r, http.MethodDelete, "/api/bookings/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- GetUserBookings ---

func TestGetUserBookings_OwnListOnly(t *testing.T) {
	reservations := &mockReservationService{
		listFn: func(userID uint) ([]models.Reservation, error) {
			return []models.Reservation{{ID: 1, UserID: userID}}, nil
		},
	}
	bc := NewBookingController(reservations, &mockAvailabilityService{})
	r := bookingRouter(bc, 7)

	w := doJSON(r, http.MethodGet, "/api/bookings/user/7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["bookings"], 1)

	// asking for someone else's list is refused
	w = doJSON(r, http.MethodGet, "/api/bookings/user/8", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- GetBookings ---

func TestGetBookings_Pagination(t *testing.T) {
	reservations := &mockReservationService{
		searchFn: func(search string, page, perPage int) ([]models.Reservation, int64, error) {
			assert.Equal(t, "guest", search)
			assert.Equal(t, 2, page)
			assert.Equal(t, 10, perPage)
			return []models.Reservation{{ID: 21}}, 25, nil
		},
	}
	bc := NewBookingController(reservations, &mockAvailabilityService{})
	r := bookingRouter(bc, 7)

	w := doJSON(r, http.MethodGet, "/api/bookings?search=guest&page=2&per_page=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["current_page"])
	assert.Equal(t, float64(3), body["last_page"])
	assert.Equal(t, float64(25), body["total"])
}
