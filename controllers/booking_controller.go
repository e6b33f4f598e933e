package controllers

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"hotel-reservation/middleware"
	"hotel-reservation/models"
	"hotel-reservation/services"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

// BookingRequest is the inbound multi-room booking payload. The same shape is
// embedded in a payment-session checkout, where it is staged and only
// allocated once the payment is confirmed.
type BookingRequest struct {
	UserID        uint    `json:"user_id"`
	Name          string  `json:"name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Phone         string  `json:"phone"`
	RoomType      string  `json:"room_type" binding:"required"`
	NumberOfRooms int     `json:"number_of_rooms" binding:"required"`
	Children      int     `json:"children"`
	Member        int     `json:"member" binding:"required"`
	Price         float64 `json:"price" binding:"required"`
	TotalPrice    float64 `json:"total_price" binding:"required"`
	DepositPaid   float64 `json:"deposit_paid"`
	CheckinDate   string  `json:"checkin_date" binding:"required"`
	CheckoutDate  string  `json:"checkout_date" binding:"required"`
	Status        string  `json:"status"`
}

type AvailabilityRequest struct {
	RoomType     string `json:"room_type" binding:"required"`
	CheckinDate  string `json:"checkin_date" binding:"required"`
	CheckoutDate string `json:"checkout_date" binding:"required"`
}

// ---------------------------
// Service seams (mocked in handler tests)
// ---------------------------

type reservationService interface {
	Allocate(req services.AllocationRequest) ([]models.Reservation, []uint, error)
	Cancel(reservationID, userID uint) error
	ListByUser(userID uint) ([]models.Reservation, error)
	Search(search string, page, perPage int) ([]models.Reservation, int64, error)
}

type availabilityService interface {
	CountFree(roomType string, checkin, checkout time.Time) (int, error)
}

type BookingController struct {
	Reservations reservationService
	Availability availabilityService
}

func NewBookingController(reservations reservationService, availability availabilityService) *BookingController {
	return &BookingController{Reservations: reservations, Availability: availability}
}

// ---------------------------
// Validation helpers
// ---------------------------

func parseDate(value string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), true
	}
	return time.Time{}, false
}

// validateBookingRequest applies the §6 field rules and returns the validated
// allocation payload, or a client-facing message when the input is rejected.
func validateBookingRequest(req BookingRequest) (services.AllocationRequest, string) {
	var out services.AllocationRequest

	if req.NumberOfRooms < 1 {
		return out, "number_of_rooms must be at least 1."
	}
	if req.Member < 1 {
		return out, "member must be at least 1."
	}
	if req.Children < 0 {
		return out, "children must not be negative."
	}
	if req.DepositPaid < 0 {
		return out, "deposit_paid must not be negative."
	}

	checkin, ok := parseDate(req.CheckinDate)
	if !ok {
		return out, "Invalid checkin_date format."
	}
	checkout, ok := parseDate(req.CheckoutDate)
	if !ok {
		return out, "Invalid checkout_date format."
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if checkin.Before(today) {
		return out, "Check-in date must be today or later."
	}
	if checkin.After(today.AddDate(0, 6, 0)) {
		return out, "You can only book up to 6 months in advance."
	}
	if !checkout.After(checkin) {
		return out, "Check-out date must be after check-in date."
	}

	status := req.Status
	if status == "" {
		status = models.ReservationConfirmed
	}
	switch status {
	case models.ReservationPendingPayment, models.ReservationConfirmed, models.ReservationCancelled:
	default:
		return out, "Invalid status."
	}

	out = services.AllocationRequest{
		UserID:        req.UserID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		RoomType:      req.RoomType,
		NumberOfRooms: req.NumberOfRooms,
		Children:      req.Children,
		Member:        req.Member,
		Price:         req.Price,
		TotalPrice:    req.TotalPrice,
		DepositPaid:   req.DepositPaid,
		CheckinDate:   checkin,
		CheckoutDate:  checkout,
		Status:        status,
	}
	return out, ""
}

// ---------------------------
// Handlers
// ---------------------------

// CreateBooking handles POST /api/booking: validate, allocate atomically,
// answer with the created rows and the claimed room ids.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Invalid request payload",
			"errors":  err.Error(),
		})
		return
	}

	if userID, ok := middleware.AuthedUserID(c); ok && req.UserID == 0 {
		req.UserID = userID
	}

	payload, msg := validateBookingRequest(req)
	if msg != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": msg})
		return
	}

	reservations, roomIDs, err := bc.Reservations.Allocate(payload)
	if err != nil {
		respondAllocationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Booking created successfully!",
		"bookings": reservations,
		"room_ids": roomIDs,
	})
}

func respondAllocationError(c *gin.Context, err error) {
	var insufficient *services.InsufficientRoomsError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message":         "Not enough available rooms for the selected dates.",
			"available_rooms": insufficient.Available,
		})
	case errors.Is(err, services.ErrInvalidRoomType):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid room type."})
	case errors.Is(err, services.ErrInvalidDateRange):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Check-out date must be after check-in date."})
	default:
		log.Printf("❌ Booking error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create booking."})
	}
}

// CheckAvailableRooms handles POST /api/check-available-rooms: count only, no
// allocation side effect.
func (bc *BookingController) CheckAvailableRooms(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid request payload"})
		return
	}

	checkin, ok := parseDate(req.CheckinDate)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid checkin_date format."})
		return
	}
	checkout, ok := parseDate(req.CheckoutDate)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid checkout_date format."})
		return
	}

	count, err := bc.Availability.CountFree(req.RoomType, checkin, checkout)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRoomType):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid room type."})
		case errors.Is(err, services.ErrInvalidDateRange):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Check-out date must be after check-in date."})
		default:
			log.Printf("❌ Check available rooms error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve available rooms."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"available_rooms": count})
}

// CancelBooking handles DELETE /api/bookings/:id through the cancellation
// gate: owner only, and never at or past check-in time.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid booking id"})
		return
	}

	switch err := bc.Reservations.Cancel(uint(id), userID); {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
	case errors.Is(err, services.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized"})
	case errors.Is(err, services.ErrTooLate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Cannot cancel booking. Check-in time has passed or is due."})
	default:
		log.Printf("❌ Cancel booking error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to cancel booking."})
	}
}

// GetUserBookings handles GET /api/bookings/user/:id.
func (bc *BookingController) GetUserBookings(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || uint(id) != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized"})
		return
	}

	bookings, err := bc.Reservations.ListByUser(userID)
	if err != nil {
		log.Printf("❌ List bookings error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve bookings."})
		return
	}
	if bookings == nil {
		bookings = []models.Reservation{}
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBookings handles GET /api/bookings: the paginated staff listing.
func (bc *BookingController) GetBookings(c *gin.Context) {
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "30"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	search := c.Query("search")

	bookings, total, err := bc.Reservations.Search(search, page, perPage)
	if err != nil {
		log.Printf("❌ Booking list error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve bookings."})
		return
	}
	if perPage <= 0 {
		perPage = 30
	}
	if page <= 0 {
		page = 1
	}
	lastPage := int(math.Ceil(float64(total) / float64(perPage)))
	if lastPage == 0 {
		lastPage = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         bookings,
		"current_page": page,
		"last_page":    lastPage,
		"per_page":     perPage,
		"total":        total,
	})
}
