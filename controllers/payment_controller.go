package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"hotel-reservation/middleware"
	"hotel-reservation/models"
	"hotel-reservation/services"

	"github.com/gin-gonic/gin"
)

// CreatePaymentSessionRequest opens a checkout: the amount being paid plus the
// booking that will be allocated once the payment is confirmed out-of-band.
type CreatePaymentSessionRequest struct {
	Amount    float64        `json:"amount" binding:"required"`
	IsDeposit bool           `json:"is_deposit"`
	Booking   BookingRequest `json:"booking" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type paymentMachine interface {
	Open(ctx context.Context, amount float64, isDeposit bool, userID uint, userName string, payload services.AllocationRequest) (models.PaymentSession, error)
	Session(ctx context.Context, id string) (models.PaymentSession, error)
	Confirm(ctx context.Context, id string) (services.StatusUpdate, error)
	Reject(ctx context.Context, id string) error
	Watch(ctx context.Context, id string) (services.WatchOutcome, error)
}

type PaymentController struct {
	Machine paymentMachine
}

func NewPaymentController(machine paymentMachine) *PaymentController {
	return &PaymentController{Machine: machine}
}

// CreateSession handles POST /api/payment-sessions. The reservation payload is
// validated up front and staged with the session; nothing touches the
// reservations table until a confirm arrives.
func (pc *PaymentController) CreateSession(c *gin.Context) {
	userID, ok := middleware.AuthedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
		return
	}

	var req CreatePaymentSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Invalid request payload",
			"errors":  err.Error(),
		})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "amount must be positive."})
		return
	}

	req.Booking.UserID = userID
	req.Booking.Status = models.ReservationConfirmed
	payload, msg := validateBookingRequest(req.Booking)
	if msg != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": msg})
		return
	}

	session, err := pc.Machine.Open(c.Request.Context(), req.Amount, req.IsDeposit, userID, req.Booking.Name, payload)
	if err != nil {
		log.Printf("❌ Create payment session error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create payment session."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         session.ID,
		"status":     session.Status,
		"expires_at": session.ExpiresAt,
	})
}

// GetSession handles GET /api/payment-sessions/:id. Anyone holding the id may
// read it; that is how the QR second device renders the confirm screen.
func (pc *PaymentController) GetSession(c *gin.Context) {
	session, err := pc.Machine.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Payment session not found"})
			return
		}
		log.Printf("❌ Get payment session error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load payment session."})
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateStatus handles PATCH /api/payment-sessions/:id from the external
// confirming party. Confirm triggers the allocation synchronously; the
// response tells that party whether the booking was actually created.
func (pc *PaymentController) UpdateStatus(c *gin.Context) {
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid request payload"})
		return
	}

	id := c.Param("id")
	switch req.Status {
	case models.PaymentConfirmed:
		update, err := pc.Machine.Confirm(c.Request.Context(), id)
		if err != nil && update.Status != models.PaymentConfirmed {
			respondTransitionError(c, err)
			return
		}
		if err != nil {
			// payment is confirmed but the downstream allocation did not
			// complete; payment must not be treated as booking
			c.JSON(http.StatusOK, gin.H{
				"status":          models.PaymentConfirmed,
				"booking_created": false,
				"message":         "Payment confirmed but booking could not be created.",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":          models.PaymentConfirmed,
			"booking_created": true,
			"reservation_ids": update.ReservationIDs,
			"room_ids":        update.RoomIDs,
		})
	case models.PaymentRejected:
		if err := pc.Machine.Reject(c.Request.Context(), id); err != nil {
			respondTransitionError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": models.PaymentRejected})
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "status must be confirmed or rejected."})
	}
}

func respondTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Payment session not found"})
	case errors.Is(err, services.ErrSessionExpired):
		c.JSON(http.StatusGone, gin.H{"message": "Payment session expired"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"message": "Payment session already finalized"})
	default:
		log.Printf("❌ Payment transition error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update payment session."})
	}
}

// WatchSession handles GET /api/payment-sessions/:id/watch as a server-sent
// event stream: the current status immediately, then the terminal outcome
// when the confirm/reject race against the countdown resolves. Closing the
// connection tears the watch down without side effects.
func (pc *PaymentController) WatchSession(c *gin.Context) {
	id := c.Param("id")

	session, err := pc.Machine.Session(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Payment session not found"})
			return
		}
		log.Printf("❌ Watch payment session error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load payment session."})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("status", services.StatusUpdate{Status: session.Status})
	c.Writer.Flush()
	if models.TerminalPayment(session.Status) {
		return
	}

	outcome, err := pc.Machine.Watch(c.Request.Context(), id)
	if err != nil {
		// client went away or infra failure; nothing more to stream
		return
	}

	c.SSEvent("status", outcome.Update)
	c.Writer.Flush()
}
