package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// --- Mock machine ---

type mockPaymentMachine struct {
	openFn    func(ctx context.Context, amount float64, isDeposit bool, userID uint, userName string, payload services.AllocationRequest) (models.PaymentSession, error)
	sessionFn func(ctx context.Context, id string) (models.PaymentSession, error)
	confirmFn func(ctx context.Context, id string) (services.StatusUpdate, error)
	rejectFn  func(ctx context.Context, id string) error
	watchFn   func(ctx context.Context, id string) (services.WatchOutcome, error)
}

func (m *mockPaymentMachine) Open(ctx context.Context, amount float64, isDeposit bool, userID uint, userName string, payload services.AllocationRequest) (models.PaymentSession, error) {
	if m.openFn != nil {
		return m.openFn(ctx, amount, isDeposit, userID, userName, payload)
	}
	return models.PaymentSession{}, nil
}

func (m *mockPaymentMachine) Session(ctx context.Context, id string) (models.PaymentSession, error) {
	if m.sessionFn != nil {
		return m.sessionFn(ctx, id)
	}
	return models.PaymentSession{}, services.ErrSessionNotFound
}

func (m *mockPaymentMachine) Confirm(ctx context.Context, id string) (services.StatusUpdate, error) {
	if m.confirmFn != nil {
		return m.confirmFn(ctx, id)
	}
	return services.StatusUpdate{}, nil
}

func (m *mockPaymentMachine) Reject(ctx context.Context, id string) error {
	if m.rejectFn != nil {
		return m.rejectFn(ctx, id)
	}
	return nil
}

func (m *mockPaymentMachine) Watch(ctx context.Context, id string) (services.WatchOutcome, error) {
	if m.watchFn != nil {
		return m.watchFn(ctx, id)
	}
	return services.WatchOutcome{}, nil
}

func paymentRouter(pc *PaymentController, userID uint) *gin.Engine {
	r := gin.New()
	r.POST("/api/payment-sessions", authAs(userID), pc.CreateSession)
	r.GET("/api/payment-sessions/:id", pc.GetSession)
	r.PATCH("/api/payment-sessions/:id", pc.UpdateStatus)
	r.GET("/api/payment-sessions/:id/watch", pc.WatchSession)
	return r
}

func validCheckout() map[string]interface{} {
	return map[string]interface{}{
		"amount":     5200,
		"is_deposit": false,
		"booking":    validBooking(),
	}
}

// --- CreateSession ---

func TestCreateSession_Success(t *testing.T) {
	machine := &mockPaymentMachine{
		openFn: func(ctx context.Context, amount float64, isDeposit bool, userID uint, userName string, payload services.AllocationRequest) (models.PaymentSession, error) {
			assert.Equal(t, float64(5200), amount)
			assert.False(t, isDeposit)
			assert.Equal(t, uint(7), userID)
			assert.Equal(t, uint(7), payload.UserID)
			assert.Equal(t, models.ReservationConfirmed, payload.Status)
			return models.PaymentSession{
				ID:        "abc-123",
				Status:    models.PaymentPending,
				ExpiresAt: time.Now().Add(5 * time.Minute),
			}, nil
		},
	}
	r := paymentRouter(NewPaymentController(machine), 7)

	w := doJSON(r, http.MethodPost, "/api/payment-sessions", validCheckout())

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "abc-123", body["id"])
	assert.Equal(t, models.PaymentPending, body["status"])
	assert.NotEmpty(t, body["expires_at"])
}

func TestCreateSession_RejectsNonPositiveAmount(t *testing.T) {
	r := paymentRouter(NewPaymentController(&mockPaymentMachine{}), 7)

	payload := validCheckout()
	payload["amount"] = -50

	w := doJSON(r, http.MethodPost, "/api/payment-sessions", payload)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "amount must be positive.", decodeBody(t, w)["message"])
}

func TestCreateSession_RejectsInvalidBooking(t *testing.T) {
	r := paymentRouter(NewPaymentController(&mockPaymentMachine{}), 7)

	payload := validCheckout()
	booking := payload["booking"].(map[string]interface{})
	booking["checkout_date"] = booking["checkin_date"]

	w := doJSON(r, http.MethodPost, "/api/payment-sessions", payload)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Check-out date must be after check-in date.", decodeBody(t, w)["message"])
}

// --- GetSession ---

func TestGetSession_ByCapabilityID(t *testing.T) {
	machine := &mockPaymentMachine{
		sessionFn: func(ctx context.Context, id string) (models.PaymentSession, error) {
			assert.Equal(t, "abc-123", id)
			return models.PaymentSession{ID: id, Status: models.PaymentPending, Amount: 5200}, nil
		},
	}
	r := paymentRouter(NewPaymentController(machine), 7)

	w := doJSON(r, http.MethodGet, "/api/payment-sessions/abc-123", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "abc-123", body["id"])
	assert.Equal(t, float64(5200), body["amount"])
}

func TestGetSession_NotFound(t *testing.T) {
	r := paymentRouter(NewPaymentController(&mockPaymentMachine{}), 7)

	w := doJSON(r, http.MethodGet, "/api/payment-sessions/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- UpdateStatus ---

func TestUpdateStatus_ConfirmedWithBooking(t *testing.T) {
	machine := &mockPaymentMachine{
		confirmFn: func(ctx context.Context, id string) (services.StatusUpdate, error) {
			return services.StatusUpdate{
				Status:         models.PaymentConfirmed,
				ReservationIDs: []uint{10, 11},
				RoomIDs:        []uint{4, 5},
			}, nil
		},
	}
	r := paymentRouter(NewPaymentController(machine), 7)

	w := doJSON(r, http.MethodPatch, "/api/payment-sessions/abc-123", map[string]interface{}{"status": "confirmed"})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, models.PaymentConfirmed, body["status"])
	assert.Equal(t, true, body["booking_created"])
	assert.Len(t, body["reservation_ids"], 2)
}

func TestUpdateStatus_ConfirmedButAllocationFailed(t *testing.T) {
	machine := &mockPaymentMachine{
		confirmFn: func(ctx context.Context, id string) (services.StatusUpdate, error) {
			return services.StatusUpdate{
				Status: models.PaymentConfirmed,
				Error:  "not enough rooms available: requested 2, available 0",
			}, &services.InsufficientRoomsError{Requested: 2, Available: 0}
		},
	}
	r := paymentRouter(NewPaymentController(machine), 7)

	w := doJSON(r, http.MethodPatch, "/api/payment-sessions/abc-123", map[string]interface{}{"status": "confirmed"})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, models.PaymentConfirmed, body["status"])
	assert.Equal(t, false, body["booking_created"])
}

func TestUpdateStatus_Rejected(t *testing.T) {
	rejected := false
	machine := &mockPaymentMachine{
		rejectFn: func(ctx context.Context, id string) error {
			rejected = true
			return nil
		},
	}
	r := paymentRouter(NewPaymentController(machine), 7)

	w := doJSON(r, http.MethodPatch, "/api/payment-sessions/abc-123", map[string]interface{}{"status": "rejected"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, rejected)
	assert.Equal(t, models.PaymentRejected, decodeBody(t, w)["status"])
}

func TestUpdateStatus_TransitionErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"expired", services.ErrSessionExpired, http.StatusGone},
		{"already finalized", services.ErrInvalidTransition, http.StatusConflict},
		{"missing", services.ErrSessionNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := &mockPaymentMachine{
				confirmFn: func(ctx context.Context, id string) (services.StatusUpdate, error) {
					return services.StatusUpdate{}, tt.err
				},
			}
			r := paymentRouter(NewPaymentController(machine), 7)

			w := doJSON(r, http.MethodPatch, "/api/payment-sessions/abc-123", map[string]interface{}{"status": "confirmed"})

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestUpdateStatus_BadTargetStatus(t *testing.T) {
	r := paymentRouter(NewPaymentController(&mockPaymentMachine{}), 7)

	w := doJSON(r, http.MethodPatch, "/api/payment-sessions/abc-123", map[string]interface{}{"status": "expired"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "status must be confirmed or rejected.", decodeBody(t, w)["message"])
}

// --- WatchSession ---

func TestWatchSession_StreamsTerminalOutcome(t *testing.T) {
	machine := &mockPaymentMachine{
		sessionFn: func(ctx context.Context, id string) (models.PaymentSession, error) {
			return models.PaymentSession{ID: id, Status: models.PaymentPending}, nil
		},
		watchFn: func(ctx context.Context, id string) (services.WatchOutcome, error) {
			return services.WatchOutcome{
				Status: models.PaymentConfirmed,
				Update: services.StatusUpdate{Status: models.PaymentConfirmed, RoomIDs: []uint{4}},
			}, nil
		},
	}
	r := paymentRouter(NewPaymentController(machine), 7)

	w := doJSON(r, http.MethodGet, "/api/payment-sessions/abc-123/watch", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
	assert.Contains(t, w.Body.String(), `"status":"confirmed"`)
}

func TestWatchSession_TerminalSessionShortCircuits(t *testing.T) {
	watched := false
	machine := &mockPaymentMachine{
		sessionFn: func(ctx context.Context, id string) (models.PaymentSession, error) {
			return models.PaymentSession{ID: id, Status: models.PaymentRejected}, nil
		},
		watchFn: func(ctx context.Context, id string) (services.WatchOutcome, error) {
			watched = true
			return services.WatchOutcome{}, nil
		},
	}
	r := paymentRouter(NewPaymentController(machine), 7)

	w := doJSON(r, http.MethodGet, "/api/payment-sessions/abc-123/watch", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"rejected"`)
	assert.False(t, watched)
}

func TestWatchSession_NotFound(t *testing.T) {
	r := paymentRouter(NewPaymentController(&mockPaymentMachine{}), 7)

	w := doJSON(r, http.MethodGet, "/api/payment-sessions/missing/watch", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
