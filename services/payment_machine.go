package services

import (
	"context"
	"log"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/utils"
)

// Allocator is what the state machine triggers when a session is confirmed.
// *ReservationService satisfies it.
type Allocator interface {
	Allocate(req AllocationRequest) ([]models.Reservation, []uint, error)
}

// Notifier is the best-effort follow-up after a successful allocation. Its
// failure must never affect the reservation rows, so the machine runs it in a
// fire-and-forget goroutine.
type Notifier func(req AllocationRequest, reservations []models.Reservation)

// WatchOutcome is the terminal view a watcher reports: the status the watch
// ended on, and for confirmed sessions the allocation result that was
// published alongside it.
type WatchOutcome struct {
	Status string
	Update StatusUpdate
}

// PaymentMachine drives a payment session from pending to a terminal state.
//
// Confirm and Reject are invoked by the external confirming party (the device
// that scanned the QR payload). Watch is what a checkout flow blocks on while
// the countdown runs. The store's single-transition guarantee makes the first
// confirm or reject authoritative; later attempts fail harmlessly.
type PaymentMachine struct {
	Store        PaymentStore
	Reservations Allocator
	Notify       Notifier
}

func NewPaymentMachine(store PaymentStore, reservations Allocator, notify Notifier) *PaymentMachine {
	return &PaymentMachine{Store: store, Reservations: reservations, Notify: notify}
}

// Open creates a pending session and stages the reservation payload that will
// be replayed on confirmation.
func (m *PaymentMachine) Open(ctx context.Context, amount float64, isDeposit bool, userID uint, userName string, payload AllocationRequest) (models.PaymentSession, error) {
	session, err := m.Store.Create(ctx, amount, isDeposit, userID, userName)
	if err != nil {
		return models.PaymentSession{}, err
	}
	if err := m.Store.StagePayload(ctx, session.ID, payload); err != nil {
		return models.PaymentSession{}, err
	}
	return session, nil
}

// Session exposes the stored session to anyone holding its identifier.
func (m *PaymentMachine) Session(ctx context.Context, id string) (models.PaymentSession, error) {
	return m.Store.Get(ctx, id)
}

// Confirm transitions the session to confirmed and synchronously runs the
// allocation with the staged payload.
//
// When allocation fails the session stays confirmed: the caller is told the
// booking was not created and must not treat payment as booking. The outcome
// is published on the session feed either way, so watching devices see it.
func (m *PaymentMachine) Confirm(ctx context.Context, id string) (StatusUpdate, error) {
	if err := m.Store.SetStatus(ctx, id, models.PaymentConfirmed, time.Now()); err != nil {
		return StatusUpdate{}, err
	}
	utils.PaymentTransitions.WithLabelValues(models.PaymentConfirmed).Inc()

	update := StatusUpdate{Status: models.PaymentConfirmed}

	payload, err := m.Store.Payload(ctx, id)
	if err != nil {
		log.Printf("❌ payment %s confirmed but staged payload unavailable: %v", id, err)
		update.Error = "allocation_failed"
		m.publish(ctx, id, update)
		return update, err
	}
	payload.Status = models.ReservationConfirmed

	reservations, roomIDs, allocErr := m.Reservations.Allocate(payload)
	if allocErr != nil {
		log.Printf("❌ payment %s confirmed but allocation failed: %v", id, allocErr)
		update.Error = allocErr.Error()
		m.publish(ctx, id, update)
		return update, allocErr
	}

	for _, r := range reservations {
		update.ReservationIDs = append(update.ReservationIDs, r.ID)
	}
	update.RoomIDs = roomIDs
	m.publish(ctx, id, update)

	if m.Notify != nil {
		go m.Notify(payload, reservations)
	}

	return update, nil
}

// Reject transitions the session to rejected. Rejection never allocates.
func (m *PaymentMachine) Reject(ctx context.Context, id string) error {
	if err := m.Store.SetStatus(ctx, id, models.PaymentRejected, time.Now()); err != nil {
		return err
	}
	utils.PaymentTransitions.WithLabelValues(models.PaymentRejected).Inc()
	m.publish(ctx, id, StatusUpdate{Status: models.PaymentRejected})
	return nil
}

// Watch blocks until the session reaches a terminal view: a status pushed on
// the feed, or the deadline passing while still pending, which it reports as
// expired without writing anything. Cancelling ctx tears the watch down with
// no side effects.
func (m *PaymentMachine) Watch(ctx context.Context, id string) (WatchOutcome, error) {
	// subscribe before reading so a transition between the two is not missed
	updates, teardown, err := m.Store.Subscribe(ctx, id)
	if err != nil {
		return WatchOutcome{}, err
	}
	defer teardown()

	session, err := m.Store.Get(ctx, id)
	if err != nil {
		return WatchOutcome{}, err
	}
	if models.TerminalPayment(session.Status) {
		return WatchOutcome{Status: session.Status, Update: StatusUpdate{Status: session.Status}}, nil
	}

	remaining := time.Until(session.ExpiresAt)
	if remaining <= 0 {
		utils.PaymentTransitions.WithLabelValues(models.PaymentExpired).Inc()
		return WatchOutcome{Status: models.PaymentExpired, Update: StatusUpdate{Status: models.PaymentExpired}}, nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return WatchOutcome{}, ctx.Err()
		case <-timer.C:
			// the deadline and the feed race; if a terminal transition was
			// stored just before the timer fired, report that instead
			session, err := m.Store.Get(ctx, id)
			if err == nil && models.TerminalPayment(session.Status) {
				return WatchOutcome{Status: session.Status, Update: StatusUpdate{Status: session.Status}}, nil
			}
			utils.PaymentTransitions.WithLabelValues(models.PaymentExpired).Inc()
			return WatchOutcome{Status: models.PaymentExpired, Update: StatusUpdate{Status: models.PaymentExpired}}, nil
		case update, ok := <-updates:
			if !ok {
				return WatchOutcome{}, ctx.Err()
			}
			if models.TerminalPayment(update.Status) {
				return WatchOutcome{Status: update.Status, Update: update}, nil
			}
		}
	}
}

func (m *PaymentMachine) publish(ctx context.Context, id string, update StatusUpdate) {
	if err := m.Store.Publish(ctx, id, update); err != nil {
		log.Printf("warning: failed to publish payment update for %s: %v", id, err)
	}
}
