package models

import "time"

// Payment session statuses. A session transitions exactly once from "pending"
// to a terminal status. "expired" is never written by a confirm/reject; it is
// what a watcher reports when the deadline passes while the stored status is
// still "pending".
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentRejected  = "rejected"
	PaymentExpired   = "expired"
)

// PaymentSession is a short-lived payment intent. It lives in Redis (hash with
// a TTL), not in MySQL: it is the source of truth the confirmation state
// machine reads and writes, and it is never reused.
type PaymentSession struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	IsDeposit bool      `json:"is_deposit"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TerminalPayment reports whether s is a status from which no further
// transition is permitted.
func TerminalPayment(status string) bool {
	return status == PaymentConfirmed || status == PaymentRejected || status == PaymentExpired
}
