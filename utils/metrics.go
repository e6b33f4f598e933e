package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters exported on /metrics.
var (
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_reservations_created_total",
		Help: "Reservation rows committed by the allocation transaction.",
	})

	PaymentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_payment_transitions_total",
		Help: "Payment session terminal transitions by resulting status.",
	}, []string{"status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_http_requests_total",
		Help: "Handled HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})
)
