package metrics

import (
	"sync"

	"bookingpro/internal/events"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookingpro",
			Name:      "bookings_created_total",
			Help:      "Count of confirmed bookings.",
		},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookingpro",
			Name:      "bookings_cancelled_total",
			Help:      "Count of bookings cancelled by clients.",
		},
	)

	slotQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookingpro",
			Name:      "slot_queries_total",
			Help:      "Count of availability lookups by result.",
		},
		[]string{"result"},
	)

	gatewayErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookingpro",
			Name:      "gateway_errors_total",
			Help:      "Count of calendar and store failures by operation.",
		},
		[]string{"op"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingCancelled, slotQueries, gatewayErrors)
	})
}

// Observe counts booking lifecycle events from the bus.
func Observe(bus *events.EventBus) {
	bus.Subscribe(events.BookingCreated, func(events.Event) error {
		bookingCreated.Inc()
		return nil
	})
	bus.Subscribe(events.BookingCancelled, func(events.Event) error {
		bookingCancelled.Inc()
		return nil
	})
}

// Slot query results.
const (
	SlotsFound = "found"
	SlotsEmpty = "empty"
	SlotsError = "error"
)

func IncSlotQuery(result string) {
	slotQueries.WithLabelValues(result).Inc()
}

func IncGatewayError(op string) {
	gatewayErrors.WithLabelValues(op).Inc()
}
