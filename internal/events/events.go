package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"bookingpro/internal/models"
)

const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
)

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	BookingID string
	Payload   []byte
	CreatedAt time.Time
}

// NewBookingEvent builds an event carrying the booking as JSON.
func NewBookingEvent(eventType string, b *models.Booking) (Event, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return Event{}, fmt.Errorf("marshal booking %s: %w", b.ID, err)
	}
	return Event{Type: eventType, BookingID: b.ID, Payload: payload}, nil
}

// Booking decodes the payload written by NewBookingEvent.
func (e Event) Booking() (*models.Booking, error) {
	var b models.Booking
	if err := json.Unmarshal(e.Payload, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	now         func() time.Time
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler), now: time.Now}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish runs every subscriber of the event type synchronously and joins
// their errors. A failing handler does not stop the rest.
func (b *EventBus) Publish(event Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = b.now()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, fmt.Errorf("%s handler: %w", event.Type, err))
		}
	}
	return errors.Join(errs...)
}
