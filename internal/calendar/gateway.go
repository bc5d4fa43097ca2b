// Package calendar talks to Google Calendar: busy intervals for the
// availability engine and the events behind bookings.
package calendar

import (
	"context"
	"errors"
	"time"

	"bookingpro/internal/availability"
)

// ErrEventNotFound is returned when the event is already gone.
var ErrEventNotFound = errors.New("calendar event not found")

// EventRequest describes an event to create.
type EventRequest struct {
	Summary     string
	Description string
	Start       time.Time
	Duration    time.Duration
}

// Gateway is the calendar contract used by the bot.
type Gateway interface {
	ListBusyIntervals(ctx context.Context, timeMin, timeMax time.Time) ([]availability.Interval, error)
	CreateEvent(ctx context.Context, req EventRequest) (string, error)
	DeleteEvent(ctx context.Context, eventID string) error
}
