// Package store persists bookings.
package store

import (
	"context"
	"errors"

	"bookingpro/internal/models"
)

var ErrNotFound = errors.New("booking not found")

// BookingStore is the durable record of bookings.
type BookingStore interface {
	// Create saves a booking and returns its generated ID.
	Create(ctx context.Context, b *models.Booking) (string, error)
	// Get returns a booking by ID or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Booking, error)
	// ListByUser returns the user's bookings, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	// List returns bookings matching the filter.
	List(ctx context.Context, f models.Filter) ([]models.Booking, error)
	// Cancel marks a booking cancelled.
	Cancel(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close() error
}
