package store

import (
	"testing"

	"bookingpro/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSortNewestFirst(t *testing.T) {
	bookings := []models.Booking{
		{ID: "a", Date: "2026-10-20", Time: "09:00"},
		{ID: "b", Date: "2026-10-21", Time: "10:00"},
		{ID: "c", Date: "2026-10-20", Time: "17:00"},
	}

	sortNewestFirst(bookings)

	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
}

func TestFirestoreSatisfiesBookingStore(t *testing.T) {
	var _ BookingStore = (*Firestore)(nil)
	var _ BookingStore = (*SQLite)(nil)
}
