package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBooking_Helpers(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	b := &Booking{
		ID:     "AbCdEf123456",
		UserID: "42",
		Date:   "2026-10-20",
		Time:   "11:00",
		Status: StatusConfirmed,
	}

	t.Run("StartsAt", func(t *testing.T) {
		assert.Equal(t, time.Date(2026, 10, 20, 11, 0, 0, 0, loc), b.StartsAt(loc))
		broken := &Booking{Date: "20.10.2026", Time: "11:00"}
		assert.True(t, broken.StartsAt(loc).IsZero())
	})

	t.Run("IsUpcoming", func(t *testing.T) {
		assert.True(t, b.IsUpcoming(time.Date(2026, 10, 20, 10, 59, 0, 0, loc)))
		assert.False(t, b.IsUpcoming(time.Date(2026, 10, 20, 11, 0, 0, 0, loc)))

		cancelled := *b
		cancelled.Status = StatusCancelled
		assert.False(t, cancelled.IsUpcoming(time.Date(2026, 10, 1, 0, 0, 0, 0, loc)))
	})

	t.Run("ShortID", func(t *testing.T) {
		assert.Equal(t, "123456", b.ShortID())
		assert.Equal(t, "abc", (&Booking{ID: "abc"}).ShortID())
	})

	t.Run("Filter", func(t *testing.T) {
		assert.True(t, Filter{}.Match(b))
		assert.True(t, Filter{UserID: "42", Date: "2026-10-20", Status: StatusConfirmed}.Match(b))
		assert.False(t, Filter{UserID: "7"}.Match(b))
		assert.False(t, Filter{Date: "2026-10-21"}.Match(b))
		assert.False(t, Filter{Status: StatusCancelled}.Match(b))
	})
}
