package metrics

import (
	"testing"

	"bookingpro/internal/events"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCountsBookingEvents(t *testing.T) {
	bus := events.NewEventBus()
	Observe(bus)

	createdBefore := testutil.ToFloat64(bookingCreated)
	cancelledBefore := testutil.ToFloat64(bookingCancelled)

	require.NoError(t, bus.Publish(events.Event{Type: events.BookingCreated}))
	require.NoError(t, bus.Publish(events.Event{Type: events.BookingCreated}))
	require.NoError(t, bus.Publish(events.Event{Type: events.BookingCancelled}))

	assert.Equal(t, createdBefore+2, testutil.ToFloat64(bookingCreated))
	assert.Equal(t, cancelledBefore+1, testutil.ToFloat64(bookingCancelled))
}

func TestLabelledCounters(t *testing.T) {
	before := testutil.ToFloat64(slotQueries.WithLabelValues(SlotsEmpty))
	IncSlotQuery(SlotsEmpty)
	assert.Equal(t, before+1, testutil.ToFloat64(slotQueries.WithLabelValues(SlotsEmpty)))

	IncGatewayError("calendar_create")
	assert.Equal(t, 1.0, testutil.ToFloat64(gatewayErrors.WithLabelValues("calendar_create")))
}

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}
