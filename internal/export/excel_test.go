package export

import (
	"bytes"
	"testing"
	"time"

	"bookingpro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBookingsWorkbook(t *testing.T) {
	cancelledAt := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	bookings := []models.Booking{
		{ID: "a1", Date: "2026-10-20", Time: "11:00", ClientName: "Анна", TelegramUsername: "anna",
			Service: "Персональная тренировка", Price: "2500", Duration: 60, Status: models.StatusConfirmed,
			CreatedAt: time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)},
		{ID: "b2", Date: "2026-10-21", Time: "12:00", ClientName: "Иван",
			Service: "Персональная тренировка", Price: "2500", Duration: 60, Status: models.StatusCancelled,
			CreatedAt: time.Date(2026, 10, 15, 11, 0, 0, 0, time.UTC), CancelledAt: &cancelledAt},
	}

	var buf bytes.Buffer
	require.NoError(t, Bookings(&buf, bookings, time.UTC))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetConfirmed, SheetCancelled}, f.GetSheetList())

	active, err := f.GetRows(SheetConfirmed)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "ID", active[0][0])
	assert.Equal(t, "a1", active[1][0])
	assert.Equal(t, "@anna", active[1][4])

	cancelled, err := f.GetRows(SheetCancelled)
	require.NoError(t, err)
	require.Len(t, cancelled, 2)
	assert.Equal(t, "b2", cancelled[1][0])
	assert.Equal(t, "2026-10-16 09:30", cancelled[1][9])
}

func TestWriteRowWithoutSheet(t *testing.T) {
	w := NewWriter()
	defer w.Close()
	assert.Error(t, w.WriteRow([]any{"x"}))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "bookings_2026-10-15.xlsx", Filename(time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)))
}
