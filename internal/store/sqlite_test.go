package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bookingpro/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func booking(user, date, tm string) *models.Booking {
	return &models.Booking{
		UserID:          user,
		ClientName:      "Анна",
		Date:            date,
		Time:            tm,
		Service:         "Персональная тренировка",
		Price:           "2500",
		Duration:        60,
		Status:          models.StatusConfirmed,
		CalendarEventID: "evt-" + date + tm,
	}
}

func TestSQLiteCreateGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := booking("42", "2026-10-20", "11:00")
	id, err := s.Create(ctx, b)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, b.ID)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "42", got.UserID)
	assert.Equal(t, "11:00", got.Time)
	assert.Equal(t, "evt-2026-10-2011:00", got.CalendarEventID)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Nil(t, got.CancelledAt)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListByUserNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, b := range []*models.Booking{
		booking("42", "2026-10-20", "11:00"),
		booking("42", "2026-10-22", "09:00"),
		booking("42", "2026-10-20", "15:00"),
		booking("7", "2026-10-21", "10:00"),
	} {
		_, err := s.Create(ctx, b)
		require.NoError(t, err)
	}

	list, err := s.ListByUser(ctx, "42")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2026-10-22", list[0].Date)
	assert.Equal(t, "15:00", list[1].Time)
	assert.Equal(t, "11:00", list[2].Time)
}

func TestSQLiteListFilterAndCancel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	keep := booking("42", "2026-10-20", "11:00")
	drop := booking("7", "2026-10-20", "12:00")
	other := booking("7", "2026-10-21", "12:00")
	for _, b := range []*models.Booking{keep, drop, other} {
		_, err := s.Create(ctx, b)
		require.NoError(t, err)
	}

	require.NoError(t, s.Cancel(ctx, drop.ID))
	assert.ErrorIs(t, s.Cancel(ctx, "missing"), ErrNotFound)

	confirmed, err := s.List(ctx, models.Filter{Date: "2026-10-20", Status: models.StatusConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, keep.ID, confirmed[0].ID)

	all, err := s.List(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	cancelled, err := s.Get(ctx, drop.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
}

func TestBackupService(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bookings.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Create(context.Background(), booking("42", "2026-10-20", "11:00"))
	require.NoError(t, err)

	logger := zerolog.New(io.Discard)
	backupDir := filepath.Join(dir, "backups")
	svc := NewBackupService(s, BackupConfig{Enabled: true, StoragePath: backupDir, RetentionDays: 7}, &logger)

	path, err := svc.PerformBackup(context.Background())
	require.NoError(t, err)

	copyDB, err := NewSQLite(path)
	require.NoError(t, err)
	defer copyDB.Close()
	list, err := copyDB.ListByUser(context.Background(), "42")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	old := filepath.Join(backupDir, "bookings_20000101_000000.db")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	past := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(old, past, past))

	assert.Equal(t, 1, svc.CleanupOldBackups())
	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
