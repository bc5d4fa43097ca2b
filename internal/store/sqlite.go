package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookingpro/internal/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a single-file booking store for local runs.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens database at path and runs migrations.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one connection keeps ":memory:" databases shared and writes serialized
	db.SetMaxOpenConns(1)
	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            client_name TEXT NOT NULL,
            telegram_username TEXT,
            date TEXT NOT NULL,
            time TEXT NOT NULL,
            service TEXT NOT NULL,
            price TEXT,
            duration INTEGER NOT NULL DEFAULT 60,
            status TEXT NOT NULL DEFAULT 'confirmed',
            calendar_event_id TEXT,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            cancelled_at DATETIME
        )`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_date_status ON bookings(date, status)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

const bookingColumns = `id, user_id, client_name, telegram_username, date, time, service, price,
    duration, status, calendar_event_id, created_at, updated_at, cancelled_at`

func (s *SQLite) Create(ctx context.Context, b *models.Booking) (string, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	now := s.now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `INSERT INTO bookings (`+bookingColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		id, b.UserID, b.ClientName, b.TelegramUsername, b.Date, b.Time, b.Service, b.Price,
		b.Duration, b.Status, b.CalendarEventID, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert booking: %w", err)
	}
	b.ID = id
	return id, nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*models.Booking, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}
	return b, nil
}

func (s *SQLite) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.query(ctx, `SELECT `+bookingColumns+` FROM bookings
        WHERE user_id = ? ORDER BY date DESC, time DESC`, userID)
}

func (s *SQLite) List(ctx context.Context, f models.Filter) ([]models.Booking, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Date != "" {
		where = append(where, "date = ?")
		args = append(args, f.Date)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}

	q := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY date, time"
	return s.query(ctx, q, args...)
}

func (s *SQLite) Cancel(ctx context.Context, id string) error {
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE bookings
        SET status = ?, cancelled_at = ?, updated_at = ? WHERE id = ?`,
		models.StatusCancelled, now, now, id)
	if err != nil {
		return fmt.Errorf("cancel booking %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Backup writes a consistent copy of the database to dest.
func (s *SQLite) Backup(ctx context.Context, dest string) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return nil
}

func (s *SQLite) query(ctx context.Context, q string, args ...any) ([]models.Booking, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*models.Booking, error) {
	var (
		b           models.Booking
		username    sql.NullString
		price       sql.NullString
		eventID     sql.NullString
		cancelledAt sql.NullTime
	)
	err := row.Scan(&b.ID, &b.UserID, &b.ClientName, &username, &b.Date, &b.Time, &b.Service, &price,
		&b.Duration, &b.Status, &eventID, &b.CreatedAt, &b.UpdatedAt, &cancelledAt)
	if err != nil {
		return nil, err
	}
	b.TelegramUsername = username.String
	b.Price = price.String
	b.CalendarEventID = eventID.String
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	return &b, nil
}
