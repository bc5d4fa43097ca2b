package models

import (
	"time"
)

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking is a confirmed or cancelled appointment record.
type Booking struct {
	ID               string     `firestore:"-" json:"id"`
	UserID           string     `firestore:"userId" json:"user_id"`
	ClientName       string     `firestore:"clientName" json:"client_name"`
	TelegramUsername string     `firestore:"telegramUsername" json:"telegram_username"`
	Date             string     `firestore:"date" json:"date"` // YYYY-MM-DD
	Time             string     `firestore:"time" json:"time"` // HH:MM
	Service          string     `firestore:"service" json:"service"`
	Price            string     `firestore:"price" json:"price"`
	Duration         int        `firestore:"duration" json:"duration"`
	Status           string     `firestore:"status" json:"status"`
	CalendarEventID  string     `firestore:"calendarEventId" json:"calendar_event_id"`
	CreatedAt        time.Time  `firestore:"createdAt,serverTimestamp" json:"created_at"`
	UpdatedAt        time.Time  `firestore:"updatedAt,serverTimestamp" json:"updated_at"`
	CancelledAt      *time.Time `firestore:"cancelledAt,omitempty" json:"cancelled_at,omitempty"`
}

// StartsAt returns the booking start in loc. Zero time on malformed data.
func (b *Booking) StartsAt(loc *time.Location) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", b.Date+" "+b.Time, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsUpcoming reports whether the booking is confirmed and starts after now.
func (b *Booking) IsUpcoming(now time.Time) bool {
	if b.Status != StatusConfirmed {
		return false
	}
	start := b.StartsAt(now.Location())
	return !start.IsZero() && start.After(now)
}

// ShortID is the last six characters of the ID, shown to clients.
func (b *Booking) ShortID() string {
	if len(b.ID) <= 6 {
		return b.ID
	}
	return b.ID[len(b.ID)-6:]
}

// Filter narrows booking listings. Empty fields match everything.
type Filter struct {
	UserID string
	Date   string
	Status string
}

// Match reports whether b satisfies the filter.
func (f Filter) Match(b *Booking) bool {
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if f.Date != "" && b.Date != f.Date {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}
