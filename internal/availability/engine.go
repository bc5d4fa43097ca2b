// Package availability computes bookable time slots for a day.
package availability

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSchedule is returned when the schedule cannot produce a grid.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching intervals (a.End == b.Start) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Slot is a bookable candidate that survived filtering.
type Slot struct {
	Start time.Time
	End   time.Time
	Label string // "10:00"
	Value string // "10:00"
}

// Schedule contains the business-hours parameters for a day.
type Schedule struct {
	WorkStartHour int
	WorkEndHour   int
	SlotDuration  time.Duration
	BufferTime    time.Duration
}

// Validate checks that the schedule produces a finite grid.
func (s Schedule) Validate() error {
	if s.SlotDuration <= 0 {
		return fmt.Errorf("%w: slot duration must be positive", ErrInvalidSchedule)
	}
	if s.BufferTime < 0 {
		return fmt.Errorf("%w: buffer time must not be negative", ErrInvalidSchedule)
	}
	if s.WorkStartHour < 0 || s.WorkEndHour > 24 || s.WorkStartHour >= s.WorkEndHour {
		return fmt.Errorf("%w: work hours %d-%d", ErrInvalidSchedule, s.WorkStartHour, s.WorkEndHour)
	}
	return nil
}

// DayBounds returns the work window of date in date's location.
func DayBounds(date time.Time, s Schedule) Interval {
	y, m, d := date.Date()
	loc := date.Location()
	return Interval{
		Start: time.Date(y, m, d, s.WorkStartHour, 0, 0, 0, loc),
		End:   time.Date(y, m, d, s.WorkEndHour, 0, 0, 0, loc),
	}
}

// Candidates generates the raw slot grid for date. The last slot may end
// after the work window; it is not clipped.
func Candidates(date time.Time, s Schedule) ([]Interval, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	day := DayBounds(date, s)
	step := s.SlotDuration + s.BufferTime

	var out []Interval
	for cursor := day.Start; cursor.Before(day.End); cursor = cursor.Add(step) {
		out = append(out, Interval{Start: cursor, End: cursor.Add(s.SlotDuration)})
	}
	return out, nil
}

// Compute returns the available slots of date, in chronological order.
// A slot is available when it starts no earlier than now and overlaps no
// busy interval. An empty result is not an error.
func Compute(date time.Time, s Schedule, busy []Interval, now time.Time) ([]Slot, error) {
	candidates, err := Candidates(date, s)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, 0, len(candidates))
	for _, c := range candidates {
		if c.Start.Before(now) {
			continue
		}
		if overlapsAny(c, busy) {
			continue
		}
		label := c.Start.Format("15:04")
		slots = append(slots, Slot{
			Start: c.Start,
			End:   c.End,
			Label: label,
			Value: label,
		})
	}
	return slots, nil
}

func overlapsAny(c Interval, busy []Interval) bool {
	for _, b := range busy {
		if c.Overlaps(b) {
			return true
		}
	}
	return false
}

// AllDay converts a date-only event range into a full-day interval.
// endDate is exclusive, as calendars report it; an empty endDate means a
// single day.
func AllDay(startDate, endDate string, loc *time.Location) (Interval, error) {
	start, err := time.ParseInLocation("2006-01-02", startDate, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("parse all-day start: %w", err)
	}
	end := start.AddDate(0, 0, 1)
	if endDate != "" {
		end, err = time.ParseInLocation("2006-01-02", endDate, loc)
		if err != nil {
			return Interval{}, fmt.Errorf("parse all-day end: %w", err)
		}
		if !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}
	}
	return Interval{Start: start, End: end}, nil
}

// Day is a selectable calendar date.
type Day struct {
	Date   time.Time
	Value  string // "2006-01-02"
	Offset int    // days from today
}

// UpcomingDays returns n consecutive days starting with the day of now.
func UpcomingDays(now time.Time, n int) []Day {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	days := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		date := today.AddDate(0, 0, i)
		days = append(days, Day{Date: date, Value: date.Format("2006-01-02"), Offset: i})
	}
	return days
}

// ParseDate parses a "2006-01-02" value in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return date, nil
}

// At combines a date and an "HH:MM" label into an instant in date's location.
func At(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
