package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var msk = time.FixedZone("MSK", 3*60*60)

func hourly() Schedule {
	return Schedule{WorkStartHour: 9, WorkEndHour: 18, SlotDuration: 60 * time.Minute}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 20, hour, minute, 0, 0, msk)
}

func labels(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Label)
	}
	return out
}

func TestComputeFullDay(t *testing.T) {
	date := at(0, 0)
	slots, err := Compute(date, hourly(), nil, at(8, 0))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"09:00", "10:00", "11:00", "12:00", "13:00",
		"14:00", "15:00", "16:00", "17:00",
	}, labels(slots))
	for _, s := range slots {
		assert.Equal(t, s.Label, s.Value)
	}
}

func TestComputeBusyInterval(t *testing.T) {
	busy := []Interval{{Start: at(11, 0), End: at(12, 0)}}
	slots, err := Compute(at(0, 0), hourly(), busy, at(8, 0))
	require.NoError(t, err)

	got := labels(slots)
	assert.Len(t, got, 8)
	assert.NotContains(t, got, "11:00")
	assert.Contains(t, got, "10:00")
	assert.Contains(t, got, "12:00")
}

func TestComputeExcludesPast(t *testing.T) {
	slots, err := Compute(at(0, 0), hourly(), nil, at(10, 30))
	require.NoError(t, err)

	got := labels(slots)
	assert.NotContains(t, got, "09:00")
	assert.NotContains(t, got, "10:00")
	assert.Equal(t, "11:00", got[0])
}

func TestComputePastWinsOverFree(t *testing.T) {
	busy := []Interval{{Start: at(15, 0), End: at(16, 0)}}
	slots, err := Compute(at(0, 0), hourly(), busy, at(19, 0))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeTouchingBoundariesAreFree(t *testing.T) {
	tests := []struct {
		name    string
		busy    Interval
		blocked []string
	}{
		{"ends at slot start", Interval{at(8, 0), at(9, 0)}, nil},
		{"starts at slot end", Interval{at(18, 0), at(19, 0)}, nil},
		{"exact slot", Interval{at(12, 0), at(13, 0)}, []string{"12:00"}},
		{"straddles two slots", Interval{at(12, 30), at(13, 30)}, []string{"12:00", "13:00"}},
		{"inside a slot", Interval{at(14, 10), at(14, 20)}, []string{"14:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := Compute(at(0, 0), hourly(), []Interval{tt.busy}, at(0, 0))
			require.NoError(t, err)
			got := labels(slots)
			assert.Len(t, got, 9-len(tt.blocked))
			for _, b := range tt.blocked {
				assert.NotContains(t, got, b)
			}
		})
	}
}

func TestCandidatesGridSpacing(t *testing.T) {
	schedules := []Schedule{
		{WorkStartHour: 9, WorkEndHour: 18, SlotDuration: 60 * time.Minute},
		{WorkStartHour: 9, WorkEndHour: 18, SlotDuration: 45 * time.Minute, BufferTime: 15 * time.Minute},
		{WorkStartHour: 10, WorkEndHour: 12, SlotDuration: 30 * time.Minute, BufferTime: 10 * time.Minute},
	}

	for _, s := range schedules {
		grid, err := Candidates(at(0, 0), s)
		require.NoError(t, err)
		require.NotEmpty(t, grid)

		assert.Equal(t, at(s.WorkStartHour, 0), grid[0].Start)
		for i := 1; i < len(grid); i++ {
			assert.Equal(t, s.SlotDuration+s.BufferTime, grid[i].Start.Sub(grid[i-1].Start))
		}
		for _, c := range grid {
			assert.Equal(t, s.SlotDuration, c.End.Sub(c.Start))
		}
	}
}

func TestCandidatesLastSlotNotClipped(t *testing.T) {
	s := Schedule{WorkStartHour: 9, WorkEndHour: 10, SlotDuration: 40 * time.Minute}
	grid, err := Candidates(at(0, 0), s)
	require.NoError(t, err)

	require.Len(t, grid, 2)
	assert.Equal(t, at(9, 40), grid[1].Start)
	assert.Equal(t, at(10, 20), grid[1].End)
}

func TestComputeIdempotent(t *testing.T) {
	busy := []Interval{{Start: at(13, 0), End: at(14, 30)}}
	first, err := Compute(at(0, 0), hourly(), busy, at(9, 15))
	require.NoError(t, err)
	second, err := Compute(at(0, 0), hourly(), busy, at(9, 15))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeInvalidSchedule(t *testing.T) {
	bad := []Schedule{
		{WorkStartHour: 9, WorkEndHour: 18},
		{WorkStartHour: 9, WorkEndHour: 18, SlotDuration: time.Hour, BufferTime: -time.Minute},
		{WorkStartHour: 18, WorkEndHour: 9, SlotDuration: time.Hour},
	}
	for _, s := range bad {
		_, err := Compute(at(0, 0), s, nil, at(0, 0))
		assert.ErrorIs(t, err, ErrInvalidSchedule)
	}
}

func TestAllDay(t *testing.T) {
	iv, err := AllDay("2026-10-20", "2026-10-21", msk)
	require.NoError(t, err)
	assert.Equal(t, at(0, 0), iv.Start)
	assert.Equal(t, at(0, 0).AddDate(0, 0, 1), iv.End)

	single, err := AllDay("2026-10-20", "", msk)
	require.NoError(t, err)
	assert.Equal(t, iv, single)

	slots, err := Compute(at(0, 0), hourly(), []Interval{iv}, at(0, 0))
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = AllDay("20.10.2026", "", msk)
	assert.Error(t, err)
}

func TestUpcomingDays(t *testing.T) {
	days := UpcomingDays(at(23, 59), 7)
	require.Len(t, days, 7)
	assert.Equal(t, "2026-10-20", days[0].Value)
	assert.Equal(t, "2026-10-26", days[6].Value)
	assert.Equal(t, 0, days[0].Offset)
	assert.Equal(t, 0, days[0].Date.Hour())
}

func TestAt(t *testing.T) {
	got, err := At(at(0, 0), "14:30")
	require.NoError(t, err)
	assert.Equal(t, at(14, 30), got)

	_, err = At(at(0, 0), "25:99")
	assert.Error(t, err)
}
