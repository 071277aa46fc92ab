package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		rule         Rule
		from         time.Time
		includeStart bool
		want         time.Time
		wantNil      bool
	}{
		{name: "daily", rule: Rule{Daily, 1}, from: date(2026, 1, 1), want: date(2026, 1, 2)},
		{name: "every third day", rule: Rule{Daily, 3}, from: date(2026, 1, 1), want: date(2026, 1, 4)},
		{name: "weekly", rule: Rule{Weekly, 1}, from: date(2026, 1, 1), want: date(2026, 1, 8)},
		{name: "fortnightly", rule: Rule{Weekly, 2}, from: date(2026, 1, 1), want: date(2026, 1, 15)},
		{name: "monthly", rule: Rule{Monthly, 1}, from: date(2026, 1, 15), want: date(2026, 2, 15)},
		{name: "monthly clamps to short month", rule: Rule{Monthly, 1}, from: date(2026, 1, 31), want: date(2026, 2, 28)},
		{name: "monthly clamps to thirty days", rule: Rule{Monthly, 1}, from: date(2026, 3, 31), want: date(2026, 4, 30)},
		{name: "two month jump skips the short month", rule: Rule{Monthly, 2}, from: date(2026, 1, 31), want: date(2026, 3, 31)},
		{name: "monthly across year end", rule: Rule{Monthly, 1}, from: date(2026, 12, 10), want: date(2027, 1, 10)},
		{name: "yearly", rule: Rule{Yearly, 1}, from: date(2026, 5, 4), want: date(2027, 5, 4)},
		{name: "yearly clamps leap day", rule: Rule{Yearly, 1}, from: date(2024, 2, 29), want: date(2025, 2, 28)},
		{name: "include start returns the seed", rule: Rule{Monthly, 1}, from: date(2026, 1, 1), includeStart: true, want: date(2026, 1, 1)},
		{name: "include start normalizes to the day", rule: Rule{Weekly, 1}, from: time.Date(2026, 1, 1, 15, 4, 5, 0, time.UTC), includeStart: true, want: date(2026, 1, 1)},
		{name: "zero interval is malformed", rule: Rule{Monthly, 0}, from: date(2026, 1, 1), wantNil: true},
		{name: "negative interval is malformed", rule: Rule{Daily, -1}, from: date(2026, 1, 1), wantNil: true},
		{name: "unknown frequency is malformed", rule: Rule{Frequency("hourly"), 1}, from: date(2026, 1, 1), wantNil: true},
		{name: "malformed beats include start", rule: Rule{Frequency(""), 1}, from: date(2026, 1, 1), includeStart: true, wantNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NextOccurrence(tt.rule, tt.from, tt.includeStart)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

// Once a month-end date clamps, later steps follow the clamped day. The
// cursor walks from the last produced date, it does not remember the
// original anchor.
func TestNextOccurrenceClampedSequence(t *testing.T) {
	t.Parallel()

	rule := Rule{Monthly, 1}
	cursor := date(2026, 1, 31)
	var got []time.Time
	for i := 0; i < 3; i++ {
		next := NextOccurrence(rule, cursor, false)
		require.NotNil(t, next)
		got = append(got, *next)
		cursor = *next
	}
	assert.Equal(t, []time.Time{date(2026, 2, 28), date(2026, 3, 28), date(2026, 4, 28)}, got)
}

func TestNextWorkingDay(t *testing.T) {
	t.Parallel()

	// 2026-01-03 is a Saturday, 2026-01-04 a Sunday.
	assert.Equal(t, date(2026, 1, 5), NextWorkingDay(date(2026, 1, 3)))
	assert.Equal(t, date(2026, 1, 5), NextWorkingDay(date(2026, 1, 4)))
	assert.Equal(t, date(2026, 1, 5), NextWorkingDay(date(2026, 1, 5)))
	assert.Equal(t, date(2026, 1, 9), NextWorkingDay(date(2026, 1, 9)))
}

func TestDayIn(t *testing.T) {
	t.Parallel()

	east := time.FixedZone("east", 11*3600)
	west := time.FixedZone("west", -8*3600)

	// 14:00 UTC is the next day at UTC+11 and the same day at UTC-8.
	at := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, date(2026, 3, 2), DayIn(at, east))
	assert.Equal(t, date(2026, 3, 1), DayIn(at, west))

	// 03:00 UTC is still the previous day at UTC-8.
	early := time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, date(2026, 3, 1), DayIn(early, west))
}

func TestSameDay(t *testing.T) {
	t.Parallel()

	assert.True(t, SameDay(date(2026, 1, 1), time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)))
	assert.False(t, SameDay(date(2026, 1, 1), date(2026, 1, 2)))
}

func TestParseFrequency(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"daily", "weekly", "monthly", "yearly"} {
		f, ok := ParseFrequency(s)
		assert.True(t, ok)
		assert.Equal(t, Frequency(s), f)
	}
	_, ok := ParseFrequency("hourly")
	assert.False(t, ok)
	_, ok = ParseFrequency("")
	assert.False(t, ok)
}
