package recurrence

import "time"

// NextOccurrence returns the next date produced by rule after from, or the
// day of from itself when includeStart is set. A nil result means the rule is
// malformed and the stream ends; callers treat it as a stop, not an error.
func NextOccurrence(r Rule, from time.Time, includeStart bool) *time.Time {
	if !r.Valid() {
		return nil
	}
	if includeStart {
		d := Day(from)
		return &d
	}
	var next time.Time
	switch r.Frequency {
	case Daily:
		next = Day(from).AddDate(0, 0, r.Interval)
	case Weekly:
		next = Day(from).AddDate(0, 0, 7*r.Interval)
	case Monthly:
		next = addMonthsClamped(Day(from), r.Interval)
	case Yearly:
		next = addMonthsClamped(Day(from), 12*r.Interval)
	}
	return &next
}

// addMonthsClamped advances whole months, clamping the day to the target
// month's length (Jan 31 + 1 month = Feb 28, not Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day truncates t to midnight UTC of its calendar day. Effective dates are
// pure calendar days stored in this encoding.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayIn returns the calendar day of t as observed in loc, in the same UTC
// midnight encoding as Day.
func DayIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextWorkingDay returns t unchanged on weekdays, otherwise the following
// Monday.
func NextWorkingDay(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, 2)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// DayKey formats t as its calendar day, for use as a map key.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
