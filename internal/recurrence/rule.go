// Package recurrence evaluates recurrence rules over calendar days.
package recurrence

// Frequency is the unit a rule advances by.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// Rule describes a cadence: every Interval units of Frequency.
type Rule struct {
	Frequency Frequency
	Interval  int
}

// Valid reports whether the rule can produce occurrences.
func (r Rule) Valid() bool {
	if r.Interval < 1 {
		return false
	}
	switch r.Frequency {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// ParseFrequency maps a stored string to a Frequency.
func ParseFrequency(s string) (Frequency, bool) {
	switch Frequency(s) {
	case Daily, Weekly, Monthly, Yearly:
		return Frequency(s), true
	}
	return "", false
}
