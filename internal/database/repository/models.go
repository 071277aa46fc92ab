package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkoval/tally/internal/recurrence"
)

// Status is the lifecycle state of a scheduled transaction.
type Status string

const (
	StatusPending  Status = "pending"
	StatusExecuted Status = "executed"
	StatusFailed   Status = "failed"
	// StatusCancelled is never persisted: cancelling removes the row. The
	// constant exists so the full state machine is spelled out in one place.
	StatusCancelled Status = "cancelled"
)

// Instance represents a transaction row: a one-off entry, an occurrence
// spawned from a template, or the recurring template itself (IsTemplate).
type Instance struct {
	ID               string
	TemplateID       *string
	IsTemplate       bool
	AccountID        string
	DestAccountID    *string
	CategoryID       *string
	Amount           decimal.Decimal // signed effect on AccountID
	Currency         string
	Note             string
	EffectiveDate    time.Time // UTC midnight of the calendar day
	Status           Status
	IsScheduled      bool
	IsAutomatic      bool
	AdjustWorkingDay bool
	IncludeStartDay  bool
	RuleFrequency    *string
	RuleInterval     *int
	RecurrenceEnd    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Rule returns the stored recurrence rule, nil when the row has none. The
// rule is returned as stored, without validation; the evaluator decides
// whether it is usable.
func (i Instance) Rule() *recurrence.Rule {
	if i.RuleFrequency == nil {
		return nil
	}
	r := recurrence.Rule{Frequency: recurrence.Frequency(*i.RuleFrequency)}
	if i.RuleInterval != nil {
		r.Interval = *i.RuleInterval
	}
	return &r
}

// Account represents an account row. Balance is denormalized and owned by
// the balance updater.
type Account struct {
	ID             string
	Name           string
	Institution    string
	AccountType    string
	Currency       string
	OpeningBalance decimal.Decimal
	Balance        decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Category represents a category row.
type Category struct {
	ID         string
	ParentID   *string
	Name       string
	Icon       *string
	SortOrder  int
	UsageCount int
	LastUsedAt *time.Time
}

// Notification represents a locally scheduled alert, keyed by the instance
// it belongs to.
type Notification struct {
	InstanceID string
	FiresAt    time.Time
	Title      string
	Body       string
	CreatedAt  time.Time
}
