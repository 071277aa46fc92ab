package service

import (
	"context"
	"time"

	"github.com/pkoval/tally/internal/database/repository"
)

// Store is the persistence surface the scheduler depends on.
// *repository.InstanceRepo satisfies it; tests substitute failing wrappers.
type Store interface {
	Insert(ctx context.Context, inst repository.Instance) error
	Get(ctx context.Context, id string) (*repository.Instance, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f repository.InstanceFilters) ([]repository.Instance, error)
	Templates(ctx context.Context) ([]repository.Instance, error)
	ByTemplate(ctx context.Context, templateID string) ([]repository.Instance, error)
	DueScheduled(ctx context.Context, through time.Time) ([]repository.Instance, error)
	TransitionStatus(ctx context.Context, id string, from, to repository.Status) (bool, error)
	SetRecurrenceEnd(ctx context.Context, id string, end time.Time) error
}

// BalanceUpdater recomputes an account's denormalized balance.
type BalanceUpdater interface {
	Recompute(ctx context.Context, accountID string) error
}

// UsageRecorder tracks category usage for suggestions.
// *repository.CategoryRepo satisfies it.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, categoryID string) error
}
