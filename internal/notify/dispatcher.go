// Package notify schedules and cancels local reminders for scheduled
// transactions.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pkoval/tally/internal/database/repository"
)

// Notification is one pending alert, keyed by the instance it belongs to.
type Notification struct {
	InstanceID string
	FiresAt    time.Time
	Title      string
	Body       string
}

// Dispatcher schedules and cancels alerts. Both operations are idempotent:
// scheduling twice for one instance replaces the alert, cancelling an
// unknown id is not an error.
type Dispatcher interface {
	Schedule(ctx context.Context, n Notification) error
	Cancel(ctx context.Context, instanceID string) error
}

// LocalDispatcher records alerts in the local database. Delivering them is
// the surrounding platform's job; this side only keeps the schedule exact.
type LocalDispatcher struct {
	Repo *repository.NotificationRepo
	Log  zerolog.Logger
}

func NewLocalDispatcher(repo *repository.NotificationRepo, log zerolog.Logger) *LocalDispatcher {
	return &LocalDispatcher{Repo: repo, Log: log}
}

func (d *LocalDispatcher) Schedule(ctx context.Context, n Notification) error {
	err := d.Repo.Upsert(ctx, repository.Notification{
		InstanceID: n.InstanceID,
		FiresAt:    n.FiresAt,
		Title:      n.Title,
		Body:       n.Body,
	})
	if err != nil {
		return fmt.Errorf("schedule notification: %w", err)
	}
	d.Log.Debug().Str("instance", n.InstanceID).Time("fires_at", n.FiresAt).Msg("notification scheduled")
	return nil
}

func (d *LocalDispatcher) Cancel(ctx context.Context, instanceID string) error {
	if err := d.Repo.Delete(ctx, instanceID); err != nil {
		return fmt.Errorf("cancel notification: %w", err)
	}
	d.Log.Debug().Str("instance", instanceID).Msg("notification cancelled")
	return nil
}
