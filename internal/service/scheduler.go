package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pkoval/tally/internal/database/repository"
	"github.com/pkoval/tally/internal/notify"
	"github.com/pkoval/tally/internal/recurrence"
)

// Scheduler owns recurring-transaction generation and scheduled execution.
// Construct one per process: the generation single-flight guard is its state.
// Zero values for Horizon, Loc, NotifyHour and Now fall back to defaults, so
// a struct literal with just the collaborators is enough.
type Scheduler struct {
	Store    Store
	Dispatch notify.Dispatcher
	Balances BalanceUpdater
	Usage    UsageRecorder

	Horizon    int            // months ahead to materialize, default 3
	Loc        *time.Location // calendar-day zone, default time.Local
	NotifyHour int            // local hour reminders fire, default 9

	Log zerolog.Logger
	Now func() time.Time // injectable clock

	generating atomic.Bool
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Scheduler) loc() *time.Location {
	if s.Loc != nil {
		return s.Loc
	}
	return time.Local
}

func (s *Scheduler) horizonMonths() int {
	if s.Horizon > 0 {
		return s.Horizon
	}
	return 3
}

func (s *Scheduler) notifyHour() int {
	if s.NotifyHour > 0 {
		return s.NotifyHour
	}
	return 9
}

// today is the current calendar day in the scheduler's zone.
func (s *Scheduler) today() time.Time {
	return recurrence.DayIn(s.now(), s.loc())
}

// RunTick processes everything due right now: automatic instances execute,
// manual ones get a confirmation reminder. Returns the number executed.
func (s *Scheduler) RunTick(ctx context.Context) (int, error) {
	due, err := s.Store.DueScheduled(ctx, s.today())
	if err != nil {
		return 0, fmt.Errorf("load due instances: %w", err)
	}
	executed := 0
	for _, inst := range due {
		if inst.IsAutomatic {
			applied, err := s.Execute(ctx, inst)
			if err != nil {
				s.Log.Error().Err(err).Str("instance", inst.ID).Msg("execute failed")
				continue
			}
			if applied {
				executed++
			}
			continue
		}
		if err := s.Dispatch.Schedule(ctx, s.confirmationFor(inst)); err != nil {
			s.Log.Warn().Err(err).Str("instance", inst.ID).Msg("confirmation reminder failed")
		}
	}
	if executed > 0 {
		s.Log.Info().Int("executed", executed).Int("due", len(due)).Msg("tick complete")
	}
	return executed, nil
}

// RecoverResult reports what startup recovery found.
type RecoverResult struct {
	Automatic int // executed automatically
	Manual    int // waiting on user confirmation
}

// RecoverMissed catches up instances whose day passed while the process was
// not running. Call once at startup.
func (s *Scheduler) RecoverMissed(ctx context.Context) (RecoverResult, error) {
	res := RecoverResult{}
	due, err := s.Store.DueScheduled(ctx, s.today())
	if err != nil {
		return res, fmt.Errorf("load missed instances: %w", err)
	}
	for _, inst := range due {
		if inst.IsAutomatic {
			applied, err := s.Execute(ctx, inst)
			if err != nil {
				s.Log.Error().Err(err).Str("instance", inst.ID).Msg("recovery execute failed")
				continue
			}
			if applied {
				res.Automatic++
			}
			continue
		}
		res.Manual++
		if err := s.Dispatch.Schedule(ctx, s.confirmationFor(inst)); err != nil {
			s.Log.Warn().Err(err).Str("instance", inst.ID).Msg("recovery reminder failed")
		}
	}
	if res.Automatic > 0 || res.Manual > 0 {
		s.Log.Info().Int("automatic", res.Automatic).Int("manual", res.Manual).Msg("missed instances recovered")
	}
	return res, nil
}

// Run drives the daemon: one recovery pass, then a generation and tick pass
// every interval until ctx is cancelled. Pass failures are logged and the
// loop keeps going; only a failed startup recovery aborts.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if _, err := s.RecoverMissed(ctx); err != nil {
		return err
	}
	s.pass(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.Log.Info().Dur("interval", interval).Msg("scheduler running")
	for {
		select {
		case <-ctx.Done():
			s.Log.Info().Msg("scheduler stopped")
			return nil
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

func (s *Scheduler) pass(ctx context.Context) {
	if _, err := s.GenerateAll(ctx); err != nil {
		s.Log.Error().Err(err).Msg("generation pass failed")
	}
	if _, err := s.RunTick(ctx); err != nil {
		s.Log.Error().Err(err).Msg("tick failed")
	}
}

// confirmationFor asks the user to confirm a due manual instance. It fires
// immediately and replaces any earlier reminder for the instance.
func (s *Scheduler) confirmationFor(inst repository.Instance) notify.Notification {
	return notify.Notification{
		InstanceID: inst.ID,
		FiresAt:    s.now(),
		Title:      "Scheduled transaction due",
		Body:       describeInstance(inst),
	}
}

// reminderFor announces an upcoming instance on its due day.
func (s *Scheduler) reminderFor(inst repository.Instance) notify.Notification {
	y, m, d := inst.EffectiveDate.Date()
	fires := time.Date(y, m, d, s.notifyHour(), 0, 0, 0, s.loc())
	return notify.Notification{
		InstanceID: inst.ID,
		FiresAt:    fires,
		Title:      "Upcoming scheduled transaction",
		Body:       describeInstance(inst),
	}
}

func describeInstance(inst repository.Instance) string {
	label := inst.Note
	if label == "" {
		label = "Scheduled transaction"
	}
	return fmt.Sprintf("%s: %s %s on %s", label, inst.Amount.StringFixed(2), inst.Currency, inst.EffectiveDate.Format("2006-01-02"))
}
