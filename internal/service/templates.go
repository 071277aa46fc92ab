package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkoval/tally/internal/database/repository"
	"github.com/pkoval/tally/internal/recurrence"
)

// ScheduleParams describes a new scheduled entry: a recurring template when
// Rule is set, a single dated transaction otherwise.
type ScheduleParams struct {
	AccountID        string
	DestAccountID    *string
	CategoryID       *string
	Amount           decimal.Decimal
	Currency         string
	Note             string
	Start            time.Time
	Rule             *recurrence.Rule
	RecurrenceEnd    *time.Time
	IsAutomatic      bool
	AdjustWorkingDay bool
	IncludeStartDay  bool
}

func (p ScheduleParams) validate() error {
	if p.AccountID == "" {
		return errors.New("account required")
	}
	if p.Amount.IsZero() {
		return errors.New("amount required")
	}
	if p.Start.IsZero() {
		return errors.New("start date required")
	}
	return nil
}

// CreateTemplate stores a recurring template and runs one generation pass so
// its instances exist immediately.
func (s *Scheduler) CreateTemplate(ctx context.Context, p ScheduleParams) (*repository.Instance, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.Rule == nil || !p.Rule.Valid() {
		return nil, errors.New("recurring template needs a valid rule")
	}
	freq := string(p.Rule.Frequency)
	interval := p.Rule.Interval
	tpl := repository.Instance{
		ID:               uuid.NewString(),
		IsTemplate:       true,
		AccountID:        p.AccountID,
		DestAccountID:    p.DestAccountID,
		CategoryID:       p.CategoryID,
		Amount:           p.Amount,
		Currency:         currencyOr(p.Currency),
		Note:             p.Note,
		EffectiveDate:    recurrence.Day(p.Start),
		Status:           repository.StatusPending,
		IsScheduled:      true,
		IsAutomatic:      p.IsAutomatic,
		AdjustWorkingDay: p.AdjustWorkingDay,
		IncludeStartDay:  p.IncludeStartDay,
		RuleFrequency:    &freq,
		RuleInterval:     &interval,
		RecurrenceEnd:    p.RecurrenceEnd,
	}
	if err := s.Store.Insert(ctx, tpl); err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	s.Log.Info().
		Str("template", tpl.ID).
		Str("frequency", freq).
		Int("interval", interval).
		Msg("template created")
	if _, err := s.GenerateAll(ctx); err != nil {
		s.Log.Warn().Err(err).Msg("generation after create failed")
	}
	return &tpl, nil
}

// CreateScheduled stores a single future scheduled transaction with no
// recurrence and requests its reminder.
func (s *Scheduler) CreateScheduled(ctx context.Context, p ScheduleParams) (*repository.Instance, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	eff := recurrence.Day(p.Start)
	if p.AdjustWorkingDay {
		eff = recurrence.NextWorkingDay(eff)
	}
	inst := repository.Instance{
		ID:               uuid.NewString(),
		AccountID:        p.AccountID,
		DestAccountID:    p.DestAccountID,
		CategoryID:       p.CategoryID,
		Amount:           p.Amount,
		Currency:         currencyOr(p.Currency),
		Note:             p.Note,
		EffectiveDate:    eff,
		Status:           repository.StatusPending,
		IsScheduled:      true,
		IsAutomatic:      p.IsAutomatic,
		AdjustWorkingDay: p.AdjustWorkingDay,
	}
	if err := s.Store.Insert(ctx, inst); err != nil {
		return nil, fmt.Errorf("insert scheduled transaction: %w", err)
	}
	if err := s.Dispatch.Schedule(ctx, s.reminderFor(inst)); err != nil {
		s.Log.Warn().Err(err).Str("instance", inst.ID).Msg("reminder failed")
	}
	return &inst, nil
}

func currencyOr(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}
