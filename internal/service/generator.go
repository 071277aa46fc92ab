package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkoval/tally/internal/database/repository"
	"github.com/pkoval/tally/internal/recurrence"
)

// GenerateResult reports one generation pass.
type GenerateResult struct {
	Templates    int
	Created      int
	PastExecuted int
	Skipped      bool // another pass was already running
}

// GenerateAll materializes upcoming instances for every template. Passes are
// single-flight: a trigger arriving while one runs is dropped, not queued.
// A broken template abandons that template only; the pass continues.
func (s *Scheduler) GenerateAll(ctx context.Context) (GenerateResult, error) {
	if !s.generating.CompareAndSwap(false, true) {
		s.Log.Debug().Msg("generation already in flight, trigger dropped")
		return GenerateResult{Skipped: true}, nil
	}
	defer s.generating.Store(false)

	templates, err := s.Store.Templates(ctx)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("load templates: %w", err)
	}
	res := GenerateResult{Templates: len(templates)}
	touched := map[string]bool{}
	for _, tpl := range templates {
		created, past, accounts, err := s.generateTemplate(ctx, tpl)
		res.Created += created
		res.PastExecuted += past
		for _, id := range accounts {
			touched[id] = true
		}
		if err != nil {
			s.Log.Warn().Err(err).Str("template", tpl.ID).Msg("template abandoned")
		}
	}
	// Catch-up occurrences land directly as executed, so the balances they
	// affect are rebuilt once per pass.
	for id := range touched {
		if err := s.Balances.Recompute(ctx, id); err != nil {
			s.Log.Warn().Err(err).Str("account", id).Msg("balance recompute failed")
		}
	}
	if res.Created > 0 {
		s.Log.Info().
			Int("templates", res.Templates).
			Int("created", res.Created).
			Int("past_executed", res.PastExecuted).
			Msg("generation pass complete")
	}
	return res, nil
}

// generateTemplate walks one template's rule from its resume point to the
// window end, materializing any occurrence that does not already have an
// instance on its calendar day. The cursor always advances on the nominal
// date; working-day adjustment affects only what gets stored.
func (s *Scheduler) generateTemplate(ctx context.Context, tpl repository.Instance) (created, pastExecuted int, touched []string, err error) {
	rule := tpl.Rule()
	if rule == nil {
		return 0, 0, nil, nil
	}

	today := s.today()
	end := today.AddDate(0, s.horizonMonths(), 0)
	if tpl.RecurrenceEnd != nil {
		end = recurrence.Day(*tpl.RecurrenceEnd)
	}

	existing, err := s.Store.ByTemplate(ctx, tpl.ID)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("load instances: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, inst := range existing {
		seen[recurrence.DayKey(inst.EffectiveDate)] = true
	}

	cursor := recurrence.Day(tpl.EffectiveDate)
	if n := len(existing); n > 0 {
		cursor = recurrence.Day(existing[n-1].EffectiveDate)
	}
	// The template's own day counts as an occurrence only on the very first
	// pass, before anything has been materialized.
	includeNext := tpl.IncludeStartDay && len(existing) == 0

	for {
		next := recurrence.NextOccurrence(*rule, cursor, includeNext)
		if next == nil {
			s.Log.Warn().
				Str("template", tpl.ID).
				Str("frequency", string(rule.Frequency)).
				Int("interval", rule.Interval).
				Msg("malformed recurrence rule, template stopped")
			break
		}
		if !includeNext && !next.After(cursor) {
			s.Log.Warn().Str("template", tpl.ID).Msg("recurrence did not advance, template stopped")
			break
		}
		includeNext = false
		if next.After(end) {
			break
		}

		eff := *next
		if tpl.AdjustWorkingDay {
			eff = recurrence.NextWorkingDay(eff)
		}
		if !seen[recurrence.DayKey(eff)] {
			inst := spawn(tpl, eff, today)
			if err := s.Store.Insert(ctx, inst); err != nil {
				if strings.Contains(err.Error(), "UNIQUE") {
					// Lost a race with another writer; same as seen.
					seen[recurrence.DayKey(eff)] = true
					cursor = *next
					continue
				}
				return created, pastExecuted, touched, fmt.Errorf("insert instance: %w", err)
			}
			seen[recurrence.DayKey(eff)] = true
			created++
			if inst.Status == repository.StatusExecuted {
				pastExecuted++
				touched = append(touched, inst.AccountID)
				if inst.DestAccountID != nil {
					touched = append(touched, *inst.DestAccountID)
				}
				if inst.CategoryID != nil {
					if err := s.Usage.RecordUsage(ctx, *inst.CategoryID); err != nil {
						s.Log.Warn().Err(err).Str("category", *inst.CategoryID).Msg("usage record failed")
					}
				}
			} else if err := s.Dispatch.Schedule(ctx, s.reminderFor(inst)); err != nil {
				s.Log.Warn().Err(err).Str("instance", inst.ID).Msg("reminder failed")
			}
		}
		cursor = *next
	}
	return created, pastExecuted, touched, nil
}

// spawn copies the template payload onto a new instance for the given
// effective day. Days already behind today come into the world executed, at
// their own dates, never re-dated to now.
func spawn(tpl repository.Instance, eff, today time.Time) repository.Instance {
	templateID := tpl.ID
	inst := repository.Instance{
		ID:               uuid.NewString(),
		TemplateID:       &templateID,
		AccountID:        tpl.AccountID,
		DestAccountID:    tpl.DestAccountID,
		CategoryID:       tpl.CategoryID,
		Amount:           tpl.Amount,
		Currency:         tpl.Currency,
		Note:             tpl.Note,
		EffectiveDate:    eff,
		Status:           repository.StatusPending,
		IsScheduled:      true,
		IsAutomatic:      tpl.IsAutomatic,
		AdjustWorkingDay: tpl.AdjustWorkingDay,
		IncludeStartDay:  tpl.IncludeStartDay,
	}
	if eff.Before(today) {
		inst.Status = repository.StatusExecuted
	}
	return inst
}
