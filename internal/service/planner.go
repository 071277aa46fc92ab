package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkoval/tally/internal/recurrence"
)

// UpcomingOccurrence is one projected future occurrence of a template. It is
// a preview only; nothing is persisted.
type UpcomingOccurrence struct {
	TemplateID string
	Note       string
	Amount     decimal.Decimal
	Currency   string
	Date       time.Time // effective day, after any working-day shift
	Nominal    time.Time // the rule's own day
	Adjusted   bool
	Automatic  bool
}

// Upcoming projects the next perTemplate occurrences of every template by
// walking each rule from its resume point, the same cursor generation uses.
// Results are sorted by date. Templates with malformed rules are skipped.
func (s *Scheduler) Upcoming(ctx context.Context, perTemplate int) ([]UpcomingOccurrence, error) {
	if perTemplate <= 0 {
		perTemplate = 3
	}
	templates, err := s.Store.Templates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	var out []UpcomingOccurrence
	for _, tpl := range templates {
		rule := tpl.Rule()
		if rule == nil || !rule.Valid() {
			s.Log.Warn().Str("template", tpl.ID).Msg("malformed recurrence rule, template skipped")
			continue
		}
		existing, err := s.Store.ByTemplate(ctx, tpl.ID)
		if err != nil {
			s.Log.Warn().Err(err).Str("template", tpl.ID).Msg("loading instances failed, template skipped")
			continue
		}

		cursor := recurrence.Day(tpl.EffectiveDate)
		if n := len(existing); n > 0 {
			cursor = recurrence.Day(existing[n-1].EffectiveDate)
		}
		includeNext := tpl.IncludeStartDay && len(existing) == 0
		for i := 0; i < perTemplate; i++ {
			next := recurrence.NextOccurrence(*rule, cursor, includeNext)
			if next == nil {
				break
			}
			if !includeNext && !next.After(cursor) {
				break
			}
			includeNext = false
			if tpl.RecurrenceEnd != nil && next.After(recurrence.Day(*tpl.RecurrenceEnd)) {
				break
			}
			nominal := *next
			eff := nominal
			if tpl.AdjustWorkingDay {
				eff = recurrence.NextWorkingDay(nominal)
			}
			out = append(out, UpcomingOccurrence{
				TemplateID: tpl.ID,
				Note:       tpl.Note,
				Amount:     tpl.Amount,
				Currency:   tpl.Currency,
				Date:       eff,
				Nominal:    nominal,
				Adjusted:   !recurrence.SameDay(eff, nominal),
				Automatic:  tpl.IsAutomatic,
			})
			cursor = nominal
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TemplateID < out[j].TemplateID
	})
	return out, nil
}
