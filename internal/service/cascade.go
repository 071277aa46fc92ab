package service

import (
	"context"
	"fmt"

	"github.com/pkoval/tally/internal/database/repository"
	"github.com/pkoval/tally/internal/recurrence"
)

// DeleteScope selects how much of a recurring series to remove.
type DeleteScope string

const (
	ScopeThis          DeleteScope = "this"
	ScopeThisAndFuture DeleteScope = "future"
	ScopeAll           DeleteScope = "all"
)

// ParseDeleteScope maps a flag value to a DeleteScope.
func ParseDeleteScope(s string) (DeleteScope, error) {
	switch DeleteScope(s) {
	case ScopeThis, ScopeThisAndFuture, ScopeAll:
		return DeleteScope(s), nil
	}
	return "", fmt.Errorf("unknown delete scope %q (want this, future or all)", s)
}

// CancelInstance removes one instance and its reminder. Removal is the
// cancel transition; no tombstone row is kept. Deleting an executed row
// rebuilds the balances it had contributed to.
func (s *Scheduler) CancelInstance(ctx context.Context, inst repository.Instance) error {
	if err := s.Dispatch.Cancel(ctx, inst.ID); err != nil {
		s.Log.Warn().Err(err).Str("instance", inst.ID).Msg("reminder cancel failed")
	}
	if err := s.Store.Delete(ctx, inst.ID); err != nil {
		return fmt.Errorf("delete instance: %w", err)
	}
	if inst.Status == repository.StatusExecuted {
		s.recomputeFor(ctx, inst)
	}
	return nil
}

// DeleteRecurring removes part or all of a recurring series. The anchor may
// be a spawned instance or the template itself; the series is the anchor's
// template when it has one, otherwise the anchor's own.
func (s *Scheduler) DeleteRecurring(ctx context.Context, inst repository.Instance, scope DeleteScope) error {
	templateID := inst.ID
	if inst.TemplateID != nil {
		templateID = *inst.TemplateID
	}

	switch scope {
	case ScopeThis:
		return s.CancelInstance(ctx, inst)

	case ScopeThisAndFuture:
		// Anchored on the template, this-and-future covers everything.
		if inst.IsTemplate {
			return s.DeleteRecurring(ctx, inst, ScopeAll)
		}
		anchor := recurrence.Day(inst.EffectiveDate)
		series, err := s.Store.ByTemplate(ctx, templateID)
		if err != nil {
			return fmt.Errorf("load series: %w", err)
		}
		for _, other := range series {
			if other.EffectiveDate.Before(anchor) {
				continue
			}
			if err := s.CancelInstance(ctx, other); err != nil {
				return err
			}
		}
		// Cap the rule so the deleted tail is not regenerated on the next
		// pass.
		if err := s.Store.SetRecurrenceEnd(ctx, templateID, anchor.AddDate(0, 0, -1)); err != nil {
			return fmt.Errorf("cap recurrence end: %w", err)
		}
		s.Log.Info().Str("template", templateID).Time("from", anchor).Msg("series truncated")
		return nil

	case ScopeAll:
		series, err := s.Store.ByTemplate(ctx, templateID)
		if err != nil {
			return fmt.Errorf("load series: %w", err)
		}
		for _, other := range series {
			if err := s.CancelInstance(ctx, other); err != nil {
				return err
			}
		}
		if err := s.Dispatch.Cancel(ctx, templateID); err != nil {
			s.Log.Warn().Err(err).Str("template", templateID).Msg("reminder cancel failed")
		}
		if err := s.Store.Delete(ctx, templateID); err != nil {
			return fmt.Errorf("delete template: %w", err)
		}
		s.Log.Info().Str("template", templateID).Int("instances", len(series)).Msg("series deleted")
		return nil
	}
	return fmt.Errorf("unknown delete scope %q", scope)
}

// recomputeFor rebuilds the balances an instance touches, best-effort.
func (s *Scheduler) recomputeFor(ctx context.Context, inst repository.Instance) {
	if err := s.Balances.Recompute(ctx, inst.AccountID); err != nil {
		s.Log.Warn().Err(err).Str("account", inst.AccountID).Msg("balance recompute failed")
	}
	if inst.DestAccountID != nil {
		if err := s.Balances.Recompute(ctx, *inst.DestAccountID); err != nil {
			s.Log.Warn().Err(err).Str("account", *inst.DestAccountID).Msg("balance recompute failed")
		}
	}
}
