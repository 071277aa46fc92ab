package service

import (
	"context"
	"fmt"

	"github.com/pkoval/tally/internal/database/repository"
)

// Execute finalizes one pending instance. The pending-to-executed transition
// is guarded in the store, so calling it again, or on anything not pending,
// is a no-op with applied=false. Balance and category-usage updates are
// best-effort followups; their failures are logged, never returned.
func (s *Scheduler) Execute(ctx context.Context, inst repository.Instance) (bool, error) {
	if inst.IsTemplate {
		s.Log.Warn().Str("template", inst.ID).Msg("refusing to execute a template")
		return false, nil
	}
	applied, err := s.Store.TransitionStatus(ctx, inst.ID, repository.StatusPending, repository.StatusExecuted)
	if err != nil {
		// Leave the instance failed so a later retry can find it.
		if _, ferr := s.Store.TransitionStatus(ctx, inst.ID, repository.StatusPending, repository.StatusFailed); ferr != nil {
			s.Log.Error().Err(ferr).Str("instance", inst.ID).Msg("could not mark failed")
		}
		return false, fmt.Errorf("execute %s: %w", inst.ID, err)
	}
	if !applied {
		s.Log.Debug().Str("instance", inst.ID).Msg("execute skipped, not pending")
		return false, nil
	}

	// The instance keeps its own effective date; execution time is not
	// stamped onto it.
	s.recomputeFor(ctx, inst)
	if inst.CategoryID != nil {
		if err := s.Usage.RecordUsage(ctx, *inst.CategoryID); err != nil {
			s.Log.Warn().Err(err).Str("category", *inst.CategoryID).Msg("usage record failed")
		}
	}
	// Any reminder for the instance is stale once it has executed.
	if err := s.Dispatch.Cancel(ctx, inst.ID); err != nil {
		s.Log.Warn().Err(err).Str("instance", inst.ID).Msg("reminder cancel failed")
	}
	return true, nil
}

// Retry moves a failed instance back to pending and executes it again.
// Applied is false when the instance was not failed.
func (s *Scheduler) Retry(ctx context.Context, inst repository.Instance) (bool, error) {
	applied, err := s.Store.TransitionStatus(ctx, inst.ID, repository.StatusFailed, repository.StatusPending)
	if err != nil {
		return false, fmt.Errorf("retry %s: %w", inst.ID, err)
	}
	if !applied {
		return false, nil
	}
	return s.Execute(ctx, inst)
}
