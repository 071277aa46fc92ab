package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkoval/tally/internal/database/repository"
)

// flakyStore fails the pending-to-executed write while passing everything
// else through, to exercise the failure path.
type flakyStore struct {
	Store
	failExecute bool
}

func (f *flakyStore) TransitionStatus(ctx context.Context, id string, from, to repository.Status) (bool, error) {
	if f.failExecute && to == repository.StatusExecuted {
		return false, errors.New("simulated write failure")
	}
	return f.Store.TransitionStatus(ctx, id, from, to)
}

func TestExecute_AppliesAndFollowsUp(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)

	category := billsID
	dest := savingsID
	require.NoError(t, fx.store.Insert(fx.ctx, repository.Instance{
		ID:            "inst-transfer",
		AccountID:     checkingID,
		DestAccountID: &dest,
		CategoryID:    &category,
		Amount:        decimal.NewFromInt(-100),
		Currency:      "USD",
		Note:          "To savings",
		EffectiveDate: testNow.AddDate(0, 0, -1),
		Status:        repository.StatusPending,
		IsScheduled:   true,
		IsAutomatic:   true,
	}))
	inst := fx.mustGet(t, "inst-transfer")
	require.NoError(t, fx.sched.Dispatch.Schedule(fx.ctx, fx.sched.reminderFor(inst)))

	applied, err := fx.sched.Execute(fx.ctx, inst)
	require.NoError(t, err)
	require.True(t, applied)

	got := fx.mustGet(t, "inst-transfer")
	require.Equal(t, repository.StatusExecuted, got.Status)
	// Execution never re-dates the instance.
	require.Equal(t, inst.EffectiveDate.Format("2006-01-02"), got.EffectiveDate.Format("2006-01-02"))

	checking, err := fx.accounts.Get(fx.ctx, checkingID)
	require.NoError(t, err)
	require.True(t, checking.Balance.Equal(decimal.NewFromInt(900)), "balance %s", checking.Balance)
	savings, err := fx.accounts.Get(fx.ctx, savingsID)
	require.NoError(t, err)
	require.True(t, savings.Balance.Equal(decimal.NewFromInt(600)), "balance %s", savings.Balance)

	cat, err := repository.NewCategoryRepo(fx.db).Get(fx.ctx, billsID)
	require.NoError(t, err)
	require.Equal(t, 1, cat.UsageCount)
	require.NotNil(t, cat.LastUsedAt)

	// The day-of reminder is stale once executed.
	n, err := fx.notifs.Get(fx.ctx, "inst-transfer")
	require.NoError(t, err)
	require.Nil(t, n)
}

func TestExecute_SecondCallIsNoOp(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)

	id := fx.seedScheduled(t, "inst-once", testNow.AddDate(0, 0, -1), true)
	inst := fx.mustGet(t, id)

	applied, err := fx.sched.Execute(fx.ctx, inst)
	require.NoError(t, err)
	require.True(t, applied)

	// Plant a sentinel balance: a no-op call must not recompute it away.
	require.NoError(t, fx.accounts.SetBalance(fx.ctx, checkingID, decimal.NewFromInt(777)))

	applied, err = fx.sched.Execute(fx.ctx, inst)
	require.NoError(t, err)
	require.False(t, applied)

	acct, err := fx.accounts.Get(fx.ctx, checkingID)
	require.NoError(t, err)
	require.True(t, acct.Balance.Equal(decimal.NewFromInt(777)), "balance %s", acct.Balance)
	require.Equal(t, repository.StatusExecuted, fx.mustGet(t, id).Status)
}

func TestExecute_RefusesTemplate(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)

	tpl := monthlyTemplate("tpl-noexec", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, fx.store.Insert(fx.ctx, tpl))

	applied, err := fx.sched.Execute(fx.ctx, fx.mustGet(t, "tpl-noexec"))
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, repository.StatusPending, fx.mustGet(t, "tpl-noexec").Status)
}

func TestExecute_FailureMarksFailedThenRetryRecovers(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)

	id := fx.seedScheduled(t, "inst-flaky", testNow.AddDate(0, 0, -1), true)
	inst := fx.mustGet(t, id)

	flaky := &flakyStore{Store: fx.store, failExecute: true}
	fx.sched.Store = flaky

	applied, err := fx.sched.Execute(fx.ctx, inst)
	require.Error(t, err)
	require.False(t, applied)
	require.Equal(t, repository.StatusFailed, fx.mustGet(t, id).Status)
	t.Log("failure path checked")

	// The failed state supports manual retry once the store recovers.
	flaky.failExecute = false
	applied, err = fx.sched.Retry(fx.ctx, inst)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, repository.StatusExecuted, fx.mustGet(t, id).Status)

	acct, err := fx.accounts.Get(fx.ctx, checkingID)
	require.NoError(t, err)
	require.True(t, acct.Balance.Equal(decimal.NewFromInt(990)), "balance %s", acct.Balance)
}

func TestRetry_OnlyFailedInstancesRetry(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)

	pending := fx.seedScheduled(t, "inst-pending", testNow, true)
	applied, err := fx.sched.Retry(fx.ctx, fx.mustGet(t, pending))
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, repository.StatusPending, fx.mustGet(t, pending).Status)

	done := fx.seedScheduled(t, "inst-done", testNow.AddDate(0, 0, -1), true)
	applied, err = fx.sched.Execute(fx.ctx, fx.mustGet(t, done))
	require.NoError(t, err)
	require.True(t, applied)
	applied, err = fx.sched.Retry(fx.ctx, fx.mustGet(t, done))
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, repository.StatusExecuted, fx.mustGet(t, done).Status)
}
