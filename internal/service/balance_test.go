package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkoval/tally/internal/database/repository"
)

func TestRecompute_SumsExecutedOnly(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)
	svc := &BalanceService{Accounts: fx.accounts, Instances: fx.store}

	rows := []struct {
		id     string
		amount int64
		status repository.Status
	}{
		{"tx-groceries", -50, repository.StatusExecuted},
		{"tx-ignored", -999, repository.StatusPending},
		{"tx-refund", 200, repository.StatusExecuted},
		{"tx-broken", -40, repository.StatusFailed},
	}
	for _, row := range rows {
		require.NoError(t, fx.store.Insert(fx.ctx, repository.Instance{
			ID:            row.id,
			AccountID:     checkingID,
			Amount:        decimal.NewFromInt(row.amount),
			Currency:      "USD",
			EffectiveDate: testNow,
			Status:        row.status,
		}))
	}

	require.NoError(t, svc.Recompute(fx.ctx, checkingID))

	acct, err := fx.accounts.Get(fx.ctx, checkingID)
	require.NoError(t, err)
	require.True(t, acct.Balance.Equal(decimal.NewFromInt(1150)), "balance %s", acct.Balance)
}

func TestRecompute_TransferCountsBothSides(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)
	svc := &BalanceService{Accounts: fx.accounts, Instances: fx.store}

	dest := savingsID
	require.NoError(t, fx.store.Insert(fx.ctx, repository.Instance{
		ID:            "tx-transfer",
		AccountID:     checkingID,
		DestAccountID: &dest,
		Amount:        decimal.NewFromInt(-100),
		Currency:      "USD",
		EffectiveDate: testNow,
		Status:        repository.StatusExecuted,
	}))

	require.NoError(t, svc.Recompute(fx.ctx, checkingID))
	require.NoError(t, svc.Recompute(fx.ctx, savingsID))

	checking, err := fx.accounts.Get(fx.ctx, checkingID)
	require.NoError(t, err)
	require.True(t, checking.Balance.Equal(decimal.NewFromInt(900)), "balance %s", checking.Balance)
	savings, err := fx.accounts.Get(fx.ctx, savingsID)
	require.NoError(t, err)
	require.True(t, savings.Balance.Equal(decimal.NewFromInt(600)), "balance %s", savings.Balance)
}

func TestRecompute_UnknownAccount(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)
	svc := &BalanceService{Accounts: fx.accounts, Instances: fx.store}

	err := svc.Recompute(fx.ctx, "acct-missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}
