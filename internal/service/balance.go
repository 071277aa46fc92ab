package service

import (
	"context"
	"fmt"

	"github.com/pkoval/tally/internal/database/repository"
)

// BalanceService rebuilds denormalized account balances from executed
// transactions. Amounts are the signed effect on the source account; a
// transfer credits the destination with the negation.
type BalanceService struct {
	Accounts  *repository.AccountRepo
	Instances *repository.InstanceRepo
}

// Recompute rebuilds one account's balance from scratch: opening balance
// plus every executed amount touching the account.
func (b *BalanceService) Recompute(ctx context.Context, accountID string) error {
	acct, err := b.Accounts.Get(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return fmt.Errorf("account %s not found", accountID)
	}

	total := acct.OpeningBalance
	outgoing, err := b.Instances.List(ctx, repository.InstanceFilters{
		AccountID: accountID,
		Status:    repository.StatusExecuted,
	})
	if err != nil {
		return fmt.Errorf("load executed transactions: %w", err)
	}
	for _, inst := range outgoing {
		total = total.Add(inst.Amount)
	}

	incoming, err := b.Instances.List(ctx, repository.InstanceFilters{
		DestAccountID: accountID,
		Status:        repository.StatusExecuted,
	})
	if err != nil {
		return fmt.Errorf("load incoming transfers: %w", err)
	}
	for _, inst := range incoming {
		total = total.Sub(inst.Amount)
	}

	if err := b.Accounts.SetBalance(ctx, accountID, total); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	return nil
}
