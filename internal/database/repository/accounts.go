package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Upsert(ctx context.Context, a Account) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(id, name, institution, account_type, currency, opening_balance, balance, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 institution=excluded.institution,
	 account_type=excluded.account_type,
	 currency=excluded.currency,
	 updated_at=CURRENT_TIMESTAMP;
	`, a.ID, a.Name, a.Institution, a.AccountType, a.Currency, a.OpeningBalance, a.Balance)
	return err
}

func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, institution, account_type, currency, opening_balance, balance, created_at, updated_at FROM accounts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Institution, &a.AccountType, &a.Currency, &a.OpeningBalance, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccountRepo) Get(ctx context.Context, id string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, institution, account_type, currency, opening_balance, balance, created_at, updated_at FROM accounts WHERE id = ?`, id)
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Institution, &a.AccountType, &a.Currency, &a.OpeningBalance, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByName(ctx context.Context, name string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, institution, account_type, currency, opening_balance, balance, created_at, updated_at FROM accounts WHERE name = ?`, name)
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Institution, &a.AccountType, &a.Currency, &a.OpeningBalance, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SetBalance writes the denormalized balance. Only the balance updater
// should call this.
func (r *AccountRepo) SetBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, balance, id)
	return err
}
