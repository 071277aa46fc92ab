package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkoval/tally/internal/recurrence"
)

// InstanceFilters defines list filters.
type InstanceFilters struct {
	TemplateID    string
	Status        Status
	AccountID     string
	DestAccountID string
	TemplatesOnly bool
	ScheduledOnly bool
	From          time.Time // zero = no lower bound; matches effective_date >= From
	DueBy         time.Time // zero = no upper bound; matches effective_date <= DueBy
}

// InstanceRepo handles scheduled transactions and their templates.
type InstanceRepo struct {
	db *sql.DB
}

func NewInstanceRepo(db *sql.DB) *InstanceRepo { return &InstanceRepo{db: db} }

const instanceCols = `id, template_id, is_template, account_id, dest_account_id, category_id,
 amount, currency, note, effective_date, status, is_scheduled, is_automatic,
 adjust_working_day, include_start_day, rule_frequency, rule_interval, recurrence_end,
 created_at, updated_at`

func (r *InstanceRepo) Insert(ctx context.Context, inst Instance) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, template_id, is_template, account_id, dest_account_id, category_id, amount, currency,
	 note, effective_date, status, is_scheduled, is_automatic, adjust_working_day,
	 include_start_day, rule_frequency, rule_interval, recurrence_end, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		inst.ID, inst.TemplateID, inst.IsTemplate, inst.AccountID, inst.DestAccountID,
		inst.CategoryID, inst.Amount, inst.Currency, inst.Note,
		recurrence.Day(inst.EffectiveDate), inst.Status, inst.IsScheduled, inst.IsAutomatic,
		inst.AdjustWorkingDay, inst.IncludeStartDay, inst.RuleFrequency, inst.RuleInterval,
		dayPtr(inst.RecurrenceEnd))
	return err
}

func (r *InstanceRepo) Get(ctx context.Context, id string) (*Instance, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+instanceCols+` FROM transactions WHERE id = ?`, id)
	inst, err := scanInstance(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &inst, nil
}

func (r *InstanceRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	return err
}

func (r *InstanceRepo) List(ctx context.Context, f InstanceFilters) ([]Instance, error) {
	var where []string
	var args []interface{}

	if f.TemplateID != "" {
		where = append(where, "template_id = ?")
		args = append(args, f.TemplateID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.DestAccountID != "" {
		where = append(where, "dest_account_id = ?")
		args = append(args, f.DestAccountID)
	}
	if f.TemplatesOnly {
		where = append(where, "is_template = 1")
	}
	if f.ScheduledOnly {
		where = append(where, "is_scheduled = 1")
	}
	if !f.From.IsZero() {
		where = append(where, "effective_date >= ?")
		args = append(args, recurrence.Day(f.From))
	}
	if !f.DueBy.IsZero() {
		where = append(where, "effective_date <= ?")
		args = append(args, recurrence.Day(f.DueBy))
	}

	query := `SELECT ` + instanceCols + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY effective_date ASC, created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// Templates returns all recurring templates.
func (r *InstanceRepo) Templates(ctx context.Context) ([]Instance, error) {
	return r.List(ctx, InstanceFilters{TemplatesOnly: true})
}

// ByTemplate returns the spawned instances of one template in effective-date
// order, templates excluded.
func (r *InstanceRepo) ByTemplate(ctx context.Context, templateID string) ([]Instance, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+instanceCols+` FROM transactions
	 WHERE template_id = ? AND is_template = 0
	 ORDER BY effective_date ASC, created_at ASC`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// DueScheduled returns pending scheduled instances whose effective day is on
// or before through. Templates are never due.
func (r *InstanceRepo) DueScheduled(ctx context.Context, through time.Time) ([]Instance, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+instanceCols+` FROM transactions
	 WHERE is_scheduled = 1 AND is_template = 0 AND status = ? AND effective_date <= ?
	 ORDER BY effective_date ASC, created_at ASC`, StatusPending, recurrence.Day(through))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// TransitionStatus moves id from one status to another. A false result means
// the row is missing or no longer in from; callers treat that as an
// idempotent no-op.
func (r *InstanceRepo) TransitionStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetRecurrenceEnd caps a template's recurrence end date.
func (r *InstanceRepo) SetRecurrenceEnd(ctx context.Context, id string, end time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET recurrence_end = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, recurrence.Day(end), id)
	return err
}

// scanInstance handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanInstance(row scanner) (Instance, error) {
	var inst Instance
	var templateID, destAccount, category, freq sql.NullString
	var interval sql.NullInt64
	var recEnd sql.NullTime
	if err := row.Scan(&inst.ID, &templateID, &inst.IsTemplate, &inst.AccountID, &destAccount,
		&category, &inst.Amount, &inst.Currency, &inst.Note, &inst.EffectiveDate, &inst.Status,
		&inst.IsScheduled, &inst.IsAutomatic, &inst.AdjustWorkingDay, &inst.IncludeStartDay,
		&freq, &interval, &recEnd, &inst.CreatedAt, &inst.UpdatedAt); err != nil {
		return Instance{}, err
	}
	if templateID.Valid {
		inst.TemplateID = &templateID.String
	}
	if destAccount.Valid {
		inst.DestAccountID = &destAccount.String
	}
	if category.Valid {
		inst.CategoryID = &category.String
	}
	if freq.Valid {
		inst.RuleFrequency = &freq.String
	}
	if interval.Valid {
		n := int(interval.Int64)
		inst.RuleInterval = &n
	}
	if recEnd.Valid {
		inst.RecurrenceEnd = &recEnd.Time
	}
	return inst, nil
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := recurrence.Day(*t)
	return &d
}
