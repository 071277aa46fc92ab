package repository

import (
	"context"
	"database/sql"
)

// NotificationRepo handles locally scheduled alerts. One row per instance;
// rescheduling overwrites in place.
type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Upsert(ctx context.Context, n Notification) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO notifications(instance_id, fires_at, title, body, created_at)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(instance_id) DO UPDATE SET
	 fires_at=excluded.fires_at,
	 title=excluded.title,
	 body=excluded.body;
	`, n.InstanceID, n.FiresAt, n.Title, n.Body)
	return err
}

// Delete removes the alert for an instance. Deleting an absent row is fine.
func (r *NotificationRepo) Delete(ctx context.Context, instanceID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE instance_id = ?`, instanceID)
	return err
}

func (r *NotificationRepo) Get(ctx context.Context, instanceID string) (*Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT instance_id, fires_at, title, body, created_at FROM notifications WHERE instance_id = ?`, instanceID)
	var n Notification
	err := row.Scan(&n.InstanceID, &n.FiresAt, &n.Title, &n.Body, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepo) List(ctx context.Context) ([]Notification, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT instance_id, fires_at, title, body, created_at FROM notifications ORDER BY fires_at, instance_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.InstanceID, &n.FiresAt, &n.Title, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
