package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists notifications.
type Repository interface {
	Create(ctx context.Context, n Notification) error
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed notification repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a notification.
func (r *PostgresRepository) Create(ctx context.Context, n Notification) error {
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(n.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO notifications (id, user_id, kind, title, body, read_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, n.Kind, n.Title, n.Body, n.ReadAt, n.CreatedAt.UTC())
	return err
}

// ListByUser returns the user's notifications most-recent-first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, kind, title, body, read_at, created_at
        FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			id        uuid.UUID
			uidVal    uuid.UUID
			n         Notification
			createdAt time.Time
		)
		if err := rows.Scan(&id, &uidVal, &n.Kind, &n.Title, &n.Body, &n.ReadAt, &createdAt); err != nil {
			return nil, err
		}
		n.ID = id.String()
		n.UserID = uidVal.String()
		n.CreatedAt = createdAt.UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkAllRead transitions every unread notification in one batched update and
// reports how many rows changed.
func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE notifications SET read_at = $2
        WHERE user_id = $1 AND read_at IS NULL`, uid, at.UTC())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
