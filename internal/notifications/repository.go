package notifications

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terrace-erp/terrace/internal/shared"
)

// Repository provides PostgreSQL backed persistence for notifications.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, n *Notification) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO notifications (recipient_id, kind, title, body, entity, entity_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
		RETURNING id, created_at`,
		n.RecipientID, n.Kind, n.Title, n.Body, n.Entity, n.EntityID,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *Repository) ListByRecipient(ctx context.Context, recipientID int64, unreadOnly bool, limit int) ([]Notification, error) {
	query := `
		SELECT id, recipient_id, kind, title, body, entity, entity_id, read, created_at
		FROM notifications
		WHERE recipient_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repository) UnreadCount(ctx context.Context, recipientID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE`,
		recipientID,
	).Scan(&count)
	return count, err
}

func (r *Repository) MarkRead(ctx context.Context, recipientID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`,
		id, recipientID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, recipientID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE`,
		recipientID,
	)
	return err
}

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	var entity pgtype.Text
	var entityID pgtype.Int8

	err := row.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Title, &n.Body, &entity, &entityID, &n.Read, &n.CreatedAt)
	if err != nil {
		return Notification{}, err
	}
	if entity.Valid {
		n.Entity = &entity.String
	}
	if entityID.Valid {
		n.EntityID = &entityID.Int64
	}
	return n, nil
}
