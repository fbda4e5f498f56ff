package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads activity_logs written by shared.ActivityLogger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) List(ctx context.Context, req ListRequest) ([]LogEntry, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	argNum := 1

	add := func(cond string, val any) {
		where += fmt.Sprintf(" AND "+cond, argNum)
		args = append(args, val)
		argNum++
	}
	if req.ActorID > 0 {
		add("actor_id = $%d", req.ActorID)
	}
	if req.Entity != "" {
		add("entity = $%d", req.Entity)
	}
	if req.EntityID != "" {
		add("entity_id = $%d", req.EntityID)
	}
	if !req.From.IsZero() {
		add("occurred_at >= $%d", req.From)
	}
	if !req.To.IsZero() {
		add("occurred_at <= $%d", req.To)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activity_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, actor_id, action, entity, entity_id, meta, occurred_at
		FROM activity_logs` + where + ` ORDER BY occurred_at DESC`
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &meta, &e.OccurredAt); err != nil {
			return nil, 0, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &e.Meta)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
