package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityEntry represents a record stored in activity_logs.
type ActivityEntry struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// ActivityLogger writes records into activity_logs.
type ActivityLogger struct {
	pool *pgxpool.Pool
}

// NewActivityLogger returns a new ActivityLogger.
func NewActivityLogger(pool *pgxpool.Pool) *ActivityLogger {
	return &ActivityLogger{pool: pool}
}

// Record persists the log entry.
func (l *ActivityLogger) Record(ctx context.Context, entry ActivityEntry) error {
	if l == nil {
		return errors.New("activity logger not initialised")
	}
	if entry.Action == "" || entry.Entity == "" || entry.EntityID == "" {
		return errors.New("activity log requires action/entity/entity_id")
	}
	metaJSON, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	var at any
	if !entry.At.IsZero() {
		at = entry.At
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO activity_logs (actor_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`, entry.ActorID, entry.Action, entry.Entity, entry.EntityID, metaJSON, at)
	return err
}
