package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terrace-erp/terrace/internal/shared"
)

// Repository provides PostgreSQL backed persistence for tasks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, title, description, status, priority, due_date,
	assignee_id, entity, entity_id, created_by, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, task *Task) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, priority, due_date,
			assignee_id, entity, entity_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		task.Title, task.Description, task.Status, task.Priority, task.DueDate,
		task.AssigneeID, task.Entity, task.EntityID, task.CreatedBy,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *Repository) Get(ctx context.Context, id int64) (*Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	return task, nil
}

func (r *Repository) List(ctx context.Context, req ListTasksRequest) ([]Task, error) {
	where := " WHERE 1=1"
	args := []any{}
	argNum := 1

	add := func(cond string, val any) {
		where += fmt.Sprintf(" AND "+cond, argNum)
		args = append(args, val)
		argNum++
	}
	if req.Status != "" {
		add("status = $%d", string(req.Status))
	}
	if req.AssigneeID > 0 {
		add("assignee_id = $%d", req.AssigneeID)
	}
	if req.Entity != "" {
		add("entity = $%d", req.Entity)
	}
	if req.EntityID > 0 {
		add("entity_id = $%d", req.EntityID)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks`+where+`
		ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, due_date NULLS LAST`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *Repository) Update(ctx context.Context, task *Task) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5,
			due_date = $6, assignee_id = $7, updated_at = NOW()
		WHERE id = $1`,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.AssigneeID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", task.ID, shared.ErrNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	var description, entity pgtype.Text
	var dueDate pgtype.Timestamptz
	var assigneeID, entityID pgtype.Int8

	err := row.Scan(
		&t.ID, &t.Title, &description, &t.Status, &t.Priority, &dueDate,
		&assigneeID, &entity, &entityID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if assigneeID.Valid {
		t.AssigneeID = &assigneeID.Int64
	}
	if entity.Valid {
		t.Entity = &entity.String
	}
	if entityID.Valid {
		t.EntityID = &entityID.Int64
	}
	return &t, nil
}
