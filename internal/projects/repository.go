package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terrace-erp/terrace/internal/shared"
)

// Repository provides PostgreSQL backed persistence for projects.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectSelect = `
	SELECT p.id, p.name, p.location, p.description, p.status,
		p.start_date, p.end_date, p.created_at, p.updated_at,
		COUNT(b.id) AS block_count,
		COUNT(b.id) FILTER (WHERE b.status = 'sold') AS sold_count
	FROM projects p
	LEFT JOIN blocks b ON b.project_id = p.id`

func (r *Repository) Create(ctx context.Context, project *Project) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO projects (name, location, description, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		project.Name, project.Location, project.Description, project.Status,
		project.StartDate, project.EndDate,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *Repository) Get(ctx context.Context, id int64) (*Project, error) {
	row := r.pool.QueryRow(ctx, projectSelect+` WHERE p.id = $1 GROUP BY p.id`, id)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	return project, nil
}

func (r *Repository) List(ctx context.Context) ([]Project, error) {
	rows, err := r.pool.Query(ctx, projectSelect+` GROUP BY p.id ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func (r *Repository) Update(ctx context.Context, project *Project) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET name = $2, location = $3, description = $4, status = $5,
			start_date = $6, end_date = $7, updated_at = NOW()
		WHERE id = $1`,
		project.ID, project.Name, project.Location, project.Description,
		project.Status, project.StartDate, project.EndDate,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %d: %w", project.ID, shared.ErrNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *Repository) CountBlocks(ctx context.Context, projectID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM blocks WHERE project_id = $1`, projectID).Scan(&count)
	return count, err
}

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	var location, description pgtype.Text
	var startDate, endDate pgtype.Timestamptz

	err := row.Scan(
		&p.ID, &p.Name, &location, &description, &p.Status,
		&startDate, &endDate, &p.CreatedAt, &p.UpdatedAt,
		&p.BlockCount, &p.SoldCount,
	)
	if err != nil {
		return nil, err
	}
	if location.Valid {
		p.Location = &location.String
	}
	if description.Valid {
		p.Description = &description.String
	}
	if startDate.Valid {
		p.StartDate = &startDate.Time
	}
	if endDate.Valid {
		p.EndDate = &endDate.Time
	}
	return &p, nil
}
