package blocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terrace-erp/terrace/internal/shared"
)

// Repository provides PostgreSQL backed persistence for blocks. The 3D
// placement is stored as a jsonb column; pgx maps it through the struct.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const blockColumns = `id, project_id, number, type, floor, area, rooms, price,
	status, placement, notes, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, block *Block) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO blocks (project_id, number, type, floor, area, rooms, price,
			status, placement, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		block.ProjectID, block.Number, block.Type, block.Floor, block.Area,
		block.Rooms, block.Price, block.Status, block.Placement, block.Notes,
	).Scan(&block.ID, &block.CreatedAt, &block.UpdatedAt)
}

func (r *Repository) Get(ctx context.Context, id int64) (*Block, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = $1`, id)
	block, err := scanBlock(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("block %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	return block, nil
}

func (r *Repository) List(ctx context.Context, req ListBlocksRequest) ([]Block, error) {
	where := " WHERE 1=1"
	args := []any{}
	argNum := 1

	add := func(cond string, val any) {
		where += fmt.Sprintf(" AND "+cond, argNum)
		args = append(args, val)
		argNum++
	}
	if req.ProjectID > 0 {
		add("project_id = $%d", req.ProjectID)
	}
	if req.Status != "" {
		add("status = $%d", string(req.Status))
	}
	if req.Type != "" {
		add("type = $%d", string(req.Type))
	}

	rows, err := r.pool.Query(ctx, `SELECT `+blockColumns+` FROM blocks`+where+` ORDER BY project_id, number`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *block)
	}
	return blocks, rows.Err()
}

func (r *Repository) Update(ctx context.Context, block *Block) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE blocks
		SET number = $2, type = $3, floor = $4, area = $5, rooms = $6,
			price = $7, status = $8, placement = $9, notes = $10, updated_at = NOW()
		WHERE id = $1`,
		block.ID, block.Number, block.Type, block.Floor, block.Area,
		block.Rooms, block.Price, block.Status, block.Placement, block.Notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("block %d: %w", block.ID, shared.ErrNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blocks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("block %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *Repository) SetStatus(ctx context.Context, id int64, status BlockStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE blocks SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("block %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func scanBlock(row pgx.Row) (*Block, error) {
	var b Block
	var floor, rooms pgtype.Int4
	var area pgtype.Float8
	var notes pgtype.Text

	err := row.Scan(
		&b.ID, &b.ProjectID, &b.Number, &b.Type, &floor, &area, &rooms,
		&b.Price, &b.Status, &b.Placement, &notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if floor.Valid {
		v := int(floor.Int32)
		b.Floor = &v
	}
	if area.Valid {
		b.Area = &area.Float64
	}
	if rooms.Valid {
		v := int(rooms.Int32)
		b.Rooms = &v
	}
	if notes.Valid {
		b.Notes = &notes.String
	}
	return &b, nil
}
