package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terrace-erp/terrace/internal/shared"
)

// Repository provides PostgreSQL backed persistence for users.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, name, email, role, active, password_hash, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, user *User) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, role, active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		user.Name, user.Email, user.Role, user.Active, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("email %s: %w", user.Email, shared.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row, fmt.Sprintf("user %d", id))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row, "user "+email)
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY name`)
}

func (r *Repository) ListActive(ctx context.Context) ([]User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE active ORDER BY name`)
}

func (r *Repository) Update(ctx context.Context, user *User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $2, email = $3, role = $4, active = $5, password_hash = $6, updated_at = NOW()
		WHERE id = $1`,
		user.ID, user.Name, user.Email, user.Role, user.Active, user.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("email %s: %w", user.Email, shared.ErrAlreadyExists)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", user.ID, shared.ErrNotFound)
	}
	return nil
}

func (r *Repository) queryUsers(ctx context.Context, query string) ([]User, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Active, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row, label string) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Active, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", label, shared.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}
