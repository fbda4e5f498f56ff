package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terrace-erp/terrace/internal/shared"
)

// Repository provides PostgreSQL backed persistence for customers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const customerColumns = `id, name, national_id, phone, email, address, notes, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, customer *Customer) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, national_id, phone, email, address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		customer.Name, customer.NationalID, customer.Phone, customer.Email,
		customer.Address, customer.Notes,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("national id %s: %w", customer.NationalID, shared.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	return customer, nil
}

func (r *Repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	where := ""
	args := []any{}
	if req.Search != "" {
		where = ` WHERE name ILIKE $1 OR phone ILIKE $1`
		args = append(args, "%"+req.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + customerColumns + ` FROM customers` + where + ` ORDER BY name`
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, *customer)
	}
	return customers, total, rows.Err()
}

func (r *Repository) Update(ctx context.Context, customer *Customer) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers
		SET name = $2, national_id = $3, phone = $4, email = $5,
			address = $6, notes = $7, updated_at = NOW()
		WHERE id = $1`,
		customer.ID, customer.Name, customer.NationalID, customer.Phone,
		customer.Email, customer.Address, customer.Notes,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("national id %s: %w", customer.NationalID, shared.ErrAlreadyExists)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %d: %w", customer.ID, shared.ErrNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *Repository) CountSales(ctx context.Context, customerID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE customer_id = $1`, customerID).Scan(&count)
	return count, err
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	var phone, email, address, notes pgtype.Text

	err := row.Scan(&c.ID, &c.Name, &c.NationalID, &phone, &email, &address, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	if email.Valid {
		c.Email = &email.String
	}
	if address.Valid {
		c.Address = &address.String
	}
	if notes.Valid {
		c.Notes = &notes.String
	}
	return &c, nil
}
