package sales

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

// Repository provides PostgreSQL backed persistence for sales.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const saleColumns = `id, project_id, block_id, customer_id, payment_plan, total_amount,
	down_payment, installment_count, first_payment_date, status, payment_status,
	notes, created_by, completed_at, cancelled_at, cancel_reason, created_at, updated_at`

const obligationColumns = `id, sale_id, amount, due_date, description, installment_number,
	status, paid_amount, paid_date, payment_method, notes`

// CreateSale inserts the sale and its obligations in one transaction.
func (r *Repository) CreateSale(ctx context.Context, sale *Sale) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO sales (
			project_id, block_id, customer_id, payment_plan, total_amount,
			down_payment, installment_count, first_payment_date, status,
			payment_status, notes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		sale.ProjectID, sale.BlockID, sale.CustomerID, sale.PaymentPlan,
		sale.TotalAmount, sale.DownPayment, sale.InstallmentCount,
		sale.FirstPaymentDate, sale.Status, sale.PaymentStatus,
		sale.Notes, sale.CreatedBy,
	).Scan(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("block already has an active sale: %w", shared.ErrAlreadyExists)
		}
		return err
	}

	for i := range sale.Payments {
		p := &sale.Payments[i]
		p.SaleID = sale.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO sale_payments (
				sale_id, amount, due_date, description, installment_number,
				status, paid_amount, paid_date, payment_method, notes, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING id`,
			sale.ID, p.Amount, p.DueDate, p.Description, p.InstallmentNumber,
			p.Status, p.PaidAmount, p.PaidDate, p.PaymentMethod, p.Notes,
		).Scan(&p.ID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetSale retrieves a sale with its schedule ordered by installment number.
func (r *Repository) GetSale(ctx context.Context, id int64) (*Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sale %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+obligationColumns+`
		FROM sale_payments
		WHERE sale_id = $1
		ORDER BY installment_number`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		sale.Payments = append(sale.Payments, p)
	}
	return sale, rows.Err()
}

// ListSales returns sales matching the filter plus the total count. The
// listing carries no schedules; GetSale loads them.
func (r *Repository) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
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
	if req.BlockID > 0 {
		add("block_id = $%d", req.BlockID)
	}
	if req.CustomerID > 0 {
		add("customer_id = $%d", req.CustomerID)
	}
	if req.Status != "" {
		add("status = $%d", string(req.Status))
	}
	if req.PaymentStatus != "" {
		add("payment_status = $%d", string(req.PaymentStatus))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + saleColumns + ` FROM sales` + where + " ORDER BY created_at DESC"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, *sale)
	}
	return sales, total, rows.Err()
}

// SaveSale persists recalculated sale state and obligation mutations.
func (r *Repository) SaveSale(ctx context.Context, sale *Sale) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE sales
		SET status = $2, payment_status = $3, completed_at = $4,
			cancelled_at = $5, cancel_reason = $6, updated_at = NOW()
		WHERE id = $1`,
		sale.ID, sale.Status, sale.PaymentStatus, sale.CompletedAt,
		sale.CancelledAt, sale.CancelReason,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sale %d: %w", sale.ID, shared.ErrNotFound)
	}

	for i := range sale.Payments {
		p := &sale.Payments[i]
		_, err = tx.Exec(ctx, `
			UPDATE sale_payments
			SET status = $2, paid_amount = $3, paid_date = $4,
				payment_method = $5, notes = $6, updated_at = NOW()
			WHERE id = $1 AND sale_id = $7`,
			p.ID, p.Status, p.PaidAmount, p.PaidDate, p.PaymentMethod, p.Notes, sale.ID,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListActiveSales loads every active sale with its schedule for the overdue
// scan. Internal back-office volume keeps this bounded.
func (r *Repository) ListActiveSales(ctx context.Context) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales WHERE status = $1 ORDER BY id`, SaleStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	index := make(map[int64]int)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		index[sale.ID] = len(sales)
		sales = append(sales, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, nil
	}

	prows, err := r.pool.Query(ctx, `
		SELECT `+obligationColumns+`
		FROM sale_payments p
		JOIN sales s ON s.id = p.sale_id
		WHERE s.status = $1
		ORDER BY p.sale_id, p.installment_number`, SaleStatusActive)
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	for prows.Next() {
		p, err := scanObligation(prows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[p.SaleID]; ok {
			sales[i].Payments = append(sales[i].Payments, p)
		}
	}
	return sales, prows.Err()
}

func scanSale(row pgx.Row) (*Sale, error) {
	var sale Sale
	var notes, cancelReason pgtype.Text
	var completedAt, cancelledAt pgtype.Timestamptz

	err := row.Scan(
		&sale.ID, &sale.ProjectID, &sale.BlockID, &sale.CustomerID,
		&sale.PaymentPlan, &sale.TotalAmount, &sale.DownPayment,
		&sale.InstallmentCount, &sale.FirstPaymentDate, &sale.Status,
		&sale.PaymentStatus, &notes, &sale.CreatedBy,
		&completedAt, &cancelledAt, &cancelReason,
		&sale.CreatedAt, &sale.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		sale.Notes = &notes.String
	}
	if cancelReason.Valid {
		sale.CancelReason = &cancelReason.String
	}
	if completedAt.Valid {
		sale.CompletedAt = &completedAt.Time
	}
	if cancelledAt.Valid {
		sale.CancelledAt = &cancelledAt.Time
	}
	return &sale, nil
}

func scanObligation(row pgx.Row) (Obligation, error) {
	var p Obligation
	var paidDate pgtype.Timestamptz
	var method, notes pgtype.Text

	err := row.Scan(
		&p.ID, &p.SaleID, &p.Amount, &p.DueDate, &p.Description,
		&p.InstallmentNumber, &p.Status, &p.PaidAmount,
		&paidDate, &method, &notes,
	)
	if err != nil {
		return Obligation{}, err
	}
	if paidDate.Valid {
		p.PaidDate = &paidDate.Time
	}
	if method.Valid {
		p.PaymentMethod = &method.String
	}
	if notes.Valid {
		p.Notes = &notes.String
	}
	p.RemainingAmount = p.Remaining()
	return p, nil
}
