package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the reporting aggregations. Cancelled sales are excluded
// everywhere.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ProjectSummaries(ctx context.Context) ([]ProjectSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name,
			COALESCE(bc.total, 0), COALESCE(bc.sold, 0),
			COALESCE(sc.contract, 0), COALESCE(sc.collected, 0), COALESCE(sc.overdue, 0)
		FROM projects p
		LEFT JOIN (
			SELECT project_id,
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE status = 'sold') AS sold
			FROM blocks
			GROUP BY project_id
		) bc ON bc.project_id = p.id
		LEFT JOIN (
			SELECT s.project_id,
				SUM(s.total_amount) AS contract,
				COALESCE(SUM(sp.paid), 0) AS collected,
				COALESCE(SUM(sp.overdue), 0) AS overdue
			FROM sales s
			LEFT JOIN (
				SELECT sale_id,
					SUM(paid_amount) AS paid,
					COUNT(*) FILTER (WHERE status = 'overdue') AS overdue
				FROM sale_payments
				GROUP BY sale_id
			) sp ON sp.sale_id = s.id
			WHERE s.status <> 'cancelled'
			GROUP BY s.project_id
		) sc ON sc.project_id = p.id
		ORDER BY p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ProjectSummary
	for rows.Next() {
		var s ProjectSummary
		var overdue int64
		if err := rows.Scan(&s.ProjectID, &s.ProjectName, &s.TotalUnits, &s.SoldUnits, &s.ContractedV, &s.Collected, &overdue); err != nil {
			return nil, err
		}
		s.Outstanding = s.ContractedV - s.Collected
		s.OverdueCount = int(overdue)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *Repository) Collections(ctx context.Context, from, to time.Time) (CollectionReport, error) {
	report := CollectionReport{From: from, To: to}

	rows, err := r.pool.Query(ctx, `
		SELECT sp.sale_id, p.name, b.number, c.name, sp.description,
			sp.paid_amount, sp.paid_date, COALESCE(sp.payment_method, '')
		FROM sale_payments sp
		JOIN sales s ON s.id = sp.sale_id AND s.status <> 'cancelled'
		JOIN projects p ON p.id = s.project_id
		JOIN blocks b ON b.id = s.block_id
		JOIN customers c ON c.id = s.customer_id
		WHERE sp.paid_amount > 0 AND sp.paid_date BETWEEN $1 AND $2
		ORDER BY sp.paid_date`, from, to)
	if err != nil {
		return report, err
	}
	defer rows.Close()

	for rows.Next() {
		var row CollectionRow
		var paidDate pgtype.Timestamptz
		if err := rows.Scan(&row.SaleID, &row.ProjectName, &row.BlockNumber, &row.CustomerName,
			&row.Description, &row.PaidAmount, &paidDate, &row.PaymentMethod); err != nil {
			return report, err
		}
		if paidDate.Valid {
			row.PaidDate = paidDate.Time
		}
		report.Total += row.PaidAmount
		report.Rows = append(report.Rows, row)
	}
	return report, rows.Err()
}

func (r *Repository) OverdueObligations(ctx context.Context, asOf time.Time) ([]OverdueRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sp.sale_id, p.name, b.number, c.name, sp.description,
			sp.amount, sp.amount - sp.paid_amount, sp.due_date
		FROM sale_payments sp
		JOIN sales s ON s.id = sp.sale_id AND s.status = 'active'
		JOIN projects p ON p.id = s.project_id
		JOIN blocks b ON b.id = s.block_id
		JOIN customers c ON c.id = s.customer_id
		WHERE sp.status = 'overdue'
		ORDER BY sp.due_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OverdueRow
	for rows.Next() {
		var row OverdueRow
		if err := rows.Scan(&row.SaleID, &row.ProjectName, &row.BlockNumber, &row.CustomerName,
			&row.Description, &row.Amount, &row.Remaining, &row.DueDate); err != nil {
			return nil, err
		}
		row.DaysOverdue = int(asOf.Sub(row.DueDate).Hours() / 24)
		if row.DaysOverdue < 1 {
			row.DaysOverdue = 1
		}
		row.Bucket = BucketFor(row.DaysOverdue)
		out = append(out, row)
	}
	return out, rows.Err()
}
