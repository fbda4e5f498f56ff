package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hibiken/asynq"

	"github.com/terrace-erp/terrace/internal/sales"
)

// OverdueScanner re-derives payment statuses for every active sale.
type OverdueScanner interface {
	ScanOverdue(ctx context.Context) ([]sales.Obligation, error)
}

// OverdueNotifier broadcasts overdue escalations to the staff feed.
type OverdueNotifier interface {
	Broadcast(ctx context.Context, kind, title, body, entity string, entityID int64) error
}

// ReportInvalidator retires cached reports after statuses move.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// OverdueScanJob runs the nightly sweep: escalate, notify, drop stale report
// caches.
type OverdueScanJob struct {
	scanner  OverdueScanner
	notifier OverdueNotifier
	reports  ReportInvalidator
	logger   *slog.Logger
}

// NewOverdueScanJob constructs the job.
func NewOverdueScanJob(scanner OverdueScanner, notifier OverdueNotifier, reports ReportInvalidator, logger *slog.Logger) *OverdueScanJob {
	return &OverdueScanJob{scanner: scanner, notifier: notifier, reports: reports, logger: logger}
}

// Handle processes TaskTypeOverdueScan tasks.
func (j *OverdueScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	escalated, err := j.scanner.ScanOverdue(ctx)
	if err != nil {
		return fmt.Errorf("overdue scan: %w", err)
	}
	j.logger.Info("overdue scan finished", slog.Int("escalated", len(escalated)))

	if len(escalated) == 0 {
		return nil
	}
	if j.reports != nil {
		if err := j.reports.Invalidate(ctx); err != nil {
			j.logger.Warn("report cache invalidation", slog.Any("error", err))
		}
	}
	if j.notifier == nil {
		return nil
	}
	for _, obligation := range escalated {
		body := obligation.Description + " of sale #" + strconv.FormatInt(obligation.SaleID, 10) +
			" is overdue since " + obligation.DueDate.Format("2006-01-02")
		if err := j.notifier.Broadcast(ctx, "payment_overdue", "Payment overdue", body, "sale", obligation.SaleID); err != nil {
			j.logger.Warn("overdue broadcast", slog.Any("error", err), slog.Int64("sale", obligation.SaleID))
		}
	}
	return nil
}
