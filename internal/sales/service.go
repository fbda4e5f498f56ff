package sales

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/terrace-erp/terrace/internal/shared"
)

// ErrObligationNotFound indicates the obligation does not exist on the sale.
var ErrObligationNotFound = fmt.Errorf("obligation %w", shared.ErrNotFound)

// RepositoryPort defines data access methods for sales.
type RepositoryPort interface {
	CreateSale(ctx context.Context, sale *Sale) error
	GetSale(ctx context.Context, id int64) (*Sale, error)
	ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error)
	SaveSale(ctx context.Context, sale *Sale) error
	ListActiveSales(ctx context.Context) ([]Sale, error)
}

// BlockMarker reserves and releases the sold unit. Implemented by the blocks
// service.
type BlockMarker interface {
	MarkSold(ctx context.Context, blockID int64) error
	Release(ctx context.Context, blockID int64) error
}

// Notifier publishes events to the notification feed.
type Notifier interface {
	Broadcast(ctx context.Context, kind, title, body, entity string, entityID int64) error
}

// ActivityRecorder persists activity log entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// IdemGuard deduplicates retried mutations. Delete releases a key whose
// mutation did not complete so the client can retry with the same key.
type IdemGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// CacheInvalidator retires cached reports after a sale mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service handles sale business logic: schedule generation on create,
// payment recording and the derived status lifecycle.
type Service struct {
	repo     RepositoryPort
	blocks   BlockMarker
	notifier Notifier
	activity ActivityRecorder
	idem     IdemGuard
	cache    CacheInvalidator
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, blocks BlockMarker, notifier Notifier, activity ActivityRecorder, idem IdemGuard) *Service {
	return &Service{
		repo:     repo,
		blocks:   blocks,
		notifier: notifier,
		activity: activity,
		idem:     idem,
		now:      time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// WithCacheInvalidator wires report cache invalidation into sale mutations.
func (s *Service) WithCacheInvalidator(cache CacheInvalidator) {
	s.cache = cache
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// Stale reports are acceptable; a failed bump is not worth failing the
	// mutation for.
	_ = s.cache.Invalidate(ctx)
}

// CreateSale creates the sale and its payment schedule atomically. A custom
// schedule supplied by the caller suppresses generation.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest, createdBy int64) (*Sale, error) {
	sale := &Sale{
		ProjectID:        req.ProjectID,
		BlockID:          req.BlockID,
		CustomerID:       req.CustomerID,
		PaymentPlan:      req.PaymentPlan,
		TotalAmount:      req.TotalAmount,
		DownPayment:      req.DownPayment,
		InstallmentCount: req.InstallmentCount,
		FirstPaymentDate: req.FirstPaymentDate,
		Status:           SaleStatusActive,
		PaymentStatus:    PaymentStatusPending,
		Notes:            req.Notes,
		CreatedBy:        createdBy,
	}

	for _, custom := range req.Payments {
		sale.Payments = append(sale.Payments, newObligation(custom.Amount, custom.DueDate, custom.Description, custom.InstallmentNumber))
	}

	if err := GenerateSchedule(sale); err != nil {
		return nil, err
	}
	Recalc(sale, s.now())

	// Claim the block before persisting anything: selling an already-sold
	// unit must fail without leaving a sale behind.
	if s.blocks != nil {
		if err := s.blocks.MarkSold(ctx, sale.BlockID); err != nil {
			return nil, fmt.Errorf("mark block sold: %w", err)
		}
	}

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		if s.blocks != nil {
			_ = s.blocks.Release(ctx, sale.BlockID)
		}
		return nil, fmt.Errorf("create sale: %w", err)
	}

	s.invalidateCache(ctx)
	s.recordActivity(ctx, createdBy, "sale.created", sale.ID, map[string]any{
		"blockId":     sale.BlockID,
		"customerId":  sale.CustomerID,
		"paymentPlan": string(sale.PaymentPlan),
		"totalAmount": sale.TotalAmount,
	})
	return sale, nil
}

// GetSale loads a sale with its schedule and refreshes derived fields.
func (s *Service) GetSale(ctx context.Context, id int64) (*Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range sale.Payments {
		sale.Payments[i].RemainingAmount = sale.Payments[i].Remaining()
	}
	return sale, nil
}

// ListSales returns sales matching the filter.
func (s *Service) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	return s.repo.ListSales(ctx, req)
}

// RecordPayment applies a payment against one obligation of the sale and
// persists the recalculated state. idemKey is optional; when set, retries
// with the same key are rejected.
func (s *Service) RecordPayment(ctx context.Context, saleID, obligationID int64, req RecordPaymentRequest, idemKey string, actorID int64) (*Sale, error) {
	if idemKey != "" && s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, idemKey, "sales.payment"); err != nil {
			return nil, err
		}
	}

	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		s.releaseIdemKey(ctx, idemKey)
		return nil, err
	}

	if err := ApplyPayment(sale, obligationID, req.Amount, req.PaidDate, req.PaymentMethod, req.Notes, s.now()); err != nil {
		s.releaseIdemKey(ctx, idemKey)
		return nil, err
	}

	if err := s.repo.SaveSale(ctx, sale); err != nil {
		s.releaseIdemKey(ctx, idemKey)
		return nil, fmt.Errorf("save sale: %w", err)
	}

	s.invalidateCache(ctx)
	s.recordActivity(ctx, actorID, "sale.payment_recorded", sale.ID, map[string]any{
		"obligationId": obligationID,
		"amount":       req.Amount,
		"method":       req.PaymentMethod,
	})

	if sale.Status == SaleStatusCompleted && s.notifier != nil {
		_ = s.notifier.Broadcast(ctx, "sale_completed", "Sale completed",
			"All payments received for sale #"+strconv.FormatInt(sale.ID, 10), "sale", sale.ID)
	}
	return sale, nil
}

// CancelSale cancels an active sale. Obligations are retained for audit and
// the block returns to the market.
func (s *Service) CancelSale(ctx context.Context, saleID int64, reason string, actorID int64) (*Sale, error) {
	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status != SaleStatusActive {
		return nil, fmt.Errorf("%w: sale is %s", shared.ErrInvalidStatus, sale.Status)
	}

	now := s.now()
	sale.Status = SaleStatusCancelled
	sale.CancelledAt = &now
	sale.CancelReason = &reason

	if err := s.repo.SaveSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("save sale: %w", err)
	}
	if s.blocks != nil {
		if err := s.blocks.Release(ctx, sale.BlockID); err != nil {
			return nil, fmt.Errorf("release block: %w", err)
		}
	}

	s.invalidateCache(ctx)
	s.recordActivity(ctx, actorID, "sale.cancelled", sale.ID, map[string]any{"reason": reason})
	return sale, nil
}

// GetPaymentSummary aggregates schedule progress for one sale.
func (s *Service) GetPaymentSummary(ctx context.Context, saleID int64) (PaymentSummary, error) {
	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return PaymentSummary{}, err
	}
	return Summarize(sale), nil
}

// ScanOverdue re-runs the recalculator over every active sale and persists
// escalations. It returns the obligations that became overdue during this
// pass so the caller can fan out notifications. Used by the nightly job; the
// same engine runs here and in the request path.
func (s *Service) ScanOverdue(ctx context.Context) ([]Obligation, error) {
	active, err := s.repo.ListActiveSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sales: %w", err)
	}

	now := s.now()
	var escalated []Obligation
	for i := range active {
		sale := &active[i]
		before := make(map[int64]ObligationStatus, len(sale.Payments))
		for _, p := range sale.Payments {
			before[p.ID] = p.Status
		}

		prevStatus := sale.PaymentStatus
		Recalc(sale, now)

		changed := sale.PaymentStatus != prevStatus
		for _, p := range sale.Payments {
			if before[p.ID] != p.Status && p.Status == ObligationOverdue {
				escalated = append(escalated, p)
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := s.repo.SaveSale(ctx, sale); err != nil {
			return escalated, fmt.Errorf("save sale %d: %w", sale.ID, err)
		}
	}
	return escalated, nil
}

// releaseIdemKey gives a consumed key back after a failed mutation. The key
// only counts as processed once the payment is persisted.
func (s *Service) releaseIdemKey(ctx context.Context, key string) {
	if key == "" || s.idem == nil {
		return
	}
	_ = s.idem.Delete(ctx, key)
}

func (s *Service) recordActivity(ctx context.Context, actorID int64, action string, saleID int64, meta map[string]any) {
	if s.activity == nil {
		return
	}
	// Activity logging must not fail the business operation.
	_ = s.activity.Record(ctx, shared.ActivityEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "sale",
		EntityID: strconv.FormatInt(saleID, 10),
		Meta:     meta,
	})
}
