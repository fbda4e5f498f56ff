package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/terrace-erp/terrace/internal/shared"
)

type memoryRepo struct {
	sales  map[int64]*Sale
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sales: make(map[int64]*Sale), nextID: 1}
}

func (m *memoryRepo) CreateSale(_ context.Context, sale *Sale) error {
	sale.ID = m.nextID
	m.nextID++
	for i := range sale.Payments {
		sale.Payments[i].ID = m.nextID
		sale.Payments[i].SaleID = sale.ID
		m.nextID++
	}
	clone := *sale
	clone.Payments = append([]Obligation(nil), sale.Payments...)
	m.sales[sale.ID] = &clone
	return nil
}

func (m *memoryRepo) GetSale(_ context.Context, id int64) (*Sale, error) {
	sale, ok := m.sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *sale
	clone.Payments = append([]Obligation(nil), sale.Payments...)
	return &clone, nil
}

func (m *memoryRepo) ListSales(_ context.Context, req ListSalesRequest) ([]Sale, int, error) {
	var out []Sale
	for _, sale := range m.sales {
		if req.Status != "" && sale.Status != req.Status {
			continue
		}
		if req.PaymentStatus != "" && sale.PaymentStatus != req.PaymentStatus {
			continue
		}
		out = append(out, *sale)
	}
	return out, len(out), nil
}

func (m *memoryRepo) SaveSale(_ context.Context, sale *Sale) error {
	if _, ok := m.sales[sale.ID]; !ok {
		return shared.ErrNotFound
	}
	clone := *sale
	clone.Payments = append([]Obligation(nil), sale.Payments...)
	m.sales[sale.ID] = &clone
	return nil
}

func (m *memoryRepo) ListActiveSales(_ context.Context) ([]Sale, error) {
	var out []Sale
	for _, sale := range m.sales {
		if sale.Status != SaleStatusActive {
			continue
		}
		clone := *sale
		clone.Payments = append([]Obligation(nil), sale.Payments...)
		out = append(out, clone)
	}
	return out, nil
}

type fakeBlocks struct {
	sold        []int64
	released    []int64
	markSoldErr error
}

func (f *fakeBlocks) MarkSold(_ context.Context, blockID int64) error {
	if f.markSoldErr != nil {
		return f.markSoldErr
	}
	f.sold = append(f.sold, blockID)
	return nil
}

func (f *fakeBlocks) Release(_ context.Context, blockID int64) error {
	f.released = append(f.released, blockID)
	return nil
}

type fakeNotifier struct {
	kinds []string
}

func (f *fakeNotifier) Broadcast(_ context.Context, kind, _, _, _ string, _ int64) error {
	f.kinds = append(f.kinds, kind)
	return nil
}

type fakeActivity struct {
	actions []string
}

func (f *fakeActivity) Record(_ context.Context, entry shared.ActivityEntry) error {
	f.actions = append(f.actions, entry.Action)
	return nil
}

type fakeIdem struct {
	seen map[string]bool
}

func (f *fakeIdem) CheckAndInsert(_ context.Context, key, _ string) error {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[key] {
		return shared.ErrIdempotencyConflict
	}
	f.seen[key] = true
	return nil
}

func (f *fakeIdem) Delete(_ context.Context, key string) error {
	delete(f.seen, key)
	return nil
}

// failingCreateRepo rejects the first CreateSale calls to exercise the
// compensation path.
type failingCreateRepo struct {
	*memoryRepo
	failures int
}

func (r *failingCreateRepo) CreateSale(ctx context.Context, sale *Sale) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("insert failed")
	}
	return r.memoryRepo.CreateSale(ctx, sale)
}

// flakySaveRepo fails the first SaveSale calls, then behaves normally.
type flakySaveRepo struct {
	*memoryRepo
	failures int
}

func (r *flakySaveRepo) SaveSale(ctx context.Context, sale *Sale) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("save failed")
	}
	return r.memoryRepo.SaveSale(ctx, sale)
}

type saleFixture struct {
	service  *Service
	repo     *memoryRepo
	blocks   *fakeBlocks
	notifier *fakeNotifier
	activity *fakeActivity
	idem     *fakeIdem
}

func newSaleFixture(now time.Time) *saleFixture {
	f := &saleFixture{
		repo:     newMemoryRepo(),
		blocks:   &fakeBlocks{},
		notifier: &fakeNotifier{},
		activity: &fakeActivity{},
		idem:     &fakeIdem{},
	}
	f.service = NewService(f.repo, f.blocks, f.notifier, f.activity, f.idem)
	f.service.WithNow(func() time.Time { return now })
	return f
}

func installmentRequest() CreateSaleRequest {
	return CreateSaleRequest{
		ProjectID:        1,
		BlockID:          7,
		CustomerID:       3,
		PaymentPlan:      PlanInstallment,
		TotalAmount:      120000,
		InstallmentCount: 12,
		FirstPaymentDate: date(2024, time.January, 1),
	}
}

func TestCreateSaleGeneratesSchedule(t *testing.T) {
	f := newSaleFixture(date(2023, time.December, 1))

	sale, err := f.service.CreateSale(context.Background(), installmentRequest(), 42)
	require.NoError(t, err)
	require.NotZero(t, sale.ID)
	require.Len(t, sale.Payments, 12)
	require.Equal(t, SaleStatusActive, sale.Status)
	require.Equal(t, PaymentStatusPending, sale.PaymentStatus)
	require.Equal(t, int64(42), sale.CreatedBy)

	require.Equal(t, []int64{7}, f.blocks.sold)
	require.Equal(t, []string{"sale.created"}, f.activity.actions)
}

func TestCreateSaleCustomScheduleWins(t *testing.T) {
	f := newSaleFixture(date(2023, time.December, 1))

	req := installmentRequest()
	req.Payments = []CustomObligation{
		{Amount: 70000, DueDate: date(2024, time.May, 1), Description: "Key Handover", InstallmentNumber: 1},
		{Amount: 50000, DueDate: date(2024, time.September, 1), Description: "Final", InstallmentNumber: 2},
	}

	sale, err := f.service.CreateSale(context.Background(), req, 1)
	require.NoError(t, err)
	require.Len(t, sale.Payments, 2)
	require.Equal(t, "Key Handover", sale.Payments[0].Description)
}

func TestCreateSaleInvalidPlan(t *testing.T) {
	f := newSaleFixture(date(2023, time.December, 1))

	req := installmentRequest()
	req.InstallmentCount = 0

	_, err := f.service.CreateSale(context.Background(), req, 1)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
	require.Empty(t, f.blocks.sold)
}

func TestCreateSaleSoldBlockLeavesNoSale(t *testing.T) {
	f := newSaleFixture(date(2023, time.December, 1))
	f.blocks.markSoldErr = shared.ErrInvalidStatus

	_, err := f.service.CreateSale(context.Background(), installmentRequest(), 1)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	// Nothing persisted: the block was never claimed and no orphan sale
	// shows up in listings or scans.
	require.Empty(t, f.repo.sales)
	require.Empty(t, f.blocks.sold)
	require.Empty(t, f.activity.actions)
}

func TestCreateSaleReleasesBlockWhenInsertFails(t *testing.T) {
	f := newSaleFixture(date(2023, time.December, 1))
	repo := &failingCreateRepo{memoryRepo: f.repo, failures: 1}
	service := NewService(repo, f.blocks, f.notifier, f.activity, f.idem)
	service.WithNow(func() time.Time { return date(2023, time.December, 1) })

	_, err := service.CreateSale(context.Background(), installmentRequest(), 1)
	require.Error(t, err)

	// The claimed block goes back on the market.
	require.Equal(t, []int64{7}, f.blocks.sold)
	require.Equal(t, []int64{7}, f.blocks.released)
	require.Empty(t, f.repo.sales)
}

func TestRecordPaymentLifecycle(t *testing.T) {
	f := newSaleFixture(date(2024, time.January, 15))

	req := installmentRequest()
	req.InstallmentCount = 2
	req.TotalAmount = 20000
	created, err := f.service.CreateSale(context.Background(), req, 1)
	require.NoError(t, err)

	first := created.Payments[0].ID
	second := created.Payments[1].ID

	pay := RecordPaymentRequest{Amount: 10000, PaidDate: date(2024, time.January, 10), PaymentMethod: "bank_transfer"}
	sale, err := f.service.RecordPayment(context.Background(), created.ID, first, pay, "", 1)
	require.NoError(t, err)
	require.Equal(t, ObligationPaid, sale.Payments[0].Status)
	require.Equal(t, PaymentStatusPartial, sale.PaymentStatus)
	require.Equal(t, SaleStatusActive, sale.Status)

	pay.Amount = 10000
	sale, err = f.service.RecordPayment(context.Background(), created.ID, second, pay, "", 1)
	require.NoError(t, err)
	require.Equal(t, SaleStatusCompleted, sale.Status)
	require.Equal(t, PaymentStatusPaid, sale.PaymentStatus)
	require.NotNil(t, sale.CompletedAt)
	require.Contains(t, f.notifier.kinds, "sale_completed")

	// Persisted too, not just the returned copy.
	stored, err := f.repo.GetSale(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, SaleStatusCompleted, stored.Status)
}

func TestRecordPaymentIdempotencyKey(t *testing.T) {
	f := newSaleFixture(date(2024, time.January, 15))

	created, err := f.service.CreateSale(context.Background(), installmentRequest(), 1)
	require.NoError(t, err)

	pay := RecordPaymentRequest{Amount: 10000, PaidDate: date(2024, time.January, 10), PaymentMethod: "cash"}
	_, err = f.service.RecordPayment(context.Background(), created.ID, created.Payments[0].ID, pay, "key-1", 1)
	require.NoError(t, err)

	_, err = f.service.RecordPayment(context.Background(), created.ID, created.Payments[0].ID, pay, "key-1", 1)
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
}

func TestRecordPaymentRetryAfterFailedSave(t *testing.T) {
	f := newSaleFixture(date(2024, time.January, 15))

	created, err := f.service.CreateSale(context.Background(), installmentRequest(), 1)
	require.NoError(t, err)

	repo := &flakySaveRepo{memoryRepo: f.repo, failures: 1}
	service := NewService(repo, f.blocks, f.notifier, f.activity, f.idem)
	service.WithNow(func() time.Time { return date(2024, time.January, 15) })

	pay := RecordPaymentRequest{Amount: 10000, PaidDate: date(2024, time.January, 10), PaymentMethod: "cash"}
	_, err = service.RecordPayment(context.Background(), created.ID, created.Payments[0].ID, pay, "key-1", 1)
	require.Error(t, err)
	require.NotErrorIs(t, err, shared.ErrIdempotencyConflict)

	// The failed save released the key, so the same-key retry applies the
	// payment instead of returning a conflict.
	sale, err := service.RecordPayment(context.Background(), created.ID, created.Payments[0].ID, pay, "key-1", 1)
	require.NoError(t, err)
	require.Equal(t, 10000.0, sale.Payments[0].PaidAmount)

	stored, err := f.repo.GetSale(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 10000.0, stored.Payments[0].PaidAmount)
}

func TestRecordPaymentUnknownObligation(t *testing.T) {
	f := newSaleFixture(date(2024, time.January, 15))

	created, err := f.service.CreateSale(context.Background(), installmentRequest(), 1)
	require.NoError(t, err)

	pay := RecordPaymentRequest{Amount: 10000, PaidDate: date(2024, time.January, 10), PaymentMethod: "cash"}
	_, err = f.service.RecordPayment(context.Background(), created.ID, 9999, pay, "", 1)
	require.ErrorIs(t, err, ErrObligationNotFound)
}

func TestCancelSaleReleasesBlock(t *testing.T) {
	f := newSaleFixture(date(2024, time.January, 15))

	created, err := f.service.CreateSale(context.Background(), installmentRequest(), 1)
	require.NoError(t, err)

	sale, err := f.service.CancelSale(context.Background(), created.ID, "customer backed out", 1)
	require.NoError(t, err)
	require.Equal(t, SaleStatusCancelled, sale.Status)
	require.NotNil(t, sale.CancelledAt)
	require.Equal(t, "customer backed out", *sale.CancelReason)
	require.Equal(t, []int64{7}, f.blocks.released)

	// Obligations survive cancellation.
	require.Len(t, sale.Payments, 12)

	_, err = f.service.CancelSale(context.Background(), created.ID, "again", 1)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestScanOverdueEscalatesAndPersists(t *testing.T) {
	f := newSaleFixture(date(2023, time.December, 1))

	req := installmentRequest()
	req.InstallmentCount = 3
	req.TotalAmount = 30000
	created, err := f.service.CreateSale(context.Background(), req, 1)
	require.NoError(t, err)

	// Two of three installments are past due by mid February.
	f.service.WithNow(func() time.Time { return date(2024, time.February, 15) })

	escalated, err := f.service.ScanOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, escalated, 2)

	stored, err := f.repo.GetSale(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, PaymentStatusOverdue, stored.PaymentStatus)
	require.Equal(t, ObligationOverdue, stored.Payments[0].Status)
	require.Equal(t, ObligationOverdue, stored.Payments[1].Status)
	require.Equal(t, ObligationPending, stored.Payments[2].Status)

	// A second scan with the same clock reports nothing new.
	escalated, err = f.service.ScanOverdue(context.Background())
	require.NoError(t, err)
	require.Empty(t, escalated)
}

func TestGetPaymentSummary(t *testing.T) {
	f := newSaleFixture(date(2024, time.January, 15))

	req := installmentRequest()
	req.InstallmentCount = 4
	req.TotalAmount = 40000
	created, err := f.service.CreateSale(context.Background(), req, 1)
	require.NoError(t, err)

	pay := RecordPaymentRequest{Amount: 10000, PaidDate: date(2024, time.January, 5), PaymentMethod: "cash"}
	_, err = f.service.RecordPayment(context.Background(), created.ID, created.Payments[0].ID, pay, "", 1)
	require.NoError(t, err)

	summary, err := f.service.GetPaymentSummary(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 40000.0, summary.TotalAmount)
	require.Equal(t, 10000.0, summary.TotalPaid)
	require.Equal(t, 30000.0, summary.TotalRemaining)
	require.Equal(t, 4, summary.TotalObligations)
	require.Equal(t, 1, summary.PaidObligations)
}
