package reports

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	summaries   []ProjectSummary
	collections CollectionReport
	overdue     []OverdueRow
	calls       int
}

func (m *memoryRepo) ProjectSummaries(_ context.Context) ([]ProjectSummary, error) {
	m.calls++
	return m.summaries, nil
}

func (m *memoryRepo) Collections(_ context.Context, from, to time.Time) (CollectionReport, error) {
	report := m.collections
	report.From = from
	report.To = to
	return report, nil
}

func (m *memoryRepo) OverdueObligations(_ context.Context, _ time.Time) ([]OverdueRow, error) {
	return m.overdue, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestBucketFor(t *testing.T) {
	require.Equal(t, Bucket1to30, BucketFor(1))
	require.Equal(t, Bucket1to30, BucketFor(30))
	require.Equal(t, Bucket31to60, BucketFor(31))
	require.Equal(t, Bucket61to90, BucketFor(90))
	require.Equal(t, BucketOver90, BucketFor(91))
}

func TestOverdueReportBuckets(t *testing.T) {
	asOf := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	repo := &memoryRepo{overdue: []OverdueRow{
		{SaleID: 1, Remaining: 5000, DaysOverdue: 10, Bucket: Bucket1to30},
		{SaleID: 2, Remaining: 3000, DaysOverdue: 45, Bucket: Bucket31to60},
		{SaleID: 3, Remaining: 2000, DaysOverdue: 120, Bucket: BucketOver90},
	}}
	service := NewService(repo, newTestCache(t))
	service.WithNow(func() time.Time { return asOf })

	report, err := service.Overdue(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10000.0, report.Total)
	require.Equal(t, 5000.0, report.Buckets[Bucket1to30])
	require.Equal(t, 3000.0, report.Buckets[Bucket31to60])
	require.Equal(t, 0.0, report.Buckets[Bucket61to90])
	require.Equal(t, 2000.0, report.Buckets[BucketOver90])
}

func TestProjectSummariesCached(t *testing.T) {
	repo := &memoryRepo{summaries: []ProjectSummary{
		{ProjectID: 1, ProjectName: "Hillside", TotalUnits: 10, SoldUnits: 4, ContractedV: 400000, Collected: 150000, Outstanding: 250000},
	}}
	service := NewService(repo, newTestCache(t))

	first, err := service.ProjectSummaries(context.Background())
	require.NoError(t, err)
	second, err := service.ProjectSummaries(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.calls)

	// Bumping the version forces a reload.
	require.NoError(t, service.Invalidate(context.Background()))
	_, err = service.ProjectSummaries(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestDashboardLoadsAllReports(t *testing.T) {
	repo := &memoryRepo{
		summaries: []ProjectSummary{{ProjectID: 1, ProjectName: "Hillside"}},
		collections: CollectionReport{Total: 25000, Rows: []CollectionRow{
			{SaleID: 1, PaidAmount: 25000, PaidDate: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)},
		}},
		overdue: []OverdueRow{{SaleID: 2, Remaining: 8000, DaysOverdue: 5, Bucket: Bucket1to30}},
	}
	service := NewService(repo, newTestCache(t))
	service.WithNow(func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) })

	dashboard, err := service.Dashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, dashboard.Projects, 1)
	require.Equal(t, 25000.0, dashboard.Collection.Total)
	require.Equal(t, 8000.0, dashboard.Overdue.Total)
}

func TestWriteCollectionCSV(t *testing.T) {
	report := CollectionReport{
		Total: 12500.5,
		Rows: []CollectionRow{
			{SaleID: 3, ProjectName: "Hillside", BlockNumber: "A-101", CustomerName: "Ada Bell",
				Description: "Installment 2", PaidAmount: 12500.5,
				PaidDate:      time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC),
				PaymentMethod: "bank_transfer"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCollectionCSV(&buf, report))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "Ada Bell")
	require.Contains(t, lines[1], "2024-04-02")
	require.Contains(t, lines[2], "Total")
}

func TestWriteDashboardXLSX(t *testing.T) {
	dashboard := Dashboard{
		Projects: []ProjectSummary{{ProjectID: 1, ProjectName: "Hillside", TotalUnits: 5}},
		Overdue:  OverdueReport{Rows: []OverdueRow{{SaleID: 1, Remaining: 1000, Bucket: Bucket1to30}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDashboardXLSX(&buf, dashboard))
	require.NotZero(t, buf.Len())
	// XLSX files are zip archives.
	require.Equal(t, "PK", buf.String()[:2])
}
