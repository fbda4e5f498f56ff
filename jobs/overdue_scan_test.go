package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/terrace-erp/terrace/internal/sales"
)

type fakeScanner struct {
	escalated []sales.Obligation
	err       error
}

func (f *fakeScanner) ScanOverdue(_ context.Context) ([]sales.Obligation, error) {
	return f.escalated, f.err
}

type fakeBroadcaster struct {
	bodies []string
}

func (f *fakeBroadcaster) Broadcast(_ context.Context, _, _, body, _ string, _ int64) error {
	f.bodies = append(f.bodies, body)
	return nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(_ context.Context) error {
	f.calls++
	return nil
}

func TestOverdueScanJobBroadcastsEscalations(t *testing.T) {
	scanner := &fakeScanner{escalated: []sales.Obligation{
		{SaleID: 7, Description: "Installment 3", DueDate: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)},
	}}
	broadcaster := &fakeBroadcaster{}
	invalidator := &fakeInvalidator{}
	job := NewOverdueScanJob(scanner, broadcaster, invalidator, slog.Default())

	require.NoError(t, job.Handle(context.Background(), NewOverdueScanTask()))
	require.Len(t, broadcaster.bodies, 1)
	require.Contains(t, broadcaster.bodies[0], "Installment 3")
	require.Contains(t, broadcaster.bodies[0], "sale #7")
	require.Contains(t, broadcaster.bodies[0], "2024-02-01")
	require.Equal(t, 1, invalidator.calls)
}

func TestOverdueScanJobNothingEscalated(t *testing.T) {
	broadcaster := &fakeBroadcaster{}
	invalidator := &fakeInvalidator{}
	job := NewOverdueScanJob(&fakeScanner{}, broadcaster, invalidator, slog.Default())

	require.NoError(t, job.Handle(context.Background(), NewOverdueScanTask()))
	require.Empty(t, broadcaster.bodies)
	require.Zero(t, invalidator.calls)
}
