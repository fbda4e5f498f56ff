package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/terrace-erp/terrace/internal/shared"
)

type memoryRepo struct {
	items  map[int64]*Notification
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]*Notification), nextID: 1}
}

func (m *memoryRepo) Create(_ context.Context, n *Notification) error {
	n.ID = m.nextID
	m.nextID++
	clone := *n
	m.items[n.ID] = &clone
	return nil
}

func (m *memoryRepo) ListByRecipient(_ context.Context, recipientID int64, unreadOnly bool, _ int) ([]Notification, error) {
	var out []Notification
	for _, n := range m.items {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (m *memoryRepo) UnreadCount(_ context.Context, recipientID int64) (int, error) {
	count := 0
	for _, n := range m.items {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *memoryRepo) MarkRead(_ context.Context, recipientID, id int64) error {
	n, ok := m.items[id]
	if !ok || n.RecipientID != recipientID {
		return shared.ErrNotFound
	}
	n.Read = true
	return nil
}

func (m *memoryRepo) MarkAllRead(_ context.Context, recipientID int64) error {
	for _, n := range m.items {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

type fakeDirectory struct {
	recipients []Recipient
}

func (f *fakeDirectory) ActiveRecipients(_ context.Context) ([]Recipient, error) {
	return f.recipients, nil
}

func (f *fakeDirectory) Recipient(_ context.Context, id int64) (Recipient, error) {
	for _, r := range f.recipients {
		if r.ID == id {
			return r, nil
		}
	}
	return Recipient{}, shared.ErrNotFound
}

type fakeMail struct {
	sent []string
}

func (f *fakeMail) EnqueueEmail(_ context.Context, to, _, _ string) error {
	f.sent = append(f.sent, to)
	return nil
}

func TestBroadcastReachesAllActiveStaff(t *testing.T) {
	repo := newMemoryRepo()
	directory := &fakeDirectory{recipients: []Recipient{
		{ID: 1, Email: "a@terrace.example"},
		{ID: 2, Email: "b@terrace.example"},
	}}
	mail := &fakeMail{}
	service := NewService(repo, directory, mail)

	err := service.Broadcast(context.Background(), "sale_completed", "Sale completed", "All payments received", "sale", 7)
	require.NoError(t, err)

	for _, id := range []int64{1, 2} {
		feed, err := service.List(context.Background(), id, false, 0)
		require.NoError(t, err)
		require.Len(t, feed, 1)
		require.Equal(t, "sale_completed", feed[0].Kind)
	}
	require.ElementsMatch(t, []string{"a@terrace.example", "b@terrace.example"}, mail.sent)
}

func TestNotifyWithoutEmailSkipsMail(t *testing.T) {
	repo := newMemoryRepo()
	directory := &fakeDirectory{recipients: []Recipient{{ID: 1}}}
	mail := &fakeMail{}
	service := NewService(repo, directory, mail)

	require.NoError(t, service.Notify(context.Background(), 1, "task_assigned", "Task assigned", "Call customer", "task", 3))
	require.Empty(t, mail.sent)

	count, err := service.UnreadCount(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo, nil, nil)

	require.NoError(t, service.Notify(context.Background(), 1, "payment_overdue", "Payment overdue", "Installment 2 is late", "sale", 5))

	feed, err := service.List(context.Background(), 1, true, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	// Another recipient cannot mark it.
	err = service.MarkRead(context.Background(), 2, feed[0].ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, service.MarkRead(context.Background(), 1, feed[0].ID))
	count, err := service.UnreadCount(context.Background(), 1)
	require.NoError(t, err)
	require.Zero(t, count)
}
