package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/terrace-erp/terrace/internal/shared"
)

type memoryRepo struct {
	tasks  map[int64]*Task
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tasks: make(map[int64]*Task), nextID: 1}
}

func (m *memoryRepo) Create(_ context.Context, task *Task) error {
	task.ID = m.nextID
	m.nextID++
	clone := *task
	m.tasks[task.ID] = &clone
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *task
	return &clone, nil
}

func (m *memoryRepo) List(_ context.Context, req ListTasksRequest) ([]Task, error) {
	var out []Task
	for _, t := range m.tasks {
		if req.Status != "" && t.Status != req.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, task *Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return shared.ErrNotFound
	}
	clone := *task
	m.tasks[task.ID] = &clone
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

type fakeNotifier struct {
	recipients []int64
	kinds      []string
}

func (f *fakeNotifier) Notify(_ context.Context, recipientID int64, kind, _, _, _ string, _ int64) error {
	f.recipients = append(f.recipients, recipientID)
	f.kinds = append(f.kinds, kind)
	return nil
}

func TestCreateTaskNotifiesAssignee(t *testing.T) {
	notifier := &fakeNotifier{}
	service := NewService(newMemoryRepo(), notifier, nil)

	assignee := int64(5)
	task, err := service.Create(context.Background(), CreateTaskRequest{
		Title:      "Call customer about overdue installment",
		AssigneeID: &assignee,
	}, 1)
	require.NoError(t, err)
	require.Equal(t, StatusTodo, task.Status)
	require.Equal(t, PriorityMedium, task.Priority)
	require.Equal(t, []int64{5}, notifier.recipients)
	require.Equal(t, []string{"task_assigned"}, notifier.kinds)
}

func TestCreateTaskUnassignedNoNotification(t *testing.T) {
	notifier := &fakeNotifier{}
	service := NewService(newMemoryRepo(), notifier, nil)

	_, err := service.Create(context.Background(), CreateTaskRequest{Title: "Prepare weekly report"}, 1)
	require.NoError(t, err)
	require.Empty(t, notifier.recipients)
}

func TestUpdateTaskReassignmentNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	service := NewService(newMemoryRepo(), notifier, nil)

	task, err := service.Create(context.Background(), CreateTaskRequest{Title: "Prepare contract"}, 1)
	require.NoError(t, err)

	assignee := int64(9)
	updated, err := service.Update(context.Background(), task.ID, UpdateTaskRequest{AssigneeID: &assignee}, 1)
	require.NoError(t, err)
	require.Equal(t, int64(9), *updated.AssigneeID)
	require.Equal(t, []int64{9}, notifier.recipients)

	// Same assignee again does not re-notify.
	_, err = service.Update(context.Background(), task.ID, UpdateTaskRequest{AssigneeID: &assignee}, 1)
	require.NoError(t, err)
	require.Len(t, notifier.recipients, 1)
}

func TestUpdateTaskStatusTransition(t *testing.T) {
	service := NewService(newMemoryRepo(), nil, nil)

	task, err := service.Create(context.Background(), CreateTaskRequest{Title: "Prepare contract"}, 1)
	require.NoError(t, err)

	status := StatusInProgress
	updated, err := service.Update(context.Background(), task.ID, UpdateTaskRequest{Status: &status}, 1)
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, updated.Status)

	status = StatusDone
	updated, err = service.Update(context.Background(), task.ID, UpdateTaskRequest{Status: &status}, 1)
	require.NoError(t, err)
	require.Equal(t, StatusDone, updated.Status)
}
