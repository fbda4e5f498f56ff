package tasks

import (
	"context"
	"fmt"
	"strconv"

	"github.com/terrace-erp/terrace/internal/shared"
)

// RepositoryPort defines data access methods for tasks.
type RepositoryPort interface {
	Create(ctx context.Context, task *Task) error
	Get(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context, req ListTasksRequest) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id int64) error
}

// Notifier delivers a notification to one recipient.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, kind, title, body, entity string, entityID int64) error
}

// ActivityRecorder persists activity log entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// Service handles task business logic.
type Service struct {
	repo     RepositoryPort
	notifier Notifier
	activity ActivityRecorder
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, notifier Notifier, activity ActivityRecorder) *Service {
	return &Service{repo: repo, notifier: notifier, activity: activity}
}

// Create opens a task. Assigning it notifies the assignee.
func (s *Service) Create(ctx context.Context, req CreateTaskRequest, createdBy int64) (*Task, error) {
	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	task := &Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusTodo,
		Priority:    priority,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
		Entity:      req.Entity,
		EntityID:    req.EntityID,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.notifyAssignee(ctx, task)
	s.recordActivity(ctx, createdBy, "task.created", task.ID)
	return task, nil
}

// Get loads one task.
func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	return s.repo.Get(ctx, id)
}

// List returns tasks matching the filter.
func (s *Service) List(ctx context.Context, req ListTasksRequest) ([]Task, error) {
	return s.repo.List(ctx, req)
}

// Update applies a partial update. Reassignment notifies the new assignee;
// done tasks only accept reopening through an explicit status change.
func (s *Service) Update(ctx context.Context, id int64, req UpdateTaskRequest, actorID int64) (*Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	reassigned := false
	if req.AssigneeID != nil && (task.AssigneeID == nil || *task.AssigneeID != *req.AssigneeID) {
		reassigned = true
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if reassigned {
		s.notifyAssignee(ctx, task)
	}
	s.recordActivity(ctx, actorID, "task.updated", task.ID)
	return task, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordActivity(ctx, actorID, "task.deleted", id)
	return nil
}

func (s *Service) notifyAssignee(ctx context.Context, task *Task) {
	if s.notifier == nil || task.AssigneeID == nil {
		return
	}
	_ = s.notifier.Notify(ctx, *task.AssigneeID, "task_assigned", "Task assigned",
		task.Title, "task", task.ID)
}

func (s *Service) recordActivity(ctx context.Context, actorID int64, action string, taskID int64) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, shared.ActivityEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "task",
		EntityID: strconv.FormatInt(taskID, 10),
	})
}
