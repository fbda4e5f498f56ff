package tasks

import "time"

// TaskStatus tracks task progress.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// TaskPriority ranks urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task is a back-office work item, optionally tied to a sale, project or
// customer.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	AssigneeID  *int64       `json:"assigneeId,omitempty"`
	Entity      *string      `json:"entity,omitempty"`
	EntityID    *int64       `json:"entityId,omitempty"`
	CreatedBy   int64        `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title       string       `json:"title" validate:"required,min=2,max=300"`
	Description *string      `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	AssigneeID  *int64       `json:"assigneeId,omitempty" validate:"omitempty,gt=0"`
	Entity      *string      `json:"entity,omitempty" validate:"omitempty,oneof=sale project customer"`
	EntityID    *int64       `json:"entityId,omitempty" validate:"omitempty,gt=0"`
}

// UpdateTaskRequest carries partial updates; nil fields stay untouched.
type UpdateTaskRequest struct {
	Title       *string       `json:"title,omitempty" validate:"omitempty,min=2,max=300"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress done"`
	Priority    *TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	AssigneeID  *int64        `json:"assigneeId,omitempty" validate:"omitempty,gt=0"`
}

// ListTasksRequest filters the listing.
type ListTasksRequest struct {
	Status     TaskStatus
	AssigneeID int64
	Entity     string
	EntityID   int64
}
