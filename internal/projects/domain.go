package projects

import "time"

// ProjectStatus tracks the development lifecycle of a project.
type ProjectStatus string

const (
	StatusPlanning     ProjectStatus = "planning"
	StatusConstruction ProjectStatus = "construction"
	StatusSelling      ProjectStatus = "selling"
	StatusCompleted    ProjectStatus = "completed"
)

// Project is a housing development containing sellable blocks.
type Project struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Location    *string       `json:"location,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
	BlockCount  int           `json:"blockCount"`
	SoldCount   int           `json:"soldCount"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// CreateProjectRequest is the payload for registering a project.
type CreateProjectRequest struct {
	Name        string        `json:"name" validate:"required,min=2,max=200"`
	Location    *string       `json:"location,omitempty" validate:"omitempty,max=300"`
	Description *string       `json:"description,omitempty"`
	Status      ProjectStatus `json:"status" validate:"omitempty,oneof=planning construction selling completed"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
}

// UpdateProjectRequest carries partial updates; nil fields stay untouched.
type UpdateProjectRequest struct {
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Location    *string        `json:"location,omitempty" validate:"omitempty,max=300"`
	Description *string        `json:"description,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty" validate:"omitempty,oneof=planning construction selling completed"`
	StartDate   *time.Time     `json:"startDate,omitempty"`
	EndDate     *time.Time     `json:"endDate,omitempty"`
}
