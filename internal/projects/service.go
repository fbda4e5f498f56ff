package projects

import (
	"context"
	"fmt"
	"strconv"

	"github.com/terrace-erp/terrace/internal/shared"
)

// RepositoryPort defines data access methods for projects.
type RepositoryPort interface {
	Create(ctx context.Context, project *Project) error
	Get(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id int64) error
	CountBlocks(ctx context.Context, projectID int64) (int, error)
}

// ActivityRecorder persists activity log entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// Service handles project business logic.
type Service struct {
	repo     RepositoryPort
	activity ActivityRecorder
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, activity ActivityRecorder) *Service {
	return &Service{repo: repo, activity: activity}
}

// Create registers a new project. Status defaults to planning.
func (s *Service) Create(ctx context.Context, req CreateProjectRequest, actorID int64) (*Project, error) {
	status := req.Status
	if status == "" {
		status = StatusPlanning
	}
	project := &Project{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.recordActivity(ctx, actorID, "project.created", project.ID)
	return project, nil
}

// Get loads one project with block counters.
func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	return s.repo.Get(ctx, id)
}

// List returns every project with block counters.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update to the project.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProjectRequest, actorID int64) (*Project, error) {
	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Location != nil {
		project.Location = req.Location
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	s.recordActivity(ctx, actorID, "project.updated", project.ID)
	return project, nil
}

// Delete removes a project. Projects that still own blocks cannot be deleted.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	count, err := s.repo.CountBlocks(ctx, id)
	if err != nil {
		return fmt.Errorf("count blocks: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: project has %d blocks", shared.ErrInvalidStatus, count)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordActivity(ctx, actorID, "project.deleted", id)
	return nil
}

func (s *Service) recordActivity(ctx context.Context, actorID int64, action string, projectID int64) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, shared.ActivityEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "project",
		EntityID: strconv.FormatInt(projectID, 10),
	})
}
