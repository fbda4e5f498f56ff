package blocks

import (
	"context"
	"fmt"
	"strconv"

	"github.com/terrace-erp/terrace/internal/shared"
)

// RepositoryPort defines data access methods for blocks.
type RepositoryPort interface {
	Create(ctx context.Context, block *Block) error
	Get(ctx context.Context, id int64) (*Block, error)
	List(ctx context.Context, req ListBlocksRequest) ([]Block, error)
	Update(ctx context.Context, block *Block) error
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status BlockStatus) error
}

// ActivityRecorder persists activity log entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// Service handles block business logic, including the unit status
// transitions driven by sales.
type Service struct {
	repo     RepositoryPort
	activity ActivityRecorder
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, activity ActivityRecorder) *Service {
	return &Service{repo: repo, activity: activity}
}

// Create registers a new unit. Units start available.
func (s *Service) Create(ctx context.Context, req CreateBlockRequest, actorID int64) (*Block, error) {
	block := &Block{
		ProjectID: req.ProjectID,
		Number:    req.Number,
		Type:      req.Type,
		Floor:     req.Floor,
		Area:      req.Area,
		Rooms:     req.Rooms,
		Price:     req.Price,
		Status:    StatusAvailable,
		Placement: req.Placement,
		Notes:     req.Notes,
	}
	if err := s.repo.Create(ctx, block); err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	s.recordActivity(ctx, actorID, "block.created", block.ID)
	return block, nil
}

// Get loads one unit.
func (s *Service) Get(ctx context.Context, id int64) (*Block, error) {
	return s.repo.Get(ctx, id)
}

// List returns units matching the filter.
func (s *Service) List(ctx context.Context, req ListBlocksRequest) ([]Block, error) {
	return s.repo.List(ctx, req)
}

// Update applies a partial update to the unit, including layout placement.
func (s *Service) Update(ctx context.Context, id int64, req UpdateBlockRequest, actorID int64) (*Block, error) {
	block, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Number != nil {
		block.Number = *req.Number
	}
	if req.Type != nil {
		block.Type = *req.Type
	}
	if req.Floor != nil {
		block.Floor = req.Floor
	}
	if req.Area != nil {
		block.Area = req.Area
	}
	if req.Rooms != nil {
		block.Rooms = req.Rooms
	}
	if req.Price != nil {
		block.Price = *req.Price
	}
	if req.Status != nil {
		block.Status = *req.Status
	}
	if req.Placement != nil {
		block.Placement = req.Placement
	}
	if req.Notes != nil {
		block.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, block); err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}
	s.recordActivity(ctx, actorID, "block.updated", block.ID)
	return block, nil
}

// Delete removes a unit. Sold units cannot be deleted.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	block, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if block.Status == StatusSold {
		return fmt.Errorf("%w: block is sold", shared.ErrInvalidStatus)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordActivity(ctx, actorID, "block.deleted", id)
	return nil
}

// MarkSold flips the unit to sold when a sale is created. Already sold units
// are rejected so two sales cannot claim the same unit.
func (s *Service) MarkSold(ctx context.Context, blockID int64) error {
	block, err := s.repo.Get(ctx, blockID)
	if err != nil {
		return err
	}
	if block.Status == StatusSold {
		return fmt.Errorf("%w: block %d already sold", shared.ErrInvalidStatus, blockID)
	}
	return s.repo.SetStatus(ctx, blockID, StatusSold)
}

// Release puts a unit back on the market after its sale is cancelled.
func (s *Service) Release(ctx context.Context, blockID int64) error {
	return s.repo.SetStatus(ctx, blockID, StatusAvailable)
}

func (s *Service) recordActivity(ctx context.Context, actorID int64, action string, blockID int64) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, shared.ActivityEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "block",
		EntityID: strconv.FormatInt(blockID, 10),
	})
}
