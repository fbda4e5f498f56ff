package customers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/terrace-erp/terrace/internal/shared"
)

// RepositoryPort defines data access methods for customers.
type RepositoryPort interface {
	Create(ctx context.Context, customer *Customer) error
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error)
	Update(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id int64) error
	CountSales(ctx context.Context, customerID int64) (int, error)
}

// ActivityRecorder persists activity log entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// Service handles customer business logic.
type Service struct {
	repo     RepositoryPort
	activity ActivityRecorder
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, activity ActivityRecorder) *Service {
	return &Service{repo: repo, activity: activity}
}

// Create registers a customer. The national ID is unique; a duplicate
// surfaces as shared.ErrAlreadyExists from the repository.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest, actorID int64) (*Customer, error) {
	customer := &Customer{
		Name:       req.Name,
		NationalID: req.NationalID,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		Notes:      req.Notes,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	s.recordActivity(ctx, actorID, "customer.created", customer.ID)
	return customer, nil
}

// Get loads one customer.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns customers matching the search.
func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// Update applies a partial update to the customer.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest, actorID int64) (*Customer, error) {
	customer, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.NationalID != nil {
		customer.NationalID = *req.NationalID
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	if req.Email != nil {
		customer.Email = req.Email
	}
	if req.Address != nil {
		customer.Address = req.Address
	}
	if req.Notes != nil {
		customer.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	s.recordActivity(ctx, actorID, "customer.updated", customer.ID)
	return customer, nil
}

// Delete removes a customer without sales history.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	count, err := s.repo.CountSales(ctx, id)
	if err != nil {
		return fmt.Errorf("count sales: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: customer has %d sales", shared.ErrInvalidStatus, count)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordActivity(ctx, actorID, "customer.deleted", id)
	return nil
}

func (s *Service) recordActivity(ctx context.Context, actorID int64, action string, customerID int64) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, shared.ActivityEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "customer",
		EntityID: strconv.FormatInt(customerID, 10),
	})
}
