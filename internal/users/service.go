package users

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/terrace-erp/terrace/internal/notifications"
	"github.com/terrace-erp/terrace/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Create(ctx context.Context, user *User) error
	Get(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	ListActive(ctx context.Context) ([]User, error)
}

// ActivityRecorder persists activity log entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// Service handles staff records. Passwords are stored as bcrypt hashes.
type Service struct {
	repo     RepositoryPort
	activity ActivityRecorder
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, activity ActivityRecorder) *Service {
	return &Service{repo: repo, activity: activity}
}

// Create registers a staff member.
func (s *Service) Create(ctx context.Context, req CreateUserRequest, actorID int64) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		Active:       true,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.recordActivity(ctx, actorID, "user.created", user.ID)
	return user, nil
}

// Get loads one staff record.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// List returns every staff record.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update, rehashing the password when supplied.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest, actorID int64) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.recordActivity(ctx, actorID, "user.updated", user.ID)
	return user, nil
}

// VerifyPassword checks credentials for the gateway.
func (s *Service) VerifyPassword(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, fmt.Errorf("%w: user is inactive", shared.ErrInvalidStatus)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: bad credentials", shared.ErrInvalidInput)
	}
	return user, nil
}

// ActiveRecipients resolves active staff for notification broadcasts.
func (s *Service) ActiveRecipients(ctx context.Context) ([]notifications.Recipient, error) {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	recipients := make([]notifications.Recipient, 0, len(active))
	for _, u := range active {
		recipients = append(recipients, notifications.Recipient{ID: u.ID, Email: u.Email})
	}
	return recipients, nil
}

// Recipient resolves one staff member for email delivery.
func (s *Service) Recipient(ctx context.Context, id int64) (notifications.Recipient, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return notifications.Recipient{}, err
	}
	return notifications.Recipient{ID: user.ID, Email: user.Email}, nil
}

func (s *Service) recordActivity(ctx context.Context, actorID int64, action string, userID int64) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, shared.ActivityEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
	})
}
