package notifications

import (
	"context"
	"fmt"
)

// RepositoryPort defines data access methods for notifications.
type RepositoryPort interface {
	Create(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, recipientID int64, unreadOnly bool, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context, recipientID int64) (int, error)
	MarkRead(ctx context.Context, recipientID, id int64) error
	MarkAllRead(ctx context.Context, recipientID int64) error
}

// Directory resolves deliverable staff for broadcasts.
type Directory interface {
	ActiveRecipients(ctx context.Context) ([]Recipient, error)
	Recipient(ctx context.Context, id int64) (Recipient, error)
}

// MailEnqueuer hands an email off to the background queue.
type MailEnqueuer interface {
	EnqueueEmail(ctx context.Context, to, subject, body string) error
}

// Service maintains the notification feed and fans out emails through the
// job queue. Email delivery failures never fail the triggering operation.
type Service struct {
	repo      RepositoryPort
	directory Directory
	mail      MailEnqueuer
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, directory Directory, mail MailEnqueuer) *Service {
	return &Service{repo: repo, directory: directory, mail: mail}
}

// Notify delivers a notification to one recipient.
func (s *Service) Notify(ctx context.Context, recipientID int64, kind, title, body, entity string, entityID int64) error {
	n := &Notification{
		RecipientID: recipientID,
		Kind:        kind,
		Title:       title,
		Body:        body,
	}
	if entity != "" {
		n.Entity = &entity
		n.EntityID = &entityID
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	s.mailTo(ctx, recipientID, title, body)
	return nil
}

// Broadcast delivers a notification to every active staff member.
func (s *Service) Broadcast(ctx context.Context, kind, title, body, entity string, entityID int64) error {
	if s.directory == nil {
		return nil
	}
	recipients, err := s.directory.ActiveRecipients(ctx)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	for _, recipient := range recipients {
		if err := s.Notify(ctx, recipient.ID, kind, title, body, entity, entityID); err != nil {
			return err
		}
	}
	return nil
}

// List returns the recipient's feed, newest first.
func (s *Service) List(ctx context.Context, recipientID int64, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByRecipient(ctx, recipientID, unreadOnly, limit)
}

// UnreadCount returns the number of unread notifications.
func (s *Service) UnreadCount(ctx context.Context, recipientID int64) (int, error) {
	return s.repo.UnreadCount(ctx, recipientID)
}

// MarkRead marks one notification of the recipient as read.
func (s *Service) MarkRead(ctx context.Context, recipientID, id int64) error {
	return s.repo.MarkRead(ctx, recipientID, id)
}

// MarkAllRead marks the whole feed as read.
func (s *Service) MarkAllRead(ctx context.Context, recipientID int64) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *Service) mailTo(ctx context.Context, recipientID int64, subject, body string) {
	if s.mail == nil || s.directory == nil {
		return
	}
	recipient, err := s.directory.Recipient(ctx, recipientID)
	if err != nil || recipient.Email == "" {
		return
	}
	_ = s.mail.EnqueueEmail(ctx, recipient.Email, subject, body)
}
