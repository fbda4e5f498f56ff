package activity

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// RepositoryPort defines data access methods for the activity log.
type RepositoryPort interface {
	List(ctx context.Context, req ListRequest) ([]LogEntry, int, error)
}

// Service exposes the append-only activity log. Writes go through
// shared.ActivityLogger; this side only reads.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns log entries matching the filter, newest first.
func (s *Service) List(ctx context.Context, req ListRequest) ([]LogEntry, int, error) {
	if req.Limit <= 0 || req.Limit > 1000 {
		req.Limit = 100
	}
	return s.repo.List(ctx, req)
}

// ExportCSV streams the filtered log as CSV.
func (s *Service) ExportCSV(ctx context.Context, req ListRequest, w io.Writer) error {
	req.Limit = 10000
	req.Offset = 0
	entries, _, err := s.repo.List(ctx, req)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "occurredAt", "actorId", "action", "entity", "entityId"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.OccurredAt.Format(time.RFC3339),
			strconv.FormatInt(e.ActorID, 10),
			e.Action,
			e.Entity,
			e.EntityID,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
