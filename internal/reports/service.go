package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// RepositoryPort defines the reporting aggregations.
type RepositoryPort interface {
	ProjectSummaries(ctx context.Context) ([]ProjectSummary, error)
	Collections(ctx context.Context, from, to time.Time) (CollectionReport, error)
	OverdueObligations(ctx context.Context, asOf time.Time) ([]OverdueRow, error)
}

// Service builds reports on top of the aggregation queries, caching results
// in Redis until a sale mutation bumps the version.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	now   func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Invalidate retires every cached report.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// ProjectSummaries returns per-project sales figures.
func (s *Service) ProjectSummaries(ctx context.Context) ([]ProjectSummary, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "projects")
	if err != nil {
		return nil, err
	}
	var summaries []ProjectSummary
	err = s.cache.FetchJSON(ctx, key, &summaries, func(ctx context.Context) (any, error) {
		return s.repo.ProjectSummaries(ctx)
	})
	return summaries, err
}

// Collections reports payments received between from and to inclusive.
func (s *Service) Collections(ctx context.Context, from, to time.Time) (CollectionReport, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "collections",
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return CollectionReport{}, err
	}
	var report CollectionReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		return s.repo.Collections(ctx, from, to)
	})
	return report, err
}

// Overdue reports every overdue obligation grouped into aging buckets.
func (s *Service) Overdue(ctx context.Context) (OverdueReport, error) {
	asOf := s.now()
	key, err := s.cache.BuildKey(ctx, "reports", "overdue", asOf.Format("2006-01-02"))
	if err != nil {
		return OverdueReport{}, err
	}
	var report OverdueReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		rows, err := s.repo.OverdueObligations(ctx, asOf)
		if err != nil {
			return nil, err
		}
		report := OverdueReport{
			AsOf: asOf,
			Buckets: map[string]float64{
				Bucket1to30:  0,
				Bucket31to60: 0,
				Bucket61to90: 0,
				BucketOver90: 0,
			},
			Rows: rows,
		}
		for _, row := range rows {
			report.Total += row.Remaining
			report.Buckets[row.Bucket] += row.Remaining
		}
		return report, nil
	})
	return report, err
}

// Dashboard loads the three reports concurrently for the overview screen.
// The collection window defaults to the trailing 30 days.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var dashboard Dashboard
	to := s.now()
	from := to.AddDate(0, 0, -30)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summaries, err := s.ProjectSummaries(gctx)
		if err != nil {
			return fmt.Errorf("project summaries: %w", err)
		}
		dashboard.Projects = summaries
		return nil
	})
	g.Go(func() error {
		report, err := s.Collections(gctx, from, to)
		if err != nil {
			return fmt.Errorf("collections: %w", err)
		}
		dashboard.Collection = report
		return nil
	})
	g.Go(func() error {
		report, err := s.Overdue(gctx)
		if err != nil {
			return fmt.Errorf("overdue: %w", err)
		}
		dashboard.Overdue = report
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}
