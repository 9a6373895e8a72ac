package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"ventas/internal/cache"
	"ventas/internal/core"
	"ventas/internal/dataset"
)

// SnapshotProvider returns the snapshot requests are served from.
type SnapshotProvider interface {
	Current() (*dataset.Snapshot, error)
}

// Dashboard is the view model for one filter over one snapshot. Cached
// values are shared between requests and must not be modified.
type Dashboard struct {
	SnapshotID  string
	Source      string
	Filter      core.Filter
	Salespeople []string
	Lines       []core.InvoiceLine
	Summary     core.Summary
}

// DashboardService filters and aggregates the current snapshot. Results are
// cached per snapshot and filter, and identical concurrent requests share
// one computation.
type DashboardService struct {
	snapshots SnapshotProvider
	cache     cache.Cache[*Dashboard]
	group     singleflight.Group

	computations atomic.Int64
}

// NewDashboardService creates the service. A nil cache disables caching.
func NewDashboardService(snapshots SnapshotProvider, c cache.Cache[*Dashboard]) *DashboardService {
	return &DashboardService{
		snapshots: snapshots,
		cache:     c,
	}
}

// Dashboard returns the view model for f over the current snapshot.
func (s *DashboardService) Dashboard(ctx context.Context, f core.Filter) (*Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Current()
	if err != nil {
		return nil, err
	}

	key := cacheKey(snap.ID, f)
	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			return d, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if s.cache != nil {
			if d, ok := s.cache.Get(key); ok {
				return d, nil
			}
		}
		d := s.compute(snap, f)
		if s.cache != nil {
			s.cache.Set(key, d)
		}
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("compute dashboard: %w", err)
	}
	return v.(*Dashboard), nil
}

// Salespeople returns the salesperson names of the current snapshot.
func (s *DashboardService) Salespeople(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Current()
	if err != nil {
		return nil, err
	}
	return snap.Data.Salespeople(), nil
}

// Invalidate drops every cached dashboard.
func (s *DashboardService) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Computations returns how many dashboards were computed rather than served
// from cache.
func (s *DashboardService) Computations() int64 {
	return s.computations.Load()
}

func (s *DashboardService) compute(snap *dataset.Snapshot, f core.Filter) *Dashboard {
	s.computations.Add(1)
	lines := f.Apply(snap.Data.All())
	return &Dashboard{
		SnapshotID:  snap.ID,
		Source:      snap.Source,
		Filter:      f,
		Salespeople: snap.Data.Salespeople(),
		Lines:       lines,
		Summary:     core.Summarize(lines),
	}
}

func cacheKey(snapshotID string, f core.Filter) string {
	return strings.Join([]string{snapshotID, f.Salesperson, f.Search}, "\x00")
}
