package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"ventas/internal/dataset"
	"ventas/internal/log"
)

// DatasetService owns the current snapshot. Readers never lock: a reload
// builds a new snapshot and swaps the pointer.
type DatasetService struct {
	source  dataset.Source
	current atomic.Pointer[dataset.Snapshot]
	logger  *log.StructuredLogger

	// reloads are serialized so snapshots are published in load order
	mu     sync.Mutex
	onSwap []func(*dataset.Snapshot)
}

func NewDatasetService(source dataset.Source, logger *log.Logger) *DatasetService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DatasetService{
		source: source,
		logger: log.NewStructuredLogger(logger),
	}
}

// Source returns the configured dataset source.
func (s *DatasetService) Source() dataset.Source {
	return s.source
}

// OnSwap registers fn to run after every successful reload.
func (s *DatasetService) OnSwap(fn func(*dataset.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSwap = append(s.onSwap, fn)
}

// Reload loads the source and publishes the result. On failure the previous
// snapshot stays in place.
func (s *DatasetService) Reload(ctx context.Context, reason string) (*dataset.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.source.Load(ctx)
	if err != nil {
		fields := log.NewFields()
		fields[log.FieldSource] = s.source.Name()
		fields[log.FieldReason] = reason
		s.logger.LogError(ctx, "Dataset reload failed", err, log.ComponentDataset, log.OpReload, fields)
		return nil, fmt.Errorf("load %s: %w", s.source.Name(), err)
	}

	snap := dataset.NewSnapshot(s.source.Name(), d)
	s.current.Store(snap)
	s.logger.LogDatasetLoaded(ctx, snap.ID, snap.Source, len(d.Salespeople()), d.Len(), reason)

	for _, fn := range s.onSwap {
		fn(snap)
	}
	return snap, nil
}

// Current returns the latest snapshot, or ErrNoSnapshot before the first
// successful load.
func (s *DatasetService) Current() (*dataset.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, dataset.ErrNoSnapshot
	}
	return snap, nil
}

// Ready reports whether a snapshot has been loaded.
func (s *DatasetService) Ready() bool {
	return s.current.Load() != nil
}
