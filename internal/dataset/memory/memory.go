// Package memory is an in-process dataset source.
package memory

import (
	"context"
	"sync"

	"ventas/internal/core"
	ports "ventas/internal/dataset"
)

var _ ports.Source = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	data  *core.Dataset
	err   error
	loads int
}

func New(d *core.Dataset) *Store {
	if d == nil {
		d = core.NewBuilder().Build()
	}
	return &Store{data: d}
}

func (s *Store) Name() string { return "memory" }

// Load returns the current dataset or the configured failure.
func (s *Store) Load(_ context.Context) (*core.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

// Set replaces the dataset returned by later loads.
func (s *Store) Set(d *core.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = d
}

// Fail makes later loads return err; a nil err clears the failure.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Loads returns how many times Load was called.
func (s *Store) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}
