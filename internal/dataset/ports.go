// Package dataset defines where invoice datasets come from and the immutable
// snapshots the dashboard serves.
package dataset

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ventas/internal/core"
)

// ErrNoSnapshot is returned when no dataset has been loaded yet.
var ErrNoSnapshot = errors.New("no dataset snapshot loaded")

// Ports for inbound dataset adapters.
type (
	// Source loads a complete dataset. Every call returns a fresh value.
	Source interface {
		Load(ctx context.Context) (*core.Dataset, error)
		// Name identifies the source in logs and snapshot metadata.
		Name() string
	}

	// Watchable is implemented by sources backed by a local file.
	Watchable interface {
		Path() string
	}
)

// Snapshot is one loaded dataset with its identity.
type Snapshot struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Data     *core.Dataset
}

// NewSnapshot wraps d with a fresh ID and the current time.
func NewSnapshot(source string, d *core.Dataset) *Snapshot {
	return &Snapshot{
		ID:       uuid.NewString(),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Data:     d,
	}
}
