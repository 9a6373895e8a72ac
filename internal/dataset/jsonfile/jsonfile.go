// Package jsonfile loads datasets from a JSON mapping of salesperson names to
// invoice line arrays, either from disk or from bytes bundled in the binary.
package jsonfile

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"ventas/internal/core"
	ports "ventas/internal/dataset"
)

// Ensure interface conformance
var (
	_ ports.Source    = (*Source)(nil)
	_ ports.Watchable = (*Source)(nil)
)

type Source struct {
	path string
	data []byte
}

// New returns a source reading path on every Load.
func New(path string) *Source {
	return &Source{path: path}
}

// NewEmbedded returns a source decoding data, typically the bundled sample.
func NewEmbedded(data []byte) *Source {
	return &Source{data: data}
}

func (s *Source) Name() string {
	if s.path == "" {
		return "json:embedded"
	}
	return "json:" + s.path
}

// Path returns the file path, or "" for embedded data.
func (s *Source) Path() string {
	return s.path
}

func (s *Source) Load(ctx context.Context) (*core.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.path == "" {
		d, err := core.DecodeDataset(bytes.NewReader(s.data))
		if err != nil {
			return nil, fmt.Errorf("decode embedded dataset: %w", err)
		}
		return d, nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	d, err := core.DecodeDataset(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return d, nil
}

// Write encodes d to path, replacing the file atomically.
func Write(path string, d *core.Dataset) error {
	var buf bytes.Buffer
	if err := core.EncodeDataset(&buf, d); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
