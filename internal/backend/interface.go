package backend

import (
	"context"

	"ventas/internal/dataset"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the dataset source and optional cleanup function
type BackendResult struct {
	Source  dataset.Source
	Cleanup CleanupFunc
}

// Factory creates dataset sources based on configuration
type Factory interface {
	// CreateBackend creates a dataset source based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// File specific. An empty DatasetPath with the json backend serves
	// EmbeddedDataset.
	DatasetPath     string
	XLSXSheet       string
	EmbeddedDataset []byte

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	JSONBackend   BackendType = "json"
	XLSXBackend   BackendType = "xlsx"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case JSONBackend, XLSXBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
