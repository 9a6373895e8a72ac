package backend

import (
	"context"
	"fmt"

	"ventas/internal/dataset/google"
	"ventas/internal/dataset/jsonfile"
	"ventas/internal/dataset/xlsxfile"
	"ventas/internal/log"
	"ventas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case JSONBackend:
		return f.createJSONBackend(config)
	case XLSXBackend:
		return f.createXLSXBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createJSONBackend(config Config) (*BackendResult, error) {
	if config.DatasetPath == "" {
		f.logger.Info("Initialized JSON backend with bundled dataset")
		return &BackendResult{Source: jsonfile.NewEmbedded(config.EmbeddedDataset)}, nil
	}

	f.logger.Info("Initialized JSON backend", "dataset_path", config.DatasetPath)
	return &BackendResult{Source: jsonfile.New(config.DatasetPath)}, nil
}

func (f *DefaultFactory) createXLSXBackend(config Config) (*BackendResult, error) {
	f.logger.Info("Initialized XLSX backend", "dataset_path", config.DatasetPath, "sheet", config.XLSXSheet)
	return &BackendResult{Source: xlsxfile.New(config.DatasetPath, config.XLSXSheet)}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Source:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		Range:           config.GoogleSheetRange,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)

	return &BackendResult{Source: cli}, nil
}
