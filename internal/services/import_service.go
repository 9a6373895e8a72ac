package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ventas/internal/amqp"
	"ventas/internal/core"
	"ventas/internal/dataset"
	"ventas/internal/log"
)

// DatasetStore replaces the stored dataset in one transaction.
type DatasetStore interface {
	Replace(ctx context.Context, batchID, source string, d *core.Dataset) error
}

// Publisher announces finished imports.
type Publisher interface {
	PublishDatasetImported(ctx context.Context, msg *amqp.DatasetImportedMessage) error
}

// ImportResult describes one completed import.
type ImportResult struct {
	BatchID     string
	Source      string
	Salespeople int
	Lines       int
	Notified    bool
}

// ImportService copies a dataset from any source into the store and
// optionally notifies running dashboards.
type ImportService struct {
	store     DatasetStore
	publisher Publisher
	logger    *log.Logger
}

// NewImportService creates the service. A nil publisher disables
// notifications.
func NewImportService(store DatasetStore, publisher Publisher, logger *log.Logger) *ImportService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ImportService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentImport),
	}
}

// Import loads src and replaces the stored dataset with it. A failed
// notification is logged and reported through ImportResult.Notified; the
// import itself has already been committed.
func (s *ImportService) Import(ctx context.Context, src dataset.Source) (*ImportResult, error) {
	if s.store == nil {
		return nil, errors.New("import service has no store")
	}

	d, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Name(), err)
	}

	res := &ImportResult{
		BatchID:     uuid.NewString(),
		Source:      src.Name(),
		Salespeople: len(d.Salespeople()),
		Lines:       d.Len(),
	}

	if err := s.store.Replace(ctx, res.BatchID, res.Source, d); err != nil {
		return nil, fmt.Errorf("store dataset: %w", err)
	}

	fields := log.NewFields().WithDataset(res.Salespeople, res.Lines).WithOperation(log.OpImport)
	fields[log.FieldBatchID] = res.BatchID
	fields[log.FieldSource] = res.Source
	s.logger.InfoContext(ctx, "Dataset imported", fields.ToSlice()...)

	if s.publisher == nil {
		return res, nil
	}
	msg := amqp.NewDatasetImportedMessage(res.BatchID, res.Source, res.Salespeople, res.Lines)
	if err := s.publisher.PublishDatasetImported(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish dataset imported message",
			log.FieldBatchID, res.BatchID, log.FieldError, err.Error(), log.FieldOperation, log.OpNotify)
		return res, nil
	}
	res.Notified = true
	return res, nil
}
