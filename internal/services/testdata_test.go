package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"ventas/internal/amqp"
	"ventas/internal/core"
	"ventas/internal/log"
)

const sampleDoc = `{
  "Ana": [
    {"numero_factura": "F-1", "cliente": "Acme", "nombre_producto": "Impresora", "subtotal": 100, "divisa": "USD", "categoria_producto": "Oportunidad", "modelo": "M1", "oportunidad_refacciones": 50},
    {"numero_factura": "F-2", "cliente": "Beta", "nombre_producto": "Toner", "subtotal": 21, "divisa": "MXN", "categoria_producto": "Mantenimiento"}
  ],
  "Luis": [
    {"numero_factura": "F-3", "cliente": "Acme", "nombre_producto": "Papel", "subtotal": 10, "divisa": "USD", "modelo": "M2", "oportunidad_refacciones": 12.5}
  ],
  "Sofia": []
}`

func sampleDataset(t *testing.T) *core.Dataset {
	t.Helper()
	d, err := core.DecodeDataset(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	return d
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

type fakeStore struct {
	mu      sync.Mutex
	err     error
	batchID string
	source  string
	data    *core.Dataset
}

func (s *fakeStore) Replace(_ context.Context, batchID, source string, d *core.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batchID, s.source, s.data = batchID, source, d
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	err  error
	msgs []*amqp.DatasetImportedMessage
}

func (p *fakePublisher) PublishDatasetImported(_ context.Context, msg *amqp.DatasetImportedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}
