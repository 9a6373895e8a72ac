package services

import (
	"context"
	"errors"
	"testing"

	"ventas/internal/dataset/memory"
)

func TestImportService_Import(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewImportService(store, pub, quietLogger())

	res, err := svc.Import(ctx, memory.New(sampleDataset(t)))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.BatchID == "" || res.Source != "memory" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Salespeople != 3 || res.Lines != 3 {
		t.Errorf("counts = %d/%d, want 3/3", res.Salespeople, res.Lines)
	}
	if !res.Notified {
		t.Error("import should be notified")
	}
	if store.batchID != res.BatchID || store.data == nil {
		t.Errorf("store not updated: %+v", store)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].BatchID != res.BatchID || pub.msgs[0].Lines != 3 {
		t.Errorf("unexpected messages: %+v", pub.msgs)
	}
}

func TestImportService_WithoutPublisher(t *testing.T) {
	svc := NewImportService(&fakeStore{}, nil, quietLogger())

	res, err := svc.Import(context.Background(), memory.New(sampleDataset(t)))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Notified {
		t.Error("import without publisher should not be notified")
	}
}

func TestImportService_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("no store", func(t *testing.T) {
		svc := NewImportService(nil, nil, quietLogger())
		if _, err := svc.Import(ctx, memory.New(nil)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("source fails", func(t *testing.T) {
		src := memory.New(nil)
		src.Fail(boom)
		store := &fakeStore{}
		svc := NewImportService(store, nil, quietLogger())
		if _, err := svc.Import(ctx, src); !errors.Is(err, boom) {
			t.Errorf("Import() error = %v, want %v", err, boom)
		}
		if store.data != nil {
			t.Error("store should not be touched when the source fails")
		}
	})

	t.Run("store fails", func(t *testing.T) {
		pub := &fakePublisher{}
		svc := NewImportService(&fakeStore{err: boom}, pub, quietLogger())
		if _, err := svc.Import(ctx, memory.New(sampleDataset(t))); !errors.Is(err, boom) {
			t.Errorf("Import() error = %v, want %v", err, boom)
		}
		if len(pub.msgs) != 0 {
			t.Error("nothing should be published when the store fails")
		}
	})

	t.Run("publish fails", func(t *testing.T) {
		svc := NewImportService(&fakeStore{}, &fakePublisher{err: boom}, quietLogger())
		res, err := svc.Import(ctx, memory.New(sampleDataset(t)))
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if res.Notified {
			t.Error("failed publish should leave Notified false")
		}
	})
}
