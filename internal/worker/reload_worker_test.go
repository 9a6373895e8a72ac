package worker

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ventas/internal/amqp"
	"ventas/internal/dataset"
	"ventas/internal/log"
)

type recordingReloader struct {
	mu      sync.Mutex
	reasons []string
	err     error
	calls   chan string
}

func newRecordingReloader() *recordingReloader {
	return &recordingReloader{calls: make(chan string, 16)}
}

func (r *recordingReloader) Reload(_ context.Context, reason string) (*dataset.Snapshot, error) {
	r.mu.Lock()
	r.reasons = append(r.reasons, reason)
	err := r.err
	r.mu.Unlock()
	r.calls <- reason
	return nil, err
}

func (r *recordingReloader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reasons)
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func waitReason(t *testing.T, r *recordingReloader) string {
	t.Helper()
	select {
	case reason := <-r.calls:
		return reason
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
		return ""
	}
}

func TestReloadWorker_NotifyCoalesces(t *testing.T) {
	r := newRecordingReloader()
	w := NewReloadWorker(r, "", 50*time.Millisecond, quietLogger())

	w.Notify("a")
	w.Notify("b")
	w.Notify("c")

	if got := waitReason(t, r); got != "c" {
		t.Errorf("reload reason = %q, want c", got)
	}
	time.Sleep(100 * time.Millisecond)
	if r.count() != 1 {
		t.Errorf("reloads = %d, want 1", r.count())
	}
}

func TestReloadWorker_HandleDatasetImported(t *testing.T) {
	r := newRecordingReloader()
	w := NewReloadWorker(r, "", 10*time.Millisecond, quietLogger())

	msg := amqp.NewDatasetImportedMessage("batch-1", "json:x.json", 2, 5)
	if err := w.HandleDatasetImported(context.Background(), msg); err != nil {
		t.Fatalf("HandleDatasetImported() error = %v", err)
	}
	if got := waitReason(t, r); got != "import:batch-1" {
		t.Errorf("reload reason = %q", got)
	}
}

func TestReloadWorker_FailedReloadIsLogged(t *testing.T) {
	r := newRecordingReloader()
	r.err = errors.New("broken file")
	w := NewReloadWorker(r, "", 0, quietLogger())

	w.Notify("manual")
	waitReason(t, r)
}

func TestReloadWorker_RunWithoutWatchPath(t *testing.T) {
	w := NewReloadWorker(newRecordingReloader(), "", time.Hour, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	w.Notify("pending")
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if w.debouncer.Pending() {
		t.Error("pending reload should be dropped on shutdown")
	}
}

func TestReloadWorker_WatchesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facturas.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	r := newRecordingReloader()
	w := NewReloadWorker(r, path, 20*time.Millisecond, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"Ana":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	waitReason(t, r)
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestReloadWorker_RunMissingDirectory(t *testing.T) {
	w := NewReloadWorker(newRecordingReloader(), "/does/not/exist/facturas.json", time.Millisecond, quietLogger())
	if err := w.Run(context.Background()); err == nil {
		t.Error("expected error watching a missing directory")
	}
}
