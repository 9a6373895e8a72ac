package worker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"ventas/internal/amqp"
	"ventas/internal/dataset"
	"ventas/internal/debounce"
	"ventas/internal/log"
)

// reloadTimeout bounds a single source load.
const reloadTimeout = 30 * time.Second

// Reloader rebuilds the current snapshot.
type Reloader interface {
	Reload(ctx context.Context, reason string) (*dataset.Snapshot, error)
}

// ReloadWorker turns file changes and import notifications into debounced
// reloads. Only the latest signal of a burst is acted on.
type ReloadWorker struct {
	reloader  Reloader
	watchPath string
	debouncer *debounce.Debouncer[string]
	logger    *log.Logger
}

// NewReloadWorker creates a worker. An empty watchPath disables the file
// watcher; Notify and HandleDatasetImported still work.
func NewReloadWorker(reloader Reloader, watchPath string, delay time.Duration, logger *log.Logger) *ReloadWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	w := &ReloadWorker{
		reloader:  reloader,
		watchPath: watchPath,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
	w.debouncer = debounce.New(delay, w.reload)
	return w
}

// Notify schedules a reload for reason.
func (w *ReloadWorker) Notify(reason string) {
	w.debouncer.Trigger(reason)
}

// HandleDatasetImported is the AMQP consumer handler.
func (w *ReloadWorker) HandleDatasetImported(ctx context.Context, msg *amqp.DatasetImportedMessage) error {
	w.logger.InfoContext(ctx, "Dataset import announced",
		log.FieldBatchID, msg.BatchID,
		log.FieldSource, msg.Source,
		log.FieldLines, msg.Lines)
	w.Notify("import:" + msg.BatchID)
	return nil
}

// Run watches the dataset file until ctx is cancelled. Pending reloads are
// dropped on return.
func (w *ReloadWorker) Run(ctx context.Context) error {
	defer w.debouncer.Stop()

	if w.watchPath == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files by rename, so the directory is watched.
	target := filepath.Clean(w.watchPath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	w.logger.InfoContext(ctx, "Watching dataset file", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.logger.DebugContext(ctx, "Dataset file changed", "path", ev.Name, "op", ev.Op.String())
				w.Notify("watch:" + ev.Op.String())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "File watcher error", log.FieldError, err.Error())
		}
	}
}

func (w *ReloadWorker) reload(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	if _, err := w.reloader.Reload(ctx, reason); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.logger.Error("Dataset reload timed out", log.FieldReason, reason)
			return
		}
		w.logger.Error("Dataset reload failed, keeping previous snapshot",
			log.FieldReason, reason, log.FieldError, err.Error())
	}
}
