package biz

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/lingora-ai/lingora/internal/pkg/extract"
)

// Watcher rebuilds the index when document files change on disk outside
// the upload path. Events are debounced so a burst of writes triggers a
// single rebuild.
type Watcher struct {
	dir      string
	ingestor *Ingestor
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher on the ingestor's document directory.
func NewWatcher(dir string, ingestor *Ingestor, debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{dir: dir, ingestor: ingestor, debounce: debounce, logger: logger}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching document directory", zap.String("dir", w.dir))

	var (
		timer   = time.NewTimer(0)
		pending bool
	)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("document change detected",
				zap.String("file", filepath.Base(event.Name)),
				zap.String("op", event.Op.String()))
			if pending {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			timer.Reset(w.debounce)
			pending = true
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			pending = false
			if err := w.ingestor.Rebuild(ctx); err != nil {
				w.logger.Error("rebuild after file change failed", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	return extract.Supported(filepath.Ext(event.Name))
}
