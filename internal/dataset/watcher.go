package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"empleoformal/internal/logger"
)

// DefaultDebounce groups the burst of events an editor produces on save
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes of a single local file
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	log      *logger.Logger
}

// NewWatcher starts watching the directory that holds path.
// The directory is watched so that editors replacing the file are noticed.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch path: %w", err)
	}

	return &Watcher{
		path:     absPath,
		debounce: debounce,
		watcher:  w,
		log:      logger.Component("watcher"),
	}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

// Run calls onChange once per burst of writes to the file until ctx is done
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.watcher.Close()

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.log.Debug("Data file changed", logger.Fields{"path": w.path, "op": event.Op.String()})
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", logger.Fields{"path": w.path, "error": err.Error()})
		}
	}
}

// Close stops watching without waiting for Run
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
