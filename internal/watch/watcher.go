// Package watch provides fsnotify-based file watching for docsave: marking
// the document dirty when it changes on disk, and applying configuration
// updates (such as a new autosave interval) at runtime.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/docsave/internal/ports"
)

// DefaultDebounce is the delay after a file event before the callback runs,
// long enough to fold editor write bursts into a single notification.
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher watches a single file and invokes a callback after changes,
// debounced. The parent directory is watched rather than the file itself so
// atomic rename-into-place writes are observed.
type FileWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   ports.Logger

	mu    sync.Mutex
	timer *time.Timer
	wg    sync.WaitGroup
}

// NewFileWatcher creates a watcher for path. onChange runs on a timer
// goroutine after each debounced burst of changes.
func NewFileWatcher(path string, debounce time.Duration, onChange func(), logger ports.Logger) *FileWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Run watches until the context is cancelled. It blocks; callers usually
// run it in a goroutine.
func (w *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	base := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			w.flushPending()
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleChange()

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", ports.Err(werr))
		}
	}
}

// scheduleChange (re)arms the debounce timer.
func (w *FileWatcher) scheduleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		w.onChange()
		w.wg.Done()
	})
}

// flushPending waits for an armed debounce callback to run, so a change
// observed just before shutdown is not lost.
func (w *FileWatcher) flushPending() {
	w.mu.Lock()
	timer := w.timer
	w.mu.Unlock()
	if timer == nil {
		return
	}
	if timer.Stop() {
		// Timer had not fired yet: run the callback now.
		w.onChange()
		w.wg.Done()
	}
	w.wg.Wait()
}
