// Package watch re-runs analysis when supported source files change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"codestats/internal/language"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Stats tracks watcher activity for logging and tests.
type Stats struct {
	EventsSeen    int
	Rescans       int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// Options configures a Watcher.
type Options struct {
	// Debounce is how long a path must stay quiet before a rescan is
	// triggered. Zero means 500ms.
	Debounce time.Duration
	// IgnorePatterns skips directories whose path contains one of these
	// substrings.
	IgnorePatterns []string
	// Logger receives debug output. Nil means no logging.
	Logger *zap.Logger
}

// Watcher monitors a directory tree and invokes a callback after
// changes to supported source files have settled.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	root        string
	onChange    func(context.Context)
	ignore      []string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	logger      *zap.Logger
	stats       Stats
}

// New creates a Watcher for the given root. onChange is called from the
// watcher goroutine whenever a batch of changes settles.
func New(root string, onChange func(context.Context), opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		watcher:     fsw,
		root:        root,
		onChange:    onChange,
		ignore:      opts.IgnorePatterns,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		logger:      logger,
	}, nil
}

// Start registers the directory tree and begins watching. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := w.addTree(w.root); err != nil {
		if cerr := w.watcher.Close(); cerr != nil {
			w.logger.Error("closing fsnotify watcher", zap.Error(cerr))
		}
		return err
	}
	w.logger.Debug("watching directory tree", zap.String("root", w.root))

	w.running = true
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit. A Watcher
// that never started still releases its fsnotify watcher here.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("closing fsnotify watcher", zap.Error(err))
		}
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing fsnotify watcher", zap.Error(err))
	}
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats returns a snapshot of watcher activity.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// addTree registers root and every non-ignored subdirectory.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.isIgnored(path) && path != root {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) isIgnored(path string) bool {
	for _, pattern := range w.ignore {
		if pattern != "" && strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	// Flush ticker checks whether debounced events have settled.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flushSettled(ctx)
		}
	}
}

// handleEvent records source-file events for debouncing and registers
// newly created directories.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.isIgnored(event.Name) {
				if err := w.watcher.Add(event.Name); err != nil {
					w.logger.Warn("watching new directory failed",
						zap.String("path", event.Name), zap.Error(err))
				}
			}
			return
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return // chmod etc.
	}
	if _, ok := language.FromPath(event.Name); !ok {
		return
	}
	if w.isIgnored(event.Name) {
		return
	}

	w.logger.Debug("source change", zap.String("path", event.Name), zap.Stringer("op", event.Op))

	w.mu.Lock()
	w.stats.EventsSeen++
	w.stats.LastEventPath = event.Name
	w.stats.LastEventTime = time.Now()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// flushSettled triggers a single rescan when all pending events have
// been quiet for the debounce window.
func (w *Watcher) flushSettled(ctx context.Context) {
	w.mu.Lock()
	if len(w.debounceMap) == 0 {
		w.mu.Unlock()
		return
	}
	now := time.Now()
	for _, eventTime := range w.debounceMap {
		if now.Sub(eventTime) < w.debounceDur {
			w.mu.Unlock()
			return
		}
	}
	w.debounceMap = make(map[string]time.Time)
	w.stats.Rescans++
	w.mu.Unlock()

	w.onChange(ctx)
}
