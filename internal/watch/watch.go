// Package watch hands new crash logs in a directory to a handler.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ccollicutt/crashlog/pkg/config"
)

// Handler is called once per settled crash log.
type Handler func(ctx context.Context, path string)

// Stats tracks watcher activity.
type Stats struct {
	Events  int
	Handled int
	Errors  int
}

// Watcher watches one directory for crash logs. A file is handled once it has
// stopped changing for the debounce interval.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	pattern  string
	debounce time.Duration
	handler  Handler
	logger   *zap.Logger
	pending  map[string]time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stats    Stats
}

// New creates a watcher for dir. Start must be called to begin watching.
func New(dir string, cfg config.WatchConfig, handler Handler, logger *zap.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch handler is required")
	}
	if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", cfg.Pattern, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pattern := cfg.Pattern
	if pattern == "" {
		pattern = config.DefaultWatchPattern
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = config.DefaultWatchDebounce
	}

	return &Watcher{
		dir:      dir,
		pattern:  pattern,
		debounce: debounce,
		handler:  handler,
		logger:   logger,
		pending:  make(map[string]time.Time),
	}, nil
}

// Start begins watching. It is non-blocking; events are processed in a
// goroutine until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil // Already running
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.watcher = watcher
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	w.logger.Info("watching directory", zap.String("dir", w.dir), zap.String("pattern", w.pattern))

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doneCh
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer w.watcher.Close()

	tick := max(w.debounce/4, 10*time.Millisecond)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
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
			w.logger.Warn("watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case now := <-ticker.C:
			w.processDue(ctx, now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if ok, _ := filepath.Match(w.pattern, filepath.Base(event.Name)); !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.stats.Events++

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.pending[event.Name] = time.Now()
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, event.Name)
	}
}

// processDue hands every file that has been quiet for the debounce interval
// to the handler.
func (w *Watcher) processDue(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var due []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			due = append(due, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range due {
		w.logger.Debug("crash log settled", zap.String("path", path))
		w.handler(ctx, path)

		w.mu.Lock()
		w.stats.Handled++
		w.mu.Unlock()
	}
}
