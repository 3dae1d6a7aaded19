package source

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lightbox/internal/gallery"
	"lightbox/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is how long a directory must stay quiet before reload.
const DefaultWatchDebounce = 250 * time.Millisecond

// Target receives reloaded collections. *gallery.Session and
// *gallery.Lightbox both satisfy it.
type Target interface {
	SetImages(records []gallery.ImageRecord)
}

// WatcherStats tracks watcher activity.
type WatcherStats struct {
	Events        int
	Reloads       int
	Errors        int
	LastImages    int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher reloads a gallery directory into a Target whenever its image or
// caption files change.
type Watcher struct {
	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	dir       string
	target    Target
	debounce  time.Duration
	pending   bool
	lastEvent time.Time
	onReload  func(images int, err error)
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
	stats     WatcherStats
}

// NewWatcher creates a watcher for dir. A non-positive debounce means
// DefaultWatchDebounce.
func NewWatcher(dir string, target Target, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	return &Watcher{
		watcher:  fw,
		dir:      dir,
		target:   target,
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// OnReload registers a callback run after every reload attempt, on the
// watcher goroutine.
func (w *Watcher) OnReload(fn func(images int, err error)) {
	w.mu.Lock()
	w.onReload = fn
	w.mu.Unlock()
}

// Start begins watching. It is non-blocking and idempotent.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()

	logging.Source("watcher: watching %s (debounce %s)", w.dir, w.debounce)
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit. A watcher
// that was never started just releases its handle.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		select {
		case <-w.stopCh:
		default:
			close(w.stopCh)
		}
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		logging.SourceError("watcher: error closing: %v", err)
	}
	logging.Source("watcher: stopped")
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.SourceDebug("watcher: context cancelled")
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
			logging.SourceError("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.reloadIfSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}
	if mimeFromExtension(name) == "" && !strings.EqualFold(filepath.Ext(name), ".txt") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return // chmod
	}

	logging.SourceDebug("watcher: %s %s", event.Op, event.Name)

	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.stats.Events++
	w.stats.LastEventPath = event.Name
	w.stats.LastEventTime = w.lastEvent
	w.mu.Unlock()
}

func (w *Watcher) reloadIfSettled(ctx context.Context) {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastEvent) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = false
	onReload := w.onReload
	w.mu.Unlock()

	start := time.Now()
	records, err := LoadDir(ctx, w.dir)

	w.mu.Lock()
	if err != nil {
		w.stats.Errors++
	} else {
		w.stats.Reloads++
		w.stats.LastImages = len(records)
	}
	w.mu.Unlock()

	if err != nil {
		logging.SourceError("watcher: reload %s failed: %v", w.dir, err)
	} else {
		logging.Source("watcher: reloaded %d images from %s", len(records), w.dir)
		logging.AuditWithCategory(logging.CategorySource).SourceLoad(w.dir, len(records), true, time.Since(start), nil)
		w.target.SetImages(records)
	}
	if onReload != nil {
		onReload(len(records), err)
	}
}
