// Package watcher re-indexes the documentation directory after manual
// edits of its Markdown files.
package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a reindex runs
const DefaultDebounce = 2 * time.Second

// ReindexFunc rebuilds the search index from the documentation on disk
type ReindexFunc func(ctx context.Context) error

// DocsWatcher watches one documentation directory
type DocsWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	reindex  ReindexFunc
	debounce time.Duration

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	done     chan struct{}

	timerMu sync.Mutex
	timer   *time.Timer
	runMu   sync.Mutex
}

// Option configures a DocsWatcher
type Option func(*DocsWatcher)

// WithDebounce overrides DefaultDebounce
func WithDebounce(d time.Duration) Option {
	return func(w *DocsWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for dir. Nothing is watched until Start.
func New(dir string, reindex ReindexFunc, opts ...Option) (*DocsWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &DocsWatcher{
		watcher:  fsw,
		dir:      dir,
		reindex:  reindex,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. Reindex calls use a context derived from ctx.
func (w *DocsWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		w.watcher.Close()
		return fmt.Errorf("unable to watch %s: %w", w.dir, err)
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	log.Printf("👀 Watching %s for documentation edits", w.dir)
	go w.loop()
	return nil
}

// Stop ends the watch loop and waits for it to exit. A pending reindex
// is dropped.
func (w *DocsWatcher) Stop() {
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		w.timerMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timerMu.Unlock()
		w.watcher.Close()
	})
	if w.ctx != nil {
		<-w.done
	}
}

func (w *DocsWatcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("❌ Watcher error: %v", err)

		case <-w.ctx.Done():
			return
		}
	}
}

// relevant reports content changes of module files. README.md and
// data.json are rewritten by generation and do not affect the index on
// their own.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if !strings.EqualFold(filepath.Ext(name), ".md") {
		return false
	}
	return !strings.EqualFold(name, "README.md") && !strings.HasPrefix(name, ".")
}

func (w *DocsWatcher) schedule() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.run)
}

func (w *DocsWatcher) run() {
	if w.ctx.Err() != nil {
		return
	}

	// Serialize runs when an edit lands while a reindex is in progress
	w.runMu.Lock()
	defer w.runMu.Unlock()

	log.Printf("♻️ Documentation changed in %s, re-indexing...", w.dir)
	if err := w.reindex(w.ctx); err != nil {
		log.Printf("❌ Re-indexing failed: %v", err)
		return
	}
	log.Printf("✅ Re-indexing complete")
}
