// Package ingest watches the question folder and runs each new image through
// classification, curriculum matching and report writing.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long a file must be quiet before it is handed on.
const DefaultSettleDelay = time.Second

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsImage reports whether path has an accepted image extension.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Handler is called for each settled image path.
type Handler func(ctx context.Context, path string)

// Watcher reports new image files in a single directory, non-recursively.
// A path is delivered once no Create or Write event has arrived for it during
// the settle delay.
type Watcher struct {
	dir     string
	settle  time.Duration
	watcher *fsnotify.Watcher
	pending map[string]time.Time
}

// NewWatcher starts watching dir. Events arriving before Run is called are
// buffered by fsnotify.
func NewWatcher(dir string, settle time.Duration) (*Watcher, error) {
	if settle < 0 {
		settle = 0
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:     dir,
		settle:  settle,
		watcher: fw,
		pending: make(map[string]time.Time),
	}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Close stops watching. Run returns once the event channel closes.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run delivers settled paths to handle, one at a time on the calling
// goroutine, until ctx is cancelled or the watcher is closed. A handler in
// progress is never interrupted: it receives a context that keeps ctx's
// values but not its cancellation.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	tick := w.settle / 4
	if tick <= 0 || tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "dir", w.dir, "error", err)

		case now := <-ticker.C:
			for _, path := range w.due(now) {
				if ctx.Err() != nil {
					return nil
				}
				handle(context.WithoutCancel(ctx), path)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !IsImage(event.Name) {
		return
	}
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if _, ok := w.pending[event.Name]; !ok {
			slog.Debug("image detected", "path", event.Name)
		}
		w.pending[event.Name] = time.Now()
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, event.Name)
	}
}

// due removes and returns the paths that have settled, oldest first.
func (w *Watcher) due(now time.Time) []string {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			ready = append(ready, path)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		return w.pending[ready[i]].Before(w.pending[ready[j]])
	})
	for _, path := range ready {
		delete(w.pending, path)
	}
	return ready
}
