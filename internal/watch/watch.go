// Package watch runs files dropped into a directory through a handler.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) error

// Watcher debounces create and write events in one directory and hands
// each settled file to a Handler, one at a time.
type Watcher struct {
	dir      string
	debounce time.Duration
	accept   func(path string) bool
	handle   Handler
	log      *zap.Logger
}

// New creates a watcher for dir. accept filters paths by name.
func New(dir string, debounce time.Duration, accept func(string) bool, handle Handler, log *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{dir: dir, debounce: debounce, accept: accept, handle: handle, log: log}
}

// Run blocks until ctx is done. Handler errors are logged and do not stop
// the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("watching directory", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := map[string]time.Time{}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !w.wanted(ev.Name) {
				continue
			}
			pending[ev.Name] = time.Now()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		case now := <-ticker.C:
			for _, path := range settled(pending, now, w.debounce) {
				if ctx.Err() != nil {
					return nil
				}
				w.process(ctx, path)
			}
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	log := w.log.With(zap.String("path", path))
	start := time.Now()
	if err := w.handle(ctx, path); err != nil {
		log.Error("processing failed", zap.Error(err))
		return
	}
	log.Info("processed", zap.Duration("elapsed", time.Since(start)))
}

// wanted skips hidden files and Office lock files.
func (w *Watcher) wanted(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return w.accept == nil || w.accept(path)
}

// settled removes and returns, in name order, the paths whose last event
// is at least debounce old.
func settled(pending map[string]time.Time, now time.Time, debounce time.Duration) []string {
	var out []string
	for path, last := range pending {
		if now.Sub(last) >= debounce {
			out = append(out, path)
			delete(pending, path)
		}
	}
	sort.Strings(out)
	return out
}
