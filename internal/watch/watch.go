// Package watch re-runs a scan when the infection's dropper scripts are
// written into a watched directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/hannesdelbeke/maya-security-tools/internal/signatures"
)

// DefaultDebounce collapses the burst of events one dropper write causes.
const DefaultDebounce = 500 * time.Millisecond

// Options configure Run.
type Options struct {
	Dirs     []string
	Debounce time.Duration
	// Match selects the paths that trigger a scan. Nil matches the
	// well-known startup scripts.
	Match func(path string) bool
	// Initial runs the trigger once before waiting for events.
	Initial bool
	Logger  *logrus.Logger
}

// Trigger receives the changed paths of one debounce window, sorted.
type Trigger func(ctx context.Context, changed []string)

// IsDropperFile reports whether path names one of the startup scripts the
// infection writes.
func IsDropperFile(path string) bool {
	base := filepath.Base(path)
	for _, n := range signatures.ScriptNames() {
		if base == n {
			return true
		}
	}
	return false
}

// Run watches opts.Dirs until ctx is done. trigger runs on the calling
// goroutine, so scans never overlap.
func Run(ctx context.Context, opts Options, trigger Trigger) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Match == nil {
		opts.Match = IsDropperFile
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init failed: %w", err)
	}
	defer watcher.Close()

	for _, dir := range opts.Dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		opts.Logger.WithField("dir", dir).Info("watching")
	}

	if opts.Initial {
		trigger(ctx, nil)
	}

	pending := map[string]bool{}
	timer := time.NewTimer(opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !opts.Match(ev.Name) {
				continue
			}
			opts.Logger.WithField("path", ev.Name).Debug("dropper file changed")
			pending[ev.Name] = true
			timer.Reset(opts.Debounce)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			trigger(ctx, changed)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.Logger.WithError(err).Warn("watch error")
		}
	}
}
