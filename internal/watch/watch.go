// Package watch re-runs an action when watched files change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher watches directories and individual files. Directories are watched
// for changes to Go sources; files are watched through their directory, which
// survives editors that save by renaming.
type Watcher struct {
	dirs     []string
	files    map[string]bool
	debounce time.Duration
	logger   zerolog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long events are collected before the action runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New creates a Watcher for the given package directories and files.
func New(dirs, files []string, opts ...Option) *Watcher {
	w := &Watcher{
		dirs:     dirs,
		files:    make(map[string]bool, len(files)),
		debounce: 200 * time.Millisecond,
		logger:   zerolog.Nop(),
	}

	for _, f := range files {
		if f == "" {
			continue
		}

		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}

		w.files[f] = true
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run calls action once per burst of relevant changes until ctx is done.
// Action errors are logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context, action func(ctx context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range w.watchedDirs() {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}

		w.logger.Debug().Str("dir", dir).Msg("watching")
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !w.relevant(event) {
				continue
			}

			w.logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("file changed")

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}

			pending = timer.C

		case <-pending:
			pending = nil

			if err := action(ctx); err != nil {
				w.logger.Error().Err(err).Msg("watch action failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			w.logger.Error().Err(err).Msg("file watcher error")
		}
	}
}

// watchedDirs returns the package directories plus the directory of every
// watched file, without duplicates.
func (w *Watcher) watchedDirs() []string {
	seen := make(map[string]bool)

	var out []string
	add := func(dir string) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}

		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}

	for _, d := range w.dirs {
		add(d)
	}

	for f := range w.files {
		add(filepath.Dir(f))
	}

	return out
}

// relevant reports whether event touches a watched file or a non-test Go
// source. Chmod-only events are ignored.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	name := event.Name
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}

	if w.files[name] {
		return true
	}

	if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
		return false
	}

	for _, d := range w.dirs {
		if abs, err := filepath.Abs(d); err == nil && filepath.Dir(name) == abs {
			return true
		}
	}

	return false
}

// Exists reports whether path names an existing directory.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
