// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when audit artifacts change on disk.
//
// Watched paths may be plain files or doublestar patterns. Their parent
// directories are registered with fsnotify and events are filtered back down
// to the requested paths. Events inside the debounce window are coalesced so
// the callback fires once per burst of writes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoPaths is returned by New when there is nothing to watch.
var ErrNoPaths = errors.New("watch: no paths to watch")

// relevantOps are the event kinds that can change an artifact's contents.
const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Paths are artifact files or doublestar patterns. Relative entries
		// are resolved against the working directory.
		Paths []string

		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative values fall back to DefaultDebounce.
		Debounce time.Duration

		// OnChange receives the sorted absolute paths that changed. Errors
		// are logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error

		// Logger defaults to a discarding logger.
		Logger *log.Logger
	}

	// Watcher fires a debounced callback when watched artifacts change.
	// Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		patterns []string
		dirs     []string
		logger   *log.Logger
		debounce time.Duration
		started  atomic.Bool
	}
)

// New validates cfg, resolves every path to an absolute pattern, and
// registers the directories those patterns can match in.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, ErrNoPaths
	}

	patterns := make([]string, 0, len(cfg.Paths))
	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", p, err)
		}
		pattern := filepath.ToSlash(abs)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("watch: invalid pattern %q", p)
		}
		patterns = append(patterns, pattern)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		patterns: patterns,
		logger:   logger,
		debounce: debounce,
	}
	if err := w.addDirectories(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close watcher after init failure", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Dirs returns the directories registered with fsnotify.
func (w *Watcher) Dirs() []string {
	return slices.Clone(w.dirs)
}

// Run blocks until ctx is canceled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire skips when a previous callback is still running and re-arms the
	// timer so pending changes are picked up afterwards.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Info("artifacts changed", "count", len(changed))
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("re-run failed", "err", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("close fsnotify", "err", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Op&relevantOps == 0 {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			if !w.Matches(evt.Name) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// Matches reports whether path is one of the watched artifacts.
func (w *Watcher) Matches(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	normalized := filepath.ToSlash(abs)
	for _, pat := range w.patterns {
		if matched, _ := doublestar.Match(pat, normalized); matched {
			return true
		}
	}
	return false
}

// addDirectories registers every existing directory a pattern's files can
// live in. Patterns whose directories do not exist yet are skipped.
func (w *Watcher) addDirectories() error {
	seen := make(map[string]bool)
	for _, pat := range w.patterns {
		dirPattern := filepath.FromSlash(dirOf(pat))
		matches, err := doublestar.FilepathGlob(dirPattern)
		if err != nil {
			return fmt.Errorf("watch: expand %q: %w", dirPattern, err)
		}
		for _, dir := range matches {
			if seen[dir] {
				continue
			}
			if info, statErr := os.Stat(dir); statErr != nil || !info.IsDir() {
				continue
			}
			if err := w.fsw.Add(dir); err != nil {
				return fmt.Errorf("watch: add directory %q: %w", dir, err)
			}
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	if len(w.dirs) == 0 {
		return fmt.Errorf("%w: none of the artifact directories exist", ErrNoPaths)
	}
	slices.Sort(w.dirs)
	return nil
}

// maybeAddDir extends the watch to a directory created after startup when
// some pattern's directory part matches it.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	normalized := filepath.ToSlash(path)
	for _, pat := range w.patterns {
		if matched, _ := doublestar.Match(dirOf(pat), normalized); matched {
			if addErr := w.fsw.Add(path); addErr != nil {
				w.logger.Warn("add new directory", "dir", path, "err", addErr)
			}
			return
		}
	}
}

// dirOf returns the directory part of a slash-separated pattern.
func dirOf(pattern string) string {
	i := len(pattern) - 1
	for i >= 0 && pattern[i] != '/' {
		i--
	}
	if i <= 0 {
		return "/"
	}
	return pattern[:i]
}
