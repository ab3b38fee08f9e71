// Package watch re-checks Liquid templates as they change on disk. Events
// are debounced per file, filtered through the same include/exclude rules
// as discovery, and fed back through a persistent checker so unchanged
// templates never re-parse.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/liquidoc/liquidoc/pkg/checker"
)

// DefaultDebounce is how long a file must stay quiet before it re-checks.
const DefaultDebounce = 300 * time.Millisecond

// ignoredSuffixes drops editor artifacts before they reach the pipeline.
var ignoredSuffixes = []string{".swp", "~"}

// Options configures a Watcher.
type Options struct {
	// Debounce groups rapid saves of one file into a single re-check.
	// Zero selects DefaultDebounce.
	Debounce time.Duration

	// Include and Exclude filter events. Empty slices select the checker
	// defaults.
	Include []string
	Exclude []string

	// OnResult receives the summary of every check: once for the initial
	// full run (with nil paths) and once per debounced re-check.
	OnResult func(paths []string, sum *checker.Summary)

	Logger *slog.Logger
}

// Watcher drives a checker from file system events.
type Watcher struct {
	chk     *checker.Checker
	watcher *fsnotify.Watcher
	root    string
	opts    Options
	logger  *slog.Logger

	// ctx is the run context, used by debounce callbacks. Set once in Run
	// before the event loop starts.
	ctx context.Context

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex
}

// New creates a Watcher re-checking templates under root through chk.
func New(chk *checker.Checker, root string, opts Options) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	return &Watcher{
		chk:            chk,
		watcher:        watcher,
		root:           absRoot,
		opts:           opts,
		logger:         opts.Logger,
		debounceTimers: make(map[string]*time.Timer),
	}, nil
}

// Run performs an initial full check, then blocks re-checking changed
// templates until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.ctx = ctx

	sum, err := w.chk.Run(ctx)
	if err != nil {
		return err
	}
	w.report(nil, sum)

	if err := w.watchTree(w.root, false); err != nil {
		return err
	}
	w.logger.Info("Watching for changes", "root", w.root, "debounce", w.opts.Debounce)

	defer func() {
		w.stopTimers()
		w.watcher.Close()
		w.logger.Info("Watcher stopped")
	}()

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
			w.logger.Error("File watcher error", "error", err)
		}
	}
}

// watchTree adds dir and every non-excluded subdirectory to the watcher.
// With alsoCheck set, matching files already inside are scheduled too; a
// directory dropped in wholesale (git checkout, unzip) then gets checked
// without waiting for per-file events.
func (w *Watcher) watchTree(dir string, alsoCheck bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}

		if d.IsDir() {
			if w.excludedDir(path) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("Failed to watch directory", "path", path, "error", err)
			}
			return nil
		}

		if alsoCheck && checker.MatchPath(w.root, path, w.opts.Include, w.opts.Exclude) {
			w.debounce(path)
		}
		return nil
	})
}

// excludedDir reports whether a directory falls under an exclude pattern.
func (w *Watcher) excludedDir(dir string) bool {
	exclude := w.opts.Exclude
	if len(exclude) == 0 {
		exclude = checker.DefaultExclude
	}
	rel, err := filepath.Rel(w.root, dir)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range exclude {
		if m, _ := doublestar.PathMatch(pattern, rel); m {
			return true
		}
	}
	return false
}

// handleEvent processes one file system event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if ignoredArtifact(path) {
		return
	}

	// A new directory extends the watch; files it already contains are
	// checked as part of the same pass.
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.excludedDir(path) {
				return
			}
			if err := w.watchTree(path, true); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	if !checker.MatchPath(w.root, path, w.opts.Include, w.opts.Exclude) {
		return
	}

	w.logger.Debug("File event", "op", event.Op.String(), "file", path)

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write:
		w.debounce(path)

	case event.Op&fsnotify.Create == fsnotify.Create:
		w.debounce(path)

	case event.Op&fsnotify.Remove == fsnotify.Remove:
		w.forget(path)

	case event.Op&fsnotify.Rename == fsnotify.Rename:
		w.forget(path)
	}
}

// debounce schedules a re-check after the quiet period. Repeated events for
// the same file within the window collapse into one check.
func (w *Watcher) debounce(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
	}

	w.debounceTimers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.recheck(path)

		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()
	})
}

// recheck runs the cached pipeline over one file.
func (w *Watcher) recheck(path string) {
	w.chk.Invalidate(path)

	sum, err := w.chk.CheckFiles(w.ctx, []string{path})
	if err != nil {
		w.logger.Debug("Re-check aborted", "file", path, "error", err)
		return
	}
	w.logger.Debug("File re-checked",
		"file", path,
		"missing", sum.MissingDocs,
		"diagnostics", sum.Diagnostics,
		"duration", sum.Duration)
	w.report([]string{path}, sum)
}

// forget drops cached state for a deleted or renamed file.
func (w *Watcher) forget(path string) {
	w.debounceMu.Lock()
	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
		delete(w.debounceTimers, path)
	}
	w.debounceMu.Unlock()

	w.chk.Invalidate(path)
	w.logger.Debug("File removed", "file", path)
}

func (w *Watcher) report(paths []string, sum *checker.Summary) {
	if w.opts.OnResult != nil {
		w.opts.OnResult(paths, sum)
	}
}

func (w *Watcher) stopTimers() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
}

// ignoredArtifact reports whether path is an editor temp file.
func ignoredArtifact(path string) bool {
	base := filepath.Base(path)
	for _, suffix := range ignoredSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}
