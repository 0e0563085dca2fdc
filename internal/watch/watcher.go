// Package watch re-runs the sync and build pipeline when annotation note
// files change on disk. Filesystem events are debounced so editor save
// bursts trigger a single rebuild.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-annocat/internal/logging"
	"github.com/goliatone/go-annocat/pkg/interfaces"
)

const defaultDebounce = 250 * time.Millisecond

// Event carries the batch of note paths that changed within one debounce window.
type Event struct {
	// Paths lists the affected files, sorted and deduplicated.
	Paths []string
	// Time marks when the debounce window closed.
	Time time.Time
}

// Handler processes a change batch. Returning an error logs the failure but
// keeps the watcher running.
type Handler func(ctx context.Context, event Event) error

// Config controls which files the watcher observes.
type Config struct {
	// Directory is the root to watch. Subdirectories are watched recursively.
	Directory string
	// Pattern filters events to matching files (doublestar glob, defaults
	// to "**/*.md").
	Pattern string
	// Debounce sets the quiet period before a batch fires.
	Debounce time.Duration
}

// Watcher observes a notes directory and invokes a handler with debounced
// change batches.
type Watcher struct {
	cfg     Config
	handler Handler
	logger  interfaces.Logger
}

// New validates the configuration and constructs a watcher. The handler is
// required; the logger may be nil.
func New(cfg Config, handler Handler, logger interfaces.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: handler is required")
	}
	if strings.TrimSpace(cfg.Directory) == "" {
		return nil, errors.New("watch: directory is required")
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "**/*.md"
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Watcher{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}, nil
}

// Run blocks processing filesystem events until the context is cancelled.
// It returns nil on cancellation and an error when the watcher cannot be
// established or its event stream breaks.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addRecursive(watcher, w.cfg.Directory); err != nil {
		return err
	}

	w.logger.Info("watching for note changes",
		"directory", w.cfg.Directory,
		"pattern", w.cfg.Pattern,
		"debounce", w.cfg.Debounce.String(),
	)

	pending := map[string]struct{}{}
	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	timerActive := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watch: events channel closed")
			}
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := w.addRecursive(watcher, event.Name); addErr != nil {
						w.logger.Warn("failed to watch new directory", "path", event.Name, "error", addErr)
					}
					continue
				}
			}
			if !w.matches(event) {
				continue
			}
			w.logger.Debug("note change detected", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = struct{}{}
			if timerActive && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.cfg.Debounce)
			timerActive = true

		case <-timer.C:
			timerActive = false
			if len(pending) == 0 {
				continue
			}
			batch := Event{
				Paths: sortedPaths(pending),
				Time:  time.Now(),
			}
			pending = map[string]struct{}{}
			if handlerErr := w.handler(ctx, batch); handlerErr != nil {
				w.logger.Error("change handler failed", "error", handlerErr, "paths", len(batch.Paths))
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watch: errors channel closed")
			}
			w.logger.Error("watcher error", "error", watchErr)
		}
	}
}

func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		if addErr := watcher.Add(path); addErr != nil {
			return fmt.Errorf("watch: add %s: %w", path, addErr)
		}
		return nil
	})
}

func (w *Watcher) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	rel, err := filepath.Rel(w.cfg.Directory, event.Name)
	if err != nil {
		rel = event.Name
	}
	rel = filepath.ToSlash(rel)
	if ok, matchErr := doublestar.Match(w.cfg.Pattern, rel); matchErr == nil && ok {
		return true
	}
	base := filepath.Base(event.Name)
	trimmed := strings.TrimPrefix(w.cfg.Pattern, "**/")
	ok, matchErr := doublestar.Match(trimmed, base)
	return matchErr == nil && ok
}

func sortedPaths(set map[string]struct{}) []string {
	paths := make([]string, 0, len(set))
	for path := range set {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
