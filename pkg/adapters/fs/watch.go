package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/gazelib/gazelib/pkg/core"
)

// WatchDebounce is how long the watcher waits for a file to settle.
const WatchDebounce = 50 * time.Millisecond

// Watch reports containers matching pattern that are created, modified or
// deleted below the root. Created and modified files are validated first;
// files that fail are reported as core.ChangeInvalid. The channel closes
// when ctx is done.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Change, error) {
	if pattern == "" {
		pattern = s.config.Pattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := s.recursiveAdd(watcher, s.Root); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	changes := make(chan core.Change)
	w := &watchLoop{
		store:     s,
		pattern:   pattern,
		watcher:   watcher,
		changes:   changes,
		debouncer: newDebouncer(WatchDebounce),
	}
	s.setWatcherActive(true)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		s.handleError(fmt.Errorf("watcher: %w", err))
	}))
	return changes, nil
}

// recursiveAdd watches dir and every directory below it except the system dir.
func (s *Store) recursiveAdd(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == s.config.SystemDir {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (s *Store) handleError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
		return
	}
	s.config.Logger.Error("watch error", "error", err)
}

type watchLoop struct {
	store     *Store
	pattern   string
	watcher   *fsnotify.Watcher
	changes   chan core.Change
	debouncer *debouncer
}

func (w *watchLoop) run(ctx context.Context) (err error) {
	logger := w.store.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			// The stack is only worth its noise when debugging.
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer close(w.changes)
	defer w.store.setWatcherActive(false)
	defer w.watcher.Close()

	// Cancelling releases emits blocked on a send before changes closes.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	err = w.loop(ctx)
	cancel()
	w.debouncer.stopAndWait()
	return err
}

func (w *watchLoop) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			w.handle(ctx, event)

		case werr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.store.handleError(werr)
		}
	}
}

// handle filters a filesystem event and forwards it as a change.
func (w *watchLoop) handle(ctx context.Context, event fsnotify.Event) {
	logger := w.store.config.Logger
	logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.store.recursiveAdd(w.watcher, event.Name); err != nil {
				w.store.handleError(err)
			}
			return
		}
	}

	id, err := w.store.resolveID(event.Name)
	if err != nil || w.store.ignored(id) {
		return
	}
	if ok, _ := doublestar.Match(w.pattern, id); !ok {
		return
	}

	var changeType core.ChangeType
	switch {
	case event.Has(fsnotify.Create):
		changeType = core.ChangeCreate
	case event.Has(fsnotify.Write):
		changeType = core.ChangeModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		changeType = core.ChangeDelete
	default:
		return
	}

	w.debouncer.add(core.Change{Type: changeType, ID: id}, func(c core.Change) {
		w.emit(ctx, c)
	})
}

// emit validates created or modified files, then delivers the change.
func (w *watchLoop) emit(ctx context.Context, c core.Change) {
	if ctx.Err() != nil {
		return
	}
	c.Timestamp = time.Now().Unix()
	if c.Type != core.ChangeDelete {
		if _, err := w.store.Load(ctx, c.ID); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				c.Type = core.ChangeDelete
			} else {
				c.Type = core.ChangeInvalid
				c.Err = err
			}
		}
	}
	select {
	case w.changes <- c:
	case <-ctx.Done():
	}
}
