package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// skippedDirectories are never watched.
var skippedDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	".kiln":        true,
	"node_modules": true,
}

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify. Raw events are debounced
// into batches before they reach Events.
type Watcher struct {
	window    time.Duration
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	events    chan ports.WatchEvent
	done      chan struct{}
	doneOnce  sync.Once

	mu     sync.Mutex
	closed bool
	err    error
}

// NewWatcher creates a watcher using the given debounce window.
// The underlying fsnotify watcher is created by Start.
func NewWatcher(window time.Duration) *Watcher {
	return &Watcher{
		window: window,
		events: make(chan ports.WatchEvent, eventChannelBuffer),
		done:   make(chan struct{}),
	}
}

// Start adds every directory below root and processes events until ctx is done,
// Stop is called or fsnotify reports an error.
func (w *Watcher) Start(ctx context.Context, root string) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}
	w.fsWatcher = fsWatcher
	w.debouncer = NewDebouncer(w.window, w.emit)

	for dir := range watchRecursively(root) {
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "path", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	w.quit()
	if w.fsWatcher == nil {
		w.finish(nil)
		return nil
	}
	return w.fsWatcher.Close()
}

func (w *Watcher) quit() {
	w.doneOnce.Do(func() { close(w.done) })
}

// Events returns an iterator of debounced change batches.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// Err returns the observation error that ended the event stream, if any.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Watcher) processEvents(ctx context.Context) {
	var failure error
	defer func() {
		w.quit()
		_ = w.fsWatcher.Close()
		w.finish(failure)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}

			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if skippedDirectories[info.Name()] {
						continue
					}
					for dir := range watchRecursively(event.Name) {
						_ = w.fsWatcher.Add(dir)
					}
				}
			}

			w.debouncer.Add(event.Name)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			failure = zerr.Wrap(err, domain.ErrWatchFailed.Error())
			return
		}
	}
}

// finish closes the event stream once and records the error that ended it.
func (w *Watcher) finish(err error) {
	if w.debouncer != nil {
		w.debouncer.Stop()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.err = err
	close(w.events)
}

func (w *Watcher) emit(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	select {
	case w.events <- ports.WatchEvent{Paths: paths}:
	case <-w.done:
	}
}

// watchRecursively yields root and every directory below it that is not skipped.
func watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are not watched
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skippedDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
