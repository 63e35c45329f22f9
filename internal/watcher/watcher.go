// Package watcher notices when open Markdown files change on disk.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/pubsub"
)

// EventType distinguishes watcher events.
type EventType int

const (
	// FileChanged means a watched file was written, created or replaced.
	FileChanged EventType = iota
	// FileRemoved means a watched file was deleted or renamed away.
	FileRemoved
	// WatcherError carries an fsnotify error.
	WatcherError
)

// Event is published once per debounced change of one file.
type Event struct {
	Type  EventType
	Path  string
	Error error
}

// Config holds watcher options.
type Config struct {
	DebounceDur time.Duration
}

// DefaultConfig returns the debounce used by the editor.
func DefaultConfig() Config {
	return Config{DebounceDur: 300 * time.Millisecond}
}

// Watcher watches individual files. The containing directory is watched so
// that editors which save by renaming a temp file are noticed too.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	broker    *pubsub.Broker[Event]

	mu      sync.Mutex
	files   map[string]struct{}
	dirs    map[string]int
	timers  map[string]*time.Timer
	done    chan struct{}
	stopped bool
}

// New creates a watcher. Call Start to begin delivering events.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsWatcher: fsw,
		debounce:  cfg.DebounceDur,
		broker:    pubsub.NewBroker[Event](),
		files:     map[string]struct{}{},
		dirs:      map[string]int{},
		timers:    map[string]*time.Timer{},
		done:      make(chan struct{}),
	}, nil
}

// Broker is where events are published.
func (w *Watcher) Broker() *pubsub.Broker[Event] { return w.broker }

// Start begins processing file system events.
func (w *Watcher) Start() {
	go w.loop()
}

// Add watches path. Adding the same path twice is a no-op.
func (w *Watcher) Add(path string) error {
	path = filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[path]; ok {
		return nil
	}
	dir := filepath.Dir(path)
	if w.dirs[dir] == 0 {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[path] = struct{}{}
	log.Debug(log.CatWatcher, "watching", "path", path)
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) {
	path = filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[path]; !ok {
		return
	}
	delete(w.files, path)
	if t := w.timers[path]; t != nil {
		t.Stop()
		delete(w.timers, path)
	}
	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		_ = w.fsWatcher.Remove(dir)
	}
}

// Watched reports whether path is being watched.
func (w *Watcher) Watched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[filepath.Clean(path)]
	return ok
}

// Stop terminates the watcher and closes the broker.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fsWatcher.Close()
	w.broker.Close()
	return err
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err)
			w.broker.Publish(pubsub.UpdatedEvent, Event{Type: WatcherError, Error: err})

		case <-w.done:
			return
		}
	}
}

// handle restarts the debounce timer of the affected file. The event type
// published is decided when the timer fires, from the last operation seen.
func (w *Watcher) handle(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	typ, relevant := classify(event.Op)
	if !relevant {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[path]; !ok || w.stopped {
		return
	}
	if t := w.timers[path]; t != nil {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		stopped := w.stopped
		w.mu.Unlock()
		if stopped {
			return
		}
		log.Debug(log.CatWatcher, "file changed", "path", path, "type", typ)
		w.broker.Publish(pubsub.UpdatedEvent, Event{Type: typ, Path: path})
	})
}

func classify(op fsnotify.Op) (EventType, bool) {
	switch {
	case op&(fsnotify.Write|fsnotify.Create) != 0:
		return FileChanged, true
	case op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return FileRemoved, true
	}
	return 0, false
}
