// Package watcher reloads settings when settings.yaml changes on disk.
package watcher

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay coalesces bursts of writes to the same file.
const DebounceDelay = 100 * time.Millisecond

// Watcher calls a function whenever one file in a directory changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	file      string
	onChange  func()
	done      chan struct{}
	stopOnce  sync.Once

	debounceMu sync.Mutex
	debounce   *time.Timer
}

// New creates a watcher for path. The parent directory is watched rather
// than the file so that atomic saves (write temp, rename) are seen.
func New(path string, onChange func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		dir:       filepath.Dir(path),
		file:      filepath.Base(path),
		onChange:  onChange,
		done:      make(chan struct{}),
	}
	return w, nil
}

// Start starts watching.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return err
	}
	log.Printf("[watcher] Watching %s", filepath.Join(w.dir, w.file))

	go w.processEvents()
	return nil
}

// Stop stops the watcher. Pending debounced callbacks are dropped.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] Error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != w.file {
		return
	}
	// Rename covers editors that save through a temporary file.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	w.debounceEvent()
}

func (w *Watcher) debounceEvent() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(DebounceDelay, func() {
		select {
		case <-w.done:
			return
		default:
		}
		log.Printf("[watcher] %s changed", w.file)
		w.onChange()
	})
}
