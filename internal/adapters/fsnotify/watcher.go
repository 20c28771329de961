// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches input files and directories (non-recursively), filters out editor
// noise and unsupported files, and debounces rapid events (editors often trigger
// multiple writes per save).
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// File names/suffixes that never trigger a change.
var ignoreFiles = map[string]bool{
	".DS_Store": true,
	".swp":      true,
	".swx":      true,
	"~":         true,
	".tmp":      true,
}

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	accept  func(path string) bool
	done    chan struct{}
	stopped bool
	mu      sync.Mutex

	dirs  map[string]bool // directories watched as a whole
	files map[string]bool // individual files watched via their parent
}

// NewWatcher creates a new file system watcher. accept filters the files a
// watched directory reports; nil accepts every file.
func NewWatcher(accept func(path string) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:     fw,
		accept: accept,
		done:   make(chan struct{}),
		dirs:   make(map[string]bool),
		files:  make(map[string]bool),
	}, nil
}

// Watch starts monitoring paths. A directory reports every accepted file
// directly inside it; a file reports only itself, and keeps reporting when
// an editor replaces it by rename. onChange is called with the absolute
// path of each changed file. Watch is called at most once per Watcher.
func (w *Watcher) Watch(paths []string, onChange func(filePath string)) error {
	added := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		dir := abs
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			dir = filepath.Dir(abs)
			w.files[abs] = true
		} else {
			w.dirs[abs] = true
		}
		if added[dir] {
			continue
		}
		if err := w.fw.Add(dir); err != nil {
			return err
		}
		added[dir] = true
	}

	debounce := newDebouncer(debounceInterval)

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name
				if !w.relevant(path) {
					continue
				}

				if !debounce.allow(path, time.Now()) {
					continue
				}

				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					onChange(path)
				}

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed; fsnotify recovers on its own.

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// debouncer drops repeat events on a path within interval. Entries older
// than interval are pruned on every accepted event, so it holds at most the
// paths seen in the last interval.
type debouncer struct {
	interval time.Duration
	last     map[string]time.Time
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval, last: make(map[string]time.Time)}
}

func (d *debouncer) allow(path string, now time.Time) bool {
	if t, seen := d.last[path]; seen && now.Sub(t) < d.interval {
		return false
	}
	for p, t := range d.last {
		if now.Sub(t) >= d.interval {
			delete(d.last, p)
		}
	}
	d.last[path] = now
	return true
}

// relevant reports whether an event on path should reach the callback.
func (w *Watcher) relevant(path string) bool {
	if shouldIgnorePath(path) {
		return false
	}
	if w.files[path] {
		return true
	}
	if !w.dirs[filepath.Dir(path)] {
		return false
	}
	return w.accept == nil || w.accept(path)
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

// shouldIgnorePath returns true if the file path should not trigger onChange.
func shouldIgnorePath(path string) bool {
	base := filepath.Base(path)
	if ignoreFiles[base] || strings.HasPrefix(base, ".#") {
		return true
	}
	for suffix := range ignoreFiles {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}
