package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	fsw "github.com/corey/fpvcompat/internal/adapters/fsnotify"
	"github.com/corey/fpvcompat/internal/adapters/source"
	"github.com/corey/fpvcompat/internal/ports"
)

// defaultWatchSettle is how long the watch loop waits after the last change
// before recomputing, so a batch of saves yields one run.
const defaultWatchSettle = 200 * time.Millisecond

func newFSWatcher(accept func(string) bool) (ports.Watcher, error) {
	w, err := fsw.NewWatcher(accept)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Watch runs inputs once, then again after every change to them, until ctx
// is cancelled. Each run is handed to report along with its error; a failed
// run does not stop the loop.
func (a *App) Watch(ctx context.Context, inputs []string, dest string, report func(*Result, error)) error {
	w, err := a.newWatcher(source.Supported)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	changed := make(chan string, 1)
	if err := w.Watch(watchTargets(inputs), func(path string) {
		select {
		case changed <- path:
		default:
		}
	}); err != nil {
		return fmt.Errorf("watch inputs: %w", err)
	}

	report(a.Run(inputs, dest))

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-changed:
			a.log.Info("input changed", zap.String("path", path))
			if !a.settle(ctx, changed) {
				return nil
			}
			report(a.Run(inputs, dest))
		}
	}
}

// settle drains changes until none arrive for watchSettle. It returns false
// when ctx is cancelled meanwhile.
func (a *App) settle(ctx context.Context, changed <-chan string) bool {
	timer := time.NewTimer(a.watchSettle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-changed:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(a.watchSettle)
		case <-timer.C:
			return true
		}
	}
}

// watchTargets maps inputs to watchable paths. A glob is watched through
// its directory, whose events the extension filter narrows.
func watchTargets(inputs []string) []string {
	seen := make(map[string]bool, len(inputs))
	var out []string
	for _, in := range inputs {
		target := in
		if source.IsGlob(in) {
			target = filepath.Dir(in)
			if source.IsGlob(target) {
				continue
			}
		}
		if seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	return out
}
