// Package watch re-runs a callback whenever a request file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher calls a function after writes to a single file settle.
//
// The parent directory is watched rather than the file itself so that editors
// which save by writing a temp file and renaming it over the original keep
// triggering events.
type FileWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	onError  func(error)
	ready    chan struct{}
}

// New creates a watcher for path. A zero debounce fires on every event.
func New(path string, debounce time.Duration, onChange func()) *FileWatcher {
	return &FileWatcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once Run has started watching. Changes made before that
// may be missed.
func (fw *FileWatcher) Ready() <-chan struct{} {
	return fw.ready
}

// OnError sets a handler for errors reported by the underlying watcher.
// Without one, such errors are dropped and watching continues.
func (fw *FileWatcher) OnError(fn func(error)) {
	fw.onError = fn
}

// Run blocks, firing onChange for each settled change to the file, until ctx
// is done. It returns nil on cancellation.
func (fw *FileWatcher) Run(ctx context.Context) error {
	target, err := filepath.Abs(fw.path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", fw.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	close(fw.ready)

	// Debounced changes are funneled back to this goroutine so onChange
	// never runs concurrently with itself.
	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(fw.debounce, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-fire:
			fw.onChange()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				schedule()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if fw.onError != nil {
				fw.onError(err)
			}
		}
	}
}
