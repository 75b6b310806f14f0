package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/ghostpub/pkg/core"
)

// DebounceWindow coalesces bursts of events on the same document.
const DebounceWindow = 100 * time.Millisecond

// Watch emits change events for Markdown documents below folders, or the
// whole vault when none are given. The channel is closed once ctx is done.
func (v *Vault) Watch(ctx context.Context, folders ...string) (<-chan core.ChangeEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if len(folders) == 0 {
		folders = []string{""}
	}
	for _, folder := range folders {
		start := v.Root
		if folder = strings.Trim(folder, "/"); folder != "" {
			if start, err = v.abs(folder); err != nil {
				_ = watcher.Close()
				return nil, err
			}
		}
		if err := v.addRecursive(watcher, start); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	events := make(chan core.ChangeEvent)
	v.setWatching(1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer v.setWatching(-1)
		defer watcher.Close()
		return v.watchLoop(ctx, watcher, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		v.logger.Error("watcher stopped", "error", err)
	}))

	return events, nil
}

func (v *Vault) addRecursive(watcher *fsnotify.Watcher, start string) error {
	return filepath.WalkDir(start, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, err := filepath.Rel(v.Root, p); err == nil && rel != "." && v.ignoredDir(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (v *Vault) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, events chan<- core.ChangeEvent) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if v.logger.Enabled(ctx, slog.LevelDebug) {
				v.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				v.logger.Error("watcher panic", "error", err)
			}
		}
	}()

	d := newDebouncer(DebounceWindow)
	defer d.stopAndWait(5 * time.Second)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			v.handleEvent(ctx, watcher, d, event, events)

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			v.logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func (v *Vault) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, d *debouncer, event fsnotify.Event, out chan<- core.ChangeEvent) {
	rel, err := filepath.Rel(v.Root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !v.ignoredDir(rel) {
				_ = v.addRecursive(watcher, event.Name)
			}
			return
		}
	}

	if !core.IsMarkdown(rel) || v.Ignored(rel) {
		return
	}

	var kind core.ChangeEventType
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		kind = core.ChangeRemove
	case event.Has(fsnotify.Create):
		kind = core.ChangeCreate
	case event.Has(fsnotify.Write):
		kind = core.ChangeWrite
	default:
		return
	}

	v.logger.Debug("change observed", "path", rel, "type", kind)
	d.add(core.ChangeEvent{Type: kind, Path: rel, Timestamp: time.Now().Unix()}, func(e core.ChangeEvent) {
		// out may already be closed if shutdown timed out
		defer func() { _ = recover() }()
		select {
		case out <- e:
		case <-ctx.Done():
		}
	})
}

// debouncer delivers only the last event seen for a path within a window.
type debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) add(e core.ChangeEvent, deliver func(core.ChangeEvent)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if t, ok := d.timers[e.Path]; ok && t.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.window, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[e.Path] == t {
			delete(d.timers, e.Path)
		}
		d.mu.Unlock()
		deliver(e)
	})
	d.timers[e.Path] = t
}

// stopAndWait stops accepting events and waits for in-flight deliveries.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for p, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
			delete(d.timers, p)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

func (v *Vault) setWatching(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.watchers += delta
}
