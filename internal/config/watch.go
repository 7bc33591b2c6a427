package config

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the event bursts editors produce for one save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher monitors a config file and notifies subscribers when its limits
// change. Reload failures are logged and skipped; the previous limits stand.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *slog.Logger

	fsw      *fsnotify.Watcher
	notifier *Notifier

	mu      sync.Mutex
	current Limits
	timer   *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the event coalescing window.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithWatchLogger sets the logger for reload diagnostics.
func WithWatchLogger(log *slog.Logger) WatchOption {
	return func(w *Watcher) {
		w.log = log
	}
}

// Watch loads path and starts monitoring it. The parent directory is watched
// so the file may be created or replaced after startup.
func Watch(path string, opts ...WatchOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		debounce: DefaultDebounce,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		notifier: NewNotifier(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	limits, err := Load(path)
	if err != nil {
		return nil, err
	}
	w.current = limits

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting config watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Limits returns the most recently loaded limits.
func (w *Watcher) Limits() Limits {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Subscribe registers an observer for limit changes.
func (w *Watcher) Subscribe(fn Observer) *Subscription {
	return w.notifier.Subscribe(fn)
}

// Close stops watching. It is safe to call once.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", "error", err)
		}
	}
}

// scheduleReload restarts the debounce timer; the reload runs once the
// event burst settles.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	limits, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed, keeping previous limits", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	changed := limits != w.current
	w.current = limits
	w.mu.Unlock()

	if changed {
		w.log.Info("config reloaded", "path", w.path,
			"buffer_size", limits.BufferSize,
			"retry_budget", limits.RetryBudget,
			"block_size", limits.BlockSize)
		w.notifier.Notify(limits)
	}
}
