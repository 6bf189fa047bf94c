// FILE: twconfig/watch.go
package twconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// LoadFunc produces a fresh configuration snapshot.
type LoadFunc func() (*BuildConfig, error)

// WatchOptions configures file watching behavior
type WatchOptions struct {
	// Debounce coalesces bursts of file events into one reload
	Debounce time.Duration

	// ReloadTimeout bounds a single reload
	ReloadTimeout time.Duration

	// MaxSubscribers limits concurrent Subscribe channels
	MaxSubscribers int

	// Logger receives reload events. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Debounce:       DefaultDebounce,
		ReloadTimeout:  DefaultReloadTimeout,
		MaxSubscribers: DefaultMaxSubscribers,
	}
}

// Holder keeps the current configuration snapshot and swaps it atomically on
// reload. A reload that fails to load or validate keeps the previous snapshot.
// Published snapshots are never mutated.
type Holder struct {
	mu      sync.RWMutex
	current *BuildConfig
	load    LoadFunc
	path    string
	opts    WatchOptions
	logger  zerolog.Logger

	subMu  sync.Mutex
	subs   map[int64]chan *BuildConfig
	nextID int64
	closed bool

	watchMu sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewHolder creates a holder seeded with initial. path is the file watched by
// StartWatcher; load defaults to LoadFile(path).
func NewHolder(initial *BuildConfig, path string, load LoadFunc, opts WatchOptions) *Holder {
	if opts.Debounce < MinDebounce {
		opts.Debounce = MinDebounce
	}
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = DefaultReloadTimeout
	}
	if opts.MaxSubscribers <= 0 {
		opts.MaxSubscribers = DefaultMaxSubscribers
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "config").Logger()
	}

	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	if load == nil {
		file := path
		load = func() (*BuildConfig, error) { return LoadFile(file) }
	}

	return &Holder{
		current: initial.Clone(),
		load:    load,
		path:    path,
		opts:    opts,
		logger:  logger,
		subs:    make(map[int64]chan *BuildConfig),
	}
}

// Get returns a copy of the current snapshot.
func (h *Holder) Get() *BuildConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Clone()
}

// Reload loads a new snapshot and publishes it to subscribers when it differs
// from the current one.
func (h *Holder) Reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.opts.ReloadTimeout)
	defer cancel()

	h.logger.Debug().Str("event", "config.reload_start").Str("path", h.path).Msg("reloading configuration")

	type result struct {
		cfg *BuildConfig
		err error
	}
	done := make(chan result, 1)
	go func() {
		cfg, err := h.load()
		done <- result{cfg: cfg, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		h.logger.Error().
			Err(ctx.Err()).
			Str("event", "config.reload_timeout").
			Msg("configuration reload did not finish in time")
		return fmt.Errorf("reload config: %w", ctx.Err())
	}

	// A missing file yields a snapshot built from overrides alone
	if res.cfg == nil || errors.Is(res.err, ErrConfigNotFound) {
		err := res.err
		if err == nil {
			err = errors.New("loader returned no configuration")
		}
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("keeping previous configuration")
		return fmt.Errorf("reload config: %w", err)
	}
	if res.err != nil {
		h.logger.Warn().
			Err(res.err).
			Str("event", "config.reload_partial").
			Msg("configuration loaded with non-fatal errors")
	}

	next := res.cfg.Clone()

	h.mu.Lock()
	old := h.current
	h.current = next
	h.mu.Unlock()

	changed := Diff(old, next)
	if len(changed) == 0 {
		h.logger.Debug().Str("event", "config.reload_unchanged").Msg("configuration unchanged")
		return nil
	}

	h.logger.Info().
		Str("event", "config.reload_success").
		Str("changed", strings.Join(changed, ",")).
		Msg("configuration reloaded")

	h.notify(next)
	return nil
}

// Subscribe returns a channel receiving every new snapshot and a function that
// cancels the subscription. When the subscriber limit is reached the returned
// channel is already closed.
func (h *Holder) Subscribe() (<-chan *BuildConfig, func()) {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	if h.closed || len(h.subs) >= h.opts.MaxSubscribers {
		ch := make(chan *BuildConfig)
		close(ch)
		return ch, func() {}
	}

	ch := make(chan *BuildConfig, subscriberBuffer)
	h.nextID++
	id := h.nextID
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.subMu.Lock()
			defer h.subMu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
}

// SubscriberCount returns the number of active subscriptions
func (h *Holder) SubscriberCount() int {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	return len(h.subs)
}

// notify sends a snapshot to all subscribers without blocking.
func (h *Holder) notify(cfg *BuildConfig) {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- cfg.Clone():
		default:
			// Channel full, subscriber picks up a later snapshot
		}
	}
}

// StartWatcher watches the configuration file and reloads on change. It returns
// once the watch is registered; the watch ends when ctx is cancelled or Stop is
// called. An empty path disables watching.
func (h *Holder) StartWatcher(ctx context.Context) error {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()

	if h.cancel != nil {
		return errors.New("config watcher already running")
	}
	if h.path == "" {
		h.logger.Info().
			Str("event", "config.watcher_disabled").
			Msg("no configuration file to watch")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: editors and atomic writers replace the file by rename.
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config directory: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.done = make(chan struct{})

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", h.path).
		Msg("watching configuration file for changes")

	go h.watchLoop(ctx, watcher, h.done)
	return nil
}

// Stop ends the file watch and waits for the watch loop to exit.
func (h *Holder) Stop() {
	h.watchMu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.watchMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()

	select {
	case <-done:
	case <-time.After(ShutdownTimeout):
		h.logger.Warn().Str("event", "config.watcher_stop_timeout").Msg("config watcher did not stop in time")
	}
}

// Close stops watching and closes every subscriber channel.
func (h *Holder) Close() {
	h.Stop()

	h.subMu.Lock()
	defer h.subMu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	h.closed = true
}

// watchLoop is the main file watching loop
func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	defer watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != h.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				if _, err := os.Stat(h.path); err != nil {
					h.logger.Warn().
						Str("event", "config.file_removed").
						Str("path", h.path).
						Msg("configuration file removed, keeping last snapshot")
					continue
				}
			}

			if timer == nil {
				timer = time.NewTimer(h.opts.Debounce)
			} else {
				timer.Reset(h.opts.Debounce)
			}
			fire = timer.C

		case <-fire:
			timer, fire = nil, nil
			// Failures are logged by Reload; the previous snapshot stays active.
			_ = h.Reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Str("event", "config.watcher_error").Msg("config watcher error")
		}
	}
}
