package confloader

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/rehashkv/internal/telemetry/logger"
)

// Watcher watches configuration files for changes.
type Watcher struct {
	watcher   *fsnotify.Watcher
	callbacks []func(string)
	files     map[string]struct{}
	mu        sync.RWMutex
	done      chan struct{}
	stopOnce  sync.Once
	logger    logger.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// NewWatcher creates a new configuration file watcher.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watcher := &Watcher{
		watcher:   w,
		callbacks: make([]func(string), 0),
		files:     make(map[string]struct{}),
		done:      make(chan struct{}),
		logger:    logger.Default(),
	}

	for _, opt := range opts {
		opt(watcher)
	}

	return watcher, nil
}

// Watch adds a file to watch. Only events for watched files are reported.
func (w *Watcher) Watch(path string) error {
	// Watch the directory, not the file, to catch vim-style renames
	dir := filepath.Dir(path)
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Error("failed to watch directory",
			"path", dir,
			"error", err,
		)
		return err
	}

	w.mu.Lock()
	w.files[filepath.Clean(path)] = struct{}{}
	w.mu.Unlock()

	w.logger.Debug("watching directory for changes",
		"path", dir,
		"file", filepath.Base(path),
	)
	return nil
}

// OnChange registers a callback to be called when a watched file changes.
// The callback receives the path of the changed file.
func (w *Watcher) OnChange(callback func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start starts watching for changes.
// This function blocks until Stop() is called.
func (w *Watcher) Start() {
	w.logger.Info("configuration watcher started")

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				w.logger.Debug("watcher events channel closed")
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.watched(event.Name) {
				continue
			}
			w.logger.Debug("configuration file changed",
				"file", event.Name,
				"op", event.Op.String(),
			)
			w.notifyCallbacks(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.logger.Debug("watcher errors channel closed")
				return
			}
			w.logger.Error("configuration watcher error",
				"error", err,
			)
		case <-w.done:
			w.logger.Debug("watcher received stop signal")
			return
		}
	}
}

// StartAsync starts watching in a goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		if err = w.watcher.Close(); err != nil {
			w.logger.Error("failed to close watcher",
				"error", err,
			)
			return
		}
		w.logger.Info("configuration watcher stopped")
	})
	return err
}

func (w *Watcher) watched(name string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.files[filepath.Clean(name)]
	return ok
}

// notifyCallbacks calls all registered callbacks.
func (w *Watcher) notifyCallbacks(path string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, cb := range w.callbacks {
		cb(path)
	}
}
