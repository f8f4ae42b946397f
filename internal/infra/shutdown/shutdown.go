package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yndnr/rehashkv/internal/telemetry/logger"
)

// Hook is run during shutdown.
type Hook func(context.Context) error

// Handler handles graceful shutdown.
type Handler struct {
	timeout time.Duration
	signals []os.Signal
	logger  logger.Logger

	mu      sync.Mutex
	hooks   []Hook
	reason  error
	trigger chan struct{}
	once    sync.Once
	done    chan struct{}
}

// Option configures a Handler.
type Option func(*Handler)

// WithSignals overrides the signals that start a shutdown.
func WithSignals(sigs ...os.Signal) Option {
	return func(h *Handler) {
		h.signals = sigs
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// NewHandler creates a new shutdown handler. timeout bounds the hooks
// as a whole.
func NewHandler(timeout time.Duration, opts ...Option) *Handler {
	h := &Handler{
		timeout: timeout,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		hooks:   make([]Hook, 0),
		trigger: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Default()
	}
	return h
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Trigger starts a shutdown without a signal. reason, if non-nil, is
// returned by Wait joined with any hook errors. Only the first call has
// an effect.
func (h *Handler) Trigger(reason error) {
	h.once.Do(func() {
		h.mu.Lock()
		h.reason = reason
		h.mu.Unlock()
		close(h.trigger)
	})
}

// Wait blocks until a signal arrives or Trigger is called, then executes
// the hooks.
func (h *Handler) Wait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, h.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.logger.Info("shutdown signal received", "signal", sig.String())
	case <-h.trigger:
		h.logger.Info("shutdown triggered")
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)
	reason := h.reason
	h.mu.Unlock()

	errs := []error{reason}
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			h.logger.Warn("shutdown hook failed", "error", err)
			errs = append(errs, err)
		}
	}

	close(h.done)
	return errors.Join(errs...)
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
