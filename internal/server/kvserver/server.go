package kvserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/rehashkv/internal/storage/memory"
	"github.com/yndnr/rehashkv/internal/telemetry/logger"
	"github.com/yndnr/rehashkv/internal/telemetry/metric"
)

// Engine names.
const (
	EngineReactor = "reactor"
	EngineGnet    = "gnet"
)

var (
	// ErrServerRunning is returned by Start on a running server.
	ErrServerRunning = errors.New("kvserver: server already running")

	// ErrUnknownEngine is returned by New for an unrecognized Config.Engine.
	ErrUnknownEngine = errors.New("kvserver: unknown engine")
)

// Config holds the KV server configuration.
type Config struct {
	// Addr is the TCP listen address. Port 0 picks a free port.
	Addr string
	// Engine selects the event loop: "reactor" or "gnet".
	Engine string
	// StrictCommands answers unknown commands with ERR.
	StrictCommands bool
	// AcceptRate limits accepted connections per second. 0 disables it.
	AcceptRate float64
	// AcceptBurst is the limiter's burst size.
	AcceptBurst int
	// ReadChunk is the size of one socket read.
	ReadChunk int
	// Multicore runs one gnet loop per CPU. The reactor ignores it.
	Multicore bool
	// PollTick bounds a single reactor wait so cancellation is observed.
	PollTick time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        "127.0.0.1:6380",
		Engine:      EngineReactor,
		AcceptBurst: 64,
		ReadChunk:   DefaultReadChunk,
		PollTick:    100 * time.Millisecond,
	}
}

// engine is an event loop. run serves until ctx is done, calling ready
// once the listener is bound.
type engine interface {
	run(ctx context.Context, ready func(net.Addr)) error
}

// Server serves the KV protocol.
type Server struct {
	cfg     Config
	handler *Handler
	log     logger.Logger
	metrics *metric.Registry
	limiter *rate.Limiter

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	addr    net.Addr
	err     error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = r
	}
}

// New creates a server over store.
func New(cfg Config, store *memory.Store, opts ...Option) (*Server, error) {
	def := DefaultConfig()
	if cfg.Engine == "" {
		cfg.Engine = def.Engine
	}
	if cfg.Engine != EngineReactor && cfg.Engine != EngineGnet {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
	if cfg.ReadChunk <= 0 {
		cfg.ReadChunk = def.ReadChunk
	}
	if cfg.PollTick <= 0 {
		cfg.PollTick = def.PollTick
	}

	s := &Server{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Default()
	}
	if s.metrics == nil {
		s.metrics = metric.NewRegistry()
	}
	if cfg.AcceptRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), max(cfg.AcceptBurst, 1))
	}
	s.handler = NewHandler(store,
		WithStrictCommands(cfg.StrictCommands),
		WithHandlerMetrics(s.metrics),
	)
	return s, nil
}

// Start binds the listener and serves in the background. It returns once
// the listener is bound or the engine failed to start. The server stops
// when ctx is done or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerRunning
	}
	var eng engine
	switch s.cfg.Engine {
	case EngineGnet:
		eng = newGnetEngine(s)
	default:
		eng = newReactor(s)
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.running = true
	s.cancel = cancel
	s.done = done
	s.err = nil
	s.mu.Unlock()

	readyc := make(chan net.Addr, 1)
	go func() {
		err := eng.run(runCtx, func(a net.Addr) { readyc <- a })
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(done)
	}()

	select {
	case addr := <-readyc:
		s.mu.Lock()
		s.addr = addr
		s.mu.Unlock()
		s.log.Info("kv server listening", "addr", addr.String(), "engine", s.cfg.Engine)
		return nil
	case <-done:
		cancel()
		s.mu.Lock()
		s.running = false
		err := s.err
		s.mu.Unlock()
		return err
	}
}

// Shutdown stops the event loop, closes every connection and waits for
// the loop to exit or ctx to be done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	s.running = false
	err := s.err
	s.mu.Unlock()
	s.log.Info("kv server stopped")
	return err
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Done is closed when the event loop exits. It is nil before Start.
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the error the event loop exited with.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// allowConn applies the accept limiter.
func (s *Server) allowConn() bool {
	if s.limiter == nil || s.limiter.Allow() {
		return true
	}
	s.metrics.ConnRejected()
	return false
}

// connLog returns the server logger tagged with the connection's ID.
func (s *Server) connLog(c *Conn) logger.Logger {
	ctx := logger.WithLogger(context.Background(), s.log)
	return logger.L(logger.WithConnID(ctx, c.ID().String()))
}

func (s *Server) connClosed(c *Conn, remote net.Addr, reason error) {
	s.metrics.ConnClosed(closeReason(reason))
	log := s.connLog(c)
	args := []any{"remote", remote, "reason", closeReason(reason)}
	switch {
	case reason == nil, errors.Is(reason, errShutdown):
		log.Debug("connection closed", args...)
	default:
		log.Warn("connection closed", append(args, "error", reason)...)
	}
}
