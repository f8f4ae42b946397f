package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"
)

// Server represents the admin HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler

	mu   sync.Mutex
	addr net.Addr
	errc chan error
}

// New creates a new HTTP server.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		handler: handler,
	}
}

// ListenAndServe starts the HTTP server and blocks.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	errc := make(chan error, 1)
	s.mu.Lock()
	s.addr = ln.Addr()
	s.errc = errc
	s.mu.Unlock()

	go func() {
		err := s.httpServer.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errc <- err
	}()
	return nil
}

// Addr returns the bound address after Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	errc := s.errc
	s.mu.Unlock()
	if errc == nil {
		return nil
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
