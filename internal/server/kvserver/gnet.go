package kvserver

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/panjf2000/gnet/v2"
)

// gnetStopTimeout bounds how long Engine.Stop may take.
const gnetStopTimeout = 5 * time.Second

// gnetSocket adapts a gnet connection to Socket. Reads come from the
// connection's inbound buffer; writes are queued by the event loop and
// always accepted in full.
type gnetSocket struct {
	c gnet.Conn
}

func (s gnetSocket) Read(p []byte) (int, error) {
	if s.c.InboundBuffered() == 0 {
		return 0, ErrWouldBlock
	}
	return s.c.Read(p)
}

func (s gnetSocket) Write(p []byte) (int, error) {
	return s.c.Write(p)
}

type gnetConn struct {
	conn   *Conn
	remote net.Addr
}

// gnetEngine drives connections from gnet event loops.
type gnetEngine struct {
	gnet.BuiltinEventEngine

	srv      *Server
	eng      gnet.Engine
	booted   chan struct{}
	stopping atomic.Bool
}

func newGnetEngine(s *Server) engine {
	return &gnetEngine{srv: s, booted: make(chan struct{})}
}

func (g *gnetEngine) run(ctx context.Context, ready func(net.Addr)) error {
	errc := make(chan error, 1)
	go func() {
		errc <- gnet.Run(g, "tcp://"+g.srv.cfg.Addr,
			gnet.WithMulticore(g.srv.cfg.Multicore),
			gnet.WithTCPNoDelay(gnet.TCPNoDelay),
			gnet.WithReadBufferCap(g.srv.cfg.ReadChunk),
		)
	}()

	select {
	case err := <-errc:
		if err == nil {
			err = errors.New("kvserver: gnet engine exited before boot")
		}
		return err
	case <-g.booted:
	}
	ready(g.boundAddr())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	g.stopping.Store(true)
	stopCtx, cancel := context.WithTimeout(context.Background(), gnetStopTimeout)
	defer cancel()
	if err := g.eng.Stop(stopCtx); err != nil {
		g.srv.log.Warn("gnet engine stop failed", "error", err)
	}
	return <-errc
}

// boundAddr reports the listener's actual address, falling back to the
// configured one.
func (g *gnetEngine) boundAddr() net.Addr {
	if fd, err := g.eng.Dup(); err == nil {
		if addr := sockName(fd); addr != nil {
			return addr
		}
	}
	if addr, err := net.ResolveTCPAddr("tcp", g.srv.cfg.Addr); err == nil {
		return addr
	}
	return &net.TCPAddr{}
}

func (g *gnetEngine) OnBoot(eng gnet.Engine) gnet.Action {
	g.eng = eng
	close(g.booted)
	return gnet.None
}

func (g *gnetEngine) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	if !g.srv.allowConn() {
		g.srv.log.Debug("connection rejected", "remote", c.RemoteAddr())
		return nil, gnet.Close
	}
	conn := NewConn(gnetSocket{c: c}, g.srv.handler, g.srv.cfg.ReadChunk)
	c.SetContext(&gnetConn{conn: conn, remote: c.RemoteAddr()})
	g.srv.metrics.ConnOpened()
	g.srv.connLog(conn).Debug("connection accepted", "remote", c.RemoteAddr())
	return nil, gnet.None
}

func (g *gnetEngine) OnTraffic(c gnet.Conn) gnet.Action {
	gc, ok := c.Context().(*gnetConn)
	if !ok {
		return gnet.Close
	}
	conn := gc.conn
	if conn.State() == StateWantRead {
		conn.OnRead()
	}
	if conn.State() == StateWantWrite {
		conn.OnWrite()
	}
	if conn.State() == StateWantClose {
		return gnet.Close
	}
	return gnet.None
}

func (g *gnetEngine) OnClose(c gnet.Conn, err error) gnet.Action {
	gc, ok := c.Context().(*gnetConn)
	if !ok {
		// Rejected in OnOpen.
		return gnet.None
	}
	c.SetContext(nil)

	reason := gc.conn.Err()
	switch {
	case gc.conn.State() == StateWantClose:
	case g.stopping.Load():
		reason = errShutdown
	case err != nil:
		reason = err
	}
	g.srv.connClosed(gc.conn, gc.remote, reason)
	return gnet.None
}
