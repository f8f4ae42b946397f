//go:build linux || darwin || freebsd

package kvserver

import (
	"context"
	"errors"
	"net"
	"runtime"

	"golang.org/x/sys/unix"
)

// eventBatch is the number of readiness events fetched per wait.
const eventBatch = 1024

type reactorConn struct {
	fd     int
	conn   *Conn
	remote net.Addr
}

// reactor is a single-threaded event loop over raw sockets.
type reactor struct {
	srv *Server

	poller Poller
	lfd    int
	conns  map[Token]*reactorConn
	tokens *tokenAllocator
}

func newReactor(s *Server) engine {
	return &reactor{
		srv:    s,
		lfd:    -1,
		conns:  make(map[Token]*reactorConn),
		tokens: newTokenAllocator(),
	}
}

func (r *reactor) run(ctx context.Context, ready func(net.Addr)) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	lfd, addr, err := listenTCP(r.srv.cfg.Addr)
	if err != nil {
		return err
	}
	r.lfd = lfd

	p, err := newPoller()
	if err != nil {
		unix.Close(lfd)
		return err
	}
	r.poller = p
	defer r.teardown()

	if err := p.Add(lfd, listenerToken); err != nil {
		return err
	}
	ready(addr)

	events := make([]Event, eventBatch)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := p.Wait(events, r.srv.cfg.PollTick)
		if err != nil {
			return err
		}
		for _, ev := range events[:n] {
			if ev.Token == listenerToken {
				r.accept()
				continue
			}
			r.dispatch(ev)
		}
	}
}

// accept drains the listener's backlog.
func (r *reactor) accept() {
	log := r.srv.log
	for {
		fd, remote, err := acceptConn(r.lfd)
		switch {
		case err == nil:
		case errors.Is(err, ErrWouldBlock):
			return
		case errors.Is(err, ErrInterrupted), errors.Is(err, unix.ECONNABORTED):
			continue
		default:
			log.Warn("accept failed", "error", err)
			return
		}

		if !r.srv.allowConn() {
			unix.Close(fd)
			log.Debug("connection rejected", "remote", remote)
			continue
		}

		tok := r.tokens.get()
		c := NewConn(&fdSocket{fd: fd}, r.srv.handler, r.srv.cfg.ReadChunk)
		if err := r.poller.Add(fd, tok); err != nil {
			unix.Close(fd)
			r.tokens.put(tok)
			log.Warn("register connection failed", "remote", remote, "error", err)
			continue
		}
		r.conns[tok] = &reactorConn{fd: fd, conn: c, remote: remote}
		r.srv.metrics.ConnOpened()
		r.srv.connLog(c).Debug("connection accepted", "remote", remote)
	}
}

// dispatch advances one connection for one readiness event.
func (r *reactor) dispatch(ev Event) {
	rc, ok := r.conns[ev.Token]
	if !ok {
		return
	}
	c := rc.conn

	var err error
	if ev.Readable && c.State() == StateWantRead {
		err = c.OnRead()
	}
	if err == nil && ev.Writable && c.State() == StateWantWrite {
		err = c.OnWrite()
		// The readable edge may have fired while output was pending.
		if err == nil && c.State() == StateWantRead {
			err = c.OnRead()
		}
	}
	if c.State() == StateWantClose {
		r.closeConn(ev.Token, rc, c.Err())
	}
}

func (r *reactor) closeConn(tok Token, rc *reactorConn, reason error) {
	if err := r.poller.Remove(rc.fd); err != nil {
		r.srv.connLog(rc.conn).Debug("deregister connection failed", "error", err)
	}
	unix.Close(rc.fd)
	delete(r.conns, tok)
	r.tokens.put(tok)
	r.srv.connClosed(rc.conn, rc.remote, reason)
}

func (r *reactor) teardown() {
	for tok, rc := range r.conns {
		r.closeConn(tok, rc, errShutdown)
	}
	if r.poller != nil {
		r.poller.Close()
	}
	if r.lfd >= 0 {
		unix.Close(r.lfd)
		r.lfd = -1
	}
}
