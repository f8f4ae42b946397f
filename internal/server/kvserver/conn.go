package kvserver

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/rehashkv/internal/protocol"
)

// DefaultReadChunk is the size of a single socket read.
const DefaultReadChunk = 64 << 10

var (
	// ErrWouldBlock reports that a non-blocking socket has no data to read
	// or no room to write. It is transient.
	ErrWouldBlock = errors.New("kvserver: operation would block")

	// ErrInterrupted reports an interrupted system call. It is transient.
	ErrInterrupted = errors.New("kvserver: interrupted")

	// ErrPeerGone is the close reason when a write accepts zero bytes.
	ErrPeerGone = errors.New("kvserver: peer gone")

	// errShutdown is the close reason for connections torn down by the
	// server itself.
	errShutdown = errors.New("kvserver: server shutting down")
)

// Socket is the non-blocking byte stream under a Conn. Read returns
// io.EOF once the peer has closed its side. Both methods return
// ErrWouldBlock or ErrInterrupted for transient conditions.
type Socket interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// State is the readiness a Conn is waiting for.
type State uint8

const (
	// StateWantRead waits for input. It is the initial state.
	StateWantRead State = iota
	// StateWantWrite waits for the socket to accept buffered output.
	StateWantWrite
	// StateWantClose is terminal; the owner must tear the connection down.
	StateWantClose
)

func (s State) String() string {
	switch s {
	case StateWantRead:
		return "want_read"
	case StateWantWrite:
		return "want_write"
	case StateWantClose:
		return "want_close"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// event is what a Conn observed while doing I/O.
type event uint8

const (
	evIncomplete event = iota // input consumed, waiting for the rest of a frame
	evOutput                  // responses were queued
	evBlocked                 // output remains after a would-block write
	evFlushed                 // all output written
	evFailed                  // EOF, protocol violation or I/O error
)

// next is the transition function of the connection state machine. It is
// defined for every (state, event) pair.
func (s State) next(ev event) State {
	if s == StateWantClose || ev == evFailed {
		return StateWantClose
	}
	switch ev {
	case evOutput, evBlocked:
		return StateWantWrite
	case evFlushed:
		return StateWantRead
	default: // evIncomplete
		return s
	}
}

// Conn is one client connection.
type Conn struct {
	sock    Socket
	handler *Handler
	id      ulid.ULID
	chunk   int

	state State
	err   error

	in   []byte
	out  []byte
	wpos int
}

// NewConn wraps sock. readChunk <= 0 selects DefaultReadChunk.
func NewConn(sock Socket, h *Handler, readChunk int) *Conn {
	if readChunk <= 0 {
		readChunk = DefaultReadChunk
	}
	return &Conn{
		sock:    sock,
		handler: h,
		id:      ulid.Make(),
		chunk:   readChunk,
		state:   StateWantRead,
	}
}

// ID returns the connection's log identifier.
func (c *Conn) ID() ulid.ULID { return c.id }

// State returns the current state.
func (c *Conn) State() State { return c.state }

// Err returns why the connection is closing. It is nil while the
// connection is open and after a clean EOF.
func (c *Conn) Err() error { return c.err }

// Pending returns the number of response bytes not yet written.
func (c *Conn) Pending() int { return len(c.out) - c.wpos }

// OnRead drains the socket, executes every complete request and, if any
// responses were produced, tries to write them immediately. It must only
// be called in StateWantRead. The returned error is an unexpected I/O
// error; the connection is then in StateWantClose.
func (c *Conn) OnRead() error {
	if c.state != StateWantRead {
		panic(fmt.Sprintf("kvserver: OnRead in state %s", c.state))
	}

	if err := c.fill(); err != nil || c.state == StateWantClose {
		return err
	}

	produced := false
	off := 0
	for {
		args, n, err := protocol.ParseRequest(c.in[off:])
		if err != nil {
			var nb *protocol.NotEnoughBytesError
			if errors.As(err, &nb) {
				c.reserve(len(c.in) - off + nb.Missing())
				break
			}
			c.handler.noteProtocolError()
			c.out, c.wpos = c.out[:0], 0
			c.fail(err)
			return nil
		}
		off += n
		c.out = c.handler.Execute(c.out, args)
		produced = true
	}
	c.in = c.in[:copy(c.in, c.in[off:])]

	if !produced {
		c.state = c.state.next(evIncomplete)
		return nil
	}
	c.state = c.state.next(evOutput)
	return c.OnWrite()
}

// reserve makes room for a partial frame of total bytes, so a large
// argument is read into one allocation. The frame starts at the front of
// in once consumed requests are compacted away.
func (c *Conn) reserve(total int) {
	if total > cap(c.in) {
		c.in = slices.Grow(c.in, total-len(c.in))
	}
}

// fill reads until the socket would block.
func (c *Conn) fill() error {
	for {
		if cap(c.in)-len(c.in) < c.chunk {
			c.in = slices.Grow(c.in, c.chunk)
		}
		n, err := c.sock.Read(c.in[len(c.in) : len(c.in)+c.chunk])
		if n > 0 {
			c.in = c.in[:len(c.in)+n]
			c.handler.noteRead(n)
		}
		switch {
		case err == nil && n > 0:
			continue
		case errors.Is(err, ErrWouldBlock):
			return nil
		case errors.Is(err, ErrInterrupted):
			continue
		case err == nil, errors.Is(err, io.EOF):
			c.fail(nil)
			return nil
		default:
			c.fail(err)
			return err
		}
	}
}

// OnWrite writes buffered output until it is drained or the socket would
// block. It must only be called in StateWantWrite with output pending.
func (c *Conn) OnWrite() error {
	if c.state != StateWantWrite {
		panic(fmt.Sprintf("kvserver: OnWrite in state %s", c.state))
	}
	if c.Pending() == 0 {
		panic("kvserver: OnWrite with empty output buffer")
	}

	for c.wpos < len(c.out) {
		n, err := c.sock.Write(c.out[c.wpos:])
		if n > 0 {
			c.wpos += n
			c.handler.noteWritten(n)
		}
		switch {
		case err == nil && n > 0:
			continue
		case errors.Is(err, ErrWouldBlock):
			c.state = c.state.next(evBlocked)
			return nil
		case errors.Is(err, ErrInterrupted):
			continue
		case err == nil:
			c.fail(ErrPeerGone)
			return nil
		default:
			c.fail(err)
			return err
		}
	}

	c.out, c.wpos = c.out[:0], 0
	c.state = c.state.next(evFlushed)
	return nil
}

func (c *Conn) fail(reason error) {
	c.err = reason
	c.state = c.state.next(evFailed)
}

// closeReason returns a short metric label for a close reason.
func closeReason(err error) string {
	switch {
	case err == nil:
		return "eof"
	case errors.Is(err, protocol.ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrPeerGone):
		return "peer_gone"
	case errors.Is(err, errShutdown):
		return "shutdown"
	default:
		return "io"
	}
}
