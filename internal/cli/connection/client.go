package connection

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/yndnr/rehashkv/internal/protocol"
)

// ErrClosed is returned by Do on a closed client.
var ErrClosed = errors.New("connection: client closed")

// Client speaks the KV wire protocol over one TCP connection. Requests are
// serialized; the client is safe for concurrent use.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	br   *bufio.Reader
}

// Dial connects to the KV server at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, br: bufio.NewReader(conn)}, nil
}

// Do sends one request and waits for its response. The context deadline,
// if any, bounds the whole exchange.
func (c *Client) Do(ctx context.Context, args ...string) (protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return protocol.Response{}, ErrClosed
	}

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return protocol.Response{}, err
	}
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := protocol.WriteRequest(c.conn, args...); err != nil {
		return protocol.Response{}, c.ctxErr(ctx, err)
	}
	resp, err := protocol.ReadResponse(c.br)
	if err != nil {
		return protocol.Response{}, c.ctxErr(ctx, err)
	}
	return resp, nil
}

// ctxErr prefers the context's error over the deadline error it caused.
func (c *Client) ctxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
			return context.DeadlineExceeded
		}
	}
	return err
}

// RemoteAddr returns the server address.
func (c *Client) RemoteAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
