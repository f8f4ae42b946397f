package connection

import (
	"context"
	"sync"
)

// Manager holds the CLI's connection to one KV server. The connection is
// dialed on first use and reused until Close or Reset.
type Manager struct {
	addr string

	mu     sync.Mutex
	client *Client
}

// NewManager creates a manager for the server at addr.
func NewManager(addr string) *Manager {
	return &Manager{addr: addr}
}

// Addr returns the server address.
func (m *Manager) Addr() string {
	return m.addr
}

// Client returns the current client, dialing if needed.
func (m *Manager) Client(ctx context.Context) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		return m.client, nil
	}
	c, err := Dial(ctx, m.addr)
	if err != nil {
		return nil, err
	}
	m.client = c
	return c, nil
}

// Reset drops the current client so the next call redials. It is used
// after an I/O error, because the server closes connections on protocol
// errors.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		m.client.Close()
		m.client = nil
	}
}

// IsConnected returns true if a client is open.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client != nil
}

// Close closes the current client.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	err := m.client.Close()
	m.client = nil
	return err
}
