package kvserver

import (
	"errors"
	"time"
)

// ErrUnsupportedPlatform is returned by the reactor engine on platforms
// without epoll or kqueue.
var ErrUnsupportedPlatform = errors.New("kvserver: reactor engine is not supported on this platform")

// Event is one readiness notification.
type Event struct {
	Token    Token
	Readable bool
	Writable bool
}

// Poller is an edge-triggered readiness notifier.
type Poller interface {
	// Add registers fd for read and write readiness under tok.
	Add(fd int, tok Token) error
	// Remove deregisters fd.
	Remove(fd int) error
	// Wait blocks for at most timeout and fills events. Interrupted waits
	// return zero events and no error.
	Wait(events []Event, timeout time.Duration) (int, error)
	// Close releases the poller.
	Close() error
}
