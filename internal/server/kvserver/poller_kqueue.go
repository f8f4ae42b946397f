//go:build darwin || freebsd

package kvserver

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

type kqueuePoller struct {
	kq     int
	buf    []unix.Kevent_t
	tokens map[int]Token
}

func newPoller() (Poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, os.NewSyscallError("kqueue", err)
	}
	unix.CloseOnExec(kq)
	return &kqueuePoller{kq: kq, tokens: make(map[int]Token)}, nil
}

func (p *kqueuePoller) Add(fd int, tok Token) error {
	var changes [2]unix.Kevent_t
	unix.SetKevent(&changes[0], fd, unix.EVFILT_READ, unix.EV_ADD|unix.EV_CLEAR)
	unix.SetKevent(&changes[1], fd, unix.EVFILT_WRITE, unix.EV_ADD|unix.EV_CLEAR)
	if _, err := unix.Kevent(p.kq, changes[:], nil, nil); err != nil {
		return os.NewSyscallError("kevent", err)
	}
	p.tokens[fd] = tok
	return nil
}

func (p *kqueuePoller) Remove(fd int) error {
	delete(p.tokens, fd)
	var changes [2]unix.Kevent_t
	unix.SetKevent(&changes[0], fd, unix.EVFILT_READ, unix.EV_DELETE)
	unix.SetKevent(&changes[1], fd, unix.EVFILT_WRITE, unix.EV_DELETE)
	if _, err := unix.Kevent(p.kq, changes[:], nil, nil); err != nil && err != unix.ENOENT {
		return os.NewSyscallError("kevent", err)
	}
	return nil
}

func (p *kqueuePoller) Wait(events []Event, timeout time.Duration) (int, error) {
	if len(p.buf) < len(events) {
		p.buf = make([]unix.Kevent_t, len(events))
	}
	ts := unix.NsecToTimespec(int64(timeout))
	n, err := unix.Kevent(p.kq, nil, p.buf[:len(events)], &ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, os.NewSyscallError("kevent", err)
	}

	out := 0
	for i := 0; i < n; i++ {
		e := p.buf[i]
		tok, ok := p.tokens[int(e.Ident)]
		if !ok {
			continue
		}
		ev := Event{Token: tok}
		switch e.Filter {
		case unix.EVFILT_READ:
			ev.Readable = true
		case unix.EVFILT_WRITE:
			ev.Writable = true
		}
		if e.Flags&(unix.EV_EOF|unix.EV_ERROR) != 0 {
			ev.Readable = true
		}
		events[out] = ev
		out++
	}
	return out, nil
}

func (p *kqueuePoller) Close() error {
	return unix.Close(p.kq)
}
