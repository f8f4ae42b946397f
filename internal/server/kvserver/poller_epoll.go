//go:build linux

package kvserver

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

type epollPoller struct {
	epfd int
	buf  []unix.EpollEvent
}

func newPoller() (Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}
	return &epollPoller{epfd: fd}, nil
}

func (p *epollPoller) Add(fd int, tok Token) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLRDHUP | unix.EPOLLET,
		Fd:     int32(tok),
	}
	return os.NewSyscallError("epoll_ctl", unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev))
}

func (p *epollPoller) Remove(fd int) error {
	return os.NewSyscallError("epoll_ctl", unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, &unix.EpollEvent{}))
}

func (p *epollPoller) Wait(events []Event, timeout time.Duration) (int, error) {
	if len(p.buf) < len(events) {
		p.buf = make([]unix.EpollEvent, len(events))
	}
	n, err := unix.EpollWait(p.epfd, p.buf[:len(events)], int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, os.NewSyscallError("epoll_wait", err)
	}
	for i := 0; i < n; i++ {
		e := p.buf[i]
		events[i] = Event{
			Token:    Token(uint32(e.Fd)),
			Readable: e.Events&(unix.EPOLLIN|unix.EPOLLRDHUP|unix.EPOLLHUP|unix.EPOLLERR) != 0,
			Writable: e.Events&(unix.EPOLLOUT|unix.EPOLLHUP|unix.EPOLLERR) != 0,
		}
	}
	return n, nil
}

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}
