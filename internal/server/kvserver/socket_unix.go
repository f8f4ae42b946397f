//go:build linux || darwin || freebsd

package kvserver

import (
	"io"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// fdSocket is a non-blocking TCP socket owned by the reactor.
type fdSocket struct {
	fd int
}

func (s *fdSocket) Read(p []byte) (int, error) {
	n, err := unix.Read(s.fd, p)
	if err != nil {
		return 0, mapErrno(err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *fdSocket) Write(p []byte) (int, error) {
	n, err := unix.Write(s.fd, p)
	if err != nil {
		return 0, mapErrno(err)
	}
	return n, nil
}

func mapErrno(err error) error {
	switch err {
	case unix.EAGAIN:
		return ErrWouldBlock
	case unix.EINTR:
		return ErrInterrupted
	default:
		return err
	}
}

// listenTCP opens a non-blocking listening socket on addr and returns it
// with the address it is bound to.
func listenTCP(addr string) (int, net.Addr, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return -1, nil, err
	}

	family, sa := sockaddrOf(tcpAddr)
	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, nil, os.NewSyscallError("socket", err)
	}
	closeOnErr := func(op string, err error) (int, net.Addr, error) {
		unix.Close(fd)
		return -1, nil, os.NewSyscallError(op, err)
	}

	unix.CloseOnExec(fd)
	if err := unix.SetNonblock(fd, true); err != nil {
		return closeOnErr("setnonblock", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return closeOnErr("setsockopt", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		return closeOnErr("bind", err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		return closeOnErr("listen", err)
	}
	bound, err := unix.Getsockname(fd)
	if err != nil {
		return closeOnErr("getsockname", err)
	}
	return fd, tcpAddrOf(bound), nil
}

// acceptConn accepts one pending connection and prepares it for the
// reactor.
func acceptConn(lfd int) (int, net.Addr, error) {
	fd, sa, err := unix.Accept(lfd)
	if err != nil {
		return -1, nil, mapErrno(err)
	}
	unix.CloseOnExec(fd)
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, nil, os.NewSyscallError("setnonblock", err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		unix.Close(fd)
		return -1, nil, os.NewSyscallError("setsockopt", err)
	}
	return fd, tcpAddrOf(sa), nil
}

func sockaddrOf(a *net.TCPAddr) (int, unix.Sockaddr) {
	if ip4 := a.IP.To4(); ip4 != nil || a.IP == nil {
		sa := &unix.SockaddrInet4{Port: a.Port}
		if ip4 != nil {
			copy(sa.Addr[:], ip4)
		}
		return unix.AF_INET, sa
	}
	sa := &unix.SockaddrInet6{Port: a.Port}
	copy(sa.Addr[:], a.IP.To16())
	return unix.AF_INET6, sa
}

func tcpAddrOf(sa unix.Sockaddr) net.Addr {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IPv4(sa.Addr[0], sa.Addr[1], sa.Addr[2], sa.Addr[3]), Port: sa.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, sa.Addr[:])
		return &net.TCPAddr{IP: ip, Port: sa.Port}
	default:
		return &net.TCPAddr{}
	}
}

// sockName returns the local address of fd and closes it.
func sockName(fd int) net.Addr {
	defer unix.Close(fd)
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return nil
	}
	return tcpAddrOf(sa)
}
