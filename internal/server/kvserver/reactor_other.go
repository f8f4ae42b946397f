//go:build !(linux || darwin || freebsd)

package kvserver

import (
	"context"
	"net"
)

type unsupportedReactor struct{}

func newReactor(*Server) engine { return unsupportedReactor{} }

func (unsupportedReactor) run(context.Context, func(net.Addr)) error {
	return ErrUnsupportedPlatform
}

func sockName(int) net.Addr { return nil }
