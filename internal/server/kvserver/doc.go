// Package kvserver serves the rehashkv wire protocol over TCP.
//
// A connection is a small state machine (Conn) that is driven from a
// readiness loop: it reads until the socket would block, executes every
// complete request against the shared store, and writes responses until
// the socket would block again. Two loops can drive it:
//
//   - reactor: a single goroutine over edge-triggered epoll (Linux) or
//     kqueue (Darwin, FreeBSD) with raw non-blocking sockets
//   - gnet: the github.com/panjf2000/gnet/v2 event engine, optionally
//     one loop per CPU
//
// Server selects the loop from Config.Engine and owns its lifecycle.
package kvserver
