package kvserver

// Token identifies a registration with the poller.
type Token uint32

// listenerToken is reserved for the listening socket.
const listenerToken Token = 0

// tokenAllocator hands out connection tokens, reusing released ones
// before minting new ones.
type tokenAllocator struct {
	next Token
	free []Token
}

func newTokenAllocator() *tokenAllocator {
	return &tokenAllocator{next: listenerToken + 1}
}

func (a *tokenAllocator) get() Token {
	if n := len(a.free); n > 0 {
		t := a.free[n-1]
		a.free = a.free[:n-1]
		return t
	}
	t := a.next
	a.next++
	return t
}

func (a *tokenAllocator) put(t Token) {
	a.free = append(a.free, t)
}
