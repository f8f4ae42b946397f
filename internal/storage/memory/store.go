package memory

import (
	"sync"

	"github.com/yndnr/rehashkv/pkg/dict"
)

// Store is a lock-guarded handle to the process dictionary.
type Store struct {
	mu sync.Mutex
	d  *dict.Dict
}

// New creates a store over a fresh dictionary built with opts.
func New(opts ...dict.Option) *Store {
	return &Store{d: dict.New(opts...)}
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Get(key)
}

// Set stores value under key and returns the value it replaced, if any.
func (s *Store) Set(key, value string) (old string, replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Insert(key, value)
}

// Delete removes key and returns the value it held.
func (s *Store) Delete(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Remove(key)
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Size()
}

// Stats returns a snapshot of the dictionary.
func (s *Store) Stats() dict.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Stats()
}
