package service

import (
	"strings"
	"sync"
)

// AddressLocker serializes transaction creation per sender address so that
// nonce acquisition, signing and broadcast happen one at a time for a given
// account. Different addresses proceed in parallel.
type AddressLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAddressLocker creates an empty locker.
func NewAddressLocker() *AddressLocker {
	return &AddressLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for address and returns the unlock function.
// Keys are case-insensitive; entries are created lazily and never removed,
// the set of hot sender addresses is small and bounded.
func (l *AddressLocker) Lock(address string) func() {
	key := strings.ToLower(address)

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
