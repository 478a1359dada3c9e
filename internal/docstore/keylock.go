package docstore

import "sync"

// KeyLock hands out one mutex per document key so writers in this process
// queue up per key instead of racing on compare-and-swap.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*keyMutex
}

type keyMutex struct {
	sync.Mutex
	refs int
}

// NewKeyLock constructs an empty lock table.
func NewKeyLock() *KeyLock { return &KeyLock{locks: map[string]*keyMutex{}} }

// Lock blocks until the caller owns key and returns the matching unlock func.
// Entries are dropped once no goroutine holds or waits on them.
func (l *KeyLock) Lock(key string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &keyMutex{}
		l.locks[key] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// size is the number of live entries (tests).
func (l *KeyLock) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
