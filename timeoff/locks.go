package timeoff

import (
	"sync"

	"github.com/warp/leave-engine/generic"
)

// keyedMutex hands out one mutex per employee. Entries are dropped once
// nobody holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[generic.EntityID]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[generic.EntityID]*refMutex)}
}

// Lock blocks until id is free and returns the matching unlock func.
func (k *keyedMutex) Lock(id generic.EntityID) func() {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &refMutex{}
		k.locks[id] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
