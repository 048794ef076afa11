package storage

import "sync"

// keyedMutex provides mutual exclusion per string key. Writes to the same
// (object, tag) key serialize; unrelated keys proceed in parallel. Lock
// entries are reference counted and dropped once uncontended so the map
// does not grow with the keyspace.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyLock)}
}

func (km *keyedMutex) lock(key string) {
	km.mu.Lock()
	kl, ok := km.locks[key]
	if !ok {
		kl = &keyLock{}
		km.locks[key] = kl
	}
	kl.refs++
	km.mu.Unlock()

	kl.mu.Lock()
}

func (km *keyedMutex) unlock(key string) {
	km.mu.Lock()
	kl := km.locks[key]
	kl.refs--
	if kl.refs == 0 {
		delete(km.locks, key)
	}
	km.mu.Unlock()

	kl.mu.Unlock()
}
