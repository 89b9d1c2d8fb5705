package concurrency

import "sync"

// KeyedMutex serializes work per string key. The pipeline locks on the
// target record path so two workers never merge the same course file at
// once; different paths proceed independently.
type KeyedMutex struct {
	mux   sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	k.mux.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mux.Unlock()

	m.Lock()
	return m.Unlock
}
