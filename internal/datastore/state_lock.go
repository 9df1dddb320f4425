package datastore

import "sync"

// StateLock serializes read-modify-write steps on shared state between the
// checker and the command dispatcher. It is held per step, never across a
// fetch or a whole cycle.
type StateLock struct {
	mutex sync.Mutex
}

// NewStateLock creates an unlocked StateLock
func NewStateLock() *StateLock {
	return &StateLock{}
}

// WithLock runs fn while holding the lock.
func (l *StateLock) WithLock(fn func() error) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return fn()
}
