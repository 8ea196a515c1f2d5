package services

import "sync"

// RowLock admits one admin action at a time across all rows. The holder is
// the user id the action targets.
type RowLock struct {
	mu     sync.Mutex
	holder int64
	held   bool
}

// TryAcquire takes the lock for id. It fails when any action holds it.
func (l *RowLock) TryAcquire(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false
	}
	l.holder, l.held = id, true
	return true
}

// Release frees the lock if id holds it.
func (l *RowLock) Release(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held && l.holder == id {
		l.holder, l.held = 0, false
	}
}

// Holder returns the id holding the lock.
func (l *RowLock) Holder() (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holder, l.held
}
