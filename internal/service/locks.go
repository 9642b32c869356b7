package service

import (
	"context"
	"sync"
)

// BookLocks serializes review mutations per book so each recompute sees
// the writes that preceded it. Entries are refcounted and dropped once
// no goroutine holds or waits on them.
type BookLocks struct {
	mu    sync.Mutex
	locks map[string]*bookLock
}

type bookLock struct {
	ch   chan struct{}
	refs int
}

// NewBookLocks creates an empty lock table.
func NewBookLocks() *BookLocks {
	return &BookLocks{locks: make(map[string]*bookLock)}
}

// Lock blocks until the book's lock is held or ctx is done. The returned
// function releases it and must be called exactly once.
func (l *BookLocks) Lock(ctx context.Context, bookID string) (func(), error) {
	l.mu.Lock()
	bl, ok := l.locks[bookID]
	if !ok {
		bl = &bookLock{ch: make(chan struct{}, 1)}
		l.locks[bookID] = bl
	}
	bl.refs++
	l.mu.Unlock()

	select {
	case bl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(bookID, bl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-bl.ch
			l.release(bookID, bl)
		})
	}, nil
}

func (l *BookLocks) release(bookID string, bl *bookLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bl.refs--
	if bl.refs == 0 {
		delete(l.locks, bookID)
	}
}

// Len returns the number of books with a held or awaited lock.
func (l *BookLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
