// Package lock provides mutual exclusion per booking slot, so the occupancy check and the
// insert of a reservation run without another create for the same date+time in between.
package lock

import (
	"context"
	"fmt"
	"sync"
)

// SlotLocker serializes work on one key. Unlock must be called exactly once after a
// successful Lock.
type SlotLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func SlotKey(date, slot string) string {
	return fmt.Sprintf("%s|%s", date, slot)
}

// Local is an in-process keyed mutex. Entries are dropped once no goroutine holds or waits on them.
type Local struct {
	mu    sync.Mutex
	slots map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]*entry)}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.slots[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.slots[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.ch
				l.release(key, e)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}
}

func (l *Local) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.slots, key)
	}
}

// Noop performs no locking: concurrent creates on one slot may both pass the capacity check.
type Noop struct{}

func (Noop) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
