// Package events provides typed publish/subscribe topics used to signal
// changes between components of the application.
package events

import "sync"

// Topic delivers published values synchronously to every subscriber, in
// subscription order. The zero value is ready to use.
type Topic[T any] struct {
	mu   sync.RWMutex
	next int
	subs []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it again.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	id := t.next
	t.subs = append(t.subs, subscription[T]{id: id, fn: fn})

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

func (t *Topic[T]) Publish(v T) {
	t.mu.RLock()
	subs := make([]subscription[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.RUnlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// StorageChange is broadcast whenever a scalar UI setting is written.
type StorageChange struct {
	Key   string
	Value string
}
