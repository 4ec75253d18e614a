package flow

import (
	"strings"
	"sync"
	"time"
)

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// Registry keeps one flow per key and forgets flows left idle longer than ttl.
// Flows live in process memory, so a multi-instance deployment needs sticky
// sessions for them.
type Registry[T any] struct {
	mu      sync.Mutex
	items   map[string]*entry[T]
	ttl     time.Duration
	newFlow func() T
	now     func() time.Time
}

func NewRegistry[T any](ttl time.Duration, newFlow func() T) *Registry[T] {
	return &Registry[T]{
		items:   make(map[string]*entry[T]),
		ttl:     ttl,
		newFlow: newFlow,
		now:     time.Now,
	}
}

// Get returns the flow for key, creating it on first use.
func (r *Registry[T]) Get(key string) T {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[key]
	if !ok {
		e = &entry[T]{value: r.newFlow()}
		r.items[key] = e
	}
	e.lastSeen = r.now()
	return e.value
}

// Peek returns the flow for key without creating one.
func (r *Registry[T]) Peek(key string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[key]
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Reset replaces the flow for key with a fresh one.
func (r *Registry[T]) Reset(key string) T {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := &entry[T]{value: r.newFlow(), lastSeen: r.now()}
	r.items[key] = e
	return e.value
}

// Drop forgets the flow for key.
func (r *Registry[T]) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, key)
}

// DropPrefix forgets every flow whose key starts with prefix and returns how
// many went.
func (r *Registry[T]) DropPrefix(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key := range r.items {
		if strings.HasPrefix(key, prefix) {
			delete(r.items, key)
			removed++
		}
	}
	return removed
}

// Sweep removes flows idle for longer than ttl and returns how many went.
func (r *Registry[T]) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for key, e := range r.items {
		if e.lastSeen.Before(cutoff) {
			delete(r.items, key)
			removed++
		}
	}
	return removed
}

// Len is the number of live flows.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
