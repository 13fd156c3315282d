package cache

import (
	"sync"
	"time"
)

// memoEntry is a stored value plus the cost of computing it.
type memoEntry[V any] struct {
	value V
	cost  time.Duration
}

// MemoizePolicy is an unbounded in-process cache. Entries live until Clear.
type MemoizePolicy[V any] struct {
	mu      sync.RWMutex
	entries map[string]memoEntry[V]
}

// NewMemoize creates an unbounded memoization policy.
func NewMemoize[V any]() *MemoizePolicy[V] {
	return &MemoizePolicy[V]{
		entries: make(map[string]memoEntry[V]),
	}
}

func (p *MemoizePolicy[V]) Lookup(key string) (V, time.Duration, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, ok := p.entries[key]
	if !ok {
		var zero V
		return zero, 0, false
	}
	return e.value, e.cost, true
}

func (p *MemoizePolicy[V]) Store(key string, value V, cost time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[key] = memoEntry[V]{value: value, cost: cost}
}

// EvictIfNeeded is a no-op: memoization never evicts.
func (p *MemoizePolicy[V]) EvictIfNeeded() {}

func (p *MemoizePolicy[V]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[string]memoEntry[V])
}

func (p *MemoizePolicy[V]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

func (p *MemoizePolicy[V]) Label() string { return "memoize" }
