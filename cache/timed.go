package cache

import (
	"sync"
	"time"
)

type timedEntry[V any] struct {
	value      V
	cost       time.Duration
	insertedAt time.Time
}

// TimedPolicy expires entries a fixed duration after insertion. Expiry is
// detected lazily on lookup; an expired entry is removed and the lookup
// reported as a miss.
type TimedPolicy[V any] struct {
	mu      sync.Mutex
	entries map[string]timedEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

// TimedOption configures a TimedPolicy.
type TimedOption[V any] func(*TimedPolicy[V])

// WithClock overrides the policy's time source. Used in tests to control
// expiry deterministically.
func WithClock[V any](now func() time.Time) TimedOption[V] {
	return func(p *TimedPolicy[V]) {
		p.now = now
	}
}

// NewTimed creates a policy whose entries expire ttl after insertion.
// A non-positive ttl expires entries immediately, degrading to recomputation
// on every call.
func NewTimed[V any](ttl time.Duration, opts ...TimedOption[V]) *TimedPolicy[V] {
	p := &TimedPolicy[V]{
		entries: make(map[string]timedEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *TimedPolicy[V]) Lookup(key string) (V, time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero V
	e, ok := p.entries[key]
	if !ok {
		return zero, 0, false
	}
	if p.now().Sub(e.insertedAt) >= p.ttl {
		delete(p.entries, key)
		return zero, 0, false
	}
	return e.value, e.cost, true
}

func (p *TimedPolicy[V]) Store(key string, value V, cost time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[key] = timedEntry[V]{value: value, cost: cost, insertedAt: p.now()}
}

// EvictIfNeeded is a no-op: expiry is handled lazily on lookup.
func (p *TimedPolicy[V]) EvictIfNeeded() {}

func (p *TimedPolicy[V]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[string]timedEntry[V])
}

func (p *TimedPolicy[V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *TimedPolicy[V]) Label() string { return "timed" }
