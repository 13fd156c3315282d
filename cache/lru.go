package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/AaronQLF/dashTemplate/errors"
)

type lruEntry[V any] struct {
	key   string
	value V
	cost  time.Duration
}

// LRUPolicy evicts the least recently used entry once the cache exceeds its
// size limit. Both lookups and stores count as use.
type LRUPolicy[V any] struct {
	mu       sync.Mutex
	maxSize  int
	order    *list.List
	elements map[string]*list.Element
	onEvict  func(key string)
}

// LRUOption configures an LRUPolicy.
type LRUOption[V any] func(*LRUPolicy[V])

// WithEvictionCallback invokes fn with each evicted key. The callback runs
// while the policy lock is held and must not call back into the policy.
func WithEvictionCallback[V any](fn func(key string)) LRUOption[V] {
	return func(p *LRUPolicy[V]) {
		p.onEvict = fn
	}
}

// NewLRU creates a policy holding at most maxSize entries.
func NewLRU[V any](maxSize int, opts ...LRUOption[V]) (*LRUPolicy[V], error) {
	if maxSize <= 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("max size must be positive, got %d", maxSize),
			"cache", "NewLRU", "validate size limit")
	}
	p := &LRUPolicy[V]{
		maxSize:  maxSize,
		order:    list.New(),
		elements: make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *LRUPolicy[V]) Lookup(key string) (V, time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elem, ok := p.elements[key]
	if !ok {
		var zero V
		return zero, 0, false
	}
	p.order.MoveToFront(elem)
	e := elem.Value.(*lruEntry[V])
	return e.value, e.cost, true
}

func (p *LRUPolicy[V]) Store(key string, value V, cost time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if elem, ok := p.elements[key]; ok {
		p.order.MoveToFront(elem)
		e := elem.Value.(*lruEntry[V])
		e.value = value
		e.cost = cost
		return
	}
	elem := p.order.PushFront(&lruEntry[V]{key: key, value: value, cost: cost})
	p.elements[key] = elem
}

func (p *LRUPolicy[V]) EvictIfNeeded() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.order.Len() > p.maxSize {
		oldest := p.order.Back()
		if oldest == nil {
			return
		}
		e := oldest.Value.(*lruEntry[V])
		p.order.Remove(oldest)
		delete(p.elements, e.key)
		if p.onEvict != nil {
			p.onEvict(e.key)
		}
	}
}

func (p *LRUPolicy[V]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order.Init()
	p.elements = make(map[string]*list.Element)
}

func (p *LRUPolicy[V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Len()
}

func (p *LRUPolicy[V]) Label() string { return "lru" }
