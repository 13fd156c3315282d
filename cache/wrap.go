package cache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AaronQLF/dashTemplate/errors"
	"github.com/AaronQLF/dashTemplate/metric"
)

// CachedFunc wraps a computation with a caching policy and statistics
// reporting. Build one with Wrap or WrapParametrized and invoke it through
// Call.
type CachedFunc[V any] struct {
	name        string
	fn          ComputeFunc[V]
	policy      Policy[V]
	registry    *Registry
	logger      *slog.Logger
	metrics     *wrapMetrics
	bypassParam string
	group       singleflight.Group
}

// WrapOption configures a CachedFunc.
type WrapOption[V any] func(*CachedFunc[V])

// WithRegistry reports statistics to the given registry instead of the
// process-wide default.
func WithRegistry[V any](registry *Registry) WrapOption[V] {
	return func(c *CachedFunc[V]) {
		c.registry = registry
	}
}

// WithLogger routes the wrapper's logs to the given logger.
func WithLogger[V any](logger *slog.Logger) WrapOption[V] {
	return func(c *CachedFunc[V]) {
		c.logger = logger
	}
}

// WithMetrics exports per-function hit, miss, time-saved and size metrics to
// the given metrics registry. Registration failures are logged and metrics
// disabled; the wrapper itself keeps working.
func WithMetrics[V any](registry *metric.MetricsRegistry) WrapOption[V] {
	return func(c *CachedFunc[V]) {
		m, err := newWrapMetrics(registry, c.name)
		if err != nil {
			c.logger.Warn("cache metrics disabled",
				"function", c.name, "error", err)
			return
		}
		c.metrics = m
	}
}

// Wrap builds a cached version of fn using the given policy, registered in
// the statistics registry under name. Wrapping the same name twice replaces
// the earlier registration.
func Wrap[V any](name string, fn ComputeFunc[V], policy Policy[V], opts ...WrapOption[V]) *CachedFunc[V] {
	c := &CachedFunc[V]{
		name:     name,
		fn:       fn,
		policy:   policy,
		registry: Default(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registry.Register(name, policy.Label(), policy.Clear, policy.Len)
	return c
}

// WrapParametrized builds a memoizing wrapper with a per-call bypass switch.
// The keyword argument named param controls caching for each call: false
// routes the call straight to fn without touching cache or statistics; any
// other value, or its absence, caches normally. The control argument is
// stripped before key derivation and before fn sees the arguments, so calls
// differing only in the switch share an entry.
func WrapParametrized[V any](name, param string, fn ComputeFunc[V], opts ...WrapOption[V]) *CachedFunc[V] {
	wrapped := Wrap(name, fn, NewMemoize[V](), opts...)
	wrapped.bypassParam = param
	return wrapped
}

// Name returns the name the wrapper is registered under.
func (c *CachedFunc[V]) Name() string { return c.name }

// Call serves the result for args from the cache, computing and storing it
// on a miss. Computation errors propagate to the caller and are never
// cached. Concurrent misses for the same key run the computation once.
func (c *CachedFunc[V]) Call(ctx context.Context, args Args) (V, error) {
	if c.bypassParam != "" {
		enabled := true
		if raw, ok := args.Keyword[c.bypassParam]; ok {
			args = args.withoutKeyword(c.bypassParam)
			if flag, isBool := raw.(bool); isBool && !flag {
				enabled = false
			}
		}
		if !enabled {
			return c.fn(ctx, args)
		}
	}

	key := EncodeKey(args.Positional, args.Keyword)

	if value, cost, ok := c.policy.Lookup(key); ok {
		c.registry.RecordHit(c.name, cost)
		c.metrics.recordHit(cost.Seconds())
		c.logger.Debug("cache hit",
			"function", c.name, "time_saved", cost)
		return value, nil
	}

	// Statistics are recorded inside the group function, which runs exactly
	// once per in-flight key: one computation produces one miss no matter
	// how many callers wait on it.
	result, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have stored the value between our lookup
		// and entering the group.
		if value, cost, ok := c.policy.Lookup(key); ok {
			c.registry.RecordHit(c.name, cost)
			c.metrics.recordHit(cost.Seconds())
			c.logger.Debug("cache hit",
				"function", c.name, "time_saved", cost)
			return memoEntry[V]{value: value, cost: cost}, nil
		}

		start := time.Now()
		value, err := c.fn(ctx, args)
		if err != nil {
			return nil, err
		}
		cost := time.Since(start)

		c.policy.Store(key, value, cost)
		c.policy.EvictIfNeeded()

		c.registry.RecordMiss(c.name)
		c.metrics.recordMiss()
		c.metrics.recordSize(c.policy.Len())
		c.logger.Debug("cache miss",
			"function", c.name, "cost", cost, "entries", c.policy.Len())
		return memoEntry[V]{value: value, cost: cost}, nil
	})
	if err != nil {
		var zero V
		return zero, errors.Wrap(err, "cache", c.name, "compute value")
	}

	entry := result.(memoEntry[V])
	return entry.value, nil
}

// Clear empties the wrapper's cache and zeroes its statistics.
func (c *CachedFunc[V]) Clear() error {
	return c.registry.Clear(c.name)
}

// Stats returns the wrapper's statistics snapshot.
func (c *CachedFunc[V]) Stats() (Record, error) {
	return c.registry.Stats(c.name)
}

// withoutKeyword returns a copy of the args with the named keyword argument
// removed.
func (a Args) withoutKeyword(name string) Args {
	kw := make(map[string]any, len(a.Keyword))
	for k, v := range a.Keyword {
		if k == name {
			continue
		}
		kw[k] = v
	}
	return Args{Positional: a.Positional, Keyword: kw}
}
