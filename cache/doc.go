// Package cache provides function-result caching with pluggable eviction
// policies and centralized statistics.
//
// # Overview
//
// The package wraps pure computation functions with one of several caching
// policies:
//   - Memoize: unbounded in-process cache (no eviction)
//   - Timed: entries expire after a fixed time-to-live
//   - LRU: least recently used eviction above a size limit
//   - Disk: results persisted to files, surviving process restarts
//
// A wrapped function can additionally carry a per-call bypass switch: a
// designated keyword argument that, when false, routes the call straight to
// the computation without touching the cache (see WrapParametrized).
//
// Every wrapped function reports hits, misses and cumulative time saved to a
// Registry. A process-wide Default() registry is provided for decorator-style
// call sites; tests and embedders can construct isolated registries with
// NewRegistry().
//
// # Quick Start
//
//	fetch := func(ctx context.Context, args cache.Args) (string, error) {
//		url := args.Positional[0].(string)
//		return slowFetch(ctx, url)
//	}
//
//	cached := cache.Wrap("fetch_data", fetch, cache.NewTimed[string](5*time.Minute))
//
//	result, err := cached.Call(ctx, cache.NewArgs("https://example.com"))
//
// LRU-bounded cache:
//
//	policy, err := cache.NewLRU[*User](128)
//	if err != nil {
//		log.Fatal(err)
//	}
//	getUser := cache.Wrap("get_user", loadUser, policy)
//
// Disk-persisted cache with expiration:
//
//	policy, err := cache.NewDisk[Report]("report_builder", ".cache",
//		cache.WithExpiration[Report](time.Hour))
//
// # Key Derivation
//
// Keys are derived from call arguments by EncodeKey: positional arguments are
// stringified in call order, keyword arguments are sorted by name, so
// f(a=1, b=2) and f(b=2, a=1) share a key. Values whose string form is not
// injective may collide; callers should pass arguments with distinguishing
// string representations (numbers, strings, slices of these).
//
// # Statistics
//
// Registry tracks one record per wrapped function name: policy label, hit and
// miss counters, cumulative time saved, and creation time. A hit reports the
// recorded cost of the computation that produced the stored value as time
// saved. Clearing a record empties the underlying cache and zeroes its
// counters. All counters are mutex-protected and safe for concurrent callers.
//
// # Thread Safety
//
// All policies and the registry are safe for concurrent use. Concurrent
// misses for the same key are deduplicated with singleflight so the
// computation runs once per key at a time.
package cache
