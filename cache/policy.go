package cache

import "time"

// Policy stores computed values under derived keys and applies an eviction
// rule. Implementations must be safe for concurrent use.
type Policy[V any] interface {
	// Lookup returns the value stored under key together with the recorded
	// cost of the computation that produced it. ok is false when the key is
	// absent or the entry has expired; expired entries are removed as a side
	// effect of the failed lookup.
	Lookup(key string) (value V, cost time.Duration, ok bool)

	// Store records a freshly computed value and its computation cost.
	// Storing never fails; policies that persist externally swallow storage
	// errors and degrade to recomputation.
	Store(key string, value V, cost time.Duration)

	// EvictIfNeeded applies the policy's eviction rule. Called after every
	// store; a no-op for unbounded policies.
	EvictIfNeeded()

	// Clear removes all entries.
	Clear()

	// Len reports the number of entries currently held.
	Len() int

	// Label names the policy kind for registry reporting.
	Label() string
}
