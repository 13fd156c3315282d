package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AaronQLF/dashTemplate/errors"
)

// Record is a point-in-time snapshot of one wrapped function's statistics.
type Record struct {
	Policy    string        `json:"policy"`
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	TimeSaved time.Duration `json:"time_saved"`
	CreatedAt time.Time     `json:"created_at"`
}

// Info describes one registered cache for operational inspection.
type Info struct {
	Policy    string    `json:"policy"`
	Entries   int       `json:"entries"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary aggregates statistics across all registered functions.
type Summary struct {
	PerFunction    map[string]Record `json:"per_function"`
	TotalFunctions int               `json:"total_functions"`
	TotalHits      int64             `json:"total_hits"`
	TotalMisses    int64             `json:"total_misses"`
	TotalTimeSaved time.Duration     `json:"total_time_saved"`
}

// record is the live mutable state behind a Record snapshot. The clear and
// size funcs reach into the policy that registered it.
type record struct {
	policy    string
	hits      int64
	misses    int64
	timeSaved time.Duration
	createdAt time.Time
	clear     func()
	size      func() int
}

// Registry tracks hit, miss and time-saved statistics per wrapped function.
// All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*record
	now     func() time.Time
}

// NewRegistry creates an empty registry. Wrapped functions default to the
// process-wide Default() registry unless given one explicitly.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*record),
		now:     time.Now,
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds a record for name with zeroed counters. Registering a name
// again replaces the previous record and discards its statistics; callers
// wrapping the same function twice get a fresh slate, not merged counters.
func (r *Registry) Register(name, policy string, clear func(), size func() int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[name] = &record{
		policy:    policy,
		createdAt: r.now(),
		clear:     clear,
		size:      size,
	}
}

// RecordHit increments the hit counter for name and accumulates the time
// saved by serving the stored value. Unregistered names are ignored.
func (r *Registry) RecordHit(name string, timeSaved time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[name]
	if !ok {
		return
	}
	rec.hits++
	rec.timeSaved += timeSaved
}

// RecordMiss increments the miss counter for name. Unregistered names are
// ignored.
func (r *Registry) RecordMiss(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[name]
	if !ok {
		return
	}
	rec.misses++
}

// Stats returns the statistics snapshot for one function.
func (r *Registry) Stats(name string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[name]
	if !ok {
		return Record{}, errors.Wrap(
			fmt.Errorf("%w: %s", errors.ErrNotRegistered, name),
			"cache", "Stats", "look up function record")
	}
	return rec.snapshot(), nil
}

// StatsAll returns per-function snapshots plus cross-function totals.
func (r *Registry) StatsAll() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := Summary{
		PerFunction:    make(map[string]Record, len(r.records)),
		TotalFunctions: len(r.records),
	}
	for name, rec := range r.records {
		snap := rec.snapshot()
		summary.PerFunction[name] = snap
		summary.TotalHits += snap.Hits
		summary.TotalMisses += snap.Misses
		summary.TotalTimeSaved += snap.TimeSaved
	}
	return summary
}

// Clear empties the named function's cache and zeroes its counters. The
// record itself stays registered.
func (r *Registry) Clear(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[name]
	if !ok {
		return errors.Wrap(
			fmt.Errorf("%w: %s", errors.ErrNotRegistered, name),
			"cache", "Clear", "look up function record")
	}
	rec.reset()
	return nil
}

// ClearAll empties every registered cache and zeroes every counter.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		rec.reset()
	}
}

// InfoAll describes every registered cache: policy label, current entry
// count and creation time, keyed by function name.
func (r *Registry) InfoAll() map[string]Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make(map[string]Info, len(r.records))
	for name, rec := range r.records {
		entries := 0
		if rec.size != nil {
			entries = rec.size()
		}
		infos[name] = Info{
			Policy:    rec.policy,
			Entries:   entries,
			CreatedAt: rec.createdAt,
		}
	}
	return infos
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (rec *record) snapshot() Record {
	return Record{
		Policy:    rec.policy,
		Hits:      rec.hits,
		Misses:    rec.misses,
		TimeSaved: rec.timeSaved,
		CreatedAt: rec.createdAt,
	}
}

// reset empties the backing cache and zeroes the counters. Creation time is
// preserved: it records when the function was wrapped, not when it was last
// cleared.
func (rec *record) reset() {
	if rec.clear != nil {
		rec.clear()
	}
	rec.hits = 0
	rec.misses = 0
	rec.timeSaved = 0
}
