package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCachedFunc_HitAvoidsRecompute(t *testing.T) {
	var calls atomic.Int64
	double := func(ctx context.Context, args Args) (int, error) {
		calls.Add(1)
		return args.Positional[0].(int) * 2, nil
	}

	r := NewRegistry()
	cached := Wrap("double", double, NewMemoize[int](), WithRegistry[int](r))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := cached.Call(ctx, NewArgs(21))
		if err != nil {
			t.Fatal(err)
		}
		if got != 42 {
			t.Errorf("expected 42, got %d", got)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("expected 1 computation, got %d", calls.Load())
	}
	rec, err := r.Stats("double")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Hits != 2 || rec.Misses != 1 {
		t.Errorf("expected 2 hits / 1 miss, got %d/%d", rec.Hits, rec.Misses)
	}
}

func TestCachedFunc_DistinctArgsDistinctEntries(t *testing.T) {
	identity := func(ctx context.Context, args Args) (int, error) {
		return args.Positional[0].(int), nil
	}
	r := NewRegistry()
	cached := Wrap("identity", identity, NewMemoize[int](), WithRegistry[int](r))

	ctx := context.Background()
	for _, n := range []int{1, 2, 3} {
		got, err := cached.Call(ctx, NewArgs(n))
		if err != nil {
			t.Fatal(err)
		}
		if got != n {
			t.Errorf("expected %d, got %d", n, got)
		}
	}

	rec, err := r.Stats("identity")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Misses != 3 || rec.Hits != 0 {
		t.Errorf("expected 3 misses / 0 hits, got %d/%d", rec.Misses, rec.Hits)
	}
}

func TestCachedFunc_ErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int64
	boom := errors.New("boom")
	flaky := func(ctx context.Context, args Args) (int, error) {
		if calls.Add(1) == 1 {
			return 0, boom
		}
		return 7, nil
	}

	r := NewRegistry()
	cached := Wrap("flaky", flaky, NewMemoize[int](), WithRegistry[int](r))

	ctx := context.Background()
	if _, err := cached.Call(ctx, NewArgs("k")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}

	got, err := cached.Call(ctx, NewArgs("k"))
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("expected recomputed 7, got %d", got)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}

	// The failed call updated no counters; the successful one is a miss.
	rec, err := r.Stats("flaky")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Hits != 0 || rec.Misses != 1 {
		t.Errorf("expected 0 hits / 1 miss, got %d/%d", rec.Hits, rec.Misses)
	}
}

func TestCachedFunc_TimedHitReportsTimeSaved(t *testing.T) {
	slow := func(ctx context.Context, args Args) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return "done", nil
	}
	r := NewRegistry()
	cached := Wrap("slow", slow, NewTimed[string](time.Minute), WithRegistry[string](r))

	ctx := context.Background()
	if _, err := cached.Call(ctx, NewArgs()); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.Call(ctx, NewArgs()); err != nil {
		t.Fatal(err)
	}

	rec, err := r.Stats("slow")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Hits != 1 {
		t.Fatalf("expected 1 hit, got %d", rec.Hits)
	}
	if rec.TimeSaved < 20*time.Millisecond {
		t.Errorf("expected at least 20ms saved, got %s", rec.TimeSaved)
	}
}

func TestCachedFunc_LRUEvictionBoundsEntries(t *testing.T) {
	var calls atomic.Int64
	identity := func(ctx context.Context, args Args) (int, error) {
		calls.Add(1)
		return args.Positional[0].(int), nil
	}
	policy, err := NewLRU[int](2)
	if err != nil {
		t.Fatal(err)
	}
	cached := Wrap("bounded", identity, policy, WithRegistry[int](NewRegistry()))

	ctx := context.Background()
	for _, n := range []int{1, 2, 3} {
		if _, err := cached.Call(ctx, NewArgs(n)); err != nil {
			t.Fatal(err)
		}
	}
	if policy.Len() != 2 {
		t.Errorf("expected 2 entries after eviction, got %d", policy.Len())
	}

	// 1 was evicted, so it recomputes; 3 is still cached.
	if _, err := cached.Call(ctx, NewArgs(3)); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.Call(ctx, NewArgs(1)); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 4 {
		t.Errorf("expected 4 computations, got %d", calls.Load())
	}
}

func TestCachedFunc_SingleflightDeduplicatesConcurrentMisses(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	slow := func(ctx context.Context, args Args) (int, error) {
		calls.Add(1)
		<-release
		return 99, nil
	}
	reg := NewRegistry()
	cached := Wrap("dedup", slow, NewMemoize[int](), WithRegistry[int](reg))

	ctx := context.Background()
	var wg sync.WaitGroup
	results := make([]int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := cached.Call(ctx, NewArgs("same"))
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = v
		}(i)
	}

	// Give the goroutines time to pile up on the same key.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected 1 computation across concurrent callers, got %d", calls.Load())
	}
	for i, v := range results {
		if v != 99 {
			t.Errorf("caller %d got %d, expected 99", i, v)
		}
	}

	// One computation means one miss: the waiters that shared its result
	// must not inflate the count.
	rec, err := reg.Stats("dedup")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Misses != 1 {
		t.Errorf("expected 1 recorded miss for 1 computation, got %d", rec.Misses)
	}
	if rec.Hits != 0 {
		t.Errorf("expected no hits before the value was cached, got %d", rec.Hits)
	}
}

// flakyLookupPolicy misses its first Lookup regardless of contents, pushing a
// caller past the fast path into the group's re-check.
type flakyLookupPolicy[V any] struct {
	Policy[V]
	skipped bool
}

func (p *flakyLookupPolicy[V]) Lookup(key string) (V, time.Duration, bool) {
	if !p.skipped {
		p.skipped = true
		var zero V
		return zero, 0, false
	}
	return p.Policy.Lookup(key)
}

func TestCachedFunc_GroupRecheckHitCountsAsHit(t *testing.T) {
	var calls atomic.Int64
	fn := func(ctx context.Context, args Args) (int, error) {
		calls.Add(1)
		return 7, nil
	}
	policy := &flakyLookupPolicy[int]{Policy: NewMemoize[int]()}
	reg := NewRegistry()
	cached := Wrap("recheck", fn, policy, WithRegistry[int](reg))

	// The value is already cached; the forced first miss makes the caller
	// enter the group, where the re-check finds it.
	key := EncodeKey([]any{1}, nil)
	policy.Policy.Store(key, 7, 10*time.Millisecond)

	v, err := cached.Call(context.Background(), NewArgs(1))
	if err != nil {
		t.Fatal(err)
	}
	if v != 7 {
		t.Errorf("expected cached 7, got %d", v)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no computation when the re-check hits, got %d", calls.Load())
	}

	rec, err := reg.Stats("recheck")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Hits != 1 || rec.Misses != 0 {
		t.Errorf("expected 1 hit and 0 misses, got %d hits and %d misses", rec.Hits, rec.Misses)
	}
	if rec.TimeSaved != 10*time.Millisecond {
		t.Errorf("expected recorded cost as time saved, got %v", rec.TimeSaved)
	}
}

func TestWrapParametrized_BypassSkipsCacheAndStats(t *testing.T) {
	var calls atomic.Int64
	compute := func(ctx context.Context, args Args) (int, error) {
		calls.Add(1)
		return args.Positional[0].(int) + 1, nil
	}
	r := NewRegistry()
	cached := WrapParametrized("inc", "use_cache", compute, WithRegistry[int](r))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := cached.Call(ctx, NewArgs(1).WithKeyword("use_cache", false))
		if err != nil {
			t.Fatal(err)
		}
		if got != 2 {
			t.Errorf("expected 2, got %d", got)
		}
	}

	if calls.Load() != 3 {
		t.Errorf("expected every bypassed call to compute, got %d calls", calls.Load())
	}
	rec, err := r.Stats("inc")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Hits != 0 || rec.Misses != 0 {
		t.Errorf("expected untouched stats for bypassed calls, got %d/%d", rec.Hits, rec.Misses)
	}
}

func TestWrapParametrized_SwitchDoesNotAffectKey(t *testing.T) {
	var calls atomic.Int64
	compute := func(ctx context.Context, args Args) (int, error) {
		calls.Add(1)
		if _, leaked := args.Keyword["use_cache"]; leaked {
			t.Error("control argument leaked into the computation")
		}
		return 5, nil
	}
	cached := WrapParametrized("f", "use_cache", compute, WithRegistry[int](NewRegistry()))

	ctx := context.Background()
	if _, err := cached.Call(ctx, NewArgs("x").WithKeyword("use_cache", true)); err != nil {
		t.Fatal(err)
	}
	// Same underlying args without the switch share the entry.
	if _, err := cached.Call(ctx, NewArgs("x")); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected shared cache entry, got %d computations", calls.Load())
	}
}

func TestWrapParametrized_NonBoolSwitchCaches(t *testing.T) {
	var calls atomic.Int64
	compute := func(ctx context.Context, args Args) (int, error) {
		calls.Add(1)
		return 1, nil
	}
	cached := WrapParametrized("f", "use_cache", compute, WithRegistry[int](NewRegistry()))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := cached.Call(ctx, NewArgs("x").WithKeyword("use_cache", "no")); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected non-bool switch to leave caching enabled, got %d calls", calls.Load())
	}
}

func TestCachedFunc_ClearResetsCacheAndStats(t *testing.T) {
	var calls atomic.Int64
	compute := func(ctx context.Context, args Args) (int, error) {
		calls.Add(1)
		return 1, nil
	}
	r := NewRegistry()
	cached := Wrap("f", compute, NewMemoize[int](), WithRegistry[int](r))

	ctx := context.Background()
	if _, err := cached.Call(ctx, NewArgs("k")); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.Call(ctx, NewArgs("k")); err != nil {
		t.Fatal(err)
	}

	if err := cached.Clear(); err != nil {
		t.Fatal(err)
	}

	rec, err := cached.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Hits != 0 || rec.Misses != 0 {
		t.Errorf("expected zeroed stats, got %d/%d", rec.Hits, rec.Misses)
	}

	// Recomputes after clear.
	if _, err := cached.Call(ctx, NewArgs("k")); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected recompute after clear, got %d calls", calls.Load())
	}
}
