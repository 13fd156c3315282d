// Package worker provides the bounded, strictly ordered queue behind
// interactive surfaces. A single consumer goroutine applies submitted items
// in arrival order, so state transitions funneled through a Queue never
// interleave. Submission is non-blocking: when the buffer is full the item
// is dropped and counted rather than stalling the producer.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AaronQLF/dashTemplate/metric"
)

const defaultCapacity = 256

type queueState int

const (
	queueIdle queueState = iota
	queueRunning
	queueStopped
)

// Queue serializes work of type T through one consumer goroutine.
type Queue[T any] struct {
	capacity int
	handle   func(context.Context, T) error

	mu    sync.Mutex
	state queueState
	items chan T
	done  chan struct{}

	submitted atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64

	metricsRegistry *metric.MetricsRegistry
	name            string
	metrics         *queueMetrics
}

type queueMetrics struct {
	depth          prometheus.Gauge
	submitted      prometheus.Counter
	processed      prometheus.Counter
	failed         prometheus.Counter
	dropped        prometheus.Counter
	handleDuration prometheus.Histogram
}

// Option configures a Queue.
type Option[T any] func(*Queue[T])

// WithMetricsRegistry publishes queue metrics under the given name,
// which also serves as the component name for registration.
func WithMetricsRegistry[T any](registry *metric.MetricsRegistry, name string) Option[T] {
	return func(q *Queue[T]) {
		q.metricsRegistry = registry
		q.name = name
	}
}

// NewQueue creates a queue with the given buffer capacity and handler.
// A capacity of zero or less falls back to the default. A nil handler
// panics with ErrNilHandler.
func NewQueue[T any](capacity int, handle func(context.Context, T) error, opts ...Option[T]) *Queue[T] {
	if handle == nil {
		panic(ErrNilHandler)
	}
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	q := &Queue[T]{
		capacity: capacity,
		handle:   handle,
		items:    make(chan T, capacity),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(q)
	}

	if q.metricsRegistry != nil && q.name != "" {
		q.initializeMetrics()
	}

	return q
}

func (q *Queue[T]) initializeMetrics() {
	m := &queueMetrics{
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: q.name + "_depth",
			Help: "Items waiting in the queue",
		}),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: q.name + "_submitted_total",
			Help: "Items accepted into the queue",
		}),
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: q.name + "_processed_total",
			Help: "Items handled by the consumer",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: q.name + "_failed_total",
			Help: "Items whose handler returned an error",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: q.name + "_dropped_total",
			Help: "Items rejected because the buffer was full",
		}),
		handleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    q.name + "_handle_duration_seconds",
			Help:    "Time spent handling one item",
			Buckets: prometheus.DefBuckets,
		}),
	}

	if err := q.metricsRegistry.RegisterGauge(q.name, "depth", m.depth); err != nil {
		return
	}
	counters := []struct {
		suffix  string
		counter prometheus.Counter
	}{
		{"submitted_total", m.submitted},
		{"processed_total", m.processed},
		{"failed_total", m.failed},
		{"dropped_total", m.dropped},
	}
	for _, c := range counters {
		if err := q.metricsRegistry.RegisterCounter(q.name, c.suffix, c.counter); err != nil {
			return
		}
	}
	if err := q.metricsRegistry.RegisterHistogram(q.name, "handle_duration_seconds", m.handleDuration); err != nil {
		return
	}

	q.metrics = m
}

// Start launches the consumer goroutine. The context is the abort path:
// cancelling it makes the consumer exit immediately, abandoning anything
// still buffered. Use Stop for an orderly drain.
func (q *Queue[T]) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch q.state {
	case queueRunning:
		return ErrAlreadyStarted
	case queueStopped:
		return ErrStopped
	}
	q.state = queueRunning

	go q.run(ctx)
	return nil
}

func (q *Queue[T]) run(ctx context.Context) {
	defer close(q.done)

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-q.items:
			if !ok {
				return
			}
			q.handleItem(ctx, item)
		}
	}
}

func (q *Queue[T]) handleItem(ctx context.Context, item T) {
	start := time.Now()
	err := q.handle(ctx, item)

	q.processed.Add(1)
	if err != nil {
		q.failed.Add(1)
	}

	if q.metrics != nil {
		q.metrics.processed.Inc()
		if err != nil {
			q.metrics.failed.Inc()
		}
		q.metrics.handleDuration.Observe(time.Since(start).Seconds())
		q.metrics.depth.Set(float64(len(q.items)))
	}
}

// Submit enqueues an item without blocking. It returns ErrQueueFull when
// the buffer is at capacity; the item is counted as dropped.
func (q *Queue[T]) Submit(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch q.state {
	case queueIdle:
		return ErrNotStarted
	case queueStopped:
		return ErrStopped
	}

	select {
	case q.items <- item:
		q.submitted.Add(1)
		if q.metrics != nil {
			q.metrics.submitted.Inc()
			q.metrics.depth.Set(float64(len(q.items)))
		}
		return nil
	default:
		q.dropped.Add(1)
		if q.metrics != nil {
			q.metrics.dropped.Inc()
		}
		return ErrQueueFull
	}
}

// Stop closes intake and waits for the consumer to drain everything
// already buffered. It returns ErrStopTimeout if the drain does not
// finish in time. Stop is idempotent.
func (q *Queue[T]) Stop(timeout time.Duration) error {
	q.mu.Lock()
	if q.state != queueRunning {
		q.mu.Unlock()
		return nil
	}
	q.state = queueStopped
	close(q.items)
	q.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-q.done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// QueueStats is a point-in-time snapshot of queue counters.
type QueueStats struct {
	Capacity  int
	Depth     int
	Submitted int64
	Processed int64
	Failed    int64
	Dropped   int64
}

// Stats returns current counters. Depth is approximate while the
// consumer is running.
func (q *Queue[T]) Stats() QueueStats {
	return QueueStats{
		Capacity:  q.capacity,
		Depth:     len(q.items),
		Submitted: q.submitted.Load(),
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
	}
}
