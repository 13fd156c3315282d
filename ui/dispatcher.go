package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/AaronQLF/dashTemplate/errors"
	"github.com/AaronQLF/dashTemplate/metric"
	"github.com/AaronQLF/dashTemplate/pkg/worker"
)

// Dispatcher pumps events into a Binder through a worker.Queue, so
// transitions apply one at a time in submission order even when the surface
// emits clicks faster than they can be handled. Submission is non-blocking:
// events past the queue bound are rejected, not buffered without limit.
type Dispatcher struct {
	binder *Binder
	queue  *worker.Queue[Event]
	logger *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcherConfig)

type dispatcherConfig struct {
	queueSize int
	logger    *slog.Logger
	metrics   *metric.MetricsRegistry
}

// WithQueueSize bounds the number of pending events. Defaults to 256.
func WithQueueSize(n int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		cfg.queueSize = n
	}
}

// WithDispatcherLogger routes the dispatcher's logs to the given logger.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		cfg.logger = logger
	}
}

// WithDispatcherMetrics exports queue depth and processing stats to the
// given metrics registry.
func WithDispatcherMetrics(registry *metric.MetricsRegistry) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		cfg.metrics = registry
	}
}

// NewDispatcher creates a dispatcher in front of the binder. Call Start
// before submitting events.
func NewDispatcher(binder *Binder, opts ...DispatcherOption) *Dispatcher {
	cfg := dispatcherConfig{
		queueSize: 256,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Dispatcher{
		binder: binder,
		logger: cfg.logger,
	}
	process := func(ctx context.Context, ev Event) error {
		if err := d.binder.Handle(ev); err != nil {
			d.logger.Error("event handling failed",
				"element", ev.ElementID, "event", ev.Name, "error", err)
			return err
		}
		return nil
	}

	queueOpts := []worker.Option[Event]{}
	if cfg.metrics != nil {
		queueOpts = append(queueOpts, worker.WithMetricsRegistry[Event](cfg.metrics, "interaction_pump"))
	}
	d.queue = worker.NewQueue(cfg.queueSize, process, queueOpts...)
	return d
}

// Start begins draining the queue. The context bounds the pump's lifetime.
func (d *Dispatcher) Start(ctx context.Context) error {
	if err := d.queue.Start(ctx); err != nil {
		return errors.Wrap(err, "ui", "Dispatcher.Start", "start pump")
	}
	return nil
}

// Submit enqueues an event without blocking. A full queue returns
// worker.ErrQueueFull; the surface decides whether to drop or retry.
func (d *Dispatcher) Submit(ev Event) error {
	return d.queue.Submit(ev)
}

// Stop drains pending events and shuts the pump down, waiting up to timeout.
func (d *Dispatcher) Stop(timeout time.Duration) error {
	if err := d.queue.Stop(timeout); err != nil {
		return errors.Wrap(err, "ui", "Dispatcher.Stop", "stop pump")
	}
	return nil
}

// Stats reports the pump's queue and processing counters.
func (d *Dispatcher) Stats() worker.QueueStats {
	return d.queue.Stats()
}
