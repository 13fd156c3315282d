// Package metric provides Prometheus metrics management for dashTemplate
// components. It wraps a private Prometheus registry with per-component
// registration, duplicate detection, and a set of core platform metrics.
package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AaronQLF/dashTemplate/errors"
)

// MetricsRegistrar defines the interface for registering component-specific metrics
type MetricsRegistrar interface {
	RegisterCounter(componentName, metricName string, counter prometheus.Counter) error
	RegisterGauge(componentName, metricName string, gauge prometheus.Gauge) error
	RegisterHistogram(componentName, metricName string, histogram prometheus.Histogram) error
	Unregister(componentName, metricName string) bool
}

// MetricsRegistry manages the registration and lifecycle of metrics
type MetricsRegistry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registeredMetrics  map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewMetricsRegistry creates a new metrics registry with core platform metrics
func NewMetricsRegistry() *MetricsRegistry {
	prometheusRegistry := prometheus.NewRegistry()

	registry := &MetricsRegistry{
		prometheusRegistry: prometheusRegistry,
		registeredMetrics:  make(map[string]prometheus.Collector),
	}

	// Initialize and register core metrics
	registry.Metrics = NewMetrics()
	registry.registerMetrics()

	// Add Go runtime metrics
	registry.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CoreMetrics returns the core platform metrics
func (r *MetricsRegistry) CoreMetrics() *Metrics {
	return r.Metrics
}

// RegisterCounter registers a counter metric for a component
func (r *MetricsRegistry) RegisterCounter(componentName, metricName string, counter prometheus.Counter) error {
	return r.register(componentName, metricName, counter, "RegisterCounter")
}

// RegisterGauge registers a gauge metric for a component
func (r *MetricsRegistry) RegisterGauge(componentName, metricName string, gauge prometheus.Gauge) error {
	return r.register(componentName, metricName, gauge, "RegisterGauge")
}

// RegisterHistogram registers a histogram metric for a component
func (r *MetricsRegistry) RegisterHistogram(componentName, metricName string, histogram prometheus.Histogram) error {
	return r.register(componentName, metricName, histogram, "RegisterHistogram")
}

// RegisterHistogramVec registers a histogram vector metric for a component
func (r *MetricsRegistry) RegisterHistogramVec(componentName, metricName string, histogramVec *prometheus.HistogramVec) error {
	return r.register(componentName, metricName, histogramVec, "RegisterHistogramVec")
}

// register adds a collector under "component.metric", rejecting duplicates.
func (r *MetricsRegistry) register(componentName, metricName string, collector prometheus.Collector, op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", componentName, metricName)

	if _, exists := r.registeredMetrics[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered for component %s", metricName, componentName),
			"MetricsRegistry", op, "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		// Check if it's a duplicate registration error from Prometheus
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			return errors.WrapInvalid(err, "MetricsRegistry", op,
				fmt.Sprintf("prometheus conflict for metric %s", metricName))
		}
		return errors.WrapFatal(err, "MetricsRegistry", op,
			"failed to register collector with prometheus")
	}

	r.registeredMetrics[key] = collector
	return nil
}

// Unregister removes a metric from the registry
func (r *MetricsRegistry) Unregister(componentName, metricName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", componentName, metricName)

	collector, exists := r.registeredMetrics[key]
	if !exists {
		return false
	}

	success := r.prometheusRegistry.Unregister(collector)
	if success {
		delete(r.registeredMetrics, key)
	}

	return success
}

// registerMetrics registers all core platform metrics
func (r *MetricsRegistry) registerMetrics() {
	r.prometheusRegistry.MustRegister(
		r.Metrics.InteractionsReceived,
		r.Metrics.InteractionsHandled,
		r.Metrics.TransitionDuration,
		r.Metrics.ErrorsTotal,
		r.Metrics.MatrixRows,
		r.Metrics.MatrixDepth,
		r.Metrics.RendersEmitted,
		r.Metrics.RenderDuration,
	)
}
