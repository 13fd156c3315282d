package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AaronQLF/dashTemplate/metric"
)

// wrapMetrics exports one wrapped function's cache behavior to Prometheus.
// Registration failures surface from newWrapMetrics; recording is nil-safe so
// wrappers without metrics skip it entirely.
type wrapMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	timeSaved prometheus.Counter
	entries   prometheus.Gauge
}

func newWrapMetrics(registry *metric.MetricsRegistry, functionName string) (*wrapMetrics, error) {
	m := &wrapMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dashtemplate_cache_hits_total",
			Help:        "Number of calls served from the cache",
			ConstLabels: prometheus.Labels{"function": functionName},
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dashtemplate_cache_misses_total",
			Help:        "Number of calls that required computation",
			ConstLabels: prometheus.Labels{"function": functionName},
		}),
		timeSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dashtemplate_cache_time_saved_seconds_total",
			Help:        "Cumulative computation time avoided by cache hits",
			ConstLabels: prometheus.Labels{"function": functionName},
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "dashtemplate_cache_entries",
			Help:        "Number of entries currently held",
			ConstLabels: prometheus.Labels{"function": functionName},
		}),
	}

	if err := registry.RegisterCounter(functionName, "cache_hits_total", m.hits); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(functionName, "cache_misses_total", m.misses); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(functionName, "cache_time_saved_seconds_total", m.timeSaved); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(functionName, "cache_entries", m.entries); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *wrapMetrics) recordHit(timeSavedSeconds float64) {
	if m == nil {
		return
	}
	m.hits.Inc()
	m.timeSaved.Add(timeSavedSeconds)
}

func (m *wrapMetrics) recordMiss() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

func (m *wrapMetrics) recordSize(entries int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(entries))
}
