package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronQLF/dashTemplate/errors"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NotNil(t, registry)
	require.NotNil(t, registry.PrometheusRegistry())
	require.NotNil(t, registry.CoreMetrics())
}

func TestRegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter_total",
		Help: "test counter",
	})

	err := registry.RegisterCounter("matrix_controller", "clicks", counter)
	require.NoError(t, err)

	// Duplicate registration under the same component/metric key is rejected
	other := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "other_counter_total",
		Help: "other counter",
	})
	err = registry.RegisterCounter("matrix_controller", "clicks", other)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegisterGaugeAndHistogram(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "test gauge",
	})
	require.NoError(t, registry.RegisterGauge("cache", "size", gauge))

	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "test_histogram_seconds",
		Help: "test histogram",
	})
	require.NoError(t, registry.RegisterHistogram("cache", "lookup_seconds", histogram))
}

func TestPrometheusLevelConflict(t *testing.T) {
	registry := NewMetricsRegistry()

	// Same underlying metric name registered under different registry keys
	// still conflicts at the Prometheus level.
	a := prometheus.NewCounter(prometheus.CounterOpts{Name: "dup_total", Help: "a"})
	b := prometheus.NewCounter(prometheus.CounterOpts{Name: "dup_total", Help: "a"})

	require.NoError(t, registry.RegisterCounter("compA", "dup", a))
	err := registry.RegisterCounter("compB", "dup", b)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "removable_total",
		Help: "removable",
	})
	require.NoError(t, registry.RegisterCounter("cache", "removable", counter))

	assert.True(t, registry.Unregister("cache", "removable"))
	assert.False(t, registry.Unregister("cache", "removable"))

	// Re-registration after unregister succeeds
	require.NoError(t, registry.RegisterCounter("cache", "removable", counter))
}

func TestCoreMetricsRecording(t *testing.T) {
	registry := NewMetricsRegistry()
	core := registry.CoreMetrics()

	// Smoke-test the recording helpers; values are asserted by gathering.
	core.RecordInteractionReceived("matrix-1", "cell_click")
	core.RecordInteractionHandled("matrix-1", "cell_click", "ok")
	core.RecordTransitionDuration("matrix-1", "expand_one", 5*time.Millisecond)
	core.RecordError("controller", "invalid_row")
	core.RecordMatrixShape("matrix-1", 12, 2)
	core.RecordRender("matrix-1", 2*time.Millisecond)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, fam := range families {
		names[fam.GetName()] = true
	}

	assert.True(t, names["dashtemplate_interactions_received_total"])
	assert.True(t, names["dashtemplate_interactions_handled_total"])
	assert.True(t, names["dashtemplate_matrix_transition_duration_seconds"])
	assert.True(t, names["dashtemplate_errors_total"])
	assert.True(t, names["dashtemplate_matrix_visible_rows"])
	assert.True(t, names["dashtemplate_ui_renders_total"])
}
