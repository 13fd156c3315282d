package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not widget-specific)
type Metrics struct {
	// Interaction metrics
	InteractionsReceived *prometheus.CounterVec
	InteractionsHandled  *prometheus.CounterVec
	TransitionDuration   *prometheus.HistogramVec
	ErrorsTotal          *prometheus.CounterVec

	// Matrix metrics
	MatrixRows      *prometheus.GaugeVec
	MatrixDepth     *prometheus.GaugeVec
	RendersEmitted  *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		InteractionsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dashtemplate",
				Subsystem: "interactions",
				Name:      "received_total",
				Help:      "Total number of interaction events received",
			},
			[]string{"element", "event"},
		),

		InteractionsHandled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dashtemplate",
				Subsystem: "interactions",
				Name:      "handled_total",
				Help:      "Total number of interaction events handled",
			},
			[]string{"element", "event", "status"},
		),

		TransitionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dashtemplate",
				Subsystem: "matrix",
				Name:      "transition_duration_seconds",
				Help:      "Expand/collapse transition duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"matrix", "operation"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dashtemplate",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"component", "type"},
		),

		MatrixRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "dashtemplate",
				Subsystem: "matrix",
				Name:      "visible_rows",
				Help:      "Number of rows currently materialized in the flattened matrix",
			},
			[]string{"matrix"},
		),

		MatrixDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "dashtemplate",
				Subsystem: "matrix",
				Name:      "max_level",
				Help:      "Deepest level currently materialized in the flattened matrix",
			},
			[]string{"matrix"},
		),

		RendersEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dashtemplate",
				Subsystem: "ui",
				Name:      "renders_total",
				Help:      "Total number of snapshots emitted to the UI collaborator",
			},
			[]string{"matrix"},
		),

		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dashtemplate",
				Subsystem: "ui",
				Name:      "render_duration_seconds",
				Help:      "Snapshot render duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"matrix"},
		),
	}
}

// RecordInteractionReceived increments the received interaction counter
func (c *Metrics) RecordInteractionReceived(element, event string) {
	c.InteractionsReceived.WithLabelValues(element, event).Inc()
}

// RecordInteractionHandled increments the handled interaction counter
func (c *Metrics) RecordInteractionHandled(element, event, status string) {
	c.InteractionsHandled.WithLabelValues(element, event, status).Inc()
}

// RecordTransitionDuration records an expand/collapse transition time
func (c *Metrics) RecordTransitionDuration(matrix, operation string, duration time.Duration) {
	c.TransitionDuration.WithLabelValues(matrix, operation).Observe(duration.Seconds())
}

// RecordError increments the error counter
func (c *Metrics) RecordError(component, errorType string) {
	c.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordMatrixShape updates row count and depth gauges for a matrix
func (c *Metrics) RecordMatrixShape(matrix string, rows, maxLevel int) {
	c.MatrixRows.WithLabelValues(matrix).Set(float64(rows))
	c.MatrixDepth.WithLabelValues(matrix).Set(float64(maxLevel))
}

// RecordRender increments the render counter and records its duration
func (c *Metrics) RecordRender(matrix string, duration time.Duration) {
	c.RendersEmitted.WithLabelValues(matrix).Inc()
	c.RenderDuration.WithLabelValues(matrix).Observe(duration.Seconds())
}
