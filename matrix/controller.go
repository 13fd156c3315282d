package matrix

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AaronQLF/dashTemplate/dataset"
	"github.com/AaronQLF/dashTemplate/errors"
	"github.com/AaronQLF/dashTemplate/metric"
)

// Controller owns one drill matrix and applies interactions to it. A toggle
// click expands a collapsed row and collapses an expanded one; leaf clicks
// are ignored. Every applied transition is pushed to the registered snapshot
// listener. All methods are safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	id        string
	projector *Projector
	matrix    Matrix
	logger    *slog.Logger
	metrics   *metric.MetricsRegistry
	onChange  func(Matrix)
	now       func() time.Time
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger routes the controller's logs to the given logger.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithControllerMetrics reports interaction counts, transition durations and
// matrix shape to the given metrics registry.
func WithControllerMetrics(registry *metric.MetricsRegistry) ControllerOption {
	return func(c *Controller) {
		c.metrics = registry
	}
}

// WithChangeListener registers fn to receive a snapshot after every applied
// transition. The snapshot is the listener's to keep; the controller never
// touches it again.
func WithChangeListener(fn func(Matrix)) ControllerOption {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// NewController builds a controller over the source and hierarchy and
// performs the initial projection.
func NewController(source dataset.Table, groupBy []string, metrics []dataset.MetricSpec, opts ...ControllerOption) (*Controller, error) {
	projector, err := NewProjector(source, groupBy, metrics)
	if err != nil {
		return nil, err
	}
	initial, err := projector.Project()
	if err != nil {
		return nil, err
	}

	c := &Controller{
		id:        uuid.New().String(),
		projector: projector,
		matrix:    initial,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("controller", c.id)
	c.recordShape()
	return c, nil
}

// ID returns the controller's unique identifier, used in logs and as the
// UI element namespace.
func (c *Controller) ID() string { return c.id }

// Matrix returns a snapshot of the current state. The snapshot is
// independent; mutating it does not affect the controller.
func (c *Controller) Matrix() Matrix {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matrix.Clone()
}

// HandleToggle applies the click on the given row: expand when collapsed,
// collapse when expanded. Clicks on leaf rows or stale indices leave the
// matrix unchanged and report no error; the interaction is logged and
// counted as ignored.
func (c *Controller) HandleToggle(rowIdx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.CoreMetrics().RecordInteractionReceived(c.id, "toggle")
	}

	if rowIdx < 0 || rowIdx >= len(c.matrix.Rows) {
		c.logger.Warn("ignoring toggle for missing row", "row", rowIdx, "rows", len(c.matrix.Rows))
		if c.metrics != nil {
			c.metrics.CoreMetrics().RecordInteractionHandled(c.id, "toggle", "ignored")
		}
		return nil
	}

	var (
		next      Matrix
		err       error
		operation string
	)
	start := c.now()
	switch state := c.matrix.Rows[rowIdx].State; {
	case state.CanExpand():
		operation = "expand"
		next, err = c.projector.ExpandOne(c.matrix, rowIdx)
	case state.CanCollapse():
		operation = "collapse"
		next, err = c.projector.CollapseOne(c.matrix, rowIdx)
	default:
		c.logger.Debug("ignoring toggle on leaf row", "row", rowIdx)
		if c.metrics != nil {
			c.metrics.CoreMetrics().RecordInteractionHandled(c.id, "toggle", "ignored")
		}
		return nil
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.CoreMetrics().RecordError("matrix", operation)
			c.metrics.CoreMetrics().RecordInteractionHandled(c.id, "toggle", "error")
		}
		c.logger.Error("toggle failed", "operation", operation, "row", rowIdx, "error", err)
		return err
	}

	c.apply(next, operation, start)
	return nil
}

// ExpandAll replaces the state with the fully expanded matrix.
func (c *Controller) ExpandAll() error {
	return c.replace("expand_all", c.projector.ExpandAll)
}

// CollapseAll replaces the state with the initial projection.
func (c *Controller) CollapseAll() error {
	return c.replace("collapse_all", c.projector.CollapseAll)
}

// Reset rebuilds the controller over a new source table, keeping the
// hierarchy and metric specs, and collapses everything.
func (c *Controller) Reset(source dataset.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	projector, err := NewProjector(source, c.projector.groupBy, c.projector.metrics)
	if err != nil {
		return errors.Wrap(err, "matrix", "Reset", "rebuild projector")
	}
	initial, err := projector.Project()
	if err != nil {
		return errors.Wrap(err, "matrix", "Reset", "project new source")
	}
	c.projector = projector
	c.apply(initial, "reset", c.now())
	return nil
}

func (c *Controller) replace(operation string, build func() (Matrix, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.CoreMetrics().RecordInteractionReceived(c.id, operation)
	}
	start := c.now()
	next, err := build()
	if err != nil {
		if c.metrics != nil {
			c.metrics.CoreMetrics().RecordError("matrix", operation)
			c.metrics.CoreMetrics().RecordInteractionHandled(c.id, operation, "error")
		}
		c.logger.Error("transition failed", "operation", operation, "error", err)
		return err
	}
	c.apply(next, operation, start)
	return nil
}

// apply installs the new state and fans out observability. Caller holds the
// lock.
func (c *Controller) apply(next Matrix, operation string, start time.Time) {
	c.matrix = next
	elapsed := c.now().Sub(start)

	c.logger.Info("matrix transition",
		"operation", operation,
		"rows", next.Len(),
		"depth", next.Depth(),
		"duration", elapsed)

	if c.metrics != nil {
		c.metrics.CoreMetrics().RecordInteractionHandled(c.id, operation, "applied")
		c.metrics.CoreMetrics().RecordTransitionDuration(c.id, operation, elapsed)
	}
	c.recordShape()

	if c.onChange != nil {
		c.onChange(c.matrix.Clone())
	}
}

func (c *Controller) recordShape() {
	if c.metrics == nil {
		return
	}
	c.metrics.CoreMetrics().RecordMatrixShape(c.id, c.matrix.Len(), c.matrix.Depth())
}
