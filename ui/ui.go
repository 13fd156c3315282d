// Package ui connects drill-matrix controllers to a rendering surface. A
// Binder routes interaction events to the controller owning the clicked
// element and re-renders after every applied transition; a Dispatcher pumps
// events through a single worker so transitions stay serialized no matter
// how fast the surface emits them.
package ui

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AaronQLF/dashTemplate/errors"
	"github.com/AaronQLF/dashTemplate/matrix"
	"github.com/AaronQLF/dashTemplate/metric"
)

// Event names for the interactions a rendering surface emits.
const (
	EventToggle      = "toggle"
	EventExpandAll   = "expand_all"
	EventCollapseAll = "collapse_all"
)

// Event is one user interaction: which element it came from, what happened,
// and the clicked cell for toggles. ColumnID is informational; dispatch
// depends only on the event name and row.
type Event struct {
	ElementID string `json:"element_id"`
	Name      string `json:"name"`
	RowIndex  int    `json:"row_index,omitempty"`
	ColumnID  string `json:"column_id,omitempty"`
}

// Renderer draws a matrix snapshot on whatever surface hosts the dashboard.
type Renderer interface {
	RenderMatrix(elementID string, m matrix.Matrix) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(elementID string, m matrix.Matrix) error

func (f RendererFunc) RenderMatrix(elementID string, m matrix.Matrix) error {
	return f(elementID, m)
}

// Binder routes events to controllers by element ID and re-renders after
// every applied transition. Safe for concurrent use, though transitions are
// normally serialized by a Dispatcher in front of it.
type Binder struct {
	mu          sync.RWMutex
	controllers map[string]*matrix.Controller
	renderer    Renderer
	logger      *slog.Logger
	metrics     *metric.MetricsRegistry
	now         func() time.Time
}

// BinderOption configures a Binder.
type BinderOption func(*Binder)

// WithBinderLogger routes the binder's logs to the given logger.
func WithBinderLogger(logger *slog.Logger) BinderOption {
	return func(b *Binder) {
		b.logger = logger
	}
}

// WithBinderMetrics reports render counts and durations to the given metrics
// registry.
func WithBinderMetrics(registry *metric.MetricsRegistry) BinderOption {
	return func(b *Binder) {
		b.metrics = registry
	}
}

// NewBinder creates a binder drawing on the given renderer.
func NewBinder(renderer Renderer, opts ...BinderOption) *Binder {
	b := &Binder{
		controllers: make(map[string]*matrix.Controller),
		renderer:    renderer,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bind registers the controller under its ID and renders its current state.
func (b *Binder) Bind(c *matrix.Controller) error {
	b.mu.Lock()
	b.controllers[c.ID()] = c
	b.mu.Unlock()
	return b.render(c.ID(), c.Matrix())
}

// Unbind removes the controller for the element; later events for it are
// dropped as stale.
func (b *Binder) Unbind(elementID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.controllers, elementID)
}

// Handle applies one event to its controller and re-renders. Events for
// unbound elements are dropped with a log line; a rendering surface may
// deliver clicks for elements that have since been replaced. Unknown event
// names are invalid.
func (b *Binder) Handle(ev Event) error {
	b.mu.RLock()
	c, ok := b.controllers[ev.ElementID]
	b.mu.RUnlock()
	if !ok {
		b.logger.Warn("dropping event for unbound element",
			"element", ev.ElementID, "event", ev.Name)
		return nil
	}

	var err error
	switch ev.Name {
	case EventToggle:
		err = c.HandleToggle(ev.RowIndex)
	case EventExpandAll:
		err = c.ExpandAll()
	case EventCollapseAll:
		err = c.CollapseAll()
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown event %q for element %s", ev.Name, ev.ElementID),
			"ui", "Handle", "dispatch event")
	}
	if err != nil {
		return errors.Wrap(err, "ui", "Handle", "apply event")
	}
	return b.render(ev.ElementID, c.Matrix())
}

func (b *Binder) render(elementID string, m matrix.Matrix) error {
	if b.renderer == nil {
		return nil
	}
	start := b.now()
	if err := b.renderer.RenderMatrix(elementID, m); err != nil {
		if b.metrics != nil {
			b.metrics.CoreMetrics().RecordError("ui", "render")
		}
		return errors.Wrap(err, "ui", "render", "draw matrix")
	}
	if b.metrics != nil {
		b.metrics.CoreMetrics().RecordRender(elementID, b.now().Sub(start))
	}
	return nil
}
