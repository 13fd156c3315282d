package ui

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronQLF/dashTemplate/dataset"
	"github.com/AaronQLF/dashTemplate/errors"
	"github.com/AaronQLF/dashTemplate/matrix"
)

// recordingRenderer captures every render call for inspection.
type recordingRenderer struct {
	mu      sync.Mutex
	renders []matrix.Matrix
	fail    bool
}

func (r *recordingRenderer) RenderMatrix(elementID string, m matrix.Matrix) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return fmt.Errorf("surface unavailable")
	}
	r.renders = append(r.renders, m)
	return nil
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.renders)
}

func (r *recordingRenderer) last() matrix.Matrix {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders[len(r.renders)-1]
}

func newTestController(t *testing.T) *matrix.Controller {
	t.Helper()
	source, err := dataset.NewTable(
		[]string{"region", "country", "revenue"},
		[]dataset.Row{
			{"region": "EU", "country": "DE", "revenue": 100.0},
			{"region": "EU", "country": "FR", "revenue": 80.0},
			{"region": "US", "country": "US", "revenue": 200.0},
		},
	)
	require.NoError(t, err)
	c, err := matrix.NewController(source, []string{"region", "country"}, []dataset.MetricSpec{
		{Column: "revenue", Agg: dataset.AggSum},
	})
	require.NoError(t, err)
	return c
}

func TestBinder_BindRendersInitialState(t *testing.T) {
	renderer := &recordingRenderer{}
	b := NewBinder(renderer)
	c := newTestController(t)

	require.NoError(t, b.Bind(c))
	require.Equal(t, 1, renderer.count())
	assert.Equal(t, 2, renderer.last().Len())
}

func TestBinder_ToggleEventExpandsAndRerenders(t *testing.T) {
	renderer := &recordingRenderer{}
	b := NewBinder(renderer)
	c := newTestController(t)
	require.NoError(t, b.Bind(c))

	err := b.Handle(Event{ElementID: c.ID(), Name: EventToggle, RowIndex: 0})
	require.NoError(t, err)

	require.Equal(t, 2, renderer.count())
	m := renderer.last()
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, matrix.StateExpanded, m.Rows[0].State)
}

func TestBinder_ExpandAllAndCollapseAllEvents(t *testing.T) {
	renderer := &recordingRenderer{}
	b := NewBinder(renderer)
	c := newTestController(t)
	require.NoError(t, b.Bind(c))

	require.NoError(t, b.Handle(Event{ElementID: c.ID(), Name: EventExpandAll}))
	assert.Equal(t, 5, renderer.last().Len())

	require.NoError(t, b.Handle(Event{ElementID: c.ID(), Name: EventCollapseAll}))
	assert.Equal(t, 2, renderer.last().Len())
}

func TestBinder_UnboundElementIsDropped(t *testing.T) {
	renderer := &recordingRenderer{}
	b := NewBinder(renderer)

	err := b.Handle(Event{ElementID: "gone", Name: EventToggle})
	require.NoError(t, err)
	assert.Equal(t, 0, renderer.count())
}

func TestBinder_UnbindStopsDelivery(t *testing.T) {
	renderer := &recordingRenderer{}
	b := NewBinder(renderer)
	c := newTestController(t)
	require.NoError(t, b.Bind(c))

	b.Unbind(c.ID())
	require.NoError(t, b.Handle(Event{ElementID: c.ID(), Name: EventToggle, RowIndex: 0}))

	// Only the initial bind render happened.
	assert.Equal(t, 1, renderer.count())
}

func TestBinder_UnknownEventIsInvalid(t *testing.T) {
	b := NewBinder(&recordingRenderer{})
	c := newTestController(t)
	require.NoError(t, b.Bind(c))

	err := b.Handle(Event{ElementID: c.ID(), Name: "double_click"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestBinder_RenderFailureSurfaces(t *testing.T) {
	renderer := &recordingRenderer{fail: true}
	b := NewBinder(renderer)
	c := newTestController(t)

	err := b.Bind(c)
	require.Error(t, err)
}

func TestBinder_NilRenderer(t *testing.T) {
	b := NewBinder(nil)
	c := newTestController(t)

	require.NoError(t, b.Bind(c))
	require.NoError(t, b.Handle(Event{ElementID: c.ID(), Name: EventToggle, RowIndex: 0}))
	assert.Equal(t, 4, c.Matrix().Len())
}
