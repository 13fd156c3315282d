package matrix

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronQLF/dashTemplate/dataset"
	"github.com/AaronQLF/dashTemplate/metric"
)

func salesController(t *testing.T, opts ...ControllerOption) *Controller {
	t.Helper()
	c, err := NewController(salesSource(t), []string{"region", "country", "city"}, []dataset.MetricSpec{
		{Column: "revenue", Agg: dataset.AggSum},
	}, opts...)
	require.NoError(t, err)
	return c
}

func TestNewController_InitialProjection(t *testing.T) {
	c := salesController(t)

	assert.NotEmpty(t, c.ID())
	m := c.Matrix()
	require.Equal(t, 2, m.Len())
	assert.Equal(t, StateCollapsed, m.Rows[0].State)
}

func TestNewController_InvalidHierarchy(t *testing.T) {
	_, err := NewController(salesSource(t), []string{"segment"}, nil)
	require.Error(t, err)
}

func TestController_ToggleExpandsAndCollapses(t *testing.T) {
	c := salesController(t)

	require.NoError(t, c.HandleToggle(0))
	m := c.Matrix()
	require.Equal(t, 4, m.Len())
	assert.Equal(t, StateExpanded, m.Rows[0].State)

	require.NoError(t, c.HandleToggle(0))
	m = c.Matrix()
	require.Equal(t, 2, m.Len())
	assert.Equal(t, StateCollapsed, m.Rows[0].State)
}

func TestController_LeafToggleIsNoOp(t *testing.T) {
	c := salesController(t)
	require.NoError(t, c.ExpandAll())
	before := c.Matrix()

	// Row 2 is the Berlin leaf.
	require.Equal(t, StateLeaf, before.Rows[2].State)
	require.NoError(t, c.HandleToggle(2))
	assert.Equal(t, before.Len(), c.Matrix().Len())
}

func TestController_StaleIndexIsNoOp(t *testing.T) {
	c := salesController(t)
	before := c.Matrix()

	require.NoError(t, c.HandleToggle(99))
	require.NoError(t, c.HandleToggle(-1))
	assert.Equal(t, before.Len(), c.Matrix().Len())
}

func TestController_SnapshotIsIndependent(t *testing.T) {
	c := salesController(t)

	m := c.Matrix()
	m.Rows[0].Cells["region"] = "tampered"

	assert.Equal(t, "EU", c.Matrix().Rows[0].Cells["region"])
}

func TestController_ExpandAllCollapseAll(t *testing.T) {
	c := salesController(t)

	require.NoError(t, c.ExpandAll())
	assert.Equal(t, 10, c.Matrix().Len())

	require.NoError(t, c.CollapseAll())
	assert.Equal(t, 2, c.Matrix().Len())
}

func TestController_ChangeListenerReceivesSnapshots(t *testing.T) {
	var snapshots []Matrix
	c := salesController(t, WithChangeListener(func(m Matrix) {
		snapshots = append(snapshots, m)
	}))

	require.NoError(t, c.HandleToggle(0))
	require.NoError(t, c.HandleToggle(0))

	require.Len(t, snapshots, 2)
	assert.Equal(t, 4, snapshots[0].Len())
	assert.Equal(t, 2, snapshots[1].Len())
}

func TestController_Reset(t *testing.T) {
	c := salesController(t)
	require.NoError(t, c.HandleToggle(0))

	refreshed, err := dataset.NewTable(
		[]string{"region", "country", "city", "revenue"},
		[]dataset.Row{
			{"region": "APAC", "country": "JP", "city": "Tokyo", "revenue": 300.0},
		},
	)
	require.NoError(t, err)

	require.NoError(t, c.Reset(refreshed))
	m := c.Matrix()
	require.Equal(t, 1, m.Len())
	assert.Equal(t, "APAC", m.Rows[0].Cells["region"])
	assert.Equal(t, StateCollapsed, m.Rows[0].State)
}

func TestController_ResetInvalidSource(t *testing.T) {
	c := salesController(t)

	bad, err := dataset.NewTable([]string{"other"}, nil)
	require.NoError(t, err)
	require.Error(t, c.Reset(bad))

	// State survives a failed reset.
	assert.Equal(t, 2, c.Matrix().Len())
}

// assertPreOrderShape checks that a matrix is a coherent depth-first
// flattening: levels never jump by more than one, an expanded row is
// immediately followed by its first child, and nothing deeper follows a
// collapsed row or a leaf.
func assertPreOrderShape(t *testing.T, m Matrix, depth int) {
	t.Helper()
	for i, row := range m.Rows {
		require.GreaterOrEqual(t, row.Level, 0)
		require.Less(t, row.Level, depth)
		if i == 0 {
			require.Equal(t, 0, row.Level)
		} else {
			require.LessOrEqual(t, row.Level, m.Rows[i-1].Level+1)
		}
		switch row.State {
		case StateExpanded:
			require.Less(t, i+1, m.Len(), "expanded row %d has no children", i)
			require.Equal(t, row.Level+1, m.Rows[i+1].Level, "expanded row %d not followed by a child", i)
		case StateCollapsed:
			if i+1 < m.Len() {
				require.LessOrEqual(t, m.Rows[i+1].Level, row.Level, "collapsed row %d followed by a descendant", i)
			}
		case StateLeaf:
			require.Equal(t, depth-1, row.Level, "leaf row %d above the deepest level", i)
			if i+1 < m.Len() {
				require.LessOrEqual(t, m.Rows[i+1].Level, row.Level)
			}
		}
	}
}

func TestController_SerializesConcurrentInteractions(t *testing.T) {
	c := salesController(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				switch (g + i) % 4 {
				case 0:
					assert.NoError(t, c.HandleToggle(i%7))
				case 1:
					assert.NoError(t, c.HandleToggle(0))
				case 2:
					assert.NoError(t, c.ExpandAll())
				default:
					assert.NoError(t, c.CollapseAll())
				}
			}
		}(g)
	}
	wg.Wait()

	// Whatever the interleaving, each transition applied atomically, so the
	// final matrix must still be a coherent drill state.
	assertPreOrderShape(t, c.Matrix(), 3)
}

func TestController_RecordsMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	c := salesController(t, WithControllerMetrics(registry))

	require.NoError(t, c.HandleToggle(0))
	require.NoError(t, c.HandleToggle(99))

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := make(map[string]bool)
	for _, f := range families {
		found[f.GetName()] = true
	}
	assert.True(t, found["dashtemplate_interactions_received_total"])
	assert.True(t, found["dashtemplate_interactions_handled_total"])
	assert.True(t, found["dashtemplate_matrix_transition_duration_seconds"])
	assert.True(t, found["dashtemplate_matrix_visible_rows"])
}
