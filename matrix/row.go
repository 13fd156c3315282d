package matrix

import "github.com/AaronQLF/dashTemplate/dataset"

// ExpandState is the drill affordance a row presents. The values double as
// the glyphs a renderer shows in the toggle column.
type ExpandState string

const (
	// StateLeaf marks a row at the deepest grouping level; it has no
	// affordance and renders an empty toggle cell.
	StateLeaf ExpandState = ""

	// StateCollapsed marks a row whose children are hidden.
	StateCollapsed ExpandState = "+"

	// StateExpanded marks a row whose children follow it in the matrix.
	StateExpanded ExpandState = "-"
)

// CanExpand reports whether the row accepts an expand transition.
func (s ExpandState) CanExpand() bool { return s == StateCollapsed }

// CanCollapse reports whether the row accepts a collapse transition.
func (s ExpandState) CanCollapse() bool { return s == StateExpanded }

// Glyph returns the toggle-column text for the state.
func (s ExpandState) Glyph() string { return string(s) }

// GroupRow is one visible row of the drill matrix: aggregated cells for a
// group, its depth in the hierarchy, its affordance state, and the equality
// conditions identifying the ancestor groups it belongs to.
type GroupRow struct {
	Cells            dataset.Row
	Level            int
	State            ExpandState
	ParentConditions map[string]any
}

// Clone returns an independent copy of the row.
func (r GroupRow) Clone() GroupRow {
	conditions := make(map[string]any, len(r.ParentConditions))
	for k, v := range r.ParentConditions {
		conditions[k] = v
	}
	return GroupRow{
		Cells:            r.Cells.Clone(),
		Level:            r.Level,
		State:            r.State,
		ParentConditions: conditions,
	}
}

// Matrix is the flattened drill view: rows in display order, each carrying
// its own level and affordance.
type Matrix struct {
	GroupBy []string
	Metrics []dataset.MetricSpec
	Rows    []GroupRow
}

// Clone returns an independent copy of the matrix.
func (m Matrix) Clone() Matrix {
	rows := make([]GroupRow, len(m.Rows))
	for i, row := range m.Rows {
		rows[i] = row.Clone()
	}
	return Matrix{
		GroupBy: append([]string{}, m.GroupBy...),
		Metrics: append([]dataset.MetricSpec{}, m.Metrics...),
		Rows:    rows,
	}
}

// Len reports the number of visible rows.
func (m Matrix) Len() int { return len(m.Rows) }

// Depth reports the deepest level currently visible, or -1 for an empty
// matrix.
func (m Matrix) Depth() int {
	depth := -1
	for _, row := range m.Rows {
		if row.Level > depth {
			depth = row.Level
		}
	}
	return depth
}
