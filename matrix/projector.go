package matrix

import (
	"fmt"

	"github.com/AaronQLF/dashTemplate/dataset"
	"github.com/AaronQLF/dashTemplate/errors"
)

// Projector derives drill matrices from a source table over a fixed grouping
// hierarchy. All methods are pure: they return new matrices and leave their
// inputs untouched, so callers can keep history or diff states.
type Projector struct {
	source  dataset.Table
	groupBy []string
	metrics []dataset.MetricSpec
}

// NewProjector validates the hierarchy against the source schema. When no
// metrics are given, numeric non-grouping columns are summed.
func NewProjector(source dataset.Table, groupBy []string, metrics []dataset.MetricSpec) (*Projector, error) {
	if len(groupBy) == 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("at least one grouping column is required"),
			"matrix", "NewProjector", "validate hierarchy")
	}
	if err := source.RequireColumns("NewProjector", groupBy...); err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		metrics = dataset.InferMetricSpecs(source, groupBy)
	}
	return &Projector{
		source:  source,
		groupBy: append([]string{}, groupBy...),
		metrics: append([]dataset.MetricSpec{}, metrics...),
	}, nil
}

// GroupBy returns the grouping hierarchy, outermost first.
func (p *Projector) GroupBy() []string {
	return append([]string{}, p.groupBy...)
}

// Project builds the initial matrix: the source grouped by the outermost
// column only, every row at level 0 and collapsed when deeper levels exist.
func (p *Projector) Project() (Matrix, error) {
	grouped, err := dataset.GroupBy(p.source, p.groupBy[:1], p.metrics)
	if err != nil {
		return Matrix{}, err
	}

	rows := make([]GroupRow, 0, grouped.Len())
	for _, cells := range grouped.Rows {
		rows = append(rows, GroupRow{
			Cells:            dataset.Row(cells).Clone(),
			Level:            0,
			State:            p.stateForLevel(0),
			ParentConditions: map[string]any{},
		})
	}
	return Matrix{
		GroupBy: p.GroupBy(),
		Metrics: append([]dataset.MetricSpec{}, p.metrics...),
		Rows:    rows,
	}, nil
}

// ExpandOne splices the clicked row's child groups directly after it and
// marks the row expanded. The children are the source rows matching the
// clicked group's identity, grouped one level deeper. Rows without an expand
// affordance return ErrNoAffordance; out-of-range indices return
// ErrRowOutOfRange.
func (p *Projector) ExpandOne(m Matrix, rowIdx int) (Matrix, error) {
	if rowIdx < 0 || rowIdx >= len(m.Rows) {
		return Matrix{}, errors.WrapInvalid(
			fmt.Errorf("%w: %d of %d", errors.ErrRowOutOfRange, rowIdx, len(m.Rows)),
			"matrix", "ExpandOne", "locate row")
	}
	row := m.Rows[rowIdx]
	if !row.State.CanExpand() {
		return Matrix{}, errors.WrapInvalid(
			fmt.Errorf("%w: row %d is %q", errors.ErrNoAffordance, rowIdx, row.State),
			"matrix", "ExpandOne", "check affordance")
	}

	// The clicked group is identified by its values for every hierarchy
	// column up to its own level.
	level := row.Level
	conditions := make(map[string]any, level+1)
	for _, col := range p.groupBy[:level+1] {
		conditions[col] = row.Cells[col]
	}

	filtered, err := p.source.Filter(conditions)
	if err != nil {
		return Matrix{}, err
	}
	grouped, err := dataset.GroupBy(filtered, p.groupBy[:level+2], p.metrics)
	if err != nil {
		return Matrix{}, err
	}

	children := make([]GroupRow, 0, grouped.Len())
	for _, cells := range grouped.Rows {
		children = append(children, GroupRow{
			Cells:            dataset.Row(cells).Clone(),
			Level:            level + 1,
			State:            p.stateForLevel(level + 1),
			ParentConditions: conditions,
		})
	}

	out := m.Clone()
	out.Rows[rowIdx].State = StateExpanded
	out.Rows = append(out.Rows[:rowIdx+1], append(children, out.Rows[rowIdx+1:]...)...)
	return out, nil
}

// CollapseOne removes every row following the clicked one whose level is
// deeper, stopping at the first row at the same or a shallower level, and
// marks the clicked row collapsed. Nested expansions under the clicked row
// disappear with it.
func (p *Projector) CollapseOne(m Matrix, rowIdx int) (Matrix, error) {
	if rowIdx < 0 || rowIdx >= len(m.Rows) {
		return Matrix{}, errors.WrapInvalid(
			fmt.Errorf("%w: %d of %d", errors.ErrRowOutOfRange, rowIdx, len(m.Rows)),
			"matrix", "CollapseOne", "locate row")
	}
	row := m.Rows[rowIdx]
	if !row.State.CanCollapse() {
		return Matrix{}, errors.WrapInvalid(
			fmt.Errorf("%w: row %d is %q", errors.ErrNoAffordance, rowIdx, row.State),
			"matrix", "CollapseOne", "check affordance")
	}

	out := m.Clone()
	end := rowIdx + 1
	for end < len(out.Rows) && out.Rows[end].Level > row.Level {
		end++
	}
	out.Rows[rowIdx].State = StateCollapsed
	out.Rows = append(out.Rows[:rowIdx+1], out.Rows[end:]...)
	return out, nil
}

// ExpandAll returns the fully expanded matrix: every group at every level
// visible, in depth-first order.
func (p *Projector) ExpandAll() (Matrix, error) {
	m, err := p.Project()
	if err != nil {
		return Matrix{}, err
	}
	// Expanding the first collapsed row repeatedly visits groups
	// depth-first; depth is bounded by the hierarchy so this terminates.
	for {
		idx := -1
		for i, row := range m.Rows {
			if row.State.CanExpand() {
				idx = i
				break
			}
		}
		if idx < 0 {
			return m, nil
		}
		m, err = p.ExpandOne(m, idx)
		if err != nil {
			return Matrix{}, err
		}
	}
}

// CollapseAll returns the initial projection, discarding every expansion.
func (p *Projector) CollapseAll() (Matrix, error) {
	return p.Project()
}

// stateForLevel gives rows above the deepest level an expand affordance and
// leaves the deepest level as leaves.
func (p *Projector) stateForLevel(level int) ExpandState {
	if level < len(p.groupBy)-1 {
		return StateCollapsed
	}
	return StateLeaf
}
