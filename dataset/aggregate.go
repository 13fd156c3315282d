package dataset

import (
	"fmt"
	"strings"

	"github.com/AaronQLF/dashTemplate/errors"
)

// AggFunc names an aggregation applied to a metric column within a group.
type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggMean  AggFunc = "mean"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
	AggCount AggFunc = "count"
)

// MetricSpec pairs a metric column with its aggregation.
type MetricSpec struct {
	Column string  `json:"column"`
	Agg    AggFunc `json:"agg"`
}

// groupAccumulator folds one group's values for a single metric.
type groupAccumulator struct {
	sum   float64
	min   float64
	max   float64
	count int64
}

func (a *groupAccumulator) add(v float64) {
	if a.count == 0 || v < a.min {
		a.min = v
	}
	if a.count == 0 || v > a.max {
		a.max = v
	}
	a.sum += v
	a.count++
}

func (a *groupAccumulator) result(agg AggFunc) any {
	switch agg {
	case AggSum:
		return a.sum
	case AggMean:
		if a.count == 0 {
			return 0.0
		}
		return a.sum / float64(a.count)
	case AggMin:
		return a.min
	case AggMax:
		return a.max
	case AggCount:
		return a.count
	default:
		return nil
	}
}

// GroupBy groups the table by the given columns and aggregates each metric
// within the group. Result rows carry the group columns plus one column per
// metric, ordered by first appearance of each group key in the source.
func GroupBy(t Table, groupCols []string, metrics []MetricSpec) (Table, error) {
	if len(groupCols) == 0 {
		return Table{}, errors.WrapInvalid(
			fmt.Errorf("at least one group column is required"),
			"dataset", "GroupBy", "validate grouping")
	}
	metricCols := make([]string, 0, len(metrics))
	for _, m := range metrics {
		switch m.Agg {
		case AggSum, AggMean, AggMin, AggMax, AggCount:
		default:
			return Table{}, errors.WrapInvalid(
				fmt.Errorf("%w: %q for column %q", errors.ErrUnknownMetric, m.Agg, m.Column),
				"dataset", "GroupBy", "validate metrics")
		}
		metricCols = append(metricCols, m.Column)
	}
	if err := t.RequireColumns("GroupBy", append(append([]string{}, groupCols...), metricCols...)...); err != nil {
		return Table{}, err
	}

	type group struct {
		values map[string]any
		accs   []groupAccumulator
	}
	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, row := range t.Rows {
		keyParts := make([]string, len(groupCols))
		for i, col := range groupCols {
			keyParts[i] = fmt.Sprintf("%v", row[col])
		}
		key := strings.Join(keyParts, "\x1f")

		g, ok := groups[key]
		if !ok {
			values := make(map[string]any, len(groupCols))
			for _, col := range groupCols {
				values[col] = row[col]
			}
			g = &group{values: values, accs: make([]groupAccumulator, len(metrics))}
			groups[key] = g
			order = append(order, key)
		}
		for i, m := range metrics {
			v, ok := toFloat(row[m.Column])
			if !ok {
				if m.Agg == AggCount {
					g.accs[i].count++
				}
				continue
			}
			g.accs[i].add(v)
		}
	}

	columns := append(append([]string{}, groupCols...), metricCols...)
	rows := make([]Row, 0, len(order))
	for _, key := range order {
		g := groups[key]
		row := make(Row, len(columns))
		for _, col := range groupCols {
			row[col] = g.values[col]
		}
		for i, m := range metrics {
			row[m.Column] = g.accs[i].result(m.Agg)
		}
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}, nil
}

// InferMetricSpecs returns a sum spec for every numeric column outside the
// grouping set, in schema order. Used when no explicit metrics are
// configured.
func InferMetricSpecs(t Table, groupCols []string) []MetricSpec {
	grouped := make(map[string]bool, len(groupCols))
	for _, col := range groupCols {
		grouped[col] = true
	}

	specs := make([]MetricSpec, 0)
	for _, col := range t.Columns {
		if grouped[col] {
			continue
		}
		if columnIsNumeric(t, col) {
			specs = append(specs, MetricSpec{Column: col, Agg: AggSum})
		}
	}
	return specs
}

// columnIsNumeric reports whether every non-nil cell in col is numeric.
// Columns with no values at all are not numeric.
func columnIsNumeric(t Table, col string) bool {
	seen := false
	for _, row := range t.Rows {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		if _, isNum := toFloat(v); !isNum {
			return false
		}
		seen = true
	}
	return seen
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
