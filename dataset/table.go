package dataset

import (
	"fmt"

	"github.com/AaronQLF/dashTemplate/errors"
)

// Row is one record, keyed by column name. Cell values are scalars
// (strings, numbers, bools); equality between cells is Go equality.
type Row map[string]any

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered collection of rows over a fixed column set.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable builds a table and checks every row against the column set.
func NewTable(columns []string, rows []Row) (Table, error) {
	t := Table{Columns: columns, Rows: rows}
	for i, row := range rows {
		for col := range row {
			if !t.HasColumn(col) {
				return Table{}, errors.WrapInvalid(
					fmt.Errorf("%w: row %d has column %q not in table schema",
						errors.ErrColumnNotFound, i, col),
					"dataset", "NewTable", "validate rows")
			}
		}
	}
	return t, nil
}

// HasColumn reports whether the table schema includes col.
func (t Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// RequireColumns fails with a column-not-found error if any named column is
// missing from the schema.
func (t Table) RequireColumns(op string, cols ...string) error {
	for _, col := range cols {
		if !t.HasColumn(col) {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %q", errors.ErrColumnNotFound, col),
				"dataset", op, "check columns")
		}
	}
	return nil
}

// Filter returns a table with the rows matching every condition, in original
// order. Conditions are column equality tests. An empty condition set keeps
// all rows.
func (t Table) Filter(conditions map[string]any) (Table, error) {
	cols := make([]string, 0, len(conditions))
	for col := range conditions {
		cols = append(cols, col)
	}
	if err := t.RequireColumns("Filter", cols...); err != nil {
		return Table{}, err
	}

	matched := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		keep := true
		for col, want := range conditions {
			if row[col] != want {
				keep = false
				break
			}
		}
		if keep {
			matched = append(matched, row)
		}
	}
	return Table{Columns: t.Columns, Rows: matched}, nil
}

// Len reports the number of rows.
func (t Table) Len() int { return len(t.Rows) }
