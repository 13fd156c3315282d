package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/AaronQLF/dashTemplate/matrix"
)

// TextRenderer draws matrices as indented text tables, one toggle glyph per
// row and group levels indented beneath their parents. It implements
// Renderer for terminal dashboards and tests.
type TextRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	indent string
}

// NewTextRenderer creates a renderer writing to out.
func NewTextRenderer(out io.Writer) *TextRenderer {
	return &TextRenderer{
		out:    out,
		indent: "  ",
	}
}

func (r *TextRenderer) RenderMatrix(elementID string, m matrix.Matrix) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tw := tabwriter.NewWriter(r.out, 2, 4, 2, ' ', 0)

	header := append([]string{"", "group"}, metricColumns(m)...)
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}

	for _, row := range m.Rows {
		cells := []string{row.State.Glyph(), r.groupCell(m, row)}
		for _, col := range metricColumns(m) {
			cells = append(cells, fmt.Sprintf("%v", row.Cells[col]))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// groupCell shows the row's own group value, indented by its depth.
func (r *TextRenderer) groupCell(m matrix.Matrix, row matrix.GroupRow) string {
	value := ""
	if row.Level < len(m.GroupBy) {
		value = fmt.Sprintf("%v", row.Cells[m.GroupBy[row.Level]])
	}
	return strings.Repeat(r.indent, row.Level) + value
}

func metricColumns(m matrix.Matrix) []string {
	cols := make([]string, 0, len(m.Metrics))
	for _, spec := range m.Metrics {
		cols = append(cols, spec.Column)
	}
	return cols
}
