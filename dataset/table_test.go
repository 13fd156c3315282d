package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronQLF/dashTemplate/errors"
)

func salesTable(t *testing.T) Table {
	t.Helper()
	table, err := NewTable(
		[]string{"region", "country", "product", "revenue", "units"},
		[]Row{
			{"region": "EU", "country": "DE", "product": "widget", "revenue": 100.0, "units": 10},
			{"region": "EU", "country": "DE", "product": "gadget", "revenue": 50.0, "units": 2},
			{"region": "EU", "country": "FR", "product": "widget", "revenue": 80.0, "units": 8},
			{"region": "US", "country": "US", "product": "widget", "revenue": 200.0, "units": 20},
			{"region": "US", "country": "US", "product": "gadget", "revenue": 120.0, "units": 6},
		},
	)
	require.NoError(t, err)
	return table
}

func TestNewTable_RejectsUnknownColumns(t *testing.T) {
	_, err := NewTable(
		[]string{"a"},
		[]Row{{"a": 1, "b": 2}},
	)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestTable_HasColumn(t *testing.T) {
	table := salesTable(t)
	assert.True(t, table.HasColumn("region"))
	assert.False(t, table.HasColumn("margin"))
}

func TestTable_Filter(t *testing.T) {
	table := salesTable(t)

	filtered, err := table.Filter(map[string]any{"region": "EU"})
	require.NoError(t, err)
	assert.Equal(t, 3, filtered.Len())
	for _, row := range filtered.Rows {
		assert.Equal(t, "EU", row["region"])
	}
}

func TestTable_FilterMultipleConditions(t *testing.T) {
	table := salesTable(t)

	filtered, err := table.Filter(map[string]any{"region": "EU", "country": "DE"})
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Len())
}

func TestTable_FilterNoConditionsKeepsAll(t *testing.T) {
	table := salesTable(t)

	filtered, err := table.Filter(nil)
	require.NoError(t, err)
	assert.Equal(t, table.Len(), filtered.Len())
}

func TestTable_FilterNoMatches(t *testing.T) {
	table := salesTable(t)

	filtered, err := table.Filter(map[string]any{"region": "APAC"})
	require.NoError(t, err)
	assert.Equal(t, 0, filtered.Len())
}

func TestTable_FilterUnknownColumn(t *testing.T) {
	table := salesTable(t)

	_, err := table.Filter(map[string]any{"margin": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrColumnNotFound)
}

func TestTable_FilterPreservesOrder(t *testing.T) {
	table := salesTable(t)

	filtered, err := table.Filter(map[string]any{"product": "widget"})
	require.NoError(t, err)
	require.Equal(t, 3, filtered.Len())
	assert.Equal(t, "DE", filtered.Rows[0]["country"])
	assert.Equal(t, "FR", filtered.Rows[1]["country"])
	assert.Equal(t, "US", filtered.Rows[2]["country"])
}

func TestRow_Clone(t *testing.T) {
	row := Row{"a": 1}
	clone := row.Clone()
	clone["a"] = 2
	assert.Equal(t, 1, row["a"])
}
