// Package dataset provides the tabular source model the drill-through matrix
// aggregates over: column-named rows, condition filtering, and grouped
// aggregation with first-seen group ordering.
package dataset
