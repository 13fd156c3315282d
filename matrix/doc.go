// Package matrix implements the hierarchical drill-through matrix: a
// flattened list of leveled group rows projected from a source table, with
// expand and collapse transitions that splice child groups in and out in
// place.
//
// Projection and the transitions are pure: they return new matrices and
// never mutate their input. Controller wraps a projector with interaction
// handling, serialization and observability for use behind a UI.
package matrix
