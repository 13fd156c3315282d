// Package dashtemplate provides the building blocks for data dashboards
// with cached computations and drill-through matrices.
//
// The module is organized as a set of focused packages:
//
//   - cache: function-result caching with memoize, timed, LRU and disk
//     policies, per-call bypass, and a central statistics registry
//   - dataset: the tabular source model with filtering and grouped
//     aggregation
//   - matrix: the hierarchical drill-through matrix and its controller
//   - ui: event routing from a rendering surface to controllers, with a
//     serializing dispatcher and a text renderer
//   - config: JSON configuration for logging, hierarchy and cache policies
//   - errors: classified errors shared across the module
//   - metric: Prometheus metrics registry and core instrument set
//   - pkg/worker: the bounded, ordered work queue behind the dispatcher
//
// See cmd/dashtemplate for a terminal dashboard wiring all of it together.
package dashtemplate
