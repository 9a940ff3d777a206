// Package stats computes the dashboard aggregations over a loaded dataset:
// national time series, per-indicator evolution summaries, departmental
// rankings and the dataset overview.
//
// All functions are pure: they take an immutable dataset.Dataset and return
// fresh values, so they are safe to call concurrently from request handlers.
package stats
