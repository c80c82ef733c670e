// Package otel bridges lendcore engine metrics into an OpenTelemetry
// meter via observable instruments.
//
// Counters and histogram buckets are observed lazily from
// [lendcore.MetricsSnapshot] inside a single registered callback, so the
// bridge adds no overhead to the engine's hot paths between collections.
package otel
