// Package prometheus renders lendcore engine metrics in the Prometheus
// text exposition format, without importing the Prometheus client library.
//
// The exporter reads [lendcore.MetricsSnapshot] values on demand; it holds
// no state of its own and is safe for concurrent scrapes.
package prometheus
