// Package rate implements the fixed-window admission-control limiter that
// gates mutating library operations.
//
// The primary counter lives in Redis (atomic INCR with a window-wide TTL
// set on the first hit). When Redis is unreachable the limiter degrades to
// a process-local window and keeps answering: admission control prefers
// availability over strict cross-instance consistency, so a shared-store
// outage must never fail the caller.
package rate
