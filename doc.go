// Package lendcore provides the lending and access control plane for a
// university library: administrator-gated account admission (PENDING /
// APPROVED / REJECTED), copy-count accounting per book title, and the
// borrow-record lifecycle (open, extend, return, overdue detection), all
// behind a fixed-window admission-control rate limiter.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// lendcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (UserRecord, BorrowRecord, ActionResult, etc.). The
// application supplies its database through [LibraryProvider] and may supply
// a Redis client for shared rate-limit counters and dashboard cache
// invalidation. Rate limiting internals live under internal/ and are never
// exported.
//
// # What this package must NOT do
//
//   - Render pages, aggregate dashboard statistics, or issue sessions;
//     those are external collaborators.
//   - Expose Redis clients or provider internals in its public API.
//   - Let a store-level fault escape an Admin* façade method; façade
//     methods always return an [ActionResult].
//
// # Consistency contract
//
// The available-copies counter may only change through the provider's
// transactional borrow open (conditional decrement plus record insert)
// and transactional borrow close. Under
// Redis outage the rate limiter degrades to a process-local window rather
// than failing admin actions.
package lendcore
