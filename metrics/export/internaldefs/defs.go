package internaldefs

import (
	lendcore "github.com/campuslib/lendcore"
)

// CounterDef defines a public type used by lendcore APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   lendcore.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by lendcore APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   lendcore.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the lending engine.
var CounterDefs = []CounterDef{
	{ID: lendcore.MetricUserApproved, Name: "lendcore_user_approved_total", Help: "Accounts moved to APPROVED."},
	{ID: lendcore.MetricUserRejected, Name: "lendcore_user_rejected_total", Help: "Accounts moved to REJECTED."},
	{ID: lendcore.MetricUserRoleChanged, Name: "lendcore_user_role_changed_total", Help: "Role reassignments."},
	{ID: lendcore.MetricUserDeleted, Name: "lendcore_user_deleted_total", Help: "Hard-deleted accounts."},
	{ID: lendcore.MetricRegistrationSuccess, Name: "lendcore_registration_success_total", Help: "Successful registrations."},
	{ID: lendcore.MetricRegistrationDuplicate, Name: "lendcore_registration_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: lendcore.MetricRegistrationRateLimited, Name: "lendcore_registration_rate_limited_total", Help: "Rate-limited registration attempts."},
	{ID: lendcore.MetricBorrowOpened, Name: "lendcore_borrow_opened_total", Help: "Opened borrow records."},
	{ID: lendcore.MetricBorrowOutOfStock, Name: "lendcore_borrow_out_of_stock_total", Help: "Borrow attempts denied for zero availability."},
	{ID: lendcore.MetricBorrowReturned, Name: "lendcore_borrow_returned_total", Help: "Closed borrow records."},
	{ID: lendcore.MetricBorrowAlreadyReturned, Name: "lendcore_borrow_already_returned_total", Help: "Return attempts on already-closed records."},
	{ID: lendcore.MetricBorrowExtended, Name: "lendcore_borrow_extended_total", Help: "Due-date extensions."},
	{ID: lendcore.MetricReminderDispatched, Name: "lendcore_reminder_dispatched_total", Help: "Reminders handed to the notifier."},
	{ID: lendcore.MetricRateLimitHit, Name: "lendcore_rate_limit_hit_total", Help: "Admin actions denied by the admission gate."},
	{ID: lendcore.MetricRateLimitFallback, Name: "lendcore_rate_limit_fallback_total", Help: "Admissions decided by the local fallback window."},
}

// HistogramDefs is an exported constant or variable used by the lending engine.
var HistogramDefs = []HistogramDef{
	{ID: lendcore.MetricBorrowLatency, Name: "lendcore_borrow_latency_seconds", Help: "Borrow open latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the lending engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the lending engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
func CumulativeBuckets(nonCumulative [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(nonCumulative); i++ {
		running += nonCumulative[i]
		out[i] = running
	}
	return out
}
