package lendcore

import (
	"context"
	"time"

	"github.com/campuslib/lendcore/internal/rate"
	"github.com/campuslib/lendcore/password"
)

// Engine defines a public type used by lendcore APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	provider     LibraryProvider
	adminLimiter *rate.Limiter
	regLimiter   *rate.Limiter
	cache        CacheInvalidator
	audit        *auditDispatcher
	reminders    *reminderDispatcher
	metrics      *Metrics
	passwordHash *password.Argon2
	now          func() time.Time
}

// Close releases the engine's background workers. Buffered audit events
// and reminders are drained before Close returns.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
	if e.reminders != nil {
		e.reminders.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// RemindersDropped describes the remindersdropped operation and its observable behavior.
func (e *Engine) RemindersDropped() uint64 {
	if e == nil || e.reminders == nil {
		return 0
	}
	return e.reminders.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	actorID, userID, bookID, recordID string,
	opErr error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: e.now(),
		EventType: eventType,
		ActorID:   actorID,
		UserID:    userID,
		BookID:    bookID,
		RecordID:  recordID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}

// invalidateView signals the presentation cache after a successful
// mutation. A failed invalidation is non-fatal: the stale view ages out.
func (e *Engine) invalidateView(ctx context.Context, path string) {
	if e == nil || e.cache == nil || path == "" {
		return
	}
	_ = e.cache.Invalidate(ctx, path)
}
