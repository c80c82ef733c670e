package rate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	Window time.Duration
	Quota  int
	Prefix string
}

// Decision is the outcome of one admission check. Fallback is set when
// the decision came from the process-local window rather than the shared
// counter store.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Fallback  bool
}

// Limiter enforces a fixed-window quota per identifier using Redis
// counters, falling back to [MemoryWindow] when Redis fails.
type Limiter struct {
	redis    redis.UniversalClient
	fallback *MemoryWindow
	config   Config
	logger   *log.Logger
	now      func() time.Time
}

// New creates a rate [Limiter] backed by the given Redis client. A nil
// client is allowed: the limiter then runs on the local fallback only.
// The fallback window must be non-nil; it is owned by the caller so its
// lifecycle (created at process start, cleared on restart) is explicit.
func New(redisClient redis.UniversalClient, fallback *MemoryWindow, cfg Config, logger *log.Logger) *Limiter {
	if fallback == nil {
		fallback = NewMemoryWindow()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Limiter{
		redis:    redisClient,
		fallback: fallback,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the limiter's time source. Used by tests.
func (l *Limiter) SetClock(now func() time.Time) {
	if now != nil {
		l.now = now
	}
}

// Admit decides whether the identifier may perform one more mutating
// action within the current window. It never returns an error: any Redis
// failure is logged once per call and answered from the local fallback.
func (l *Limiter) Admit(ctx context.Context, identifier string) Decision {
	if l.redis == nil {
		return l.admitLocal(identifier)
	}

	decision, err := l.admitShared(ctx, identifier)
	if err != nil {
		l.logger.Printf("rate: shared counter unavailable, using local fallback: %v", err)
		return l.admitLocal(identifier)
	}
	return decision
}

func (l *Limiter) admitLocal(identifier string) Decision {
	decision := l.fallback.Admit(identifier, l.config.Quota, l.config.Window, l.now())
	decision.Fallback = true
	return decision
}

func (l *Limiter) admitShared(ctx context.Context, identifier string) (Decision, error) {
	key := l.key(identifier)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	resetAt := l.now().Add(l.config.Window)
	if count > 1 {
		ttl, err := l.redis.PTTL(ctx, key).Result()
		if err == nil && ttl > 0 {
			resetAt = l.now().Add(ttl)
		}
	}

	if count > int64(l.config.Quota) {
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: l.config.Quota - int(count),
		ResetAt:   resetAt,
	}, nil
}

func (l *Limiter) key(identifier string) string {
	return l.config.Prefix + ":rl:" + identifier
}
