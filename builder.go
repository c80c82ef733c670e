package lendcore

import (
	"errors"
	"log"
	"time"

	"github.com/campuslib/lendcore/internal/rate"
	"github.com/campuslib/lendcore/password"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by lendcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	logger *log.Logger

	provider LibraryProvider
	cache    CacheInvalidator
	notifier Notifier
	audit    AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the shared counter store for rate limiting and, when
// no explicit invalidator is set, dashboard cache invalidation. Optional:
// without it the limiter runs on its process-local fallback only.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithProvider describes the withprovider operation and its observable behavior.
func (b *Builder) WithProvider(p LibraryProvider) *Builder {
	b.provider = p
	return b
}

// WithCacheInvalidator describes the withcacheinvalidator operation and its observable behavior.
func (b *Builder) WithCacheInvalidator(c CacheInvalidator) *Builder {
	b.cache = c
	return b
}

// WithNotifier describes the withnotifier operation and its observable behavior.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.audit = sink
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
func (b *Builder) WithLogger(logger *log.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation or configuration checks fail.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.provider == nil {
		return nil, errors.New("library provider is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       b.config,
		provider:     b.provider,
		cache:        b.cache,
		metrics:      NewMetrics(b.config.Metrics),
		audit:        newAuditDispatcher(b.config.Audit, b.audit),
		reminders:    newReminderDispatcher(b.config.Reminder, b.notifier),
		passwordHash: hasher,
		now:          time.Now,
	}

	if engine.cache == nil {
		if b.redis != nil {
			engine.cache = NewRedisInvalidator(b.redis, b.config.RateLimit.RedisPrefix)
		} else {
			engine.cache = NoOpInvalidator{}
		}
	}

	if b.config.RateLimit.Enabled {
		engine.adminLimiter = rate.New(b.redis, rate.NewMemoryWindow(), rate.Config{
			Window: b.config.RateLimit.Window,
			Quota:  b.config.RateLimit.Quota,
			Prefix: b.config.RateLimit.RedisPrefix + ":admin",
		}, b.logger)
	}
	if b.config.Registration.Enabled {
		engine.regLimiter = rate.New(b.redis, rate.NewMemoryWindow(), rate.Config{
			Window: b.config.Registration.Cooldown,
			Quota:  b.config.Registration.MaxAttempts,
			Prefix: b.config.RateLimit.RedisPrefix + ":reg",
		}, b.logger)
	}

	b.built = true
	return engine, nil
}
