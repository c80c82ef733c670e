package lendcore

import (
	"errors"
	"time"
)

// Config defines a public type used by lendcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	RateLimit    RateLimitConfig
	Registration RegistrationConfig
	Password     PasswordConfig
	Loan         LoanConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
	Cache        CacheConfig
	Reminder     ReminderConfig
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig tunes the fixed-window admission gate in front of the
// Admin* façade methods. Quota admissions are allowed per identifier per
// Window; the sixth call of a quota of five within one window is denied.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Enabled     bool
	Window      time.Duration
	Quota       int
	RedisPrefix string
}

/*
====================================
REGISTRATION CONFIG
====================================
*/

// RegistrationConfig defines a public type used by lendcore APIs.
//
// RegistrationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegistrationConfig struct {
	Enabled                  bool
	DefaultRole              UserRole
	EnableIPThrottle         bool
	EnableIdentifierThrottle bool
	MaxAttempts              int
	Cooldown                 time.Duration
}

// PasswordConfig defines a public type used by lendcore APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
LOAN CONFIG
====================================
*/

// LoanConfig defines a public type used by lendcore APIs.
//
// LoanConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoanConfig struct {
	// Period is the span between borrow date and the initial due date.
	Period time.Duration
	// ExtensionDays is the default additive due-date extension.
	ExtensionDays int
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

// AuditConfig defines a public type used by lendcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by lendcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
PRESENTATION CONFIG
====================================
*/

// CacheConfig names the dashboard view paths invalidated after
// successful mutations.
//
// CacheConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CacheConfig struct {
	UsersPath        string
	BookRequestsPath string
}

// ReminderConfig defines a public type used by lendcore APIs.
//
// ReminderConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ReminderConfig struct {
	BufferSize int
	DropIfFull bool
}

// DefaultConfig returns the configuration the engine starts from:
// quota 5 per 60s admission window, 7-day loans, +7 day extensions,
// audit and metrics disabled.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		RateLimit: RateLimitConfig{
			Enabled:     true,
			Window:      time.Minute,
			Quota:       5,
			RedisPrefix: "lc",
		},
		Registration: RegistrationConfig{
			Enabled:                  true,
			DefaultRole:              RoleUser,
			EnableIPThrottle:         true,
			EnableIdentifierThrottle: true,
			MaxAttempts:              5,
			Cooldown:                 time.Minute,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Loan: LoanConfig{
			Period:        7 * 24 * time.Hour,
			ExtensionDays: 7,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Cache: CacheConfig{
			UsersPath:        "/admin/users",
			BookRequestsPath: "/admin/book-requests",
		},
		Reminder: ReminderConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

func validateConfig(cfg Config) error {
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.Window <= 0 {
			return errors.New("rate limit window must be positive")
		}
		if cfg.RateLimit.Quota <= 0 {
			return errors.New("rate limit quota must be positive")
		}
	}
	if cfg.Loan.Period <= 0 {
		return errors.New("loan period must be positive")
	}
	if cfg.Loan.ExtensionDays <= 0 {
		return errors.New("loan extension days must be positive")
	}
	if cfg.Registration.Enabled {
		if cfg.Registration.MaxAttempts <= 0 {
			return errors.New("registration max attempts must be positive")
		}
		if cfg.Registration.Cooldown <= 0 {
			return errors.New("registration cooldown must be positive")
		}
		if cfg.Registration.DefaultRole != RoleUser && cfg.Registration.DefaultRole != RoleAdmin {
			return ErrInvalidRole
		}
	}
	return nil
}
