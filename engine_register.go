package lendcore

import (
	"context"
	"errors"

	"github.com/campuslib/lendcore/password"
	"github.com/google/uuid"
)

// RegisterRequest carries the fields collected by the sign-up form.
type RegisterRequest struct {
	FullName     string
	Email        string
	UniversityID int64
	Password     string
}

// RegisterUser creates a library account awaiting administrator approval.
// New accounts always start as [StatusPending] with the configured default
// role; only an administrator moves them to APPROVED or REJECTED.
//
// Registration is throttled per email and, when enabled, per client IP
// (attach the IP with [WithClientIP]).
func (e *Engine) RegisterUser(ctx context.Context, req RegisterRequest) (UserRecord, error) {
	if !e.config.Registration.Enabled {
		return UserRecord{}, ErrRegistrationDisabled
	}
	if e.provider == nil || e.passwordHash == nil || e.regLimiter == nil {
		return UserRecord{}, ErrEngineNotReady
	}

	if req.Email == "" || req.FullName == "" || req.UniversityID <= 0 {
		e.emitAudit(ctx, auditEventRegistrationFail, false, "", "", "", "", ErrRegistrationInvalid, func() map[string]string {
			return map[string]string{
				"reason": "missing_fields",
			}
		})
		return UserRecord{}, ErrRegistrationInvalid
	}

	if e.config.Registration.EnableIdentifierThrottle {
		if decision := e.regLimiter.Admit(ctx, req.Email); !decision.Allowed {
			e.metricInc(MetricRegistrationRateLimited)
			e.emitAudit(ctx, auditEventRegistrationFail, false, "", "", "", "", ErrRateLimited, func() map[string]string {
				return map[string]string{
					"reason": "identifier_throttled",
					"email":  req.Email,
				}
			})
			return UserRecord{}, ErrRateLimited
		}
	}
	if ip := clientIPFromContext(ctx); e.config.Registration.EnableIPThrottle && ip != "" {
		if decision := e.regLimiter.Admit(ctx, ip); !decision.Allowed {
			e.metricInc(MetricRegistrationRateLimited)
			e.emitAudit(ctx, auditEventRegistrationFail, false, "", "", "", "", ErrRateLimited, func() map[string]string {
				return map[string]string{
					"reason": "ip_throttled",
				}
			})
			return UserRecord{}, ErrRateLimited
		}
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		// Only policy violations are the caller's fault; an entropy or
		// hashing fault propagates as-is.
		if errors.Is(err, password.ErrPasswordPolicy) {
			err = ErrWeakPassword
		}
		e.emitAudit(ctx, auditEventRegistrationFail, false, "", "", "", "", err, func() map[string]string {
			return map[string]string{
				"reason": "password_hash",
				"email":  req.Email,
			}
		})
		return UserRecord{}, err
	}

	created, err := e.provider.CreateUser(ctx, CreateUserInput{
		UserID:       uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		UniversityID: req.UniversityID,
		PasswordHash: hash,
		Status:       StatusPending,
		Role:         e.config.Registration.DefaultRole,
		CreatedAt:    e.now(),
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			e.metricInc(MetricRegistrationDuplicate)
		}
		e.emitAudit(ctx, auditEventRegistrationFail, false, "", "", "", "", err, func() map[string]string {
			return map[string]string{
				"email": req.Email,
			}
		})
		return UserRecord{}, err
	}

	e.metricInc(MetricRegistrationSuccess)
	e.emitAudit(ctx, auditEventUserRegistered, true, "", created.UserID, "", "", nil, func() map[string]string {
		return map[string]string{
			"email": created.Email,
		}
	})

	return created, nil
}
