package lendcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Admin* methods are the façade consumed by the presentation layer. Every
// mutating entry point admits the acting administrator through the rate
// limiter before touching data, converts all outcomes to an
// [ActionResult], and signals cache invalidation on success. No error or
// panic crosses this boundary.

const (
	msgThrottled = "Too many requests. Please try again later."
	msgFailed    = "operation failed"
)

// AdminSetUserStatus describes the adminsetuserstatus operation and its observable behavior.
//
// AdminSetUserStatus does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AdminSetUserStatus(ctx context.Context, adminID, userID string, status UserStatus) ActionResult {
	return e.runAction(ctx, adminID, e.config.Cache.UsersPath, func() ActionResult {
		if err := e.SetUserStatus(ctx, userID, status); err != nil {
			return failure("Failed to update user status")
		}
		return success(fmt.Sprintf("User %s successfully", strings.ToLower(status.String())))
	})
}

// AdminSetUserRole describes the adminsetuserrole operation and its observable behavior.
//
// AdminSetUserRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AdminSetUserRole(ctx context.Context, adminID, userID string, role UserRole) ActionResult {
	return e.runAction(ctx, adminID, e.config.Cache.UsersPath, func() ActionResult {
		if err := e.SetUserRole(ctx, userID, role); err != nil {
			return failure("Failed to update user role")
		}
		return success(fmt.Sprintf("User role updated to %s successfully", strings.ToLower(role.String())))
	})
}

// AdminDeleteUser describes the admindeleteuser operation and its observable behavior.
//
// AdminDeleteUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AdminDeleteUser(ctx context.Context, adminID, userID string) ActionResult {
	return e.runAction(ctx, adminID, e.config.Cache.UsersPath, func() ActionResult {
		if err := e.DeleteUser(ctx, userID); err != nil {
			return failure("Failed to delete user")
		}
		return success("User deleted successfully")
	})
}

// AdminMarkReturned describes the adminmarkreturned operation and its observable behavior.
//
// A record that is already closed reports success with a notice rather
// than an error: the administrator's intent already holds.
func (e *Engine) AdminMarkReturned(ctx context.Context, adminID, recordID string) ActionResult {
	return e.runAction(ctx, adminID, e.config.Cache.BookRequestsPath, func() ActionResult {
		if _, err := e.MarkReturned(ctx, recordID); err != nil {
			if errors.Is(err, ErrAlreadyReturned) {
				return success("Book already marked as returned")
			}
			return failure("Failed to mark book as returned")
		}
		return success("Book marked as returned successfully")
	})
}

// AdminExtendDueDate describes the adminextendduedate operation and its observable behavior.
//
// AdminExtendDueDate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AdminExtendDueDate(ctx context.Context, adminID, recordID string, additionalDays int) ActionResult {
	additionalDays = e.extensionDays(additionalDays)
	return e.runAction(ctx, adminID, e.config.Cache.BookRequestsPath, func() ActionResult {
		if _, err := e.ExtendDueDate(ctx, recordID, additionalDays); err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return failure("Borrow record not found")
			}
			return failure("Failed to extend due date")
		}
		return success(fmt.Sprintf("Due date extended by %d days", additionalDays))
	})
}

// AdminSendReminder describes the adminsendreminder operation and its observable behavior.
//
// AdminSendReminder does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AdminSendReminder(ctx context.Context, adminID, recordID string) ActionResult {
	return e.runAction(ctx, adminID, "", func() ActionResult {
		if err := e.SendReminder(ctx, recordID); err != nil {
			return failure("Failed to send reminder")
		}
		return success("Reminder sent successfully")
	})
}

// runAction applies the admission gate, runs the operation, and converts
// every outcome (including panics from a misbehaving provider) into an
// ActionResult. Cache invalidation fires only after a successful mutation.
func (e *Engine) runAction(ctx context.Context, adminID, invalidatePath string, op func() ActionResult) (result ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = failure(msgFailed)
		}
	}()

	if e == nil {
		return failure(msgFailed)
	}

	if e.adminLimiter != nil {
		decision := e.adminLimiter.Admit(ctx, adminID)
		if decision.Fallback {
			e.metricInc(MetricRateLimitFallback)
		}
		if !decision.Allowed {
			e.metricInc(MetricRateLimitHit)
			e.emitAudit(ctx, auditEventRateLimited, false, adminID, "", "", "", ErrRateLimited, func() map[string]string {
				return map[string]string{
					"reset_at": decision.ResetAt.Format("2006-01-02T15:04:05Z07:00"),
				}
			})
			return failure(msgThrottled)
		}
	}

	result = op()

	if result.Success {
		e.invalidateView(ctx, invalidatePath)
	}

	return result
}

func success(message string) ActionResult {
	return ActionResult{Success: true, Message: message}
}

func failure(message string) ActionResult {
	return ActionResult{Success: false, Message: message}
}
