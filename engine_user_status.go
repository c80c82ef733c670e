package lendcore

import (
	"context"
)

// ApproveUser admits a pending (or previously rejected) account.
// Equivalent to SetUserStatus with [StatusApproved].
func (e *Engine) ApproveUser(ctx context.Context, userID string) error {
	return e.SetUserStatus(ctx, userID, StatusApproved)
}

// RejectUser describes the rejectuser operation and its observable behavior.
//
// RejectUser may return an error when input validation or dependency calls fail.
func (e *Engine) RejectUser(ctx context.Context, userID string) error {
	return e.SetUserStatus(ctx, userID, StatusRejected)
}

// SetUserStatus moves the account to the given admission status. There is
// no terminal status: any status may be reassigned at any time, and
// writing the current status again is an idempotent success.
func (e *Engine) SetUserStatus(ctx context.Context, userID string, status UserStatus) error {
	err := e.updateUserStatus(ctx, userID, status)
	if err == nil {
		switch status {
		case StatusApproved:
			e.metricInc(MetricUserApproved)
		case StatusRejected:
			e.metricInc(MetricUserRejected)
		}
	}
	e.emitAudit(ctx, auditEventUserStatusChange, err == nil, "", userID, "", "", err, func() map[string]string {
		return map[string]string{
			"status": status.String(),
		}
	})
	return err
}

func (e *Engine) updateUserStatus(ctx context.Context, userID string, status UserStatus) error {
	if e.provider == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}
	if status != StatusPending && status != StatusApproved && status != StatusRejected {
		return ErrInvalidStatus
	}

	current, err := e.provider.GetUserByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if current.Status == status {
		return nil
	}

	if _, err := e.provider.UpdateUserStatus(ctx, userID, status); err != nil {
		return err
	}

	return nil
}

// SetUserRole assigns the access role. Role is orthogonal to admission
// status; no status constrains a role change. Writing the current role
// again is an idempotent success.
func (e *Engine) SetUserRole(ctx context.Context, userID string, role UserRole) error {
	err := e.updateUserRole(ctx, userID, role)
	if err == nil {
		e.metricInc(MetricUserRoleChanged)
	}
	e.emitAudit(ctx, auditEventUserRoleChange, err == nil, "", userID, "", "", err, func() map[string]string {
		return map[string]string{
			"role": role.String(),
		}
	})
	return err
}

func (e *Engine) updateUserRole(ctx context.Context, userID string, role UserRole) error {
	if e.provider == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}
	if role != RoleUser && role != RoleAdmin {
		return ErrInvalidRole
	}

	current, err := e.provider.GetUserByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if current.Role == role {
		return nil
	}

	if _, err := e.provider.UpdateUserRole(ctx, userID, role); err != nil {
		return err
	}

	return nil
}

// DeleteUser hard-deletes the account immediately, bypassing the status
// machine. Open borrow records referencing the user are orphaned; they
// are never cascaded.
func (e *Engine) DeleteUser(ctx context.Context, userID string) error {
	err := e.deleteUser(ctx, userID)
	if err == nil {
		e.metricInc(MetricUserDeleted)
	}
	e.emitAudit(ctx, auditEventUserDeleted, err == nil, "", userID, "", "", err, nil)
	return err
}

func (e *Engine) deleteUser(ctx context.Context, userID string) error {
	if e.provider == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}

	if _, err := e.provider.GetUserByID(ctx, userID); err != nil {
		return ErrUserNotFound
	}

	return e.provider.DeleteUser(ctx, userID)
}
