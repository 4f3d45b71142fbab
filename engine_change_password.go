package goCred

import (
	"context"
	"errors"
)

// ChangePassword describes the changepassword operation and its observable behavior.
//
// ChangePassword verifies the old password through the login-time credential
// check (ErrInvalidPassword on mismatch; a reasoned *PolicyError when the
// attempt ceiling gates the account), validates the new password through the
// signup rules plus the history rule, and applies the reset mutation: rehash
// with the account's fixed salt, append to the bounded history, clear the
// attempt counter, persist.
func (e *Engine) ChangePassword(ctx context.Context, in ChangePasswordInput) (*AccountSummary, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	if in.Username == "" {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.Username, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	account, err := e.store.Get(ctx, in.Username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metricInc(MetricPasswordChangeFailure)
			e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.Username, ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.Username, ErrInternal, nil)
		return nil, ErrInternal
	}

	if e.policy.AttemptsExceeded(account.LoginAttempts) {
		rejected := &PolicyError{Reason: ReasonAttemptsExceeded}
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.Username, rejected, nil)
		return nil, rejected
	}

	oldHash, err := e.hasher.Derive(in.OldPassword, account.Salt)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.Username, ErrHashing, nil)
		return nil, ErrHashing
	}
	if !credentialMatch(oldHash, account.PasswordHash) {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.Username, ErrInvalidPassword, func() map[string]string {
			return map[string]string{
				"reason": "old_password_mismatch",
			}
		})
		return nil, ErrInvalidPassword
	}

	if err := e.policy.ValidateChange(in.NewPassword, e.deriveFor(account), account.PasswordHistory); err != nil {
		mapped := mapPolicyError(err)
		if errors.Is(mapped, ErrPasswordPolicy) || errors.Is(mapped, ErrPasswordReuse) {
			e.metricInc(MetricPolicyRejection)
		}
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.Username, mapped, func() map[string]string {
			return map[string]string{
				"reason": policyAuditReason(mapped),
			}
		})
		return nil, mapped
	}

	newHash, err := e.hasher.Derive(in.NewPassword, account.Salt)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.Username, ErrHashing, nil)
		return nil, ErrHashing
	}

	e.applyPasswordReset(account, newHash)

	if _, err := e.store.Save(ctx, account); err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.Username, ErrInternal, nil)
		return nil, ErrInternal
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, in.Username, nil, nil)

	return &AccountSummary{Username: in.Username}, nil
}
