package goCred

import (
	"context"
	"errors"
	"strconv"
)

// Login describes the login operation and its observable behavior.
//
// Login runs the login-time credential check: derive the supplied password
// with the stored salt, compare in constant time against the current hash,
// and require the attempt counter to be at or below the ceiling. A failed
// check increments and persists the counter before returning
// ErrInvalidCredentials; success resets it to zero. An unknown username
// fails identically to a wrong password so callers cannot enumerate accounts.
//
// In hard-lockout mode an account past the ceiling fails with
// ErrAccountLocked before any credential comparison and the counter is left
// untouched; only a password reset or change unlocks it. In the default soft
// mode the ceiling merely gates the current attempt.
func (e *Engine) Login(ctx context.Context, in LoginInput) (*AccountSummary, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	if in.Username == "" || in.Password == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, in.Username, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	account, err := e.store.Get(ctx, in.Username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, in.Username, ErrInvalidCredentials, func() map[string]string {
				return map[string]string{
					"reason": "unknown_account",
				}
			})
			return nil, ErrInvalidCredentials
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, in.Username, ErrInternal, nil)
		return nil, ErrInternal
	}

	exceeded := e.policy.AttemptsExceeded(account.LoginAttempts)
	if e.config.Lockout.Hard && exceeded {
		e.metricInc(MetricLoginLockout)
		e.emitAudit(ctx, auditEventLoginLockout, false, in.Username, ErrAccountLocked, func() map[string]string {
			return map[string]string{
				"attempts": strconv.Itoa(account.LoginAttempts),
			}
		})
		return nil, ErrAccountLocked
	}

	candidate, err := e.hasher.Derive(in.Password, account.Salt)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, in.Username, ErrHashing, nil)
		return nil, ErrHashing
	}

	if !credentialMatch(candidate, account.PasswordHash) || exceeded {
		account.LoginAttempts++
		if _, err := e.store.Save(ctx, account); err != nil {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, in.Username, ErrInternal, nil)
			return nil, ErrInternal
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, in.Username, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"attempts": strconv.Itoa(account.LoginAttempts),
			}
		})
		return nil, ErrInvalidCredentials
	}

	account.LoginAttempts = 0
	if _, err := e.store.Save(ctx, account); err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, in.Username, ErrInternal, nil)
		return nil, ErrInternal
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, in.Username, nil, nil)

	return &AccountSummary{Username: in.Username}, nil
}
