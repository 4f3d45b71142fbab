package goCred

import (
	"context"
	"errors"
)

// Signup describes the signup operation and its observable behavior.
//
// Signup rejects a taken username with ErrAccountExists, runs the signup-path
// policy (presence, length, composition, dictionary) and reports violations
// as a reasoned *PolicyError, then derives the initial credential with a
// fresh salt and persists a record with a zero attempt counter and a
// singleton history. The returned summary carries the username only.
// Signup may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) Signup(ctx context.Context, in SignupInput) (*AccountSummary, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	if in.Username == "" || in.Email == "" {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, in.Username, ErrInvalidInput, func() map[string]string {
			return map[string]string{
				"reason": "missing_field",
			}
		})
		return nil, ErrInvalidInput
	}

	taken, err := e.store.Exists(ctx, in.Username)
	if err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, in.Username, ErrInternal, nil)
		return nil, ErrInternal
	}
	if taken {
		e.metricInc(MetricSignupDuplicate)
		e.emitAudit(ctx, auditEventSignupDuplicate, false, in.Username, ErrAccountExists, nil)
		return nil, ErrAccountExists
	}

	if err := e.policy.Validate(in.Password); err != nil {
		mapped := mapPolicyError(err)
		if errors.Is(mapped, ErrPasswordPolicy) {
			e.metricInc(MetricPolicyRejection)
		}
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, in.Username, mapped, func() map[string]string {
			return map[string]string{
				"reason": policyAuditReason(mapped),
			}
		})
		return nil, mapped
	}

	salt, err := e.hasher.GenerateSalt()
	if err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, in.Username, ErrHashing, nil)
		return nil, ErrHashing
	}
	hash, err := e.hasher.Derive(in.Password, salt)
	if err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, in.Username, ErrHashing, nil)
		return nil, ErrHashing
	}

	account := &Account{
		Username:        in.Username,
		PasswordHash:    hash,
		Salt:            salt,
		Email:           in.Email,
		LoginAttempts:   0,
		CreatedAt:       e.now(),
		PasswordHistory: [][]byte{hash},
	}

	if _, err := e.store.Save(ctx, account); err != nil {
		// A concurrent signup can win the race between Exists and Save.
		if errors.Is(err, ErrAccountExists) {
			e.metricInc(MetricSignupDuplicate)
			e.emitAudit(ctx, auditEventSignupDuplicate, false, in.Username, ErrAccountExists, nil)
			return nil, ErrAccountExists
		}
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, in.Username, ErrInternal, nil)
		return nil, ErrInternal
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, auditEventSignupSuccess, true, in.Username, nil, nil)

	return &AccountSummary{Username: in.Username}, nil
}

// policyAuditReason extracts the machine-readable reason for audit metadata.
func policyAuditReason(err error) string {
	var policyErr *PolicyError
	if errors.As(err, &policyErr) {
		return string(policyErr.Reason)
	}
	if errors.Is(err, ErrDictionaryUnavailable) {
		return "dictionary_unavailable"
	}
	return "hashing"
}
