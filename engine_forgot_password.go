package goCred

import (
	"context"
	"errors"
	"fmt"
)

// ForgotPassword describes the forgotpassword operation and its observable behavior.
//
// ForgotPassword generates a random replacement password that itself passes
// the signup-path policy, applies the reset mutation (rehash with the
// account's fixed salt, bounded history append, attempt counter cleared),
// persists, and only then hands the plaintext to the MailSender. A delivery
// failure never rolls the committed credential change back; it is reported
// distinctly through ResetResult.DeliveryErr. The old-password check is
// skipped because the caller has proven ownership out of band, which also
// makes this the unlock path for a hard-locked account.
func (e *Engine) ForgotPassword(ctx context.Context, in ForgotPasswordInput) (*ResetResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	if in.Username == "" {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, in.Username, ErrInvalidInput, nil)
		return nil, ErrInvalidInput
	}

	account, err := e.store.Get(ctx, in.Username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metricInc(MetricPasswordResetFailure)
			e.emitAudit(ctx, auditEventPasswordResetFailure, false, in.Username, ErrAccountNotFound, nil)
			return nil, ErrAccountNotFound
		}
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, in.Username, ErrInternal, nil)
		return nil, ErrInternal
	}

	generated, err := e.policy.Generate(e.config.Reset.GeneratedLength)
	if err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, in.Username, ErrInternal, func() map[string]string {
			return map[string]string{
				"reason": "generation_exhausted",
			}
		})
		return nil, ErrInternal
	}

	newHash, err := e.hasher.Derive(generated, account.Salt)
	if err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, in.Username, ErrHashing, nil)
		return nil, ErrHashing
	}

	e.applyPasswordReset(account, newHash)

	if _, err := e.store.Save(ctx, account); err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetFailure, false, in.Username, ErrInternal, nil)
		return nil, ErrInternal
	}

	result := &ResetResult{Username: in.Username}
	if e.config.Reset.ReturnPassword {
		result.GeneratedPassword = generated
	}

	if err := e.mail.SendPasswordReset(ctx, account.Email, e.config.Reset.MailSubject, generated); err != nil {
		result.DeliveryErr = fmt.Errorf("%w: %v", ErrMailDelivery, err)
		e.metricInc(MetricResetMailFailure)
		e.emitAudit(ctx, auditEventResetMailFailure, false, in.Username, ErrMailDelivery, nil)
	} else {
		result.Delivered = true
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditEventPasswordResetSuccess, true, in.Username, nil, func() map[string]string {
		return map[string]string{
			"delivered": fmt.Sprintf("%t", result.Delivered),
		}
	})

	return result, nil
}
