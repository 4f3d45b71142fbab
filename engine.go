package goCred

import (
	"context"
	"time"

	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/policy"
	"github.com/google/uuid"
)

// Engine defines a public type used by goCred APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// All workflow state lives in the AccountStore; the engine itself is safe for
// concurrent use once built.
type Engine struct {
	config  Config
	store   AccountStore
	mail    MailSender
	hasher  *password.Deriver
	policy  *policy.Validator
	audit   *auditDispatcher
	metrics *Metrics
	now     func() time.Time
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded on a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// emitAudit queues one event. The metadata closure only runs when auditing is
// enabled, so disabled deployments pay nothing for event construction.
func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, username string, failure error, metadata func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: e.now(),
		EventType: eventType,
		Username:  username,
		Success:   success,
	}
	if failure != nil {
		event.Error = failure.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}

// ready reports whether Build wired every collaborator a workflow needs.
func (e *Engine) ready() bool {
	return e != nil && e.store != nil && e.hasher != nil && e.policy != nil && e.now != nil
}

// deriveFor binds the hasher to an account's fixed salt, the shape the policy
// validator's history check consumes.
func (e *Engine) deriveFor(account *Account) func(string) ([]byte, error) {
	return func(candidate string) ([]byte, error) {
		return e.hasher.Derive(candidate, account.Salt)
	}
}

// credentialMatch wraps the constant-time comparison so no workflow ever
// reaches for bytes.Equal by accident.
func credentialMatch(candidate, stored []byte) bool {
	return password.Equal(candidate, stored)
}

// applyPasswordReset is the shared mutation of the change and forgot flows:
// append the new hash, evict the oldest entries past the history depth, point
// the current hash at the newest entry, and clear the attempt counter.
func (e *Engine) applyPasswordReset(account *Account, newHash []byte) {
	depth := e.config.Policy.HistoryDepth
	if len(account.PasswordHistory) >= depth {
		account.PasswordHistory = account.PasswordHistory[len(account.PasswordHistory)-depth+1:]
	}
	account.PasswordHistory = append(account.PasswordHistory, newHash)
	account.PasswordHash = newHash
	account.LoginAttempts = 0
}
