package goCred

import (
	"errors"

	"github.com/MrEthical07/goCred/policy"
)

var (
	// ErrInvalidCredentials is the enumeration-safe login/signup rejection; it
	// never distinguishes an unknown username from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidPassword is returned by ChangePassword when the supplied old
	// password does not match the stored credential.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrAccountExists is returned by Signup for an already-taken username.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountNotFound is returned where absence is not enumeration-sensitive
	// (ForgotPassword, store lookups).
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountLocked is returned once the login-attempt ceiling is exceeded
	// and the engine runs in hard-lockout mode.
	ErrAccountLocked = errors.New("account locked")
	// ErrPasswordPolicy is the category every composition/dictionary/length
	// rejection unwraps to; the concrete reason rides on [PolicyError].
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordReuse is the category a history rejection unwraps to.
	ErrPasswordReuse = errors.New("password was used before")
	// ErrDictionaryUnavailable indicates the denylist file could not be read.
	ErrDictionaryUnavailable = errors.New("password dictionary unavailable")
	// ErrHashing indicates a key-derivation failure (malformed inputs or an
	// unavailable primitive); primitive error text is never propagated.
	ErrHashing = errors.New("password hashing failed")
	// ErrInvalidInput is returned for structurally invalid workflow input
	// (empty username or email) before any collaborator is consulted.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMailDelivery reports a failed reset-mail hand-off; the credential
	// change it accompanies is already committed.
	ErrMailDelivery = errors.New("reset mail delivery failed")
	// ErrVersionConflict is returned by AccountStore implementations when a
	// versioned save loses a concurrent race.
	ErrVersionConflict = errors.New("account version conflict")
	// ErrInternal is the opaque storage/unexpected-state failure.
	ErrInternal = errors.New("internal error")
	// ErrEngineNotReady is returned when an Engine method runs before Build
	// wired its collaborators.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// PolicyReason aliases the policy package's reason so the engine can add the
// reasons only it can observe (reuse, ceiling).
type PolicyReason = policy.Reason

const (
	// ReasonEmpty is an alias of the policy package reason.
	ReasonEmpty = policy.ReasonEmpty
	// ReasonTooShort is an alias of the policy package reason.
	ReasonTooShort = policy.ReasonTooShort
	// ReasonComposition is an alias of the policy package reason.
	ReasonComposition = policy.ReasonComposition
	// ReasonDictionary is an alias of the policy package reason.
	ReasonDictionary = policy.ReasonDictionary
	// ReasonReused is an alias of the policy package reason.
	ReasonReused = policy.ReasonReused
	// ReasonAttemptsExceeded is reported when the login-attempt ceiling gates
	// a password-change's old-password check.
	ReasonAttemptsExceeded PolicyReason = "attempts_exceeded"
)

// PolicyError is the reasoned validation failure surfaced by Signup and
// ChangePassword. errors.Is matches the category (ErrPasswordPolicy,
// ErrPasswordReuse, or ErrAccountLocked); the Reason field carries the
// specific predicate for user-facing mapping.
type PolicyError struct {
	Reason PolicyReason
}

func (e *PolicyError) Error() string {
	return "password rejected: " + string(e.Reason)
}

func (e *PolicyError) Unwrap() error {
	switch e.Reason {
	case ReasonReused:
		return ErrPasswordReuse
	case ReasonAttemptsExceeded:
		return ErrAccountLocked
	default:
		return ErrPasswordPolicy
	}
}

// mapPolicyError translates policy-package failures into the public taxonomy.
// Derivation failures inside the history check arrive here too and are
// reported as hashing faults.
func mapPolicyError(err error) error {
	var violation *policy.ViolationError
	if errors.As(err, &violation) {
		return &PolicyError{Reason: violation.Reason}
	}
	if errors.Is(err, policy.ErrDictionaryUnavailable) {
		return ErrDictionaryUnavailable
	}
	return ErrHashing
}
