package goCred

import (
	"errors"
)

// Config defines a public type used by goCred APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// It is the single policy source: the engine takes an explicit value at build
// time and never consults ambient state afterwards.
type Config struct {
	Policy  PolicyConfig
	Hasher  HasherConfig
	Lockout LockoutConfig
	Reset   ResetConfig
	Admin   AdminConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
POLICY CONFIG
====================================
*/

// PolicyConfig defines a public type used by goCred APIs.
//
// PolicyConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PolicyConfig struct {
	// MinLength is the minimum password length in bytes.
	MinLength int
	// Pattern is the composition pattern; it must match the entire candidate.
	Pattern string
	// Require lists patterns that must each match somewhere in the candidate
	// (one entry per required character class).
	Require []string
	// DictionaryPath points at a newline-delimited denylist file, read fresh
	// at every validation. Empty disables the dictionary predicate.
	DictionaryPath string
	// LoginAttemptCeiling is the maximum tolerated failed-login count; the
	// check gates the current attempt (see LockoutConfig for semantics).
	LoginAttemptCeiling int
	// HistoryDepth is the number of most-recent password hashes retained per
	// account, the current hash included.
	HistoryDepth int
}

/*
====================================
HASHER CONFIG
====================================
*/

// HasherConfig defines a public type used by goCred APIs.
//
// HasherConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HasherConfig struct {
	Iterations uint32
	SaltLength uint32
	KeyLength  uint32
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by goCred APIs.
//
// The default is the soft ceiling: attempts beyond the ceiling simply fail
// the login predicate, and the counter clears on the next successful
// authentication or password reset. Hard mode turns the exceeded ceiling
// into ErrAccountLocked before any credential comparison; only a password
// reset (or change through another channel) unlocks the account.
type LockoutConfig struct {
	Hard bool
}

/*
====================================
RESET CONFIG
====================================
*/

// ResetConfig defines a public type used by goCred APIs.
//
// ResetConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResetConfig struct {
	// ReturnPassword controls whether ForgotPassword's result carries the
	// generated plaintext. The MailSender always receives it either way.
	ReturnPassword bool
	// MailSubject is the subject line handed to the MailSender.
	MailSubject string
	// GeneratedLength is the length of generated replacement passwords; it is
	// raised to Policy.MinLength when smaller.
	GeneratedLength int
}

/*
====================================
ADMIN CONFIG
====================================
*/

// AdminConfig defines a public type used by goCred APIs.
//
// AdminConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AdminConfig struct {
	// ListPageSize bounds the Accounts pass-through listing.
	ListPageSize int
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goCred APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goCred APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration: 8-character minimum,
// printable-ASCII composition with at least one digit and one symbol, a
// 5-attempt ceiling, 5 retained hashes, and the 65536-iteration PBKDF2
// parameters with 16-byte salts.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Policy: PolicyConfig{
			MinLength:           8,
			Pattern:             `[[:graph:]]+`,
			Require:             []string{`[0-9]`, `[^0-9A-Za-z]`},
			DictionaryPath:      "",
			LoginAttemptCeiling: 5,
			HistoryDepth:        5,
		},
		Hasher: HasherConfig{
			Iterations: 65536,
			SaltLength: 16,
			KeyLength:  32,
		},
		Lockout: LockoutConfig{
			Hard: false,
		},
		Reset: ResetConfig{
			ReturnPassword:  true,
			MailSubject:     "Password reset",
			GeneratedLength: 12,
		},
		Admin: AdminConfig{
			ListPageSize: 10,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Policy.Require = append([]string(nil), cfg.Policy.Require...)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when a configured bound is outside its valid
// range; pattern compilation is checked later, when Build constructs the
// policy validator.
func (c *Config) Validate() error {
	// Policy
	if c.Policy.MinLength < 1 {
		return errors.New("Policy MinLength must be >= 1")
	}
	if c.Policy.Pattern == "" {
		return errors.New("Policy Pattern is required")
	}
	if c.Policy.LoginAttemptCeiling < 0 {
		return errors.New("Policy LoginAttemptCeiling must be >= 0")
	}
	if c.Policy.HistoryDepth < 1 {
		return errors.New("Policy HistoryDepth must be >= 1")
	}

	// Hasher
	if c.Hasher.Iterations < 10_000 {
		return errors.New("Hasher Iterations must be >= 10000")
	}
	if c.Hasher.SaltLength < 16 {
		return errors.New("Hasher SaltLength must be >= 16")
	}
	if c.Hasher.KeyLength < 16 {
		return errors.New("Hasher KeyLength must be >= 16")
	}

	// Reset
	if c.Reset.MailSubject == "" {
		return errors.New("Reset MailSubject is required")
	}
	if c.Reset.GeneratedLength < 1 {
		return errors.New("Reset GeneratedLength must be >= 1")
	}

	// Admin
	if c.Admin.ListPageSize < 1 {
		return errors.New("Admin ListPageSize must be >= 1")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}
