package policy

import (
	"bufio"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"regexp"
)

// Reason identifies which predicate rejected a candidate password.
type Reason string

const (
	// ReasonEmpty is reported for a null or zero-length candidate.
	ReasonEmpty Reason = "empty"
	// ReasonTooShort is reported when the candidate is below the minimum length.
	ReasonTooShort Reason = "too_short"
	// ReasonComposition is reported when the candidate fails the composition patterns.
	ReasonComposition Reason = "bad_composition"
	// ReasonDictionary is reported when the candidate appears verbatim in the denylist.
	ReasonDictionary Reason = "dictionary_hit"
	// ReasonReused is reported when the candidate's hash appears in the password history.
	ReasonReused Reason = "reused"
)

var (
	// ErrViolation is the sentinel every ViolationError unwraps to.
	ErrViolation = errors.New("password policy violation")
	// ErrDictionaryUnavailable indicates the denylist file could not be read.
	ErrDictionaryUnavailable = errors.New("password dictionary unavailable")
)

// ViolationError is a policy rejection carrying the specific predicate that
// failed, so callers can map it to a user-facing error kind.
type ViolationError struct {
	Reason Reason
}

func (e *ViolationError) Error() string {
	return "password policy violation: " + string(e.Reason)
}

func (e *ViolationError) Unwrap() error { return ErrViolation }

// Config defines a public type used by goCred APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// MinLength is the minimum candidate length in bytes.
	MinLength int
	// Pattern describes the acceptable character composition. It is anchored
	// and must match the entire candidate; a partial match is a rejection.
	Pattern string
	// Require lists patterns that must each match somewhere in the candidate
	// (RE2 has no lookahead, so "at least one digit and one symbol" is
	// expressed as one Require entry per character class).
	Require []string
	// DictionaryPath points at a newline-delimited denylist file. Empty
	// disables the dictionary predicate.
	DictionaryPath string
	// LoginAttemptCeiling is the maximum tolerated failed-login count.
	LoginAttemptCeiling int
	// HistoryDepth is the number of most-recent password hashes retained.
	HistoryDepth int
}

// Validator defines a public type used by goCred APIs.
//
// Validator instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Validator struct {
	config  Config
	pattern *regexp.Regexp
	require []*regexp.Regexp
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation fails (non-positive bounds or
// patterns that do not compile).
func New(cfg Config) (*Validator, error) {
	if cfg.MinLength < 1 {
		return nil, errors.New("min length must be >= 1")
	}
	if cfg.LoginAttemptCeiling < 0 {
		return nil, errors.New("login attempt ceiling must be >= 0")
	}
	if cfg.HistoryDepth < 1 {
		return nil, errors.New("history depth must be >= 1")
	}
	if cfg.Pattern == "" {
		return nil, errors.New("composition pattern required")
	}

	pattern, err := regexp.Compile(`\A(?:` + cfg.Pattern + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("invalid composition pattern: %v", err)
	}

	require := make([]*regexp.Regexp, 0, len(cfg.Require))
	for _, expr := range cfg.Require {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid require pattern %q: %v", expr, err)
		}
		require = append(require, re)
	}

	return &Validator{config: cfg, pattern: pattern, require: require}, nil
}

// Config returns a copy of the validator's configuration.
func (v *Validator) Config() Config {
	out := v.config
	out.Require = append([]string(nil), v.config.Require...)
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate runs the signup-path predicates in fixed order — presence, length,
// composition, dictionary — and short-circuits on the first failure.
// Validate returns a *ViolationError on rejection and ErrDictionaryUnavailable
// when the denylist cannot be read.
func (v *Validator) Validate(candidate string) error {
	if candidate == "" {
		return &ViolationError{Reason: ReasonEmpty}
	}
	if len(candidate) < v.config.MinLength {
		return &ViolationError{Reason: ReasonTooShort}
	}
	if !v.pattern.MatchString(candidate) {
		return &ViolationError{Reason: ReasonComposition}
	}
	for _, re := range v.require {
		if !re.MatchString(candidate) {
			return &ViolationError{Reason: ReasonComposition}
		}
	}
	return v.checkDictionary(candidate)
}

// ValidateChange describes the validatechange operation and its observable behavior.
//
// ValidateChange runs the full signup path and then the history predicate:
// the candidate is derived through the supplied derive function (bound to the
// account's fixed salt) and compared, in constant time, against every hash in
// the history. Any match rejects the candidate as reused.
func (v *Validator) ValidateChange(candidate string, derive func(string) ([]byte, error), history [][]byte) error {
	if err := v.Validate(candidate); err != nil {
		return err
	}

	candidateHash, err := derive(candidate)
	if err != nil {
		return err
	}
	for _, used := range history {
		if subtle.ConstantTimeCompare(candidateHash, used) == 1 {
			return &ViolationError{Reason: ReasonReused}
		}
	}
	return nil
}

// AttemptsExceeded reports whether a failed-login count is beyond the
// configured ceiling. The ceiling gates the current attempt; whether that is
// a soft gate or a hard lock is the engine's choice.
func (v *Validator) AttemptsExceeded(attempts int) bool {
	return attempts > v.config.LoginAttemptCeiling
}

func (v *Validator) checkDictionary(candidate string) error {
	if v.config.DictionaryPath == "" {
		return nil
	}

	f, err := os.Open(v.config.DictionaryPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDictionaryUnavailable, err)
	}
	defer f.Close()

	// Exact, case-sensitive line match; stop at the first hit.
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if scanner.Text() == candidate {
			return &ViolationError{Reason: ReasonDictionary}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDictionaryUnavailable, err)
	}
	return nil
}
