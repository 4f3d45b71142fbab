package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	minIterations        = 10_000
	minSaltLength uint32 = 16
	minKeyLength  uint32 = 16
)

var (
	// ErrEmptyPassword is returned by Derive for a zero-length password.
	ErrEmptyPassword = errors.New("empty password")
	// ErrEmptySalt is returned by Derive for a zero-length salt.
	ErrEmptySalt = errors.New("empty salt")
)

// Config defines a public type used by goCred APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Iterations uint32
	SaltLength uint32
	KeyLength  uint32
}

// Deriver defines a public type used by goCred APIs.
//
// Deriver instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Deriver struct {
	config Config
}

// NewDeriver describes the newderiver operation and its observable behavior.
//
// NewDeriver may return an error when input validation fails.
// NewDeriver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewDeriver(cfg Config) (*Deriver, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Deriver{config: cfg}, nil
}

// GenerateSalt describes the generatesalt operation and its observable behavior.
//
// GenerateSalt fills a fresh SaltLength-byte slice from crypto/rand; it never
// reuses seed state between calls.
// GenerateSalt may return an error when the system random source fails.
func (d *Deriver) GenerateSalt() ([]byte, error) {
	salt := make([]byte, d.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Derive describes the derive operation and its observable behavior.
//
// Derive is deterministic: the same (password, salt) pair always yields the
// same KeyLength-byte key, and distinct salts yield distinct keys for the
// same password with overwhelming probability.
// Derive may return an error when inputs are malformed (empty password or salt).
func (d *Deriver) Derive(password string, salt []byte) ([]byte, error) {
	// Password processing uses raw string bytes exactly as provided (no Unicode normalization).
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}
	if len(salt) == 0 {
		return nil, ErrEmptySalt
	}

	key := pbkdf2.Key(
		[]byte(password),
		salt,
		int(d.config.Iterations),
		int(d.config.KeyLength),
		sha256.New,
	)
	return key, nil
}

// Equal reports whether two derived keys are identical.
//
// Equal runs in constant time for equal-length inputs; this is a correctness
// requirement for every hash comparison in the engine, not an optimization.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

func validateConfig(cfg Config) error {
	if cfg.Iterations < minIterations {
		return errors.New("iterations must be >= 10000")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("key length must be >= 16")
	}
	return nil
}
