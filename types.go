package goCred

import (
	"context"
	"time"
)

// Account is the persisted authentication state for one username. The
// username is the primary key; the salt is fixed at creation and reused for
// every derivation over the account's lifetime.
//
// Invariants the engine maintains and stores must preserve:
//
//   - PasswordHistory never exceeds the configured history depth; the oldest
//     entry is evicted first.
//   - PasswordHash is always the most recent PasswordHistory entry (the
//     current password is itself a history member).
//   - LoginAttempts is never negative; it resets to zero on any successful
//     authentication or password reset.
type Account struct {
	Username        string
	PasswordHash    []byte
	Salt            []byte
	Email           string
	LoginAttempts   int
	CreatedAt       time.Time
	PasswordHistory [][]byte

	// Version is the optimistic-concurrency counter. A zero version marks a
	// record that has never been saved; AccountStore.Save performs a
	// compare-and-set on it so concurrent read-then-write cycles against the
	// same username cannot silently drop an update.
	Version uint64
}

// Clone returns a deep copy; stores hand out and retain copies so callers can
// never alias persisted state.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	out := *a
	out.PasswordHash = append([]byte(nil), a.PasswordHash...)
	out.Salt = append([]byte(nil), a.Salt...)
	out.PasswordHistory = make([][]byte, len(a.PasswordHistory))
	for i, h := range a.PasswordHistory {
		out.PasswordHistory[i] = append([]byte(nil), h...)
	}
	return &out
}

// AccountStore is the persistence strategy the engine must be given. The
// engine performs no locking of its own; implementations own per-username
// read-then-write atomicity through the versioned Save contract.
type AccountStore interface {
	// Exists reports whether a username is taken.
	Exists(ctx context.Context, username string) (bool, error)
	// Get returns a copy of the account or ErrAccountNotFound.
	Get(ctx context.Context, username string) (*Account, error)
	// Save persists a copy of the record and returns the stored state with an
	// advanced version. A zero input version is an insert and fails with
	// ErrAccountExists when the username is taken; a non-zero version is an
	// update and fails with ErrVersionConflict when the stored version has
	// moved on.
	Save(ctx context.Context, account *Account) (*Account, error)
	// DeleteAll removes every account.
	DeleteAll(ctx context.Context) error
	// List returns up to limit accounts starting at offset, ordered by
	// username ascending.
	List(ctx context.Context, offset, limit int) ([]*Account, error)
}

// SignupInput carries the signup workflow request.
type SignupInput struct {
	Username string
	Password string
	Email    string
}

// LoginInput carries the login workflow request.
type LoginInput struct {
	Username string
	Password string
}

// ChangePasswordInput carries the password-change workflow request.
type ChangePasswordInput struct {
	Username    string
	OldPassword string
	NewPassword string
}

// ForgotPasswordInput carries the forgotten-password workflow request. The
// caller is assumed to have proven ownership through an out-of-band channel.
type ForgotPasswordInput struct {
	Username string
}

// AccountSummary is the only account projection workflows return: the
// username, never hashes or salts.
type AccountSummary struct {
	Username string
}

// ResetResult is returned by ForgotPassword. GeneratedPassword is populated
// only when Config.Reset.ReturnPassword is enabled; Delivered and DeliveryErr
// report the mail hand-off distinctly from the already-committed credential
// change (DeliveryErr unwraps to ErrMailDelivery).
type ResetResult struct {
	Username          string
	GeneratedPassword string
	Delivered         bool
	DeliveryErr       error
}
