package goCred

import (
	"context"
	"errors"
	"testing"
)

func TestChangePasswordHappyPath(t *testing.T) {
	engine, store, _ := newTestEngine(t, testEngineConfig())
	mustSignup(t, engine, "alice", "Secret#01", "alice@example.com")

	if _, err := engine.ChangePassword(context.Background(), ChangePasswordInput{
		Username:    "alice",
		OldPassword: "Secret#01",
		NewPassword: "Fresh#234",
	}); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}

	if _, err := engine.Login(context.Background(), LoginInput{
		Username: "alice",
		Password: "Secret#01",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := engine.Login(context.Background(), LoginInput{
		Username: "alice",
		Password: "Fresh#234",
	}); err != nil {
		t.Fatalf("new password must log in, got %v", err)
	}

	account := store.stored(t, "alice")
	if len(account.PasswordHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(account.PasswordHistory))
	}
	if !credentialMatch(account.PasswordHistory[len(account.PasswordHistory)-1], account.PasswordHash) {
		t.Fatal("newest history entry must match the current hash")
	}
}

func TestChangePasswordOldMismatch(t *testing.T) {
	engine, store, _ := newTestEngine(t, testEngineConfig())
	mustSignup(t, engine, "alice", "Secret#01", "alice@example.com")
	before := store.stored(t, "alice")

	_, err := engine.ChangePassword(context.Background(), ChangePasswordInput{
		Username:    "alice",
		OldPassword: "wrong-pass",
		NewPassword: "Fresh#234",
	})
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}

	after := store.stored(t, "alice")
	if !credentialMatch(before.PasswordHash, after.PasswordHash) {
		t.Fatal("a rejected change must not touch the stored hash")
	}
}

func TestChangePasswordRejectsReuseOfCurrent(t *testing.T) {
	engine, _, _ := newTestEngine(t, testEngineConfig())
	mustSignup(t, engine, "alice", "Secret#01", "alice@example.com")

	_, err := engine.ChangePassword(context.Background(), ChangePasswordInput{
		Username:    "alice",
		OldPassword: "Secret#01",
		NewPassword: "Secret#01",
	})
	if !errors.Is(err, ErrPasswordReuse) {
		t.Fatalf("expected ErrPasswordReuse, got %v", err)
	}
	var policyErr *PolicyError
	if !errors.As(err, &policyErr) || policyErr.Reason != ReasonReused {
		t.Fatalf("expected reused reason, got %v", err)
	}
}

func TestChangePasswordHistoryWindow(t *testing.T) {
	engine, store, _ := newTestEngine(t, testEngineConfig())
	mustSignup(t, engine, "alice", "Pass#0000", "alice@example.com")

	// History depth is 3. After three changes the signup password has been
	// evicted and becomes acceptable again; the two newest remain blocked.
	passwords := []string{"Pass#0001", "Pass#0002", "Pass#0003"}
	previous := "Pass#0000"
	for _, next := range passwords {
		if _, err := engine.ChangePassword(context.Background(), ChangePasswordInput{
			Username:    "alice",
			OldPassword: previous,
			NewPassword: next,
		}); err != nil {
			t.Fatalf("ChangePassword to %q error: %v", next, err)
		}
		previous = next
	}

	account := store.stored(t, "alice")
	if len(account.PasswordHistory) != 3 {
		t.Fatalf("history length = %d, want 3", len(account.PasswordHistory))
	}

	if _, err := engine.ChangePassword(context.Background(), ChangePasswordInput{
		Username:    "alice",
		OldPassword: "Pass#0003",
		NewPassword: "Pass#0002",
	}); !errors.Is(err, ErrPasswordReuse) {
		t.Fatalf("password still inside the window must be rejected, got %v", err)
	}

	if _, err := engine.ChangePassword(context.Background(), ChangePasswordInput{
		Username:    "alice",
		OldPassword: "Pass#0003",
		NewPassword: "Pass#0000",
	}); err != nil {
		t.Fatalf("evicted password must be acceptable again, got %v", err)
	}
}

func TestChangePasswordPolicyApplies(t *testing.T) {
	engine, _, _ := newTestEngine(t, testEngineConfig())
	mustSignup(t, engine, "alice", "Secret#01", "alice@example.com")

	_, err := engine.ChangePassword(context.Background(), ChangePasswordInput{
		Username:    "alice",
		OldPassword: "Secret#01",
		NewPassword: "short",
	})
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
}

func TestChangePasswordResetsAttempts(t *testing.T) {
	engine, store, _ := newTestEngine(t, testEngineConfig())
	mustSignup(t, engine, "alice", "Secret#01", "alice@example.com")

	engine.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong-pass"})
	engine.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong-pass"})
	if got := store.stored(t, "alice").LoginAttempts; got != 2 {
		t.Fatalf("attempts = %d, want 2", got)
	}

	if _, err := engine.ChangePassword(context.Background(), ChangePasswordInput{
		Username:    "alice",
		OldPassword: "Secret#01",
		NewPassword: "Fresh#234",
	}); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}
	if got := store.stored(t, "alice").LoginAttempts; got != 0 {
		t.Fatalf("attempts after change = %d, want 0", got)
	}
}

func TestChangePasswordCeilingGate(t *testing.T) {
	engine, _, _ := newTestEngine(t, testEngineConfig())
	mustSignup(t, engine, "alice", "Secret#01", "alice@example.com")

	for i := 0; i < 4; i++ {
		engine.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong-pass"})
	}

	_, err := engine.ChangePassword(context.Background(), ChangePasswordInput{
		Username:    "alice",
		OldPassword: "Secret#01",
		NewPassword: "Fresh#234",
	})
	var policyErr *PolicyError
	if !errors.As(err, &policyErr) || policyErr.Reason != ReasonAttemptsExceeded {
		t.Fatalf("expected attempts_exceeded policy error, got %v", err)
	}
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("attempts_exceeded must unwrap to ErrAccountLocked, got %v", err)
	}
}

func TestChangePasswordUnknownUser(t *testing.T) {
	engine, _, _ := newTestEngine(t, testEngineConfig())

	_, err := engine.ChangePassword(context.Background(), ChangePasswordInput{
		Username:    "nobody",
		OldPassword: "Secret#01",
		NewPassword: "Fresh#234",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
