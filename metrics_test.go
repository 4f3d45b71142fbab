package goCred

import (
	"context"
	"testing"
)

func newMetricsEngine(t *testing.T, cfg Config) (*Engine, *mockMailSender) {
	t.Helper()

	mail := &mockMailSender{}
	engine, err := New().
		WithConfig(cfg).
		WithAccountStore(newMockAccountStore()).
		WithMailSender(mail).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, mail
}

func TestMetricsCountWorkflows(t *testing.T) {
	engine, _ := newMetricsEngine(t, testEngineConfig())
	ctx := context.Background()

	mustSignup(t, engine, "alice", "Secret#01", "alice@example.com")
	engine.Signup(ctx, SignupInput{Username: "alice", Password: "Other#456", Email: "x@example.com"})
	engine.Signup(ctx, SignupInput{Username: "bob", Password: "short", Email: "bob@example.com"})

	engine.Login(ctx, LoginInput{Username: "alice", Password: "wrong-pass"})
	engine.Login(ctx, LoginInput{Username: "alice", Password: "Secret#01"})

	engine.ChangePassword(ctx, ChangePasswordInput{
		Username:    "alice",
		OldPassword: "Secret#01",
		NewPassword: "Fresh#234",
	})
	engine.ForgotPassword(ctx, ForgotPasswordInput{Username: "alice"})

	snap := engine.MetricsSnapshot()
	want := map[MetricID]uint64{
		MetricSignupSuccess:         1,
		MetricSignupDuplicate:       1,
		MetricSignupFailure:         1,
		MetricPolicyRejection:       1,
		MetricLoginSuccess:          1,
		MetricLoginFailure:          1,
		MetricPasswordChangeSuccess: 1,
		MetricPasswordResetSuccess:  1,
	}
	for id, count := range want {
		if got := snap.Counters[id]; got != count {
			t.Fatalf("metric %d = %d, want %d", id, got, count)
		}
	}
	for _, id := range []MetricID{MetricLoginLockout, MetricPasswordChangeFailure, MetricPasswordResetFailure, MetricResetMailFailure} {
		if got := snap.Counters[id]; got != 0 {
			t.Fatalf("metric %d = %d, want 0", id, got)
		}
	}
}

func TestMetricsMailFailure(t *testing.T) {
	engine, mail := newMetricsEngine(t, testEngineConfig())
	mustSignup(t, engine, "alice", "Secret#01", "alice@example.com")

	mail.sendErr = context.DeadlineExceeded
	if _, err := engine.ForgotPassword(context.Background(), ForgotPasswordInput{Username: "alice"}); err != nil {
		t.Fatalf("ForgotPassword error: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if got := snap.Counters[MetricResetMailFailure]; got != 1 {
		t.Fatalf("mail failure metric = %d, want 1", got)
	}
	if got := snap.Counters[MetricPasswordResetSuccess]; got != 1 {
		t.Fatalf("reset success metric = %d, want 1", got)
	}
}

func TestMetricsHardLockout(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Lockout.Hard = true
	engine, _ := newMetricsEngine(t, cfg)
	ctx := context.Background()

	mustSignup(t, engine, "alice", "Secret#01", "alice@example.com")
	for i := 0; i < 4; i++ {
		engine.Login(ctx, LoginInput{Username: "alice", Password: "wrong-pass"})
	}
	engine.Login(ctx, LoginInput{Username: "alice", Password: "Secret#01"})

	snap := engine.MetricsSnapshot()
	if got := snap.Counters[MetricLoginLockout]; got != 1 {
		t.Fatalf("lockout metric = %d, want 1", got)
	}
	if got := snap.Counters[MetricLoginFailure]; got != 4 {
		t.Fatalf("login failure metric = %d, want 4", got)
	}
}

func TestMetricsDisabledSnapshotEmpty(t *testing.T) {
	engine, _, _ := newTestEngine(t, testEngineConfig())

	snap := engine.MetricsSnapshot()
	if len(snap.Counters) != 0 {
		t.Fatalf("disabled metrics snapshot has %d counters, want 0", len(snap.Counters))
	}
}
