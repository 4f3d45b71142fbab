package goCred

import (
	"context"
	"sort"
	"sync"
	"testing"
)

type mockAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*Account

	existsErr error
	getErr    error
	saveErr   error
	deleteErr error
	listErr   error

	existsCalls int
	getCalls    int
	saveCalls   int
	deleteCalls int
	listCalls   int
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{
		accounts: make(map[string]*Account),
	}
}

func (m *mockAccountStore) Exists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existsCalls++

	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.accounts[username]
	return ok, nil
}

func (m *mockAccountStore) Get(_ context.Context, username string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++

	if m.getErr != nil {
		return nil, m.getErr
	}
	account, ok := m.accounts[username]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (m *mockAccountStore) Save(_ context.Context, account *Account) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++

	if m.saveErr != nil {
		return nil, m.saveErr
	}

	current, ok := m.accounts[account.Username]
	if account.Version == 0 {
		if ok {
			return nil, ErrAccountExists
		}
	} else if !ok || current.Version != account.Version {
		return nil, ErrVersionConflict
	}

	stored := account.Clone()
	stored.Version++
	m.accounts[account.Username] = stored
	return stored.Clone(), nil
}

func (m *mockAccountStore) DeleteAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++

	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.accounts = make(map[string]*Account)
	return nil
}

func (m *mockAccountStore) List(_ context.Context, offset, limit int) ([]*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++

	if m.listErr != nil {
		return nil, m.listErr
	}

	usernames := make([]string, 0, len(m.accounts))
	for username := range m.accounts {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	if offset >= len(usernames) || limit <= 0 {
		return nil, nil
	}
	end := offset + limit
	if end > len(usernames) {
		end = len(usernames)
	}

	out := make([]*Account, 0, end-offset)
	for _, username := range usernames[offset:end] {
		out = append(out, m.accounts[username].Clone())
	}
	return out, nil
}

// stored returns the raw persisted record for assertions.
func (m *mockAccountStore) stored(t *testing.T, username string) *Account {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[username]
	if !ok {
		t.Fatalf("no stored account for %q", username)
	}
	return account.Clone()
}

type mockMailSender struct {
	mu      sync.Mutex
	sendErr error
	sent    []ResetMail
}

func (m *mockMailSender) SendPasswordReset(_ context.Context, email, subject, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, ResetMail{Email: email, Subject: subject, NewPassword: newPassword})
	return nil
}

func (m *mockMailSender) lastSent(t *testing.T) ResetMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		t.Fatal("no reset mail was sent")
	}
	return m.sent[len(m.sent)-1]
}

func testEngineConfig() Config {
	cfg := DefaultConfig()
	cfg.Hasher.Iterations = 10_000 // keep test derivations cheap
	cfg.Policy.LoginAttemptCeiling = 3
	cfg.Policy.HistoryDepth = 3
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *mockAccountStore, *mockMailSender) {
	t.Helper()

	store := newMockAccountStore()
	mail := &mockMailSender{}

	engine, err := New().
		WithConfig(cfg).
		WithAccountStore(store).
		WithMailSender(mail).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, store, mail
}

func mustSignup(t *testing.T, engine *Engine, username, password, email string) {
	t.Helper()
	if _, err := engine.Signup(context.Background(), SignupInput{
		Username: username,
		Password: password,
		Email:    email,
	}); err != nil {
		t.Fatalf("Signup(%q) error: %v", username, err)
	}
}

func TestEngineNotReady(t *testing.T) {
	var engine *Engine

	if _, err := engine.Login(context.Background(), LoginInput{Username: "a", Password: "b"}); err != ErrEngineNotReady {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if _, err := (&Engine{}).Signup(context.Background(), SignupInput{}); err != ErrEngineNotReady {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithAccountStore(newMockAccountStore())
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuilderRequiresStore(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected Build without a store to fail")
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Policy.HistoryDepth = 0

	if _, err := New().WithConfig(cfg).WithAccountStore(newMockAccountStore()).Build(); err == nil {
		t.Fatal("expected Build with invalid config to fail")
	}
}

func TestBuilderRejectsBadPattern(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Policy.Pattern = "("

	if _, err := New().WithConfig(cfg).WithAccountStore(newMockAccountStore()).Build(); err == nil {
		t.Fatal("expected Build with an uncompilable pattern to fail")
	}
}
