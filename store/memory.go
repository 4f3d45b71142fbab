package store

import (
	"context"
	"sort"
	"sync"

	goCred "github.com/MrEthical07/goCred"
)

// Memory is a mutex-guarded in-memory AccountStore. It hands out and retains
// deep copies, so callers never alias stored state.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]*goCred.Account
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*goCred.Account),
	}
}

// Exists implements goCred.AccountStore.
func (m *Memory) Exists(_ context.Context, username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.accounts[username]
	return ok, nil
}

// Get implements goCred.AccountStore.
func (m *Memory) Get(_ context.Context, username string) (*goCred.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[username]
	if !ok {
		return nil, goCred.ErrAccountNotFound
	}
	return account.Clone(), nil
}

// Save implements goCred.AccountStore with a versioned compare-and-set.
func (m *Memory) Save(_ context.Context, account *goCred.Account) (*goCred.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.accounts[account.Username]

	if account.Version == 0 {
		if ok {
			return nil, goCred.ErrAccountExists
		}
	} else {
		if !ok || current.Version != account.Version {
			return nil, goCred.ErrVersionConflict
		}
	}

	stored := account.Clone()
	stored.Version++
	m.accounts[account.Username] = stored

	return stored.Clone(), nil
}

// DeleteAll implements goCred.AccountStore.
func (m *Memory) DeleteAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accounts = make(map[string]*goCred.Account)
	return nil
}

// List implements goCred.AccountStore, ordered by username ascending.
func (m *Memory) List(_ context.Context, offset, limit int) ([]*goCred.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	usernames := make([]string, 0, len(m.accounts))
	for username := range m.accounts {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	if offset < 0 {
		offset = 0
	}
	if offset >= len(usernames) || limit <= 0 {
		return nil, nil
	}
	end := offset + limit
	if end > len(usernames) {
		end = len(usernames)
	}

	out := make([]*goCred.Account, 0, end-offset)
	for _, username := range usernames[offset:end] {
		out = append(out, m.accounts[username].Clone())
	}
	return out, nil
}
