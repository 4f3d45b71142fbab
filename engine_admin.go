package goCred

import (
	"context"
)

// Accounts is a thin pass-through to the store: the first page of account
// summaries, ordered by username ascending, bounded by Admin.ListPageSize.
func (e *Engine) Accounts(ctx context.Context) ([]AccountSummary, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	accounts, err := e.store.List(ctx, 0, e.config.Admin.ListPageSize)
	if err != nil {
		return nil, ErrInternal
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, AccountSummary{Username: account.Username})
	}
	return summaries, nil
}

// DeleteAllAccounts is a thin pass-through to the store's wipe.
func (e *Engine) DeleteAllAccounts(ctx context.Context) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	if err := e.store.DeleteAll(ctx); err != nil {
		e.emitAudit(ctx, auditEventAccountsWipe, false, "", ErrInternal, nil)
		return ErrInternal
	}

	e.emitAudit(ctx, auditEventAccountsWipe, true, "", nil, nil)
	return nil
}
