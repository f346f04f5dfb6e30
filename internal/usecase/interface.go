package usecase

import (
	"context"
	"time"

	"github.com/mayonaka-ratori/ledgermatch/internal/domain"
)

// LedgerParser normalizes raw export bytes into transactions plus the
// rows that could not be parsed.
//
//go:generate mockgen -destination=mocks/mock_store.go -source=interface.go
type LedgerParser interface {
	Parse(raw []byte, importedAt time.Time) ([]domain.Transaction, []domain.SkippedRow, error)
}

// Store is the persistence boundary for transactions and expenses.
// The usecase layer depends on this interface, not on a concrete backend.
type Store interface {
	// InsertTransaction persists a transaction unless its ledger ID already
	// exists. Returns false without error for duplicates.
	InsertTransaction(ctx context.Context, tx domain.Transaction) (bool, error)

	// GetTransaction fetches a transaction by ledger ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetTransaction(ctx context.Context, ledgerID string) (domain.Transaction, error)

	// ListUnmatchedTransactions returns unlinked, non-transfer transactions,
	// newest first. limit <= 0 means no limit.
	ListUnmatchedTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)

	// InsertExpense persists a new expense record.
	InsertExpense(ctx context.Context, e domain.Expense) error

	// DeleteUnmatchedExpense removes an expense that is still in the
	// unmatched pool. Returns domain.ErrNotFound when no such unmatched
	// expense exists; a linked expense is never deleted.
	DeleteUnmatchedExpense(ctx context.Context, expenseID string) error

	// FindUnmatchedExpensesByAmount returns expenses in the candidate pool
	// (confidence unmatched) with exactly the given positive amount,
	// ordered by creation time then ID for deterministic runs.
	FindUnmatchedExpensesByAmount(ctx context.Context, amount int64) ([]domain.Expense, error)

	// LatestExpenseByStore returns the most recently created expense for a
	// store name, or domain.ErrNotFound.
	LatestExpenseByStore(ctx context.Context, storeName string) (domain.Expense, error)

	// LinkMatch links a transaction and an expense with compare-and-set
	// semantics: both sides must still be unlinked (and the expense
	// unmatched) at write time, otherwise domain.ErrStaleCandidate.
	LinkMatch(ctx context.Context, ledgerID, expenseID string, confidence domain.MatchConfidence) error

	// ResolveProposal finalizes a proposed link. accept promotes the
	// expense to confirmed; reject clears both sides and returns the
	// expense to the unmatched pool. Returns domain.ErrNoProposal when the
	// transaction has no link in the proposed state.
	ResolveProposal(ctx context.Context, ledgerID string, accept bool) error
}
