package gateway

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mayonaka-ratori/ledgermatch/internal/domain"
)

// MemoryStore is a mutex-guarded in-memory Store implementation, used for
// tests and local runs without a database. All reads return copies.
type MemoryStore struct {
	mu           sync.Mutex
	transactions map[string]*domain.Transaction
	expenses     map[string]*domain.Expense
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*domain.Transaction),
		expenses:     make(map[string]*domain.Expense),
	}
}

// InsertTransaction persists a transaction unless the ledger ID is taken.
func (s *MemoryStore) InsertTransaction(_ context.Context, tx domain.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[tx.LedgerID]; exists {
		return false, nil
	}
	stored := tx
	s.transactions[tx.LedgerID] = &stored
	return true, nil
}

// GetTransaction fetches a transaction by ledger ID.
func (s *MemoryStore) GetTransaction(_ context.Context, ledgerID string) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[ledgerID]
	if !ok {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", ledgerID, domain.ErrNotFound)
	}
	return *tx, nil
}

// ListUnmatchedTransactions returns unlinked, non-transfer transactions,
// newest first.
func (s *MemoryStore) ListUnmatchedTransactions(_ context.Context, limit int) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Transaction, 0)
	for _, tx := range s.transactions {
		if tx.MatchedExpenseID == "" && !tx.IsTransfer {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].Date.Equal(out[b].Date) {
			return out[a].Date.After(out[b].Date)
		}
		return out[a].LedgerID < out[b].LedgerID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// InsertExpense persists a new expense record.
func (s *MemoryStore) InsertExpense(_ context.Context, e domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.expenses[e.ID]; exists {
		return fmt.Errorf("expense %s already exists", e.ID)
	}
	stored := e
	s.expenses[e.ID] = &stored
	return nil
}

// DeleteUnmatchedExpense removes an expense that is still unmatched.
func (s *MemoryStore) DeleteUnmatchedExpense(_ context.Context, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[expenseID]
	if !ok || e.Confidence != domain.ConfidenceUnmatched {
		return fmt.Errorf("unmatched expense %s: %w", expenseID, domain.ErrNotFound)
	}
	delete(s.expenses, expenseID)
	return nil
}

// FindUnmatchedExpensesByAmount returns unmatched expenses with exactly
// the given amount, ordered by creation time then ID.
func (s *MemoryStore) FindUnmatchedExpensesByAmount(_ context.Context, amount int64) ([]domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Expense, 0)
	for _, e := range s.expenses {
		if e.Confidence == domain.ConfidenceUnmatched && e.Amount == amount {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

// LatestExpenseByStore returns the most recently created expense for a store.
func (s *MemoryStore) LatestExpenseByStore(_ context.Context, storeName string) (domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *domain.Expense
	for _, e := range s.expenses {
		if e.StoreName != storeName {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	if latest == nil {
		return domain.Expense{}, fmt.Errorf("expense for store %q: %w", storeName, domain.ErrNotFound)
	}
	return *latest, nil
}

// LinkMatch links a transaction and an expense. Both sides must still be
// unclaimed or the write fails with domain.ErrStaleCandidate.
func (s *MemoryStore) LinkMatch(_ context.Context, ledgerID, expenseID string, confidence domain.MatchConfidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[ledgerID]
	if !ok {
		return fmt.Errorf("transaction %s: %w", ledgerID, domain.ErrNotFound)
	}
	e, ok := s.expenses[expenseID]
	if !ok {
		return fmt.Errorf("expense %s: %w", expenseID, domain.ErrNotFound)
	}
	if tx.MatchedExpenseID != "" {
		return fmt.Errorf("transaction %s already linked: %w", ledgerID, domain.ErrStaleCandidate)
	}
	if e.MatchedTransactionID != "" || e.Confidence != domain.ConfidenceUnmatched {
		return fmt.Errorf("expense %s already claimed: %w", expenseID, domain.ErrStaleCandidate)
	}

	tx.MatchedExpenseID = expenseID
	e.MatchedTransactionID = ledgerID
	e.Confidence = confidence
	return nil
}

// ResolveProposal finalizes or rejects a proposed link on a transaction.
func (s *MemoryStore) ResolveProposal(_ context.Context, ledgerID string, accept bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[ledgerID]
	if !ok {
		return fmt.Errorf("transaction %s: %w", ledgerID, domain.ErrNotFound)
	}
	if tx.MatchedExpenseID == "" {
		return fmt.Errorf("transaction %s: %w", ledgerID, domain.ErrNoProposal)
	}
	e, ok := s.expenses[tx.MatchedExpenseID]
	if !ok || e.Confidence != domain.ConfidenceProposed {
		return fmt.Errorf("transaction %s: %w", ledgerID, domain.ErrNoProposal)
	}

	if accept {
		e.Confidence = domain.ConfidenceConfirmed
		return nil
	}
	e.Confidence = domain.ConfidenceUnmatched
	e.MatchedTransactionID = ""
	tx.MatchedExpenseID = ""
	return nil
}
