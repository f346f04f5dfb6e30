package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mayonaka-ratori/ledgermatch/internal/domain"
)

// Date tolerance, in calendar days, for the two linking tiers.
const (
	certainWindowDays = 1
	likelyWindowDays  = 2
)

// maxUncertainCandidates caps the amount-only candidates listed per
// transaction for manual review.
const maxUncertainCandidates = 10

// Matcher assigns newly imported transactions to recorded expenses.
type Matcher struct {
	store  Store
	logger *slog.Logger
}

// NewMatcher creates a new matcher.
func NewMatcher(store Store, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{store: store, logger: logger}
}

// Reconcile evaluates each transaction independently against the pool of
// unmatched expenses and assigns a disposition by confidence tier:
//
//	certain:   within ±1 day, equal absolute amount, similar name → auto-linked
//	likely:    within ±2 days, equal absolute amount              → link proposed
//	uncertain: equal absolute amount only                         → listed, not linked
//
// The first qualifying tier wins. Transfers are excluded entirely;
// non-outflow rows are reported unmatched. A pairing lost to a concurrent
// write falls through to the next candidate or tier; the batch never fails
// for that reason.
func (m *Matcher) Reconcile(ctx context.Context, txs []domain.Transaction) (*domain.MatchReport, error) {
	report := &domain.MatchReport{
		AutoMatched: make([]domain.MatchPair, 0),
		Proposed:    make([]domain.MatchPair, 0),
		Uncertain:   make([]domain.UncertainMatch, 0),
		Unmatched:   make([]domain.Transaction, 0),
	}

	for _, tx := range txs {
		if tx.IsTransfer {
			continue
		}
		report.Summary.Processed++

		if !tx.IsOutflow() {
			report.Unmatched = append(report.Unmatched, tx)
			continue
		}

		candidates, err := m.store.FindUnmatchedExpensesByAmount(ctx, tx.AbsAmount())
		if err != nil {
			return nil, fmt.Errorf("fetching candidates for %s: %w", tx.LedgerID, err)
		}
		sortCandidates(tx.Date, candidates)

		linked, remaining, err := m.linkTier(ctx, tx, candidates, certainWindowDays, true, domain.ConfidenceAutoMatched)
		if err != nil {
			return nil, err
		}
		if linked != nil {
			report.AutoMatched = append(report.AutoMatched, *linked)
			continue
		}

		linked, remaining, err = m.linkTier(ctx, tx, remaining, likelyWindowDays, false, domain.ConfidenceProposed)
		if err != nil {
			return nil, err
		}
		if linked != nil {
			report.Proposed = append(report.Proposed, *linked)
			continue
		}

		if len(remaining) > 0 {
			if len(remaining) > maxUncertainCandidates {
				remaining = remaining[:maxUncertainCandidates]
			}
			report.Uncertain = append(report.Uncertain, domain.UncertainMatch{
				Transaction: tx,
				Candidates:  remaining,
			})
			continue
		}

		report.Unmatched = append(report.Unmatched, tx)
	}

	report.Summary.AutoMatched = len(report.AutoMatched)
	report.Summary.Proposed = len(report.Proposed)
	report.Summary.Uncertain = len(report.Uncertain)
	report.Summary.Unmatched = len(report.Unmatched)

	m.logger.Info("reconciliation pass finished",
		"processed", report.Summary.Processed,
		"auto_matched", report.Summary.AutoMatched,
		"proposed", report.Summary.Proposed,
		"uncertain", report.Summary.Uncertain,
		"unmatched", report.Summary.Unmatched,
	)
	return report, nil
}

// linkTier tries to link tx to the best eligible candidate for one tier.
// Candidates claimed by a concurrent writer are dropped from the returned
// slice so lower tiers do not see them again.
func (m *Matcher) linkTier(ctx context.Context, tx domain.Transaction, candidates []domain.Expense, windowDays int, needName bool, confidence domain.MatchConfidence) (*domain.MatchPair, []domain.Expense, error) {
	remaining := candidates
	for _, exp := range candidates {
		if dayDelta(tx.Date, exp.Date) > windowDays {
			continue
		}
		if needName && !nameSimilar(tx.Description, exp.StoreName) {
			continue
		}

		err := m.store.LinkMatch(ctx, tx.LedgerID, exp.ID, confidence)
		if errors.Is(err, domain.ErrStaleCandidate) {
			m.logger.Warn("candidate claimed concurrently, skipping",
				"ledger_id", tx.LedgerID,
				"expense_id", exp.ID,
			)
			remaining = dropCandidate(remaining, exp.ID)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("linking %s to expense %s: %w", tx.LedgerID, exp.ID, err)
		}

		exp.MatchedTransactionID = tx.LedgerID
		exp.Confidence = confidence
		tx.MatchedExpenseID = exp.ID
		return &domain.MatchPair{Transaction: tx, Expense: exp}, dropCandidate(remaining, exp.ID), nil
	}
	return nil, remaining, nil
}

// ConfirmProposal resolves a proposed link. accept finalizes it; reject
// clears both sides and returns the expense to the candidate pool for
// future reconciliation passes.
func (m *Matcher) ConfirmProposal(ctx context.Context, ledgerID string, accept bool) error {
	if err := m.store.ResolveProposal(ctx, ledgerID, accept); err != nil {
		return fmt.Errorf("resolving proposal for %s: %w", ledgerID, err)
	}
	m.logger.Info("proposal resolved", "ledger_id", ledgerID, "accepted", accept)
	return nil
}

// ListUnmatchedTransactions returns unlinked, non-transfer transactions
// for the manual-review surface, newest first.
func (m *Matcher) ListUnmatchedTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	txs, err := m.store.ListUnmatchedTransactions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing unmatched transactions: %w", err)
	}
	return txs, nil
}

// sortCandidates orders expenses by calendar-day distance from date,
// breaking ties by creation time then ID. Stable, reproducible ordering
// is part of the matcher contract.
func sortCandidates(date time.Time, candidates []domain.Expense) {
	sort.SliceStable(candidates, func(a, b int) bool {
		da, db := dayDelta(date, candidates[a].Date), dayDelta(date, candidates[b].Date)
		if da != db {
			return da < db
		}
		if !candidates[a].CreatedAt.Equal(candidates[b].CreatedAt) {
			return candidates[a].CreatedAt.Before(candidates[b].CreatedAt)
		}
		return candidates[a].ID < candidates[b].ID
	})
}

func dropCandidate(candidates []domain.Expense, id string) []domain.Expense {
	out := make([]domain.Expense, 0, len(candidates))
	for _, c := range candidates {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// dayDelta returns the absolute distance between two dates in calendar days.
func dayDelta(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	delta := int(ad.Sub(bd) / (24 * time.Hour))
	if delta < 0 {
		delta = -delta
	}
	return delta
}

// nameSimilar reports whether one name is a substring of the other after
// lower-casing and stripping ASCII and ideographic spaces. This mirrors
// the aggregator-era heuristic exactly; an empty side never matches.
func nameSimilar(a, b string) bool {
	an, bn := normalizeName(a), normalizeName(b)
	if an == "" || bn == "" {
		return false
	}
	return strings.Contains(an, bn) || strings.Contains(bn, an)
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "　", "")
}
