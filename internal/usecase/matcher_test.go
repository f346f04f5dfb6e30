package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayonaka-ratori/ledgermatch/internal/domain"
	"github.com/mayonaka-ratori/ledgermatch/internal/gateway"
	"github.com/mayonaka-ratori/ledgermatch/internal/usecase"
	mock_usecase "github.com/mayonaka-ratori/ledgermatch/internal/usecase/mocks"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func newTx(ledgerID, desc string, date time.Time, amount int64) domain.Transaction {
	return domain.Transaction{
		LedgerID:    ledgerID,
		Date:        date,
		Description: desc,
		Amount:      amount,
	}
}

func newExpense(id, store string, date time.Time, amount int64, createdAt time.Time) domain.Expense {
	return domain.Expense{
		ID:         id,
		Date:       date,
		StoreName:  store,
		Amount:     amount,
		Confidence: domain.ConfidenceUnmatched,
		CreatedAt:  createdAt,
	}
}

func TestMatcher_Reconcile_Tiers(t *testing.T) {
	tests := []struct {
		name        string
		tx          domain.Transaction
		expenses    []domain.Expense
		wantAuto    string
		wantProp    string
		wantUncert  int
		wantUnmatch int
	}{
		{
			name:     "same day, same amount, similar name auto-links",
			tx:       newTx("mf-001", "STARBUCKS COFFEE TOKYO", day(10), -1200),
			expenses: []domain.Expense{newExpense("exp-1", "Starbucks", day(10), 1200, day(10))},
			wantAuto: "exp-1",
		},
		{
			name:     "one day apart still certain",
			tx:       newTx("mf-001", "スターバックス渋谷", day(10), -680),
			expenses: []domain.Expense{newExpense("exp-1", "スターバックス", day(11), 680, day(11))},
			wantAuto: "exp-1",
		},
		{
			name:     "two days apart with dissimilar name is proposed",
			tx:       newTx("mf-001", "AMAZON.CO.JP", day(10), -2480),
			expenses: []domain.Expense{newExpense("exp-1", "書店", day(12), 2480, day(12))},
			wantProp: "exp-1",
		},
		{
			name:     "same day but dissimilar name is proposed, not certain",
			tx:       newTx("mf-001", "AMAZON.CO.JP", day(10), -2480),
			expenses: []domain.Expense{newExpense("exp-1", "書店", day(10), 2480, day(10))},
			wantProp: "exp-1",
		},
		{
			name:       "five days apart with equal amount is uncertain",
			tx:         newTx("mf-001", "STARBUCKS COFFEE", day(10), -1200),
			expenses:   []domain.Expense{newExpense("exp-1", "Starbucks", day(15), 1200, day(15))},
			wantUncert: 1,
		},
		{
			name:        "no amount match is unmatched",
			tx:          newTx("mf-001", "STARBUCKS COFFEE", day(10), -1200),
			expenses:    []domain.Expense{newExpense("exp-1", "Starbucks", day(10), 990, day(10))},
			wantUnmatch: 1,
		},
		{
			name:        "income is reported unmatched without matching",
			tx:          newTx("mf-001", "給与", day(25), 250000),
			expenses:    []domain.Expense{newExpense("exp-1", "給与", day(25), 250000, day(25))},
			wantUnmatch: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := gateway.NewMemoryStore()
			_, err := store.InsertTransaction(ctx, tt.tx)
			require.NoError(t, err)
			for _, e := range tt.expenses {
				require.NoError(t, store.InsertExpense(ctx, e))
			}

			report, err := usecase.NewMatcher(store, nil).Reconcile(ctx, []domain.Transaction{tt.tx})
			require.NoError(t, err)

			assert.Equal(t, 1, report.Summary.Processed)
			if tt.wantAuto != "" {
				require.Len(t, report.AutoMatched, 1)
				assert.Equal(t, tt.wantAuto, report.AutoMatched[0].Expense.ID)
				assert.Equal(t, domain.ConfidenceAutoMatched, report.AutoMatched[0].Expense.Confidence)
			} else {
				assert.Empty(t, report.AutoMatched)
			}
			if tt.wantProp != "" {
				require.Len(t, report.Proposed, 1)
				assert.Equal(t, tt.wantProp, report.Proposed[0].Expense.ID)
				assert.Equal(t, domain.ConfidenceProposed, report.Proposed[0].Expense.Confidence)
			} else {
				assert.Empty(t, report.Proposed)
			}
			assert.Len(t, report.Uncertain, tt.wantUncert)
			assert.Len(t, report.Unmatched, tt.wantUnmatch)

			// An uncertain disposition must leave both sides untouched.
			if tt.wantUncert > 0 {
				pool, err := store.FindUnmatchedExpensesByAmount(ctx, tt.tx.AbsAmount())
				require.NoError(t, err)
				assert.Len(t, pool, len(tt.expenses))
			}
		})
	}
}

func TestMatcher_Reconcile_CapsUncertainCandidates(t *testing.T) {
	ctx := context.Background()
	store := gateway.NewMemoryStore()
	tx := newTx("mf-001", "STARBUCKS COFFEE", day(1), -1200)
	_, err := store.InsertTransaction(ctx, tx)
	require.NoError(t, err)

	// Amount-only candidates, all well outside the linking windows.
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("exp-%02d", i)
		require.NoError(t, store.InsertExpense(ctx, newExpense(id, "Starbucks", day(10+i), 1200, day(10+i))))
	}

	report, err := usecase.NewMatcher(store, nil).Reconcile(ctx, []domain.Transaction{tx})
	require.NoError(t, err)

	require.Len(t, report.Uncertain, 1)
	require.Len(t, report.Uncertain[0].Candidates, 10)
	assert.Equal(t, "exp-00", report.Uncertain[0].Candidates[0].ID, "nearest candidates survive the cap")
	assert.Empty(t, report.AutoMatched)
	assert.Empty(t, report.Proposed)
}

func TestMatcher_Reconcile_SkipsTransfers(t *testing.T) {
	ctx := context.Background()
	store := gateway.NewMemoryStore()
	transfer := newTx("mf-001", "口座振替", day(10), -50000)
	transfer.IsTransfer = true
	_, err := store.InsertTransaction(ctx, transfer)
	require.NoError(t, err)

	report, err := usecase.NewMatcher(store, nil).Reconcile(ctx, []domain.Transaction{transfer})
	require.NoError(t, err)

	assert.Zero(t, report.Summary.Processed, "transfers never enter the pipeline")
	assert.Empty(t, report.Unmatched)
}

func TestMatcher_Reconcile_PicksNearestCandidate(t *testing.T) {
	ctx := context.Background()
	store := gateway.NewMemoryStore()
	tx := newTx("mf-001", "STARBUCKS COFFEE", day(10), -1200)
	_, err := store.InsertTransaction(ctx, tx)
	require.NoError(t, err)
	require.NoError(t, store.InsertExpense(ctx, newExpense("exp-far", "Starbucks", day(11), 1200, day(9))))
	require.NoError(t, store.InsertExpense(ctx, newExpense("exp-near", "Starbucks", day(10), 1200, day(10))))

	report, err := usecase.NewMatcher(store, nil).Reconcile(ctx, []domain.Transaction{tx})
	require.NoError(t, err)

	require.Len(t, report.AutoMatched, 1)
	assert.Equal(t, "exp-near", report.AutoMatched[0].Expense.ID)
}

func TestMatcher_Reconcile_TieBreaksByCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := gateway.NewMemoryStore()
	tx := newTx("mf-001", "STARBUCKS COFFEE", day(10), -1200)
	_, err := store.InsertTransaction(ctx, tx)
	require.NoError(t, err)
	require.NoError(t, store.InsertExpense(ctx, newExpense("exp-later", "Starbucks", day(10), 1200, day(10).Add(2*time.Hour))))
	require.NoError(t, store.InsertExpense(ctx, newExpense("exp-earlier", "Starbucks", day(10), 1200, day(10))))

	report, err := usecase.NewMatcher(store, nil).Reconcile(ctx, []domain.Transaction{tx})
	require.NoError(t, err)

	require.Len(t, report.AutoMatched, 1)
	assert.Equal(t, "exp-earlier", report.AutoMatched[0].Expense.ID)
}

func TestMatcher_Reconcile_ProposedExpenseLeavesPool(t *testing.T) {
	ctx := context.Background()
	store := gateway.NewMemoryStore()
	first := newTx("mf-001", "AMAZON.CO.JP", day(10), -2480)
	second := newTx("mf-002", "AMAZON.CO.JP", day(11), -2480)
	for _, tx := range []domain.Transaction{first, second} {
		_, err := store.InsertTransaction(ctx, tx)
		require.NoError(t, err)
	}
	require.NoError(t, store.InsertExpense(ctx, newExpense("exp-1", "書店", day(10), 2480, day(10))))

	report, err := usecase.NewMatcher(store, nil).Reconcile(ctx, []domain.Transaction{first, second})
	require.NoError(t, err)

	require.Len(t, report.Proposed, 1)
	assert.Equal(t, "mf-001", report.Proposed[0].Transaction.LedgerID)
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, "mf-002", report.Unmatched[0].LedgerID)
}

func TestMatcher_Reconcile_RejectedProposalReenters(t *testing.T) {
	ctx := context.Background()
	store := gateway.NewMemoryStore()
	matcher := usecase.NewMatcher(store, nil)

	tx := newTx("mf-001", "AMAZON.CO.JP", day(10), -2480)
	_, err := store.InsertTransaction(ctx, tx)
	require.NoError(t, err)
	require.NoError(t, store.InsertExpense(ctx, newExpense("exp-1", "書店", day(10), 2480, day(10))))

	report, err := matcher.Reconcile(ctx, []domain.Transaction{tx})
	require.NoError(t, err)
	require.Len(t, report.Proposed, 1)

	require.NoError(t, matcher.ConfirmProposal(ctx, "mf-001", false))

	report, err = matcher.Reconcile(ctx, []domain.Transaction{tx})
	require.NoError(t, err)
	assert.Len(t, report.Proposed, 1, "a rejected expense is eligible again")
}

func TestMatcher_Reconcile_StaleCandidateFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mock_usecase.NewMockStore(ctrl)
	ctx := context.Background()

	tx := newTx("mf-001", "STARBUCKS COFFEE", day(10), -1200)
	claimed := newExpense("exp-claimed", "Starbucks", day(10), 1200, day(9))
	free := newExpense("exp-free", "Starbucks", day(10), 1200, day(10))

	store.EXPECT().
		FindUnmatchedExpensesByAmount(ctx, int64(1200)).
		Return([]domain.Expense{claimed, free}, nil)
	store.EXPECT().
		LinkMatch(ctx, "mf-001", "exp-claimed", domain.ConfidenceAutoMatched).
		Return(domain.ErrStaleCandidate)
	store.EXPECT().
		LinkMatch(ctx, "mf-001", "exp-free", domain.ConfidenceAutoMatched).
		Return(nil)

	report, err := usecase.NewMatcher(store, nil).Reconcile(ctx, []domain.Transaction{tx})
	require.NoError(t, err)

	require.Len(t, report.AutoMatched, 1)
	assert.Equal(t, "exp-free", report.AutoMatched[0].Expense.ID)
}

func TestMatcher_Reconcile_StaleCandidateHiddenFromLowerTiers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mock_usecase.NewMockStore(ctrl)
	ctx := context.Background()

	tx := newTx("mf-001", "STARBUCKS COFFEE", day(10), -1200)
	claimed := newExpense("exp-claimed", "Starbucks", day(10), 1200, day(9))

	store.EXPECT().
		FindUnmatchedExpensesByAmount(ctx, int64(1200)).
		Return([]domain.Expense{claimed}, nil)
	store.EXPECT().
		LinkMatch(ctx, "mf-001", "exp-claimed", domain.ConfidenceAutoMatched).
		Return(domain.ErrStaleCandidate)

	report, err := usecase.NewMatcher(store, nil).Reconcile(ctx, []domain.Transaction{tx})
	require.NoError(t, err)

	assert.Empty(t, report.AutoMatched)
	assert.Empty(t, report.Proposed)
	assert.Empty(t, report.Uncertain, "a claimed candidate must not be listed for review")
	assert.Len(t, report.Unmatched, 1)
}

func TestMatcher_Reconcile_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mock_usecase.NewMockStore(ctrl)
	ctx := context.Background()

	wantErr := errors.New("connection reset")
	store.EXPECT().
		FindUnmatchedExpensesByAmount(ctx, int64(1200)).
		Return(nil, wantErr)

	tx := newTx("mf-001", "STARBUCKS COFFEE", day(10), -1200)
	report, err := usecase.NewMatcher(store, nil).Reconcile(ctx, []domain.Transaction{tx})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, wantErr)
}

func TestMatcher_ConfirmProposal_NoProposal(t *testing.T) {
	ctx := context.Background()
	store := gateway.NewMemoryStore()
	_, err := store.InsertTransaction(ctx, newTx("mf-001", "STARBUCKS COFFEE", day(10), -1200))
	require.NoError(t, err)

	err = usecase.NewMatcher(store, nil).ConfirmProposal(ctx, "mf-001", true)
	assert.ErrorIs(t, err, domain.ErrNoProposal)
}
