package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mayonaka-ratori/ledgermatch/internal/classifier"
	"github.com/mayonaka-ratori/ledgermatch/internal/domain"
)

// ExpenseInput is the caller-supplied portion of a new expense record.
type ExpenseInput struct {
	Date          time.Time
	StoreName     string
	Amount        int64
	Tax           *int64
	Category      string
	Subcategory   string
	ItemsText     string
	PaymentMethod domain.PaymentMethod
	Provenance    domain.Provenance
}

// Recorder creates expense records from capture and manual entry, and
// converts unmatched transactions into expenses.
type Recorder struct {
	store      Store
	classifier classifier.Classifier
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// NewRecorder creates a new recorder. A nil classifier disables automatic
// categorization; uncategorized input is stored as-is.
func NewRecorder(store Store, cls classifier.Classifier, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:      store,
		classifier: cls,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// RecordExpense persists a new expense in the unmatched pool. When the
// caller supplies no category, the classifier chain fills it in.
func (r *Recorder) RecordExpense(ctx context.Context, in ExpenseInput) (domain.Expense, error) {
	if in.Amount <= 0 {
		return domain.Expense{}, fmt.Errorf("expense amount must be positive, got %d", in.Amount)
	}

	category, subcategory := in.Category, in.Subcategory
	if category == "" && r.classifier != nil {
		if cat, sub, ok := r.classifier.Classify(ctx, in.StoreName, in.ItemsText); ok {
			category, subcategory = cat, sub
		}
	}

	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.PaymentCash
	}
	provenance := in.Provenance
	if provenance == "" {
		provenance = domain.ProvenanceManual
	}

	e := domain.Expense{
		ID:            r.newID(),
		Date:          in.Date,
		StoreName:     in.StoreName,
		Amount:        in.Amount,
		Tax:           in.Tax,
		Category:      category,
		Subcategory:   subcategory,
		PaymentMethod: paymentMethod,
		Provenance:    provenance,
		Confidence:    domain.ConfidenceUnmatched,
		CreatedAt:     r.now().UTC(),
	}
	if err := r.store.InsertExpense(ctx, e); err != nil {
		return domain.Expense{}, fmt.Errorf("inserting expense: %w", err)
	}

	r.logger.Info("expense recorded",
		"expense_id", e.ID,
		"store", e.StoreName,
		"amount", e.Amount,
		"category", e.Category,
	)
	return e, nil
}

// PromoteTransaction converts an unlinked transaction into a confirmed
// expense. The expense is created in the unmatched pool first and then
// claimed through the same compare-and-set link path the matcher uses, so
// a concurrent pass can never double-claim either side.
func (r *Recorder) PromoteTransaction(ctx context.Context, ledgerID string) (domain.Expense, error) {
	tx, err := r.store.GetTransaction(ctx, ledgerID)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("fetching transaction %s: %w", ledgerID, err)
	}
	if tx.MatchedExpenseID != "" {
		return domain.Expense{}, fmt.Errorf("transaction %s: %w", ledgerID, domain.ErrStaleCandidate)
	}

	var category, subcategory string
	if r.classifier != nil {
		if cat, sub, ok := r.classifier.Classify(ctx, tx.Description, tx.Memo); ok {
			category, subcategory = cat, sub
		}
	}

	e := domain.Expense{
		ID:            r.newID(),
		Date:          tx.Date,
		StoreName:     tx.Description,
		Amount:        tx.AbsAmount(),
		Category:      category,
		Subcategory:   subcategory,
		PaymentMethod: domain.PaymentBankTransfer,
		Provenance:    domain.ProvenanceImport,
		Confidence:    domain.ConfidenceUnmatched,
		CreatedAt:     r.now().UTC(),
	}
	if err := r.store.InsertExpense(ctx, e); err != nil {
		return domain.Expense{}, fmt.Errorf("inserting promoted expense: %w", err)
	}
	if err := r.store.LinkMatch(ctx, ledgerID, e.ID, domain.ConfidenceConfirmed); err != nil {
		// A concurrent pass claimed the transaction between the check and
		// the link. Remove the expense again so it cannot linger in the
		// candidate pool.
		if delErr := r.store.DeleteUnmatchedExpense(ctx, e.ID); delErr != nil {
			r.logger.Warn("failed to remove promoted expense after link failure",
				"expense_id", e.ID,
				"error", delErr,
			)
		}
		return domain.Expense{}, fmt.Errorf("linking promoted expense: %w", err)
	}

	e.MatchedTransactionID = ledgerID
	e.Confidence = domain.ConfidenceConfirmed

	r.logger.Info("transaction promoted to expense",
		"ledger_id", ledgerID,
		"expense_id", e.ID,
		"amount", e.Amount,
	)
	return e, nil
}
