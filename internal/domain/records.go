package domain

import "time"

// MatchConfidence tracks the lifecycle of an expense-to-transaction link.
type MatchConfidence string

const (
	ConfidenceUnmatched   MatchConfidence = "unmatched"
	ConfidenceAutoMatched MatchConfidence = "auto_matched"
	ConfidenceProposed    MatchConfidence = "proposed"
	ConfidenceConfirmed   MatchConfidence = "confirmed"
)

// PaymentMethod is how an expense was paid.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentElectronic   PaymentMethod = "electronic"
)

// Provenance records how an expense entered the system.
type Provenance string

const (
	ProvenanceReceiptPhoto Provenance = "receipt_photo"
	ProvenanceManual       Provenance = "manual"
	ProvenanceImport       Provenance = "import"
)

// Transaction is one normalized row of a ledger export.
// Amounts are in minor currency units; outflows are negative.
type Transaction struct {
	LedgerID            string    `json:"ledger_id"`
	Date                time.Time `json:"date"`
	Description         string    `json:"description"`
	Amount              int64     `json:"amount"`
	SourceAccount       string    `json:"source_account"`
	CategoryLarge       string    `json:"category_large"`
	CategoryMedium      string    `json:"category_medium"`
	Memo                string    `json:"memo"`
	IsTransfer          bool      `json:"is_transfer"`
	IsCalculationTarget bool      `json:"is_calculation_target"`

	// MatchedExpenseID is empty until the transaction is linked to an expense.
	MatchedExpenseID string    `json:"matched_expense_id,omitempty"`
	ImportedAt       time.Time `json:"imported_at"`
}

// IsOutflow reports whether the transaction is a spending row.
// Ledger exports record income with positive amounts; only outflows
// are candidates for expense matching.
func (t Transaction) IsOutflow() bool {
	return t.Amount < 0
}

// AbsAmount returns the amount with the sign dropped.
func (t Transaction) AbsAmount() int64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}

// Expense is a tax-relevant spending record tracked independently of the ledger.
// Amount is always positive, in minor currency units.
type Expense struct {
	ID            string        `json:"id"`
	Date          time.Time     `json:"date"`
	StoreName     string        `json:"store_name"`
	Amount        int64         `json:"amount"`
	Tax           *int64        `json:"tax,omitempty"`
	Category      string        `json:"category"`
	Subcategory   string        `json:"subcategory,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Provenance    Provenance    `json:"provenance"`

	// MatchedTransactionID is empty until the expense is linked to a transaction.
	MatchedTransactionID string          `json:"matched_transaction_id,omitempty"`
	Confidence           MatchConfidence `json:"confidence"`
	CreatedAt            time.Time       `json:"created_at"`
}
