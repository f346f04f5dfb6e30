package domain

// SkippedRow records a ledger export row that could not be normalized.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult is the outcome of one ledger file import.
type ImportResult struct {
	Inserted          []Transaction `json:"inserted"`
	SkippedRows       []SkippedRow  `json:"skipped_rows"`
	DuplicatesSkipped int           `json:"duplicates_skipped"`
}

// MatchPair is a transaction linked (or proposed to be linked) to an expense.
type MatchPair struct {
	Transaction Transaction `json:"transaction"`
	Expense     Expense     `json:"expense"`
}

// UncertainMatch lists amount-only candidates for a transaction.
// No link has been created; the candidates are for manual review.
type UncertainMatch struct {
	Transaction Transaction `json:"transaction"`
	Candidates  []Expense   `json:"candidates"`
}

// MatchSummary provides high-level statistics of one reconciliation pass.
type MatchSummary struct {
	Processed   int `json:"processed"`
	AutoMatched int `json:"auto_matched"`
	Proposed    int `json:"proposed"`
	Uncertain   int `json:"uncertain"`
	Unmatched   int `json:"unmatched"`
}

// MatchReport is the full tiered outcome of one reconciliation pass.
// It is the sole handoff to the notification layer; bucket order follows
// the input transaction order.
type MatchReport struct {
	Summary     MatchSummary     `json:"summary"`
	AutoMatched []MatchPair      `json:"auto_matched"`
	Proposed    []MatchPair      `json:"proposed"`
	Uncertain   []UncertainMatch `json:"uncertain"`
	Unmatched   []Transaction    `json:"unmatched"`
}
