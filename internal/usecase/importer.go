package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mayonaka-ratori/ledgermatch/internal/domain"
)

// Importer ingests ledger export files into storage.
type Importer struct {
	parser LedgerParser
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewImporter creates a new importer.
func NewImporter(parser LedgerParser, store Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{parser: parser, store: store, logger: logger, now: time.Now}
}

// ImportLedgerFile normalizes and persists a ledger export. Duplicate
// external IDs are counted and skipped, which makes repeated uploads of
// overlapping export windows safe. The returned result always carries a
// full summary; only file-level failures (size cap, encoding, storage)
// produce an error.
func (i *Importer) ImportLedgerFile(ctx context.Context, raw []byte) (*domain.ImportResult, error) {
	parsed, skipped, err := i.parser.Parse(raw, i.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("normalizing ledger export: %w", err)
	}

	result := &domain.ImportResult{
		Inserted:    make([]domain.Transaction, 0, len(parsed)),
		SkippedRows: skipped,
	}
	if result.SkippedRows == nil {
		result.SkippedRows = make([]domain.SkippedRow, 0)
	}

	for _, tx := range parsed {
		inserted, err := i.store.InsertTransaction(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("inserting transaction %s: %w", tx.LedgerID, err)
		}
		if inserted {
			result.Inserted = append(result.Inserted, tx)
		} else {
			result.DuplicatesSkipped++
		}
	}

	i.logger.Info("ledger import finished",
		"inserted", len(result.Inserted),
		"skipped_rows", len(result.SkippedRows),
		"duplicates_skipped", result.DuplicatesSkipped,
	)
	return result, nil
}
