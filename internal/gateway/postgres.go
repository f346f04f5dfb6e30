package gateway

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mayonaka-ratori/ledgermatch/internal/domain"
)

//go:embed 001_create_ledger.sql
var migrationSQL string

// PostgresConfig holds the PostgreSQL store configuration.
type PostgresConfig struct {
	// URL is a pgx connection string or URL.
	URL string
	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
}

// PostgresStore is the PostgreSQL Store implementation. Link writes use
// conditional UPDATEs so concurrent passes can never double-claim a record.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore connects to the database, verifies the connection with
// a few retries, and applies the schema migration.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 10
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	err = retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		},
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, migrationSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("connected to PostgreSQL", "max_pool_size", cfg.MaxPoolSize)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// InsertTransaction persists a transaction unless the ledger ID is taken.
func (s *PostgresStore) InsertTransaction(ctx context.Context, tx domain.Transaction) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (
			ledger_id, date, description, amount, source_account,
			category_large, category_medium, memo, is_transfer,
			is_calculation_target, matched_expense_id, imported_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, '', $11)
		ON CONFLICT (ledger_id) DO NOTHING
	`,
		tx.LedgerID, tx.Date, tx.Description, tx.Amount, tx.SourceAccount,
		tx.CategoryLarge, tx.CategoryMedium, tx.Memo, tx.IsTransfer,
		tx.IsCalculationTarget, tx.ImportedAt,
	)
	if err != nil {
		return false, fmt.Errorf("inserting transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const transactionColumns = `
	ledger_id, date, description, amount, source_account,
	category_large, category_medium, memo, is_transfer,
	is_calculation_target, matched_expense_id, imported_at`

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(
		&tx.LedgerID, &tx.Date, &tx.Description, &tx.Amount, &tx.SourceAccount,
		&tx.CategoryLarge, &tx.CategoryMedium, &tx.Memo, &tx.IsTransfer,
		&tx.IsCalculationTarget, &tx.MatchedExpenseID, &tx.ImportedAt,
	)
	return tx, err
}

// GetTransaction fetches a transaction by ledger ID.
func (s *PostgresStore) GetTransaction(ctx context.Context, ledgerID string) (domain.Transaction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE ledger_id = $1`, ledgerID)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", ledgerID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("fetching transaction: %w", err)
	}
	return tx, nil
}

// ListUnmatchedTransactions returns unlinked, non-transfer transactions,
// newest first.
func (s *PostgresStore) ListUnmatchedTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE matched_expense_id = '' AND is_transfer = FALSE
		ORDER BY date DESC, ledger_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing unmatched transactions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// InsertExpense persists a new expense record.
func (s *PostgresStore) InsertExpense(ctx context.Context, e domain.Expense) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO expenses (
			id, date, store_name, amount, tax, category, subcategory,
			payment_method, provenance, matched_transaction_id, confidence, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		e.ID, e.Date, e.StoreName, e.Amount, e.Tax, e.Category, e.Subcategory,
		e.PaymentMethod, e.Provenance, e.MatchedTransactionID, e.Confidence, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}
	return nil
}

// DeleteUnmatchedExpense removes an expense that is still unmatched. The
// confidence guard keeps a concurrently linked expense in place.
func (s *PostgresStore) DeleteUnmatchedExpense(ctx context.Context, expenseID string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM expenses WHERE id = $1 AND confidence = $2
	`, expenseID, domain.ConfidenceUnmatched)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("unmatched expense %s: %w", expenseID, domain.ErrNotFound)
	}
	return nil
}

const expenseColumns = `
	id, date, store_name, amount, tax, category, subcategory,
	payment_method, provenance, matched_transaction_id, confidence, created_at`

func scanExpense(row pgx.Row) (domain.Expense, error) {
	var e domain.Expense
	err := row.Scan(
		&e.ID, &e.Date, &e.StoreName, &e.Amount, &e.Tax, &e.Category, &e.Subcategory,
		&e.PaymentMethod, &e.Provenance, &e.MatchedTransactionID, &e.Confidence, &e.CreatedAt,
	)
	return e, err
}

// FindUnmatchedExpensesByAmount returns unmatched expenses with exactly
// the given amount, ordered by creation time then ID.
func (s *PostgresStore) FindUnmatchedExpensesByAmount(ctx context.Context, amount int64) ([]domain.Expense, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE amount = $1 AND confidence = $2
		ORDER BY created_at, id
	`, amount, domain.ConfidenceUnmatched)
	if err != nil {
		return nil, fmt.Errorf("querying expense candidates: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LatestExpenseByStore returns the most recently created expense for a store.
func (s *PostgresStore) LatestExpenseByStore(ctx context.Context, storeName string) (domain.Expense, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE store_name = $1
		ORDER BY created_at DESC, id
		LIMIT 1
	`, storeName)
	e, err := scanExpense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Expense{}, fmt.Errorf("expense for store %q: %w", storeName, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Expense{}, fmt.Errorf("fetching expense by store: %w", err)
	}
	return e, nil
}

// LinkMatch links a transaction and an expense inside one database
// transaction. Each side is claimed with a conditional UPDATE; zero rows
// affected means a concurrent writer got there first.
func (s *PostgresStore) LinkMatch(ctx context.Context, ledgerID, expenseID string, confidence domain.MatchConfidence) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning link transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE transactions SET matched_expense_id = $2
		WHERE ledger_id = $1 AND matched_expense_id = ''
	`, ledgerID, expenseID)
	if err != nil {
		return fmt.Errorf("claiming transaction: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("transaction %s already linked: %w", ledgerID, domain.ErrStaleCandidate)
	}

	tag, err = tx.Exec(ctx, `
		UPDATE expenses SET matched_transaction_id = $1, confidence = $3
		WHERE id = $2 AND matched_transaction_id = '' AND confidence = $4
	`, ledgerID, expenseID, confidence, domain.ConfidenceUnmatched)
	if err != nil {
		return fmt.Errorf("claiming expense: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("expense %s already claimed: %w", expenseID, domain.ErrStaleCandidate)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing link: %w", err)
	}
	return nil
}

// ResolveProposal finalizes or rejects a proposed link on a transaction.
func (s *PostgresStore) ResolveProposal(ctx context.Context, ledgerID string, accept bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning resolve transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if accept {
		tag, err := tx.Exec(ctx, `
			UPDATE expenses SET confidence = $2
			WHERE matched_transaction_id = $1 AND confidence = $3
		`, ledgerID, domain.ConfidenceConfirmed, domain.ConfidenceProposed)
		if err != nil {
			return fmt.Errorf("confirming proposal: %w", err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("transaction %s: %w", ledgerID, domain.ErrNoProposal)
		}
		return tx.Commit(ctx)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE expenses SET confidence = $2, matched_transaction_id = ''
		WHERE matched_transaction_id = $1 AND confidence = $3
	`, ledgerID, domain.ConfidenceUnmatched, domain.ConfidenceProposed)
	if err != nil {
		return fmt.Errorf("rejecting proposal: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("transaction %s: %w", ledgerID, domain.ErrNoProposal)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE transactions SET matched_expense_id = '' WHERE ledger_id = $1
	`, ledgerID); err != nil {
		return fmt.Errorf("unlinking transaction: %w", err)
	}
	return tx.Commit(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("closed PostgreSQL connection pool")
	}
}
