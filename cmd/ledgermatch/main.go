package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mayonaka-ratori/ledgermatch/internal/classifier"
	"github.com/mayonaka-ratori/ledgermatch/internal/config"
	"github.com/mayonaka-ratori/ledgermatch/internal/domain"
	"github.com/mayonaka-ratori/ledgermatch/internal/gateway"
	"github.com/mayonaka-ratori/ledgermatch/internal/logging"
	"github.com/mayonaka-ratori/ledgermatch/internal/usecase"
)

func main() {
	importFile := flag.String("import", "", "Path to a ledger export CSV to import and reconcile")
	reconcile := flag.Bool("reconcile", false, "Reconcile all currently unmatched transactions")
	confirmID := flag.String("confirm", "", "Ledger ID of a proposed match to confirm")
	rejectID := flag.String("reject", "", "Ledger ID of a proposed match to reject")
	promoteID := flag.String("promote", "", "Ledger ID of an unmatched transaction to promote to an expense")
	record := flag.String("record", "", "Record a manual expense as date,store,amount (e.g. 2024-03-10,Starbucks,1200)")
	listUnmatched := flag.Bool("list", false, "List unmatched transactions")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultConfig()
	logCfg.JSON = cfg.LogJSON
	logger := logging.Setup(logCfg)

	ctx := context.Background()

	// Wire the storage backend: PostgreSQL when configured, otherwise the
	// in-memory store (useful for dry runs against a single export file).
	var store usecase.Store
	if cfg.DatabaseURL != "" {
		pg, err := gateway.NewPostgresStore(ctx, gateway.PostgresConfig{
			URL:         cfg.DatabaseURL,
			MaxPoolSize: cfg.MaxPoolSize,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
	} else {
		logger.Warn("DATABASE_URL not set, using ephemeral in-memory store")
		store = gateway.NewMemoryStore()
	}

	// Categorization chain: keyword rules, then store-name history.
	chain := classifier.NewChain(
		classifier.NewKeywordClassifier(nil),
		classifier.NewHistoryClassifier(store),
	)

	reader := gateway.NewLedgerCSVReader(cfg.MaxUploadBytes, logger)
	importer := usecase.NewImporter(reader, store, logger)
	matcher := usecase.NewMatcher(store, logger)
	recorder := usecase.NewRecorder(store, chain, logger)

	switch {
	case *importFile != "":
		raw, err := os.ReadFile(*importFile)
		if err != nil {
			logger.Error("failed to read export file", "path", *importFile, "error", err)
			os.Exit(1)
		}
		result, err := importer.ImportLedgerFile(ctx, raw)
		if err != nil {
			logger.Error("import failed", "error", err)
			os.Exit(1)
		}
		report, err := matcher.Reconcile(ctx, result.Inserted)
		if err != nil {
			logger.Error("reconciliation failed", "error", err)
			os.Exit(1)
		}
		printJSON(map[string]any{"import": result, "report": report})

	case *reconcile:
		txs, err := matcher.ListUnmatchedTransactions(ctx, 0)
		if err != nil {
			logger.Error("failed to list unmatched transactions", "error", err)
			os.Exit(1)
		}
		report, err := matcher.Reconcile(ctx, txs)
		if err != nil {
			logger.Error("reconciliation failed", "error", err)
			os.Exit(1)
		}
		printJSON(report)

	case *confirmID != "":
		if err := matcher.ConfirmProposal(ctx, *confirmID, true); err != nil {
			logger.Error("confirm failed", "ledger_id", *confirmID, "error", err)
			os.Exit(1)
		}

	case *rejectID != "":
		if err := matcher.ConfirmProposal(ctx, *rejectID, false); err != nil {
			logger.Error("reject failed", "ledger_id", *rejectID, "error", err)
			os.Exit(1)
		}

	case *promoteID != "":
		expense, err := recorder.PromoteTransaction(ctx, *promoteID)
		if err != nil {
			logger.Error("promote failed", "ledger_id", *promoteID, "error", err)
			os.Exit(1)
		}
		printJSON(expense)

	case *record != "":
		input, err := parseRecordFlag(*record)
		if err != nil {
			logger.Error("invalid -record value", "error", err)
			os.Exit(1)
		}
		expense, err := recorder.RecordExpense(ctx, input)
		if err != nil {
			logger.Error("record failed", "error", err)
			os.Exit(1)
		}
		printJSON(expense)

	case *listUnmatched:
		txs, err := matcher.ListUnmatchedTransactions(ctx, 0)
		if err != nil {
			logger.Error("failed to list unmatched transactions", "error", err)
			os.Exit(1)
		}
		printJSON(txs)

	default:
		fmt.Println("Error: one of -import, -reconcile, -confirm, -reject, -promote, -record or -list is required.")
		flag.Usage()
		os.Exit(1)
	}
}

// parseRecordFlag parses the "date,store,amount" form of the -record flag.
func parseRecordFlag(s string) (usecase.ExpenseInput, error) {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) != 3 {
		return usecase.ExpenseInput{}, fmt.Errorf("expected date,store,amount, got %q", s)
	}
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(parts[0]), time.UTC)
	if err != nil {
		return usecase.ExpenseInput{}, fmt.Errorf("parsing date: %w", err)
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil {
		return usecase.ExpenseInput{}, fmt.Errorf("parsing amount: %w", err)
	}
	return usecase.ExpenseInput{
		Date:       date,
		StoreName:  strings.TrimSpace(parts[1]),
		Amount:     amount,
		Provenance: domain.ProvenanceManual,
	}, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
