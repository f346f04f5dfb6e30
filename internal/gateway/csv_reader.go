package gateway

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"

	"github.com/mayonaka-ratori/ledgermatch/internal/domain"
)

// DefaultMaxUploadBytes is the default size cap for a ledger export upload.
const DefaultMaxUploadBytes = 10 << 20 // 10 MB

// Ledger export column headers as written by the aggregator tool.
const (
	colCalculationTarget = "計算対象"
	colDate              = "日付"
	colDescription       = "内容"
	colAmount            = "金額（円）"
	colSourceAccount     = "保有金融機関"
	colCategoryLarge     = "大項目"
	colCategoryMedium    = "中項目"
	colMemo              = "メモ"
	colTransfer          = "振替"
	colLedgerID          = "ID"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LedgerCSVReader normalizes raw ledger export bytes into transactions.
type LedgerCSVReader struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewLedgerCSVReader creates a new reader. maxBytes <= 0 selects the default cap.
func NewLedgerCSVReader(maxBytes int64, logger *slog.Logger) *LedgerCSVReader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerCSVReader{maxBytes: maxBytes, logger: logger}
}

// Parse converts an uploaded export into transactions ready for persistence.
// Malformed rows are collected with a reason instead of aborting the file.
// importedAt stamps every produced transaction.
func (r *LedgerCSVReader) Parse(raw []byte, importedAt time.Time) ([]domain.Transaction, []domain.SkippedRow, error) {
	if int64(len(raw)) > r.maxBytes {
		return nil, nil, fmt.Errorf("%w: %d bytes exceeds cap of %d", domain.ErrPayloadTooLarge, len(raw), r.maxBytes)
	}

	text, enc, err := decodeExport(raw)
	if err != nil {
		return nil, nil, err
	}
	r.logger.Debug("resolved export encoding", "encoding", enc)

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading export header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var (
		transactions []domain.Transaction
		skipped      []domain.SkippedRow
	)

	line := 1 // header consumed
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			skipped = append(skipped, domain.SkippedRow{Line: line, Reason: fmt.Sprintf("malformed CSV row: %v", err)})
			continue
		}

		ledgerID := field(record, colLedgerID)
		if ledgerID == "" {
			skipped = append(skipped, domain.SkippedRow{Line: line, Reason: "missing external ID"})
			continue
		}

		date, ok := parseDate(field(record, colDate))
		if !ok {
			skipped = append(skipped, domain.SkippedRow{Line: line, Reason: fmt.Sprintf("unparseable date %q", field(record, colDate))})
			continue
		}

		amount, err := parseAmount(field(record, colAmount))
		if err != nil {
			skipped = append(skipped, domain.SkippedRow{Line: line, Reason: fmt.Sprintf("unparseable amount %q", field(record, colAmount))})
			continue
		}

		// Exports from older aggregator versions omit the 計算対象 column;
		// those rows count as calculation targets.
		isCalculationTarget := parseFlag(field(record, colCalculationTarget))
		if _, ok := columns[colCalculationTarget]; !ok {
			isCalculationTarget = true
		}

		transactions = append(transactions, domain.Transaction{
			LedgerID:            ledgerID,
			Date:                date,
			Description:         field(record, colDescription),
			Amount:              amount,
			SourceAccount:       field(record, colSourceAccount),
			CategoryLarge:       field(record, colCategoryLarge),
			CategoryMedium:      field(record, colCategoryMedium),
			Memo:                field(record, colMemo),
			IsTransfer:          parseFlag(field(record, colTransfer)),
			IsCalculationTarget: isCalculationTarget,
			ImportedAt:          importedAt,
		})
	}

	return transactions, skipped, nil
}

// decodeExport resolves the export's text encoding in a fixed priority
// order: UTF-8 (BOM tolerated) first, then Shift-JIS. The x/text Shift-JIS
// decoder implements the windows-31j (CP932) superset, so the one decoder
// covers both legacy candidates.
func decodeExport(raw []byte) (string, string, error) {
	trimmed := bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(trimmed) {
		return string(trimmed), "utf-8", nil
	}

	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded), "shift-jis", nil
	}

	return "", "", domain.ErrUnsupportedEncoding
}

// parseAmount converts an export amount string ("1,234" / "-1,234") to
// minor currency units. An empty field parses as zero, matching the
// aggregator's own convention.
func parseAmount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// parseFlag interprets the export's boolean columns ("1" / "○" / "true").
func parseFlag(s string) bool {
	switch strings.TrimSpace(s) {
	case "1", "○", "true", "True", "TRUE":
		return true
	}
	return false
}

var dateLayouts = []string{"2006/01/02", "2006-01-02", "2006年01月02日"}

// parseDate normalizes the export's date formats to a calendar date in UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
