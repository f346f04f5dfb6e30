package gateway

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/mayonaka-ratori/ledgermatch/internal/domain"
)

const exportHeader = "計算対象,日付,内容,金額（円）,保有金融機関,大項目,中項目,メモ,振替,ID"

var importedAt = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func buildExport(rows ...string) []byte {
	return []byte(strings.Join(append([]string{exportHeader}, rows...), "\n") + "\n")
}

func encodeShiftJIS(t *testing.T, utf8Text []byte) []byte {
	t.Helper()
	out, err := japanese.ShiftJIS.NewEncoder().Bytes(utf8Text)
	require.NoError(t, err)
	return out
}

func TestLedgerCSVReader_Parse(t *testing.T) {
	tests := []struct {
		name        string
		raw         []byte
		wantTxs     []domain.Transaction
		wantSkipped []domain.SkippedRow
		wantErr     error
	}{
		{
			name: "valid utf-8 export",
			raw: buildExport(
				"1,2024/03/10,STARBUCKS COFFEE,-1200,三井住友カード,食費,カフェ,,0,mf-001",
				"1,2024/03/11,給与振込,250000,みずほ銀行,収入,給与,3月分,0,mf-002",
			),
			wantTxs: []domain.Transaction{
				{
					LedgerID:            "mf-001",
					Date:                time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
					Description:         "STARBUCKS COFFEE",
					Amount:              -1200,
					SourceAccount:       "三井住友カード",
					CategoryLarge:       "食費",
					CategoryMedium:      "カフェ",
					IsCalculationTarget: true,
					ImportedAt:          importedAt,
				},
				{
					LedgerID:            "mf-002",
					Date:                time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
					Description:         "給与振込",
					Amount:              250000,
					SourceAccount:       "みずほ銀行",
					CategoryLarge:       "収入",
					CategoryMedium:      "給与",
					Memo:                "3月分",
					IsCalculationTarget: true,
					ImportedAt:          importedAt,
				},
			},
		},
		{
			name: "utf-8 with BOM and transfer flag",
			raw: append([]byte{0xEF, 0xBB, 0xBF}, buildExport(
				"1,2024-03-12,口座間振替,-50000,ゆうちょ銀行,振替,,,1,mf-003",
			)...),
			wantTxs: []domain.Transaction{
				{
					LedgerID:            "mf-003",
					Date:                time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
					Description:         "口座間振替",
					Amount:              -50000,
					SourceAccount:       "ゆうちょ銀行",
					CategoryLarge:       "振替",
					IsTransfer:          true,
					IsCalculationTarget: true,
					ImportedAt:          importedAt,
				},
			},
		},
		{
			name: "comma-grouped amounts and circle flags",
			raw: buildExport(
				`○,2024年03月13日,"Amazon.co.jp","-12,800",楽天カード,趣味,書籍,,0,mf-004`,
			),
			wantTxs: []domain.Transaction{
				{
					LedgerID:            "mf-004",
					Date:                time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC),
					Description:         "Amazon.co.jp",
					Amount:              -12800,
					SourceAccount:       "楽天カード",
					CategoryLarge:       "趣味",
					CategoryMedium:      "書籍",
					IsCalculationTarget: true,
					ImportedAt:          importedAt,
				},
			},
		},
		{
			name: "malformed rows are skipped, valid rows survive",
			raw: buildExport(
				"1,2024/03/10,ケーブル購入,abc,カード,,,,0,mf-005",
				"1,not-a-date,文房具,-500,カード,,,,0,mf-006",
				"1,2024/03/10,マウス,-3000,カード,,,,0,",
				"1,2024/03/10,キーボード,-9000,カード,,,,0,mf-007",
			),
			wantTxs: []domain.Transaction{
				{
					LedgerID:            "mf-007",
					Date:                time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
					Description:         "キーボード",
					Amount:              -9000,
					SourceAccount:       "カード",
					IsCalculationTarget: true,
					ImportedAt:          importedAt,
				},
			},
			wantSkipped: []domain.SkippedRow{
				{Line: 2, Reason: `unparseable amount "abc"`},
				{Line: 3, Reason: `unparseable date "not-a-date"`},
				{Line: 4, Reason: "missing external ID"},
			},
		},
		{
			name:    "undecodable bytes",
			raw:     []byte{0xFF, 0xFE, 0x80, 0x80},
			wantErr: domain.ErrUnsupportedEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewLedgerCSVReader(0, nil)
			txs, skipped, err := reader.Parse(tt.raw, importedAt)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantTxs, txs)
			assert.Equal(t, tt.wantSkipped, skipped)
		})
	}
}

func TestLedgerCSVReader_Parse_ShiftJIS(t *testing.T) {
	raw := encodeShiftJIS(t, buildExport(
		"1,2024/03/10,スターバックス渋谷店,-1200,三井住友カード,食費,カフェ,,0,mf-010",
	))

	reader := NewLedgerCSVReader(0, nil)
	txs, skipped, err := reader.Parse(raw, importedAt)

	assert.NoError(t, err)
	assert.Empty(t, skipped)
	if assert.Len(t, txs, 1) {
		assert.Equal(t, "mf-010", txs[0].LedgerID)
		assert.Equal(t, "スターバックス渋谷店", txs[0].Description)
		assert.Equal(t, int64(-1200), txs[0].Amount)
	}
}

func TestLedgerCSVReader_Parse_MissingCalculationTargetColumn(t *testing.T) {
	// Older exports lack the 計算対象 column entirely; rows then default
	// to being calculation targets. A present-but-empty value stays false.
	raw := []byte("日付,内容,金額（円）,保有金融機関,大項目,中項目,メモ,振替,ID\n" +
		"2024/03/10,コーヒー,-400,カード,,,,0,mf-020\n")

	reader := NewLedgerCSVReader(0, nil)
	txs, skipped, err := reader.Parse(raw, importedAt)

	assert.NoError(t, err)
	assert.Empty(t, skipped)
	if assert.Len(t, txs, 1) {
		assert.True(t, txs[0].IsCalculationTarget)
	}

	raw = buildExport(",2024/03/10,コーヒー,-400,カード,,,,0,mf-021")
	txs, _, err = reader.Parse(raw, importedAt)
	assert.NoError(t, err)
	if assert.Len(t, txs, 1) {
		assert.False(t, txs[0].IsCalculationTarget)
	}
}

func TestLedgerCSVReader_Parse_PayloadTooLarge(t *testing.T) {
	reader := NewLedgerCSVReader(16, nil)
	raw := buildExport("1,2024/03/10,コーヒー,-400,カード,,,,0,mf-011")

	_, _, err := reader.Parse(raw, importedAt)
	assert.ErrorIs(t, err, domain.ErrPayloadTooLarge)
}

func TestDecodeExport_PriorityOrder(t *testing.T) {
	// ASCII is valid in both encodings; UTF-8 must win.
	_, enc, err := decodeExport([]byte("plain ascii"))
	assert.NoError(t, err)
	assert.Equal(t, "utf-8", enc)

	sjis := encodeShiftJIS(t, []byte("日本語のテキスト"))
	decoded, enc, err := decodeExport(sjis)
	assert.NoError(t, err)
	assert.Equal(t, "shift-jis", enc)
	assert.Equal(t, "日本語のテキスト", decoded)
}
