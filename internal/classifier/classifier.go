// Package classifier assigns tax-filing categories to expenses through a
// deterministic chain of strategies: keyword rules first, then store-name
// history, then a fixed default. The chain is independent of the matcher;
// callers may append their own stages (e.g. a model-backed one).
package classifier

import (
	"context"
	"strings"

	"github.com/mayonaka-ratori/ledgermatch/internal/domain"
)

// DefaultCategory is the catch-all filing category (miscellaneous).
const DefaultCategory = "雑費"

// Classifier resolves a category and optional subcategory for an expense.
// ok is false when the strategy has no opinion.
type Classifier interface {
	Classify(ctx context.Context, storeName, itemsText string) (category, subcategory string, ok bool)
}

// CategoryRule maps one filing category to its trigger keywords.
type CategoryRule struct {
	Category string
	Keywords []string
}

// DefaultCategoryRules is the keyword table for Japanese sole-proprietor
// filing categories. Order matters: the first rule with a keyword hit wins.
var DefaultCategoryRules = []CategoryRule{
	{Category: "通信費", Keywords: []string{"携帯", "Wi-Fi", "プロバイダ", "サーバー", "ドメイン", "SIM"}},
	{Category: "旅費交通費", Keywords: []string{"電車", "バス", "タクシー", "新幹線", "飛行機", "ETC", "Suica", "PASMO"}},
	{Category: "消耗品費", Keywords: []string{"文房具", "インク", "USB", "ケーブル", "マウス", "キーボード"}},
	{Category: "接待交際費", Keywords: []string{"会食", "お中元", "お歳暮", "慶弔", "贈答"}},
	{Category: "会議費", Keywords: []string{"カフェ", "スタバ", "ドトール", "打ち合わせ"}},
	{Category: "地代家賃", Keywords: []string{"事務所", "コワーキング", "レンタルオフィス"}},
	{Category: "水道光熱費", Keywords: []string{"電気", "ガス", "水道", "東京電力", "東京ガス"}},
	{Category: "広告宣伝費", Keywords: []string{"Google広告", "SNS広告", "名刺", "チラシ"}},
	{Category: "外注費", Keywords: []string{"デザイン依頼", "開発依頼", "翻訳", "Fiverr", "Lancers"}},
	{Category: "新聞図書費", Keywords: []string{"書籍", "Kindle", "技術書", "サブスク"}},
	{Category: "研修費", Keywords: []string{"セミナー", "勉強会", "Udemy", "オンライン講座"}},
}

// KeywordClassifier matches store name and items text against an ordered
// keyword table.
type KeywordClassifier struct {
	rules []CategoryRule
}

// NewKeywordClassifier creates a keyword classifier. nil rules selects
// DefaultCategoryRules.
func NewKeywordClassifier(rules []CategoryRule) *KeywordClassifier {
	if rules == nil {
		rules = DefaultCategoryRules
	}
	return &KeywordClassifier{rules: rules}
}

// Classify returns the first category whose keyword appears in the
// lower-cased store name or items text. Keyword classification never
// produces a subcategory.
func (k *KeywordClassifier) Classify(_ context.Context, storeName, itemsText string) (string, string, bool) {
	haystack := strings.ToLower(storeName + " " + itemsText)
	for _, rule := range k.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				return rule.Category, "", true
			}
		}
	}
	return "", "", false
}

// ExpenseHistory is the storage lookup the history classifier needs.
type ExpenseHistory interface {
	LatestExpenseByStore(ctx context.Context, storeName string) (domain.Expense, error)
}

// HistoryClassifier reuses the category of the most recent expense
// recorded for the same store.
type HistoryClassifier struct {
	history ExpenseHistory
}

// NewHistoryClassifier creates a history classifier.
func NewHistoryClassifier(history ExpenseHistory) *HistoryClassifier {
	return &HistoryClassifier{history: history}
}

// Classify looks up the latest expense with the same store name.
func (h *HistoryClassifier) Classify(ctx context.Context, storeName, _ string) (string, string, bool) {
	name := strings.TrimSpace(storeName)
	if name == "" {
		return "", "", false
	}
	e, err := h.history.LatestExpenseByStore(ctx, name)
	if err != nil || e.Category == "" {
		return "", "", false
	}
	return e.Category, e.Subcategory, true
}

// Chain runs its stages in order and falls back to DefaultCategory when
// none has an opinion. Classify on a Chain always reports ok.
type Chain struct {
	stages   []Classifier
	fallback string
}

// NewChain builds a classifier chain over the given stages.
func NewChain(stages ...Classifier) *Chain {
	return &Chain{stages: stages, fallback: DefaultCategory}
}

// Classify tries each stage in order.
func (c *Chain) Classify(ctx context.Context, storeName, itemsText string) (string, string, bool) {
	for _, stage := range c.stages {
		if cat, sub, ok := stage.Classify(ctx, storeName, itemsText); ok {
			return cat, sub, true
		}
	}
	return c.fallback, "", true
}
