package receipt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeywordTable holds the bilingual marker phrases the parser matches against
// row text. All matching is case-insensitive substring matching, so new
// languages or OCR-mangled variants are additive data, not code changes.
type KeywordTable struct {
	OrderNumber []string `yaml:"order_number"`
	Restaurant  []string `yaml:"restaurant"`
	ItemSummary []string `yaml:"item_summary"`
	Payment     []string `yaml:"payment"`
	Subtotal    []string `yaml:"subtotal"`
	Total       []string `yaml:"total"`
	Vendor      []string `yaml:"vendor"`
}

// DefaultKeywords returns the built-in table for the two supported bilingual
// receipt templates, including OCR-mangled Chinese variants seen in practice.
func DefaultKeywords() *KeywordTable {
	return &KeywordTable{
		OrderNumber: []string{
			"order details", "order #",
			"訂單詳情", "订单详情", "訂單號碼", "订单号码",
		},
		Restaurant: []string{
			"serving restaurant",
			"提供服務的餐廳", "提供服務", "提供服务",
		},
		ItemSummary: []string{
			"order summary",
			"訂單摘要", "订单摘要", "訂單內容", "订单内容",
			// mangled variants
			"訂罩内容", "訂罩內容", "订罩内容",
		},
		Payment: []string{
			"payment details",
			"付款詳情", "付款详情",
			// mangled variant
			"付款情",
		},
		Subtotal: []string{
			"subtotal",
			"合計", "合计", "小計", "小计",
		},
		Total: []string{
			"total",
			"總計", "总计",
		},
		Vendor: []string{
			"hkust",
			"hong kong university of science",
			"science & technology",
			"science and technology",
			"香港科技大學", "科技大學", "科技大学",
		},
	}
}

// LoadKeywords reads a keyword table from a YAML file. Lists absent from the
// file keep their built-in defaults.
func LoadKeywords(path string) (*KeywordTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}
	table := DefaultKeywords()
	if err := yaml.Unmarshal(data, table); err != nil {
		return nil, fmt.Errorf("parse keywords file %s: %w", path, err)
	}
	return table, nil
}
