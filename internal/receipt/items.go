package receipt

import (
	"strconv"
	"strings"
	"unicode"
)

// segmentItems partitions the item-summary rows into discrete items using the
// quantity-on-right rule: a trailing numeric token offset well to the right
// of the rest of the row marks the start of a new item. Rows without a
// quantity marker are continuation detail under the open item (discarded), or
// a standalone item with quantity 1 when nothing is open.
func (p *Parser) segmentItems(rows []Row, idx sectionIndex) []Item {
	start, ok := idx[sectionItemSummary]
	if !ok {
		return nil
	}
	end := idx.boundary(sectionItemSummary, len(rows))
	if start+1 >= end {
		return nil
	}

	var items []Item
	var open *Item
	for _, row := range rows[start+1 : end] {
		if qty, name, ok := p.quantityOnRight(row); ok {
			if open != nil {
				items = append(items, *open)
			}
			open = &Item{Name: name, Quantity: qty}
			continue
		}
		if open == nil {
			if text := strings.TrimSpace(row.Text()); text != "" {
				open = &Item{Name: text, Quantity: 1}
			}
		}
	}
	if open != nil {
		items = append(items, *open)
	}
	return items
}

// quantityOnRight reports whether the row's rightmost token is a standalone
// quantity marker: purely numeric and offset past the second-rightmost token
// by more than the configured margin.
func (p *Parser) quantityOnRight(row Row) (int, string, bool) {
	n := len(row.Tokens)
	if n < 2 {
		return 0, "", false
	}
	last, prev := row.Tokens[n-1], row.Tokens[n-2]
	if last.X-prev.X <= p.cfg.QuantityOffset || !allDigits(last.Text) {
		return 0, "", false
	}
	qty, err := strconv.Atoi(last.Text)
	if err != nil || qty < 1 {
		return 0, "", false
	}
	name := make([]string, 0, n-1)
	for _, tok := range row.Tokens[:n-1] {
		name = append(name, tok.Text)
	}
	return qty, strings.Join(name, " "), true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
