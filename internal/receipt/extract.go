package receipt

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRunRE = regexp.MustCompile(`\d+`)

	// currencyRE matches an optional currency prefix followed by digits with
	// optional thousands separators and exactly two decimal places.
	currencyRE = regexp.MustCompile(`(?:HK)?\$?\s*([\d,]+\.\d{2})`)
)

// extractAmount returns the first currency amount in text with thousands
// separators stripped; ok is false when no amount is present.
func extractAmount(text string) (float64, bool) {
	m := currencyRE.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractOrderNumber pulls the first digit run from the order-number section
// after stripping the marker phrase and any "#", so stray marker characters
// cannot be misread as part of the number.
func (p *Parser) extractOrderNumber(rows []Row, idx sectionIndex) string {
	start, ok := idx[sectionOrderNumber]
	if !ok {
		return ""
	}
	end := idx.boundary(sectionOrderNumber, len(rows))
	for _, row := range rows[start:end] {
		text := strings.ToLower(row.Text())
		for _, kw := range p.cfg.Keywords.OrderNumber {
			text = strings.ReplaceAll(text, strings.ToLower(kw), "")
		}
		text = strings.ReplaceAll(text, "#", "")
		if m := digitRunRE.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// extractRestaurant joins the rows strictly after the restaurant marker up to
// the section boundary. A row matching another section's marker ends the scan
// early in case the locator missed that section.
func (p *Parser) extractRestaurant(rows []Row, idx sectionIndex) string {
	start, ok := idx[sectionRestaurant]
	if !ok {
		return ""
	}
	end := idx.boundary(sectionRestaurant, len(rows))
	var parts []string
	for _, row := range rows[start+1 : end] {
		text := row.Text()
		if p.matchesOtherSection(strings.ToLower(text), sectionRestaurant) {
			break
		}
		parts = append(parts, text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// extractPayment reads subtotal and total from the payment section. A figure
// may sit on the marker row itself or spill onto an adjacent row, so both
// neighbors are checked. Rows matching the subtotal keywords are excluded
// from the total search: 合計 and 總計 share vocabulary on some templates.
func (p *Parser) extractPayment(rows []Row, idx sectionIndex) (subtotal, total float64) {
	start, ok := idx[sectionPayment]
	if !ok {
		return 0, 0
	}
	end := idx.boundary(sectionPayment, len(rows))
	subtotal = p.amountNear(rows, start, end, p.cfg.Keywords.Subtotal, nil)
	total = p.amountNear(rows, start, end, p.cfg.Keywords.Total, p.cfg.Keywords.Subtotal)
	return subtotal, total
}

// amountNear scans [start, end) for a row matching keywords (and not matching
// exclude) and extracts an amount from that row, falling back to the row
// above, then the row below. Scanning continues past keyword rows that yield
// no amount anywhere nearby.
func (p *Parser) amountNear(rows []Row, start, end int, keywords, exclude []string) float64 {
	for i := start; i < end; i++ {
		text := strings.ToLower(rows[i].Text())
		if !matchAny(text, keywords) {
			continue
		}
		if len(exclude) > 0 && matchAny(text, exclude) {
			continue
		}
		if v, ok := extractAmount(rows[i].Text()); ok {
			return v
		}
		if i > 0 {
			if v, ok := extractAmount(rows[i-1].Text()); ok {
				return v
			}
		}
		if i+1 < len(rows) {
			if v, ok := extractAmount(rows[i+1].Text()); ok {
				return v
			}
		}
	}
	return 0
}
