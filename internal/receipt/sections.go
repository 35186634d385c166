package receipt

import "strings"

type section int

const (
	sectionOrderNumber section = iota
	sectionRestaurant
	sectionItemSummary
	sectionPayment
)

// sectionIndex maps each detected section to the row where its marker first
// matched. Absent sections have no entry; absence alone is not an error.
type sectionIndex map[section]int

// locateSections scans rows top to bottom for bilingual section markers and
// records the first matching row per section.
func (p *Parser) locateSections(rows []Row) sectionIndex {
	idx := sectionIndex{}
	for i, row := range rows {
		text := strings.ToLower(row.Text())
		for _, sec := range sectionOrder {
			if _, seen := idx[sec]; seen {
				continue
			}
			if matchAny(text, p.keywordsFor(sec)) {
				idx[sec] = i
			}
		}
	}
	return idx
}

// sectionOrder fixes the scan order so locating is deterministic.
var sectionOrder = []section{sectionOrderNumber, sectionRestaurant, sectionItemSummary, sectionPayment}

func (p *Parser) keywordsFor(sec section) []string {
	switch sec {
	case sectionOrderNumber:
		return p.cfg.Keywords.OrderNumber
	case sectionRestaurant:
		return p.cfg.Keywords.Restaurant
	case sectionItemSummary:
		return p.cfg.Keywords.ItemSummary
	case sectionPayment:
		return p.cfg.Keywords.Payment
	}
	return nil
}

// matchesOtherSection reports whether lowercased row text matches the marker
// of any section other than sec.
func (p *Parser) matchesOtherSection(text string, sec section) bool {
	for _, other := range sectionOrder {
		if other != sec && matchAny(text, p.keywordsFor(other)) {
			return true
		}
	}
	return false
}

// boundary returns the exclusive end row of sec: the smallest start row of
// any other detected section below it, or the end of the row list.
func (idx sectionIndex) boundary(sec section, rowCount int) int {
	start := idx[sec]
	end := rowCount
	for other, i := range idx {
		if other != sec && i > start && i < end {
			end = i
		}
	}
	return end
}

// matchAny reports whether text contains any of the keywords; text must
// already be lowercased.
func matchAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
