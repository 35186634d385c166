package receipt

import "strings"

// mergeImages combines token lists from 1..N screenshots of one scrolling
// receipt into a single ordered stream. Rows of a later screenshot that
// repeat the tail of the merged result are scroll overlap and are dropped;
// the remaining rows are shifted below everything merged so far, so global
// vertical ordering survives re-clustering. A single image passes through
// unchanged apart from sorting.
func (p *Parser) mergeImages(images [][]Token) []Token {
	var mergedRows []Row
	maxY := 0.0
	for _, img := range images {
		tokens := append([]Token(nil), img...)
		sortTokens(tokens)
		rows := p.clusterRows(tokens)
		if len(rows) == 0 {
			continue
		}
		if len(mergedRows) > 0 {
			rows = rows[p.overlapEnd(mergedRows, rows):]
			if len(rows) == 0 {
				continue
			}
			offset := maxY + p.cfg.MergeMargin
			for _, row := range rows {
				for i := range row.Tokens {
					row.Tokens[i].Y += offset
				}
			}
		}
		mergedRows = append(mergedRows, rows...)
		for _, row := range rows {
			for _, tok := range row.Tokens {
				if tok.Y > maxY {
					maxY = tok.Y
				}
			}
		}
	}

	var merged []Token
	for _, row := range mergedRows {
		merged = append(merged, row.Tokens...)
	}
	sortTokens(merged)
	return merged
}

// overlapEnd returns the index of the first row of the new image past the
// scroll-overlap region: one past the last row whose text is near-identical
// to one of the last OverlapWindow merged rows.
func (p *Parser) overlapEnd(merged, rows []Row) int {
	tail := merged
	if len(tail) > p.cfg.OverlapWindow {
		tail = tail[len(tail)-p.cfg.OverlapWindow:]
	}
	end := 0
	for i, row := range rows {
		for _, prev := range tail {
			if similarity(row.Text(), prev.Text()) > p.cfg.SimilarityThreshold {
				end = i + 1
				break
			}
		}
	}
	return end
}

// similarity is a normalized edit-distance ratio in [0, 1], computed after
// lowercasing and whitespace collapsing; 1 means equal.
func similarity(a, b string) float64 {
	a, b = canonical(a), canonical(b)
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func canonical(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = minInt(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
