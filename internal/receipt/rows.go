package receipt

import (
	"sort"
	"strings"
)

// Row is one visual line of the receipt: tokens sharing a vertical band,
// ordered left to right.
type Row struct {
	Tokens []Token
}

// Text returns the row's token texts joined with single spaces.
func (r Row) Text() string {
	parts := make([]string, len(r.Tokens))
	for i, t := range r.Tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// Y returns the row's representative vertical position.
func (r Row) Y() float64 {
	if len(r.Tokens) == 0 {
		return 0
	}
	return r.Tokens[0].Y
}

// clusterRows groups tokens (sorted by y, then x) into rows with a single
// forward scan: a new row starts whenever the vertical gap to the previous
// token exceeds the configured threshold.
func (p *Parser) clusterRows(tokens []Token) []Row {
	if len(tokens) == 0 {
		return nil
	}
	var rows []Row
	cur := []Token{tokens[0]}
	prevY := tokens[0].Y
	for _, tok := range tokens[1:] {
		if tok.Y-prevY > p.cfg.RowGapThreshold {
			rows = append(rows, newRow(cur))
			cur = nil
		}
		cur = append(cur, tok)
		prevY = tok.Y
	}
	return append(rows, newRow(cur))
}

func newRow(tokens []Token) Row {
	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].X < tokens[j].X })
	return Row{Tokens: tokens}
}

// RowTexts clusters one image's tokens and returns each row's text, for
// callers that expose raw per-line OCR output alongside the parsed record.
func (p *Parser) RowTexts(tokens []Token) []string {
	sorted := append([]Token(nil), tokens...)
	sortTokens(sorted)
	rows := p.clusterRows(sorted)
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Text()
	}
	return out
}
