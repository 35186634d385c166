package receipt

import (
	"sort"
	"strings"

	"golang.org/x/text/width"

	"github.com/MeKo-Tech/tally/internal/ocr"
)

// Token is a recognized text fragment reduced to the geometry the layout
// heuristics need: the centroid of its bounding polygon and its height.
type Token struct {
	Text   string
	X      float64
	Y      float64
	Height float64
}

// Normalize converts raw engine detections into canonical tokens. Text is
// trimmed and width-folded so full-width CJK digits and punctuation compare
// equal to their ASCII forms. Detections with empty text or a degenerate
// polygon are dropped.
func Normalize(dets []ocr.Detection) []Token {
	tokens := make([]Token, 0, len(dets))
	for _, d := range dets {
		text := strings.TrimSpace(width.Narrow.String(d.Text))
		if text == "" || len(d.Polygon) == 0 {
			continue
		}
		var cx, cy float64
		for _, p := range d.Polygon {
			cx += p.X
			cy += p.Y
		}
		cx /= float64(len(d.Polygon))
		cy /= float64(len(d.Polygon))
		tokens = append(tokens, Token{
			Text:   text,
			X:      cx,
			Y:      cy,
			Height: polygonHeight(d.Polygon),
		})
	}
	sortTokens(tokens)
	return tokens
}

// polygonHeight is bottom-left minus top-left y for the usual four-point
// polygon, with a min/max fallback for irregular point counts.
func polygonHeight(poly []ocr.Point) float64 {
	if len(poly) == 4 {
		return poly[3].Y - poly[0].Y
	}
	minY, maxY := poly[0].Y, poly[0].Y
	for _, p := range poly[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return maxY - minY
}

// sortTokens orders tokens top-to-bottom, then left-to-right.
func sortTokens(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Y != tokens[j].Y {
			return tokens[i].Y < tokens[j].Y
		}
		return tokens[i].X < tokens[j].X
	})
}
