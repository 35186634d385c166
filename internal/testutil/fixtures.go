package testutil

import (
	"github.com/MeKo-Tech/tally/internal/ocr"
	"github.com/MeKo-Tech/tally/internal/receipt"
)

// QuadAt returns an axis-aligned bounding quad with the given origin and size,
// ordered top-left, top-right, bottom-right, bottom-left.
func QuadAt(x, y, w, h float64) []ocr.Point {
	return []ocr.Point{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}

// DetectionAt builds a detection for text at the given top-left corner,
// with a nominal 80x20 quad.
func DetectionAt(text string, x, y float64) ocr.Detection {
	return ocr.Detection{
		Text:       text,
		Polygon:    QuadAt(x, y, 80, 20),
		Confidence: 0.95,
	}
}

// TokenAt builds a normalized token at the given centroid.
func TokenAt(text string, x, y float64) receipt.Token {
	return receipt.Token{Text: text, X: x, Y: y, Height: 20}
}
