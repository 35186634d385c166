package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSingleImageIsIdentity(t *testing.T) {
	p := NewParser(DefaultConfig())
	tokens := mcdReceiptTokens()
	merged := p.mergeImages([][]Token{tokens})

	want := p.clusterRows(append([]Token(nil), tokens...))
	got := p.clusterRows(merged)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Text(), got[i].Text())
	}
}

func TestMergeDropsOverlappingRows(t *testing.T) {
	p := NewParser(DefaultConfig())
	first := []Token{
		tok("Order Summary", 100, 100),
		tok("Big Mac Meal", 100, 150),
		tok("Payment Details", 100, 200),
	}
	// Second screenshot starts with the last row of the first one.
	second := []Token{
		tok("Payment Detaiis", 100, 20), // OCR noise, still >0.75 similar
		tok("Subtotal HK$43.00", 100, 80),
	}
	rows := p.clusterRows(p.mergeImages([][]Token{first, second}))

	var payments int
	for _, row := range rows {
		if similarity(row.Text(), "Payment Details") > 0.75 {
			payments++
		}
	}
	assert.Equal(t, 1, payments, "overlapping row must appear exactly once")
	require.Len(t, rows, 4)
	assert.Equal(t, "Subtotal HK$43.00", rows[3].Text())
}

func TestMergeNoOverlapAppendsAll(t *testing.T) {
	p := NewParser(DefaultConfig())
	first := []Token{tok("Order Summary", 100, 100)}
	second := []Token{tok("Subtotal HK$43.00", 100, 10)}
	merged := p.mergeImages([][]Token{first, second})

	require.Len(t, merged, 2)
	assert.Equal(t, "Order Summary", merged[0].Text)
	assert.Equal(t, "Subtotal HK$43.00", merged[1].Text)
	// Appended tokens are pushed below the merged content.
	assert.Greater(t, merged[1].Y, merged[0].Y+p.Config().MergeMargin-1)
}

func TestMergeEmptyImageContributesNothing(t *testing.T) {
	p := NewParser(DefaultConfig())
	first := mcdReceiptTokens()
	merged := p.mergeImages([][]Token{first, {}})
	assert.Len(t, merged, len(first))
}

func TestMergeFullyOverlappingImage(t *testing.T) {
	p := NewParser(DefaultConfig())
	first := []Token{
		tok("Order Summary", 100, 100),
		tok("Payment Details", 100, 150),
	}
	second := []Token{
		tok("Order Summary", 100, 10),
		tok("Payment Details", 100, 60),
	}
	merged := p.mergeImages([][]Token{first, second})
	assert.Len(t, merged, 2)
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b  string
		above bool
	}{
		{"Payment Details", "Payment Details", true},
		{"Payment Details", "payment  details", true},
		{"Payment Details", "Payment Detaiis", true},
		{"Payment Details", "Order Summary", false},
		{"", "Order Summary", false},
	}
	for _, tt := range tests {
		got := similarity(tt.a, tt.b)
		if tt.above {
			assert.Greater(t, got, 0.75, "%q vs %q", tt.a, tt.b)
		} else {
			assert.LessOrEqual(t, got, 0.75, "%q vs %q", tt.a, tt.b)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein([]rune(tt.a), []rune(tt.b)), "%q vs %q", tt.a, tt.b)
	}
}
