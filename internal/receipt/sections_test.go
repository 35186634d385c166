package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowOf(texts ...string) Row {
	tokens := make([]Token, len(texts))
	for i, s := range texts {
		tokens[i] = tok(s, float64(i)*100, 0)
	}
	return Row{Tokens: tokens}
}

func TestLocateSectionsEnglish(t *testing.T) {
	p := NewParser(DefaultConfig())
	rows := []Row{
		rowOf("Order details"),
		rowOf("#163"),
		rowOf("Serving restaurant"),
		rowOf("HKUST Canteen"),
		rowOf("Order Summary"),
		rowOf("Payment Details"),
	}
	idx := p.locateSections(rows)
	require.Len(t, idx, 4)
	assert.Equal(t, 0, idx[sectionOrderNumber])
	assert.Equal(t, 2, idx[sectionRestaurant])
	assert.Equal(t, 4, idx[sectionItemSummary])
	assert.Equal(t, 5, idx[sectionPayment])
}

func TestLocateSectionsChinese(t *testing.T) {
	p := NewParser(DefaultConfig())
	rows := []Row{
		rowOf("訂單詳情"),
		rowOf("提供服務的餐廳"),
		rowOf("訂單摘要"),
		rowOf("付款詳情"),
	}
	idx := p.locateSections(rows)
	require.Len(t, idx, 4)
	assert.Equal(t, 0, idx[sectionOrderNumber])
	assert.Equal(t, 1, idx[sectionRestaurant])
	assert.Equal(t, 2, idx[sectionItemSummary])
	assert.Equal(t, 3, idx[sectionPayment])
}

func TestLocateSectionsMangledVariants(t *testing.T) {
	p := NewParser(DefaultConfig())
	rows := []Row{
		rowOf("訂罩内容"),
		rowOf("付款情"),
	}
	idx := p.locateSections(rows)
	assert.Equal(t, 0, idx[sectionItemSummary])
	assert.Equal(t, 1, idx[sectionPayment])
}

func TestLocateSectionsFirstMatchWins(t *testing.T) {
	p := NewParser(DefaultConfig())
	rows := []Row{
		rowOf("Order Summary"),
		rowOf("Order Summary 訂單摘要"),
	}
	idx := p.locateSections(rows)
	assert.Equal(t, 0, idx[sectionItemSummary])
}

func TestLocateSectionsAbsent(t *testing.T) {
	p := NewParser(DefaultConfig())
	idx := p.locateSections([]Row{rowOf("Big Mac Meal")})
	assert.Empty(t, idx)
}

func TestBoundary(t *testing.T) {
	idx := sectionIndex{
		sectionRestaurant:  2,
		sectionItemSummary: 4,
		sectionPayment:     7,
	}
	assert.Equal(t, 4, idx.boundary(sectionRestaurant, 10))
	assert.Equal(t, 7, idx.boundary(sectionItemSummary, 10))
	// Last section runs to the end of the rows.
	assert.Equal(t, 10, idx.boundary(sectionPayment, 10))
}

func TestMatchAnyIsCaseInsensitive(t *testing.T) {
	assert.True(t, matchAny("payment details 付款詳情", []string{"Payment Details"}))
	assert.False(t, matchAny("big mac meal", []string{"payment details"}))
}
