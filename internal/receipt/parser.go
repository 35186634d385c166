// Package receipt reconstructs a structured order record from the unordered
// text tokens an OCR engine produces for delivery-app receipt screenshots.
// The pipeline is purely spatial: screenshots are merged with overlap
// removal, tokens are clustered into visual rows, bilingual section markers
// split the rows into regions, and per-section extractors recover the order
// number, restaurant, items, and payment figures. Every stage degrades to an
// empty or zero value instead of failing, so one garbled region never
// discards the rest of the receipt.
package receipt

// Config holds the layout heuristic constants. They are plain data so tests
// can tune each one independently.
type Config struct {
	// RowGapThreshold is the vertical gap (px) that starts a new row.
	RowGapThreshold float64
	// QuantityOffset is the minimum x offset (px) of a trailing numeric
	// token for it to count as a quantity marker.
	QuantityOffset float64
	// SimilarityThreshold is the row-text similarity above which a row of a
	// later screenshot is treated as scroll overlap.
	SimilarityThreshold float64
	// MergeMargin is the vertical spacing (px) inserted between merged
	// screenshots so their rows cannot collapse into one band.
	MergeMargin float64
	// OverlapWindow is how many merged tail rows are compared during a merge.
	OverlapWindow int
	// CurrencyTolerance is the allowed drift in the numeric consistency
	// checks, in currency units.
	CurrencyTolerance float64
	// Keywords are the bilingual marker tables; nil selects the defaults.
	Keywords *KeywordTable
}

// DefaultConfig returns the tuned constants for the supported templates.
func DefaultConfig() Config {
	return Config{
		RowGapThreshold:     15,
		QuantityOffset:      40,
		SimilarityThreshold: 0.75,
		MergeMargin:         100,
		OverlapWindow:       8,
		CurrencyTolerance:   1.0,
		Keywords:            DefaultKeywords(),
	}
}

// Parser runs the spatial receipt pipeline. It is stateless beyond its
// configuration: concurrent Parse calls share nothing.
type Parser struct {
	cfg Config
}

// NewParser creates a parser, filling unset config fields from the defaults.
func NewParser(cfg Config) *Parser {
	def := DefaultConfig()
	if cfg.RowGapThreshold <= 0 {
		cfg.RowGapThreshold = def.RowGapThreshold
	}
	if cfg.QuantityOffset <= 0 {
		cfg.QuantityOffset = def.QuantityOffset
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = def.SimilarityThreshold
	}
	if cfg.MergeMargin <= 0 {
		cfg.MergeMargin = def.MergeMargin
	}
	if cfg.OverlapWindow <= 0 {
		cfg.OverlapWindow = def.OverlapWindow
	}
	if cfg.CurrencyTolerance <= 0 {
		cfg.CurrencyTolerance = def.CurrencyTolerance
	}
	if cfg.Keywords == nil {
		cfg.Keywords = def.Keywords
	}
	return &Parser{cfg: cfg}
}

// Config returns a copy of the parser configuration.
func (p *Parser) Config() Config { return p.cfg }

// Parse reconstructs one order record from per-image token lists. It always
// returns a best-effort Result; extraction problems accumulate in
// Result.Errors rather than aborting.
func (p *Parser) Parse(images [][]Token) Result {
	res := Result{Items: []Item{}, Errors: []string{}}

	var count int
	for _, img := range images {
		count += len(img)
	}
	if count == 0 {
		res.Errors = append(res.Errors, "empty OCR result")
		return res
	}

	merged := p.mergeImages(images)
	rows := p.clusterRows(merged)
	idx := p.locateSections(rows)

	res.OrderNumber = p.extractOrderNumber(rows, idx)
	if _, ok := idx[sectionOrderNumber]; ok && res.OrderNumber == "" {
		res.Errors = append(res.Errors, "could not extract order number")
	}

	res.Restaurant = p.extractRestaurant(rows, idx)
	if _, ok := idx[sectionRestaurant]; ok && res.Restaurant == "" {
		res.Errors = append(res.Errors, "could not extract restaurant name")
	}

	if _, ok := idx[sectionItemSummary]; ok {
		res.Items = append(res.Items, p.segmentItems(rows, idx)...)
	} else {
		res.Errors = append(res.Errors, "item summary section not found")
	}

	if _, ok := idx[sectionPayment]; ok {
		res.Subtotal, res.Total = p.extractPayment(rows, idx)
	} else {
		res.Errors = append(res.Errors, "payment details section not found")
	}

	p.validate(rows, &res)
	return res
}
