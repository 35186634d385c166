package receipt

import (
	"math"
	"strings"
)

// validate applies the vendor-keyword check and numeric consistency rules.
// The record is valid only when a vendor keyword appears somewhere in the
// receipt text and no errors accumulated; a missing vendor keyword forces
// IsValid false without adding an error of its own.
func (p *Parser) validate(rows []Row, res *Result) {
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = row.Text()
	}
	text := strings.ToLower(strings.Join(parts, " "))
	vendorFound := matchAny(text, p.cfg.Keywords.Vendor)

	if len(res.Items) == 0 {
		res.Errors = append(res.Errors, "no items detected")
	}

	var itemSum float64
	for _, it := range res.Items {
		itemSum += it.Price * float64(it.Quantity)
	}
	if res.Subtotal > 0 && itemSum > 0 && math.Abs(res.Subtotal-itemSum) > p.cfg.CurrencyTolerance {
		res.Errors = append(res.Errors, "subtotal mismatch")
	}
	if res.Subtotal > 0 && res.Total > 0 && math.Abs(res.Subtotal-res.Total) > p.cfg.CurrencyTolerance {
		res.Errors = append(res.Errors, "subtotal/total mismatch")
	}

	res.IsValid = vendorFound && len(res.Errors) == 0
}
