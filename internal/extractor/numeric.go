package extractor

import (
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// decimalAttr reads a numeric attribute. Missing or non-numeric values become
// zero: one bad attribute never aborts the extraction of a document, at the
// cost of totals that may be incomplete.
func decimalAttr(el *etree.Element, key string) decimal.Decimal {
	v := attr(el, key)
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}
