// Package pricing derives storefront sell prices from supplier net prices.
//
// The sell price is net * tax * margin rounded to a whole currency unit,
// half away from zero (so 4.5 becomes 5). Bad input never fails: a negative,
// missing or unparseable net price prices at 0.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Transformer turns net prices into sell prices with fixed run-wide rates.
type Transformer struct {
	tax    decimal.Decimal
	margin decimal.Decimal
	factor decimal.Decimal
}

// New creates a Transformer. Both rates must be greater than 1.
func New(tax, margin decimal.Decimal) (*Transformer, error) {
	if !tax.GreaterThan(one) {
		return nil, fmt.Errorf("tax rate must be greater than 1, got %s", tax)
	}
	if !margin.GreaterThan(one) {
		return nil, fmt.Errorf("margin rate must be greater than 1, got %s", margin)
	}
	return &Transformer{
		tax:    tax,
		margin: margin,
		factor: tax.Mul(margin),
	}, nil
}

// Factor returns tax * margin.
func (t *Transformer) Factor() decimal.Decimal {
	return t.factor
}

// Price returns round(net * tax * margin). Negative input prices at 0, as
// does the zero Decimal a missing price decodes to.
func (t *Transformer) Price(net decimal.Decimal) int64 {
	if net.Sign() <= 0 {
		return 0
	}
	return net.Mul(t.tax).Mul(t.margin).Round(0).IntPart()
}

// ParseNetPrice reads a price as printed on a supplier page ("$ 1.234,56",
// "USD 99.90", "1,5"). Only digits, dots and commas are kept. When both
// separators occur the last one is the decimal separator; a lone comma is a
// decimal separator; several dots are thousands separators. Unreadable text
// yields 0.
func ParseNetPrice(text string) decimal.Decimal {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return decimal.Zero
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(strings.Trim(s, "."))
	if err != nil || d.Sign() < 0 {
		return decimal.Zero
	}
	return d
}
