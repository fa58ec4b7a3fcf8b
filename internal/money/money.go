// Package money computes invoice amounts with exact 2-decimal rounding.
package money

import "github.com/shopspring/decimal"

// Jurisdiction-fixed rates. These are properties of the current tax regime,
// not per-client configuration.
const (
	VATRate         = 0.12
	WithholdingRate = 0.05
)

var (
	one          = decimal.NewFromInt(1)
	vatRate      = decimal.NewFromFloat(VATRate)
	vatDivisor   = one.Add(vatRate)
	withholdRate = decimal.NewFromFloat(WithholdingRate)
)

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Amounts is the full monetary breakdown of one invoice.
type Amounts struct {
	Base        float64 `json:"base"`
	VAT         float64 `json:"vat"`
	Total       float64 `json:"total"`
	Withholding float64 `json:"withholding"`
	Net         float64 `json:"net"`
}

// Compute derives the amount breakdown from the contractual rate for one
// billing period. The rate is already scaled to the period width; a
// quarterly contract stores the quarterly rate.
//
// Base, VAT and Total are each rounded independently, so Base+VAT may differ
// from Total by one centavo. That discrepancy is accepted; re-deriving one
// field from the others after rounding would silently change stored amounts.
func Compute(rate float64, vatInclusive, hasWithholdingTax bool) Amounts {
	r := decimal.NewFromFloat(rate)

	var base, vat, total decimal.Decimal
	if vatInclusive {
		total = r
		base = total.Div(vatDivisor)
		vat = total.Sub(base)
	} else {
		base = r
		vat = base.Mul(vatRate)
		total = base.Add(vat)
	}

	base = base.Round(2)
	vat = vat.Round(2)
	total = total.Round(2)

	withholding := decimal.Zero
	if hasWithholdingTax {
		withholding = base.Mul(withholdRate).Round(2)
	}
	net := total.Sub(withholding).Round(2)

	return Amounts{
		Base:        base.InexactFloat64(),
		VAT:         vat.InexactFloat64(),
		Total:       total.InexactFloat64(),
		Withholding: withholding.InexactFloat64(),
		Net:         net.InexactFloat64(),
	}
}
