package domain

import "github.com/shopspring/decimal"

// GSTRate is the flat goods and services tax applied to every cart.
var GSTRate = decimal.RequireFromString("0.18")

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals applies GSTRate to the cart. Values are exact; rounding to
// two places is left to whoever renders them.
func ComputeTotals(lines []CartLine) Totals {
	return ComputeTotalsAt(lines, GSTRate)
}

func ComputeTotalsAt(lines []CartLine, rate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	tax := subtotal.Mul(rate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Money renders an amount with two fractional digits.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
