// Package pricing computes invoice totals from line items.
//
// Amounts are summed at full precision and only rounded to currency
// precision by Totals.Round, so rounding error does not compound across
// many lines.
package pricing

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimals kept when amounts are stored or shown.
const CurrencyPlaces = 2

// RatePlaces is the number of decimals allowed in a tax rate.
const RatePlaces = 2

var hundred = decimal.NewFromInt(100)

// Line is one priced entry: quantity, unit price and tax rate in percent.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
}

// Amount returns quantity * unit price.
func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Tax returns the tax due on the line amount.
func (l Line) Tax() decimal.Decimal {
	return l.Amount().Mul(l.TaxRate).Div(hundred)
}

// Totals are the figures shown under an invoice.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Calculate sums the lines. An empty slice gives zero totals.
func Calculate(lines []Line) Totals {
	subtotal, tax := decimal.Zero, decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
		tax = tax.Add(l.Tax())
	}
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// Round returns the totals at currency precision. Total is recomputed from
// the rounded parts so that Total == Subtotal + Tax holds exactly.
func (t Totals) Round() Totals {
	subtotal := t.Subtotal.Round(CurrencyPlaces)
	tax := t.Tax.Round(CurrencyPlaces)
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// LineTotal returns quantity * price * (1 + rate/100) at full precision.
// With prices at CurrencyPlaces and rates at RatePlaces the result has at
// most six decimals, and the line totals of an invoice sum to its unrounded
// total, so rounding their sum gives Totals.Round().Total.
func LineTotal(l Line) decimal.Decimal {
	return l.Amount().Add(l.Tax())
}

// FormatAmount renders an amount with thousands separators and two decimals,
// e.g. 1234.5 -> "1,234.50".
func FormatAmount(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", d.Round(CurrencyPlaces).InexactFloat64())
}
