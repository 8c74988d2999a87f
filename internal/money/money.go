// Package money formats fare amounts for display and reporting.
package money

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Symbol is the currency symbol every fare is shown in.
const Symbol = "£"

// Round rounds an amount to whole pence, half away from zero.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Pence converts an amount to integer pence after rounding.
func Pence(amount decimal.Decimal) int64 {
	return Round(amount).Shift(2).IntPart()
}

// FromPence is the inverse of Pence.
func FromPence(pence int64) decimal.Decimal {
	return decimal.New(pence, -2)
}

// Format renders an amount as pounds with thousands separators and two
// decimals, e.g. £1,234.50.
func Format(amount decimal.Decimal) string {
	pence := Pence(amount)
	sign := ""
	if pence < 0 {
		sign = "-"
		pence = -pence
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, Symbol, humanize.Comma(pence/100), pence%100)
}
