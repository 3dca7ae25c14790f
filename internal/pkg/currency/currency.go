// Package currency formats decimal amounts for people, using the ISO 4217
// tables of go-money.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Default is used when an unknown currency code is configured.
const Default = money.USD

// Known reports whether code is an ISO 4217 code go-money knows.
func Known(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

// Format renders amount in the currency's major unit, rounded to the
// currency's fraction digits, e.g. "$1,234.50".
func Format(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(code)
	if !Known(code) {
		code = Default
	}
	// money.New never returns a nil currency
	cur := *money.New(0, code).Currency()
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// Signed is Format with an explicit "+" on positive amounts.
func Signed(amount decimal.Decimal, code string) string {
	if amount.IsPositive() {
		return "+" + Format(amount, code)
	}
	return Format(amount, code)
}
