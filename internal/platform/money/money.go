// Package money formats amounts in the dashboard's single currency.
package money

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency is the ISO code every amount is held in.
var Currency = currency.MustParseISO("AED")

// Format renders amount as "AED 405,091.00".
func Format(amount float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%s %v", Currency.String(), number.Decimal(amount, number.Scale(2)))
}

// Compact renders whole amounts without decimals, e.g. "AED 50,000".
func Compact(amount float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%s %v", Currency.String(), number.Decimal(amount, number.MaxFractionDigits(0)))
}
