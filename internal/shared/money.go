package shared

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Round2 rounds an amount to two decimal places. Line totals and ledger
// aggregates never carry more precision than that.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var bnPrinter = message.NewPrinter(language.MustParse("bn-BD"))

// FormatBDT renders an amount for display in the bn-BD locale with the taka
// sign. Display-only; ledger arithmetic always works on the raw amounts.
func FormatBDT(amount float64) string {
	return bnPrinter.Sprintf("৳%.2f", amount)
}
