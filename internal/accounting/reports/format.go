package reports

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders an amount with thousands separators and two decimals.
func FormatAmount(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// FormatBalance renders a running balance as "1,234.56 Dr" or "1,234.56 Cr".
func FormatBalance(v float64) string {
	return FormatAmount(math.Abs(v)) + " " + Side(v)
}
