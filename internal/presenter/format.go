package presenter

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.Indonesian)

// Currency formats v as whole rupiah, e.g. "Rp 1.250.000".
func Currency(v float64) string {
	if !finite(v) {
		return "-"
	}
	return "Rp " + Number(v)
}

// Number formats v rounded to a whole number with Indonesian grouping.
func Number(v float64) string {
	if !finite(v) {
		return "-"
	}
	return printer.Sprintf("%v", number.Decimal(math.Round(v), number.MaxFractionDigits(0)))
}

// Lots formats a lot count, keeping up to two decimals for fractional sells.
func Lots(v float64) string {
	if !finite(v) {
		return "-"
	}
	return printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2)))
}

// Percent formats v with two decimals and a decimal comma, e.g. "12,50%".
func Percent(v float64) string {
	if !finite(v) {
		return "-"
	}
	return printer.Sprintf("%v", number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2))) + "%"
}

// SignedPercent prefixes a non-zero percentage with its sign, e.g. "+ 2,50%".
func SignedPercent(v float64) string {
	return sign(v) + Percent(math.Abs(v))
}

// SignedTicks renders a tick offset, e.g. "- 3 tick".
func SignedTicks(n int) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	return fmt.Sprintf("%s%d tick", sign(float64(n)), abs)
}

// signedCurrency writes v as rupiah with its sign in front, "- Rp 50".
func signedCurrency(v float64) string {
	return sign(v) + Currency(math.Abs(v))
}

func sign(v float64) string {
	switch {
	case v > 0:
		return "+ "
	case v < 0:
		return "- "
	default:
		return ""
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
