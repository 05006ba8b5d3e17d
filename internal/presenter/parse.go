// Package presenter turns user text into numbers and calculation results into
// Indonesian-formatted text.
package presenter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"fraksi/internal/rejection"
)

// singleGroup matches one thousands group such as "2.500". A leading zero means
// a decimal fraction, as in "0.125".
var singleGroup = regexp.MustCompile(`^-?[1-9]\d{0,2}\.\d{3}$`)

// ParseNumber reads a number typed the Indonesian way or the plain way: "1.250,5",
// "1250,5", "1.000.000" and "1250.5" are all accepted. A lone dot followed by
// exactly three digits after a non-zero group, as in "2.500", is read as a
// thousands separator.
func ParseNumber(s string) (float64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// ParseInt is ParseNumber for whole numbers such as tick counts.
func ParseInt(s string) (int, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q is not a whole number", rejection.ErrInvalidInput, s)
	}
	return int(d.IntPart()), nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "Rp")
	clean = strings.ReplaceAll(strings.TrimSpace(clean), " ", "")

	switch {
	case strings.Contains(clean, ","):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	case singleGroup.MatchString(clean):
		clean = strings.Replace(clean, ".", "", 1)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", rejection.ErrInvalidInput, s)
	}
	return d, nil
}
