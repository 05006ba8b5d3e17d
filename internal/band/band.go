// Package band computes the IDX auto-rejection limits (ARA/ARB) for a reference price.
package band

import (
	"fmt"
	"math"

	"fraksi/internal/model"
	"fraksi/internal/rejection"
)

// MinCoveredPrice is the lowest reference price in the auto-rejection schedule.
const MinCoveredPrice = 50

// For returns the band percentages applying to reference.
func For(reference float64) (model.Band, error) {
	if reference <= 0 || math.IsNaN(reference) || math.IsInf(reference, 0) {
		return model.Band{}, fmt.Errorf("%w: reference price %v", rejection.ErrInvalidInput, reference)
	}

	switch {
	case reference < MinCoveredPrice:
		return model.Band{}, fmt.Errorf("%w: reference price %v below %d", rejection.ErrUncovered, reference, MinCoveredPrice)
	case reference <= 200:
		return model.Band{UpperPercent: 35, LowerPercent: 15, RangeLabel: "Rp 50 – Rp 200"}, nil
	case reference <= 5000:
		return model.Band{UpperPercent: 25, LowerPercent: 15, RangeLabel: "> Rp 200 – Rp 5.000"}, nil
	default:
		return model.Band{UpperPercent: 20, LowerPercent: 15, RangeLabel: "> Rp 5.000"}, nil
	}
}

// Limits are the absolute prices reachable from a reference within one session.
// They are continuous bounds and need not sit on a tick.
type Limits struct {
	Reference float64    `json:"reference"`
	Band      model.Band `json:"band"`
	Upper     float64    `json:"upper"`
	Lower     float64    `json:"lower"`
}

// LimitsFor resolves the band for reference and applies it.
func LimitsFor(reference float64) (Limits, error) {
	b, err := For(reference)
	if err != nil {
		return Limits{}, err
	}
	return Limits{
		Reference: reference,
		Band:      b,
		Upper:     reference * (1 + b.UpperPercent/100),
		Lower:     reference * (1 - b.LowerPercent/100),
	}, nil
}

// Contains reports whether price lies within the limits, bounds included.
func (l Limits) Contains(price float64) bool {
	return price >= l.Lower && price <= l.Upper
}
