// Package ladder lays out every legal price between the auto-rejection limits of a
// session, and the stop levels of a trailing stop.
package ladder

import (
	"fmt"
	"math"

	"fraksi/internal/band"
	"fraksi/internal/model"
	"fraksi/internal/rejection"
	"fraksi/internal/tick"
)

const (
	// MaxLevelsPerSide is a safety valve on ladder expansion in each direction.
	// Realistic bands stay far below it.
	MaxLevelsPerSide = 10_000

	// PriceTolerance absorbs floating-point drift when comparing prices with
	// limits and with the reference.
	PriceTolerance = 1e-7
)

// Ladder is the set of prices an entry can move to within one session.
type Ladder struct {
	Limits               band.Limits        `json:"limits"`
	Entry                float64            `json:"entry"`
	TicksFromReference   int                `json:"ticks_from_reference"`
	PercentFromReference float64            `json:"percent_from_reference"`
	Levels               []model.PriceLevel `json:"levels"`
}

// Build enumerates the tick-aligned prices from the lower to the upper auto-rejection
// limit of reference, walking outward from entry.
func Build(reference, entry float64) (*Ladder, error) {
	if entry <= 0 || math.IsNaN(entry) || math.IsInf(entry, 0) {
		return nil, fmt.Errorf("%w: entry price %v", rejection.ErrInvalidInput, entry)
	}

	limits, err := band.LimitsFor(reference)
	if err != nil {
		return nil, err
	}
	if entry > limits.Upper+PriceTolerance {
		return nil, fmt.Errorf("%w: entry %v above upper limit %v", rejection.ErrOutOfBand, entry, limits.Upper)
	}
	if entry < limits.Lower-PriceTolerance {
		return nil, fmt.Errorf("%w: entry %v below lower limit %v", rejection.ErrOutOfBand, entry, limits.Lower)
	}

	entryTicks, err := tick.TicksBetween(reference, entry)
	if err != nil {
		return nil, fmt.Errorf("entry %v from reference %v: %w", entry, reference, err)
	}

	below, err := expand(entry, -1, limits.Lower)
	if err != nil {
		return nil, err
	}
	above, err := expand(entry, 1, limits.Upper)
	if err != nil {
		return nil, err
	}

	fromReference, err := referenceOffsets(reference, limits)
	if err != nil {
		return nil, err
	}

	// below is ordered nearest first, so index i sits -(i+1) ticks from entry.
	prices := make([]float64, 0, len(below)+1+len(above))
	offsets := make([]int, 0, cap(prices))
	for i := len(below) - 1; i >= 0; i-- {
		prices = append(prices, below[i])
		offsets = append(offsets, -(i + 1))
	}
	prices = append(prices, entry)
	offsets = append(offsets, 0)
	for i, p := range above {
		prices = append(prices, p)
		offsets = append(offsets, i+1)
	}

	levels := make([]model.PriceLevel, 0, len(prices))
	for i, p := range prices {
		refTicks, ok := fromReference[p]
		if !ok {
			continue
		}
		levels = append(levels, model.PriceLevel{
			Price:                p,
			TicksFromEntry:       offsets[i],
			TicksFromReference:   refTicks,
			PercentFromEntry:     (p - entry) / entry * 100,
			PercentFromReference: (p - reference) / reference * 100,
			IsEntry:              offsets[i] == 0,
			IsReference:          math.Abs(p-reference) < PriceTolerance,
		})
	}

	return &Ladder{
		Limits:               limits,
		Entry:                entry,
		TicksFromReference:   entryTicks,
		PercentFromReference: (entry - reference) / reference * 100,
		Levels:               levels,
	}, nil
}

// expand steps from start one tick at a time until the next price would cross bound
// or a step fails. Prices are returned nearest first.
func expand(start float64, direction int, bound float64) ([]float64, error) {
	var out []float64
	current := start
	for len(out) < MaxLevelsPerSide {
		next, err := tick.StepByTicks(current, direction)
		if err != nil {
			return out, nil
		}
		if direction < 0 && next < bound-PriceTolerance {
			return out, nil
		}
		if direction > 0 && next > bound+PriceTolerance {
			return out, nil
		}
		out = append(out, next)
		current = next
	}
	return nil, fmt.Errorf("%w: more than %d levels from %v", rejection.ErrIterationLimit, MaxLevelsPerSide, start)
}

// referenceOffsets maps every price reachable from the reference inside the limits
// to its tick count, which is what TicksBetween(reference, price) returns for it.
func referenceOffsets(reference float64, limits band.Limits) (map[float64]int, error) {
	offsets := map[float64]int{reference: 0}

	below, err := expand(reference, -1, limits.Lower)
	if err != nil {
		return nil, err
	}
	for i, p := range below {
		offsets[p] = -(i + 1)
	}

	above, err := expand(reference, 1, limits.Upper)
	if err != nil {
		return nil, err
	}
	for i, p := range above {
		offsets[p] = i + 1
	}
	return offsets, nil
}
