package ladder

import (
	"fmt"
	"math"

	"fraksi/internal/rejection"
	"fraksi/internal/tick"
)

// trailingMargin is how many levels past the stop the plan shows.
const trailingMargin = 3

// TrailingLevel is one price below the current price of a trailing stop plan.
type TrailingLevel struct {
	Offset  int     `json:"offset"`
	Price   float64 `json:"price"`
	Percent float64 `json:"percent"`
	IsStop  bool    `json:"is_stop"`
}

// TrailingPlan places a stop a whole number of ticks under the current price.
type TrailingPlan struct {
	Price       float64         `json:"price"`
	TickSize    float64         `json:"tick_size"`
	Ticks       int             `json:"ticks"`
	StopPrice   float64         `json:"stop_price"`
	Drop        float64         `json:"drop"`
	DropPercent float64         `json:"drop_percent"`
	Levels      []TrailingLevel `json:"levels"`
}

// TrailingStop computes the stop price ticks below price, stepping through band
// boundaries, along with the levels from one tick below price to a few ticks past the stop.
func TrailingStop(price float64, ticks int) (*TrailingPlan, error) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, fmt.Errorf("%w: price %v", rejection.ErrInvalidInput, price)
	}
	if ticks < 1 {
		return nil, fmt.Errorf("%w: trailing ticks %d", rejection.ErrInvalidInput, ticks)
	}

	rule, err := tick.RuleFor(price)
	if err != nil {
		return nil, err
	}
	stop, err := tick.StepByTicks(price, -ticks)
	if err != nil {
		return nil, fmt.Errorf("stop %d ticks below %v: %w", ticks, price, err)
	}

	var below []TrailingLevel
	current := price
	for offset := -1; offset >= -(ticks + trailingMargin); offset-- {
		next, err := tick.StepByTicks(current, -1)
		if err != nil {
			break
		}
		below = append(below, TrailingLevel{
			Offset:  offset,
			Price:   next,
			Percent: (next - price) / price * 100,
			IsStop:  offset == -ticks,
		})
		current = next
	}

	levels := make([]TrailingLevel, 0, len(below))
	for i := len(below) - 1; i >= 0; i-- {
		levels = append(levels, below[i])
	}

	drop := price - stop
	return &TrailingPlan{
		Price:       price,
		TickSize:    rule.Size,
		Ticks:       ticks,
		StopPrice:   stop,
		Drop:        drop,
		DropPercent: drop / price * 100,
		Levels:      levels,
	}, nil
}
