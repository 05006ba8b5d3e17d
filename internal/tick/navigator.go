package tick

import (
	"fmt"

	"fraksi/internal/rejection"
)

// MaxTraversalSteps is a safety valve for tick walks, not a market rule. It bounds
// loops that malformed input could otherwise keep running.
const MaxTraversalSteps = 1_000_000

// step moves price one tick in direction (+1 or -1), resolving the rule from the
// current price every time since increments change at band boundaries. A step up
// uses the rule containing price; a step down uses the rule of the prices just
// below it, so 200 steps down to 199 and 199 steps back up to 200.
func step(price float64, direction int) (float64, error) {
	var size float64
	if direction > 0 {
		r, err := RuleFor(price)
		if err != nil {
			return 0, err
		}
		size = r.Size
	} else {
		r, ok := ruleBelow(price)
		if !ok {
			return 0, fmt.Errorf("%w: no tick below %v", rejection.ErrInvalidInput, price)
		}
		size = -r.Size
	}

	next := price + size
	if !validPrice(next) {
		return 0, fmt.Errorf("%w: step from %v leaves valid prices", rejection.ErrInvalidInput, price)
	}
	if _, err := RuleFor(next); err != nil {
		return 0, fmt.Errorf("step from %v: %w", price, err)
	}
	return next, nil
}

// StepByTicks moves price by n single ticks, up for positive n and down for negative n.
func StepByTicks(price float64, n int) (float64, error) {
	if !validPrice(price) {
		return 0, fmt.Errorf("%w: price %v", rejection.ErrInvalidInput, price)
	}
	if n == 0 {
		return price, nil
	}

	direction, steps := 1, n
	if n < 0 {
		direction, steps = -1, -n
	}
	if steps > MaxTraversalSteps {
		return 0, fmt.Errorf("%w: %d ticks requested", rejection.ErrIterationLimit, n)
	}

	current := price
	for i := 0; i < steps; i++ {
		next, err := step(current, direction)
		if err != nil {
			return 0, err
		}
		current = next
	}
	return current, nil
}

// TicksBetween counts the signed number of single ticks from one price to another.
// It fails with ErrUnreachable when to is not on the tick grid walked from from.
func TicksBetween(from, to float64) (int, error) {
	if !validPrice(from) || !validPrice(to) {
		return 0, fmt.Errorf("%w: prices %v and %v", rejection.ErrInvalidInput, from, to)
	}
	if from == to {
		return 0, nil
	}

	direction := 1
	if to < from {
		direction = -1
	}

	current := from
	ticks := 0
	for current != to {
		if ticks*direction >= MaxTraversalSteps {
			return 0, fmt.Errorf("%w: %w: from %v to %v", rejection.ErrIterationLimit, rejection.ErrUnreachable, from, to)
		}

		next, err := step(current, direction)
		if err != nil {
			return 0, fmt.Errorf("%w: from %v to %v: %v", rejection.ErrUnreachable, from, to, err)
		}
		current = next
		ticks += direction

		if (direction > 0 && current > to) || (direction < 0 && current < to) {
			return 0, fmt.Errorf("%w: %v is not on the tick grid from %v", rejection.ErrUnreachable, to, from)
		}
	}
	return ticks, nil
}
