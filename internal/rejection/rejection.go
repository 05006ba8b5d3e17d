// Package rejection defines the typed failures returned by the calculation core.
package rejection

import "errors"

// Calculation errors. Core functions wrap one of these with context; callers match with errors.Is.
var (
	// ErrInvalidInput is returned for non-finite, non-positive or out-of-range arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUncovered is returned when a reference price is below the band schedule.
	ErrUncovered = errors.New("price not covered by band schedule")

	// ErrUnreachable is returned when a price is not reachable by whole ticks from a baseline.
	ErrUnreachable = errors.New("price not reachable by whole ticks")

	// ErrOutOfBand is returned when a price falls outside the regulatory band.
	ErrOutOfBand = errors.New("price outside regulatory band")

	// ErrIterationLimit is returned when a bounded traversal hits its safety ceiling.
	ErrIterationLimit = errors.New("iteration limit exceeded")
)

// Kind names a rejection for transport and display.
type Kind string

const (
	KindNone           Kind = ""
	KindInvalidInput   Kind = "invalid_input"
	KindUncovered      Kind = "uncovered"
	KindUnreachable    Kind = "unreachable"
	KindOutOfBand      Kind = "out_of_band"
	KindIterationLimit Kind = "iteration_limit_exceeded"
	KindInternal       Kind = "internal"
)

// KindOf classifies err. The iteration limit is checked before unreachable since
// traversal ceilings wrap both.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrIterationLimit):
		return KindIterationLimit
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrUncovered):
		return KindUncovered
	case errors.Is(err, ErrUnreachable):
		return KindUnreachable
	case errors.Is(err, ErrOutOfBand):
		return KindOutOfBand
	default:
		return KindInternal
	}
}

// IsRejection reports whether err is one of the calculation errors above.
func IsRejection(err error) bool {
	k := KindOf(err)
	return k != KindNone && k != KindInternal
}
