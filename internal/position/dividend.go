package position

import (
	"fmt"
	"math"

	"fraksi/internal/rejection"
)

// Calendar divisors for spreading a yearly dividend.
const (
	MonthsPerYear = 12
	DaysPerYear   = 365
)

// IncomeFigures is one period of dividend income.
type IncomeFigures struct {
	Gross float64 `json:"gross"`
	Tax   float64 `json:"tax"`
	Net   float64 `json:"net"`
}

// Income is the expected dividend on a capital at a flat yield and flat tax.
type Income struct {
	Capital      float64       `json:"capital"`
	YieldPercent float64       `json:"yield_percent"`
	TaxPercent   float64       `json:"tax_percent"`
	Yearly       IncomeFigures `json:"yearly"`
	Monthly      IncomeFigures `json:"monthly"`
	Daily        IncomeFigures `json:"daily"`
}

// DividendIncome spreads a yearly dividend over months and days.
func DividendIncome(capital, yieldPercent, taxPercent float64) (Income, error) {
	switch {
	case !positive(capital):
		return Income{}, fmt.Errorf("%w: capital %v", rejection.ErrInvalidInput, capital)
	case math.IsNaN(yieldPercent) || math.IsInf(yieldPercent, 0) || yieldPercent < 0:
		return Income{}, fmt.Errorf("%w: yield %v", rejection.ErrInvalidInput, yieldPercent)
	case math.IsNaN(taxPercent) || taxPercent < 0 || taxPercent > 100:
		return Income{}, fmt.Errorf("%w: tax %v outside 0..100", rejection.ErrInvalidInput, taxPercent)
	}

	gross := capital * yieldPercent / 100
	tax := gross * taxPercent / 100
	yearly := IncomeFigures{Gross: gross, Tax: tax, Net: gross - tax}

	return Income{
		Capital:      capital,
		YieldPercent: yieldPercent,
		TaxPercent:   taxPercent,
		Yearly:       yearly,
		Monthly:      yearly.divide(MonthsPerYear),
		Daily:        yearly.divide(DaysPerYear),
	}, nil
}

func (f IncomeFigures) divide(n float64) IncomeFigures {
	return IncomeFigures{Gross: f.Gross / n, Tax: f.Tax / n, Net: f.Net / n}
}
