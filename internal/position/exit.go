// Package position covers single-position arithmetic: partial exits and dividend income.
package position

import (
	"fmt"
	"math"

	"fraksi/internal/model"
	"fraksi/internal/rejection"
)

// UnitsPerLot is the number of shares in one IDX lot.
const UnitsPerLot = 100

// PartialExit sells sellPercent of totalLots at sellPrice and reports the realised
// proceeds and the average cost left on the remainder.
func PartialExit(buyPrice, totalLots, sellPrice, sellPercent float64) (model.ExitResult, error) {
	switch {
	case !positive(buyPrice):
		return model.ExitResult{}, fmt.Errorf("%w: buy price %v", rejection.ErrInvalidInput, buyPrice)
	case !positive(totalLots):
		return model.ExitResult{}, fmt.Errorf("%w: total lots %v", rejection.ErrInvalidInput, totalLots)
	case !positive(sellPrice) || sellPrice <= buyPrice:
		return model.ExitResult{}, fmt.Errorf("%w: sell price %v must be above buy price %v", rejection.ErrInvalidInput, sellPrice, buyPrice)
	case !positive(sellPercent) || sellPercent > 100:
		return model.ExitResult{}, fmt.Errorf("%w: sell percent %v outside (0, 100]", rejection.ErrInvalidInput, sellPercent)
	}

	sold := totalLots * sellPercent / 100
	remaining := totalLots - sold
	proceeds := (sellPrice - buyPrice) * sold * UnitsPerLot
	remainingCost := buyPrice*remaining*UnitsPerLot - proceeds

	res := model.ExitResult{
		Proceeds:              proceeds,
		PercentChange:         (sellPrice - buyPrice) / buyPrice * 100,
		SoldLots:              sold,
		RemainingLots:         remaining,
		RemainingCapitalValue: remainingCost,
	}
	if remaining > 0 {
		avg := remainingCost / (remaining * UnitsPerLot)
		res.NewAverageCost = &avg
	}
	return res, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
