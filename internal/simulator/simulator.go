// Package simulator projects capital growth under a fixed daily return with a
// profit-taking policy.
package simulator

import (
	"fmt"
	"math"

	"fraksi/internal/model"
	"fraksi/internal/rejection"
)

// Bounds on the simulated horizon. They keep result sizes small, nothing more.
const (
	MaxDaysPerMonth = 31
	MaxMonths       = 60
)

// Mode decides what happens to each day's profit.
type Mode string

const (
	// ModeWithdraw takes every day's profit out; capital stays flat.
	ModeWithdraw Mode = "withdraw"
	// ModeReinvest compounds profit, less any take-profit extraction.
	ModeReinvest Mode = "reinvest"
)

// Period decides when take-profit is extracted in reinvest mode.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
)

// Input describes one simulation run.
type Input struct {
	InitialCapital   float64 `json:"initial_capital"`
	DailyRate        float64 `json:"daily_rate"` // fraction, 0.01 is 1% a day
	DaysPerMonth     int     `json:"days_per_month"`
	Months           int     `json:"months"`
	Mode             Mode    `json:"mode"`
	TakeProfitAmount float64 `json:"take_profit_amount"`
	TakeProfitPeriod Period  `json:"take_profit_period"`
}

// Validate rejects inputs the simulation cannot run with.
func (in Input) Validate() error {
	switch {
	case !finite(in.InitialCapital) || in.InitialCapital <= 0:
		return fmt.Errorf("%w: initial capital %v", rejection.ErrInvalidInput, in.InitialCapital)
	case !finite(in.DailyRate) || in.DailyRate < 0:
		return fmt.Errorf("%w: daily rate %v", rejection.ErrInvalidInput, in.DailyRate)
	case in.DaysPerMonth < 1 || in.DaysPerMonth > MaxDaysPerMonth:
		return fmt.Errorf("%w: days per month %d outside 1..%d", rejection.ErrInvalidInput, in.DaysPerMonth, MaxDaysPerMonth)
	case in.Months < 1 || in.Months > MaxMonths:
		return fmt.Errorf("%w: months %d outside 1..%d", rejection.ErrInvalidInput, in.Months, MaxMonths)
	case in.Mode != ModeWithdraw && in.Mode != ModeReinvest:
		return fmt.Errorf("%w: mode %q", rejection.ErrInvalidInput, in.Mode)
	}

	// Take-profit settings only apply when profit is reinvested.
	if in.Mode == ModeWithdraw {
		return nil
	}
	switch {
	case !finite(in.TakeProfitAmount) || in.TakeProfitAmount < 0:
		return fmt.Errorf("%w: take profit amount %v", rejection.ErrInvalidInput, in.TakeProfitAmount)
	case in.TakeProfitPeriod != PeriodDaily && in.TakeProfitPeriod != PeriodMonthly:
		return fmt.Errorf("%w: take profit period %q", rejection.ErrInvalidInput, in.TakeProfitPeriod)
	}
	return nil
}

// Totals are the figures at the end of a run.
type Totals struct {
	FinalCapital          float64 `json:"final_capital"`
	CumulativeProfit      float64 `json:"cumulative_profit"`
	CumulativeProfitTaken float64 `json:"cumulative_profit_taken"`
	ProfitNotTaken        float64 `json:"profit_not_taken"`
	GrowthPercent         float64 `json:"growth_percent"`
}

// Result holds every day and month of a run.
type Result struct {
	Input  Input                `json:"input"`
	Days   []model.DaySummary   `json:"days"`
	Months []model.MonthSummary `json:"months"`
	Totals Totals               `json:"totals"`
}

// state is mutated once per simulated day and never shared between runs.
type state struct {
	capital          float64
	cumulativeProfit float64
	cumulativeTaken  float64
}

// Simulate runs the day-by-day state machine for in.Months months of in.DaysPerMonth
// trading days.
func Simulate(in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s := state{capital: in.InitialCapital}
	res := &Result{
		Input:  in,
		Days:   make([]model.DaySummary, 0, in.DaysPerMonth*in.Months),
		Months: make([]model.MonthSummary, 0, in.Months),
	}

	day := 0
	for month := 1; month <= in.Months; month++ {
		monthStart := s.capital
		var monthGross, monthTaken float64

		for d := 1; d <= in.DaysPerMonth; d++ {
			day++
			dayStart := s.capital
			profit := s.capital * in.DailyRate
			monthGross += profit

			var taken float64
			switch in.Mode {
			case ModeWithdraw:
				taken = profit
			case ModeReinvest:
				if in.TakeProfitPeriod == PeriodDaily && in.TakeProfitAmount > 0 {
					taken = math.Min(in.TakeProfitAmount, profit)
				}
				s.capital += profit - taken

				if in.TakeProfitPeriod == PeriodMonthly && d == in.DaysPerMonth && in.TakeProfitAmount > 0 {
					lump := math.Min(in.TakeProfitAmount, monthGross)
					s.capital -= lump
					taken += lump
				}
			}

			s.cumulativeProfit += profit
			s.cumulativeTaken += taken
			monthTaken += taken

			if !finite(s.capital) || !finite(s.cumulativeProfit) || !finite(s.cumulativeTaken) {
				return nil, fmt.Errorf("%w: capital overflows on day %d", rejection.ErrInvalidInput, day)
			}

			res.Days = append(res.Days, model.DaySummary{
				Day:              day,
				Month:            month,
				DayOfMonth:       d,
				StartCapital:     dayStart,
				Profit:           profit,
				ProfitTaken:      taken,
				EndCapital:       s.capital,
				CumulativeProfit: s.cumulativeProfit,
				CumulativeTaken:  s.cumulativeTaken,
			})
		}

		res.Months = append(res.Months, model.MonthSummary{
			Month:            month,
			StartCapital:     monthStart,
			EndCapital:       s.capital,
			GrossProfit:      monthGross,
			ProfitTaken:      monthTaken,
			CumulativeProfit: s.cumulativeProfit,
			CumulativeTaken:  s.cumulativeTaken,
			ProfitNotTaken:   s.cumulativeProfit - s.cumulativeTaken,
			GrowthPercent:    growth(s.capital, in.InitialCapital),
		})
	}

	res.Totals = Totals{
		FinalCapital:          s.capital,
		CumulativeProfit:      s.cumulativeProfit,
		CumulativeProfitTaken: s.cumulativeTaken,
		ProfitNotTaken:        s.cumulativeProfit - s.cumulativeTaken,
		GrowthPercent:         growth(s.capital, in.InitialCapital),
	}
	return res, nil
}

func growth(capital, initial float64) float64 {
	return (capital - initial) / initial * 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
