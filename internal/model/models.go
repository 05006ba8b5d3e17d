package model

import (
	"encoding/json"
	"math"
	"time"
)

// TickRule maps a price range to its legal price increment.
type TickRule struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"` // inclusive; +Inf for the top band
	Size float64 `json:"size"`
}

// Unbounded reports whether the rule has no upper price limit.
func (r TickRule) Unbounded() bool {
	return math.IsInf(r.Max, 1)
}

// MarshalJSON writes an unbounded max as null.
func (r TickRule) MarshalJSON() ([]byte, error) {
	out := struct {
		Min  float64  `json:"min"`
		Max  *float64 `json:"max"`
		Size float64  `json:"size"`
	}{Min: r.Min, Size: r.Size}
	if !r.Unbounded() {
		out.Max = &r.Max
	}
	return json.Marshal(out)
}

// Band holds the auto-rejection percentages for a reference price range.
type Band struct {
	UpperPercent float64 `json:"upper_percent"`
	LowerPercent float64 `json:"lower_percent"`
	RangeLabel   string  `json:"range_label"`
}

// PriceLevel is a single tick-aligned row of a price ladder.
type PriceLevel struct {
	Price                float64 `json:"price"`
	TicksFromEntry       int     `json:"ticks_from_entry"`
	TicksFromReference   int     `json:"ticks_from_reference"`
	PercentFromEntry     float64 `json:"percent_from_entry"`
	PercentFromReference float64 `json:"percent_from_reference"`
	IsEntry              bool    `json:"is_entry"`
	IsReference          bool    `json:"is_reference"`
}

// DaySummary is the state of a capital simulation after one trading day.
type DaySummary struct {
	Day              int     `json:"day"`
	Month            int     `json:"month"`
	DayOfMonth       int     `json:"day_of_month"`
	StartCapital     float64 `json:"start_capital"`
	Profit           float64 `json:"profit"`
	ProfitTaken      float64 `json:"profit_taken"`
	EndCapital       float64 `json:"end_capital"`
	CumulativeProfit float64 `json:"cumulative_profit"`
	CumulativeTaken  float64 `json:"cumulative_taken"`
}

// MonthSummary aggregates the trading days of one simulated month.
type MonthSummary struct {
	Month            int     `json:"month"`
	StartCapital     float64 `json:"start_capital"`
	EndCapital       float64 `json:"end_capital"`
	GrossProfit      float64 `json:"gross_profit"`
	ProfitTaken      float64 `json:"profit_taken"`
	CumulativeProfit float64 `json:"cumulative_profit"`
	CumulativeTaken  float64 `json:"cumulative_taken"`
	ProfitNotTaken   float64 `json:"profit_not_taken"`
	GrowthPercent    float64 `json:"growth_percent"`
}

// ExitResult is the outcome of selling part of a position above cost.
type ExitResult struct {
	Proceeds              float64  `json:"proceeds"`
	PercentChange         float64  `json:"percent_change"`
	SoldLots              float64  `json:"sold_lots"`
	RemainingLots         float64  `json:"remaining_lots"`
	NewAverageCost        *float64 `json:"new_average_cost"` // nil when nothing remains
	RemainingCapitalValue float64  `json:"remaining_capital_value"`
}

// Preference is a remembered presentation setting for one session.
type Preference struct {
	SessionID string    `db:"session_id" json:"session_id"`
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SimulationRun is a completed capital simulation to be logged.
type SimulationRun struct {
	ID               string    `db:"id" json:"id"`
	SessionID        string    `db:"session_id" json:"session_id"`
	Timestamp        time.Time `db:"timestamp" json:"timestamp"`
	InitialCapital   float64   `db:"initial_capital" json:"initial_capital"`
	DailyRate        float64   `db:"daily_rate" json:"daily_rate"`
	DaysPerMonth     int       `db:"days_per_month" json:"days_per_month"`
	Months           int       `db:"months" json:"months"`
	Mode             string    `db:"mode" json:"mode"`
	TakeProfitAmount float64   `db:"take_profit_amount" json:"take_profit_amount"`
	TakeProfitPeriod string    `db:"take_profit_period" json:"take_profit_period"`
	FinalCapital     float64   `db:"final_capital" json:"final_capital"`
	CumulativeProfit float64   `db:"cumulative_profit" json:"cumulative_profit"`
	CumulativeTaken  float64   `db:"cumulative_taken" json:"cumulative_taken"`
}
