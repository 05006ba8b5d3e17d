// Package tick holds the IDX price fraction table and walks prices tick by tick.
package tick

import (
	"fmt"
	"math"

	"fraksi/internal/model"
	"fraksi/internal/rejection"
)

var rules = []model.TickRule{
	{Min: 1, Max: 199, Size: 1},
	{Min: 200, Max: 499, Size: 2},
	{Min: 500, Max: 1999, Size: 5},
	{Min: 2000, Max: 4999, Size: 10},
	{Min: 5000, Max: math.Inf(1), Size: 25},
}

// Rules returns a copy of the fraction table in ascending price order.
func Rules() []model.TickRule {
	out := make([]model.TickRule, len(rules))
	copy(out, rules)
	return out
}

// RuleFor returns the rule whose range contains price. A fractional price between
// two integer bounds belongs to the lower rule.
func RuleFor(price float64) (model.TickRule, error) {
	if !validPrice(price) {
		return model.TickRule{}, fmt.Errorf("%w: price %v", rejection.ErrInvalidInput, price)
	}
	for i, r := range rules {
		if price >= r.Min && price < upperEdge(i) {
			return r, nil
		}
	}
	return model.TickRule{}, fmt.Errorf("%w: no tick rule for price %v", rejection.ErrInvalidInput, price)
}

// ruleBelow returns the rule governing the prices just under price, which is the
// increment used when stepping down. At 200 that is the 1-tick band, not the 2-tick one.
func ruleBelow(price float64) (model.TickRule, bool) {
	for i, r := range rules {
		if price > r.Min && price <= upperEdge(i) {
			return r, true
		}
	}
	return model.TickRule{}, false
}

func upperEdge(i int) float64 {
	if i+1 < len(rules) {
		return rules[i+1].Min
	}
	return math.Inf(1)
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

// Summary describes how large one tick is relative to the prices of a rule.
type Summary struct {
	Rule              model.TickRule `json:"rule"`
	MaxPercentPerTick float64        `json:"max_percent_per_tick"`
	MinPercentPerTick *float64       `json:"min_percent_per_tick"` // nil for the unbounded band
}

// Summaries returns the per-tick percentage range of every rule.
func Summaries() []Summary {
	out := make([]Summary, 0, len(rules))
	for _, r := range rules {
		s := Summary{
			Rule:              r,
			MaxPercentPerTick: r.Size / r.Min * 100,
		}
		if !r.Unbounded() {
			minPct := r.Size / r.Max * 100
			s.MinPercentPerTick = &minPct
		}
		out = append(out, s)
	}
	return out
}

// Info is the fraction applying at a single price.
type Info struct {
	Price          float64        `json:"price"`
	Rule           model.TickRule `json:"rule"`
	PercentPerTick float64        `json:"percent_per_tick"`
}

// Describe resolves the rule for price and how much one tick moves it in percent.
func Describe(price float64) (Info, error) {
	r, err := RuleFor(price)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Price:          price,
		Rule:           r,
		PercentPerTick: r.Size / price * 100,
	}, nil
}
