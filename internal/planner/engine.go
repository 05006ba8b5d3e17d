// Package planner runs the calculators on behalf of a session and keeps what the
// session needs to resume.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fraksi/internal/band"
	"fraksi/internal/config"
	"fraksi/internal/database"
	"fraksi/internal/ladder"
	"fraksi/internal/model"
	"fraksi/internal/observability"
	"fraksi/internal/position"
	"fraksi/internal/rejection"
	"fraksi/internal/simulator"
	"fraksi/internal/tick"
)

// Preference keys.
const (
	KeyLastView        = "last_view"
	KeySimulatorInputs = "simulator_inputs"
)

// Views are the screens a session can come back to.
var Views = map[string]bool{
	"fraksi":    true,
	"trailing":  true,
	"ara-arb":   true,
	"ladder":    true,
	"simulator": true,
	"exit":      true,
	"dividend":  true,
}

// DefaultView is reported for a session with no stored view.
const DefaultView = "fraksi"

// History page sizes.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Engine holds the dependencies shared by every calculation.
type Engine struct {
	logger  *slog.Logger
	repo    database.Repository
	cfg     *config.Config
	metrics *observability.Metrics
}

// NewEngine creates a new instance of the Engine.
func NewEngine(logger *slog.Logger, repo database.Repository, cfg *config.Config, metrics *observability.Metrics) *Engine {
	return &Engine{
		logger:  logger,
		repo:    repo,
		cfg:     cfg,
		metrics: metrics,
	}
}

// observe records the outcome of a calculation started at start and logs rejections.
func (e *Engine) observe(operation string, start time.Time, err error) {
	kind := rejection.KindOf(err)
	e.metrics.ObserveCalculation(operation, string(kind), time.Since(start))
	if err != nil {
		e.logger.Debug("Calculation rejected", "operation", operation, "kind", kind, "error", err)
	}
}

func (e *Engine) storeFailed(operation string, err error) {
	e.metrics.StoreErrors.WithLabelValues(operation).Inc()
	e.logger.Error("Preference store failed", "operation", operation, "error", err)
}

// Rules returns the fraction table with its per-tick percentages.
func (e *Engine) Rules() []tick.Summary {
	start := time.Now()
	out := tick.Summaries()
	e.observe("rules", start, nil)
	return out
}

// Tick describes the fraction applying at price.
func (e *Engine) Tick(price float64) (tick.Info, error) {
	start := time.Now()
	info, err := tick.Describe(price)
	e.observe("tick", start, err)
	return info, err
}

// Band returns the auto-rejection limits of a reference price.
func (e *Engine) Band(reference float64) (band.Limits, error) {
	start := time.Now()
	l, err := band.LimitsFor(reference)
	e.observe("band", start, err)
	return l, err
}

// Ladder builds the price ladder of entry within the limits of reference.
func (e *Engine) Ladder(reference, entry float64) (*ladder.Ladder, error) {
	start := time.Now()
	l, err := ladder.Build(reference, entry)
	e.observe("ladder", start, err)
	if err == nil {
		e.metrics.LadderLevels.Observe(float64(len(l.Levels)))
	}
	return l, err
}

// TrailingStop places a stop ticks below price.
func (e *Engine) TrailingStop(price float64, ticks int) (*ladder.TrailingPlan, error) {
	start := time.Now()
	p, err := ladder.TrailingStop(price, ticks)
	e.observe("trailing_stop", start, err)
	return p, err
}

// PartialExit computes the outcome of selling part of a position.
func (e *Engine) PartialExit(buyPrice, totalLots, sellPrice, sellPercent float64) (model.ExitResult, error) {
	start := time.Now()
	r, err := position.PartialExit(buyPrice, totalLots, sellPrice, sellPercent)
	e.observe("partial_exit", start, err)
	return r, err
}

// Dividend computes dividend income. A nil taxPercent uses the configured default.
func (e *Engine) Dividend(capital, yieldPercent float64, taxPercent *float64) (position.Income, error) {
	tax := e.cfg.Dividend.TaxPercent
	if taxPercent != nil {
		tax = *taxPercent
	}
	start := time.Now()
	inc, err := position.DividendIncome(capital, yieldPercent, tax)
	e.observe("dividend", start, err)
	return inc, err
}

// Simulate runs a capital simulation. With a session id the inputs are kept for
// the session and the run is logged.
func (e *Engine) Simulate(ctx context.Context, sessionID string, in simulator.Input) (*simulator.Result, error) {
	start := time.Now()
	res, err := simulator.Simulate(in)
	e.observe("simulate", start, err)
	if err != nil {
		return nil, err
	}
	e.metrics.SimulatedDays.Add(float64(len(res.Days)))

	if sessionID == "" {
		return res, nil
	}

	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode simulator inputs: %w", err)
	}
	if err := e.repo.SavePreference(ctx, model.Preference{
		SessionID: sessionID,
		Key:       KeySimulatorInputs,
		Value:     string(raw),
		UpdatedAt: time.Now(),
	}); err != nil {
		e.storeFailed("save_preference", err)
	}

	run := model.SimulationRun{
		ID:               uuid.NewString(),
		SessionID:        sessionID,
		Timestamp:        time.Now(),
		InitialCapital:   in.InitialCapital,
		DailyRate:        in.DailyRate,
		DaysPerMonth:     in.DaysPerMonth,
		Months:           in.Months,
		Mode:             string(in.Mode),
		TakeProfitAmount: in.TakeProfitAmount,
		TakeProfitPeriod: string(in.TakeProfitPeriod),
		FinalCapital:     res.Totals.FinalCapital,
		CumulativeProfit: res.Totals.CumulativeProfit,
		CumulativeTaken:  res.Totals.CumulativeProfitTaken,
	}
	if err := e.repo.LogSimulation(ctx, run); err != nil {
		e.storeFailed("log_simulation", err)
	}

	e.logger.Info("Simulation completed",
		"session", sessionID,
		"runID", run.ID,
		"mode", in.Mode,
		"months", in.Months,
		"finalCapital", res.Totals.FinalCapital,
	)
	return res, nil
}

// SimulationHistory returns the latest simulation runs of a session, newest first.
// A limit outside 1..MaxHistoryLimit falls back to DefaultHistoryLimit.
func (e *Engine) SimulationHistory(ctx context.Context, sessionID string, limit int) ([]model.SimulationRun, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session is required", rejection.ErrInvalidInput)
	}
	if limit < 1 || limit > MaxHistoryLimit {
		limit = DefaultHistoryLimit
	}
	runs, err := e.repo.ListSimulations(ctx, sessionID, limit)
	if err != nil {
		e.storeFailed("list_simulations", err)
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	if runs == nil {
		runs = []model.SimulationRun{}
	}
	return runs, nil
}

// DefaultSimulatorInputs converts the configured defaults into a simulator input.
func (e *Engine) DefaultSimulatorInputs() simulator.Input {
	s := e.cfg.Simulator
	return simulator.Input{
		InitialCapital:   s.InitialCapital,
		DailyRate:        s.DailyRatePercent / 100,
		DaysPerMonth:     s.DaysPerMonth,
		Months:           s.Months,
		Mode:             simulator.Mode(s.Mode),
		TakeProfitAmount: s.TakeProfitAmount,
		TakeProfitPeriod: simulator.Period(s.TakeProfitPeriod),
	}
}

// SimulatorInputs returns the last inputs a session simulated with, or the
// configured defaults when there are none or they can no longer be read.
func (e *Engine) SimulatorInputs(ctx context.Context, sessionID string) simulator.Input {
	pref, err := e.repo.GetPreference(ctx, sessionID, KeySimulatorInputs)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			e.storeFailed("get_preference", err)
		}
		return e.DefaultSimulatorInputs()
	}

	var in simulator.Input
	if err := json.Unmarshal([]byte(pref.Value), &in); err != nil || in.Validate() != nil {
		e.logger.Warn("Discarding stored simulator inputs", "session", sessionID, "error", err)
		return e.DefaultSimulatorInputs()
	}
	return in
}

// SetLastView remembers the screen a session was on.
func (e *Engine) SetLastView(ctx context.Context, sessionID, view string) error {
	if !Views[view] {
		return fmt.Errorf("%w: unknown view %q", rejection.ErrInvalidInput, view)
	}
	if err := e.repo.SavePreference(ctx, model.Preference{
		SessionID: sessionID,
		Key:       KeyLastView,
		Value:     view,
		UpdatedAt: time.Now(),
	}); err != nil {
		e.storeFailed("save_preference", err)
	}
	return nil
}

// LastView returns the screen a session was on, or DefaultView.
func (e *Engine) LastView(ctx context.Context, sessionID string) string {
	pref, err := e.repo.GetPreference(ctx, sessionID, KeyLastView)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			e.storeFailed("get_preference", err)
		}
		return DefaultView
	}
	if !Views[pref.Value] {
		return DefaultView
	}
	return pref.Value
}
