package planner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fraksi/internal/config"
	"fraksi/internal/database"
	"fraksi/internal/model"
	"fraksi/internal/observability"
	"fraksi/internal/rejection"
	"fraksi/internal/simulator"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRepository) SavePreference(ctx context.Context, pref model.Preference) error {
	args := m.Called(ctx, pref)
	return args.Error(0)
}

func (m *MockRepository) GetPreference(ctx context.Context, sessionID, key string) (model.Preference, error) {
	args := m.Called(ctx, sessionID, key)
	return args.Get(0).(model.Preference), args.Error(1)
}

func (m *MockRepository) LogSimulation(ctx context.Context, run model.SimulationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRepository) ListSimulations(ctx context.Context, sessionID string, limit int) ([]model.SimulationRun, error) {
	args := m.Called(ctx, sessionID, limit)
	return args.Get(0).([]model.SimulationRun), args.Error(1)
}

func newTestEngine(repo database.Repository) (*Engine, *observability.Metrics) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := &config.Config{
		Simulator: config.SimulatorConfig{
			InitialCapital:   10_000_000,
			DailyRatePercent: 1,
			DaysPerMonth:     20,
			Months:           12,
			Mode:             "reinvest",
			TakeProfitPeriod: "daily",
		},
		Dividend: config.DividendConfig{TaxPercent: 10},
	}
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	return NewEngine(logger, repo, cfg, metrics), metrics
}

func sampleInput() simulator.Input {
	return simulator.Input{
		InitialCapital:   1_000_000,
		DailyRate:        0.01,
		DaysPerMonth:     5,
		Months:           2,
		Mode:             simulator.ModeReinvest,
		TakeProfitPeriod: simulator.PeriodDaily,
	}
}

func TestEngine_Simulate(t *testing.T) {
	ctx := context.Background()

	t.Run("persists inputs and logs the run", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, metrics := newTestEngine(mockRepo)
		in := sampleInput()

		mockRepo.On("SavePreference", mock.Anything, mock.MatchedBy(func(p model.Preference) bool {
			var stored simulator.Input
			return p.SessionID == "s1" && p.Key == KeySimulatorInputs &&
				json.Unmarshal([]byte(p.Value), &stored) == nil && stored == in
		})).Return(nil).Once()
		mockRepo.On("LogSimulation", mock.Anything, mock.MatchedBy(func(r model.SimulationRun) bool {
			return r.SessionID == "s1" && r.ID != "" && r.Mode == "reinvest" && r.FinalCapital > in.InitialCapital
		})).Return(nil).Once()

		res, err := engine.Simulate(ctx, "s1", in)
		require.NoError(t, err)
		assert.Len(t, res.Days, 10)
		mockRepo.AssertExpectations(t)
		assert.Equal(t, 10.0, testutil.ToFloat64(metrics.SimulatedDays))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CalculationsTotal.WithLabelValues("simulate")))
	})

	t.Run("store failures do not fail the run", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, metrics := newTestEngine(mockRepo)

		mockRepo.On("SavePreference", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
		mockRepo.On("LogSimulation", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

		_, err := engine.Simulate(ctx, "s1", sampleInput())
		require.NoError(t, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreErrors.WithLabelValues("save_preference")))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreErrors.WithLabelValues("log_simulation")))
	})

	t.Run("no session skips the store", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, _ := newTestEngine(mockRepo)

		_, err := engine.Simulate(ctx, "", sampleInput())
		require.NoError(t, err)
		mockRepo.AssertNotCalled(t, "SavePreference", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "LogSimulation", mock.Anything, mock.Anything)
	})

	t.Run("invalid input is rejected and not stored", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, metrics := newTestEngine(mockRepo)
		in := sampleInput()
		in.Months = 0

		_, err := engine.Simulate(ctx, "s1", in)
		assert.ErrorIs(t, err, rejection.ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "SavePreference", mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RejectionsTotal.WithLabelValues("simulate", "invalid_input")))
	})
}

func TestEngine_SimulatorInputs(t *testing.T) {
	ctx := context.Background()

	t.Run("stored inputs", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, _ := newTestEngine(mockRepo)
		in := sampleInput()
		raw, _ := json.Marshal(in)

		mockRepo.On("GetPreference", mock.Anything, "s1", KeySimulatorInputs).
			Return(model.Preference{Value: string(raw)}, nil).Once()
		assert.Equal(t, in, engine.SimulatorInputs(ctx, "s1"))
	})

	t.Run("defaults when missing", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, metrics := newTestEngine(mockRepo)

		mockRepo.On("GetPreference", mock.Anything, "s1", KeySimulatorInputs).
			Return(model.Preference{}, database.ErrNotFound).Once()
		got := engine.SimulatorInputs(ctx, "s1")
		assert.Equal(t, 10_000_000.0, got.InitialCapital)
		assert.InDelta(t, 0.01, got.DailyRate, 1e-12)
		assert.Equal(t, simulator.ModeReinvest, got.Mode)
		assert.Equal(t, 0.0, testutil.ToFloat64(metrics.StoreErrors.WithLabelValues("get_preference")))
	})

	t.Run("defaults when corrupt", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, _ := newTestEngine(mockRepo)

		mockRepo.On("GetPreference", mock.Anything, "s1", KeySimulatorInputs).
			Return(model.Preference{Value: `{"months": 0}`}, nil).Once()
		assert.Equal(t, engine.DefaultSimulatorInputs(), engine.SimulatorInputs(ctx, "s1"))
	})

	t.Run("defaults when the store fails", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, metrics := newTestEngine(mockRepo)

		mockRepo.On("GetPreference", mock.Anything, "s1", KeySimulatorInputs).
			Return(model.Preference{}, errors.New("db down")).Once()
		assert.Equal(t, engine.DefaultSimulatorInputs(), engine.SimulatorInputs(ctx, "s1"))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreErrors.WithLabelValues("get_preference")))
	})
}

func TestEngine_LastView(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	engine, _ := newTestEngine(mockRepo)

	err := engine.SetLastView(ctx, "s1", "nowhere")
	assert.ErrorIs(t, err, rejection.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "SavePreference", mock.Anything, mock.Anything)

	mockRepo.On("SavePreference", mock.Anything, mock.MatchedBy(func(p model.Preference) bool {
		return p.Key == KeyLastView && p.Value == "ladder"
	})).Return(nil).Once()
	require.NoError(t, engine.SetLastView(ctx, "s1", "ladder"))

	mockRepo.On("GetPreference", mock.Anything, "s1", KeyLastView).
		Return(model.Preference{Value: "ladder"}, nil).Once()
	assert.Equal(t, "ladder", engine.LastView(ctx, "s1"))

	mockRepo.On("GetPreference", mock.Anything, "s2", KeyLastView).
		Return(model.Preference{}, database.ErrNotFound).Once()
	assert.Equal(t, DefaultView, engine.LastView(ctx, "s2"))

	mockRepo.AssertExpectations(t)
}

func TestEngine_Calculations(t *testing.T) {
	engine, metrics := newTestEngine(new(MockRepository))

	l, err := engine.Ladder(1000, 1000)
	require.NoError(t, err)
	assert.Len(t, l.Levels, 81)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.LadderLevels))

	_, err = engine.Ladder(1000, 2000)
	assert.ErrorIs(t, err, rejection.ErrOutOfBand)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RejectionsTotal.WithLabelValues("ladder", "out_of_band")))

	inc, err := engine.Dividend(1_000_000, 10, nil)
	require.NoError(t, err)
	assert.InDelta(t, 10_000.0, inc.Yearly.Tax, 1e-9)

	zero := 0.0
	inc, err = engine.Dividend(1_000_000, 10, &zero)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, inc.Yearly.Tax, 1e-9)

	assert.Len(t, engine.Rules(), 5)

	info, err := engine.Tick(1000)
	require.NoError(t, err)
	assert.Equal(t, 5.0, info.Rule.Size)

	_, err = engine.Band(10)
	assert.ErrorIs(t, err, rejection.ErrUncovered)

	plan, err := engine.TrailingStop(1000, 2)
	require.NoError(t, err)
	assert.Equal(t, 990.0, plan.StopPrice)

	exit, err := engine.PartialExit(100, 10, 120, 50)
	require.NoError(t, err)
	assert.Equal(t, 5.0, exit.SoldLots)
}

func TestEngine_SimulationHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("clamps the limit", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, _ := newTestEngine(mockRepo)
		runs := []model.SimulationRun{{ID: "b", SessionID: "s1"}, {ID: "a", SessionID: "s1"}}

		mockRepo.On("ListSimulations", mock.Anything, "s1", 5).Return(runs, nil).Once()
		mockRepo.On("ListSimulations", mock.Anything, "s1", DefaultHistoryLimit).Return(runs[:1], nil).Twice()

		got, err := engine.SimulationHistory(ctx, "s1", 5)
		require.NoError(t, err)
		assert.Equal(t, runs, got)

		_, err = engine.SimulationHistory(ctx, "s1", 0)
		require.NoError(t, err)
		_, err = engine.SimulationHistory(ctx, "s1", MaxHistoryLimit+1)
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty history is an empty list", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, _ := newTestEngine(mockRepo)

		mockRepo.On("ListSimulations", mock.Anything, "s1", DefaultHistoryLimit).
			Return([]model.SimulationRun(nil), nil).Once()
		got, err := engine.SimulationHistory(ctx, "s1", 0)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, metrics := newTestEngine(mockRepo)

		mockRepo.On("ListSimulations", mock.Anything, "s1", DefaultHistoryLimit).
			Return([]model.SimulationRun(nil), errors.New("db down")).Once()
		_, err := engine.SimulationHistory(ctx, "s1", 0)
		assert.Error(t, err)
		assert.False(t, rejection.IsRejection(err))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreErrors.WithLabelValues("list_simulations")))
	})

	t.Run("session is required", func(t *testing.T) {
		mockRepo := new(MockRepository)
		engine, _ := newTestEngine(mockRepo)

		_, err := engine.SimulationHistory(ctx, "", 10)
		assert.ErrorIs(t, err, rejection.ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "ListSimulations", mock.Anything, mock.Anything, mock.Anything)
	})
}
