package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fraksi/internal/rejection"
	"fraksi/internal/simulator"
)

// operation runs one calculation for a session. HTTP handlers and WebSocket
// messages both dispatch to operations.
type operation func(ctx context.Context, session string, payload json.RawMessage) (any, error)

// errMalformed marks a payload that could not be decoded.
var errMalformed = errors.New("malformed payload")

type priceRequest struct {
	Price float64 `json:"price"`
}

type bandRequest struct {
	Reference float64 `json:"reference"`
}

type ladderRequest struct {
	Reference float64 `json:"reference"`
	Entry     float64 `json:"entry"`
}

type trailingRequest struct {
	Price float64 `json:"price"`
	Ticks int     `json:"ticks"`
}

type exitRequest struct {
	BuyPrice    float64 `json:"buy_price"`
	TotalLots   float64 `json:"total_lots"`
	SellPrice   float64 `json:"sell_price"`
	SellPercent float64 `json:"sell_percent"`
}

type dividendRequest struct {
	Capital      float64  `json:"capital"`
	YieldPercent float64  `json:"yield_percent"`
	TaxPercent   *float64 `json:"tax_percent"`
}

type viewRequest struct {
	View string `json:"view"`
}

type viewResponse struct {
	View string `json:"view"`
}

type historyRequest struct {
	Limit int `json:"limit"`
}

// typed adapts a function taking a decoded request into an operation.
func typed[T any](fn func(ctx context.Context, session string, req T) (any, error)) operation {
	return func(ctx context.Context, session string, payload json.RawMessage) (any, error) {
		var req T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, fmt.Errorf("%w: %w: %v", rejection.ErrInvalidInput, errMalformed, err)
			}
		}
		return fn(ctx, session, req)
	}
}

// operations maps message types to what they run.
func (s *Server) operations() map[string]operation {
	e := s.engine
	return map[string]operation{
		"rules": func(context.Context, string, json.RawMessage) (any, error) {
			return e.Rules(), nil
		},
		"tick": typed(func(_ context.Context, _ string, req priceRequest) (any, error) {
			return e.Tick(req.Price)
		}),
		"band": typed(func(_ context.Context, _ string, req bandRequest) (any, error) {
			return e.Band(req.Reference)
		}),
		"ladder": typed(func(_ context.Context, _ string, req ladderRequest) (any, error) {
			return e.Ladder(req.Reference, req.Entry)
		}),
		"trailing_stop": typed(func(_ context.Context, _ string, req trailingRequest) (any, error) {
			return e.TrailingStop(req.Price, req.Ticks)
		}),
		"simulate": typed(func(ctx context.Context, session string, req simulator.Input) (any, error) {
			return e.Simulate(ctx, session, req)
		}),
		"partial_exit": typed(func(_ context.Context, _ string, req exitRequest) (any, error) {
			return e.PartialExit(req.BuyPrice, req.TotalLots, req.SellPrice, req.SellPercent)
		}),
		"dividend": typed(func(_ context.Context, _ string, req dividendRequest) (any, error) {
			return e.Dividend(req.Capital, req.YieldPercent, req.TaxPercent)
		}),
		"get_view": func(ctx context.Context, session string, _ json.RawMessage) (any, error) {
			if session == "" {
				return nil, fmt.Errorf("%w: session is required", rejection.ErrInvalidInput)
			}
			return viewResponse{View: e.LastView(ctx, session)}, nil
		},
		"set_view": typed(func(ctx context.Context, session string, req viewRequest) (any, error) {
			if session == "" {
				return nil, fmt.Errorf("%w: session is required", rejection.ErrInvalidInput)
			}
			if err := e.SetLastView(ctx, session, req.View); err != nil {
				return nil, err
			}
			return viewResponse{View: req.View}, nil
		}),
		"simulations": typed(func(ctx context.Context, session string, req historyRequest) (any, error) {
			return e.SimulationHistory(ctx, session, req.Limit)
		}),
		"simulator_inputs": func(ctx context.Context, session string, _ json.RawMessage) (any, error) {
			if session == "" {
				return e.DefaultSimulatorInputs(), nil
			}
			return e.SimulatorInputs(ctx, session), nil
		},
	}
}
