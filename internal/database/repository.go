package database

import (
	"context"
	"errors"

	"fraksi/internal/model"
)

// ErrNotFound is returned when a requested preference does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the standard interface for database operations.
type Repository interface {
	Migrate(ctx context.Context) error
	SavePreference(ctx context.Context, pref model.Preference) error
	GetPreference(ctx context.Context, sessionID, key string) (model.Preference, error)
	LogSimulation(ctx context.Context, run model.SimulationRun) error
	ListSimulations(ctx context.Context, sessionID string, limit int) ([]model.SimulationRun, error)
}
