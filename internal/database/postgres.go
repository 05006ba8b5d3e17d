package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fraksi/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS preferences (
	session_id VARCHAR(64) NOT NULL,
	key VARCHAR(64) NOT NULL,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (session_id, key)
);

CREATE TABLE IF NOT EXISTS simulation_runs (
	id VARCHAR(64) PRIMARY KEY,
	session_id VARCHAR(64) NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	initial_capital DOUBLE PRECISION NOT NULL,
	daily_rate DOUBLE PRECISION NOT NULL,
	days_per_month INTEGER NOT NULL,
	months INTEGER NOT NULL,
	mode VARCHAR(16) NOT NULL,
	take_profit_amount DOUBLE PRECISION NOT NULL,
	take_profit_period VARCHAR(16) NOT NULL,
	final_capital DOUBLE PRECISION NOT NULL,
	cumulative_profit DOUBLE PRECISION NOT NULL,
	cumulative_taken DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS simulation_runs_session_idx ON simulation_runs (session_id, timestamp DESC);
`

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	Pool *pgxpool.Pool
}

// Compile-time interface check.
var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository connects to dsn and verifies the connection.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresRepository{Pool: pool}, nil
}

// Close closes the connection pool.
func (r *PostgresRepository) Close() {
	r.Pool.Close()
}

// Migrate creates the tables if they do not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SavePreference inserts or replaces the value stored under the session and key.
func (r *PostgresRepository) SavePreference(ctx context.Context, pref model.Preference) error {
	if pref.UpdatedAt.IsZero() {
		pref.UpdatedAt = time.Now()
	}

	query := `
		INSERT INTO preferences (session_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.Pool.Exec(ctx, query, pref.SessionID, pref.Key, pref.Value, pref.UpdatedAt); err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	return nil
}

// GetPreference returns ErrNotFound when nothing is stored under the session and key.
func (r *PostgresRepository) GetPreference(ctx context.Context, sessionID, key string) (model.Preference, error) {
	query := `SELECT session_id, key, value, updated_at FROM preferences WHERE session_id = $1 AND key = $2`

	var pref model.Preference
	err := r.Pool.QueryRow(ctx, query, sessionID, key).Scan(&pref.SessionID, &pref.Key, &pref.Value, &pref.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Preference{}, ErrNotFound
		}
		return model.Preference{}, fmt.Errorf("get preference: %w", err)
	}
	return pref, nil
}

// LogSimulation records a completed simulation run.
func (r *PostgresRepository) LogSimulation(ctx context.Context, run model.SimulationRun) error {
	query := `
		INSERT INTO simulation_runs (
			id, session_id, timestamp,
			initial_capital, daily_rate, days_per_month, months,
			mode, take_profit_amount, take_profit_period,
			final_capital, cumulative_profit, cumulative_taken
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10,
			$11, $12, $13
		)
	`
	_, err := r.Pool.Exec(ctx, query,
		run.ID, run.SessionID, run.Timestamp,
		run.InitialCapital, run.DailyRate, run.DaysPerMonth, run.Months,
		run.Mode, run.TakeProfitAmount, run.TakeProfitPeriod,
		run.FinalCapital, run.CumulativeProfit, run.CumulativeTaken,
	)
	if err != nil {
		return fmt.Errorf("insert simulation run: %w", err)
	}
	return nil
}

// ListSimulations returns the latest runs of a session, newest first.
func (r *PostgresRepository) ListSimulations(ctx context.Context, sessionID string, limit int) ([]model.SimulationRun, error) {
	query := `
		SELECT id, session_id, timestamp,
			initial_capital, daily_rate, days_per_month, months,
			mode, take_profit_amount, take_profit_period,
			final_capital, cumulative_profit, cumulative_taken
		FROM simulation_runs
		WHERE session_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`
	rows, err := r.Pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query simulation runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.SimulationRun])
	if err != nil {
		return nil, fmt.Errorf("scan simulation runs: %w", err)
	}
	return runs, nil
}
