// Package memory keeps preferences and simulation runs in process memory, for
// running without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fraksi/internal/database"
	"fraksi/internal/model"
)

type prefKey struct {
	session string
	key     string
}

// Repository is an in-memory implementation of database.Repository.
type Repository struct {
	mu    sync.RWMutex
	prefs map[prefKey]model.Preference
	runs  map[string][]model.SimulationRun // keyed by session_id
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		prefs: make(map[prefKey]model.Preference),
		runs:  make(map[string][]model.SimulationRun),
	}
}

var _ database.Repository = (*Repository)(nil)

// Migrate is a no-op.
func (r *Repository) Migrate(_ context.Context) error {
	return nil
}

// SavePreference inserts or replaces the value stored under the session and key.
func (r *Repository) SavePreference(_ context.Context, pref model.Preference) error {
	if pref.UpdatedAt.IsZero() {
		pref.UpdatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[prefKey{pref.SessionID, pref.Key}] = pref
	return nil
}

// GetPreference returns database.ErrNotFound when nothing is stored.
func (r *Repository) GetPreference(_ context.Context, sessionID, key string) (model.Preference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pref, ok := r.prefs[prefKey{sessionID, key}]
	if !ok {
		return model.Preference{}, database.ErrNotFound
	}
	return pref, nil
}

// LogSimulation appends a run to its session.
func (r *Repository) LogSimulation(_ context.Context, run model.SimulationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.SessionID] = append(r.runs[run.SessionID], run)
	return nil
}

// ListSimulations returns the latest runs of a session, newest first.
func (r *Repository) ListSimulations(_ context.Context, sessionID string, limit int) ([]model.SimulationRun, error) {
	r.mu.RLock()
	out := make([]model.SimulationRun, len(r.runs[sessionID]))
	copy(out, r.runs[sessionID])
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
