package repository

import (
	"context"
	"sync"
	"time"

	"VixWatch/internal/domain/models"
	"VixWatch/internal/domain/repository"
)

// MemoryStateStore implements StateStore in process memory. It backs the
// store.backend=memory configuration for single-node runs and is the store
// the monitor tests run against.
type MemoryStateStore struct {
	mu       sync.RWMutex
	state    models.CycleState
	audit    string
	locked   bool
	settings bool
}

// NewMemoryStateStore creates an in-memory state store seeded with defaults.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{state: *defaultState()}
}

func (s *MemoryStateStore) LoadState(_ context.Context) (*models.CycleState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.Quotes = make(map[string]models.Quote, len(s.state.Quotes))
	for k, v := range s.state.Quotes {
		st.Quotes[k] = v
	}
	return &st, nil
}

func (s *MemoryStateStore) LoadAudit(_ context.Context) (*models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.DecodeAuditLog(s.audit), nil
}

func (s *MemoryStateStore) CommitCycle(_ context.Context, commit *repository.CycleCommit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for symbol, q := range commit.Quotes {
		s.state.Quotes[symbol] = q
	}
	if !commit.UpdateTime.IsZero() {
		s.state.LastUpdateTime = commit.UpdateTime
	}
	if commit.NotifiedZone != nil {
		s.state.LastNotifiedZone = *commit.NotifiedZone
	}
	s.state.LastError = commit.LastError
	if commit.Audit != nil {
		s.audit = commit.Audit.Encode()
	}
	return nil
}

func (s *MemoryStateStore) SaveSettings(_ context.Context, th models.Thresholds, cash float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Thresholds = th
	s.state.TotalCash = cash
	s.state.LastNotifiedZone = models.ZoneCalm
	s.settings = true
	return nil
}

func (s *MemoryStateStore) SeedSettings(_ context.Context, th models.Thresholds, cash float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings {
		return nil
	}
	s.state.Thresholds = th
	s.state.TotalCash = cash
	s.settings = true
	return nil
}

func (s *MemoryStateStore) SetRunning(_ context.Context, running bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsRunning = running
	return nil
}

func (s *MemoryStateStore) TryLock(_ context.Context, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return false, nil
	}
	s.locked = true
	return true, nil
}

func (s *MemoryStateStore) Unlock(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = false
	return nil
}

func (s *MemoryStateStore) Close() error { return nil }
