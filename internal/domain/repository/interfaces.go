package repository

import (
	"context"
	"time"

	"VixWatch/internal/domain/models"
)

// QuoteFetcher retrieves the current quote for a single symbol. One call is
// one upstream request; retry policy belongs to the caller.
type QuoteFetcher interface {
	Fetch(ctx context.Context, symbol string) (models.Quote, error)
}

// AlertSink delivers a user-facing alert. Delivery is at-most-once per call;
// de-duplication happens upstream in the alert gate.
type AlertSink interface {
	Publish(ctx context.Context, alert *models.AlertEvent) error
	Close() error
}

// CycleCommit is the batched write applied at the end of a cycle. All fields
// land in one store transaction so readers never observe a half-updated
// snapshot.
type CycleCommit struct {
	// Quotes and UpdateTime are set only on a successful cycle.
	Quotes     map[string]models.Quote
	UpdateTime time.Time

	// NotifiedZone advances the last-notified marker when non-nil. It stays
	// nil when the gate declined or the alert dispatch failed.
	NotifiedZone *models.Zone

	// LastError is empty on success (clearing any previous failure) and
	// carries the cause on a failed cycle.
	LastError string

	Audit *models.AuditLog
}

// StateStore is the flat key/value persistence shared by the monitor and its
// API consumers. The cycle driver holds the only write path for cycle data.
type StateStore interface {
	// LoadState reads the full persisted snapshot, applying defaults for
	// keys never written.
	LoadState(ctx context.Context) (*models.CycleState, error)

	// LoadAudit reads the bounded audit trail.
	LoadAudit(ctx context.Context) (*models.AuditLog, error)

	// CommitCycle applies a cycle's writes atomically.
	CommitCycle(ctx context.Context, commit *CycleCommit) error

	// SaveSettings stores thresholds and cash, and resets the last-notified
	// zone so the next cycle re-evaluates the current zone as a fresh
	// transition.
	SaveSettings(ctx context.Context, th models.Thresholds, cash float64) error

	// SeedSettings writes thresholds and cash only when none were ever
	// stored, so startup configuration takes effect without clobbering
	// values a user already saved.
	SeedSettings(ctx context.Context, th models.Thresholds, cash float64) error

	// SetRunning flips the monitoring flag read by the UI.
	SetRunning(ctx context.Context, running bool) error

	// TryLock/Unlock guard the cycle against concurrent runners sharing the
	// same store.
	TryLock(ctx context.Context, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context) error

	Close() error
}

// Metrics records operational counters for the monitor.
type Metrics interface {
	RecordCycle(outcome string, seconds float64)
	RecordFetchLatency(symbol string, seconds float64)
	RecordAlertPublished(zone string)
	RecordVIX(value float64)
	RecordError(kind string)
}
