package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"VixWatch/internal/domain/models"
	"VixWatch/internal/domain/repository"
	"VixWatch/pkg/cache"
	"VixWatch/pkg/util"
)

// Flat state keys. The store is the sole channel between the monitor core
// and its UI consumers.
const (
	keyQuoteVIX    = "quote:vix"
	keyQuoteSPY    = "quote:spy"
	keyQuoteSSO    = "quote:sso"
	keyLastUpdate  = "last_update_time"
	keyLastError   = "last_error"
	keyLastZone    = "last_notified_zone"
	keyThresholds  = "thresholds"
	keyTotalCash   = "total_cash"
	keyIsRunning   = "is_running"
	keyAuditLog    = "audit_log"
	keyCycleLock   = "cycle_lock"
	defaultCash    = 10000.0
)

var quoteKeys = map[string]string{
	models.SymbolVIX: keyQuoteVIX,
	models.SymbolSPY: keyQuoteSPY,
	models.SymbolSSO: keyQuoteSSO,
}

// RedisStateStore implements StateStore on the shared cache service. All
// per-cycle mutations go through MSet, which batches them into a single
// transaction pipeline.
type RedisStateStore struct {
	cache cache.Service
}

// NewRedisStateStore creates a state store over a cache backend.
func NewRedisStateStore(c cache.Service) repository.StateStore {
	return &RedisStateStore{cache: c}
}

func (s *RedisStateStore) LoadState(ctx context.Context) (*models.CycleState, error) {
	raw, err := s.cache.MGet(ctx,
		keyQuoteVIX, keyQuoteSPY, keyQuoteSSO,
		keyLastUpdate, keyLastError, keyLastZone,
		keyThresholds, keyTotalCash, keyIsRunning,
	)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	st := defaultState()

	for symbol, key := range quoteKeys {
		if v, ok := raw[key]; ok {
			var q models.Quote
			if err := json.Unmarshal([]byte(v), &q); err == nil {
				st.Quotes[symbol] = q
			}
		}
	}

	if v, ok := raw[keyLastUpdate]; ok {
		st.LastUpdateTime = util.ParseTimeDefault(unquote(v), time.Time{})
	}
	if v, ok := raw[keyLastError]; ok {
		st.LastError = unquote(v)
	}
	if v, ok := raw[keyLastZone]; ok {
		if z, err := strconv.Atoi(v); err == nil {
			st.LastNotifiedZone = models.Zone(z)
		}
	}
	if v, ok := raw[keyThresholds]; ok {
		var th models.Thresholds
		if err := json.Unmarshal([]byte(v), &th); err == nil {
			st.Thresholds = th
		}
	}
	if v, ok := raw[keyTotalCash]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			st.TotalCash = f
		}
	}
	if v, ok := raw[keyIsRunning]; ok {
		st.IsRunning = v == "true"
	}

	return st, nil
}

func (s *RedisStateStore) LoadAudit(ctx context.Context) (*models.AuditLog, error) {
	var raw string
	err := s.cache.Get(ctx, keyAuditLog, &raw)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return &models.AuditLog{}, nil
		}
		return nil, fmt.Errorf("load audit: %w", err)
	}
	return models.DecodeAuditLog(unquote(raw)), nil
}

func (s *RedisStateStore) CommitCycle(ctx context.Context, commit *repository.CycleCommit) error {
	values := make(map[string]interface{})

	for symbol, q := range commit.Quotes {
		key, ok := quoteKeys[symbol]
		if !ok {
			continue
		}
		values[key] = q
	}
	if !commit.UpdateTime.IsZero() {
		values[keyLastUpdate] = commit.UpdateTime.UTC().Format(time.RFC3339)
	}
	if commit.NotifiedZone != nil {
		values[keyLastZone] = int(*commit.NotifiedZone)
	}
	values[keyLastError] = commit.LastError
	if commit.Audit != nil {
		values[keyAuditLog] = commit.Audit.Encode()
	}

	if err := s.cache.MSet(ctx, values, 0); err != nil {
		return fmt.Errorf("commit cycle: %w", err)
	}
	return nil
}

func (s *RedisStateStore) SaveSettings(ctx context.Context, th models.Thresholds, cash float64) error {
	// Resetting the notified zone to CALM forces the next cycle to treat any
	// non-neutral zone as a fresh transition under the new thresholds.
	values := map[string]interface{}{
		keyThresholds: th,
		keyTotalCash:  cash,
		keyLastZone:   int(models.ZoneCalm),
	}
	if err := s.cache.MSet(ctx, values, 0); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *RedisStateStore) SeedSettings(ctx context.Context, th models.Thresholds, cash float64) error {
	// The thresholds key marks whether settings were ever written, either by
	// a previous seed or by a user save. Present means hands off.
	exists, err := s.cache.Exists(ctx, keyThresholds)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	if exists {
		return nil
	}
	values := map[string]interface{}{
		keyThresholds: th,
		keyTotalCash:  cash,
	}
	if err := s.cache.MSet(ctx, values, 0); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}

func (s *RedisStateStore) SetRunning(ctx context.Context, running bool) error {
	if err := s.cache.MSet(ctx, map[string]interface{}{keyIsRunning: running}, 0); err != nil {
		return fmt.Errorf("set running: %w", err)
	}
	return nil
}

func (s *RedisStateStore) TryLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return s.cache.TryLock(ctx, keyCycleLock, ttl)
}

func (s *RedisStateStore) Unlock(ctx context.Context) error {
	return s.cache.Unlock(ctx, keyCycleLock)
}

func (s *RedisStateStore) Close() error {
	if closer, ok := s.cache.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func defaultState() *models.CycleState {
	return &models.CycleState{
		Quotes:           make(map[string]models.Quote),
		LastNotifiedZone: models.ZoneNeutral,
		Thresholds:       models.DefaultThresholds(),
		TotalCash:        defaultCash,
	}
}

// MSet marshals strings with JSON quoting; strip so readers see raw values.
func unquote(v string) string {
	var s string
	if err := json.Unmarshal([]byte(v), &s); err == nil {
		return s
	}
	return v
}
