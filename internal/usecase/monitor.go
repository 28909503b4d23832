package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"VixWatch/internal/domain/models"
	drepo "VixWatch/internal/domain/repository"
	"VixWatch/pkg/logger"
)

var (
	// ErrCycleInFlight is returned when a cycle is already running and the
	// single-slot queue behind it is occupied.
	ErrCycleInFlight = errors.New("monitoring cycle already in flight")

	// ErrCycleQueued means the request was accepted but will run after the
	// current cycle completes.
	ErrCycleQueued = errors.New("monitoring cycle queued")

	// ErrBadThresholds rejects a settings update whose triple is not
	// strictly descending.
	ErrBadThresholds = errors.New("thresholds must satisfy crisis > panic > correction")

	// ErrBadCash rejects a non-positive cash amount.
	ErrBadCash = errors.New("total cash must be positive")
)

// SnapshotBroadcaster receives the fresh read model after every successful
// cycle. Implementations must not block.
type SnapshotBroadcaster interface {
	Broadcast(s *models.Snapshot)
}

// CycleScheduler registers the periodic cycle job. Register is idempotent:
// calling it while a job is already registered keeps the existing entry and
// its phase.
type CycleScheduler interface {
	Register(job func())
	Remove()
}

// MonitorService drives the periodic check cycle and owns every write to the
// state store. Handlers and the scheduler both funnel through RunCycle, which
// guarantees at most one cycle executes at a time.
type MonitorService struct {
	fetcher drepo.QuoteFetcher
	store   drepo.StateStore
	sink    drepo.AlertSink
	metrics drepo.Metrics
	l       *logger.Logger

	fetchTimeout time.Duration
	cycleTimeout time.Duration

	scheduler   CycleScheduler
	broadcaster SnapshotBroadcaster
	now         func() time.Time

	mu      sync.Mutex
	pending chan struct{}
}

// MonitorOption customizes a MonitorService.
type MonitorOption func(*MonitorService)

// WithScheduler attaches the periodic scheduler used by Start/Stop.
func WithScheduler(s CycleScheduler) MonitorOption {
	return func(m *MonitorService) { m.scheduler = s }
}

// WithBroadcaster attaches a snapshot fan-out target.
func WithBroadcaster(b SnapshotBroadcaster) MonitorOption {
	return func(m *MonitorService) { m.broadcaster = b }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) MonitorOption {
	return func(m *MonitorService) { m.now = now }
}

// NewMonitorService wires the cycle driver.
func NewMonitorService(
	fetcher drepo.QuoteFetcher,
	store drepo.StateStore,
	sink drepo.AlertSink,
	metrics drepo.Metrics,
	l *logger.Logger,
	fetchTimeout, cycleTimeout time.Duration,
	opts ...MonitorOption,
) *MonitorService {
	m := &MonitorService{
		fetcher:      fetcher,
		store:        store,
		sink:         sink,
		metrics:      metrics,
		l:            l,
		fetchTimeout: fetchTimeout,
		cycleTimeout: cycleTimeout,
		now:          time.Now,
		pending:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunCycle executes one monitoring cycle. If a cycle is already in flight the
// request is queued behind it (at most one deep) and ErrCycleQueued is
// returned; further requests get ErrCycleInFlight.
func (m *MonitorService) RunCycle(ctx context.Context) error {
	if !m.mu.TryLock() {
		select {
		case m.pending <- struct{}{}:
			return ErrCycleQueued
		default:
			return ErrCycleInFlight
		}
	}
	defer m.mu.Unlock()

	err := m.cycle(ctx)

	// Drain queued requests before releasing exclusion, looping in case one
	// arrives while a queued run is in flight. A queued run belongs to a
	// different caller, so it gets a context detached from this caller's
	// cancellation.
	for {
		select {
		case <-m.pending:
			if qerr := m.cycle(context.WithoutCancel(ctx)); qerr != nil {
				m.l.Warn("queued cycle failed", logger.Error(qerr))
			}
		default:
			return err
		}
	}
}

func (m *MonitorService) cycle(ctx context.Context) (err error) {
	ctx, cancel := context.WithTimeout(ctx, m.cycleTimeout)
	defer cancel()

	locked, lockErr := m.store.TryLock(ctx, 2*m.cycleTimeout)
	if lockErr != nil {
		return fmt.Errorf("acquire cycle lock: %w", lockErr)
	}
	if !locked {
		return ErrCycleInFlight
	}
	defer func() {
		if uerr := m.store.Unlock(context.WithoutCancel(ctx)); uerr != nil {
			m.l.Warn("release cycle lock", logger.Error(uerr))
		}
	}()

	started := m.now()
	defer func() {
		if r := recover(); r != nil {
			err = m.recordCrash(context.WithoutCancel(ctx), started, r)
		}
	}()

	st, err := m.store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	audit, err := m.store.LoadAudit(ctx)
	if err != nil {
		return fmt.Errorf("load audit: %w", err)
	}

	quotes, fetchErr := m.fetchAll(ctx)
	if fetchErr != nil {
		return m.failCycle(ctx, audit, started, fetchErr)
	}

	vix := quotes[models.SymbolVIX]
	zone, message := Classify(vix.Price, st.Thresholds, st.TotalCash)
	m.metrics.RecordVIX(vix.Price)

	now := m.now()

	// Dispatch before persist: a failed delivery leaves the notified marker
	// untouched so the same transition fires again next cycle.
	var notified *models.Zone
	if ShouldNotify(zone, st.LastNotifiedZone) {
		alert := &models.AlertEvent{
			Symbol:    models.SymbolVIX,
			Zone:      zone,
			Title:     fmt.Sprintf("Market: %s", zone),
			Message:   message,
			VIX:       vix.Price,
			CreatedAt: now,
		}
		if perr := m.sink.Publish(ctx, alert); perr != nil {
			m.l.Warn("alert dispatch failed",
				logger.String("zone", zone.String()),
				logger.Error(perr))
			m.metrics.RecordError("alert_dispatch")
		} else {
			z := zone
			notified = &z
			m.metrics.RecordAlertPublished(zone.String())
		}
	}

	audit.Append(models.NewAuditEntry(now, models.AuditCheck,
		fmt.Sprintf("VIX %.2f zone %s", vix.Price, zone)))
	if notified != nil {
		audit.Append(models.NewAuditEntry(now, models.AuditAlert, message))
	}

	commit := &drepo.CycleCommit{
		Quotes:       quotes,
		UpdateTime:   now,
		NotifiedZone: notified,
		LastError:    "",
		Audit:        audit,
	}
	if cerr := m.store.CommitCycle(ctx, commit); cerr != nil {
		return fmt.Errorf("commit cycle: %w", cerr)
	}

	m.metrics.RecordCycle("ok", m.now().Sub(started).Seconds())
	m.l.Info("cycle complete",
		logger.Float64("vix", vix.Price),
		logger.String("zone", zone.String()),
		logger.Bool("alerted", notified != nil))

	if m.broadcaster != nil {
		st.Quotes = quotes
		st.LastUpdateTime = now
		st.LastError = ""
		if notified != nil {
			st.LastNotifiedZone = *notified
		}
		m.broadcaster.Broadcast(BuildSnapshot(st, m.now()))
	}
	return nil
}

// fetchAll fans out one request per symbol and collects the results. A
// failure on any symbol fails the whole batch; partial quote sets are never
// persisted.
func (m *MonitorService) fetchAll(ctx context.Context) (map[string]models.Quote, error) {
	symbols := []string{models.SymbolVIX, models.SymbolSPY, models.SymbolSSO}

	type result struct {
		symbol   string
		quote    models.Quote
		err      error
		panicked interface{}
	}
	results := make(chan result, len(symbols))

	for _, sym := range symbols {
		go func(sym string) {
			defer func() {
				if r := recover(); r != nil {
					results <- result{symbol: sym, panicked: r}
				}
			}()

			fctx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
			defer cancel()

			start := time.Now()
			q, err := m.fetcher.Fetch(fctx, sym)
			m.metrics.RecordFetchLatency(sym, time.Since(start).Seconds())
			results <- result{symbol: sym, quote: q, err: err}
		}(sym)
	}

	quotes := make(map[string]models.Quote, len(symbols))
	var firstErr error
	for range symbols {
		r := <-results
		if r.panicked != nil {
			// Re-raise on the cycle goroutine so the crash recovery path
			// records it.
			panic(r.panicked)
		}
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch %s: %w", r.symbol, r.err)
			}
			continue
		}
		quotes[r.symbol] = r.quote
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return quotes, nil
}

// failCycle records a fetch failure. Quotes, update time and the notified
// zone are left untouched; only the error and the audit trail move.
func (m *MonitorService) failCycle(ctx context.Context, audit *models.AuditLog, started time.Time, cause error) error {
	// The expired cycle budget may be the very failure being recorded, so
	// the commit must not run under that deadline.
	ctx = context.WithoutCancel(ctx)

	audit.Append(models.NewAuditEntry(m.now(), models.AuditError, cause.Error()))

	commit := &drepo.CycleCommit{
		LastError: cause.Error(),
		Audit:     audit,
	}
	if cerr := m.store.CommitCycle(ctx, commit); cerr != nil {
		m.l.Error("persist failed cycle", logger.Error(cerr))
	}

	m.metrics.RecordCycle("error", m.now().Sub(started).Seconds())
	m.metrics.RecordError("fetch")
	m.l.Error("cycle failed", logger.Error(cause))
	return cause
}

// recordCrash persists a panic as a CRASH audit entry so the trail explains
// the gap in readings. Best effort: a store failure here is only logged.
func (m *MonitorService) recordCrash(ctx context.Context, started time.Time, r interface{}) error {
	cause := fmt.Errorf("cycle panic: %v", r)
	m.l.Error("cycle panicked", logger.Error(cause))
	m.metrics.RecordError("crash")
	m.metrics.RecordCycle("crash", m.now().Sub(started).Seconds())

	audit, aerr := m.store.LoadAudit(ctx)
	if aerr != nil {
		m.l.Error("load audit after panic", logger.Error(aerr))
		audit = &models.AuditLog{}
	}
	audit.Append(models.NewAuditEntry(m.now(), models.AuditCrash, cause.Error()))

	commit := &drepo.CycleCommit{
		LastError: cause.Error(),
		Audit:     audit,
	}
	if cerr := m.store.CommitCycle(ctx, commit); cerr != nil {
		m.l.Error("persist crash record", logger.Error(cerr))
	}
	return cause
}

// Snapshot builds the current read model from persisted state.
func (m *MonitorService) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	st, err := m.store.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(st, m.now()), nil
}

// Audit returns up to limit audit entries, newest first. A non-positive
// limit returns the full trail.
func (m *MonitorService) Audit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	audit, err := m.store.LoadAudit(ctx)
	if err != nil {
		return nil, err
	}
	entries := audit.Entries()
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// UpdateSettings validates and persists new thresholds and cash, then kicks
// an immediate cycle so the UI reflects the new strategy without waiting for
// the next tick.
func (m *MonitorService) UpdateSettings(ctx context.Context, th models.Thresholds, cash float64) error {
	if !th.Ordered() {
		return ErrBadThresholds
	}
	if cash <= 0 {
		return ErrBadCash
	}
	if err := m.store.SaveSettings(ctx, th, cash); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	m.l.Info("settings updated",
		logger.Float64("crisis", th.Crisis),
		logger.Float64("panic", th.Panic),
		logger.Float64("correction", th.Correction),
		logger.Float64("cash", cash))
	m.kick()
	return nil
}

// Start flags monitoring as active, registers the periodic job and kicks an
// immediate cycle. Safe to call repeatedly.
func (m *MonitorService) Start(ctx context.Context) error {
	if err := m.store.SetRunning(ctx, true); err != nil {
		return fmt.Errorf("start monitoring: %w", err)
	}
	if m.scheduler != nil {
		m.scheduler.Register(m.tick)
	}
	m.l.Info("monitoring started")
	m.kick()
	return nil
}

// Stop flags monitoring as inactive and removes the periodic job. A cycle
// already in flight finishes.
func (m *MonitorService) Stop(ctx context.Context) error {
	if err := m.store.SetRunning(ctx, false); err != nil {
		return fmt.Errorf("stop monitoring: %w", err)
	}
	if m.scheduler != nil {
		m.scheduler.Remove()
	}
	m.l.Info("monitoring stopped")
	return nil
}

// Resume restores the schedule after a restart when monitoring was left
// running.
func (m *MonitorService) Resume(ctx context.Context) error {
	st, err := m.store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("resume monitoring: %w", err)
	}
	if !st.IsRunning {
		return nil
	}
	if m.scheduler != nil {
		m.scheduler.Register(m.tick)
	}
	m.l.Info("monitoring resumed")
	m.kick()
	return nil
}

// TestAlert publishes a synthetic alert so the delivery path can be verified
// end to end without waiting for a real zone change.
func (m *MonitorService) TestAlert(ctx context.Context) error {
	alert := &models.AlertEvent{
		Symbol:    models.SymbolVIX,
		Zone:      models.ZoneNeutral,
		Title:     "Test alert",
		Message:   "Delivery check. If you can read this, alerts work.",
		CreatedAt: m.now(),
	}
	if err := m.sink.Publish(ctx, alert); err != nil {
		return fmt.Errorf("publish test alert: %w", err)
	}
	return nil
}

func (m *MonitorService) tick() {
	if err := m.RunCycle(context.Background()); err != nil &&
		!errors.Is(err, ErrCycleQueued) && !errors.Is(err, ErrCycleInFlight) {
		m.l.Error("scheduled cycle failed", logger.Error(err))
	}
}

func (m *MonitorService) kick() {
	go m.tick()
}

// BuildSnapshot derives the client-facing read model from persisted state.
// Zone classification happens here, server-side; consumers only render.
func BuildSnapshot(st *models.CycleState, now time.Time) *models.Snapshot {
	snap := &models.Snapshot{
		Quotes:         st.Quotes,
		LastUpdateTime: st.LastUpdateTime,
		Thresholds:     st.Thresholds,
		TotalCash:      st.TotalCash,
		IsRunning:      st.IsRunning,
		LastError:      st.LastError,
		Stale:          st.LastUpdateTime.IsZero() || now.Sub(st.LastUpdateTime) > models.StaleAfter,
	}

	vix, ok := st.Quotes[models.SymbolVIX]
	if !ok {
		snap.Zone = models.ZoneNeutral
		snap.ZoneName = models.ZoneNeutral.String()
		snap.Message = "No readings yet."
		return snap
	}

	zone, message := Classify(vix.Price, st.Thresholds, st.TotalCash)
	snap.Zone = zone
	snap.ZoneName = zone.String()
	snap.Message = message

	meter := int(vix.Price)
	if meter < 0 {
		meter = 0
	}
	if meter > models.FearMeterMax {
		meter = models.FearMeterMax
	}
	snap.FearMeter = meter
	return snap
}
