package repository

import (
	"context"
	"testing"
	"time"

	"VixWatch/internal/domain/models"
	"VixWatch/internal/domain/repository"
	"VixWatch/pkg/cache"
)

// The store is exercised over the memory cache backend, which encodes values
// the same way the redis backend does.
func newCacheStore() repository.StateStore {
	return NewRedisStateStore(cache.NewMemoryCache())
}

func TestStateStoreDefaults(t *testing.T) {
	s := newCacheStore()

	st, err := s.LoadState(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.Thresholds != models.DefaultThresholds() {
		t.Fatalf("thresholds %+v", st.Thresholds)
	}
	if st.TotalCash != 10000 {
		t.Fatalf("cash %v", st.TotalCash)
	}
	if st.LastNotifiedZone != models.ZoneNeutral {
		t.Fatalf("zone %v", st.LastNotifiedZone)
	}
	if len(st.Quotes) != 0 {
		t.Fatalf("quotes %v", st.Quotes)
	}
	if !st.LastUpdateTime.IsZero() {
		t.Fatalf("update time %v", st.LastUpdateTime)
	}
}

func TestStateStoreCommitRoundTrip(t *testing.T) {
	s := newCacheStore()
	ctx := context.Background()

	zone := models.ZonePanic
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	audit := &models.AuditLog{}
	audit.Append(models.NewAuditEntry(at, models.AuditCheck, "VIX 32.50 zone PANIC"))

	err := s.CommitCycle(ctx, &repository.CycleCommit{
		Quotes: map[string]models.Quote{
			models.SymbolVIX: {Price: 32.5, ChangePercent: 8.1},
			models.SymbolSPY: {Price: 480.0, ChangePercent: -2.3},
			models.SymbolSSO: {Price: 62.0, ChangePercent: -4.6},
		},
		UpdateTime:   at,
		NotifiedZone: &zone,
		Audit:        audit,
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	st, err := s.LoadState(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.Quotes[models.SymbolVIX].Price != 32.5 {
		t.Fatalf("vix quote %+v", st.Quotes[models.SymbolVIX])
	}
	if st.LastNotifiedZone != models.ZonePanic {
		t.Fatalf("zone %v", st.LastNotifiedZone)
	}
	if !st.LastUpdateTime.Equal(at) {
		t.Fatalf("update time %v", st.LastUpdateTime)
	}
	if st.LastError != "" {
		t.Fatalf("last error %q", st.LastError)
	}

	got, err := s.LoadAudit(ctx)
	if err != nil {
		t.Fatalf("load audit: %v", err)
	}
	head, ok := got.Head()
	if !ok || head.Message != "VIX 32.50 zone PANIC" {
		t.Fatalf("audit head %+v", head)
	}
}

func TestStateStoreFailedCycleCommit(t *testing.T) {
	s := newCacheStore()
	ctx := context.Background()

	audit := &models.AuditLog{}
	audit.Append(models.NewAuditEntry(time.Now(), models.AuditError, "fetch ^VIX: upstream status 500"))

	err := s.CommitCycle(ctx, &repository.CycleCommit{
		LastError: "fetch ^VIX: upstream status 500",
		Audit:     audit,
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	st, _ := s.LoadState(ctx)
	if st.LastError != "fetch ^VIX: upstream status 500" {
		t.Fatalf("last error %q", st.LastError)
	}
	if len(st.Quotes) != 0 || !st.LastUpdateTime.IsZero() {
		t.Fatalf("failed cycle wrote quote data: %+v", st)
	}
}

func TestStateStoreSaveSettingsResetsZone(t *testing.T) {
	s := newCacheStore()
	ctx := context.Background()

	zone := models.ZoneCrisis
	if err := s.CommitCycle(ctx, &repository.CycleCommit{NotifiedZone: &zone}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	th := models.Thresholds{Crisis: 50, Panic: 35, Correction: 28}
	if err := s.SaveSettings(ctx, th, 25000); err != nil {
		t.Fatalf("save: %v", err)
	}

	st, _ := s.LoadState(ctx)
	if st.Thresholds != th || st.TotalCash != 25000 {
		t.Fatalf("settings %+v cash %v", st.Thresholds, st.TotalCash)
	}
	if st.LastNotifiedZone != models.ZoneCalm {
		t.Fatalf("zone %v, want reset to CALM", st.LastNotifiedZone)
	}
}

func TestStateStoreSeedSettings(t *testing.T) {
	stores := map[string]repository.StateStore{
		"cache":  newCacheStore(),
		"memory": NewMemoryStateStore(),
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			th := models.Thresholds{Crisis: 60, Panic: 40, Correction: 30}
			if err := s.SeedSettings(ctx, th, 50000); err != nil {
				t.Fatalf("seed: %v", err)
			}

			st, err := s.LoadState(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if st.Thresholds != th {
				t.Fatalf("thresholds %+v, want configured %+v", st.Thresholds, th)
			}
			if st.TotalCash != 50000 {
				t.Fatalf("cash %v, want configured 50000", st.TotalCash)
			}

			// A second seed, as after a restart, must not overwrite.
			other := models.Thresholds{Crisis: 99, Panic: 98, Correction: 97}
			if err := s.SeedSettings(ctx, other, 1); err != nil {
				t.Fatalf("reseed: %v", err)
			}
			st, _ = s.LoadState(ctx)
			if st.Thresholds != th || st.TotalCash != 50000 {
				t.Fatalf("reseed overwrote settings: %+v cash %v", st.Thresholds, st.TotalCash)
			}
		})
	}
}

func TestStateStoreSeedKeepsSavedSettings(t *testing.T) {
	stores := map[string]repository.StateStore{
		"cache":  newCacheStore(),
		"memory": NewMemoryStateStore(),
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			saved := models.Thresholds{Crisis: 55, Panic: 38, Correction: 26}
			if err := s.SaveSettings(ctx, saved, 20000); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := s.SeedSettings(ctx, models.Thresholds{Crisis: 60, Panic: 40, Correction: 30}, 50000); err != nil {
				t.Fatalf("seed: %v", err)
			}

			st, _ := s.LoadState(ctx)
			if st.Thresholds != saved || st.TotalCash != 20000 {
				t.Fatalf("seed overwrote saved settings: %+v cash %v", st.Thresholds, st.TotalCash)
			}
		})
	}
}

func TestStateStoreRunningFlag(t *testing.T) {
	s := newCacheStore()
	ctx := context.Background()

	if err := s.SetRunning(ctx, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	st, _ := s.LoadState(ctx)
	if !st.IsRunning {
		t.Fatalf("expected running")
	}
	s.SetRunning(ctx, false)
	st, _ = s.LoadState(ctx)
	if st.IsRunning {
		t.Fatalf("expected stopped")
	}
}

func TestStateStoreLock(t *testing.T) {
	s := newCacheStore()
	ctx := context.Background()

	ok, err := s.TryLock(ctx, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock: ok=%v err=%v", ok, err)
	}
	ok, _ = s.TryLock(ctx, time.Minute)
	if ok {
		t.Fatalf("second lock acquired while held")
	}
	if err := s.Unlock(ctx); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	ok, _ = s.TryLock(ctx, time.Minute)
	if !ok {
		t.Fatalf("lock not reacquirable after unlock")
	}
}
