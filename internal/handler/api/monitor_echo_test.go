package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"VixWatch/internal/domain/models"
	internalrepo "VixWatch/internal/repository"
	"VixWatch/internal/usecase"
	"VixWatch/pkg/logger"
)

type stubFetcher struct {
	quotes map[string]models.Quote
}

func (f *stubFetcher) Fetch(_ context.Context, symbol string) (models.Quote, error) {
	return f.quotes[symbol], nil
}

type stubSink struct{ published int }

func (s *stubSink) Publish(context.Context, *models.AlertEvent) error {
	s.published++
	return nil
}

func (s *stubSink) Close() error { return nil }

type stubMetrics struct{}

func (stubMetrics) RecordCycle(string, float64)        {}
func (stubMetrics) RecordFetchLatency(string, float64) {}
func (stubMetrics) RecordAlertPublished(string)        {}
func (stubMetrics) RecordVIX(float64)                  {}
func (stubMetrics) RecordError(string)                 {}

func newTestHandler(t *testing.T) (*MonitorEchoHandler, *echo.Echo, *internalrepo.MemoryStateStore) {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	store := internalrepo.NewMemoryStateStore()
	fetcher := &stubFetcher{quotes: map[string]models.Quote{
		models.SymbolVIX: {Price: 32.5},
		models.SymbolSPY: {Price: 480.0},
		models.SymbolSSO: {Price: 62.0},
	}}
	monitor := usecase.NewMonitorService(fetcher, store, &stubSink{}, stubMetrics{}, l,
		time.Second, 5*time.Second)

	h := NewMonitorEchoHandler(l, monitor)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e, store
}

func TestSnapshotEndpoint(t *testing.T) {
	_, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"zone_name"`) || !strings.Contains(body, `"fear_meter"`) {
		t.Fatalf("body %s", body)
	}
}

func TestSettingsEndpointRejectsMisordered(t *testing.T) {
	_, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/settings",
		strings.NewReader(`{"crisis":25,"panic":30,"correction":45,"cash":10000}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "crisis > panic > correction") {
		t.Fatalf("body %s", rec.Body.String())
	}
}

func TestSettingsEndpointPersists(t *testing.T) {
	_, e, store := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/settings",
		strings.NewReader(`{"crisis":50,"panic":35,"correction":28,"cash":25000}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	st, _ := store.LoadState(context.Background())
	if st.Thresholds.Crisis != 50 || st.TotalCash != 25000 {
		t.Fatalf("settings not persisted: %+v", st)
	}
}

func TestSettingsEndpointValidation(t *testing.T) {
	_, e, _ := newTestHandler(t)

	// Missing required fields fails request validation.
	req := httptest.NewRequest(http.MethodPost, "/api/settings",
		strings.NewReader(`{"cash":10000}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "ERR_REQUIRED") {
		t.Fatalf("body %s", rec.Body.String())
	}
}

func TestRunEndpointAccepted(t *testing.T) {
	_, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/run", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "cycle scheduled") {
		t.Fatalf("body %s", rec.Body.String())
	}
}

func TestRunEndpointRateLimited(t *testing.T) {
	_, e, _ := newTestHandler(t)

	limited := false
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/run", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if strings.Contains(rec.Body.String(), "slow down") {
			limited = true
		}
	}
	if !limited {
		t.Fatalf("burst of 5 was never limited")
	}
}

func TestStartStopEndpoints(t *testing.T) {
	_, e, store := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/start", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status %d", rec.Code)
	}
	st, _ := store.LoadState(context.Background())
	if !st.IsRunning {
		t.Fatalf("not running after start")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/stop", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	st, _ = store.LoadState(context.Background())
	if st.IsRunning {
		t.Fatalf("still running after stop")
	}
}

func TestAuditEndpoint(t *testing.T) {
	h, e, _ := newTestHandler(t)

	// Seed a few cycles through the service.
	for i := 0; i < 3; i++ {
		if err := h.monitor.RunCycle(context.Background()); err != nil {
			t.Fatalf("cycle: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audit?limit=2", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if got := strings.Count(rec.Body.String(), `"kind"`); got != 2 {
		t.Fatalf("entries %d, want 2: %s", got, rec.Body.String())
	}
}
