package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"VixWatch/internal/domain/models"
)

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "1d" || r.URL.Query().Get("range") != "1d" {
			t.Errorf("missing chart params: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":32.5,"chartPreviousClose":26.0}}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	q, err := c.Fetch(context.Background(), models.SymbolVIX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Price != 32.5 {
		t.Fatalf("price %v", q.Price)
	}
	if q.ChangePercent != 25.0 {
		t.Fatalf("change %v", q.ChangePercent)
	}
}

func TestFetchMissingPreviousClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":18.4}}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	q, err := c.Fetch(context.Background(), models.SymbolSPY)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.ChangePercent != 0.0 {
		t.Fatalf("change %v, want 0.0", q.ChangePercent)
	}
}

func TestFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream broke"))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	_, err := c.Fetch(context.Background(), models.SymbolVIX)
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusInternalServerError {
		t.Fatalf("status %d", ue.Status)
	}
}

func TestFetchMalformed(t *testing.T) {
	cases := []string{
		``,
		`not json`,
		`{"chart":{"result":[]}}`,
		`{"chart":{"result":[{"meta":{}}]}}`,
	}
	for _, body := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(body))
		}))
		c := New(srv.URL, 2*time.Second)
		_, err := c.Fetch(context.Background(), models.SymbolVIX)
		srv.Close()

		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("body %q: expected ParseError, got %v", body, err)
		}
	}
}
