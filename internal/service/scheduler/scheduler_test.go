package scheduler

import (
	"context"
	"testing"
	"time"

	"VixWatch/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestRegisterIdempotent(t *testing.T) {
	s := New(time.Minute, testLogger(t))
	defer s.Shutdown(context.Background())

	s.Register(func() {})
	if !s.Registered() {
		t.Fatalf("expected registered")
	}
	first := s.entry

	// A second registration keeps the existing entry and its phase.
	s.Register(func() {})
	if s.entry != first {
		t.Fatalf("entry changed on re-register: %v -> %v", first, s.entry)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Fatalf("cron entries %d, want 1", got)
	}
}

func TestRemove(t *testing.T) {
	s := New(time.Minute, testLogger(t))
	defer s.Shutdown(context.Background())

	s.Register(func() {})
	s.Remove()
	if s.Registered() {
		t.Fatalf("still registered after remove")
	}
	if got := len(s.cron.Entries()); got != 0 {
		t.Fatalf("cron entries %d, want 0", got)
	}

	// Remove on an empty scheduler is a no-op.
	s.Remove()

	// Registration after removal installs a fresh entry.
	s.Register(func() {})
	if !s.Registered() {
		t.Fatalf("expected registered after re-add")
	}
}

func TestJobFires(t *testing.T) {
	s := New(50*time.Millisecond, testLogger(t))
	defer s.Shutdown(context.Background())

	fired := make(chan struct{}, 1)
	s.Register(func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("job never fired")
	}
}
