// Package scheduler runs the periodic monitoring job on a fixed interval.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"VixWatch/pkg/logger"
)

// Scheduler owns the cron runner for the cycle job. Registration keeps at
// most one entry: re-registering while a job exists preserves the existing
// entry and its phase, so restarts of the monitoring flag never shift the
// tick grid.
type Scheduler struct {
	interval time.Duration
	l        *logger.Logger

	mu    sync.Mutex
	cron  *cron.Cron
	entry cron.EntryID
}

// New builds a scheduler ticking at the given interval. The cron runner
// starts immediately; it idles until a job is registered.
func New(interval time.Duration, l *logger.Logger) *Scheduler {
	c := cron.New()
	c.Start()
	return &Scheduler{
		interval: interval,
		l:        l,
		cron:     c,
	}
}

// Register installs the job unless one is already installed.
func (s *Scheduler) Register(job func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != 0 {
		return
	}
	s.entry = s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(job))
	s.l.Info("cycle job registered", logger.Duration("interval", s.interval))
}

// Remove uninstalls the job if present.
func (s *Scheduler) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry == 0 {
		return
	}
	s.cron.Remove(s.entry)
	s.entry = 0
	s.l.Info("cycle job removed")
}

// Registered reports whether a job is currently installed.
func (s *Scheduler) Registered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry != 0
}

// Shutdown stops the runner and waits for a running job to finish or the
// context to expire.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
