package repository

import (
	"context"

	"VixWatch/internal/domain/models"
	"VixWatch/internal/domain/repository"
	"VixWatch/pkg/logger"
)

// LogAlertSink writes alerts to the application log. Used when no broker is
// configured, keeping the dispatch path identical in dev and prod.
type LogAlertSink struct {
	l *logger.Logger
}

func NewLogAlertSink(l *logger.Logger) repository.AlertSink {
	return &LogAlertSink{l: l}
}

func (s *LogAlertSink) Publish(_ context.Context, alert *models.AlertEvent) error {
	s.l.Info("ALERT",
		logger.String("zone", alert.Zone.String()),
		logger.String("title", alert.Title),
		logger.String("message", alert.Message),
		logger.Float64("vix", alert.VIX))
	return nil
}

func (s *LogAlertSink) Close() error { return nil }
