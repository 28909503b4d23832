package di

import (
	"fmt"

	"VixWatch/internal/domain/repository"
	"VixWatch/internal/handler/api"
	"VixWatch/internal/handler/ws"
	internalrepo "VixWatch/internal/repository"
	"VixWatch/internal/service/scheduler"
	"VixWatch/internal/service/yahoo"
	"VixWatch/internal/usecase"
	"VixWatch/pkg/cache"
	"VixWatch/pkg/config"
	xhttp "VixWatch/pkg/http"
	pkgkafka "VixWatch/pkg/kafka"
	"VixWatch/pkg/logger"
	"VixWatch/pkg/metrics"
	"VixWatch/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStateStore creates the monitor state store. The redis backend
// shares state across processes; memory keeps it in process and loses it on
// restart.
func ProvideStateStore(cfg *config.Config) (repository.StateStore, error) {
	if cfg.Store.Backend != "redis" {
		return internalrepo.NewMemoryStateStore(), nil
	}

	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Store.Redis.Host),
		cache.WithRedisPort(cfg.Store.Redis.Port),
		cache.WithRedisPassword(cfg.Store.Redis.Password),
		cache.WithRedisDB(cfg.Store.Redis.DB),
		cache.WithRedisPrefix(cfg.Store.Redis.Prefix),
		cache.WithRedisPool(cfg.Store.Redis.PoolSize, cfg.Store.Redis.MinIdleConns, cfg.Store.Redis.PoolTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return internalrepo.NewRedisStateStore(c), nil
}

// ProvideAlertSink creates the notification sink. Without brokers alerts go
// to the log, so the dispatch path is always live.
func ProvideAlertSink(cfg *config.Config, l *logger.Logger) (repository.AlertSink, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return internalrepo.NewLogAlertSink(l), nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaAlertSink(producer, cfg.Kafka.Topic), nil
}

// ProvideQuoteFetcher creates the market data client.
func ProvideQuoteFetcher(cfg *config.Config) repository.QuoteFetcher {
	return yahoo.New(cfg.Yahoo.BaseURL, cfg.Yahoo.Timeout)
}

// ProvideScheduler creates the cycle scheduler.
func ProvideScheduler(cfg *config.Config, l *logger.Logger) *scheduler.Scheduler {
	return scheduler.New(cfg.Monitor.Interval, l)
}

// ProvideHub creates the websocket snapshot hub.
func ProvideHub(l *logger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvideMonitor creates the cycle driver with scheduler and snapshot fan-out
// attached.
func ProvideMonitor(
	fetcher repository.QuoteFetcher,
	store repository.StateStore,
	sink repository.AlertSink,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
	sched *scheduler.Scheduler,
	hub *ws.Hub,
) *usecase.MonitorService {
	return usecase.NewMonitorService(
		fetcher, store, sink, m, l,
		cfg.Monitor.FetchTimeout, cfg.Monitor.CycleTimeout,
		usecase.WithScheduler(sched),
		usecase.WithBroadcaster(hub),
	)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(l *logger.Logger, monitor *usecase.MonitorService) xhttp.Handler {
	return api.NewMonitorEchoHandler(l, monitor)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	monitor *usecase.MonitorService,
	sched *scheduler.Scheduler,
	hub *ws.Hub,
	handler xhttp.Handler,
	store repository.StateStore,
	sink repository.AlertSink,
) *server.App {
	return server.New(cfg, l, monitor, sched, hub, handler, store, sink)
}
