package di

import (
	"context"
	"fmt"
	"time"

	"HockeyQuant/internal/domain/repository"
	"HockeyQuant/internal/handler/api"
	internalrepo "HockeyQuant/internal/repository"
	"HockeyQuant/internal/service/nhl"
	"HockeyQuant/internal/services/engine"
	"HockeyQuant/internal/usecase"
	"HockeyQuant/pkg/cache"
	pkgch "HockeyQuant/pkg/clickhouse"
	"HockeyQuant/pkg/config"
	pkghttp "HockeyQuant/pkg/http"
	pkgkafka "HockeyQuant/pkg/kafka"
	"HockeyQuant/pkg/logger"
	"HockeyQuant/pkg/metrics"
	"HockeyQuant/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideCache selects the prediction cache backend from config.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Backend == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		addr := fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port)
		c, err := cache.NewRedisCache(ctx,
			cache.WithRedis(addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithKeyPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideNHLClient creates the NHL API client.
func ProvideNHLClient(cfg *config.Config, log *logger.Logger) *nhl.Client {
	return nhl.NewClient(&cfg.NHL, log)
}

// ProvideStatsProvider creates the MoneyPuck stats provider.
func ProvideStatsProvider(client *nhl.Client) *nhl.StatsProvider {
	return nhl.NewStatsProvider(client)
}

// ProvideSnapshotSource assembles per-game team snapshots.
func ProvideSnapshotSource(client *nhl.Client, stats *nhl.StatsProvider, log *logger.Logger) repository.SnapshotSource {
	return nhl.NewSnapshotBuilder(client, stats, log)
}

// ProvideScheduleSource exposes the NHL client as a schedule source.
func ProvideScheduleSource(client *nhl.Client) repository.ScheduleSource {
	return client
}

// ProvideResultSource exposes the NHL client as a final-score source.
func ProvideResultSource(client *nhl.Client) repository.ResultSource {
	return client
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.NewRecorder()
}

// ProvideEngine creates the prediction engine.
func ProvideEngine() *engine.Engine {
	return engine.New()
}

// ProvidePostgresStore opens Postgres and initializes the predictions
// schema.
func ProvidePostgresStore(cfg *config.Config) (*internalrepo.PostgresRecordStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := internalrepo.NewPostgresRecordStore(ctx, &cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("postgres store: %w", err)
	}
	return store, nil
}

// ProvideRecordStore exposes the Postgres store as the record store.
func ProvideRecordStore(store *internalrepo.PostgresRecordStore) repository.RecordStore {
	return store
}

// ProvideAuditSinkImpl creates the ClickHouse audit sink, or nil when
// ClickHouse is disabled.
func ProvideAuditSinkImpl(cfg *config.Config) (*internalrepo.ClickHouseAuditSink, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx, pkgch.Config{
		Addr:        fmt.Sprintf("%s:%d", cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		Database:    cfg.ClickHouse.Database,
		Username:    cfg.ClickHouse.User,
		Password:    cfg.ClickHouse.Password,
		DialTimeout: cfg.ClickHouse.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	sink, err := internalrepo.NewClickHouseAuditSink(ctx, client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return sink, nil
}

// ProvideAuditSink converts the concrete sink into the interface. A
// disabled sink must come through as an untyped nil so callers can
// nil-check it.
func ProvideAuditSink(sink *internalrepo.ClickHouseAuditSink) repository.AuditSink {
	if sink == nil {
		return nil
	}
	return sink
}

// ProvideKafkaProducer creates the Kafka producer, or nil when Kafka
// is disabled.
func ProvideKafkaProducer(cfg *config.Config) *pkgkafka.Producer {
	if !cfg.Kafka.Enabled {
		return nil
	}
	return pkgkafka.NewProducer(pkgkafka.Config{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		RequiredAcks: cfg.Kafka.RequiredAcks,
		Compression:  cfg.Kafka.Compression,
		MaxAttempts:  cfg.Kafka.MaxAttempts,
	})
}

// ProvideEventPublisher wraps the producer into a lifecycle event
// publisher. Same untyped-nil rule as the audit sink.
func ProvideEventPublisher(producer *pkgkafka.Producer) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer)
}

// ProvidePredictionCache creates the canonical prediction cache.
func ProvidePredictionCache(
	source repository.SnapshotSource,
	eng *engine.Engine,
	c cache.Service,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.PredictionCache {
	return usecase.NewPredictionCache(source, eng, c, m, log)
}

// ProvideLockScheduler creates the official-lock scheduler.
func ProvideLockScheduler(
	predictions *usecase.PredictionCache,
	store repository.RecordStore,
	audit repository.AuditSink,
	events repository.EventPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.LockScheduler {
	return usecase.NewLockScheduler(predictions, store, audit, events, m, log)
}

// ProvideAccuracyTracker creates the accuracy tracker.
func ProvideAccuracyTracker(
	store repository.RecordStore,
	results repository.ResultSource,
	events repository.EventPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.AccuracyTracker {
	return usecase.NewAccuracyTracker(store, results, events, m, log)
}

// ProvidePredictionHandler creates the predictions API handler.
func ProvidePredictionHandler(
	predictions *usecase.PredictionCache,
	schedule repository.ScheduleSource,
	log *logger.Logger,
) *api.PredictionHandler {
	return api.NewPredictionHandler(predictions, schedule, log)
}

// ProvideAccuracyHandler creates the accuracy API handler.
func ProvideAccuracyHandler(
	scheduler *usecase.LockScheduler,
	tracker *usecase.AccuracyTracker,
	predictions *usecase.PredictionCache,
	log *logger.Logger,
) *api.AccuracyHandler {
	return api.NewAccuracyHandler(scheduler, tracker, predictions, log)
}

// ProvideHandler groups all route handlers.
func ProvideHandler(pred *api.PredictionHandler, acc *api.AccuracyHandler) pkghttp.Handler {
	return pkghttp.Handlers{pred, acc}
}

// ProvideServer creates the HTTP server.
func ProvideServer(cfg *config.Config, handler pkghttp.Handler) *pkghttp.Server {
	return pkghttp.NewServer(handler,
		pkghttp.WithPort(cfg.Server.Port),
		pkghttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
}

// ProvideApp assembles the application and registers resource closers.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	srv *pkghttp.Server,
	scheduler *usecase.LockScheduler,
	tracker *usecase.AccuracyTracker,
	store *internalrepo.PostgresRecordStore,
	c cache.Service,
	sink *internalrepo.ClickHouseAuditSink,
	producer *pkgkafka.Producer,
) *server.App {
	app := server.NewApp(cfg, log, srv, scheduler, tracker)

	app.AddCloser(store)
	app.AddCloser(c)
	if sink != nil {
		app.AddCloser(sink)
	}
	if producer != nil {
		app.AddCloser(producer)
	}
	return app
}
