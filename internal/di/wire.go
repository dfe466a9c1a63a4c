//go:build wireinject
// +build wireinject

package di

import (
	"HockeyQuant/pkg/config"
	"HockeyQuant/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Upstream sources
		ProvideNHLClient,
		ProvideStatsProvider,
		ProvideSnapshotSource,
		ProvideScheduleSource,
		ProvideResultSource,

		// Storage and messaging
		ProvideCache,
		ProvidePostgresStore,
		ProvideRecordStore,
		ProvideAuditSinkImpl,
		ProvideAuditSink,
		ProvideKafkaProducer,
		ProvideEventPublisher,

		// Core
		ProvideEngine,
		ProvidePredictionCache,
		ProvideLockScheduler,
		ProvideAccuracyTracker,

		// HTTP
		ProvidePredictionHandler,
		ProvideAccuracyHandler,
		ProvideHandler,
		ProvideServer,

		ProvideApp,
	)
	return &server.App{}, nil
}
