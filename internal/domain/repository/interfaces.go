package repository

import (
	"context"
	"errors"
	"time"

	"HockeyQuant/internal/domain/models"
)

// ErrScheduleUnavailable means the upstream schedule could not be
// fetched. Distinct from an empty slate, which is a valid answer.
var ErrScheduleUnavailable = errors.New("schedule unavailable")

// SnapshotSource builds scoring-ready matchups for a date.
type SnapshotSource interface {
	// Matchups returns one Matchup per scheduled game. An empty slice
	// with nil error means no games that day.
	Matchups(ctx context.Context, date string) ([]models.Matchup, error)
}

// ScheduleSource lists scheduled games without building snapshots.
type ScheduleSource interface {
	Games(ctx context.Context, date string) ([]models.ScheduledGame, error)
}

// ResultSource fetches final scores for completed games.
type ResultSource interface {
	FinalScores(ctx context.Context, date string) ([]models.FinalScore, error)
}

// RecordStore is the permanent prediction record.
type RecordStore interface {
	// InsertLocked writes the row unless one already exists for the
	// game. Returns true when the row was inserted.
	InsertLocked(ctx context.Context, p models.LockedPrediction) (bool, error)

	// FillResult grades a row, once. Rows already graded are left
	// untouched. Returns true when the row was updated.
	FillResult(ctx context.Context, gameID int64, homeGoals, awayGoals int, winner string, correct bool) (bool, error)

	UngradedForDate(ctx context.Context, date string) ([]models.LockedPrediction, error)

	// UngradedDates lists distinct past dates that still carry
	// ungraded rows, oldest first.
	UngradedDates(ctx context.Context, before string) ([]string, error)

	Graded(ctx context.Context, filters models.AccuracyFilters) ([]models.LockedPrediction, error)

	// GradedOrdered returns all graded rows ordered by game date then
	// game id, oldest first. This is the trend's fixed ordering.
	GradedOrdered(ctx context.Context) ([]models.LockedPrediction, error)
}

// AuditSink receives an append-only copy of locked predictions.
type AuditSink interface {
	RecordLocked(ctx context.Context, p models.LockedPrediction) error
}

// EventPublisher emits domain events for downstream consumers.
type EventPublisher interface {
	PredictionLocked(ctx context.Context, p models.LockedPrediction) error
	ResultGraded(ctx context.Context, p models.LockedPrediction) error
}

// Metrics is the subset of instrumentation the usecases touch.
type Metrics interface {
	ComputeObserved(trigger string, d time.Duration)
	CacheHit()
	CacheMiss()
	LocksWritten(n int)
	Graded(n int)
	UpstreamError(source string)
}
