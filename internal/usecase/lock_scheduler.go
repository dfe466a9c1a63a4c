package usecase

import (
	"context"
	"time"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/internal/domain/repository"
	"HockeyQuant/pkg/logger"
)

// LockScheduler writes predictions into the permanent record once a
// game is within the lock window. The poll is stateless: every run
// re-derives which games are lockable from the canonical entry and the
// clock, and the store's conditional insert makes re-runs harmless.
type LockScheduler struct {
	predictions *PredictionCache
	store       repository.RecordStore
	audit       repository.AuditSink
	events      repository.EventPublisher
	metrics     repository.Metrics
	log         *logger.Logger
	now         func() time.Time
}

func NewLockScheduler(
	predictions *PredictionCache,
	store repository.RecordStore,
	audit repository.AuditSink,
	events repository.EventPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
) *LockScheduler {
	return &LockScheduler{
		predictions: predictions,
		store:       store,
		audit:       audit,
		events:      events,
		metrics:     metrics,
		log:         log,
		now:         time.Now,
	}
}

// StorePredictions locks every prediction on date whose game is at or
// past its official instant. Returns how many rows were newly written.
func (s *LockScheduler) StorePredictions(ctx context.Context, date string) (int, error) {
	entry, err := s.predictions.GetOrCompute(ctx, date)
	if err != nil {
		return 0, err
	}
	if entry.NoGames {
		return 0, nil
	}

	now := s.now()
	locked := 0

	for _, pred := range entry.Predictions {
		if !pred.IsOfficial(now) {
			continue
		}

		row := models.LockedPrediction{
			GameID:     pred.GameID,
			GameDate:   pred.GameDate,
			HomeTeam:   pred.Home.Abbrev,
			AwayTeam:   pred.Away.Abbrev,
			Pick:       pred.Pick,
			Confidence: pred.Confidence,
			HomeScore:  pred.Home.FinalScore,
			AwayScore:  pred.Away.FinalScore,
			Diff:       pred.ScoreDiff,
			LockedAt:   now.UTC(),
		}

		inserted, err := s.store.InsertLocked(ctx, row)
		if err != nil {
			return locked, err
		}
		if !inserted {
			continue
		}
		locked++

		// Audit and event delivery are best-effort. The record row is
		// the source of truth.
		if s.audit != nil {
			if err := s.audit.RecordLocked(ctx, row); err != nil {
				s.log.Warn("audit write failed",
					logger.Int("game_id", int(row.GameID)),
					logger.Error(err))
			}
		}
		if s.events != nil {
			if err := s.events.PredictionLocked(ctx, row); err != nil {
				s.log.Warn("event publish failed",
					logger.Int("game_id", int(row.GameID)),
					logger.Error(err))
			}
		}
	}

	if locked > 0 {
		s.metrics.LocksWritten(locked)
		s.log.Info("locked predictions",
			logger.String("date", date),
			logger.Int("count", locked))
	}
	return locked, nil
}
