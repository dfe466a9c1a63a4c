package usecase

import (
	"context"
	"time"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/internal/domain/repository"
	"HockeyQuant/pkg/logger"
	"HockeyQuant/pkg/util"
)

// AccuracyTracker grades locked predictions against final scores and
// serves aggregate accuracy views.
type AccuracyTracker struct {
	store   repository.RecordStore
	results repository.ResultSource
	events  repository.EventPublisher
	metrics repository.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func NewAccuracyTracker(
	store repository.RecordStore,
	results repository.ResultSource,
	events repository.EventPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
) *AccuracyTracker {
	return &AccuracyTracker{
		store:   store,
		results: results,
		events:  events,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// UpdateResults grades every ungraded row on date for which a final
// score exists. Grading fills a row at most once; re-runs are no-ops.
func (a *AccuracyTracker) UpdateResults(ctx context.Context, date string) (int, error) {
	rows, err := a.store.UngradedForDate(ctx, date)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	finals, err := a.results.FinalScores(ctx, date)
	if err != nil {
		a.metrics.UpstreamError("scores")
		return 0, err
	}

	byGame := make(map[int64]models.FinalScore, len(finals))
	for _, f := range finals {
		byGame[f.GameID] = f
	}

	graded := 0
	for _, row := range rows {
		final, ok := byGame[row.GameID]
		if !ok {
			continue
		}
		correct := row.Pick == final.Winner

		updated, err := a.store.FillResult(ctx, row.GameID, final.HomeGoals, final.AwayGoals, final.Winner, correct)
		if err != nil {
			return graded, err
		}
		if !updated {
			continue
		}
		graded++

		if a.events != nil {
			row.HomeFinal = &final.HomeGoals
			row.AwayFinal = &final.AwayGoals
			row.ActualWinner = &final.Winner
			row.Correct = &correct
			if err := a.events.ResultGraded(ctx, row); err != nil {
				a.log.Warn("event publish failed",
					logger.Int("game_id", int(row.GameID)),
					logger.Error(err))
			}
		}
	}

	if graded > 0 {
		a.metrics.Graded(graded)
		a.log.Info("graded predictions",
			logger.String("date", date),
			logger.Int("count", graded))
	}
	return graded, nil
}

// UpdateAllPending grades every past date that still has ungraded rows.
// Returns total graded and the dates that were touched.
func (a *AccuracyTracker) UpdateAllPending(ctx context.Context) (int, []string, error) {
	today := util.DateKey(a.now())
	dates, err := a.store.UngradedDates(ctx, today)
	if err != nil {
		return 0, nil, err
	}

	total := 0
	var touched []string
	for _, date := range dates {
		n, err := a.UpdateResults(ctx, date)
		if err != nil {
			// One bad date should not starve the rest.
			a.log.Warn("grading failed",
				logger.String("date", date),
				logger.Error(err))
			continue
		}
		if n > 0 {
			total += n
			touched = append(touched, date)
		}
	}
	return total, touched, nil
}

// Stats aggregates graded rows under the given filters.
func (a *AccuracyTracker) Stats(ctx context.Context, filters models.AccuracyFilters) (*models.AggregateStats, error) {
	rows, err := a.store.Graded(ctx, filters)
	if err != nil {
		return nil, err
	}

	stats := &models.AggregateStats{
		ByConfidence: make(map[string]models.TierStats),
	}

	for _, row := range rows {
		stats.Total++
		tier := stats.ByConfidence[row.Confidence]
		tier.Total++
		if row.Correct != nil && *row.Correct {
			stats.Correct++
			tier.Correct++
		}
		stats.ByConfidence[row.Confidence] = tier
	}

	if stats.Total > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Total)
	}
	for tier, ts := range stats.ByConfidence {
		if ts.Total > 0 {
			ts.Accuracy = float64(ts.Correct) / float64(ts.Total)
		}
		stats.ByConfidence[tier] = ts
	}

	return stats, nil
}

// Trend returns the per-game accuracy series, oldest first, with a
// cumulative line and a rolling line over the given window. A window
// wider than history makes the two lines identical.
func (a *AccuracyTracker) Trend(ctx context.Context, window int) ([]models.TrendPoint, error) {
	if window < 1 {
		window = 1
	}

	rows, err := a.store.GradedOrdered(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]models.TrendPoint, 0, len(rows))
	correctSoFar := 0
	correctFlags := make([]bool, 0, len(rows))

	for i, row := range rows {
		correct := row.Correct != nil && *row.Correct
		correctFlags = append(correctFlags, correct)
		if correct {
			correctSoFar++
		}

		start := i + 1 - window
		if start < 0 {
			start = 0
		}
		rollingCorrect := 0
		for _, c := range correctFlags[start : i+1] {
			if c {
				rollingCorrect++
			}
		}

		points = append(points, models.TrendPoint{
			GameDate:           row.GameDate,
			GameID:             row.GameID,
			Correct:            correct,
			RollingAccuracy:    float64(rollingCorrect) / float64(i+1-start),
			GamesInWindow:      i + 1 - start,
			CumulativeAccuracy: float64(correctSoFar) / float64(i+1),
			CumulativeGames:    i + 1,
		})
	}

	return points, nil
}
