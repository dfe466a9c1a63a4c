package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/internal/domain/repository"
	"HockeyQuant/internal/services/engine"
	"HockeyQuant/pkg/cache"
	"HockeyQuant/pkg/logger"

	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "predictions:"

// PredictionCache serves the canonical slate of predictions per date.
// Concurrent first requests for the same date collapse into a single
// computation; cached entries never expire server-side.
type PredictionCache struct {
	source  repository.SnapshotSource
	engine  *engine.Engine
	cache   cache.Service
	metrics repository.Metrics
	log     *logger.Logger
	now     func() time.Time

	group singleflight.Group
}

func NewPredictionCache(
	source repository.SnapshotSource,
	eng *engine.Engine,
	c cache.Service,
	metrics repository.Metrics,
	log *logger.Logger,
) *PredictionCache {
	return &PredictionCache{
		source:  source,
		engine:  eng,
		cache:   c,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// GetOrCompute returns the canonical entry for date, computing and
// caching it on first request.
func (p *PredictionCache) GetOrCompute(ctx context.Context, date string) (*models.DailyCacheEntry, error) {
	var entry models.DailyCacheEntry
	err := p.cache.Get(ctx, cacheKeyPrefix+date, &entry)
	if err == nil {
		p.metrics.CacheHit()
		return &entry, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, fmt.Errorf("cache read: %w", err)
	}
	p.metrics.CacheMiss()

	v, err, _ := p.group.Do(date, func() (interface{}, error) {
		// A concurrent caller may have filled the cache while this
		// call waited on the flight group.
		var cached models.DailyCacheEntry
		if err := p.cache.Get(ctx, cacheKeyPrefix+date, &cached); err == nil {
			return &cached, nil
		}
		return p.computeAndStore(ctx, date)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DailyCacheEntry), nil
}

// Recompute replaces the canonical entry for date with a fresh run.
func (p *PredictionCache) Recompute(ctx context.Context, date string) (*models.DailyCacheEntry, error) {
	v, err, _ := p.group.Do("recompute:"+date, func() (interface{}, error) {
		return p.computeAndStore(ctx, date)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DailyCacheEntry), nil
}

// ComputeWithOverrides runs a one-off computation with goalie overrides.
// The result is never stored as the canonical entry.
func (p *PredictionCache) ComputeWithOverrides(ctx context.Context, date string, overrides map[string]string) (*models.DailyCacheEntry, error) {
	return p.compute(ctx, date, overrides, "override")
}

// Peek returns the canonical entry for date when one exists, without
// triggering a computation. A nil entry with nil error means the date
// has not been computed yet.
func (p *PredictionCache) Peek(ctx context.Context, date string) (*models.DailyCacheEntry, error) {
	var entry models.DailyCacheEntry
	err := p.cache.Get(ctx, cacheKeyPrefix+date, &entry)
	if err == nil {
		return &entry, nil
	}
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	return nil, fmt.Errorf("cache read: %w", err)
}

func (p *PredictionCache) computeAndStore(ctx context.Context, date string) (*models.DailyCacheEntry, error) {
	entry, err := p.compute(ctx, date, nil, "canonical")
	if err != nil {
		return nil, err
	}
	// ttl 0: the canonical entry for a date never expires.
	if err := p.cache.Set(ctx, cacheKeyPrefix+date, entry, 0); err != nil {
		return nil, fmt.Errorf("cache write: %w", err)
	}
	return entry, nil
}

func (p *PredictionCache) compute(ctx context.Context, date string, overrides map[string]string, trigger string) (*models.DailyCacheEntry, error) {
	started := p.now()

	matchups, err := p.source.Matchups(ctx, date)
	if err != nil {
		p.metrics.UpstreamError("schedule")
		return nil, fmt.Errorf("%w: %v", repository.ErrScheduleUnavailable, err)
	}

	entry := &models.DailyCacheEntry{
		Date:       date,
		ComputedAt: p.now().UTC(),
		NoGames:    len(matchups) == 0,
	}

	for _, m := range matchups {
		pred, err := p.engine.Predict(m, overrides)
		if err != nil {
			var unknown *engine.UnknownGoalieError
			if errors.As(err, &unknown) {
				return nil, err
			}
			p.log.Warn("skipping game",
				logger.Int("game_id", int(m.GameID)),
				logger.Error(err))
			continue
		}
		entry.Predictions = append(entry.Predictions, pred)
	}

	p.metrics.ComputeObserved(trigger, p.now().Sub(started))
	p.log.Info("computed predictions",
		logger.String("date", date),
		logger.String("trigger", trigger),
		logger.Int("games", len(entry.Predictions)))

	return entry, nil
}
