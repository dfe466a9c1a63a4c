package api

import (
	"errors"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/internal/domain/repository"
	"HockeyQuant/internal/usecase"
	pkghttp "HockeyQuant/pkg/http"
	"HockeyQuant/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AccuracyHandler serves the permanent record and accuracy endpoints.
type AccuracyHandler struct {
	scheduler   *usecase.LockScheduler
	tracker     *usecase.AccuracyTracker
	predictions *usecase.PredictionCache
	log         *logger.Logger
}

func NewAccuracyHandler(
	scheduler *usecase.LockScheduler,
	tracker *usecase.AccuracyTracker,
	predictions *usecase.PredictionCache,
	log *logger.Logger,
) *AccuracyHandler {
	return &AccuracyHandler{
		scheduler:   scheduler,
		tracker:     tracker,
		predictions: predictions,
		log:         log,
	}
}

func (h *AccuracyHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/accuracy/store-predictions/:date", h.StorePredictions)
	e.POST("/api/accuracy/update-results/:date", h.UpdateResults)
	e.POST("/api/accuracy/update-all-pending", h.UpdateAllPending)
	e.GET("/api/accuracy/stats", h.GetStats)
	e.GET("/api/accuracy/trend", h.GetTrend)
	e.GET("/api/accuracy/first-game-time/:date", h.GetFirstGameTime)
}

// StorePredictions locks every prediction on the date whose game has
// reached its lock window. Safe to call repeatedly.
func (h *AccuracyHandler) StorePredictions(c echo.Context) error {
	date, err := dateParam(c)
	if err != nil {
		return pkghttp.AppErrorResponse(c, err)
	}

	locked, err := h.scheduler.StorePredictions(c.Request().Context(), date)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleUnavailable) {
			return pkghttp.AppErrorResponse(c, pkghttp.UnavailableError("NHL schedule is temporarily unavailable"))
		}
		h.log.Error("store predictions failed", logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}

	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"date":         date,
		"locked_count": locked,
	})
}

// UpdateResults grades ungraded predictions on the date.
func (h *AccuracyHandler) UpdateResults(c echo.Context) error {
	date, err := dateParam(c)
	if err != nil {
		return pkghttp.AppErrorResponse(c, err)
	}

	graded, err := h.tracker.UpdateResults(c.Request().Context(), date)
	if err != nil {
		h.log.Error("update results failed", logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}

	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"date":          date,
		"updated_count": graded,
	})
}

// UpdateAllPending grades every past date with ungraded predictions.
func (h *AccuracyHandler) UpdateAllPending(c echo.Context) error {
	total, touched, err := h.tracker.UpdateAllPending(c.Request().Context())
	if err != nil {
		h.log.Error("update all pending failed", logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}

	if touched == nil {
		touched = []string{}
	}
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"updated_count": total,
		"dates":         touched,
	})
}

// GetStats aggregates graded predictions under optional filters.
func (h *AccuracyHandler) GetStats(c echo.Context) error {
	var req models.StatsRequest
	if details := pkghttp.ReadAndValidateRequest(c, &req); details != nil {
		return pkghttp.BadRequestResponse(c, details)
	}

	stats, err := h.tracker.Stats(c.Request().Context(), models.AccuracyFilters{
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Team:       req.Team,
		Confidence: req.Confidence,
	})
	if err != nil {
		h.log.Error("stats failed", logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}

	return pkghttp.SuccessResponse(c, stats)
}

// GetTrend returns the per-game accuracy series with rolling and
// cumulative lines.
func (h *AccuracyHandler) GetTrend(c echo.Context) error {
	var req models.TrendRequest
	if details := pkghttp.ReadAndValidateRequest(c, &req); details != nil {
		return pkghttp.BadRequestResponse(c, details)
	}

	points, err := h.tracker.Trend(c.Request().Context(), req.Window)
	if err != nil {
		h.log.Error("trend failed", logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}

	if points == nil {
		points = []models.TrendPoint{}
	}
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"window":      req.Window,
		"total_games": len(points),
		"data_points": points,
	})
}

// GetFirstGameTime reports the earliest start on a date's slate.
func (h *AccuracyHandler) GetFirstGameTime(c echo.Context) error {
	date, err := dateParam(c)
	if err != nil {
		return pkghttp.AppErrorResponse(c, err)
	}

	entry, err := h.predictions.GetOrCompute(c.Request().Context(), date)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleUnavailable) {
			return pkghttp.AppErrorResponse(c, pkghttp.UnavailableError("NHL schedule is temporarily unavailable"))
		}
		h.log.Error("first game time failed", logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}

	resp := map[string]interface{}{
		"date":     date,
		"no_games": entry.NoGames,
	}
	if first := entry.FirstStart(); !first.IsZero() {
		resp["first_game_time"] = first
		resp["lock_time"] = first.Add(-models.LockOffset)
	}
	return pkghttp.SuccessResponse(c, resp)
}
