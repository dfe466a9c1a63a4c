// Package api exposes the prediction and accuracy endpoints.
package api

import (
	"errors"
	"time"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/internal/domain/repository"
	"HockeyQuant/internal/services/engine"
	"HockeyQuant/internal/usecase"
	pkghttp "HockeyQuant/pkg/http"
	"HockeyQuant/pkg/logger"
	"HockeyQuant/pkg/util"

	"github.com/labstack/echo/v4"
)

// PredictionHandler serves the prediction read and override endpoints.
type PredictionHandler struct {
	predictions *usecase.PredictionCache
	schedule    repository.ScheduleSource
	log         *logger.Logger
	now         func() time.Time
}

func NewPredictionHandler(predictions *usecase.PredictionCache, schedule repository.ScheduleSource, log *logger.Logger) *PredictionHandler {
	return &PredictionHandler{
		predictions: predictions,
		schedule:    schedule,
		log:         log,
		now:         time.Now,
	}
}

func (h *PredictionHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/predictions/:date", h.GetPredictions)
	e.POST("/api/predictions/:date", h.RecomputeWithOverrides)
	e.GET("/api/predictions/:date/status", h.GetStatus)
	e.GET("/api/games/:date", h.GetGames)
}

// gamePredictionView decorates a prediction with its read-time lock state.
type gamePredictionView struct {
	models.GamePrediction
	IsOfficial bool `json:"is_official"`
}

type dailyPredictionsView struct {
	Date        string               `json:"date"`
	ComputedAt  time.Time            `json:"computed_at"`
	NoGames     bool                 `json:"no_games"`
	Predictions []gamePredictionView `json:"predictions"`
}

func (h *PredictionHandler) entryView(entry *models.DailyCacheEntry) dailyPredictionsView {
	now := h.now()
	view := dailyPredictionsView{
		Date:        entry.Date,
		ComputedAt:  entry.ComputedAt,
		NoGames:     entry.NoGames,
		Predictions: make([]gamePredictionView, 0, len(entry.Predictions)),
	}
	for _, p := range entry.Predictions {
		view.Predictions = append(view.Predictions, gamePredictionView{
			GamePrediction: p,
			IsOfficial:     p.IsOfficial(now),
		})
	}
	return view
}

// GetPredictions returns the canonical slate for a date, computing it
// on first request.
func (h *PredictionHandler) GetPredictions(c echo.Context) error {
	date, err := dateParam(c)
	if err != nil {
		return pkghttp.AppErrorResponse(c, err)
	}

	entry, err := h.predictions.GetOrCompute(c.Request().Context(), date)
	if err != nil {
		return h.predictionError(c, err)
	}
	return pkghttp.SuccessResponse(c, h.entryView(entry))
}

// RecomputeWithOverrides computes a one-off slate with goalie overrides.
// The canonical entry is left untouched.
func (h *PredictionHandler) RecomputeWithOverrides(c echo.Context) error {
	date, err := dateParam(c)
	if err != nil {
		return pkghttp.AppErrorResponse(c, err)
	}

	var req models.OverrideRequest
	if details := pkghttp.ReadAndValidateRequest(c, &req); details != nil {
		return pkghttp.BadRequestResponse(c, details)
	}

	entry, err := h.predictions.ComputeWithOverrides(c.Request().Context(), date, req.GoalieOverrides)
	if err != nil {
		var unknown *engine.UnknownGoalieError
		if errors.As(err, &unknown) {
			return pkghttp.AppErrorResponse(c, pkghttp.
				ValidationFieldError("goalie_overrides", unknown.Error()).
				WithParam("team", unknown.Team).
				WithParam("goalie", unknown.Goalie))
		}
		return h.predictionError(c, err)
	}

	view := h.entryView(entry)
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"result":           view,
		"goalie_overrides": req.GoalieOverrides,
	})
}

// GetStatus reports when the canonical entry was computed and when the
// first game starts. A date nobody has requested yet reports
// computed=false instead of triggering a run.
func (h *PredictionHandler) GetStatus(c echo.Context) error {
	date, err := dateParam(c)
	if err != nil {
		return pkghttp.AppErrorResponse(c, err)
	}

	entry, err := h.predictions.Peek(c.Request().Context(), date)
	if err != nil {
		return h.predictionError(c, err)
	}
	if entry == nil {
		return pkghttp.SuccessResponse(c, map[string]interface{}{
			"date":     date,
			"computed": false,
		})
	}

	resp := map[string]interface{}{
		"date":        date,
		"computed":    true,
		"computed_at": entry.ComputedAt,
		"no_games":    entry.NoGames,
	}
	if first := entry.FirstStart(); !first.IsZero() {
		resp["first_game_time"] = first
	}
	return pkghttp.SuccessResponse(c, resp)
}

// GetGames lists the schedule for a date without analysis.
func (h *PredictionHandler) GetGames(c echo.Context) error {
	date, err := dateParam(c)
	if err != nil {
		return pkghttp.AppErrorResponse(c, err)
	}

	games, err := h.schedule.Games(c.Request().Context(), date)
	if err != nil {
		return pkghttp.AppErrorResponse(c, pkghttp.UnavailableError("NHL schedule is temporarily unavailable"))
	}
	if games == nil {
		games = []models.ScheduledGame{}
	}
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"date":  date,
		"games": games,
	})
}

func (h *PredictionHandler) predictionError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrScheduleUnavailable) {
		return pkghttp.AppErrorResponse(c, pkghttp.UnavailableError("NHL schedule is temporarily unavailable"))
	}
	h.log.Error("prediction request failed", logger.Error(err))
	return pkghttp.InternalServerErrorResponse(c)
}

func dateParam(c echo.Context) (string, error) {
	date := c.Param("date")
	if !util.IsValidDate(date) {
		return "", pkghttp.BadRequestErrorf("invalid date %q, want YYYY-MM-DD", date)
	}
	return date, nil
}
