package models

// OverrideRequest asks for a recompute of one date with different
// starting goalies. Keys are team abbreviations.
type OverrideRequest struct {
	GoalieOverrides map[string]string `json:"goalie_overrides" validate:"required,min=1"`
}

// TrendRequest carries the rolling window size for the accuracy trend.
type TrendRequest struct {
	Window int `query:"window" default:"10" validate:"gte=1,lte=82"`
}

// StatsRequest filters the aggregate accuracy stats.
type StatsRequest struct {
	StartDate  string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Team       string `query:"team" validate:"omitempty,uppercase,min=2,max=3"`
	Confidence string `query:"confidence" validate:"omitempty,oneof=STRONG MODERATE CLOSE"`
}
