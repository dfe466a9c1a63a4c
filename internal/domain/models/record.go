package models

import "time"

// LockedPrediction is one row of the permanent record. Result fields are
// nil until the game is graded.
type LockedPrediction struct {
	GameID     int64     `json:"game_id"`
	GameDate   string    `json:"game_date"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	Pick       string    `json:"pick"`
	Confidence string    `json:"confidence"`
	HomeScore  float64   `json:"home_score"`
	AwayScore  float64   `json:"away_score"`
	Diff       float64   `json:"diff"`
	LockedAt   time.Time `json:"locked_at"`

	HomeFinal    *int    `json:"home_final,omitempty"`
	AwayFinal    *int    `json:"away_final,omitempty"`
	ActualWinner *string `json:"actual_winner,omitempty"`
	Correct      *bool   `json:"correct,omitempty"`
}

// Graded reports whether the row has a filled result.
func (p *LockedPrediction) Graded() bool {
	return p.Correct != nil
}

// FinalScore is the completed-game result for one game.
type FinalScore struct {
	GameID    int64  `json:"game_id"`
	HomeGoals int    `json:"home_goals"`
	AwayGoals int    `json:"away_goals"`
	Winner    string `json:"winner"`
}

// AccuracyFilters narrows which graded rows feed an aggregate. Team
// matches the picked team, not game participation.
type AccuracyFilters struct {
	StartDate  string
	EndDate    string
	Team       string
	Confidence string
}

// TierStats is accuracy within one confidence tier.
type TierStats struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// AggregateStats summarizes graded predictions.
type AggregateStats struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`

	ByConfidence map[string]TierStats `json:"by_confidence"`
}

// TrendPoint is one graded game's position in the accuracy trend.
type TrendPoint struct {
	GameDate string `json:"date"`
	GameID   int64  `json:"game_id"`
	Correct  bool   `json:"correct"`

	RollingAccuracy    float64 `json:"rolling_accuracy"`
	GamesInWindow      int     `json:"games_in_window"`
	CumulativeAccuracy float64 `json:"cumulative_accuracy"`
	CumulativeGames    int     `json:"cumulative_games"`
}
