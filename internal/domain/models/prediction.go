package models

import "time"

// Confidence tiers for a pick, keyed off the final score difference.
const (
	ConfidenceStrong   = "STRONG"
	ConfidenceModerate = "MODERATE"
	ConfidenceClose    = "CLOSE"
)

// LockOffset is how long before puck drop a prediction becomes official.
const LockOffset = 15 * time.Minute

// ConfidenceForDiff maps an absolute score difference to a tier.
func ConfidenceForDiff(diff float64) string {
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff >= 10:
		return ConfidenceStrong
	case diff >= 5:
		return ConfidenceModerate
	default:
		return ConfidenceClose
	}
}

// FactorResult is one situational multiplier with a short explanation.
type FactorResult struct {
	Mult    float64 `json:"mult"`
	Summary string  `json:"summary"`
}

// GoalieOption is a bench goaltender surfaced with the analysis so
// clients can name it in an override request.
type GoalieOption struct {
	Name    string  `json:"name"`
	GSAx    float64 `json:"gsax"`
	SavePct float64 `json:"sv_pct"`
	GAA     float64 `json:"gaa"`
}

// TeamAnalysis is the full scoring breakdown for one side of a game.
type TeamAnalysis struct {
	Abbrev    string  `json:"abbrev"`
	BaseScore float64 `json:"base_score"`

	OffQuality   float64       `json:"off_quality"`
	DefQuality   float64       `json:"def_quality"`
	GoalieScore  float64       `json:"goalie_score"`
	GoalieName   string        `json:"goalie_name,omitempty"`
	GoalieStatus string        `json:"goalie_status,omitempty"`
	BackupGoalie *GoalieOption `json:"backup_goalie,omitempty"`

	Fatigue      FactorResult `json:"fatigue"`
	Streak       FactorResult `json:"streak"`
	SpecialTeams FactorResult `json:"special_teams"`
	Injuries     FactorResult `json:"injuries"`
	HeadToHead   FactorResult `json:"head_to_head"`

	FinalScore float64 `json:"final_score"`
}

// GamePrediction is the engine's verdict for one game.
type GamePrediction struct {
	GameID    int64     `json:"game_id"`
	GameDate  string    `json:"game_date"`
	StartTime time.Time `json:"start_time"`
	Venue     string    `json:"venue,omitempty"`

	Home TeamAnalysis `json:"home"`
	Away TeamAnalysis `json:"away"`

	Pick       string   `json:"pick"`
	Confidence string   `json:"confidence"`
	ScoreDiff  float64  `json:"score_diff"`
	KeyFactors []string `json:"key_factors,omitempty"`

	// OfficialAt is StartTime minus LockOffset. After this instant the
	// canonical prediction for the game no longer changes.
	OfficialAt time.Time `json:"official_at"`
}

// IsOfficial reports whether the prediction is frozen as of now.
func (p *GamePrediction) IsOfficial(now time.Time) bool {
	return !now.Before(p.OfficialAt)
}

// DailyCacheEntry is the cached slate of predictions for one date.
type DailyCacheEntry struct {
	Date        string           `json:"date"`
	ComputedAt  time.Time        `json:"computed_at"`
	NoGames     bool             `json:"no_games"`
	Predictions []GamePrediction `json:"predictions"`
}

// FirstStart returns the earliest start time on the slate, or zero when
// the slate is empty.
func (e *DailyCacheEntry) FirstStart() time.Time {
	var first time.Time
	for _, p := range e.Predictions {
		if first.IsZero() || p.StartTime.Before(first) {
			first = p.StartTime
		}
	}
	return first
}
