package models

import "time"

// Goalie confirmation status. Expected starters were inferred from
// workload rather than announced.
const (
	GoalieConfirmed = "confirmed"
	GoalieExpected  = "expected"
)

// GoalieSnapshot holds one goaltender's season-to-date numbers.
type GoalieSnapshot struct {
	Name        string  `json:"name"`
	GSAx        float64 `json:"gsax"`
	SavePct     float64 `json:"save_pct"`
	GAA         float64 `json:"gaa"`
	GamesPlayed int     `json:"games_played"`
	Starter     bool    `json:"starter"`
	Status      string  `json:"status,omitempty"`
}

// RecentGame is one completed game, most recent last in TeamSnapshot.RecentGames.
type RecentGame struct {
	Won          bool `json:"won"`
	OTLoss       bool `json:"ot_loss"`
	GoalsFor     int  `json:"goals_for"`
	GoalsAgainst int  `json:"goals_against"`
	Home         bool `json:"home"`
	DaysAgo      int  `json:"days_ago"`
}

// Meeting is one prior head-to-head game from the perspective of the
// snapshot's team.
type Meeting struct {
	Won      bool `json:"won"`
	GoalDiff int  `json:"goal_diff"`
}

// InjuredPlayer is a currently unavailable skater with its importance weight.
type InjuredPlayer struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// TeamSnapshot is everything the scoring engine needs to know about one
// team on one game day. Snapshots are immutable once built.
type TeamSnapshot struct {
	Abbrev     string `json:"abbrev"`
	Name       string `json:"name"`
	Division   string `json:"division"`
	Conference string `json:"conference"`

	// Season-to-date rates. Shares are this team's fraction of the
	// two-team total for the matchup.
	XGFShare     float64 `json:"xgf_share"`
	GFShare      float64 `json:"gf_share"`
	XGAShare     float64 `json:"xga_share"`
	GAShare      float64 `json:"ga_share"`
	PointsPct    float64 `json:"points_pct"`
	WinPct       float64 `json:"win_pct"`
	GamesPlayed  int     `json:"games_played"`
	GFPerGame    float64 `json:"gf_per_game"`
	GAPerGame    float64 `json:"ga_per_game"`

	// Special teams. Percentages are 0..1.
	HasSpecialTeams  bool    `json:"has_special_teams"`
	PowerPlayPct     float64 `json:"power_play_pct"`
	PenaltyKillPct   float64 `json:"penalty_kill_pct"`
	PPSituationsPG   float64 `json:"pp_situations_per_game"`
	PKSituationsPG   float64 `json:"pk_situations_per_game"`

	// Schedule context for the fatigue factor.
	RestDays     int  `json:"rest_days"`
	BackToBack   bool `json:"back_to_back"`
	LastGameAway bool `json:"last_game_away"`
	IsAway       bool `json:"is_away"`
	TimezoneJump int  `json:"timezone_jump"`

	Goalies     []GoalieSnapshot `json:"goalies"`
	RecentGames []RecentGame     `json:"recent_games"`
	Meetings    []Meeting        `json:"meetings"`
	Injuries    []InjuredPlayer  `json:"injuries"`
}

// StartingGoalie returns the confirmed starter, or nil when unknown.
func (t *TeamSnapshot) StartingGoalie() *GoalieSnapshot {
	for i := range t.Goalies {
		if t.Goalies[i].Starter {
			return &t.Goalies[i]
		}
	}
	return nil
}

// GoalieByName returns the named goaltender, or nil when not on the roster.
func (t *TeamSnapshot) GoalieByName(name string) *GoalieSnapshot {
	for i := range t.Goalies {
		if t.Goalies[i].Name == name {
			return &t.Goalies[i]
		}
	}
	return nil
}

// ScheduledGame is a schedule entry before any analysis.
type ScheduledGame struct {
	GameID    int64     `json:"game_id"`
	GameDate  string    `json:"game_date"`
	StartTime time.Time `json:"start_time"`
	Venue     string    `json:"venue,omitempty"`
	Home      string    `json:"home"`
	Away      string    `json:"away"`
	State     string    `json:"state,omitempty"`
}

// Matchup pairs the two team snapshots for one scheduled game.
type Matchup struct {
	GameID    int64        `json:"game_id"`
	GameDate  string       `json:"game_date"`
	StartTime time.Time    `json:"start_time"`
	Venue     string       `json:"venue"`
	Home      TeamSnapshot `json:"home"`
	Away      TeamSnapshot `json:"away"`
}
