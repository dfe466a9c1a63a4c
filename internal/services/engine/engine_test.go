package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"HockeyQuant/internal/domain/models"
)

func evenSnapshot(abbrev string) models.TeamSnapshot {
	return models.TeamSnapshot{
		Abbrev:    abbrev,
		XGFShare:  0.5,
		GFShare:   0.5,
		XGAShare:  0.5,
		GAShare:   0.5,
		PointsPct: 0.5,
		WinPct:    0.5,
		Goalies: []models.GoalieSnapshot{
			{Name: "Starter " + abbrev, GSAx: 0, SavePct: 0.910, GAA: 3.0, Starter: true},
			{Name: "Backup " + abbrev, GSAx: -2, SavePct: 0.900, GAA: 3.2},
		},
	}
}

func evenMatchup() models.Matchup {
	start := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)
	return models.Matchup{
		GameID:    2026020512,
		GameDate:  "2026-01-15",
		StartTime: start,
		Home:      evenSnapshot("TOR"),
		Away:      evenSnapshot("MTL"),
	}
}

func TestCombineScore(t *testing.T) {
	got := CombineScore(95, 0.98, 1.02)
	want := 95 * 0.98 * 1.02
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("CombineScore = %v, want %v", got, want)
	}
	if CombineScore(80) != 80 {
		t.Fatal("no multipliers should leave base untouched")
	}
}

func TestCombineScoreScenario(t *testing.T) {
	// Team A base 100 with streak 1.05 and injuries 0.95 edges out
	// team B base 95 with fatigue 0.98 and special teams 1.02.
	a := CombineScore(100, 1.00, 1.05, 1.00, 0.95, 1.00)
	b := CombineScore(95, 0.98, 1.00, 1.02, 1.00, 1.00)

	if math.Abs(a-99.75) > 1e-9 {
		t.Fatalf("team A score = %v, want 99.75", a)
	}
	if a <= b {
		t.Fatalf("team A (%v) should beat team B (%v)", a, b)
	}
	if got := models.ConfidenceForDiff(a - b); got != models.ConfidenceClose {
		t.Fatalf("tier = %s, want CLOSE for diff %v", got, a-b)
	}
}

func TestPredictTieGoesToHome(t *testing.T) {
	e := New()
	pred, err := e.Predict(evenMatchup(), nil)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if pred.Pick != "TOR" {
		t.Fatalf("Pick = %s, want home team TOR on identical scores", pred.Pick)
	}
	if pred.Confidence != models.ConfidenceClose {
		t.Fatalf("Confidence = %s, want CLOSE", pred.Confidence)
	}
	if pred.ScoreDiff != 0 {
		t.Fatalf("ScoreDiff = %v, want 0", pred.ScoreDiff)
	}
}

func TestPredictOfficialAtIsFifteenMinutesBeforeStart(t *testing.T) {
	e := New()
	m := evenMatchup()
	pred, err := e.Predict(m, nil)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := m.StartTime.Add(-15 * time.Minute)
	if !pred.OfficialAt.Equal(want) {
		t.Fatalf("OfficialAt = %v, want %v", pred.OfficialAt, want)
	}
	if pred.IsOfficial(want.Add(-time.Second)) {
		t.Fatal("prediction official one second early")
	}
	if !pred.IsOfficial(want) {
		t.Fatal("prediction not official at the lock instant")
	}
}

func TestPredictStrongerTeamWins(t *testing.T) {
	m := evenMatchup()
	m.Away.XGFShare = 0.62
	m.Away.GFShare = 0.60
	m.Away.XGAShare = 0.38
	m.Away.GAShare = 0.40
	m.Away.PointsPct = 0.70
	m.Away.WinPct = 0.68
	m.Home.XGFShare = 0.38
	m.Home.GFShare = 0.40
	m.Home.XGAShare = 0.62
	m.Home.GAShare = 0.60
	m.Home.PointsPct = 0.30
	m.Home.WinPct = 0.32

	pred, err := New().Predict(m, nil)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if pred.Pick != "MTL" {
		t.Fatalf("Pick = %s, want MTL", pred.Pick)
	}
	if pred.Home.FinalScore >= pred.Away.FinalScore {
		t.Fatalf("home %v >= away %v", pred.Home.FinalScore, pred.Away.FinalScore)
	}
}

func TestConfidenceTierBoundaries(t *testing.T) {
	cases := []struct {
		diff float64
		want string
	}{
		{10.0, models.ConfidenceStrong},
		{9.999, models.ConfidenceModerate},
		{5.0, models.ConfidenceModerate},
		{4.999, models.ConfidenceClose},
		{0, models.ConfidenceClose},
		{-12, models.ConfidenceStrong},
	}
	for _, c := range cases {
		if got := models.ConfidenceForDiff(c.diff); got != c.want {
			t.Fatalf("ConfidenceForDiff(%v) = %s, want %s", c.diff, got, c.want)
		}
	}
}

func TestPredictGoalieOverride(t *testing.T) {
	m := evenMatchup()
	pred, err := New().Predict(m, map[string]string{"TOR": "Backup TOR"})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if pred.Home.GoalieName != "Backup TOR" {
		t.Fatalf("GoalieName = %s, want Backup TOR", pred.Home.GoalieName)
	}
	// Weaker goalie must cost the home side the tiebreak.
	if pred.Pick != "MTL" {
		t.Fatalf("Pick = %s, want MTL over downgraded TOR", pred.Pick)
	}
}

func TestPredictSurfacesBackupGoalie(t *testing.T) {
	m := evenMatchup()
	pred, err := New().Predict(m, nil)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	backup := pred.Home.BackupGoalie
	if backup == nil {
		t.Fatal("no backup goalie on the analysis")
	}
	if backup.Name != "Backup TOR" || backup.GSAx != -2 || backup.SavePct != 0.900 || backup.GAA != 3.2 {
		t.Fatalf("backup = %+v", backup)
	}

	// Overriding to the backup swaps the roles.
	pred, err = New().Predict(m, map[string]string{"TOR": "Backup TOR"})
	if err != nil {
		t.Fatalf("Predict with override: %v", err)
	}
	if pred.Home.BackupGoalie == nil || pred.Home.BackupGoalie.Name != "Starter TOR" {
		t.Fatalf("backup after override = %+v, want Starter TOR", pred.Home.BackupGoalie)
	}
}

func TestPredictUnknownGoalieOverride(t *testing.T) {
	m := evenMatchup()
	_, err := New().Predict(m, map[string]string{"MTL": "Nobody"})
	var unknown *UnknownGoalieError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownGoalieError", err)
	}
	if unknown.Team != "MTL" || unknown.Goalie != "Nobody" {
		t.Fatalf("got %+v", unknown)
	}
}

func TestPredictKeyFactorsCapAndOrder(t *testing.T) {
	m := evenMatchup()
	// Load the away side with every penalty there is.
	m.Away.RestDays = 0
	m.Away.IsAway = true
	m.Away.LastGameAway = true
	m.Away.TimezoneJump = 3
	m.Away.RecentGames = []models.RecentGame{
		{DaysAgo: 6, Home: false, GoalsAgainst: 4},
		{DaysAgo: 4, Home: false, GoalsAgainst: 5},
		{DaysAgo: 3, Home: false, GoalsAgainst: 3},
		{DaysAgo: 2, Home: false, GoalsAgainst: 4},
		{DaysAgo: 1, Home: false, GoalsAgainst: 6},
	}
	m.Away.GamesPlayed = 40
	m.Away.WinPct = 0.6
	m.Away.GFPerGame = 3.2
	m.Away.GAPerGame = 2.8
	m.Away.Injuries = []models.InjuredPlayer{
		{Name: "A", Weight: 90},
		{Name: "B", Weight: 85},
		{Name: "C", Weight: 80},
	}
	m.Home.Meetings = []models.Meeting{
		{Won: true, GoalDiff: 4},
		{Won: true, GoalDiff: 3},
		{Won: true, GoalDiff: 2},
	}

	pred, err := New().Predict(m, nil)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(pred.KeyFactors) != 3 {
		t.Fatalf("KeyFactors = %v, want exactly 3", pred.KeyFactors)
	}
	if pred.Pick != "TOR" {
		t.Fatalf("Pick = %s, want TOR", pred.Pick)
	}
}
