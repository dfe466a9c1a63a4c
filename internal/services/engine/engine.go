// Package engine turns a pair of team snapshots into a game prediction.
package engine

import (
	"fmt"
	"math"
	"sort"

	"HockeyQuant/internal/domain/models"
	"HockeyQuant/internal/services/factors"
)

// UnknownGoalieError marks a goalie override that does not match the
// team's roster.
type UnknownGoalieError struct {
	Team   string
	Goalie string
}

func (e *UnknownGoalieError) Error() string {
	return fmt.Sprintf("goalie %q not on %s roster", e.Goalie, e.Team)
}

// Engine computes predictions. It holds no state and is safe for
// concurrent use.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Predict scores one matchup. overrides maps team abbreviations to
// goalie names; an override naming a goalie not on that team's roster
// fails with UnknownGoalieError.
func (e *Engine) Predict(m models.Matchup, overrides map[string]string) (models.GamePrediction, error) {
	homeGoalie, err := resolveGoalie(&m.Home, overrides)
	if err != nil {
		return models.GamePrediction{}, err
	}
	awayGoalie, err := resolveGoalie(&m.Away, overrides)
	if err != nil {
		return models.GamePrediction{}, err
	}

	home := analyzeTeam(&m.Home, &m.Away, homeGoalie)
	away := analyzeTeam(&m.Away, &m.Home, awayGoalie)

	diff := home.FinalScore - away.FinalScore
	pick := home.Abbrev
	if diff < 0 {
		pick = away.Abbrev
	}

	return models.GamePrediction{
		GameID:     m.GameID,
		GameDate:   m.GameDate,
		StartTime:  m.StartTime,
		Venue:      m.Venue,
		Home:       home,
		Away:       away,
		Pick:       pick,
		Confidence: models.ConfidenceForDiff(diff),
		ScoreDiff:  math.Abs(diff),
		KeyFactors: keyFactors(home, away),
		OfficialAt: m.StartTime.Add(-models.LockOffset),
	}, nil
}

func resolveGoalie(t *models.TeamSnapshot, overrides map[string]string) (*models.GoalieSnapshot, error) {
	if name, ok := overrides[t.Abbrev]; ok && name != "" {
		g := t.GoalieByName(name)
		if g == nil {
			return nil, &UnknownGoalieError{Team: t.Abbrev, Goalie: name}
		}
		return g, nil
	}
	return t.StartingGoalie(), nil
}

func analyzeTeam(t, opp *models.TeamSnapshot, goalie *models.GoalieSnapshot) models.TeamAnalysis {
	offQuality := t.XGFShare*0.8 + t.GFShare*0.2
	defQuality := (1-t.XGAShare)*0.8 + (1-t.GAShare)*0.2
	goalieScore := factors.GoalieScore(goalie)

	base := offQuality*40 + defQuality*15 + t.PointsPct*10 + goalieScore*30 + t.WinPct*5

	fatigue := factors.Fatigue(t)
	streak := factors.Streak(t)
	special := factors.SpecialTeams(t, opp)
	injuries := factors.Injuries(t)
	h2h := factors.HeadToHead(t)

	analysis := models.TeamAnalysis{
		Abbrev:       t.Abbrev,
		BaseScore:    base,
		OffQuality:   offQuality,
		DefQuality:   defQuality,
		GoalieScore:  goalieScore,
		Fatigue:      fatigue,
		Streak:       streak,
		SpecialTeams: special,
		Injuries:     injuries,
		HeadToHead:   h2h,
		FinalScore:   CombineScore(base, fatigue.Mult, streak.Mult, special.Mult, injuries.Mult, h2h.Mult),
	}
	if goalie != nil {
		analysis.GoalieName = goalie.Name
		analysis.GoalieStatus = goalie.Status
	}
	if backup := backupGoalie(t, goalie); backup != nil {
		analysis.BackupGoalie = &models.GoalieOption{
			Name:    backup.Name,
			GSAx:    backup.GSAx,
			SavePct: backup.SavePct,
			GAA:     backup.GAA,
		}
	}
	return analysis
}

// backupGoalie is the most used roster goalie other than the one in
// net, nil when the roster has no second option.
func backupGoalie(t *models.TeamSnapshot, inNet *models.GoalieSnapshot) *models.GoalieSnapshot {
	var best *models.GoalieSnapshot
	for i := range t.Goalies {
		g := &t.Goalies[i]
		if inNet != nil && g.Name == inNet.Name {
			continue
		}
		if best == nil || g.GamesPlayed > best.GamesPlayed {
			best = g
		}
	}
	return best
}

// CombineScore multiplies the base score by each situational factor.
func CombineScore(base float64, mults ...float64) float64 {
	score := base
	for _, m := range mults {
		score *= m
	}
	return score
}

type keyFactor struct {
	team    string
	label   string
	mult    float64
	summary string
}

// keyFactors lists the multipliers that actually moved a score, most
// influential first, capped at three.
func keyFactors(home, away models.TeamAnalysis) []string {
	var candidates []keyFactor
	for _, side := range []models.TeamAnalysis{home, away} {
		candidates = append(candidates,
			keyFactor{side.Abbrev, "fatigue", side.Fatigue.Mult, side.Fatigue.Summary},
			keyFactor{side.Abbrev, "form", side.Streak.Mult, side.Streak.Summary},
			keyFactor{side.Abbrev, "special teams", side.SpecialTeams.Mult, side.SpecialTeams.Summary},
			keyFactor{side.Abbrev, "injuries", side.Injuries.Mult, side.Injuries.Summary},
			keyFactor{side.Abbrev, "H2H", side.HeadToHead.Mult, side.HeadToHead.Summary},
		)
	}

	significant := candidates[:0]
	for _, c := range candidates {
		if math.Abs(c.mult-1) > 0.02 {
			significant = append(significant, c)
		}
	}

	sort.SliceStable(significant, func(i, j int) bool {
		return math.Abs(significant[i].mult-1) > math.Abs(significant[j].mult-1)
	})

	if len(significant) > 3 {
		significant = significant[:3]
	}

	out := make([]string, 0, len(significant))
	for _, c := range significant {
		out = append(out, fmt.Sprintf("%s %s: %s", c.team, c.label, c.summary))
	}
	return out
}
