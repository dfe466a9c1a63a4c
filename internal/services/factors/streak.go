package factors

import (
	"fmt"
	"strings"

	"HockeyQuant/internal/domain/models"
)

// Streak compares recent form against the season baseline: win
// percentage, goals for and against per game, and active win/loss
// streaks. Bounded to [0.95, 1.05]. Needs at least five completed games.
func Streak(t *models.TeamSnapshot) models.FactorResult {
	recent := t.RecentGames
	if len(recent) < 5 {
		return models.FactorResult{Mult: 1.0, Summary: "Insufficient data"}
	}
	if t.GamesPlayed == 0 {
		return models.FactorResult{Mult: 1.0, Summary: "No season data"}
	}

	wins, losses, otl := 0, 0, 0
	gf, ga := 0, 0
	for _, g := range recent {
		switch {
		case g.Won:
			wins++
		case g.OTLoss:
			otl++
		default:
			losses++
		}
		gf += g.GoalsFor
		ga += g.GoalsAgainst
	}

	n := float64(len(recent))
	recentWinPct := (float64(wins) + float64(otl)*0.5) / n
	recentGFPG := float64(gf) / n
	recentGAPG := float64(ga) / n

	formDiff := recentWinPct - t.WinPct

	mult := 1.0
	var reasons []string

	switch {
	case formDiff >= 0.15:
		mult = 1.05
		reasons = append(reasons, "Hot")
	case formDiff >= 0.10:
		mult = 1.03
		reasons = append(reasons, "Warming")
	case formDiff <= -0.15:
		mult = 0.95
		reasons = append(reasons, "Cold")
	case formDiff <= -0.10:
		mult = 0.97
		reasons = append(reasons, "Cooling")
	}

	mult *= deltaStep(recentGFPG - t.GFPerGame)
	mult *= deltaStep(-(recentGAPG - t.GAPerGame))

	// Active streak, counted back from the most recent game.
	consecW, consecL := 0, 0
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Won {
			if consecL > 0 {
				break
			}
			consecW++
		} else {
			if consecW > 0 {
				break
			}
			consecL++
		}
	}
	if consecW >= 5 {
		mult *= 1.02
		reasons = append(reasons, fmt.Sprintf("%dW streak", consecW))
	} else if consecL >= 5 {
		mult *= 0.98
		reasons = append(reasons, fmt.Sprintf("%dL streak", consecL))
	}

	summary := fmt.Sprintf("%d-%d-%d L%d", wins, losses, otl, len(recent))
	if len(reasons) > 0 {
		summary += " (" + strings.Join(reasons, ", ") + ")"
	}

	return models.FactorResult{Mult: clamp(mult, 0.95, 1.05), Summary: summary}
}

// deltaStep maps a per-game goal delta to a small multiplier step.
// Positive deltas are good for the team.
func deltaStep(d float64) float64 {
	switch {
	case d >= 0.5:
		return 1.02
	case d >= 0.3:
		return 1.01
	case d <= -0.5:
		return 0.98
	case d <= -0.3:
		return 0.99
	default:
		return 1.0
	}
}
