package factors

import (
	"fmt"

	"HockeyQuant/internal/domain/models"
)

// HeadToHead rewards a team that has handled this opponent before.
// Meetings are pre-sampled by the snapshot builder (8 same-division,
// 6 same-conference, 4 otherwise). Needs at least two meetings.
// Bounded to [0.94, 1.06].
func HeadToHead(t *models.TeamSnapshot) models.FactorResult {
	games := t.Meetings
	if len(games) < 2 {
		return models.FactorResult{Mult: 1.0, Summary: "No H2H data"}
	}

	wins := 0
	totalGD := 0
	for _, g := range games {
		if g.Won {
			wins++
		}
		totalGD += g.GoalDiff
	}

	total := float64(len(games))
	winPct := float64(wins) / total
	avgGD := float64(totalGD) / total

	mult := clamp(1.0+(winPct-0.5)*0.08+avgGD*0.01, 0.94, 1.06)
	summary := fmt.Sprintf("%d-%d (%+.1f GD)", wins, len(games)-wins, avgGD)

	return models.FactorResult{Mult: mult, Summary: summary}
}
