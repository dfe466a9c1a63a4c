package factors

import (
	"fmt"
	"strings"

	"HockeyQuant/internal/domain/models"
)

// SpecialTeams weighs the team's power play against the opponent's
// penalty kill and vice versa, each edge scaled by how often the team
// actually plays that situation. Bounded to [0.95, 1.05].
func SpecialTeams(team, opp *models.TeamSnapshot) models.FactorResult {
	if !team.HasSpecialTeams || !opp.HasSpecialTeams {
		return models.FactorResult{Mult: 1.0, Summary: "No ST data"}
	}

	ppEdge := team.PowerPlayPct - (1 - opp.PenaltyKillPct)
	ppImpact := ppEdge * team.PPSituationsPG
	pkEdge := team.PenaltyKillPct - (1 - opp.PowerPlayPct)
	pkImpact := pkEdge * team.PKSituationsPG

	mult := clamp(1.0+(ppImpact+pkImpact)*0.015, 0.95, 1.05)

	var reasons []string
	if team.PowerPlayPct > 0.22 || team.PowerPlayPct < 0.17 {
		reasons = append(reasons, fmt.Sprintf("PP %.0f%%", team.PowerPlayPct*100))
	}
	if opp.PenaltyKillPct < 0.78 || opp.PenaltyKillPct > 0.82 {
		reasons = append(reasons, fmt.Sprintf("vs PK %.0f%%", opp.PenaltyKillPct*100))
	}

	summary := strings.Join(reasons, ", ")
	if summary == "" {
		summary = "Neutral ST"
	}

	return models.FactorResult{Mult: mult, Summary: summary}
}
