package factors

import (
	"fmt"
	"strings"

	"HockeyQuant/internal/domain/models"
)

// Injuries discounts a team by the summed importance of its unavailable
// players. Floor at 0.90 regardless of how long the list gets.
func Injuries(t *models.TeamSnapshot) models.FactorResult {
	if len(t.Injuries) == 0 {
		return models.FactorResult{Mult: 1.0, Summary: "Healthy"}
	}

	total := 0.0
	for _, p := range t.Injuries {
		total += p.Weight
	}

	mult := 1.0 - total*0.0005
	if mult < 0.90 {
		mult = 0.90
	}

	var summary string
	if len(t.Injuries) > 2 {
		summary = fmt.Sprintf("%d out", len(t.Injuries))
	} else {
		names := make([]string, 0, len(t.Injuries))
		for _, p := range t.Injuries {
			names = append(names, p.Name)
		}
		summary = strings.Join(names, ", ")
	}

	return models.FactorResult{Mult: mult, Summary: summary}
}
