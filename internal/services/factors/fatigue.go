package factors

import (
	"fmt"
	"strings"

	"HockeyQuant/internal/domain/models"
)

const travelLookbackDays = 7

// Fatigue scores schedule wear: rest days, back-to-backs, travel pattern
// over the last week, and long time-zone jumps for road teams.
// Bounded to [0.93, 1.02].
func Fatigue(t *models.TeamSnapshot) models.FactorResult {
	if len(t.RecentGames) == 0 {
		return models.FactorResult{Mult: 1.0, Summary: "No recent data"}
	}

	mult := 1.0
	var reasons []string

	switch {
	case t.RestDays == 0:
		mult *= 0.96
		reasons = append(reasons, "B2B (-4%)")
		if t.LastGameAway && t.IsAway {
			mult *= 0.98
			reasons = append(reasons, "Away B2B (-2%)")
		}
	case t.RestDays == 1:
		mult *= 0.98
		reasons = append(reasons, "1 day rest (-2%)")
	case t.RestDays >= 3:
		mult *= 1.01
		reasons = append(reasons, "Well rested (+1%)")
	}

	// Travel pattern over the last week. RecentGames is most recent
	// last, so the window reads oldest to newest already.
	var week []models.RecentGame
	for _, g := range t.RecentGames {
		if g.DaysAgo >= 1 && g.DaysAgo <= travelLookbackDays {
			week = append(week, g)
		}
	}

	awayCount, homeCount := 0, 0
	for _, g := range week {
		if g.Home {
			homeCount++
		} else {
			awayCount++
		}
	}

	if len(week) >= 3 {
		alternations := 0
		for i := 0; i < len(week)-1; i++ {
			if week[i].Home != week[i+1].Home {
				alternations++
			}
		}
		switch {
		case alternations >= 2 && awayCount >= 2:
			mult *= 0.97
			reasons = append(reasons, "Choppy travel")
		case awayCount >= 3 && alternations <= 1:
			mult *= 0.98
			reasons = append(reasons, "Road trip")
		case awayCount == 2 && homeCount >= 1:
			mult *= 0.99
			reasons = append(reasons, "Mixed schedule")
		}
	}

	if homeCount >= 3 && awayCount == 0 {
		mult *= 1.02
		reasons = append(reasons, "Homestand (+2%)")
	}

	if t.IsAway && abs(t.TimezoneJump) >= 3 {
		mult *= 0.97
		reasons = append(reasons, "Cross-country")
	}

	summary := strings.Join(reasons, ", ")
	if summary == "" {
		summary = fmt.Sprintf("%d days rest", t.RestDays+1)
	}

	return models.FactorResult{Mult: clamp(mult, 0.93, 1.02), Summary: summary}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
