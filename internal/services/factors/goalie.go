package factors

import "HockeyQuant/internal/domain/models"

// GoalieScore folds a goaltender's season numbers into a 0..1 composite.
// GSAx carries half the weight, save percentage 30%, GAA 20%. A nil
// goalie scores a league-average 0.5.
func GoalieScore(g *models.GoalieSnapshot) float64 {
	if g == nil {
		return 0.5
	}
	gsaxNorm := clamp(0.5+g.GSAx/40, 0, 1)
	svNorm := clamp((g.SavePct-0.890)/0.040, 0, 1)
	gaaNorm := clamp(1-(g.GAA-2.0)/2.0, 0, 1)
	return gsaxNorm*0.50 + svNorm*0.30 + gaaNorm*0.20
}

// PlayerImportance scores a skater 0..100 from season points, ice time
// in hours, and expected goals for.
func PlayerImportance(points, toiHours, xgf float64) float64 {
	importance := (min1(points/100)*0.4 + min1(toiHours/30)*0.35 + min1(xgf/60)*0.25) * 100
	if importance > 100 {
		return 100
	}
	return importance
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
