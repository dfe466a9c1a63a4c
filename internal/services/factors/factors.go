// Package factors holds the situational multipliers applied on top of a
// team's base score. Every function here is pure: same snapshot in, same
// multiplier out, neutral (1.0) whenever the input is too thin to judge.
package factors

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
