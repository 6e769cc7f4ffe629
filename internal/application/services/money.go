package services

import "math"

// roundCents rounds a non-negative currency amount half-up at the cent.
func roundCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// roundTenth rounds to one decimal place, used for displayed FPL
// percentages and scores.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
