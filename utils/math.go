package utils

import (
	"math"
)

// WrapPhase folds an angle into (-Pi, Pi] by whole turns.
func WrapPhase(phi float64) float64 {
	if math.IsInf(phi, 0) || math.IsNaN(phi) {
		return phi
	}
	if math.Abs(phi) > 64*math.Pi {
		phi = math.Mod(phi, 2*math.Pi)
	}
	for phi > math.Pi {
		phi -= 2 * math.Pi
	}
	for phi <= -math.Pi {
		phi += 2 * math.Pi
	}
	return phi
}
