package utils

import "math"

// ObservedOrder is the convergence order implied by two error measurements
// taken at step sizes h1 > h2.
func ObservedOrder(h1, e1, h2, e2 float64) float64 {
	return math.Log(e1/e2) / math.Log(h1/h2)
}

// ObservedOrders returns the pairwise orders for a refinement sequence sorted
// from coarsest to finest step.
func ObservedOrders(h, e []float64) (orders []float64) {
	for i := 1; i < len(h) && i < len(e); i++ {
		orders = append(orders, ObservedOrder(h[i-1], e[i-1], h[i], e[i]))
	}
	return
}
