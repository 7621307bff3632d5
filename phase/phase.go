package phase

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/fnknot/grid"
	"github.com/notargets/fnknot/surface"
	"github.com/notargets/fnknot/utils"
)

// SolidAngle sums the signed solid angle contributions of all facets seen
// from p:
//
//	phi(p) = sum_s (r.n_s) A_s / (2 |r|^3),  r = centroid_s - p
//
// The result is not wrapped. Facets whose centroid coincides with p are skipped.
func SolidAngle(p r3.Vec, facets []surface.Facet) (phi float64) {
	for _, f := range facets {
		var (
			r  = r3.Sub(f.Centroid, p)
			rr = r3.Norm(r)
		)
		if rr > 0 {
			phi += r3.Dot(r, f.Normal) * f.Area / (2 * rr * rr * rr)
		}
	}
	return
}

// FromSurface computes the wrapped phase at every grid point. Grid points are
// independent of one another, so the outer axis is split across workers.
func FromSurface(g *grid.Grid, facets []surface.Facet, pm *utils.PartitionMap) (phi []float64) {
	return FromFunction(g, func(p r3.Vec) float64 {
		return SolidAngle(p, facets)
	}, pm)
}

// FromFunction evaluates f at every grid point and wraps the result into
// (-Pi, Pi].
func FromFunction(g *grid.Grid, f func(p r3.Vec) float64, pm *utils.PartitionMap) (phi []float64) {
	phi = make([]float64, g.Size())
	if pm == nil {
		pm = utils.NewPartitionMap(1, g.Nx)
	}
	pm.Run(func(_, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			for j := 0; j < g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					phi[g.Pt(i, j, k)] = utils.WrapPhase(f(g.Position(i, j, k)))
				}
			}
		}
	})
	return
}

// RingVortex is the phase winding once around a circle of the given radius in
// the z = 0 plane, centred on the origin.
func RingVortex(radius float64) func(p r3.Vec) float64 {
	return func(p r3.Vec) float64 {
		rho := math.Hypot(p.X, p.Y)
		return math.Atan2(p.Z, rho-radius)
	}
}

// Winding accumulates the wrapped phase increments around a closed loop of
// sample values. A loop linking the surface boundary once gives +-2 Pi.
func Winding(samples []float64) (w float64) {
	var n = len(samples)
	for i := 0; i < n; i++ {
		w += utils.WrapPhase(samples[(i+1)%n] - samples[i])
	}
	return
}
