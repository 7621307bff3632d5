package fields

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/fnknot/grid"
	"github.com/notargets/fnknot/utils"
)

// KnotThreshold is the smallest peak |grad u x grad v| for which a filament
// is considered present.
const KnotThreshold = 0.1

// State is the owned aggregate passed to every phase of the run: the grid,
// the excitation (U) and recovery (V) fields, and the cross gradient derived
// from them.
type State struct {
	Grid       *grid.Grid
	U, V       []float64
	UCV        [3][]float64 // grad u x grad v, recomputed by CrossGradient
	UCVMag     []float64    // |grad u x grad v|
	Partitions *utils.PartitionMap
}

func NewState(g *grid.Grid, procLimit int) (s *State) {
	var N = g.Size()
	s = &State{
		Grid:       g,
		U:          make([]float64, N),
		V:          make([]float64, N),
		Partitions: utils.NewPartitionMap(utils.ParallelDegreeFor(procLimit, g.Nx), g.Nx),
	}
	return
}

// SeedFromPhase sets the initial fields from a phase field:
//
//	u = 2cos(phase) - 0.4, v = sin(phase) - 0.4
func (s *State) SeedFromPhase(phase []float64) (err error) {
	if len(phase) != len(s.U) {
		err = fmt.Errorf("phase field has %d values, grid has %d points", len(phase), len(s.U))
		return
	}
	var nyz = s.Grid.Ny * s.Grid.Nz
	s.Partitions.Run(func(_, iMin, iMax int) {
		for n := iMin * nyz; n < iMax*nyz; n++ {
			s.U[n] = 2*math.Cos(phase[n]) - 0.4
			s.V[n] = math.Sin(phase[n]) - 0.4
		}
	})
	return
}

// SetFromFunctions evaluates u and v directly at every grid point
func (s *State) SetFromFunctions(fu, fv func(p r3.Vec) float64) {
	var g = s.Grid
	s.Partitions.Run(func(_, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			for j := 0; j < g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					var (
						n = g.Pt(i, j, k)
						p = g.Position(i, j, k)
					)
					s.U[n], s.V[n] = fu(p), fv(p)
				}
			}
		}
	})
}

// Gradient is the central difference gradient of f at (i,j,k), using the
// grid's boundary wrap for the neighbors.
func (s *State) Gradient(f []float64, i, j, k int) r3.Vec {
	var (
		g  = s.Grid
		nb = g.Neighbors(i, j, k)
	)
	return r3.Vec{
		X: 0.5 * (f[nb[0]] - f[nb[1]]) / g.H,
		Y: 0.5 * (f[nb[2]] - f[nb[3]]) / g.H,
		Z: 0.5 * (f[nb[4]] - f[nb[5]]) / g.H,
	}
}

type peak struct {
	mag float64
	n   int
}

// CrossGradient computes grad u x grad v and its magnitude at every grid
// point and returns the location of the largest magnitude. exists is false
// when that peak is below KnotThreshold.
func (s *State) CrossGradient() (seed r3.Vec, maxMag float64, exists bool) {
	var (
		g     = s.Grid
		N     = g.Size()
		pm    = s.Partitions
		peaks = make([]peak, pm.ParallelDegree)
	)
	if s.UCVMag == nil {
		for d := 0; d < 3; d++ {
			s.UCV[d] = make([]float64, N)
		}
		s.UCVMag = make([]float64, N)
	}
	pm.Run(func(np, iMin, iMax int) {
		pk := peak{mag: -1, n: -1}
		for i := iMin; i < iMax; i++ {
			for j := 0; j < g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					var (
						n  = g.Pt(i, j, k)
						gu = s.Gradient(s.U, i, j, k)
						gv = s.Gradient(s.V, i, j, k)
						c  = r3.Cross(gu, gv)
					)
					s.UCV[0][n], s.UCV[1][n], s.UCV[2][n] = c.X, c.Y, c.Z
					s.UCVMag[n] = r3.Norm(c)
					if s.UCVMag[n] > pk.mag {
						pk = peak{mag: s.UCVMag[n], n: n}
					}
				}
			}
		}
		peaks[np] = pk
	})
	// Reduce in partition order so ties resolve to the lowest index, as a
	// serial scan would
	best := peak{mag: -1, n: 0}
	for _, pk := range peaks {
		if pk.n >= 0 && pk.mag > best.mag {
			best = pk
		}
	}
	i, j, k := g.IJK(best.n)
	seed = g.Position(i, j, k)
	maxMag = best.mag
	exists = maxMag >= KnotThreshold
	return
}

// CrossGradientAt trilinearly interpolates grad u x grad v at p; ok is false
// when p lies outside the grid.
func (s *State) CrossGradientAt(p r3.Vec) (c r3.Vec, ok bool) {
	var st grid.Stencil8
	if st, ok = s.Grid.Corners(p); !ok {
		return
	}
	for m := 0; m < 8; m++ {
		n, w := st.Index[m], st.Weight[m]
		c.X += w * s.UCV[0][n]
		c.Y += w * s.UCV[1][n]
		c.Z += w * s.UCV[2][n]
	}
	return
}

// MagnitudeAt is the norm of the interpolated cross gradient at p. Points
// outside the grid are extrapolated from the nearest cell.
func (s *State) MagnitudeAt(p r3.Vec) float64 {
	var (
		st, _ = s.Grid.Corners(p)
		c     r3.Vec
	)
	for m := 0; m < 8; m++ {
		n, w := st.Index[m], st.Weight[m]
		c.X += w * s.UCV[0][n]
		c.Y += w * s.UCV[1][n]
		c.Z += w * s.UCV[2][n]
	}
	return r3.Norm(c)
}

// MagnitudeGradientAt interpolates the central difference gradient of
// |grad u x grad v| at p.
func (s *State) MagnitudeGradientAt(p r3.Vec) (gm r3.Vec) {
	var st, _ = s.Grid.Corners(p)
	for m := 0; m < 8; m++ {
		ijk := st.IJK[m]
		gm = r3.Add(gm, r3.Scale(st.Weight[m], s.Gradient(s.UCVMag, ijk[0], ijk[1], ijk[2])))
	}
	return
}

// GradUAt interpolates the central difference gradient of u at p.
func (s *State) GradUAt(p r3.Vec) (gu r3.Vec, ok bool) {
	var st grid.Stencil8
	if st, ok = s.Grid.Corners(p); !ok {
		return
	}
	for m := 0; m < 8; m++ {
		ijk := st.IJK[m]
		gu = r3.Add(gu, r3.Scale(st.Weight[m], s.Gradient(s.U, ijk[0], ijk[1], ijk[2])))
	}
	return
}
