package integrator

import (
	"errors"
	"fmt"

	"github.com/notargets/fnknot/grid"
	"github.com/notargets/fnknot/types"
	"github.com/notargets/fnknot/utils"
)

// Reaction holds the FitzHugh-Nagumo kinetic constants
type Reaction struct {
	Epsilon, Beta, Gamma float64
}

func DefaultReaction() Reaction {
	return Reaction{Epsilon: 0.3, Beta: 0.7, Gamma: 0.5}
}

// rates is the right hand side at one point given the local laplacian of u:
//
//	du/dt = (u - u^3/3 - v)/epsilon + del2(u)
//	dv/dt = epsilon(u + beta - gamma v)
func (r Reaction) rates(u, v, lap, oneOverEpsilon float64) (du, dv float64) {
	du = oneOverEpsilon*(u-u*u*u/3.-v) + lap
	dv = r.recovery(u, v)
	return
}

// laplacian is the 7 point stencil, scaled once by 1/h^2. Both backends call
// this so their results agree to the bit. Opposite neighbours are summed in
// pairs so the result is unchanged when a mirror swaps them.
func laplacian(c, xp, xm, yp, ym, zp, zm, oneOverHSq float64) float64 {
	return oneOverHSq * ((xp + xm) + (yp + ym) + (zp + zm) - 6.*c)
}

// RHS evaluates du/dt and dv/dt for the whole field. du and dv never alias u
// and v.
type RHS interface {
	Evaluate(u, v, du, dv []float64)
}

// Kinetic is implemented by a right hand side whose dv/dt is the pointwise
// FitzHugh-Nagumo recovery term.
type Kinetic interface {
	Kinetics() Reaction
}

// recovery is dv/dt, which depends on the local u and v only
func (r Reaction) recovery(u, v float64) float64 {
	return r.Epsilon * (u + r.Beta - r.Gamma*v)
}

// StencilKernel evaluates the stencil directly on the shared field arrays,
// split across workers along the x axis.
type StencilKernel struct {
	Grid       *grid.Grid
	Reaction   Reaction
	Partitions *utils.PartitionMap
}

func NewStencilKernel(g *grid.Grid, r Reaction, pm *utils.PartitionMap) *StencilKernel {
	if pm == nil {
		pm = utils.NewPartitionMap(1, g.Nx)
	}
	return &StencilKernel{Grid: g, Reaction: r, Partitions: pm}
}

func (sk *StencilKernel) Kinetics() Reaction { return sk.Reaction }

func (sk *StencilKernel) Evaluate(u, v, du, dv []float64) {
	var (
		g              = sk.Grid
		oneOverEpsilon = 1. / sk.Reaction.Epsilon
	)
	sk.Partitions.Run(func(_, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			for j := 0; j < g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					var (
						n   = g.Pt(i, j, k)
						nb  = g.Neighbors(i, j, k)
						lap = laplacian(u[n], u[nb[0]], u[nb[1]], u[nb[2]], u[nb[3]], u[nb[4]], u[nb[5]], g.OneOverHSq)
					)
					du[n], dv[n] = sk.Reaction.rates(u[n], v[n], lap, oneOverEpsilon)
				}
			}
		}
	})
}

var ErrTileSize = errors.New("grid dimensions must be divisible by the tile size")

// TileKernel moves a cubic tile over the grid. Each tile of u and v plus a
// one point halo is copied into a worker local buffer and the stencil is
// evaluated there, the way an accelerator backend mirrors host data into
// device blocks.
type TileKernel struct {
	Grid       *grid.Grid
	Reaction   Reaction
	TileSize   int
	Partitions *utils.PartitionMap // Over tiles along x
	bufU, bufV [][]float64         // One halo buffer per worker
}

func NewTileKernel(g *grid.Grid, r Reaction, tileSize, procLimit int) (tk *TileKernel, err error) {
	if tileSize < 1 || g.Nx%tileSize != 0 || g.Ny%tileSize != 0 || g.Nz%tileSize != 0 {
		err = fmt.Errorf("%w: grid %d x %d x %d, tile size %d", ErrTileSize, g.Nx, g.Ny, g.Nz, tileSize)
		return
	}
	var (
		ntx  = g.Nx / tileSize
		np   = utils.ParallelDegreeFor(procLimit, ntx)
		side = tileSize + 2
	)
	tk = &TileKernel{
		Grid:       g,
		Reaction:   r,
		TileSize:   tileSize,
		Partitions: utils.NewPartitionMap(np, ntx),
		bufU:       make([][]float64, np),
		bufV:       make([][]float64, np),
	}
	for n := 0; n < np; n++ {
		tk.bufU[n] = make([]float64, side*side*side)
		tk.bufV[n] = make([]float64, side*side*side)
	}
	return
}

func (tk *TileKernel) Kinetics() Reaction { return tk.Reaction }

func (tk *TileKernel) Evaluate(u, v, du, dv []float64) {
	var (
		g              = tk.Grid
		T              = tk.TileSize
		side           = T + 2
		oneOverEpsilon = 1. / tk.Reaction.Epsilon
		lp             = func(a, b, c int) int { return (a+1)*side*side + (b+1)*side + c + 1 }
	)
	tk.Partitions.Run(func(np, tMin, tMax int) {
		bu, bv := tk.bufU[np], tk.bufV[np]
		for ti := tMin; ti < tMax; ti++ {
			for tj := 0; tj < g.Ny/T; tj++ {
				for tl := 0; tl < g.Nz/T; tl++ {
					i0, j0, k0 := ti*T, tj*T, tl*T
					// Load the tile and its halo, wrapping at the domain edges
					for a := -1; a <= T; a++ {
						i := g.Inc(types.X, i0, a)
						for b := -1; b <= T; b++ {
							j := g.Inc(types.Y, j0, b)
							for c := -1; c <= T; c++ {
								var (
									k = g.Inc(types.Z, k0, c)
									n = g.Pt(i, j, k)
									m = lp(a, b, c)
								)
								bu[m], bv[m] = u[n], v[n]
							}
						}
					}
					for a := 0; a < T; a++ {
						for b := 0; b < T; b++ {
							for c := 0; c < T; c++ {
								var (
									m   = lp(a, b, c)
									lap = laplacian(bu[m],
										bu[lp(a+1, b, c)], bu[lp(a-1, b, c)],
										bu[lp(a, b+1, c)], bu[lp(a, b-1, c)],
										bu[lp(a, b, c+1)], bu[lp(a, b, c-1)], g.OneOverHSq)
									n = g.Pt(i0+a, j0+b, k0+c)
								)
								du[n], dv[n] = tk.Reaction.rates(bu[m], bv[m], lap, oneOverEpsilon)
							}
						}
					}
				}
			}
		}
	})
}

// NewKernel picks the stencil backend, once, at configuration time.
func NewKernel(backend types.BackendType, g *grid.Grid, r Reaction, pm *utils.PartitionMap, tileSize, procLimit int) (rhs RHS, err error) {
	switch backend {
	case types.StencilBackend:
		rhs = NewStencilKernel(g, r, pm)
	case types.TileBackend:
		var tk *TileKernel
		if tk, err = NewTileKernel(g, r, tileSize, procLimit); err != nil {
			return
		}
		rhs = tk
	default:
		err = fmt.Errorf("unknown backend %v", backend)
	}
	return
}
