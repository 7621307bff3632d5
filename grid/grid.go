package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/fnknot/types"
)

// Grid is a uniform, cell centred 3D grid. It is immutable after construction
// and is the only place linear indices are formed.
//
// Points are stored with X slowest and Z fastest varying:
//
//	n = i*Ny*Nz + j*Nz + k
type Grid struct {
	Nx, Ny, Nz int
	H          float64
	OneOverHSq float64
	Boundary   [3]types.BoundaryType
	X, Y, Z    []float64 // Coordinates of the grid points along each axis
}

func NewGrid(nx, ny, nz int, h float64, boundary [3]types.BoundaryType) (g *Grid, err error) {
	if nx < 1 || ny < 1 || nz < 1 {
		err = fmt.Errorf("grid dimensions must be positive, have %d x %d x %d", nx, ny, nz)
		return
	}
	if !(h > 0) {
		err = fmt.Errorf("grid spacing must be positive, have %v", h)
		return
	}
	g = &Grid{
		Nx:         nx,
		Ny:         ny,
		Nz:         nz,
		H:          h,
		OneOverHSq: 1. / (h * h),
		Boundary:   boundary,
		X:          centredCoordinates(nx, h),
		Y:          centredCoordinates(ny, h),
		Z:          centredCoordinates(nz, h),
	}
	return
}

// NewGridWithAxis builds a grid whose boundary behavior is reflecting on every
// axis except the selected one, which takes the given boundary type.
func NewGridWithAxis(nx, ny, nz int, h float64, bt types.BoundaryType, axis types.Axis) (*Grid, error) {
	var boundary [3]types.BoundaryType
	boundary[axis] = bt
	return NewGrid(nx, ny, nz, h, boundary)
}

func centredCoordinates(n int, h float64) (x []float64) {
	x = make([]float64, n)
	for i := range x {
		x[i] = (float64(i) + 0.5 - float64(n)/2.) * h
	}
	return
}

func (g *Grid) Dims() [3]int { return [3]int{g.Nx, g.Ny, g.Nz} }

func (g *Grid) Size() int { return g.Nx * g.Ny * g.Nz }

// Pt converts i,j,k to a single index
func (g *Grid) Pt(i, j, k int) int {
	return i*g.Ny*g.Nz + j*g.Nz + k
}

// IJK is the inverse of Pt
func (g *Grid) IJK(n int) (i, j, k int) {
	var nyz = g.Ny * g.Nz
	i = n / nyz
	j = (n - i*nyz) / g.Nz
	k = n - i*nyz - j*g.Nz
	return
}

// Origin is the position of grid point (0,0,0)
func (g *Grid) Origin() r3.Vec {
	return r3.Vec{X: g.X[0], Y: g.Y[0], Z: g.Z[0]}
}

func (g *Grid) Position(i, j, k int) r3.Vec {
	return r3.Vec{X: g.X[i], Y: g.Y[j], Z: g.Z[k]}
}

func (g *Grid) Extent() r3.Vec {
	return r3.Vec{X: float64(g.Nx) * g.H, Y: float64(g.Ny) * g.H, Z: float64(g.Nz) * g.H}
}

func (g *Grid) dim(axis types.Axis) int {
	switch axis {
	case types.X:
		return g.Nx
	case types.Y:
		return g.Ny
	}
	return g.Nz
}

// Inc steps index i by d along axis, wrapping according to that axis's
// boundary type.
func (g *Grid) Inc(axis types.Axis, i, d int) int {
	if g.Boundary[axis] == types.Periodic {
		return Incp(i, d, g.dim(axis))
	}
	return Incw(i, d, g.dim(axis))
}

// Incw is the reflecting wrap: an index stepping past either end is mirrored
// back into the domain, so -1 maps to 0 and n maps to n-1.
func Incw(i, d, n int) int {
	j := i + d
	for j < 0 || j > n-1 {
		if j < 0 {
			j = -j - 1
		} else {
			j = 2*n - j - 1
		}
	}
	return j
}

// Incp is the periodic wrap, -1 maps to n-1.
func Incp(i, d, n int) int {
	return ((i+d)%n + n) % n
}

// Neighbors returns the six face neighbors of (i,j,k) as linear indices in the
// order +x, -x, +y, -y, +z, -z.
func (g *Grid) Neighbors(i, j, k int) (nb [6]int) {
	var (
		ip, im = g.Inc(types.X, i, 1), g.Inc(types.X, i, -1)
		jp, jm = g.Inc(types.Y, j, 1), g.Inc(types.Y, j, -1)
		kp, km = g.Inc(types.Z, k, 1), g.Inc(types.Z, k, -1)
	)
	nb[0], nb[1] = g.Pt(ip, j, k), g.Pt(im, j, k)
	nb[2], nb[3] = g.Pt(i, jp, k), g.Pt(i, jm, k)
	nb[4], nb[5] = g.Pt(i, j, kp), g.Pt(i, j, km)
	return
}

// Locate finds the grid point "below" p along each axis and the fractional
// offset of p from it in units of h. ok is false when any of the indices is
// outside [0, N-1].
func (g *Grid) Locate(p r3.Vec) (ijk [3]int, frac r3.Vec, ok bool) {
	var (
		fx = p.X/g.H - 0.5 + float64(g.Nx)/2.
		fy = p.Y/g.H - 0.5 + float64(g.Ny)/2.
		fz = p.Z/g.H - 0.5 + float64(g.Nz)/2.
	)
	if math.IsNaN(fx) || math.IsNaN(fy) || math.IsNaN(fz) {
		return
	}
	ijk = [3]int{int(math.Floor(fx)), int(math.Floor(fy)), int(math.Floor(fz))}
	frac = r3.Vec{X: fx - float64(ijk[0]), Y: fy - float64(ijk[1]), Z: fz - float64(ijk[2])}
	ok = ijk[0] >= 0 && ijk[1] >= 0 && ijk[2] >= 0 &&
		ijk[0] <= g.Nx-1 && ijk[1] <= g.Ny-1 && ijk[2] <= g.Nz-1
	return
}

// Stencil8 holds the 8 enclosing grid points of a location and their
// trilinear weights.
type Stencil8 struct {
	Index  [8]int
	Weight [8]float64
	IJK    [8][3]int
}

// Corners returns the trilinear stencil around p. Outside the grid the base
// point is clamped to the nearest valid index and the weights extrapolate; ok
// reports whether p was inside.
func (g *Grid) Corners(p r3.Vec) (st Stencil8, ok bool) {
	var (
		ijk, frac, inside = g.Locate(p)
		dims              = g.Dims()
	)
	ok = inside
	if !inside {
		f := [3]float64{
			p.X/g.H - 0.5 + float64(g.Nx)/2.,
			p.Y/g.H - 0.5 + float64(g.Ny)/2.,
			p.Z/g.H - 0.5 + float64(g.Nz)/2.,
		}
		for d := 0; d < 3; d++ {
			if math.IsNaN(f[d]) {
				f[d] = 0
			}
			ijk[d] = int(math.Floor(f[d]))
			if ijk[d] < 0 {
				ijk[d] = 0
			}
			if ijk[d] > dims[d]-1 {
				ijk[d] = dims[d] - 1
			}
		}
		frac = r3.Vec{X: f[0] - float64(ijk[0]), Y: f[1] - float64(ijk[1]), Z: f[2] - float64(ijk[2])}
	}
	for m := 0; m < 8; m++ {
		var (
			iinc, jinc, kinc = m % 2, (m / 2) % 2, (m / 4) % 2
			i                = g.Inc(types.X, ijk[0], iinc)
			j                = g.Inc(types.Y, ijk[1], jinc)
			k                = g.Inc(types.Z, ijk[2], kinc)
		)
		st.IJK[m] = [3]int{i, j, k}
		st.Index[m] = g.Pt(i, j, k)
		st.Weight[m] = weight(iinc, frac.X) * weight(jinc, frac.Y) * weight(kinc, frac.Z)
	}
	return
}

func weight(inc int, d float64) float64 {
	if inc == 0 {
		return 1 - d
	}
	return d
}
