package fields

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/fnknot/grid"
	"github.com/notargets/fnknot/types"
)

func newLinearState(t *testing.T, procs int) (s *State) {
	// With h = 1 and even dims the coordinates are exact half integers
	g, err := grid.NewGrid(6, 6, 4, 1, [3]types.BoundaryType{})
	require.NoError(t, err)
	s = NewState(g, procs)
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				n := g.Pt(i, j, k)
				s.U[n], s.V[n] = g.X[i], g.Y[j]
			}
		}
	}
	return
}

func TestSeedFromPhase(t *testing.T) {
	g, err := grid.NewGrid(5, 4, 3, 0.5, [3]types.BoundaryType{})
	require.NoError(t, err)
	for _, procs := range []int{1, 4} {
		s := NewState(g, procs)
		phase := make([]float64, g.Size())
		for n := range phase {
			phase[n] = -math.Pi + 2*math.Pi*float64(n+1)/float64(len(phase))
		}
		require.NoError(t, s.SeedFromPhase(phase))
		for n, p := range phase {
			assert.Equal(t, 2*math.Cos(p)-0.4, s.U[n])
			assert.Equal(t, math.Sin(p)-0.4, s.V[n])
		}
		assert.Error(t, s.SeedFromPhase(phase[1:]))
	}
}

func TestCrossGradient(t *testing.T) {
	for _, procs := range []int{1, 2, 5} {
		s := newLinearState(t, procs)
		g := s.Grid
		seed, maxMag, exists := s.CrossGradient()
		{ // Interior cross gradient of u=x, v=y is the unit z vector
			n := g.Pt(2, 3, 1)
			assert.Equal(t, 1., s.UCVMag[n])
			assert.Equal(t, 1., s.UCV[2][n])
			// Reflecting ends halve the one sided difference
			assert.Equal(t, 0.5, s.UCVMag[g.Pt(0, 3, 1)])
			assert.Equal(t, 0.25, s.UCVMag[g.Pt(0, 0, 1)])
		}
		{ // Ties resolve to the lowest linear index
			assert.Equal(t, 1., maxMag)
			assert.True(t, exists)
			assert.Equal(t, g.Position(1, 1, 0), seed)
		}
		{ // Interpolated values
			c, ok := s.CrossGradientAt(r3.Vec{X: 0.2, Y: -0.3, Z: 0.1})
			assert.True(t, ok)
			assert.InDelta(t, 1, c.Z, 1.e-12)
			assert.InDelta(t, 1, s.MagnitudeAt(r3.Vec{X: 0.2, Y: -0.3, Z: 0.1}), 1.e-12)
			gu, ok := s.GradUAt(r3.Vec{X: 0.2, Y: -0.3, Z: 0.1})
			assert.True(t, ok)
			assert.InDelta(t, 1, gu.X, 1.e-12)
			assert.InDelta(t, 0, gu.Y, 1.e-12)
			gm := s.MagnitudeGradientAt(r3.Vec{X: 0.2, Y: -0.3, Z: 0.1})
			assert.InDelta(t, 0, r3.Norm(gm), 1.e-12)
			_, ok = s.CrossGradientAt(r3.Vec{X: 50})
			assert.False(t, ok)
		}
	}
	{ // Flat fields have no defect
		g, err := grid.NewGrid(4, 4, 4, 1, [3]types.BoundaryType{})
		require.NoError(t, err)
		s := NewState(g, 2)
		_, maxMag, exists := s.CrossGradient()
		assert.Equal(t, 0., maxMag)
		assert.False(t, exists)
	}
}
