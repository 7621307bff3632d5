package FitzHughNagumo3D

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/fnknot/InputParameters"
	"github.com/notargets/fnknot/integrator"
	"github.com/notargets/fnknot/tracer"
	"github.com/notargets/fnknot/types"
	"github.com/notargets/fnknot/writefiles"
)

func smallRun() (rp *InputParameters.RunParameters) {
	rp = InputParameters.Defaults()
	rp.Nx, rp.Ny, rp.Nz = 16, 16, 16
	rp.TimeStep = 1. / 32
	rp.TotalTime = 1
	rp.KnotPrintTime = 0.5
	rp.UVPrintTime = 0.5
	rp.InitialSkipTime = 100
	rp.RingRadius = 2
	return
}

func readLines(t *testing.T, fileName string) []string {
	data, err := os.ReadFile(fileName)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestRunSchedule(t *testing.T) {
	dir := t.TempDir()
	c, err := NewSimulation(smallRun(), dir, 2, false)
	require.NoError(t, err)
	require.NoError(t, c.Run())
	// Sampling at T = 0, 0.5 and 1, all inside the skip time
	assert.Equal(t, 3, c.KnotChecks)
	assert.Equal(t, 0, c.Series.Len())
	assert.Nil(t, c.LastCurve)
	for _, name := range []string{
		writefiles.InfoFileName,
		writefiles.PhiFileName,
		"uv_plot0.vtk",
		"uv_plot0.5.vtk",
		"uv_plot1.vtk",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.NoFileExists(t, filepath.Join(dir, "uv_plot1.5.vtk"))
	assert.Equal(t, []string{"Time\tWrithe\tTwist\tLength"}, readLines(t, filepath.Join(dir, writefiles.SeriesFileName)))
	assert.False(t, integrator.Diverged(c.State))
}

func TestSampleRing(t *testing.T) {
	var (
		dir = t.TempDir()
		rp  = InputParameters.Defaults()
		R   = 6.25
	)
	rp.Nx, rp.Ny, rp.Nz = 40, 40, 40
	rp.Wavelength = 5
	rp.InitialSkipTime = 0
	rp.RingRadius = R
	c, err := NewSimulation(rp, dir, 4, false)
	require.NoError(t, err)
	envelope := func(p r3.Vec) float64 {
		d := math.Hypot(p.X, p.Y) - R
		return math.Exp(-(d*d + p.Z*p.Z) / 4)
	}
	c.State.SetFromFunctions(
		func(p r3.Vec) float64 { return (math.Hypot(p.X, p.Y) - R) * envelope(p) },
		func(p r3.Vec) float64 { return p.Z * envelope(p) },
	)
	require.NoError(t, c.Sample(2.5))
	assert.Equal(t, 1, c.KnotChecks)
	require.Equal(t, 1, c.Series.Len())
	require.NotNil(t, c.LastCurve)
	smp, ok := c.Series.Last()
	require.True(t, ok)
	assert.Equal(t, tracer.Closed, smp.Status)
	assert.Equal(t, 2.5, smp.Time)
	assert.InDelta(t, 0, smp.Writhe, 0.05)
	assert.InDelta(t, 0, smp.Twist, 0.05)
	assert.InDelta(t, 2*math.Pi*R, smp.Length, 0.05*2*math.Pi*R)
	assert.FileExists(t, filepath.Join(dir, writefiles.KnotFileName(2.5)))
	require.NoError(t, c.series.Close())
	lines := readLines(t, filepath.Join(dir, writefiles.SeriesFileName))
	require.Equal(t, 2, len(lines))
	assert.True(t, strings.HasPrefix(lines[1], "2.5\t"))
}

func TestRestart(t *testing.T) {
	var (
		dir = t.TempDir()
	)
	first, err := NewSimulation(smallRun(), dir, 2, false)
	require.NoError(t, err)
	require.NoError(t, first.series.Close())
	uvFile, err := writefiles.WriteUV(dir, first.State, 0)
	require.NoError(t, err)
	{ // Phase restart reproduces the seeded fields
		rp := smallRun()
		rp.InitType, rp.RestartFile = "phi", filepath.Join(dir, writefiles.PhiFileName)
		c, err := NewSimulation(rp, t.TempDir(), 1, false)
		require.NoError(t, err)
		assert.Equal(t, first.Phi, c.Phi)
		assert.Equal(t, first.State.U, c.State.U)
		assert.Equal(t, first.State.V, c.State.V)
	}
	{ // uv restart continues the series in place
		rp := smallRun()
		rp.InitType, rp.RestartFile, rp.StartTime = "uv", uvFile, 10
		c, err := NewSimulation(rp, dir, 1, false)
		require.NoError(t, err)
		assert.Nil(t, c.Phi)
		assert.Equal(t, first.State.U, c.State.U)
		assert.Equal(t, first.State.V, c.State.V)
		require.NoError(t, c.Run())
		assert.FileExists(t, filepath.Join(dir, "uv_plot10.5.vtk"))
		assert.Equal(t, 1, len(readLines(t, filepath.Join(dir, writefiles.SeriesFileName))))
	}
	{ // Missing restart file
		rp := smallRun()
		rp.InitType, rp.RestartFile = "uv", filepath.Join(dir, "missing.vtk")
		_, err := NewSimulation(rp, t.TempDir(), 1, false)
		assert.Error(t, err)
	}
}

var squareSTL = `solid square
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 1 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid square
`

func TestSurfaceInitialization(t *testing.T) {
	var (
		dir     = t.TempDir()
		stlFile = filepath.Join(dir, "square.stl")
	)
	require.NoError(t, os.WriteFile(stlFile, []byte(squareSTL), 0644))
	rp := smallRun()
	rp.Nx, rp.Ny, rp.Nz = 8, 8, 8
	rp.InitType, rp.SurfaceFile = "surface", stlFile
	c, err := NewSimulation(rp, dir, 2, false)
	require.NoError(t, err)
	assert.Equal(t, types.FromSurfaceFile, c.Init)
	assert.FileExists(t, filepath.Join(dir, writefiles.PhiFileName))
	for _, phi := range c.Phi {
		assert.True(t, phi > -math.Pi && phi <= math.Pi)
	}
	// Points mirrored through the sheet see opposite solid angles
	var (
		g     = c.Grid
		above = c.Phi[g.Pt(3, 4, 4)]
		below = c.Phi[g.Pt(3, 4, 3)]
	)
	assert.True(t, math.Abs(above) > 0.1)
	assert.InDelta(t, -above, below, 1.e-12)
	{ // Malformed surface
		require.NoError(t, os.WriteFile(stlFile, []byte("solid broken\n  facet normal 0 0\n"), 0644))
		_, err := NewSimulation(rp, t.TempDir(), 1, false)
		assert.Error(t, err)
	}
}

func TestConfiguration(t *testing.T) {
	{ // Invalid parameters stop before any output
		dir := t.TempDir()
		rp := smallRun()
		rp.TimeStep = 0
		_, err := NewSimulation(rp, dir, 1, false)
		assert.ErrorIs(t, err, InputParameters.ErrInvalid)
		assert.NoFileExists(t, filepath.Join(dir, writefiles.InfoFileName))
	}
	{ // Tile backend and forward Euler
		rp := smallRun()
		rp.Backend, rp.TileSize, rp.Scheme = "tile", 4, "euler"
		c, err := NewSimulation(rp, t.TempDir(), 2, false)
		require.NoError(t, err)
		assert.Equal(t, types.TileBackend, c.Backend)
		assert.Equal(t, types.EulerForward.String(), c.Updater.Name())
		require.NoError(t, c.Run())
		assert.False(t, integrator.Diverged(c.State))
	}
}
