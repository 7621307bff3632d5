package writefiles

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/fnknot/fields"
	"github.com/notargets/fnknot/grid"
	"github.com/notargets/fnknot/invariants"
	"github.com/notargets/fnknot/tracer"
	"github.com/notargets/fnknot/types"
)

func TestEncodeUV(t *testing.T) {
	g, err := grid.NewGrid(2, 3, 2, 0.5, [3]types.BoundaryType{})
	require.NoError(t, err)
	s := fields.NewState(g, 1)
	for n := range s.U {
		s.U[n], s.V[n] = float64(n), -float64(n)/4
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeUV(&buf, s))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "# vtk DataFile Version 3.0", lines[0])
	assert.Equal(t, "UV fields", lines[1])
	assert.Equal(t, "DIMENSIONS 2 3 2", lines[4])
	assert.Equal(t, "ORIGIN -0.25 -0.5 -0.25", lines[5])
	assert.Equal(t, "SPACING 0.5 0.5 0.5", lines[6])
	assert.Equal(t, "POINT_DATA 12", lines[7])
	assert.Equal(t, "SCALARS u float", lines[8])
	assert.Equal(t, "LOOKUP_TABLE default", lines[9])
	// x fastest: the second value is point (1,0,0), linear index 6
	assert.Equal(t, "0", lines[10])
	assert.Equal(t, "6", lines[11])
	assert.Equal(t, "SCALARS v float", lines[22])
	assert.Equal(t, "-1.5", lines[25])
	// No cross gradient computed yet
	assert.Equal(t, "SCALARS ucrossv float", lines[36])
	assert.Equal(t, "0", lines[38])
	assert.Equal(t, 51, len(lines))
}

func TestEncodeKnot(t *testing.T) {
	c := &tracer.Curve{}
	for i := 0; i < 3; i++ {
		c.Points = append(c.Points, tracer.CurvePoint{
			Position: r3.Vec{X: float64(i), Y: 1, Z: 2},
			A:        r3.Vec{Z: 1},
			Writhe:   0.125,
			Twist:    -1,
			Length:   float64(i),
		})
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeKnot(&buf, c))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# vtk DataFile Version 3.0\nKnot\nASCII\nDATASET UNSTRUCTURED_GRID\nPOINTS 3 float\n0 1 2\n1 1 2\n2 1 2\n"))
	assert.Contains(t, out, "CELLS 3 9\n2 0 1\n2 1 2\n2 2 0\n")
	assert.Contains(t, out, "CELL_TYPES 3\n3\n3\n3\n")
	assert.Contains(t, out, "VECTORS A float\n0 0 1\n")
	assert.Contains(t, out, "SCALARS Writhe float\nLOOKUP_TABLE default\n0.125\n0.125\n0.125\n")
	assert.Contains(t, out, "SCALARS Twist float\nLOOKUP_TABLE default\n-1\n")
	assert.Contains(t, out, "SCALARS Length float\nLOOKUP_TABLE default\n0\n1\n2\n")
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	g, err := grid.NewGrid(2, 2, 2, 1, [3]types.BoundaryType{})
	require.NoError(t, err)
	{ // File names carry the simulation time
		assert.Equal(t, "uv_plot60.5.vtk", UVFileName(60.5))
		assert.Equal(t, "knotplot50.vtk", KnotFileName(50))
		fileName, err := WritePhi(dir, g, make([]float64, g.Size()))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, PhiFileName), fileName)
		_, err = WritePhi(filepath.Join(dir, "missing"), g, nil)
		assert.Error(t, err)
	}
	{ // Run metadata
		fileName, err := WriteInfo(dir, RunInfo{
			Started:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Nx:       2,
			Ny:       2,
			Nz:       2,
			TimeStep: 0.02,
			Spacing:  1,
			Boundary: types.Periodic,
			Init:     types.FromSurfaceFile,
			KnotFile: "trefoil.stl",
		})
		require.NoError(t, err)
		b, err := os.ReadFile(fileName)
		require.NoError(t, err)
		assert.Contains(t, string(b), "Number of grid points\t2\t2\t2\n")
		assert.Contains(t, string(b), "timestep\t0.02\n")
		assert.Contains(t, string(b), "Periodic\ttrue\n")
		assert.Contains(t, string(b), "initoptions\t1\n")
		assert.Contains(t, string(b), "knot filename\ttrefoil.stl\n")
	}
	{ // The series file starts with a header and grows a row per sample
		sw, err := NewSeriesWriter(dir, false)
		require.NoError(t, err)
		require.NoError(t, sw.Append(invariants.Sample{Time: 60, Writhe: 0.5, Twist: -0.25, Length: 31.5}))
		require.NoError(t, sw.Close())
		sw, err = NewSeriesWriter(dir, true)
		require.NoError(t, err)
		require.NoError(t, sw.Append(invariants.Sample{Time: 61, Writhe: 1, Twist: 2, Length: 3}))
		require.NoError(t, sw.Close())
		b, err := os.ReadFile(filepath.Join(dir, SeriesFileName))
		require.NoError(t, err)
		assert.Equal(t, "Time\tWrithe\tTwist\tLength\n60\t0.5\t-0.25\t31.5\n61\t1\t2\t3\n", string(b))
		// A fresh run truncates
		sw, err = NewSeriesWriter(dir, false)
		require.NoError(t, err)
		require.NoError(t, sw.Close())
		b, err = os.ReadFile(filepath.Join(dir, SeriesFileName))
		require.NoError(t, err)
		assert.Equal(t, "Time\tWrithe\tTwist\tLength\n", string(b))
	}
}
