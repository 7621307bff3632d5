package writefiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/notargets/fnknot/fields"
	"github.com/notargets/fnknot/grid"
	"github.com/notargets/fnknot/tracer"
)

// FormatTime renders a simulation time the way it appears in file names
func FormatTime(t float64) string {
	return formatFloat(t)
}

// formatFloat is the shortest text that reads back to the same float64
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func UVFileName(t float64) string { return "uv_plot" + FormatTime(t) + ".vtk" }
func KnotFileName(t float64) string { return "knotplot" + FormatTime(t) + ".vtk" }

const PhiFileName = "phi.vtk"

// vtkWriter accumulates the first write error so the format code can run
// straight through
type vtkWriter struct {
	w   *bufio.Writer
	buf []byte
	err error
}

func newVTKWriter(w io.Writer) *vtkWriter {
	return &vtkWriter{w: bufio.NewWriter(w)}
}

func (vw *vtkWriter) printf(format string, args ...interface{}) {
	if vw.err == nil {
		_, vw.err = fmt.Fprintf(vw.w, format, args...)
	}
}

func (vw *vtkWriter) float(f float64, sep byte) {
	if vw.err != nil {
		return
	}
	vw.buf = strconv.AppendFloat(vw.buf[:0], f, 'g', -1, 64)
	vw.buf = append(vw.buf, sep)
	_, vw.err = vw.w.Write(vw.buf)
}

func (vw *vtkWriter) flush() error {
	if vw.err == nil {
		vw.err = vw.w.Flush()
	}
	return vw.err
}

func (vw *vtkWriter) structuredHeader(g *grid.Grid, title string) {
	vw.printf("# vtk DataFile Version 3.0\n%s\nASCII\nDATASET STRUCTURED_POINTS\n", title)
	vw.printf("DIMENSIONS %d %d %d\n", g.Nx, g.Ny, g.Nz)
	vw.printf("ORIGIN %s %s %s\n", formatFloat(g.X[0]), formatFloat(g.Y[0]), formatFloat(g.Z[0]))
	vw.printf("SPACING %s %s %s\n", formatFloat(g.H), formatFloat(g.H), formatFloat(g.H))
	vw.printf("POINT_DATA %d\n", g.Size())
}

// scalars writes one block, x fastest and z slowest
func (vw *vtkWriter) scalars(g *grid.Grid, name string, f []float64) {
	vw.printf("SCALARS %s float\nLOOKUP_TABLE default\n", name)
	for k := 0; k < g.Nz; k++ {
		for j := 0; j < g.Ny; j++ {
			for i := 0; i < g.Nx; i++ {
				var val float64
				if f != nil {
					val = f[g.Pt(i, j, k)]
				}
				vw.float(val, '\n')
			}
		}
	}
}

func EncodePhi(w io.Writer, g *grid.Grid, phi []float64) error {
	vw := newVTKWriter(w)
	vw.structuredHeader(g, "Knot")
	vw.scalars(g, "Phi", phi)
	return vw.flush()
}

// EncodeUV writes u, v and |grad u x grad v|. The magnitude block is zero
// when the cross gradient has not been computed.
func EncodeUV(w io.Writer, s *fields.State) error {
	vw := newVTKWriter(w)
	vw.structuredHeader(s.Grid, "UV fields")
	vw.scalars(s.Grid, "u", s.U)
	vw.scalars(s.Grid, "v", s.V)
	vw.scalars(s.Grid, "ucrossv", s.UCVMag)
	return vw.flush()
}

// EncodeKnot writes the curve as an unstructured grid of line cells joining
// each point to the next, wrapping at the end.
func EncodeKnot(w io.Writer, c *tracer.Curve) error {
	var (
		vw = newVTKWriter(w)
		n  = c.Len()
	)
	vw.printf("# vtk DataFile Version 3.0\nKnot\nASCII\nDATASET UNSTRUCTURED_GRID\n")
	vw.printf("POINTS %d float\n", n)
	for _, p := range c.Points {
		vw.float(p.Position.X, ' ')
		vw.float(p.Position.Y, ' ')
		vw.float(p.Position.Z, '\n')
	}
	vw.printf("\n\nCELLS %d %d\n", n, 3*n)
	for i := 0; i < n; i++ {
		vw.printf("2 %d %d\n", i, c.Next(i))
	}
	vw.printf("\n\nCELL_TYPES %d\n", n)
	for i := 0; i < n; i++ {
		vw.printf("3\n")
	}
	vw.printf("\n\nPOINT_DATA %d\n\n", n)
	vw.printf("\nVECTORS A float\n")
	for _, p := range c.Points {
		vw.float(p.A.X, ' ')
		vw.float(p.A.Y, ' ')
		vw.float(p.A.Z, '\n')
	}
	vw.printf("\n\nCELL_DATA %d\n\n", n)
	for _, cell := range []struct {
		name string
		get  func(p tracer.CurvePoint) float64
	}{
		{"Writhe", func(p tracer.CurvePoint) float64 { return p.Writhe }},
		{"Twist", func(p tracer.CurvePoint) float64 { return p.Twist }},
		{"Length", func(p tracer.CurvePoint) float64 { return p.Length }},
	} {
		vw.printf("\nSCALARS %s float\nLOOKUP_TABLE default\n", cell.name)
		for _, p := range c.Points {
			vw.float(cell.get(p), '\n')
		}
	}
	return vw.flush()
}

func writeFile(dir, name string, encode func(w io.Writer) error) (fileName string, err error) {
	var file *os.File
	fileName = filepath.Join(dir, name)
	if file, err = os.Create(fileName); err != nil {
		return
	}
	if err = encode(file); err != nil {
		file.Close()
		return
	}
	err = file.Close()
	return
}

func WritePhi(dir string, g *grid.Grid, phi []float64) (fileName string, err error) {
	return writeFile(dir, PhiFileName, func(w io.Writer) error { return EncodePhi(w, g, phi) })
}

func WriteUV(dir string, s *fields.State, t float64) (fileName string, err error) {
	return writeFile(dir, UVFileName(t), func(w io.Writer) error { return EncodeUV(w, s) })
}

func WriteKnot(dir string, c *tracer.Curve, t float64) (fileName string, err error) {
	return writeFile(dir, KnotFileName(t), func(w io.Writer) error { return EncodeKnot(w, c) })
}
