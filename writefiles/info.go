package writefiles

import (
	"fmt"
	"io"
	"time"

	"github.com/notargets/fnknot/types"
)

const InfoFileName = "info.txt"

// RunInfo is the metadata written once when a run starts
type RunInfo struct {
	Started    time.Time
	Nx, Ny, Nz int
	TimeStep   float64
	Spacing    float64
	Boundary   types.BoundaryType
	Axis       types.Axis
	Init       types.InitType
	Scheme     types.SchemeType
	Backend    types.BackendType
	KnotFile   string // Surface file for surface initialization
	FieldFile  string // Phase or uv restart file
}

func EncodeInfo(w io.Writer, info RunInfo) (err error) {
	_, err = fmt.Fprintf(w, "run started at\t%s\n\n"+
		"Number of grid points\t%d\t%d\t%d\n"+
		"timestep\t%s\n"+
		"Spacing\t%s\n"+
		"Periodic\t%t\n"+
		"Periodic axis\t%s\n"+
		"initoptions\t%d\n"+
		"scheme\t%s\n"+
		"backend\t%s\n"+
		"knot filename\t%s\n"+
		"B or uv filename\t%s\n",
		info.Started.Format(time.ANSIC),
		info.Nx, info.Ny, info.Nz,
		formatFloat(info.TimeStep),
		formatFloat(info.Spacing),
		info.Boundary == types.Periodic,
		info.Axis,
		info.Init,
		info.Scheme,
		info.Backend,
		info.KnotFile,
		info.FieldFile)
	return
}

func WriteInfo(dir string, info RunInfo) (fileName string, err error) {
	return writeFile(dir, InfoFileName, func(w io.Writer) error { return EncodeInfo(w, info) })
}
