package InputParameters

import (
	"errors"
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/fnknot/types"
)

var ErrInvalid = errors.New("invalid run parameters")

// Parameters obtained from the YAML input file
type RunParameters struct {
	Title           string  `yaml:"Title"`
	Nx              int     `yaml:"Nx"`
	Ny              int     `yaml:"Ny"`
	Nz              int     `yaml:"Nz"`
	GridSpacing     float64 `yaml:"GridSpacing"`
	TimeStep        float64 `yaml:"TimeStep"`
	TotalTime       float64 `yaml:"TotalTime"` // Simulated time covered by this run
	StartTime       float64 `yaml:"StartTime"` // Non zero when continuing from a uv file
	UVPrintTime     float64 `yaml:"UVPrintTime"`
	KnotPrintTime   float64 `yaml:"KnotPrintTime"`
	InitialSkipTime float64 `yaml:"InitialSkipTime"` // No curve tracing before this time
	Boundary        string  `yaml:"Boundary"`
	PeriodicAxis    string  `yaml:"PeriodicAxis"`
	Epsilon         float64 `yaml:"Epsilon"`
	Beta            float64 `yaml:"Beta"`
	Gamma           float64 `yaml:"Gamma"`
	Wavelength      float64 `yaml:"Wavelength"`
	Scheme          string  `yaml:"Scheme"`
	Backend         string  `yaml:"Backend"`
	TileSize        int     `yaml:"TileSize"`
	InitType        string  `yaml:"InitType"`
	SurfaceFile     string  `yaml:"SurfaceFile"`
	RestartFile     string  `yaml:"RestartFile"`
	RingRadius      float64 `yaml:"RingRadius"`
	PreserveRatios  bool    `yaml:"PreserveRatios"`
	ParallelDegree  int     `yaml:"ParallelDegree"` // Zero means one worker per CPU
	OutputDir       string  `yaml:"OutputDir"`
}

// Defaults are the values used for anything the input file leaves out
func Defaults() (rp *RunParameters) {
	rp = &RunParameters{
		Title:           "FitzHugh-Nagumo knot",
		Nx:              100,
		Ny:              100,
		Nz:              100,
		GridSpacing:     0.5,
		TimeStep:        0.02,
		TotalTime:       400,
		UVPrintTime:     100,
		KnotPrintTime:   1,
		InitialSkipTime: 50,
		Boundary:        "reflecting",
		PeriodicAxis:    "z",
		Epsilon:         0.3,
		Beta:            0.7,
		Gamma:           0.5,
		Wavelength:      21.3,
		Scheme:          "rk4",
		Backend:         "stencil",
		TileSize:        4,
		InitType:        "function",
		RingRadius:      10,
		OutputDir:       ".",
	}
	return
}

// Parse overlays the YAML onto the receiver, keys missing from data keep
// their current values
func (rp *RunParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, rp)
}

// Options converts the string selections to their types
func (rp *RunParameters) Options() (bt types.BoundaryType, axis types.Axis, scheme types.SchemeType,
	backend types.BackendType, init types.InitType, err error) {
	if bt, err = types.NewBoundaryType(rp.Boundary); err != nil {
		return
	}
	if axis, err = types.NewAxis(rp.PeriodicAxis); err != nil {
		return
	}
	if scheme, err = types.NewSchemeType(rp.Scheme); err != nil {
		return
	}
	if backend, err = types.NewBackendType(rp.Backend); err != nil {
		return
	}
	init, err = types.NewInitType(rp.InitType)
	return
}

func (rp *RunParameters) Validate() (err error) {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}
	switch {
	case rp.Nx < 1 || rp.Ny < 1 || rp.Nz < 1:
		return invalid("grid dimensions must be positive, have %d x %d x %d", rp.Nx, rp.Ny, rp.Nz)
	case !(rp.GridSpacing > 0):
		return invalid("GridSpacing must be positive, have %v", rp.GridSpacing)
	case !(rp.TimeStep > 0):
		return invalid("TimeStep must be positive, have %v", rp.TimeStep)
	case rp.TotalTime < 0:
		return invalid("TotalTime must not be negative, have %v", rp.TotalTime)
	case !(rp.UVPrintTime > 0) || !(rp.KnotPrintTime > 0):
		return invalid("print intervals must be positive, have UVPrintTime %v, KnotPrintTime %v",
			rp.UVPrintTime, rp.KnotPrintTime)
	case !(rp.Epsilon > 0):
		return invalid("Epsilon must be positive, have %v", rp.Epsilon)
	case !(rp.Wavelength > 0):
		return invalid("Wavelength must be positive, have %v", rp.Wavelength)
	}
	var (
		init    types.InitType
		backend types.BackendType
	)
	if _, _, _, backend, init, err = rp.Options(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch init {
	case types.FromSurfaceFile:
		if len(rp.SurfaceFile) == 0 {
			return invalid("InitType %s needs a SurfaceFile", rp.InitType)
		}
	case types.FromPhiFile, types.FromUVFile:
		if len(rp.RestartFile) == 0 {
			return invalid("InitType %s needs a RestartFile", rp.InitType)
		}
	case types.FromFunction:
		if !(rp.RingRadius > 0) {
			return invalid("RingRadius must be positive, have %v", rp.RingRadius)
		}
	}
	if backend == types.TileBackend {
		if rp.TileSize < 1 || rp.Nx%rp.TileSize != 0 || rp.Ny%rp.TileSize != 0 || rp.Nz%rp.TileSize != 0 {
			return invalid("grid %d x %d x %d is not divisible by TileSize %d", rp.Nx, rp.Ny, rp.Nz, rp.TileSize)
		}
	}
	return
}

func (rp *RunParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("[%d, %d, %d]\t\t= Grid Dimensions\n", rp.Nx, rp.Ny, rp.Nz)
	fmt.Printf("%8.5f\t\t= Grid Spacing\n", rp.GridSpacing)
	fmt.Printf("%8.5f\t\t= Time Step\n", rp.TimeStep)
	fmt.Printf("%8.5f\t\t= Start Time\n", rp.StartTime)
	fmt.Printf("%8.5f\t\t= Total Time\n", rp.TotalTime)
	fmt.Printf("%8.5f\t\t= UV Print Interval\n", rp.UVPrintTime)
	fmt.Printf("%8.5f\t\t= Knot Print Interval\n", rp.KnotPrintTime)
	fmt.Printf("%8.5f\t\t= Initial Skip Time\n", rp.InitialSkipTime)
	fmt.Printf("[%s, axis %s]\t= Boundary\n", rp.Boundary, rp.PeriodicAxis)
	fmt.Printf("[%5.3f, %5.3f, %5.3f]\t= Epsilon, Beta, Gamma\n", rp.Epsilon, rp.Beta, rp.Gamma)
	fmt.Printf("%8.5f\t\t= Wavelength\n", rp.Wavelength)
	fmt.Printf("[%s]\t\t\t= Scheme\n", rp.Scheme)
	fmt.Printf("[%s]\t\t= Backend\n", rp.Backend)
	fmt.Printf("[%s]\t\t= InitType\n", rp.InitType)
	switch {
	case len(rp.SurfaceFile) != 0:
		fmt.Printf("[%s]\t= Surface File\n", rp.SurfaceFile)
	case len(rp.RestartFile) != 0:
		fmt.Printf("[%s]\t= Restart File\n", rp.RestartFile)
	}
}
