package FitzHughNagumo3D

import (
	"fmt"
	"log"
	"os"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/fnknot/InputParameters"
	"github.com/notargets/fnknot/fields"
	"github.com/notargets/fnknot/grid"
	"github.com/notargets/fnknot/integrator"
	"github.com/notargets/fnknot/invariants"
	"github.com/notargets/fnknot/phase"
	"github.com/notargets/fnknot/readfiles"
	"github.com/notargets/fnknot/surface"
	"github.com/notargets/fnknot/tracer"
	"github.com/notargets/fnknot/types"
	"github.com/notargets/fnknot/utils"
	"github.com/notargets/fnknot/writefiles"
)

/*
	A knotted scroll wave evolves under the FitzHugh-Nagumo equations. At every knot print time
	the filament is located from the peak of |grad u x grad v|, traced into a closed curve and
	reduced to writhe, twist and length.
*/
type Simulation struct {
	RP         *InputParameters.RunParameters
	OutputDir  string
	Grid       *grid.Grid
	State      *fields.State
	Updater    integrator.FieldUpdater
	Tracer     *tracer.Tracer
	Series     invariants.Series
	Init       types.InitType
	Backend    types.BackendType
	KnotChecks int           // Number of times the cross gradient was sampled
	LastCurve  *tracer.Curve // Most recently traced filament, nil until one is found
	Phi        []float64     // Initial phase, nil for uv restarts
	series     *writefiles.SeriesWriter
	verbose    bool
}

func NewSimulation(rp *InputParameters.RunParameters, outputDir string, procLimit int,
	verbose bool) (c *Simulation, err error) {
	var (
		bt     types.BoundaryType
		axis   types.Axis
		scheme types.SchemeType
		rhs    integrator.RHS
	)
	if err = rp.Validate(); err != nil {
		return
	}
	if procLimit <= 0 {
		procLimit = rp.ParallelDegree
	}
	if len(outputDir) == 0 {
		outputDir = rp.OutputDir
	}
	if err = os.MkdirAll(outputDir, 0755); err != nil {
		return
	}
	c = &Simulation{
		RP:        rp,
		OutputDir: outputDir,
		verbose:   verbose,
	}
	if bt, axis, scheme, c.Backend, c.Init, err = rp.Options(); err != nil {
		return nil, err
	}
	if c.Grid, err = grid.NewGridWithAxis(rp.Nx, rp.Ny, rp.Nz, rp.GridSpacing, bt, axis); err != nil {
		return nil, err
	}
	c.State = fields.NewState(c.Grid, procLimit)
	if err = c.InitializeSolution(); err != nil {
		return nil, err
	}
	reaction := integrator.Reaction{Epsilon: rp.Epsilon, Beta: rp.Beta, Gamma: rp.Gamma}
	if rhs, err = integrator.NewKernel(c.Backend, c.Grid, reaction, c.State.Partitions,
		rp.TileSize, procLimit); err != nil {
		return nil, err
	}
	if c.Updater, err = integrator.NewFieldUpdater(scheme, rhs, c.State, rp.TimeStep); err != nil {
		return nil, err
	}
	c.Tracer = tracer.NewTracer(rp.Wavelength, nil)
	info := writefiles.RunInfo{
		Started:  time.Now(),
		Nx:       rp.Nx,
		Ny:       rp.Ny,
		Nz:       rp.Nz,
		TimeStep: rp.TimeStep,
		Spacing:  rp.GridSpacing,
		Boundary: bt,
		Axis:     axis,
		Init:     c.Init,
		Scheme:   scheme,
		Backend:  c.Backend,
		KnotFile: rp.SurfaceFile,
	}
	if c.Init == types.FromPhiFile || c.Init == types.FromUVFile {
		info.FieldFile = rp.RestartFile
	}
	if _, err = writefiles.WriteInfo(outputDir, info); err != nil {
		return nil, err
	}
	// A continued run keeps adding to the series of the run it continues
	resume := c.Init == types.FromUVFile || rp.StartTime > 0
	if c.series, err = writefiles.NewSeriesWriter(outputDir, resume); err != nil {
		return nil, err
	}
	if verbose {
		fmt.Printf("FitzHugh-Nagumo knot evolution in 3 Dimensions\n")
		fmt.Printf("Using %d go routines in parallel\n", c.State.Partitions.ParallelDegree)
		fmt.Printf("Initialization: %s, Scheme: %s, Backend: %s\n", c.Init, c.Updater.Name(), c.Backend)
		fmt.Printf("Grid %d x %d x %d, h = %8.5f, dt = %8.5f, %s boundaries\n\n",
			rp.Nx, rp.Ny, rp.Nz, rp.GridSpacing, rp.TimeStep, bt)
	}
	return
}

// InitializeSolution sets u and v from the configured source. Every source
// but a uv restart passes through a phase field, which is written to phi.vtk.
func (c *Simulation) InitializeSolution() (err error) {
	var (
		rp = c.RP
		g  = c.Grid
		pm = c.State.Partitions
	)
	switch c.Init {
	case types.FromSurfaceFile:
		var facets []surface.Facet
		if facets, err = surface.ReadSTL(rp.SurfaceFile, c.verbose); err != nil {
			return
		}
		scale := surface.Autoscale(facets, g.Extent(), rp.PreserveRatios)
		if c.verbose {
			fmt.Printf("%d facets, scaled by [%8.5f, %8.5f, %8.5f], total area %8.5f\n",
				len(facets), scale.X, scale.Y, scale.Z, surface.TotalArea(facets))
		}
		c.Phi = phase.FromSurface(g, facets, pm)
	case types.FromPhiFile:
		if c.Phi, err = readfiles.ReadPhi(rp.RestartFile, g, c.verbose); err != nil {
			return
		}
	case types.FromFunction:
		c.Phi = phase.FromFunction(g, phase.RingVortex(rp.RingRadius), pm)
	case types.FromUVFile:
		var u, v []float64
		if u, v, err = readfiles.ReadUV(rp.RestartFile, g, c.verbose); err != nil {
			return
		}
		copy(c.State.U, u)
		copy(c.State.V, v)
		return
	default:
		return fmt.Errorf("unable to initialize from %s", c.Init)
	}
	if c.Init != types.FromPhiFile {
		if _, err = writefiles.WritePhi(c.OutputDir, g, c.Phi); err != nil {
			return
		}
	}
	return c.State.SeedFromPhase(c.Phi)
}

// Run advances the fields while n*dt <= TotalTime. Knot sampling precedes
// the field snapshot, which precedes the step, at every iteration.
func (c *Simulation) Run() (err error) {
	var (
		rp      = c.RP
		dt      = rp.TimeStep
		q, p    int
		steps   int
		elapsed time.Duration
	)
	defer func() {
		if cerr := c.series.Close(); err == nil {
			err = cerr
		}
	}()
	if c.verbose {
		c.PrintInitialization()
	}
	for n := 0; float64(n)*dt <= rp.TotalTime; n++ {
		var (
			runTime = float64(n) * dt
			Time    = rp.StartTime + runTime
			sampled bool
		)
		if runTime >= float64(q)*rp.KnotPrintTime {
			if err = c.Sample(Time); err != nil {
				return
			}
			sampled = true
			q++
		}
		if runTime >= float64(p)*rp.UVPrintTime {
			if !sampled {
				c.State.CrossGradient()
			}
			if _, err = writefiles.WriteUV(c.OutputDir, c.State, Time); err != nil {
				return
			}
			p++
		}
		start := time.Now()
		c.Updater.Step(c.State)
		elapsed += time.Since(start)
		steps++
	}
	if c.verbose {
		c.PrintFinal(elapsed, steps)
	}
	return
}

// Sample recomputes the cross gradient and, once past the initial skip time,
// traces the filament and records its invariants.
func (c *Simulation) Sample(Time float64) (err error) {
	var (
		smp invariants.Sample
	)
	seed, maxMag, exists := c.State.CrossGradient()
	c.KnotChecks++
	if Time < c.RP.InitialSkipTime {
		if c.verbose {
			c.PrintUpdate(Time, maxMag, nil)
		}
		return
	}
	if !exists {
		log.Printf("T = %s: no filament, max |grad u x grad v| = %8.5f is below %8.5f\n",
			writefiles.FormatTime(Time), maxMag, fields.KnotThreshold)
		return
	}
	curve := c.Tracer.Trace(c.State, seed)
	smp = invariants.Compute(curve, c.State, Time)
	if curve.Status.Truncated() {
		log.Printf("T = %s: filament trace %s after %d steps\n",
			writefiles.FormatTime(Time), curve.Status, curve.Steps)
	}
	c.LastCurve = curve
	c.Series.Append(smp)
	if err = c.series.Append(smp); err != nil {
		return
	}
	if _, err = writefiles.WriteKnot(c.OutputDir, curve, Time); err != nil {
		return
	}
	if c.verbose {
		c.PrintUpdate(Time, maxMag, &smp)
	}
	return
}

func (c *Simulation) PrintInitialization() {
	fmt.Printf("Solving from T = %8.5f for %8.5f time units\n", c.RP.StartTime, c.RP.TotalTime)
	fmt.Printf("      time     max_ucv       min_u       max_u")
	fmt.Printf("      writhe       twist      length  points  status\n")
}

func (c *Simulation) PrintUpdate(Time, maxMag float64, smp *invariants.Sample) {
	format := "%12.4e"
	fmt.Printf("%10.4f", Time)
	fmt.Printf(format, maxMag)
	fmt.Printf(format, floats.Min(c.State.U))
	fmt.Printf(format, floats.Max(c.State.U))
	if smp != nil {
		fmt.Printf(format, smp.Writhe)
		fmt.Printf(format, smp.Twist)
		fmt.Printf(format, smp.Length)
		fmt.Printf("%8d  %s", smp.NPoints, smp.Status)
	}
	fmt.Printf("\n")
}

func (c *Simulation) PrintFinal(elapsed time.Duration, steps int) {
	if steps == 0 {
		return
	}
	rate := float64(elapsed.Microseconds()) / (float64(c.Grid.Size()) * float64(steps))
	fmt.Printf("\nRate of execution = %8.5f us/(point*iteration) over %d iterations\n", rate, steps)
	fmt.Printf("Fields finite at end of run: %t\n", !integrator.Diverged(c.State))
	fmt.Printf("%s\n", utils.GetMemUsage())
}
