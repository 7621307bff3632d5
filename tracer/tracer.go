package tracer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/fnknot/fields"
	"github.com/notargets/fnknot/grid"
)

type Status uint8

const (
	Closed Status = iota
	TruncatedOutOfGrid
	TruncatedStepCap
	TruncatedFlat // The cross gradient vanished, no direction to follow
	Degenerate    // Fewer than two points grown, no curve to measure
)

func (st Status) String() string {
	switch st {
	case Closed:
		return "Closed"
	case TruncatedOutOfGrid:
		return "Truncated (left grid)"
	case TruncatedStepCap:
		return "Truncated (step cap)"
	case TruncatedFlat:
		return "Truncated (flat field)"
	case Degenerate:
		return "Degenerate"
	}
	return fmt.Sprintf("Status(%d)", uint8(st))
}

// Truncated is true when growth stopped before the curve met its start
func (st Status) Truncated() bool {
	return st == TruncatedOutOfGrid || st == TruncatedStepCap || st == TruncatedFlat
}

// CurvePoint is one vertex of the traced filament. Writhe, Twist and Length
// belong to the segment from this point to the next one.
type CurvePoint struct {
	Position r3.Vec
	Refined  r3.Vec // Optimizer result for the step that produced this point
	A        r3.Vec // Unit framing vector, grad u projected normal to the curve
	Writhe   float64
	Twist    float64
	Length   float64
}

// Curve is a closed polygon, indices wrap modulo len(Points)
type Curve struct {
	Points []CurvePoint
	Status Status
	Steps  int // Growth steps taken before closure or truncation
}

func (c *Curve) Len() int { return len(c.Points) }

// Next and Prev wrap around the closed curve
func (c *Curve) Next(s int) int { return grid.Incp(s, 1, len(c.Points)) }
func (c *Curve) Prev(s int) int { return grid.Incp(s, -1, len(c.Points)) }

type Tracer struct {
	Lambda      float64 // Characteristic wavelength
	MinSteps    int     // Steps required before closure may be detected
	MaxSteps    int     // Runaway growth guard
	GapPoints   int     // Points linearly filling the final gap
	RelaxPasses int     // Arc length relaxation passes
	Budget      Budget
	Optimizer   VectorOptimizer
}

func NewTracer(lambda float64, opt VectorOptimizer) (tr *Tracer) {
	if opt == nil {
		opt = NewGonumOptimizer()
	}
	tr = &Tracer{
		Lambda:      lambda,
		MinSteps:    32,
		MaxSteps:    50000,
		GapPoints:   15,
		RelaxPasses: 3,
		Budget:      DefaultBudget,
		Optimizer:   opt,
	}
	return
}

// StepLength is the distance between consecutive grown points
func (tr *Tracer) StepLength() float64 { return 0.5 * tr.Lambda / (32 * math.Pi) }

// CaptureRadius is how close to the start a grown point must come to close
// the curve
func (tr *Tracer) CaptureRadius() float64 { return tr.Lambda / (2 * math.Pi) }

// Trace grows a curve from seed by following grad u x grad v, then closes and
// re-spaces it. s.CrossGradient must have been called for the current fields.
func (tr *Tracer) Trace(s *fields.State, seed r3.Vec) (c *Curve) {
	var (
		points  = []CurvePoint{{Position: seed, Refined: seed}}
		trial   = 2 * tr.Lambda / (32 * math.Pi)
		half    = tr.StepLength()
		capture = tr.CaptureRadius()
		obj     = Objective{
			F:    func(x r3.Vec) float64 { return -s.MagnitudeAt(x) },
			Grad: func(x r3.Vec) r3.Vec { return r3.Scale(-1, s.MagnitudeGradientAt(x)) },
		}
		gap r3.Vec
	)
	c = &Curve{Status: Closed}
	for step := 1; ; step++ {
		prev := points[step-1].Position
		ucv, inside := s.CrossGradientAt(prev)
		if !inside {
			c.Status = TruncatedOutOfGrid
			break
		}
		norm := r3.Norm(ucv)
		if norm == 0 {
			c.Status = TruncatedFlat
			break
		}
		dir := r3.Scale(1/norm, ucv)
		refined, _ := tr.Optimizer.Minimize(obj, r3.Add(prev, r3.Scale(trial, dir)), tr.Budget)
		// The recorded point is a half step along the direction, the refined
		// point is kept for inspection only
		next := CurvePoint{
			Position: r3.Add(prev, r3.Scale(half, dir)),
			Refined:  refined,
		}
		points = append(points, next)
		c.Steps = step
		gap = r3.Sub(points[0].Position, next.Position)
		if r3.Norm(gap) < capture && step > tr.MinSteps {
			break
		}
		if step > tr.MaxSteps {
			c.Status = TruncatedStepCap
			break
		}
	}
	if len(points) < 2 {
		c.Points = points
		c.Status = Degenerate
		return
	}
	gap = r3.Sub(points[0].Position, points[len(points)-1].Position)
	fill := r3.Scale(1/float64(tr.GapPoints+1), gap)
	for m := 0; m < tr.GapPoints; m++ {
		p := r3.Add(points[len(points)-1].Position, fill)
		points = append(points, CurvePoint{Position: p, Refined: p})
	}
	c.Points = points
	c.Relax(tr.RelaxPasses)
	return
}

// Relax moves points so consecutive points are spaced at the mean segment
// length, walking once around the curve per pass.
func (c *Curve) Relax(passes int) {
	var NP = len(c.Points)
	for pass := 0; pass < passes; pass++ {
		dl := c.TotalLength() / float64(NP)
		for s := 0; s < NP; s++ {
			var (
				sp   = c.Next(s)
				d    = r3.Sub(c.Points[sp].Position, c.Points[s].Position)
				norm = r3.Norm(d)
			)
			if norm == 0 {
				continue
			}
			c.Points[sp].Position = r3.Add(c.Points[s].Position, r3.Scale(dl/norm, d))
		}
	}
}

// TotalLength is the perimeter of the closed polygon
func (c *Curve) TotalLength() (L float64) {
	for s := range c.Points {
		L += r3.Norm(r3.Sub(c.Points[c.Next(s)].Position, c.Points[s].Position))
	}
	return
}
