package invariants

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/fnknot/fields"
	"github.com/notargets/fnknot/tracer"
)

// Sample is one entry of the invariant time series
type Sample struct {
	Time    float64
	Writhe  float64
	Twist   float64
	Length  float64
	Status  tracer.Status
	NPoints int
}

// Series only grows, samples are never changed after Append
type Series struct {
	Samples []Sample
}

func (sr *Series) Append(smp Sample) {
	sr.Samples = append(sr.Samples, smp)
}

func (sr *Series) Len() int { return len(sr.Samples) }

func (sr *Series) Last() (smp Sample, ok bool) {
	if len(sr.Samples) == 0 {
		return
	}
	return sr.Samples[len(sr.Samples)-1], true
}

// Compute sets the framing vector and the writhe, twist and length densities
// on every point of the curve and returns their totals. The curve parameter
// runs over [0, 2Pi) so ds = 2Pi/NP.
func Compute(c *tracer.Curve, s *fields.State, time float64) (smp Sample) {
	var (
		NP = c.Len()
	)
	smp = Sample{Time: time, Status: c.Status, NPoints: NP}
	if c.Status == tracer.Degenerate || NP < 2 {
		return
	}
	Frame(c, s)
	var (
		ds = 2 * math.Pi / float64(NP)
		p  = c.Points
	)
	for si := 0; si < NP; si++ {
		var (
			sp   = c.Next(si)
			dxds = r3.Scale(1/ds, r3.Sub(p[sp].Position, p[si].Position))
			tlen = r3.Norm(dxds)
			b    = r3.Scale(1/ds, r3.Sub(p[sp].A, p[si].A))
		)
		p[si].Length = tlen * ds
		p[si].Twist, p[si].Writhe = 0, 0
		// A zero length segment carries no twist or writhe
		if tlen == 0 {
			continue
		}
		p[si].Twist = r3.Dot(dxds, r3.Cross(p[si].A, b)) / (2 * math.Pi * tlen)
		for m := 0; m < NP; m++ {
			if m == si {
				continue
			}
			var (
				mp   = c.Next(m)
				dr   = r3.Scale(0.5, r3.Sub(r3.Add(p[sp].Position, p[si].Position), r3.Add(p[mp].Position, p[m].Position)))
				dxdm = r3.Scale(1/ds, r3.Sub(p[mp].Position, p[m].Position))
				rr   = r3.Dot(dr, dr)
			)
			if rr == 0 {
				continue
			}
			p[si].Writhe += ds * r3.Dot(dr, r3.Cross(dxds, dxdm)) / (4 * math.Pi * rr * math.Sqrt(rr))
		}
		smp.Writhe += p[si].Writhe * ds
		smp.Twist += p[si].Twist * ds
		smp.Length += p[si].Length
	}
	return
}

// Frame sets A on each point to the interpolated grad u with its component
// along the central difference tangent removed, normalized. Points off the
// grid, or where the projection vanishes, get a zero frame.
func Frame(c *tracer.Curve, s *fields.State) {
	p := c.Points
	for si := range p {
		p[si].A = r3.Vec{}
		gu, ok := s.GradUAt(p[si].Position)
		if !ok {
			continue
		}
		var (
			t  = r3.Scale(0.5, r3.Sub(p[c.Next(si)].Position, p[c.Prev(si)].Position))
			tt = r3.Dot(t, t)
			ap = gu
		)
		if tt > 0 {
			ap = r3.Sub(gu, r3.Scale(r3.Dot(gu, t)/tt, t))
		}
		if norm := r3.Norm(ap); norm > 0 {
			p[si].A = r3.Scale(1/norm, ap)
		}
	}
}
