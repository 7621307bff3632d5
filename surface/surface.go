package surface

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Facet is one oriented triangle of the input surface. It is consumed by the
// phase initializer and not retained afterwards.
type Facet struct {
	Vertices [3]r3.Vec
	Normal   r3.Vec // Outward unit normal
	Centroid r3.Vec
	Area     float64
}

func NewFacet(normal r3.Vec, v0, v1, v2 r3.Vec) (f Facet) {
	f = Facet{
		Vertices: [3]r3.Vec{v0, v1, v2},
		Normal:   normal,
	}
	f.update()
	return
}

// update recomputes the centroid and the area (Heron's formula) from the
// vertices
func (f *Facet) update() {
	var (
		v          = f.Vertices
		r10        = r3.Norm(r3.Sub(v[1], v[0]))
		r20        = r3.Norm(r3.Sub(v[2], v[0]))
		r21        = r3.Norm(r3.Sub(v[2], v[1]))
		s          = 0.5 * (r10 + r20 + r21)
		heronTerms = s * (s - r10) * (s - r20) * (s - r21)
	)
	f.Centroid = r3.Scale(1./3., r3.Add(r3.Add(v[0], v[1]), v[2]))
	// Round off can make the product slightly negative for slivers
	f.Area = math.Sqrt(math.Max(heronTerms, 0))
}

// TotalArea sums the facet areas
func TotalArea(facets []Facet) (A float64) {
	for _, f := range facets {
		A += f.Area
	}
	return
}

// BoundingBox returns the componentwise min and max over all vertices.
func BoundingBox(facets []Facet) (min, max r3.Vec) {
	if len(facets) == 0 {
		return
	}
	min, max = facets[0].Vertices[0], facets[0].Vertices[0]
	for _, f := range facets {
		for _, v := range f.Vertices {
			min = r3.Vec{X: math.Min(min.X, v.X), Y: math.Min(min.Y, v.Y), Z: math.Min(min.Z, v.Z)}
			max = r3.Vec{X: math.Max(max.X, v.X), Y: math.Max(max.Y, v.Y), Z: math.Max(max.Z, v.Z)}
		}
	}
	return
}

// FillFraction is the share of the simulation box an autoscaled surface spans
// along each axis.
const FillFraction = 0.8

// Autoscale moves the surface's bounding box midpoint to the origin and
// stretches each axis so the surface spans FillFraction of box. With
// preserveRatios the smallest of the three scale factors is used on every
// axis. Normals are transformed with the cofactor of the scaling and
// renormalized, centroids and areas are recomputed. The scale factors applied
// are returned.
func Autoscale(facets []Facet, box r3.Vec, preserveRatios bool) (scale r3.Vec) {
	var (
		min, max = BoundingBox(facets)
		mid      = r3.Scale(0.5, r3.Add(min, max))
		span     = r3.Sub(max, min)
		fit      = func(extent, s float64) float64 {
			if s > 0 {
				return FillFraction * extent / s
			}
			return 1
		}
	)
	scale = r3.Vec{X: fit(box.X, span.X), Y: fit(box.Y, span.Y), Z: fit(box.Z, span.Z)}
	if preserveRatios {
		s := math.Min(scale.X, math.Min(scale.Y, scale.Z))
		scale = r3.Vec{X: s, Y: s, Z: s}
	}
	for i := range facets {
		f := &facets[i]
		for j, v := range f.Vertices {
			d := r3.Sub(v, mid)
			f.Vertices[j] = r3.Vec{X: scale.X * d.X, Y: scale.Y * d.Y, Z: scale.Z * d.Z}
		}
		n := r3.Vec{
			X: scale.Y * scale.Z * f.Normal.X,
			Y: scale.X * scale.Z * f.Normal.Y,
			Z: scale.X * scale.Y * f.Normal.Z,
		}
		if nn := r3.Norm(n); nn > 0 {
			f.Normal = r3.Scale(1/nn, n)
		}
		f.update()
	}
	return
}
