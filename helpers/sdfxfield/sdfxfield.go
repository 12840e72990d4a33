// Package sdfxfield samples github.com/deadsy/sdfx solids into mcubes fields.
//
// The constructive solid geometry of sdfx gives the extractor more
// interesting inputs than the analytic shapes in package mcubes.
package sdfxfield

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/mcubes"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ mcubes.SDF3 = Solid{}

// Solid wraps an sdfx solid so it can be sampled with mcubes.GenerateSDF.
type Solid struct {
	s sdf.SDF3
}

// Wrap adapts s. It panics if s is nil.
func Wrap(s sdf.SDF3) Solid {
	if s == nil {
		panic("nil sdfx solid")
	}
	return Solid{s: s}
}

// Unwrap returns the underlying sdfx solid.
func (s Solid) Unwrap() sdf.SDF3 { return s.s }

// Evaluate returns the signed distance from p to the solid.
func (s Solid) Evaluate(p r3.Vec) float64 {
	return s.s.Evaluate(v3.Vec(p))
}

// Bounds returns the bounding box of the solid.
func (s Solid) Bounds() r3.Box {
	bb := s.s.BoundingBox()
	return r3.Box{Min: r3.Vec(bb.Min), Max: r3.Vec(bb.Max)}
}

// Sphere returns a sphere of radius r centered at the origin.
func Sphere(r float64) (Solid, error) {
	s, err := sdf.Sphere3D(r)
	if err != nil {
		return Solid{}, err
	}
	return Wrap(s), nil
}

// Box returns a box of the given dimensions centered at the origin with
// edges rounded by round.
func Box(size r3.Vec, round float64) (Solid, error) {
	s, err := sdf.Box3D(v3.Vec(size), round)
	if err != nil {
		return Solid{}, err
	}
	return Wrap(s), nil
}

// Cylinder returns a cylinder along the Z axis centered at the origin.
func Cylinder(height, radius, round float64) (Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, round)
	if err != nil {
		return Solid{}, err
	}
	return Wrap(s), nil
}

// Union returns the union of a and b.
func Union(a, b Solid) Solid {
	return Wrap(sdf.Union3D(a.s, b.s))
}

// Difference returns a with b removed.
func Difference(a, b Solid) Solid {
	return Wrap(sdf.Difference3D(a.s, b.s))
}

// Intersection returns the volume shared by a and b.
func Intersection(a, b Solid) Solid {
	return Wrap(sdf.Intersect3D(a.s, b.s))
}

// Translate moves s by v.
func Translate(s Solid, v r3.Vec) Solid {
	return Wrap(sdf.Transform3D(s.s, sdf.Translate3d(v3.Vec(v))))
}

// DrilledBox returns a box of side size with a cylindrical hole of radius
// size/4 bored along Z. It is the demo solid of the command line tool.
func DrilledBox(size float64) (Solid, error) {
	box, err := Box(r3.Vec{X: size, Y: size, Z: size}, size/20)
	if err != nil {
		return Solid{}, err
	}
	hole, err := Cylinder(2*size, size/4, 0)
	if err != nil {
		return Solid{}, err
	}
	return Difference(box, hole), nil
}

// Sample allocates a field of n samples per axis and fills it with s over
// its enlarged bounding box.
func Sample(s Solid, n int) (*mcubes.Field, error) {
	f, err := mcubes.NewField(n)
	if err != nil {
		return nil, err
	}
	mcubes.GenerateSDF(f, s)
	return f, nil
}
