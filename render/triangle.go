package render

import (
	"github.com/soypat/mcubes/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle. Marching cubes orders vertices so the normal
// points toward decreasing field values, i.e. inward for signed distances.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle. Degenerate triangles
// return NaN components.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Degenerate returns true if two or more vertices are within tol of each other.
func (t Triangle3) Degenerate(tol float64) bool {
	return d3.EqualWithin(t.V[0], t.V[1], tol) ||
		d3.EqualWithin(t.V[1], t.V[2], tol) ||
		d3.EqualWithin(t.V[2], t.V[0], tol)
}

// Translate returns the triangle moved by v.
func (t Triangle3) Translate(v r3.Vec) Triangle3 {
	return Triangle3{V: [3]r3.Vec{
		r3.Add(t.V[0], v),
		r3.Add(t.V[1], v),
		r3.Add(t.V[2], v),
	}}
}

// FlipWinding reverses the vertex order of every triangle in model, which
// flips their normals.
func FlipWinding(model []Triangle3) {
	for i := range model {
		model[i].V[1], model[i].V[2] = model[i].V[2], model[i].V[1]
	}
}
