package render

import (
	"math"

	"github.com/soypat/mcubes"
	"github.com/soypat/mcubes/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ mcubes.SDF3      = (*KDSDF)(nil)
	_ kdtree.Interface = kdTriangles{}
	_ kdtree.Bounder   = kdTriangles{}
)

// KDSDF is an approximate signed distance to a marching cubes mesh backed by a
// k-d tree of triangle centroids. It lets an extracted surface be sampled into
// a new Field.
type KDSDF struct {
	tree kdtree.Tree
	bb   r3.Box
}

// NewKDSDF indexes model. Triangles must keep the winding marching cubes gives
// them: normals pointing toward decreasing field values. Zero area triangles,
// which marching cubes emits when a vertex snaps to a corner, are skipped
// since they have no normal to sign the distance with.
func NewKDSDF(model []Triangle3) *KDSDF {
	if len(model) == 0 {
		panic("cannot index empty model")
	}
	mykd := make(kdTriangles, 0, len(model))
	bb := d3.PointBox(model[0].V[0])
	for i := range model {
		for _, v := range model[i].V {
			bb = bb.Include(v)
		}
		if d3.Triangle(model[i].V).Degenerate() {
			continue
		}
		mykd = append(mykd, kdTriangle(model[i]))
	}
	if len(mykd) == 0 {
		panic("cannot index model of zero area triangles")
	}
	tree := kdtree.New(mykd, true)
	return &KDSDF{tree: *tree, bb: r3.Box(bb)}
}

// Nearest returns the triangle whose centroid is nearest to v and the
// squared distance between the two.
func (s *KDSDF) Nearest(v r3.Vec) (Triangle3, float64) {
	got, d2 := s.tree.Nearest(kdTriangle{
		V: [3]r3.Vec{v, v, v},
	})
	return Triangle3(got.(kdTriangle)), d2
}

// Evaluate returns the distance from v to the nearest triangle, negative on
// the side the triangle normal points to.
func (s *KDSDF) Evaluate(v r3.Vec) float64 {
	tri, _ := s.Nearest(v)
	closest := d3.Triangle(tri.V).Closest(v)
	d := r3.Sub(v, closest)
	dist := r3.Norm(d)
	n := tri.Normal()
	if math.IsNaN(n.X) || r3.Dot(n, d) <= 0 {
		return dist
	}
	return -dist
}

// Bounds returns the box containing every vertex of the indexed model.
func (s *KDSDF) Bounds() r3.Box { return s.bb }

type kdTriangles []kdTriangle

type kdTriangle Triangle3

func (k kdTriangles) Index(i int) kdtree.Comparable {
	return k[i]
}

// Len returns the length of the list.
func (k kdTriangles) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdTriangles) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), triangles: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdTriangles) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

// Bounds returns the box containing every centroid in the list.
func (k kdTriangles) Bounds() *kdtree.Bounding {
	max := r3.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}
	min := r3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	for _, tri := range k {
		c := kdCentroid(tri)
		min = d3.MinElem(min, c)
		max = d3.MaxElem(max, c)
	}
	return &kdtree.Bounding{
		Min: kdTriangle{V: [3]r3.Vec{min, min, min}},
		Max: kdTriangle{V: [3]r3.Vec{max, max, max}},
	}
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
//
// Given c = a.Compare(b, d):
//
//	c = a_d - b_d
func (a kdTriangle) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a, b.(kdTriangle), int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdTriangle) Dims() int {
	return 3
}

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdTriangle) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(kdCentroid(a), kdCentroid(b.(kdTriangle))))
}

// c = a.dim - b.dim
func kdComp(a, b kdTriangle, dim int) float64 {
	ac, bc := kdCentroid(a), kdCentroid(b)
	switch dim {
	case 0:
		return ac.X - bc.X
	case 1:
		return ac.Y - bc.Y
	default:
		return ac.Z - bc.Z
	}
}

func kdCentroid(a kdTriangle) r3.Vec {
	v := r3.Add(a.V[0], r3.Add(a.V[1], a.V[2]))
	return r3.Scale(1./3., v)
}

type kdPlane struct {
	dim       int
	triangles kdTriangles
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.triangles[i], p.triangles[j], p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.triangles[i], p.triangles[j] = p.triangles[j], p.triangles[i]
}
func (p kdPlane) Len() int {
	return len(p.triangles)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.triangles = p.triangles[start:end]
	return p
}
