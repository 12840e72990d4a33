package render

import (
	"math"

	"github.com/soypat/mcubes"
	"gonum.org/v1/gonum/spatial/r3"
)

// marchingCubesMaxTriangles is the most triangles a single cell can produce.
const marchingCubesMaxTriangles = 5

// interpolationTolerance is the closeness under which two scalar values are
// considered equal by InterpolateVertex.
const interpolationTolerance = 1e-5

// mcCorners are the cube corner offsets in the order the case tables expect.
var mcCorners = [8]mcubes.V3i{
	{0, 0, 0},
	{1, 0, 0},
	{1, 1, 0},
	{0, 1, 0},
	{0, 0, 1},
	{1, 0, 1},
	{1, 1, 1},
	{0, 1, 1},
}

// mcEdges are the corner pairs joined by each of the 12 cube edges.
var mcEdges = [12][2]uint8{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// CubeIndex returns the cube configuration of 8 corner samples: bit i is set
// when values[i] is strictly below the isovalue.
func CubeIndex(values [8]float64, iso float64) uint8 {
	var idx uint8
	for i, v := range values {
		if v < iso {
			idx |= 1 << i
		}
	}
	return idx
}

// InterpolateVertex returns the point on segment p1-p2 where the scalar,
// linearly interpolated between v1 and v2, equals iso.
// If iso is within 1e-5 of v1 p1 is returned, else if within 1e-5 of v2 p2 is
// returned. Flat edges where v1 and v2 are within 1e-5 of each other return p1.
func InterpolateVertex(p1, p2 r3.Vec, v1, v2, iso float64) r3.Vec {
	switch {
	case math.Abs(iso-v1) < interpolationTolerance:
		return p1
	case math.Abs(iso-v2) < interpolationTolerance:
		return p2
	case math.Abs(v1-v2) < interpolationTolerance:
		return p1
	}
	mu := (iso - v1) / (v2 - v1)
	return r3.Vec{
		X: p1.X + mu*(p2.X-p1.X),
		Y: p1.Y + mu*(p2.Y-p1.Y),
		Z: p1.Z + mu*(p2.Z-p1.Z),
	}
}

// mcToTriangles writes the triangles of the unit cell with its minimum corner
// at origin to dst and returns how many were written. values are the corner
// samples in mcCorners order. dst must have room for marchingCubesMaxTriangles.
func mcToTriangles(dst []Triangle3, origin r3.Vec, values [8]float64, iso float64) int {
	index := CubeIndex(values, iso)
	edges := mcEdgeTable[index]
	if edges == 0 {
		// Cell is fully inside or outside the surface.
		return 0
	}
	// Only slots flagged in edges are written. The rest are never read.
	var vlist [12]r3.Vec
	for i, e := range mcEdges {
		if edges&(1<<i) == 0 {
			continue
		}
		a, b := e[0], e[1]
		vlist[i] = InterpolateVertex(mcCorners[a].ToV3(), mcCorners[b].ToV3(), values[a], values[b], iso)
	}
	table := &mcTriangleTable[index]
	n := 0
	for i := 0; table[i] != -1; i += 3 {
		dst[n] = Triangle3{V: [3]r3.Vec{
			r3.Add(vlist[table[i]], origin),
			r3.Add(vlist[table[i+1]], origin),
			r3.Add(vlist[table[i+2]], origin),
		}}
		n++
	}
	return n
}

// cellValues reads the 8 corner samples of cell c.
func cellValues(f *mcubes.Field, c mcubes.V3i) (values [8]float64) {
	for i, corner := range mcCorners {
		values[i] = f.AtV3i(c.Add(corner))
	}
	return values
}

// cellTriangleCount returns the triangle count of cell c without interpolating.
func cellTriangleCount(f *mcubes.Field, c mcubes.V3i, iso float64) int {
	table := &mcTriangleTable[CubeIndex(cellValues(f, c), iso)]
	n := 0
	for 3*n < len(table) && table[3*n] != -1 {
		n++
	}
	return n
}
