// Package mcubes holds the scalar field side of the isosurface extraction
// pipeline: the sampled lattice, the generators that fill it and the
// analytic shapes used to exercise it. Triangulation lives in package render.
package mcubes

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Extraction errors.
var (
	// ErrInvalidGridSize is returned for grids with fewer than 2 samples per axis,
	// which contain no cell.
	ErrInvalidGridSize = errors.New("grid size must be 2 or larger")
	// ErrOutOfMemory is returned when a field or its worst case vertex buffer
	// can not be allocated.
	ErrOutOfMemory = errors.New("grid too large to allocate")
	// ErrCapacityExceeded signals more vertices were emitted than the worst case
	// preallocation allows. It indicates broken case tables, never bad input,
	// and is raised as a panic value.
	ErrCapacityExceeded = errors.New("marching cubes vertex capacity exceeded")
)

// MaxSamples is the largest sample count NewField will allocate.
const MaxSamples = 1 << 30

// MaxVerticesPerCell is the worst case vertex count emitted by a single cell:
// 5 triangles of 3 vertices.
const MaxVerticesPerCell = 15

// ScalarFunc is a scalar function over 3D space.
type ScalarFunc func(x, y, z float64) float64

// SDF3 is the interface to a 3d signed distance function object.
type SDF3 interface {
	// Evaluate takes a point in 3D space as input and returns
	// the minimum distance of the SDF3 to the point. The distance
	// is negative if the point is contained within the SDF3.
	Evaluate(p r3.Vec) float64
	// Bounds returns the bounding box that completely contains
	// the SDF3.
	Bounds() r3.Box
}

// VertexCapacity returns the worst case vertex count of extracting a grid of
// n samples per axis. It returns ErrInvalidGridSize for n < 2 and ErrOutOfMemory
// if the count does not fit in an int.
func VertexCapacity(n int) (int, error) {
	if n < 2 {
		return 0, ErrInvalidGridSize
	}
	if c := float64(n - 1); c*c*c*MaxVerticesPerCell >= math.MaxInt {
		return 0, ErrOutOfMemory
	}
	cells := (n - 1) * (n - 1) * (n - 1)
	return cells * MaxVerticesPerCell, nil
}
