package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/chewxy/math32"
	"github.com/soypat/mcubes"
	"github.com/soypat/mcubes/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxVertices is the largest vertex count MarchingCubes will allocate.
const MaxVertices = 1 << 27

// RGB is a color with normalized [0,1] channels.
type RGB [3]float32

// Red is the color the extracted surface is painted with by default.
var Red = RGB{1, 0, 0}

// Vertex is a triangle corner: a position and its color.
type Vertex struct {
	Pos   r3.Vec
	Color RGB
}

// Mesh is a flat triangle soup ready for upload to a graphics backend.
// Every 3 consecutive vertices form a triangle. Vertices are not shared.
type Mesh struct {
	VertexCount int
	// Positions holds 3 floats per vertex in x,y,z order.
	Positions []float32
	// Colors holds 4 bytes per vertex in r,g,b,a order. Alpha is always 255.
	Colors []uint8
}

// MarchingCubes extracts the isosurface f = iso of the field and returns it as
// a mesh painted with color c. Positions are in grid cell units with origin at
// lattice point (0,0,0).
func MarchingCubes(f *mcubes.Field, iso float64, c RGB) (Mesh, error) {
	verts, err := extractVertices(f, iso, c)
	if err != nil {
		return Mesh{}, err
	}
	return Assemble(verts), nil
}

// extractVertices scans every cell of f and returns the triangle vertices of
// the isosurface in scan order. The vertex slice is sized exactly up front
// with a classification pass so it never grows during the scan.
func extractVertices(f *mcubes.Field, iso float64, c RGB) ([]Vertex, error) {
	if f == nil || f.Size() < 2 {
		return nil, mcubes.ErrInvalidGridSize
	}
	worstCase, err := mcubes.VertexCapacity(f.Size())
	if err != nil {
		return nil, err
	}
	if lo, hi := f.MinMax(); iso < lo || iso > hi {
		return []Vertex{}, nil
	}
	cells := f.Cells()
	var total int
	for z := 0; z < cells; z++ {
		for y := 0; y < cells; y++ {
			for x := 0; x < cells; x++ {
				total += 3 * cellTriangleCount(f, mcubes.V3i{x, y, z}, iso)
			}
		}
	}
	mustFitCapacity(total, worstCase)
	if total > MaxVertices {
		return nil, fmt.Errorf("%d vertices: %w", total, mcubes.ErrOutOfMemory)
	}
	verts := make([]Vertex, 0, total)
	var tri [marchingCubesMaxTriangles]Triangle3
	for z := 0; z < cells; z++ {
		for y := 0; y < cells; y++ {
			for x := 0; x < cells; x++ {
				cell := mcubes.V3i{x, y, z}
				nt := mcToTriangles(tri[:], cell.ToV3(), cellValues(f, cell), iso)
				mustFitCapacity(len(verts)+3*nt, cap(verts))
				for _, t := range tri[:nt] {
					verts = append(verts,
						Vertex{Pos: t.V[0], Color: c},
						Vertex{Pos: t.V[1], Color: c},
						Vertex{Pos: t.V[2], Color: c},
					)
				}
			}
		}
	}
	return verts, nil
}

// mustFitCapacity panics when n vertices do not fit in capacity. The case
// tables bound every cell to 15 vertices so this only fires on a bug.
func mustFitCapacity(n, capacity int) {
	if n > capacity {
		panic(fmt.Errorf("bug: %d vertices over capacity %d: %w", n, capacity, mcubes.ErrCapacityExceeded))
	}
}

// Assemble packs vertices into flat position and color buffers. Color channels
// are clamped to [0,1], scaled by 255 and truncated. The caller must not use
// verts after the call.
func Assemble(verts []Vertex) Mesh {
	m := Mesh{
		VertexCount: len(verts),
		Positions:   make([]float32, 3*len(verts)),
		Colors:      make([]uint8, 4*len(verts)),
	}
	for i, v := range verts {
		m.Positions[i*3+0] = float32(v.Pos.X)
		m.Positions[i*3+1] = float32(v.Pos.Y)
		m.Positions[i*3+2] = float32(v.Pos.Z)
		m.Colors[i*4+0] = colorByte(v.Color[0])
		m.Colors[i*4+1] = colorByte(v.Color[1])
		m.Colors[i*4+2] = colorByte(v.Color[2])
		m.Colors[i*4+3] = 255
	}
	return m
}

func colorByte(c float32) uint8 {
	return uint8(math32.Min(1, math32.Max(0, c)) * 255)
}

// Position returns the position of the i'th vertex.
func (m Mesh) Position(i int) r3.Vec {
	p := m.Positions[3*i : 3*i+3]
	return r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

// Triangles returns the mesh triangles.
func (m Mesh) Triangles() []Triangle3 {
	model := make([]Triangle3, m.VertexCount/3)
	for i := range model {
		model[i] = Triangle3{V: [3]r3.Vec{
			m.Position(3 * i),
			m.Position(3*i + 1),
			m.Position(3*i + 2),
		}}
	}
	return model
}

// Translate returns a copy of the mesh moved by v. Use it to recenter the
// mesh, i.e. by -(N-1)/2 on each axis to place the grid centroid at the origin.
func (m Mesh) Translate(v r3.Vec) Mesh {
	out := Mesh{
		VertexCount: m.VertexCount,
		Positions:   make([]float32, len(m.Positions)),
		Colors:      append([]uint8(nil), m.Colors...),
	}
	d := [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
	for i, p := range m.Positions {
		out.Positions[i] = p + d[i%3]
	}
	return out
}

// FlipWinding returns a copy of the mesh with the second and third vertex of
// every triangle swapped, flipping the triangle normals. Triangle order is kept.
func (m Mesh) FlipWinding() Mesh {
	out := Mesh{
		VertexCount: m.VertexCount,
		Positions:   append([]float32(nil), m.Positions...),
		Colors:      append([]uint8(nil), m.Colors...),
	}
	for t := 0; t+2 < m.VertexCount; t += 3 {
		a, b := 3*(t+1), 3*(t+2)
		for k := 0; k < 3; k++ {
			out.Positions[a+k], out.Positions[b+k] = out.Positions[b+k], out.Positions[a+k]
		}
		a, b = 4*(t+1), 4*(t+2)
		for k := 0; k < 4; k++ {
			out.Colors[a+k], out.Colors[b+k] = out.Colors[b+k], out.Colors[a+k]
		}
	}
	return out
}

// Bounds returns the axis aligned box containing every vertex.
// An empty mesh returns the zero Box.
func (m Mesh) Bounds() r3.Box {
	if m.VertexCount == 0 {
		return r3.Box{}
	}
	bb := d3.PointBox(m.Position(0))
	for i := 1; i < m.VertexCount; i++ {
		bb = bb.Include(m.Position(i))
	}
	return r3.Box(bb)
}

// Sum64 returns the xxhash digest of the position and color buffers.
// Equal meshes have equal digests.
func (m Mesh) Sum64() uint64 {
	d := xxhash.New()
	var b [4]byte
	for _, p := range m.Positions {
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(p))
		d.Write(b[:])
	}
	d.Write(m.Colors)
	return d.Sum64()
}
