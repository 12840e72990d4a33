package render

import (
	"io"

	"github.com/soypat/mcubes"
)

// UniformRenderer runs marching cubes over every cell of a Field.
// Cells are scanned z-major, then y, then x. Triangles come out in scan order
// and, within a cell, in case table order.
type UniformRenderer struct {
	field     *mcubes.Field
	iso       float64
	next      mcubes.V3i // next cell to process.
	done      bool
	unwritten triangle3Buffer
	// emitted counts triangles handed out. Read after EOF for stats.
	emitted int
	// cells counts the cells that produced at least one triangle.
	cells int
}

// NewUniformRenderer returns a Renderer extracting the isosurface f = iso.
// The field must not be modified while the renderer is in use.
func NewUniformRenderer(f *mcubes.Field, iso float64) *UniformRenderer {
	if f == nil {
		panic("nil field")
	}
	u := &UniformRenderer{
		field:     f,
		iso:       iso,
		unwritten: triangle3Buffer{buf: make([]Triangle3, 0, marchingCubesMaxTriangles)},
	}
	if lo, hi := f.MinMax(); iso < lo || iso > hi {
		// No cell can straddle an isovalue outside the sample range.
		u.done = true
	}
	return u
}

// ReadTriangles writes triangles rendered from the field into the argument buffer.
// returns number of triangles written and io.EOF once the field is exhausted.
func (u *UniformRenderer) ReadTriangles(dst []Triangle3) (n int, err error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	if u.unwritten.Len() > 0 {
		n += u.unwritten.Read(dst[n:])
		if n == len(dst) {
			return n, nil
		}
	}
	if u.done && u.unwritten.Len() == 0 {
		return n, io.EOF
	}
	var tmp [marchingCubesMaxTriangles]Triangle3
	cells := u.field.Cells()
	for !u.done && n < len(dst) {
		c := u.next
		var nt int
		if len(dst)-n >= marchingCubesMaxTriangles {
			nt = mcToTriangles(dst[n:], c.ToV3(), cellValues(u.field, c), u.iso)
		} else {
			// Not enough room in buffer to write all triangles that could be found by marching cubes.
			nt = mcToTriangles(tmp[:], c.ToV3(), cellValues(u.field, c), u.iso)
			k := copy(dst[n:], tmp[:nt])
			u.unwritten.Write(tmp[k:nt])
			nt = k
		}
		if nt > 0 || u.unwritten.Len() > 0 {
			u.cells++
		}
		n += nt
		u.emitted += nt + u.unwritten.Len()
		u.advance(cells)
	}
	if u.done && u.unwritten.Len() == 0 {
		return n, io.EOF
	}
	return n, nil
}

// advance moves to the next cell in scan order.
func (u *UniformRenderer) advance(cells int) {
	u.next[0]++
	if u.next[0] < cells {
		return
	}
	u.next[0] = 0
	u.next[1]++
	if u.next[1] < cells {
		return
	}
	u.next[1] = 0
	u.next[2]++
	if u.next[2] >= cells {
		u.done = true
	}
}

// Stats returns how many triangles have been produced so far and how many
// cells produced them.
func (u *UniformRenderer) Stats() (triangles, activeCells int) {
	return u.emitted, u.cells
}
