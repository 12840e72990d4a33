package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
)

var (
	errEmptyModel = errors.New("empty triangle slice")
	// errBadTriangle is returned by ReadSTL for triangles with NaN/Inf vertices.
	errBadTriangle = errors.New("invalid STL triangle")
)

// WriteSTL writes model triangles to a writer in binary STL format.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return errEmptyModel
	}
	if int64(len(model)) > math.MaxUint32 {
		return errors.New("amount of triangles in model exceeds STL design limits")
	}
	bw := bufio.NewWriter(w)
	var hdr [stlHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[80:], uint32(len(model)))
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	var buf [stlTriangleSize]byte
	for _, t := range model {
		putSTLTriangle(buf[:], t)
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteMeshSTL writes the mesh triangles in binary STL format. Colors are dropped.
func WriteMeshSTL(w io.Writer, m Mesh) error {
	return WriteSTL(w, m.Triangles())
}

// CreateSTL streams every triangle of r into a binary STL file at path.
// The triangle count in the header is written once the renderer is exhausted.
func CreateSTL(path string, r Renderer) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err = file.Seek(stlHeaderSize, io.SeekStart); err != nil {
		return err
	}
	bw := bufio.NewWriter(file)
	var (
		tbuf  = make([]Triangle3, 1024)
		buf   [stlTriangleSize]byte
		count int64
	)
	for {
		nt, rerr := r.ReadTriangles(tbuf)
		for _, t := range tbuf[:nt] {
			putSTLTriangle(buf[:], t)
			if _, err = bw.Write(buf[:]); err != nil {
				return err
			}
		}
		count += int64(nt)
		if rerr == io.EOF {
			break
		} else if rerr != nil {
			return rerr
		}
	}
	if count > math.MaxUint32 {
		return errors.New("amount of triangles in model exceeds STL design limits")
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	var hdr [stlHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[80:], uint32(count))
	_, err = file.WriteAt(hdr[:], 0)
	return err
}

// ReadSTL reads a binary STL stream. Triangles with NaN/Inf vertices are
// rejected. Stored normals are not checked.
func ReadSTL(r io.Reader) ([]Triangle3, error) {
	var hdr [stlHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, fmt.Errorf("STL header read failed: %w", err)
	}
	count := binary.LittleEndian.Uint32(hdr[80:])
	if count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	model := make([]Triangle3, 0, min(int(count), 1<<20))
	var buf [stlTriangleSize]byte
	for i := 0; i < int(count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		var v [4][3]float32
		for j := range v {
			v[j] = get3F32(buf[12*j:])
		}
		if bad3F32(v[1]) || bad3F32(v[2]) || bad3F32(v[3]) {
			return nil, fmt.Errorf("triangle %d has NaN/Inf vertex: %w", i, errBadTriangle)
		}
		model = append(model, Triangle3{V: [3]r3.Vec{r3From3F32(v[1]), r3From3F32(v[2]), r3From3F32(v[3])}})
	}
	return model, nil
}

// putSTLTriangle marshals t as normal, 3 vertices and an empty attribute count.
func putSTLTriangle(b []byte, t Triangle3) {
	_ = b[stlTriangleSize-1] // early bounds check
	n := t.Normal()
	if math.IsNaN(n.X) {
		n = r3.Vec{}
	}
	put3F32(b, [3]float32{float32(n.X), float32(n.Y), float32(n.Z)})
	for i, v := range t.V {
		put3F32(b[12*(i+1):], [3]float32{float32(v.X), float32(v.Y), float32(v.Z)})
	}
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte) (f [3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
	return f
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}
