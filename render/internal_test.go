package render

import (
	"errors"
	"io"
	"testing"

	"github.com/soypat/mcubes"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMarchingCubes(t *testing.T) {
	max := 0
	for _, tri := range mcTriangleTable {
		n := 0
		for tri[n] != -1 {
			n++
		}
		if n > max {
			max = n
		}
	}
	got := max / 3
	if got != marchingCubesMaxTriangles {
		t.Errorf("mismatch marching cubes max triangles. got %d. want %d", got, marchingCubesMaxTriangles)
	}
}

func TestCaseTablesConsistent(t *testing.T) {
	for cfg := 0; cfg < 256; cfg++ {
		var want uint16
		for i, e := range mcEdges {
			if (cfg>>e[0])&1 != (cfg>>e[1])&1 {
				want |= 1 << i
			}
		}
		if mcEdgeTable[cfg] != want {
			t.Errorf("config %#02x: edge table %#03x, corner signs give %#03x", cfg, mcEdgeTable[cfg], want)
		}
		row := mcTriangleTable[cfg]
		if row[15] != -1 {
			t.Fatalf("config %#02x: triangle row not terminated", cfg)
		}
		var used uint16
		n := 0
		for ; row[n] != -1; n++ {
			if row[n] < 0 || row[n] > 11 {
				t.Fatalf("config %#02x: bad edge index %d", cfg, row[n])
			}
			used |= 1 << row[n]
		}
		if n%3 != 0 {
			t.Errorf("config %#02x: %d indices is not a whole number of triangles", cfg, n)
		}
		if used != want {
			t.Errorf("config %#02x: triangles use edges %#03x, want %#03x", cfg, used, want)
		}
		for _, v := range row[n:] {
			if v != -1 {
				t.Errorf("config %#02x: index after sentinel", cfg)
				break
			}
		}
	}
}

func TestCubeIndex(t *testing.T) {
	for _, test := range []struct {
		values [8]float64
		iso    float64
		want   uint8
	}{
		{values: [8]float64{}, iso: 0, want: 0x00},
		{values: [8]float64{}, iso: 1, want: 0xff},
		{values: [8]float64{-1, 1, 1, 1, 1, 1, 1, 1}, iso: 0, want: 0x01},
		{values: [8]float64{1, 1, 1, 1, 1, 1, 1, -1}, iso: 0, want: 0x80},
		{values: [8]float64{0, 1, 0, 1, 0, 1, 0, 1}, iso: 0.5, want: 0x55},
		// Equal to the isovalue is not below it.
		{values: [8]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, iso: 0.5, want: 0x00},
	} {
		got := CubeIndex(test.values, test.iso)
		if got != test.want {
			t.Errorf("CubeIndex(%v, %g) = %#02x, want %#02x", test.values, test.iso, got, test.want)
		}
	}
}

func TestUniformCellsEmitNothing(t *testing.T) {
	var dst [marchingCubesMaxTriangles]Triangle3
	for _, v := range []float64{-1, 1} {
		values := [8]float64{v, v, v, v, v, v, v, v}
		if n := mcToTriangles(dst[:], r3.Vec{}, values, 0); n != 0 {
			t.Errorf("uniform cell %g emitted %d triangles", v, n)
		}
	}
}

func TestCellCapacity(t *testing.T) {
	var dst [marchingCubesMaxTriangles]Triangle3
	f, err := mcubes.NewField(2)
	if err != nil {
		t.Fatal(err)
	}
	for cfg := 0; cfg < 256; cfg++ {
		var values [8]float64
		for i := range values {
			values[i] = 1
			if cfg&(1<<i) != 0 {
				values[i] = 0
			}
			c := mcCorners[i]
			f.Set(c[0], c[1], c[2], values[i])
		}
		n := mcToTriangles(dst[:], r3.Vec{}, values, 0.5)
		if n > marchingCubesMaxTriangles {
			t.Fatalf("config %#02x emitted %d triangles", cfg, n)
		}
		if got := cellTriangleCount(f, mcubes.V3i{}, 0.5); got != n {
			t.Errorf("config %#02x: counted %d triangles, emitted %d", cfg, got, n)
		}
		for _, tri := range dst[:n] {
			for _, v := range tri.V {
				// Crossings of 0/1 corners at 0.5 are edge midpoints.
				if v.X < 0 || v.X > 1 || v.Y < 0 || v.Y > 1 || v.Z < 0 || v.Z > 1 {
					t.Fatalf("config %#02x: vertex %v outside cell", cfg, v)
				}
			}
		}
	}
}

func TestInterpolateVertex(t *testing.T) {
	p1 := r3.Vec{X: 0, Y: 0, Z: 0}
	p2 := r3.Vec{X: 2, Y: 4, Z: -6}
	for _, test := range []struct {
		name        string
		v1, v2, iso float64
		want        r3.Vec
	}{
		{name: "midpoint", v1: 0, v2: 1, iso: 0.5, want: r3.Vec{X: 1, Y: 2, Z: -3}},
		{name: "quarter", v1: 0, v2: 4, iso: 1, want: r3.Vec{X: 0.5, Y: 1, Z: -1.5}},
		{name: "reversed", v1: 1, v2: 0, iso: 0.75, want: r3.Vec{X: 0.5, Y: 1, Z: -1.5}},
		{name: "iso at v1", v1: 3, v2: 7, iso: 3, want: p1},
		{name: "iso at v2", v1: 3, v2: 7, iso: 7, want: p2},
		{name: "flat edge at iso", v1: 2, v2: 2, iso: 2, want: p1},
		{name: "flat edge", v1: 2, v2: 2 + 5e-6, iso: 10, want: p1},
		// Both ends are within tolerance of iso. The first end wins.
		{name: "v1 before v2", v1: 1 + 4e-6, v2: 1 - 4e-6, iso: 1, want: p1},
		{name: "near v2", v1: 0, v2: 1, iso: 1 - 5e-6, want: p2},
	} {
		got := InterpolateVertex(p1, p2, test.v1, test.v2, test.iso)
		if got != test.want {
			t.Errorf("%s: got %v, want %v", test.name, got, test.want)
		}
	}
}

func TestUniformRendererBufferSizes(t *testing.T) {
	f, err := mcubes.NewField(9)
	if err != nil {
		t.Fatal(err)
	}
	mcubes.Generate(f, mcubes.Gyroid(4))
	want, err := RenderAll(NewUniformRenderer(f, 0.1))
	if err != nil {
		t.Fatal(err)
	}
	if len(want) == 0 {
		t.Fatal("no triangles rendered")
	}
	for _, size := range []int{1, 2, 3, 4, 5, 6, 7, 64} {
		u := NewUniformRenderer(f, 0.1)
		buf := make([]Triangle3, size)
		var got []Triangle3
		for {
			n, err := u.ReadTriangles(buf)
			got = append(got, buf[:n]...)
			if err == io.EOF {
				break
			} else if err != nil {
				t.Fatal(err)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("buffer size %d: got %d triangles, want %d", size, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("buffer size %d: triangle %d differs", size, i)
			}
		}
		if tris, _ := u.Stats(); tris != len(want) {
			t.Errorf("buffer size %d: stats report %d triangles, want %d", size, tris, len(want))
		}
	}
}

func TestCapacityOverflowPanics(t *testing.T) {
	mustFitCapacity(15, 15)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, mcubes.ErrCapacityExceeded) {
			t.Errorf("want ErrCapacityExceeded panic, got %v", r)
		}
	}()
	mustFitCapacity(16, 15)
	t.Error("no panic")
}
