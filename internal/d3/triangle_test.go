package d3

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestTriangleClosest(t *testing.T) {
	tri := Triangle{{X: 0}, {X: 2}, {Y: 2}}
	for _, test := range []struct {
		p, want r3.Vec
	}{
		{p: r3.Vec{X: 0.5, Y: 0.5, Z: 3}, want: r3.Vec{X: 0.5, Y: 0.5}}, // face
		{p: r3.Vec{X: -1, Y: -1}, want: r3.Vec{}},                       // vertex A
		{p: r3.Vec{X: 3, Y: -1}, want: r3.Vec{X: 2}},                    // vertex B
		{p: r3.Vec{X: -1, Y: 3}, want: r3.Vec{Y: 2}},                    // vertex C
		{p: r3.Vec{X: 1, Y: -1}, want: r3.Vec{X: 1}},                    // edge AB
		{p: r3.Vec{X: -1, Y: 1}, want: r3.Vec{Y: 1}},                    // edge AC
		{p: r3.Vec{X: 2, Y: 2, Z: -1}, want: r3.Vec{X: 1, Y: 1}},        // edge BC
	} {
		got := tri.Closest(test.p)
		if !EqualWithin(got, test.want, 1e-12) {
			t.Errorf("Closest(%v) = %v, want %v", test.p, got, test.want)
		}
	}
}

func TestBox(t *testing.T) {
	b := PointBox(r3.Vec{X: 1, Y: 1, Z: 1}).Include(r3.Vec{X: -1, Y: 3, Z: 1})
	if !b.Equals(Box{Min: r3.Vec{X: -1, Y: 1, Z: 1}, Max: r3.Vec{X: 1, Y: 3, Z: 1}}, 0) {
		t.Errorf("Include: %v", b)
	}
	if c := b.Center(); c != (r3.Vec{X: 0, Y: 2, Z: 1}) {
		t.Errorf("Center: %v", c)
	}
	s := b.ScaleAboutCenter(2)
	if !s.Equals(Box{Min: r3.Vec{X: -2, Y: 0, Z: 1}, Max: r3.Vec{X: 2, Y: 4, Z: 1}}, 1e-12) {
		t.Errorf("ScaleAboutCenter: %v", s)
	}
}

func TestTriangleClosestDegenerate(t *testing.T) {
	for _, test := range []struct {
		tri     Triangle
		p, want r3.Vec
	}{
		{tri: Triangle{{}, {}, {X: 1}}, p: r3.Vec{X: 0.5, Y: 1}, want: r3.Vec{X: 0.5}},
		{tri: Triangle{{}, {X: 1}, {X: 1}}, p: r3.Vec{X: 2, Y: 1}, want: r3.Vec{X: 1}},
		{tri: Triangle{{X: 1}, {}, {}}, p: r3.Vec{X: -1, Z: 1}, want: r3.Vec{}},
		{tri: Triangle{{}, {X: 1}, {X: 2}}, p: r3.Vec{X: 1.5, Y: -3}, want: r3.Vec{X: 1.5}},
		{tri: Triangle{{Y: 1}, {Y: 1}, {Y: 1}}, p: r3.Vec{X: 4, Y: 1}, want: r3.Vec{Y: 1}},
	} {
		if !test.tri.Degenerate() {
			t.Errorf("%v should be degenerate", test.tri)
		}
		got := test.tri.Closest(test.p)
		if !EqualWithin(got, test.want, 1e-12) {
			t.Errorf("%v.Closest(%v) = %v, want %v", test.tri, test.p, got, test.want)
		}
	}
	if (Triangle{{X: 0}, {X: 2}, {Y: 2}}).Degenerate() {
		t.Error("right triangle reported degenerate")
	}
}
