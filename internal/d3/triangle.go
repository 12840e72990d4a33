package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a 3D triangle given by its vertices.
type Triangle [3]r3.Vec

// Closest returns closest point on the triangle to argument point p.
// Triangles with zero area are treated as the union of their edges.
// See Real-Time Collision Detection, section 5.1.5.
func (t Triangle) Closest(p r3.Vec) r3.Vec {
	a, b, c := t[0], t[1], t[2]
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	if r3.Norm2(r3.Cross(ab, ac)) == 0 {
		return t.closestEdge(p)
	}
	ap := r3.Sub(p, a)
	d1 := r3.Dot(ab, ap)
	d2 := r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a // vertex region A
	}
	bp := r3.Sub(p, b)
	d3 := r3.Dot(ab, bp)
	d4 := r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b // vertex region B
	}
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return r3.Add(a, r3.Scale(d1/(d1-d3), ab)) // edge AB
	}
	cp := r3.Sub(p, c)
	d5 := r3.Dot(ab, cp)
	d6 := r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c // vertex region C
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return r3.Add(a, r3.Scale(d2/(d2-d6), ac)) // edge AC
	}
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b))) // edge BC
	}
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac)))
}

// Degenerate reports whether the triangle has zero area.
func (t Triangle) Degenerate() bool {
	return r3.Norm2(r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))) == 0
}

func (t Triangle) closestEdge(p r3.Vec) r3.Vec {
	best := closestOnSegment(t[0], t[1], p)
	bestD := r3.Norm2(r3.Sub(p, best))
	for _, e := range [2][2]int{{1, 2}, {2, 0}} {
		q := closestOnSegment(t[e[0]], t[e[1]], p)
		if d := r3.Norm2(r3.Sub(p, q)); d < bestD {
			best, bestD = q, d
		}
	}
	return best
}

// closestOnSegment returns the point of segment ab closest to p.
func closestOnSegment(a, b, p r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return a
	}
	s := r3.Dot(r3.Sub(p, a), ab) / l2
	s = math.Max(0, math.Min(1, s))
	return r3.Add(a, r3.Scale(s, ab))
}
