package mcubes

import (
	"math"

	"github.com/soypat/mcubes/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// unitBox is the normalized [-1,1] domain Generate samples.
var unitBox = r3.Box{
	Min: r3.Vec{X: -1, Y: -1, Z: -1},
	Max: r3.Vec{X: 1, Y: 1, Z: 1},
}

// Generate fills the field with fn evaluated over the normalized domain [-1,1]³.
// Lattice coordinate i maps to i/(N-1)*2 - 1 on each axis.
func Generate(f *Field, fn ScalarFunc) {
	n := f.n
	for z := 0; z < n; z++ {
		fz := float64(z)/float64(n-1)*2 - 1
		for y := 0; y < n; y++ {
			fy := float64(y)/float64(n-1)*2 - 1
			for x := 0; x < n; x++ {
				fx := float64(x)/float64(n-1)*2 - 1
				f.data[z*n*n+y*n+x] = fn(fx, fy, fz)
			}
		}
	}
}

// GenerateBox fills the field with fn evaluated over box, the lattice
// corners (0,0,0) and (N-1,N-1,N-1) landing on box.Min and box.Max.
func GenerateBox(f *Field, fn ScalarFunc, box r3.Box) {
	if box == unitBox {
		Generate(f, fn)
		return
	}
	n := f.n
	step := r3.Scale(1/float64(n-1), r3.Sub(box.Max, box.Min))
	for z := 0; z < n; z++ {
		fz := box.Min.Z + float64(z)*step.Z
		for y := 0; y < n; y++ {
			fy := box.Min.Y + float64(y)*step.Y
			for x := 0; x < n; x++ {
				fx := box.Min.X + float64(x)*step.X
				f.data[z*n*n+y*n+x] = fn(fx, fy, fz)
			}
		}
	}
}

// GenerateSDF samples s over its bounding box slightly enlarged so the
// surface does not touch the outer lattice shell.
func GenerateSDF(f *Field, s SDF3) {
	bb := d3.Box(s.Bounds()).ScaleAboutCenter(1.01)
	GenerateBox(f, func(x, y, z float64) float64 {
		return s.Evaluate(r3.Vec{X: x, Y: y, Z: z})
	}, r3.Box(bb))
}

// GenerateSolidCube fills the field with a synthetic solid: lattice points
// strictly inside on all three axes are 1, points on the outer shell are 0.
func GenerateSolidCube(f *Field) {
	n := f.n
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				v := 0.0
				if x != 0 && x < n-1 && y != 0 && y < n-1 && z != 0 && z < n-1 {
					v = 1
				}
				f.data[z*n*n+y*n+x] = v
			}
		}
	}
}

// Sphere returns the distance to a sphere of radius r centered at the origin.
func Sphere(r float64) ScalarFunc {
	return func(x, y, z float64) float64 {
		return math.Sqrt(x*x+y*y+z*z) - r
	}
}

// Torus returns the distance to a torus around the Z axis with major radius
// R and minor radius r.
func Torus(R, r float64) ScalarFunc {
	return func(x, y, z float64) float64 {
		q := math.Hypot(x, y) - R
		return math.Hypot(q, z) - r
	}
}

// Gyroid returns the gyroid triply periodic surface with period 2π/scale.
// Its zero level set splits space into two congruent labyrinths.
func Gyroid(scale float64) ScalarFunc {
	return func(x, y, z float64) float64 {
		x, y, z = x*scale, y*scale, z*scale
		return math.Sin(x)*math.Cos(y) + math.Sin(y)*math.Cos(z) + math.Sin(z)*math.Cos(x)
	}
}
