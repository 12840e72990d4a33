package lispfield

import (
	"math"
	"testing"

	"github.com/soypat/mcubes"
	"github.com/soypat/mcubes/render"
)

const sphereExpr = "(- (sqrt (+ (* x x) (* y y) (* z z))) 0.5)"

func TestEval(t *testing.T) {
	for _, test := range []struct {
		expr    string
		x, y, z float64
		want    float64
	}{
		{expr: "(+ x y z)", x: 1, y: 2, z: 3, want: 6},
		{expr: "(* x 2)", x: -0.25, want: -0.5},
		{expr: sphereExpr, x: 0.3, y: 0.4, want: 0},
		{expr: "(hypot x y)", x: 3, y: 4, want: 5},
		{expr: "(max (abs x) (min y z))", x: -2, y: 1, z: 0.5, want: 2},
		{expr: "(+ (sin x) (cos y))", x: math.Pi / 2, want: 2},
	} {
		e, err := Compile(test.expr)
		if err != nil {
			t.Fatalf("%s: %v", test.expr, err)
		}
		got, err := e.Eval(test.x, test.y, test.z)
		e.Close()
		if err != nil {
			t.Fatalf("%s: %v", test.expr, err)
		}
		if math.Abs(got-test.want) > 1e-12 {
			t.Errorf("%s at (%g,%g,%g) = %g, want %g", test.expr, test.x, test.y, test.z, got, test.want)
		}
	}
}

func TestCompilePlain(t *testing.T) {
	for _, expr := range []string{"1.5", "x", "(+ x y z)"} {
		e, err := Compile(expr)
		if err != nil {
			t.Fatalf("Compile(%q): %v", expr, err)
		}
		if e.String() != expr {
			t.Errorf("String() = %q, want %q", e.String(), expr)
		}
		got, err := e.Eval(1.5, 2, 3)
		e.Close()
		if err != nil {
			t.Fatal(err)
		}
		if got < 1.5 {
			t.Errorf("%s at (1.5,2,3) = %g", expr, got)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"   ",
		"(+ x",
		"(undefined-function x)",
		`"not a number"`,
	} {
		e, err := Compile(expr)
		if err == nil {
			e.Close()
			t.Errorf("Compile(%q) succeeded", expr)
		}
	}
}

func TestLispFloat(t *testing.T) {
	for _, test := range []struct {
		v    float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-3, "-3.0"},
		{0.5, "0.5"},
		{-1. / 15, "-0.06666666666666667"},
	} {
		if got := lispFloat(test.v); got != test.want {
			t.Errorf("lispFloat(%g) = %q, want %q", test.v, got, test.want)
		}
	}
}

func TestMatchesAnalyticSphere(t *testing.T) {
	e, err := Compile(sphereExpr)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	const n = 8
	lisp, err := mcubes.NewField(n)
	if err != nil {
		t.Fatal(err)
	}
	native, err := mcubes.NewField(n)
	if err != nil {
		t.Fatal(err)
	}
	mcubes.Generate(lisp, e.Func())
	mcubes.Generate(native, mcubes.Sphere(0.5))
	if err := e.Err(); err != nil {
		t.Fatal(err)
	}
	for i, v := range native.Samples() {
		if math.Abs(lisp.Samples()[i]-v) > 1e-12 {
			t.Fatalf("sample %d: lisp %g, native %g", i, lisp.Samples()[i], v)
		}
	}
	a, err := render.MarchingCubes(lisp, 0, render.Red)
	if err != nil {
		t.Fatal(err)
	}
	b, err := render.MarchingCubes(native, 0, render.Red)
	if err != nil {
		t.Fatal(err)
	}
	if a.VertexCount == 0 || a.VertexCount != b.VertexCount {
		t.Errorf("vertex counts: lisp %d, native %d", a.VertexCount, b.VertexCount)
	}
}

func TestFuncError(t *testing.T) {
	// Defined at the origin, fails elsewhere.
	e, err := Compile(`(if (== x 0.0) 0.0 "bad")`)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	fn := e.Func()
	if v := fn(0, 0, 0); v != 0 {
		t.Errorf("origin: got %g", v)
	}
	if v := fn(1, 0, 0); !math.IsNaN(v) {
		t.Errorf("expected NaN, got %g", v)
	}
	if e.Err() == nil {
		t.Error("expected recorded error")
	}
}
