// Package lispfield builds scalar fields from Lisp expressions of x, y and z
// evaluated by the zygomys interpreter.
//
// An expression such as
//
//	(- (sqrt (+ (* x x) (* y y) (* z z))) 0.5)
//
// becomes the body of a function (isofield x y z) defined in a sandboxed
// environment. The math functions sqrt, abs, sin, cos, hypot, min and max are
// available on top of the zygomys core.
package lispfield

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/soypat/mcubes"
)

// Expr is a compiled field expression. It is safe for concurrent use;
// evaluations are serialized.
type Expr struct {
	mu  sync.Mutex
	env *zygo.Zlisp
	src string
	err error
}

// fieldName names the lisp function wrapping the expression. zygomys reserves
// "field" as a builtin.
const fieldName = "isofield"

// Compile defines expr as the body of the field function and evaluates it
// once at the origin to catch errors early.
func Compile(expr string) (*Expr, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, errors.New("empty field expression")
	}
	env := zygo.NewZlispSandbox()
	registerMath(env)
	if err := env.LoadString("(defn " + fieldName + " [x y z] " + expr + ")"); err != nil {
		env.Stop()
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}
	if _, err := env.Run(); err != nil {
		env.Stop()
		return nil, fmt.Errorf("define %q: %w", expr, err)
	}
	e := &Expr{env: env, src: expr}
	if _, err := e.Eval(0, 0, 0); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// String returns the source expression.
func (e *Expr) String() string { return e.src }

// Eval evaluates the expression at (x,y,z).
func (e *Expr) Eval(x, y, z float64) (v float64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic evaluating %q: %v", e.src, r)
		}
	}()
	call := "(" + fieldName + " " + lispFloat(x) + " " + lispFloat(y) + " " + lispFloat(z) + ")"
	res, err := e.env.EvalString(call)
	if err != nil {
		return 0, fmt.Errorf("evaluating %q at (%g,%g,%g): %w", e.src, x, y, z, err)
	}
	v, err = toFloat64(res)
	if err != nil {
		return 0, fmt.Errorf("evaluating %q: %w", e.src, err)
	}
	return v, nil
}

// Func returns the expression as a scalar function. Evaluation errors yield
// NaN samples; the first one is kept and returned by Err.
func (e *Expr) Func() mcubes.ScalarFunc {
	return func(x, y, z float64) float64 {
		v, err := e.Eval(x, y, z)
		if err != nil {
			e.mu.Lock()
			if e.err == nil {
				e.err = err
			}
			e.mu.Unlock()
			return math.NaN()
		}
		return v
	}
}

// Err returns the first error encountered by a function returned by Func.
func (e *Expr) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Close releases the interpreter.
func (e *Expr) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.env.Stop()
}

// lispFloat formats v so the reader parses it back as the same float.
func lispFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func registerMath(env *zygo.Zlisp) {
	unary := map[string]func(float64) float64{
		"sqrt": math.Sqrt,
		"abs":  math.Abs,
		"sin":  math.Sin,
		"cos":  math.Cos,
	}
	for name, fn := range unary {
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s: want 1 argument, got %d", name, len(args))
			}
			a, err := toFloat64(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &zygo.SexpFloat{Val: fn(a)}, nil
		})
	}
	binary := map[string]func(a, b float64) float64{
		"hypot": math.Hypot,
		"min":   math.Min,
		"max":   math.Max,
	}
	for name, fn := range binary {
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s: want 2 arguments, got %d", name, len(args))
			}
			a, err := toFloat64(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			b, err := toFloat64(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &zygo.SexpFloat{Val: fn(a, b)}, nil
		})
	}
}
