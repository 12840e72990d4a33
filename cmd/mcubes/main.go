// Command mcubes samples a scalar field on a uniform grid, extracts an
// isosurface with marching cubes and writes it as STL or GLB.
//
// Usage:
//
//	mcubes [flags]
//
// Outputs ending in .zst are zstd compressed, i.e. -o sphere.glb.zst.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/soypat/mcubes"
	"github.com/soypat/mcubes/helpers/lispfield"
	"github.com/soypat/mcubes/helpers/preview"
	"github.com/soypat/mcubes/helpers/sdfxfield"
	"github.com/soypat/mcubes/internal/d3"
	"github.com/soypat/mcubes/render"
	"gonum.org/v1/gonum/spatial/r3"
)

type config struct {
	n        int
	iso      float64
	shape    string
	r        float64
	R        float64
	scale    float64
	expr     string
	output   string
	png      string
	color    string
	center   bool
	stream   bool
	resample bool
}

func main() {
	var cfg config
	flag.IntVar(&cfg.n, "n", 16, "grid samples per axis")
	flag.Float64Var(&cfg.iso, "iso", 0.5, "isovalue")
	flag.StringVar(&cfg.shape, "shape", "sphere", "field: sphere, torus, gyroid, cube, drilledbox or expr")
	flag.Float64Var(&cfg.r, "r", 0.5, "sphere radius or torus minor radius")
	flag.Float64Var(&cfg.R, "R", 0.6, "torus major radius")
	flag.Float64Var(&cfg.scale, "scale", 4, "gyroid frequency")
	flag.StringVar(&cfg.expr, "expr", "", "lisp expression of x, y and z for -shape expr")
	flag.StringVar(&cfg.output, "o", "mcubes.stl", "output file (.stl or .glb, optionally .zst)")
	flag.StringVar(&cfg.png, "png", "", "optional PNG preview file")
	flag.StringVar(&cfg.color, "color", "1,0,0", "surface color as r,g,b in [0,1]")
	flag.BoolVar(&cfg.center, "center", false, "translate the grid centroid to the origin")
	flag.BoolVar(&cfg.stream, "stream", false, "stream STL triangles without building a mesh")
	flag.BoolVar(&cfg.resample, "resample", false, "resample the extracted surface through a triangle index and extract again")
	flag.Parse()
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config) error {
	start := time.Now()
	f, err := mcubes.NewField(cfg.n)
	if err != nil {
		return err
	}
	if err := generate(f, cfg); err != nil {
		return err
	}
	lo, hi := f.MinMax()
	log.Printf("sampled %s on %d³ grid in %s, range [%g, %g]", cfg.shape, cfg.n, time.Since(start), lo, hi)

	if cfg.stream {
		return streamSTL(f, cfg)
	}
	c, err := parseColor(cfg.color)
	if err != nil {
		return err
	}
	start = time.Now()
	mesh, err := render.MarchingCubes(f, cfg.iso, c)
	if err != nil {
		return err
	}
	log.Printf("extracted %d triangles in %s", mesh.VertexCount/3, time.Since(start))
	if mesh.VertexCount == 0 {
		return fmt.Errorf("isovalue %g outside field range [%g, %g]: empty surface", cfg.iso, lo, hi)
	}
	if cfg.resample {
		mesh, err = resample(mesh, cfg.n, c)
		if err != nil {
			return err
		}
	}
	if flipWinding(cfg.shape) {
		mesh = mesh.FlipWinding()
	}
	if cfg.center {
		mesh = mesh.Translate(d3.Elem(-float64(cfg.n-1) / 2))
	}
	log.Printf("mesh bounds %v, digest %016x", mesh.Bounds(), mesh.Sum64())

	if err := writeMesh(cfg.output, mesh); err != nil {
		return err
	}
	if cfg.png != "" {
		if err := preview.SavePNG(cfg.png, mesh, preview.DefaultView); err != nil {
			return err
		}
		log.Printf("wrote preview %s", cfg.png)
	}
	return nil
}

func generate(f *mcubes.Field, cfg config) error {
	switch cfg.shape {
	case "sphere":
		mcubes.Generate(f, mcubes.Sphere(cfg.r))
	case "torus":
		mcubes.Generate(f, mcubes.Torus(cfg.R, cfg.r))
	case "gyroid":
		mcubes.Generate(f, mcubes.Gyroid(cfg.scale))
	case "cube":
		mcubes.GenerateSolidCube(f)
	case "drilledbox":
		s, err := sdfxfield.DrilledBox(2 * cfg.r)
		if err != nil {
			return err
		}
		mcubes.GenerateSDF(f, s)
	case "expr":
		e, err := lispfield.Compile(cfg.expr)
		if err != nil {
			return err
		}
		defer e.Close()
		mcubes.Generate(f, e.Func())
		if err := e.Err(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown shape %q", cfg.shape)
	}
	return nil
}

// flipWinding reports whether the shape is negative inside, which makes
// marching cubes normals point inward.
func flipWinding(shape string) bool {
	return shape != "cube"
}

func resample(m render.Mesh, n int, c render.RGB) (render.Mesh, error) {
	start := time.Now()
	kd := render.NewKDSDF(m.Triangles())
	f, err := mcubes.NewField(n)
	if err != nil {
		return render.Mesh{}, err
	}
	mcubes.GenerateSDF(f, kd)
	out, err := render.MarchingCubes(f, 0, c)
	if err != nil {
		return render.Mesh{}, err
	}
	log.Printf("resampled to %d triangles in %s", out.VertexCount/3, time.Since(start))
	return out, nil
}

// createOutput opens path for writing, wrapping it in a zstd encoder when it
// ends in .zst. It returns the path with the compression suffix removed.
func createOutput(path string) (io.WriteCloser, string, error) {
	fp, err := os.Create(path)
	if err != nil {
		return nil, "", err
	}
	if !strings.HasSuffix(path, ".zst") {
		return fp, path, nil
	}
	enc, err := zstd.NewWriter(fp, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		fp.Close()
		return nil, "", err
	}
	return &zstdFile{Encoder: enc, f: fp}, strings.TrimSuffix(path, ".zst"), nil
}

type zstdFile struct {
	*zstd.Encoder
	f *os.File
}

func (z *zstdFile) Close() error {
	err := z.Encoder.Close()
	if cerr := z.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeMesh(path string, m render.Mesh) (err error) {
	w, name, err := createOutput(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".stl":
		err = render.WriteMeshSTL(w, m)
	case ".glb":
		err = render.WriteGLB(w, m)
	default:
		err = fmt.Errorf("unsupported output format %q", ext)
	}
	if err == nil {
		log.Printf("wrote %s", path)
	}
	return err
}

func streamSTL(f *mcubes.Field, cfg config) error {
	if strings.ToLower(filepath.Ext(cfg.output)) != ".stl" {
		return fmt.Errorf("streaming writes plain .stl only, got %q", cfg.output)
	}
	start := time.Now()
	u := render.NewUniformRenderer(f, cfg.iso)
	r := &transformRenderer{r: u, flip: flipWinding(cfg.shape)}
	if cfg.center {
		r.offset = d3.Elem(-float64(cfg.n-1) / 2)
	}
	if err := render.CreateSTL(cfg.output, r); err != nil {
		return err
	}
	tris, active := u.Stats()
	log.Printf("streamed %d triangles from %d active cells to %s in %s", tris, active, cfg.output, time.Since(start))
	return nil
}

// transformRenderer flips and translates triangles as they are read.
type transformRenderer struct {
	r      render.Renderer
	flip   bool
	offset r3.Vec
}

func (t *transformRenderer) ReadTriangles(dst []render.Triangle3) (int, error) {
	n, err := t.r.ReadTriangles(dst)
	if t.flip {
		render.FlipWinding(dst[:n])
	}
	if t.offset != (r3.Vec{}) {
		for i := range dst[:n] {
			dst[i] = dst[i].Translate(t.offset)
		}
	}
	return n, err
}

func parseColor(s string) (render.RGB, error) {
	var c render.RGB
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return c, fmt.Errorf("color %q: want r,g,b", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return c, fmt.Errorf("color %q: %w", s, err)
		}
		if v < 0 || v > 1 {
			return c, fmt.Errorf("color %q: channel %g outside [0,1]", s, v)
		}
		c[i] = float32(v)
	}
	return c, nil
}
