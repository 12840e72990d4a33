package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/qmuntal/gltf"
	"github.com/soypat/mcubes/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func testConfig(t *testing.T, output string) config {
	return config{
		n:      12,
		iso:    0,
		shape:  "sphere",
		r:      0.5,
		R:      0.6,
		scale:  4,
		output: filepath.Join(t.TempDir(), output),
		color:  "1,0,0",
	}
}

func TestRunShapes(t *testing.T) {
	for _, shape := range []string{"sphere", "torus", "gyroid", "cube", "drilledbox", "expr"} {
		cfg := testConfig(t, shape+".stl")
		cfg.shape = shape
		switch shape {
		case "cube":
			cfg.iso = 0.5
		case "expr":
			cfg.expr = "(- (sqrt (+ (* x x) (* y y) (* z z))) 0.5)"
		}
		if err := run(cfg); err != nil {
			t.Fatalf("%s: %v", shape, err)
		}
		fp, err := os.Open(cfg.output)
		if err != nil {
			t.Fatal(err)
		}
		model, err := render.ReadSTL(fp)
		fp.Close()
		if err != nil {
			t.Fatalf("%s: %v", shape, err)
		}
		if len(model) == 0 {
			t.Errorf("%s: empty model", shape)
		}
	}
}

func TestRunOutsideNormals(t *testing.T) {
	cfg := testConfig(t, "sphere.stl")
	cfg.center = true
	if err := run(cfg); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(cfg.output)
	if err != nil {
		t.Fatal(err)
	}
	model, err := render.ReadSTL(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	inward := 0
	for _, tri := range model {
		if tri.Degenerate(1e-4) {
			continue
		}
		// Centered on the origin, outward normals point away from it.
		if r3.Dot(tri.Normal(), tri.V[0]) < 0 {
			inward++
		}
	}
	if inward != 0 {
		t.Errorf("%d of %d triangles face inward", inward, len(model))
	}
}

func TestRunStreamMatchesMesh(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, "")
	cfg.shape = "torus"
	cfg.center = true
	cfg.output = filepath.Join(dir, "mesh.stl")
	if err := run(cfg); err != nil {
		t.Fatal(err)
	}
	cfg.stream = true
	cfg.output = filepath.Join(dir, "stream.stl")
	if err := run(cfg); err != nil {
		t.Fatal(err)
	}
	a, err := os.ReadFile(filepath.Join(dir, "mesh.stl"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "stream.stl"))
	if err != nil {
		t.Fatal(err)
	}
	ma, err := render.ReadSTL(bytes.NewReader(a))
	if err != nil {
		t.Fatal(err)
	}
	mb, err := render.ReadSTL(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if len(ma) != len(mb) {
		t.Fatalf("mesh path wrote %d triangles, stream path %d", len(ma), len(mb))
	}
	for i := range ma {
		for j := range ma[i].V {
			if r3.Norm(r3.Sub(ma[i].V[j], mb[i].V[j])) > 1e-5 {
				t.Fatalf("triangle %d differs: %v vs %v", i, ma[i], mb[i])
			}
		}
	}

	cfg.output = filepath.Join(dir, "stream.glb")
	if err := run(cfg); err == nil {
		t.Error("expected error streaming GLB")
	}
}

func TestRunGLBZstd(t *testing.T) {
	cfg := testConfig(t, "gyroid.glb.zst")
	cfg.shape = "gyroid"
	cfg.png = filepath.Join(filepath.Dir(cfg.output), "gyroid.png")
	if err := run(cfg); err != nil {
		t.Fatal(err)
	}
	compressed, err := os.ReadFile(cfg.output)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		t.Fatal(err)
	}
	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(raw)).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Meshes) != 1 {
		t.Errorf("got %d meshes", len(doc.Meshes))
	}
	if _, err := os.Stat(cfg.png); err != nil {
		t.Error(err)
	}
}

func TestRunResample(t *testing.T) {
	cfg := testConfig(t, "resampled.glb")
	cfg.resample = true
	if err := run(cfg); err != nil {
		t.Fatal(err)
	}
}

func TestRunErrors(t *testing.T) {
	for name, mod := range map[string]func(*config){
		"grid":      func(c *config) { c.n = 1 },
		"shape":     func(c *config) { c.shape = "dodecahedron" },
		"color":     func(c *config) { c.color = "1,0" },
		"channel":   func(c *config) { c.color = "2,0,0" },
		"format":    func(c *config) { c.output = filepath.Join(filepath.Dir(c.output), "out.obj") },
		"empty":     func(c *config) { c.iso = 10 },
		"expr":      func(c *config) { c.shape, c.expr = "expr", "(+ x" },
		"exprempty": func(c *config) { c.shape = "expr" },
	} {
		cfg := testConfig(t, "out.stl")
		mod(&cfg)
		if err := run(cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("1, 0.5,0.2")
	if err != nil {
		t.Fatal(err)
	}
	if c != (render.RGB{1, 0.5, 0.2}) {
		t.Errorf("got %v", c)
	}
}
