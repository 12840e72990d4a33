package preview

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/mcubes"
	"github.com/soypat/mcubes/render"
)

func sphereMesh(t testing.TB, r float64) render.Mesh {
	t.Helper()
	const n = 16
	f, err := mcubes.NewField(n)
	if err != nil {
		t.Fatal(err)
	}
	mcubes.Generate(f, mcubes.Sphere(r))
	m, err := render.MarchingCubes(f, 0, render.Red)
	if err != nil {
		t.Fatal(err)
	}
	return m.FlipWinding()
}

func smallView() View {
	v := DefaultView
	v.Width, v.Height = 160, 90
	v.Supersample = 2
	return v
}

func TestRenderDeterministic(t *testing.T) {
	m := sphereMesh(t, 0.5)
	var b1, b2 bytes.Buffer
	if err := WritePNG(&b1, m, smallView()); err != nil {
		t.Fatal(err)
	}
	if err := WritePNG(&b2, m, smallView()); err != nil {
		t.Fatal(err)
	}
	equal, err := Equal(b1.Bytes(), b2.Bytes(), 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("rendering the same mesh twice gave different images")
	}
}

func TestRenderShowsObject(t *testing.T) {
	img, err := Render(sphereMesh(t, 0.5), smallView())
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 160 || b.Dy() != 90 {
		t.Fatalf("image size %v", b)
	}
	// The mesh is fitted to the view so the center pixel is not background.
	r, g, _, _ := img.At(b.Dx()/2, b.Dy()/2).RGBA()
	if r <= g || g > 0xc000 {
		t.Errorf("center pixel is not red: r=%d g=%d", r, g)
	}
	empty, err := Render(sphereMesh(t, 0.5), View{Width: 0})
	if err == nil || empty != nil {
		t.Error("expected error for zero size view")
	}
	if _, err := Render(render.Mesh{}, smallView()); err == nil {
		t.Error("expected error for empty mesh")
	}
}

func TestSavePNG(t *testing.T) {
	dir := t.TempDir()
	m := sphereMesh(t, 0.5)
	p1 := filepath.Join(dir, "a.png")
	if err := SavePNG(p1, m, smallView()); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(p1)
	if err != nil {
		t.Fatal(err)
	}
	var want bytes.Buffer
	if err := WritePNG(&want, m, smallView()); err != nil {
		t.Fatal(err)
	}
	equal, err := Equal(got, want.Bytes(), 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("saved and written previews differ")
	}
}

func TestEqualImagesDistinguishes(t *testing.T) {
	v := smallView()
	a, err := Render(sphereMesh(t, 0.5), v)
	if err != nil {
		t.Fatal(err)
	}
	f, err := mcubes.NewField(16)
	if err != nil {
		t.Fatal(err)
	}
	mcubes.Generate(f, mcubes.Gyroid(4))
	gm, err := render.MarchingCubes(f, 0, render.RGB{0, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Render(gm, v)
	if err != nil {
		t.Fatal(err)
	}
	equal, err := EqualImages(a, b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if equal {
		t.Error("sphere and gyroid previews compare equal")
	}
}
