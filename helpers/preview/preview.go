// Package preview rasterizes marching cubes meshes to images offscreen.
package preview

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/mcubes/internal/d3"
	"github.com/soypat/mcubes/render"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"
)

// View describes the camera and output size of a preview.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye       r3.Vec
	Near, Far float64
	// vertical field of view in degrees
	FovY          float64
	Width, Height int
	// Supersample renders at this multiple of the output size and
	// downsamples for antialiasing. Values below 1 are treated as 1.
	Supersample int
}

// DefaultView looks at the origin from (3,3,3) with Z up.
var DefaultView = View{
	Up:          r3.Vec{Z: 1},
	Eye:         d3.Elem(3),
	Near:        1,
	Far:         10,
	FovY:        30,
	Width:       768,
	Height:      432,
	Supersample: 1,
}

var background = fauxgl.HexColor("#FFF8E3")

// Render draws m fitted to a bi-unit cube centered at the origin with a phong
// shader. The object color is taken from the first vertex. Back faces are
// not culled.
func Render(m render.Mesh, v View) (image.Image, error) {
	if m.VertexCount < 3 {
		return nil, errors.New("nothing to preview")
	}
	if v.Width <= 0 || v.Height <= 0 {
		return nil, errors.New("invalid preview size")
	}
	scale := max(v.Supersample, 1)
	var (
		eye    = fauxgl.V(v.Eye.X, v.Eye.Y, v.Eye.Z)
		center = fauxgl.V(v.LookAt.X, v.LookAt.Y, v.LookAt.Z)
		up     = fauxgl.V(v.Up.X, v.Up.Y, v.Up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)
	mesh := fauxglMesh(m)
	mesh.BiUnitCube()

	context := fauxgl.NewContext(v.Width*scale, v.Height*scale)
	context.ClearColorBufferWith(background)
	context.Cull = fauxgl.CullNone
	aspect := float64(v.Width) / float64(v.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(v.FovY, aspect, v.Near, v.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.Color{
		R: float64(m.Colors[0]) / 255,
		G: float64(m.Colors[1]) / 255,
		B: float64(m.Colors[2]) / 255,
		A: 1,
	}
	context.Shader = shader
	context.DrawMesh(mesh)
	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(v.Width), uint(v.Height), img, resize.Bilinear)
	}
	return img, nil
}

// WritePNG renders m and writes it to w as PNG.
func WritePNG(w io.Writer, m render.Mesh, v View) error {
	img, err := Render(m, v)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG renders m to a PNG file at path.
func SavePNG(path string, m render.Mesh, v View) error {
	img, err := Render(m, v)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

// Equal reports whether two PNG encoded images match within delta, a
// normalized tolerance where 0 is a perfect match and 1 a loose one.
func Equal(png1, png2 []byte, delta float64) (bool, error) {
	return cmpimg.EqualApprox("png", png1, png2, delta)
}

// EqualImages is Equal for decoded images.
func EqualImages(a, b image.Image, delta float64) (bool, error) {
	var ba, bb bytes.Buffer
	if err := png.Encode(&ba, a); err != nil {
		return false, err
	}
	if err := png.Encode(&bb, b); err != nil {
		return false, err
	}
	return Equal(ba.Bytes(), bb.Bytes(), delta)
}

func fauxglMesh(m render.Mesh) *fauxgl.Mesh {
	tris := make([]*fauxgl.Triangle, 0, m.VertexCount/3)
	for _, t := range m.Triangles() {
		tri := fauxgl.NewTriangleForPoints(
			fauxgl.V(t.V[0].X, t.V[0].Y, t.V[0].Z),
			fauxgl.V(t.V[1].X, t.V[1].Y, t.V[1].Z),
			fauxgl.V(t.V[2].X, t.V[2].Y, t.V[2].Z),
		)
		tris = append(tris, tri)
	}
	return fauxgl.NewTriangleMesh(tris)
}
