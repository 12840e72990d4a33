package render

import (
	"errors"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// GLTFDocument converts the mesh to a glTF document with a single node. The
// primitive is a non-indexed triangle list with POSITION and normalized
// COLOR_0 attributes.
func GLTFDocument(m Mesh) (*gltf.Document, error) {
	if m.VertexCount == 0 {
		return nil, errEmptyModel
	}
	if len(m.Positions) != 3*m.VertexCount || len(m.Colors) != 4*m.VertexCount {
		return nil, errors.New("mesh buffers do not match vertex count")
	}
	positions := make([][3]float32, m.VertexCount)
	colors := make([][4]uint8, m.VertexCount)
	for i := range positions {
		copy(positions[i][:], m.Positions[3*i:])
		copy(colors[i][:], m.Colors[4*i:])
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "mcubes"
	posAccessor := modeler.WritePosition(doc, positions)
	colorAccessor := modeler.WriteColor(doc, colors)
	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION: posAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
		Material: gltf.Index(0),
	}
	doc.Materials = []*gltf.Material{{
		Name:      "isosurface",
		AlphaMode: gltf.AlphaOpaque,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 1, 1, 1},
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
		// The outward side depends on the sign convention of the field.
		DoubleSided: true,
	}}
	doc.Meshes = []*gltf.Mesh{{Name: "isosurface", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "isosurface", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

// WriteGLB writes the mesh to w as a binary glTF (GLB) stream.
func WriteGLB(w io.Writer, m Mesh) error {
	doc, err := GLTFDocument(m)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}

// CreateGLB writes the mesh to a binary glTF file at path.
func CreateGLB(path string, m Mesh) error {
	doc, err := GLTFDocument(m)
	if err != nil {
		return err
	}
	return gltf.SaveBinary(doc, path)
}
