package asset

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stewi1014/glhologram/geometry"
)

var ErrNoMeshes = errors.New("model has no meshes")

// LoadModel reads a .gltf or .glb file and flattens its default scene into
// meshes, each carrying its accumulated node transform.
func LoadModel(path string) (*geometry.Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	return FlattenDocument(doc)
}

func FlattenDocument(doc *gltf.Document) (*geometry.Model, error) {
	model := &geometry.Model{}

	roots, ok := sceneRoots(doc)
	if !ok {
		// no scene graph, take every mesh as-is
		for i := range doc.Meshes {
			if err := appendMesh(model, doc, i, mgl32.Ident4()); err != nil {
				return nil, err
			}
		}
	}

	for _, root := range roots {
		if err := walkNode(model, doc, root, mgl32.Ident4(), 0); err != nil {
			return nil, err
		}
	}

	if len(model.Meshes) == 0 {
		return nil, ErrNoMeshes
	}
	return model, nil
}

func sceneRoots(doc *gltf.Document) ([]int, bool) {
	if len(doc.Scenes) == 0 {
		return nil, false
	}
	scene := 0
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		scene = *doc.Scene
	}
	return doc.Scenes[scene].Nodes, true
}

const maxNodeDepth = 64

func walkNode(model *geometry.Model, doc *gltf.Document, index int, parent mgl32.Mat4, depth int) error {
	if index < 0 || index >= len(doc.Nodes) {
		return fmt.Errorf("node %d out of range", index)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", index, maxNodeDepth)
	}

	node := doc.Nodes[index]
	world := parent.Mul4(nodeMatrix(node))

	if node.Mesh != nil {
		if err := appendMesh(model, doc, *node.Mesh, world); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := walkNode(model, doc, child, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func nodeMatrix(node *gltf.Node) mgl32.Mat4 {
	m := node.MatrixOrDefault()
	if m != gltf.DefaultMatrix {
		var out mgl32.Mat4
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()

	rotation := mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}

	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func appendMesh(model *geometry.Model, doc *gltf.Document, index int, world mgl32.Mat4) error {
	if index < 0 || index >= len(doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", index)
	}

	mesh := doc.Meshes[index]
	for i, prim := range mesh.Primitives {
		m, err := readPrimitive(doc, prim)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
		}
		m.Name = mesh.Name
		m.Local = world
		model.Meshes = append(model.Meshes, m)
	}
	return nil
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (geometry.Mesh, error) {
	m := geometry.Mesh{}

	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		m.Primitive = geometry.Triangles
	case gltf.PrimitivePoints:
		m.Primitive = geometry.Points
	default:
		return m, fmt.Errorf("unsupported primitive mode %v", prim.Mode)
	}

	posIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return m, errors.New("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
	if err != nil {
		return m, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if i, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[i], nil)
		if err != nil {
			return m, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs [][2]float32
	if i, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[i], nil)
		if err != nil {
			return m, fmt.Errorf("read texture coordinates: %w", err)
		}
	}

	m.Vertices = make([]geometry.Vertex, len(positions))
	for i, p := range positions {
		v := geometry.Vertex{
			Position: p,
			Normal:   mgl32.Vec3{0, 1, 0},
		}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.UV = uvs[i]
		}
		m.Vertices[i] = v
	}

	if prim.Indices != nil {
		m.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return m, fmt.Errorf("read indices: %w", err)
		}
		for _, idx := range m.Indices {
			if int(idx) >= len(m.Vertices) {
				return m, fmt.Errorf("index %d out of range of %d vertices", idx, len(m.Vertices))
			}
		}
	}

	return m, nil
}
