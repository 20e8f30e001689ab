// Package geometry builds meshes: procedural primitives and the containers
// loaded models are flattened into.
package geometry

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

type Primitive uint8

const (
	Triangles Primitive = iota
	Points
)

// FloatsPerVertex is the interleaved layout: position(3), normal(3), uv(2).
const FloatsPerVertex = 8

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Mesh is indexed when Indices is non-empty.
type Mesh struct {
	Name      string
	Primitive Primitive
	Vertices  []Vertex
	Indices   []uint32

	// Local is the mesh's transform relative to its model root.
	Local mgl32.Mat4
}

// Model is a group of meshes loaded from one file.
type Model struct {
	Meshes []Mesh
}

// Interleaved packs the vertices for upload.
func (m *Mesh) Interleaved() []float32 {
	data := make([]float32, 0, len(m.Vertices)*FloatsPerVertex)
	for _, v := range m.Vertices {
		data = append(data,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV[0], v.UV[1],
		)
	}
	return data
}

// Count is the number of elements a draw call covers.
func (m *Mesh) Count() int {
	if len(m.Indices) > 0 {
		return len(m.Indices)
	}
	return len(m.Vertices)
}

// Sphere is a UV sphere; widthSegments >= 3 and heightSegments >= 2. UVs
// follow glTF: v is 0 at the top pole.
func Sphere(radius float32, widthSegments, heightSegments int) Mesh {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	m := Mesh{Name: "sphere", Local: mgl32.Ident4()}
	grid := make([][]uint32, heightSegments+1)

	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		grid[iy] = make([]uint32, widthSegments+1)

		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)

			dir := mgl32.Vec3{
				float32(-math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi)),
				float32(math.Cos(v * math.Pi)),
				float32(math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi)),
			}

			grid[iy][ix] = uint32(len(m.Vertices))
			m.Vertices = append(m.Vertices, Vertex{
				Position: dir.Mul(radius),
				Normal:   safeNormalize(dir),
				UV:       mgl32.Vec2{float32(u), float32(v)},
			})
		}
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]

			// the poles collapse to a single triangle per segment
			if iy != 0 {
				m.Indices = append(m.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				m.Indices = append(m.Indices, b, c, d)
			}
		}
	}

	return m
}

// TorusKnot is a (p, q) torus knot tube.
func TorusKnot(radius, tube float32, tubularSegments, radialSegments, p, q int) Mesh {
	tubularSegments = max(tubularSegments, 3)
	radialSegments = max(radialSegments, 3)

	m := Mesh{Name: "torusknot", Local: mgl32.Ident4()}

	for i := 0; i <= tubularSegments; i++ {
		u := float64(i) / float64(tubularSegments) * float64(p) * 2 * math.Pi

		p1 := knotPoint(u, p, q, float64(radius))
		p2 := knotPoint(u+0.01, p, q, float64(radius))

		tangent := p2.Sub(p1)
		n := p2.Add(p1)
		binormal := tangent.Cross(n)
		n = binormal.Cross(tangent)
		binormal = safeNormalize(binormal)
		n = safeNormalize(n)

		for j := 0; j <= radialSegments; j++ {
			v := float64(j) / float64(radialSegments) * 2 * math.Pi
			cx := float32(-float64(tube) * math.Cos(v))
			cy := float32(float64(tube) * math.Sin(v))

			pos := p1.Add(n.Mul(cx)).Add(binormal.Mul(cy))
			m.Vertices = append(m.Vertices, Vertex{
				Position: pos,
				Normal:   safeNormalize(pos.Sub(p1)),
				UV: mgl32.Vec2{
					float32(i) / float32(tubularSegments),
					float32(j) / float32(radialSegments),
				},
			})
		}
	}

	stride := uint32(radialSegments + 1)
	for j := uint32(1); j <= uint32(tubularSegments); j++ {
		for i := uint32(1); i <= uint32(radialSegments); i++ {
			a := stride*(j-1) + (i - 1)
			b := stride*j + (i - 1)
			c := stride*j + i
			d := stride*(j-1) + i
			m.Indices = append(m.Indices, a, b, d, b, c, d)
		}
	}

	return m
}

func knotPoint(u float64, p, q int, radius float64) mgl32.Vec3 {
	quOverP := float64(q) / float64(p) * u
	cs := math.Cos(quOverP)
	return mgl32.Vec3{
		float32(radius * (2 + cs) * 0.5 * math.Cos(u)),
		float32(radius * (2 + cs) * 0.5 * math.Sin(u)),
		float32(radius * math.Sin(quOverP) * 0.5),
	}
}

// Particles scatters count points uniformly in a cube of side spread centred
// on the origin.
func Particles(count int, spread float32, rng *rand.Rand) Mesh {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	m := Mesh{
		Name:      "particles",
		Primitive: Points,
		Vertices:  make([]Vertex, count),
		Local:     mgl32.Ident4(),
	}
	for i := range m.Vertices {
		for axis := range 3 {
			m.Vertices[i].Position[axis] = (rng.Float32() - 0.5) * spread
		}
		m.Vertices[i].Normal = mgl32.Vec3{0, 1, 0}
	}
	return m
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Normalize()
}
