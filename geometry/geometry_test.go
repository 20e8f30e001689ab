package geometry

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkIndices(t *testing.T, m Mesh) {
	t.Helper()
	require.Zero(t, len(m.Indices)%3, "triangle list")
	for _, i := range m.Indices {
		require.Less(t, int(i), len(m.Vertices))
	}
}

func TestSphere(t *testing.T) {
	m := Sphere(1, 32, 16)

	assert.Len(t, m.Vertices, 33*17)
	// two pole rings of one triangle per segment, the rest two per quad
	assert.Len(t, m.Indices, 3*(32*16*2-2*32))
	checkIndices(t, m)

	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Position.Len(), 1e-5)
		assert.InDelta(t, 1, v.Normal.Len(), 1e-5)
		assert.GreaterOrEqual(t, v.UV[0], float32(0))
		assert.LessOrEqual(t, v.UV[1], float32(1))
	}
}

func TestSphereClampsSegments(t *testing.T) {
	m := Sphere(2, 0, 0)
	assert.Len(t, m.Vertices, 4*3)
	checkIndices(t, m)
}

func TestTorusKnot(t *testing.T) {
	m := TorusKnot(0.6, 0.25, 128, 32, 2, 3)

	assert.Len(t, m.Vertices, 129*33)
	assert.Len(t, m.Indices, 128*32*6)
	checkIndices(t, m)

	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Normal.Len(), 1e-4)
		// centreline radius is at most 1.5*radius, plus the tube
		assert.LessOrEqual(t, v.Position.Len(), float32(0.6*1.5+0.25+1e-4))
	}
}

func TestParticles(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	m := Particles(1000, 20, rng)

	assert.Equal(t, Points, m.Primitive)
	assert.Len(t, m.Vertices, 1000)
	assert.Empty(t, m.Indices)
	assert.Equal(t, 1000, m.Count())

	for _, v := range m.Vertices {
		for axis := range 3 {
			assert.GreaterOrEqual(t, v.Position[axis], float32(-10))
			assert.Less(t, v.Position[axis], float32(10))
		}
	}

	again := Particles(1000, 20, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, m.Vertices, again.Vertices, "same seed, same cloud")
}

func TestInterleaved(t *testing.T) {
	m := Sphere(1, 3, 2)
	data := m.Interleaved()

	require.Len(t, data, len(m.Vertices)*FloatsPerVertex)
	v := m.Vertices[5]
	off := 5 * FloatsPerVertex
	assert.Equal(t, []float32{
		v.Position[0], v.Position[1], v.Position[2],
		v.Normal[0], v.Normal[1], v.Normal[2],
		v.UV[0], v.UV[1],
	}, data[off:off+FloatsPerVertex])
	assert.Equal(t, len(m.Indices), m.Count())
}
