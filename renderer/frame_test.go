package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/programs"
	"github.com/stretchr/testify/assert"
)

func TestHologramUniforms(t *testing.T) {
	u := HologramUniforms(anim.Uniforms{
		Time:           1.5,
		Color:          mgl32.Vec3{0.1, 0.2, 0.3},
		GlitchStrength: 4,
		SoundFreq:      25.5,
	})
	assert.Equal(t, programs.HologramUniforms{
		Time:           1.5,
		Color:          mgl32.Vec3{0.1, 0.2, 0.3},
		GlitchStrength: 4,
		SoundFreq:      25.5,
	}, u)
}

func TestUniformsFor(t *testing.T) {
	names := func(program string) []string {
		var all []string
		for _, set := range uniformsFor(program) {
			n, err := programs.UniformNames(set)
			assert.NoError(t, err)
			all = append(all, n...)
		}
		return all
	}

	hologram := names(programs.Hologram)
	assert.Contains(t, hologram, "modelMatrix")
	assert.Contains(t, hologram, "uSoundFreq")
	assert.NotContains(t, hologram, "uMap")

	assert.Contains(t, names(programs.Standard), "uMetalness")
	assert.Contains(t, names(programs.Points), "uSizeAttenuation")
	assert.Len(t, uniformsFor("unknown"), 1, "only the matrices")
}

func TestDrawOrder(t *testing.T) {
	a := &Drawable{Name: "a", Material: programs.Material{Transparent: true}}
	b := &Drawable{Name: "b"}
	c := &Drawable{Name: "c", Material: programs.Material{Transparent: true}}
	d := &Drawable{Name: "d"}

	var names []string
	for _, x := range drawOrder([]*Drawable{a, b, c, d}) {
		names = append(names, x.Name)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, names)
}

func TestBlends(t *testing.T) {
	assert.False(t, blends(programs.Material{}))
	assert.True(t, blends(programs.Material{Transparent: true}))
	assert.True(t, blends(programs.Material{Blending: programs.AdditiveBlending}))
}

func TestFlipRows(t *testing.T) {
	pix := []uint8{
		1, 1,
		2, 2,
		3, 3,
	}
	FlipRows(pix, 2, 3)
	assert.Equal(t, []uint8{3, 3, 2, 2, 1, 1}, pix)

	even := []uint8{1, 2, 3, 4}
	FlipRows(even, 1, 4)
	assert.Equal(t, []uint8{4, 3, 2, 1}, even)

	FlipRows(nil, 4, 0)
}

func TestPointScale(t *testing.T) {
	assert.Equal(t, float32(400), PointScale(800))
}
