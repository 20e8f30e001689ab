package renderer

import (
	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/programs"
)

// HologramUniforms narrows the loop's uniform set for upload.
func HologramUniforms(u anim.Uniforms) programs.HologramUniforms {
	return programs.HologramUniforms{
		Time:           float32(u.Time),
		Color:          u.Color,
		GlitchStrength: float32(u.GlitchStrength),
		SoundFreq:      float32(u.SoundFreq),
	}
}

// uniformsFor returns the uniform sets Draw uploads for a program.
func uniformsFor(program string) []any {
	sets := []any{&programs.Matrices{}}
	switch program {
	case programs.Hologram:
		sets = append(sets, &programs.HologramUniforms{})
	case programs.Standard:
		sets = append(sets, &programs.StandardUniforms{})
	case programs.Points:
		sets = append(sets, &programs.PointsUniforms{})
	}
	return sets
}

// PointScale is the size attenuation factor for a framebuffer height.
func PointScale(framebufferHeight int) float32 {
	return float32(framebufferHeight) / 2
}

// drawOrder returns opaque drawables first, then transparent ones, keeping
// scene order within each group.
func drawOrder(ds []*Drawable) []*Drawable {
	ordered := make([]*Drawable, 0, len(ds))
	for _, d := range ds {
		if !d.Material.Transparent {
			ordered = append(ordered, d)
		}
	}
	for _, d := range ds {
		if d.Material.Transparent {
			ordered = append(ordered, d)
		}
	}
	return ordered
}

// blends reports whether m is drawn with blending enabled.
func blends(m programs.Material) bool {
	return m.Transparent || m.Blending == programs.AdditiveBlending
}

// FlipRows reverses the row order of pix in place. GL reads pixels bottom
// row first.
func FlipRows(pix []uint8, stride, height int) {
	tmp := make([]uint8, stride)
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
