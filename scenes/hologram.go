package scenes

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/config"
	"github.com/stewi1014/glhologram/programs"
)

func init() {
	Register(hologram{})
}

// hologram shows a torus knot, a sphere and Suzanne under the glitch shader,
// driven by robo.wav.
type hologram struct{}

func (hologram) Name() string { return "hologram" }

// HologramMaterial is shared by every object in the hologram scene.
func HologramMaterial() programs.Material {
	return programs.Material{
		Program:     programs.Hologram,
		Blending:    programs.AdditiveBlending,
		Transparent: true,
		DepthWrite:  false,
		DoubleSided: true,
		Opacity:     1,
	}
}

func (h hologram) Build(cfg config.Config) (*Scene, error) {
	spin := anim.Spin(mgl32.Vec3{-0.1, 0.2, 0})
	at := func(x float32) anim.Transform {
		t := anim.Identity()
		t.Position[0] = x
		return t
	}

	s := &Scene{
		Name: h.Name(),
		Params: anim.Params{
			ClearColor:     config.MustColor("#1d1f2a"),
			Color:          config.MustColor("#70c1ff"),
			GlitchStrength: 1,
		},
		Panel: PanelFields{
			ClearColor:     true,
			Color:          true,
			GlitchStrength: true,
		},
		Objects: []ObjectSpec{
			{
				Object: &anim.Object{Name: "torusKnot", Base: at(3), Motion: spin},
				Geometry: Geometry{
					Kind:            TorusKnotGeometry,
					Radius:          0.6,
					Tube:            0.25,
					TubularSegments: 128,
					RadialSegments:  32,
					P:               2,
					Q:               3,
				},
				Material: HologramMaterial(),
			},
			{
				Object:   &anim.Object{Name: "sphere", Base: at(-3), Motion: spin},
				Geometry: Sphere(),
				Material: HologramMaterial(),
			},
			{
				Object:   &anim.Object{Name: "suzanne", Base: anim.Identity(), Motion: spin},
				Geometry: Geometry{Kind: ModelGeometry, Path: "suzanne.glb"},
				Material: HologramMaterial(),
			},
		},
		Textures: map[string]string{},
		Audio:    "robo.wav",
		Ambient:  mgl32.Vec3{1, 1, 1},
	}
	return finish(cfg, s)
}
