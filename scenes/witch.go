package scenes

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/config"
	"github.com/stewi1014/glhologram/programs"
)

func init() {
	Register(witch{})
}

// witch flies a witch model around a moon under a field of stars.
type witch struct{}

func (witch) Name() string { return "witch" }

// WitchDrift is the world Z spin of the witch in radians per second.
const WitchDrift = -0.18

// Stars is the number of particles in the witch scene.
const Stars = 1000

func (w witch) Build(cfg config.Config) (*Scene, error) {
	model := anim.Identity()
	model.Position = mgl32.Vec3{0, 2, -1}
	model.Scale = mgl32.Vec3{0.4, 0.4, 0.4}

	white := mgl32.Vec3{1, 1, 1}

	s := &Scene{
		Name: w.Name(),
		Params: anim.Params{
			ClearColor:     config.MustColor("#1d1f2a"),
			Color:          config.MustColor("#70c1ff"),
			GlitchStrength: 1,
			Rotation:       mgl32.Vec3{5.5, 2.25, 0.1},
		},
		Panel: PanelFields{
			ClearColor: true,
			Rotation:   true,
		},
		Objects: []ObjectSpec{
			{
				Object: &anim.Object{
					Name:   "moon",
					Base:   anim.Identity(),
					Motion: anim.Spin(mgl32.Vec3{0.2, 0, 0}),
				},
				Geometry: Sphere(),
				Material: programs.Material{
					Program:    programs.Standard,
					Blending:   programs.AdditiveBlending,
					DepthWrite: true,
					Texture:    TextureMap,
					Color:      config.MustColor("#eb4034"),
					Opacity:    1,
					Metalness:  0.3,
					Roughness:  0.7,
				},
			},
			{
				Object: &anim.Object{
					Name:          "witch",
					Base:          model,
					Motion:        anim.Orbit(2, 0.2, WitchDrift),
					PanelRotation: true,
				},
				Geometry: Geometry{Kind: ModelGeometry, Path: "witch_spy/scene.gltf"},
				Material: programs.Material{
					Program:     programs.Standard,
					DepthWrite:  true,
					DoubleSided: true,
					Color:       white,
					Opacity:     1,
					Metalness:   1,
					Roughness:   1,
				},
			},
			{
				Object: &anim.Object{Name: "stars", Base: anim.Identity()},
				Geometry: Geometry{
					Kind:   ParticlesGeometry,
					Count:  Stars,
					Spread: 20,
				},
				Material: programs.Material{
					Program:         programs.Points,
					Transparent:     true,
					DepthWrite:      false,
					Texture:         ParticleMap,
					Color:           config.MustColor("#88c5ff"),
					Opacity:         1,
					Size:            0.2,
					SizeAttenuation: true,
				},
			},
		},
		Textures: map[string]string{
			TextureMap:  "moontexture.webp",
			ParticleMap: "star.png",
		},
		Audio: "witchsound.mp3",
		// red at 0.8, black at 2 and yellow-green at 2
		Ambient: config.MustColor("#eb4034").Mul(0.8).
			Add(config.MustColor("#000000").Mul(2)).
			Add(config.MustColor("#dbff12").Mul(2)),
		MinDistance: 2,
		MaxDistance: 10,
	}
	return finish(cfg, s)
}
