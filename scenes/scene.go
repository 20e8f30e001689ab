// Package scenes describes the demo scenes: which objects exist, how they
// move, how they are drawn and which assets they need.
package scenes

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/config"
	"github.com/stewi1014/glhologram/geometry"
	"github.com/stewi1014/glhologram/programs"
)

var ErrUnknownScene = errors.New("unknown scene")

// Setup builds a scene from the runtime configuration.
type Setup interface {
	Name() string
	Build(cfg config.Config) (*Scene, error)
}

var setups []Setup

// Register adds s to the registry. Scenes register themselves from init.
func Register(s Setup) {
	setups = append(setups, s)
}

// Names lists the registered scenes in registration order.
func Names() []string {
	names := make([]string, len(setups))
	for i, s := range setups {
		names[i] = s.Name()
	}
	return names
}

func Get(name string) (Setup, error) {
	for _, s := range setups {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
}

// Build looks up the named scene and builds it.
func Build(cfg config.Config) (*Scene, error) {
	setup, err := Get(cfg.Scene)
	if err != nil {
		return nil, err
	}
	s, err := setup.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("build scene %s: %w", cfg.Scene, err)
	}
	return s, nil
}

// Texture names materials refer to.
const (
	TextureMap  = "map"
	ParticleMap = "particle"
)

type GeometryKind int

const (
	SphereGeometry GeometryKind = iota
	TorusKnotGeometry
	ParticlesGeometry
	ModelGeometry
)

// Geometry says where an object's meshes come from.
type Geometry struct {
	Kind GeometryKind

	// Path is the model file for ModelGeometry.
	Path string

	Radius          float32
	Tube            float32
	WidthSegments   int
	HeightSegments  int
	TubularSegments int
	RadialSegments  int
	P, Q            int

	Count  int
	Spread float32
	Seed   uint64
}

// Procedural reports whether the geometry can be built without loading anything.
func (g Geometry) Procedural() bool {
	return g.Kind != ModelGeometry
}

// Build makes the mesh for procedural geometry.
func (g Geometry) Build() (*geometry.Model, error) {
	var m geometry.Mesh
	switch g.Kind {
	case SphereGeometry:
		m = geometry.Sphere(g.Radius, g.WidthSegments, g.HeightSegments)
	case TorusKnotGeometry:
		m = geometry.TorusKnot(g.Radius, g.Tube, g.TubularSegments, g.RadialSegments, g.P, g.Q)
	case ParticlesGeometry:
		var rng *rand.Rand
		if g.Seed != 0 {
			rng = rand.New(rand.NewPCG(g.Seed, g.Seed>>1|1))
		}
		m = geometry.Particles(g.Count, g.Spread, rng)
	default:
		return nil, fmt.Errorf("geometry kind %d is not procedural", g.Kind)
	}
	return &geometry.Model{Meshes: []geometry.Mesh{m}}, nil
}

func Sphere() Geometry {
	return Geometry{Kind: SphereGeometry, Radius: 1, WidthSegments: 32, HeightSegments: 16}
}

// ObjectSpec pairs an animated object with its geometry and material.
type ObjectSpec struct {
	Object   *anim.Object
	Geometry Geometry
	Material programs.Material
}

// PanelFields selects which controls the debug panel offers.
type PanelFields struct {
	ClearColor     bool
	Color          bool
	GlitchStrength bool
	Rotation       bool
}

// Scene is everything needed to bootstrap one demo.
type Scene struct {
	Name    string
	Params  anim.Params
	Objects []ObjectSpec
	Panel   PanelFields

	// Textures maps texture names used by materials to file paths.
	Textures map[string]string
	Audio    string

	// Ambient is the summed colour of the scene's ambient lights.
	Ambient mgl32.Vec3

	MinDistance float32
	MaxDistance float32
}

// Tracked returns the animated objects in draw order.
func (s *Scene) Tracked() []*anim.Object {
	objects := make([]*anim.Object, len(s.Objects))
	for i, o := range s.Objects {
		objects[i] = o.Object
	}
	return objects
}

// Model returns the first object loaded from a model file, if any.
func (s *Scene) Model() (*ObjectSpec, bool) {
	for i := range s.Objects {
		if s.Objects[i].Geometry.Kind == ModelGeometry {
			return &s.Objects[i], true
		}
	}
	return nil, false
}

// finish applies the per-scene config overrides to s, then resolves every
// asset path against the assets directory.
func finish(cfg config.Config, s *Scene) (*Scene, error) {
	if err := overrides(cfg, s); err != nil {
		return nil, err
	}
	resolveAll(cfg, s)
	return s, nil
}

func overrides(cfg config.Config, s *Scene) error {
	o := cfg.SceneAssets(s.Name)

	if m, ok := s.Model(); ok && o.Model != "" {
		m.Geometry.Path = o.Model
	}
	if _, ok := s.Textures[TextureMap]; ok && o.Texture != "" {
		s.Textures[TextureMap] = o.Texture
	}
	if _, ok := s.Textures[ParticleMap]; ok && o.Particle != "" {
		s.Textures[ParticleMap] = o.Particle
	}
	if o.Audio != "" {
		s.Audio = o.Audio
	}
	if o.ClearColor != "" {
		c, err := config.ParseColor(o.ClearColor)
		if err != nil {
			return err
		}
		s.Params.ClearColor = c
	}
	if o.Color != "" {
		c, err := config.ParseColor(o.Color)
		if err != nil {
			return err
		}
		s.Params.Color = c
	}
	if cfg.Controls.MinDistance > 0 {
		s.MinDistance = cfg.Controls.MinDistance
	}
	if cfg.Controls.MaxDistance > 0 {
		s.MaxDistance = cfg.Controls.MaxDistance
	}
	return nil
}

func resolveAll(cfg config.Config, s *Scene) {
	s.Audio = cfg.Resolve(s.Audio)
	for name, path := range s.Textures {
		s.Textures[name] = cfg.Resolve(path)
	}
	for i := range s.Objects {
		if s.Objects[i].Geometry.Kind == ModelGeometry {
			s.Objects[i].Geometry.Path = cfg.Resolve(s.Objects[i].Geometry.Path)
		}
	}
}
