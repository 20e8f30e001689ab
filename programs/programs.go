package programs

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrUnknownProgram = errors.New("unknown shader program")

//go:embed shaders/default.vert
var defaultVertexShader string

//go:embed shaders/hologram.vert
var hologramVertexShader string

//go:embed shaders/hologram.frag
var hologramFragmentShader string

//go:embed shaders/standard.frag
var standardFragmentShader string

//go:embed shaders/points.vert
var pointsVertexShader string

//go:embed shaders/points.frag
var pointsFragmentShader string

const (
	Hologram = "hologram"
	Standard = "standard"
	Points   = "points"
)

func init() {
	NewProgram(Program{
		Name:           Hologram,
		VertexShader:   hologramVertexShader,
		FragmentShader: hologramFragmentShader,
	})
	NewProgram(Program{
		Name:           Standard,
		VertexShader:   defaultVertexShader,
		FragmentShader: standardFragmentShader,
	})
	NewProgram(Program{
		Name:           Points,
		VertexShader:   pointsVertexShader,
		FragmentShader: pointsFragmentShader,
	})
}

type Program struct {
	Name           string
	VertexShader   string
	FragmentShader string
}

var programs = map[string]Program{}

// NewProgram registers p, replacing any program of the same name.
func NewProgram(p Program) error {
	if p.Name == "" {
		return errors.New("program has no name")
	}
	programs[p.Name] = p
	return nil
}

func GetProgram(name string) (Program, error) {
	p, ok := programs[name]
	if !ok {
		return Program{}, fmt.Errorf("%w: %q (have %s)", ErrUnknownProgram, name, strings.Join(Names(), ", "))
	}
	return p, nil
}

func Names() []string {
	names := make([]string, 0, len(programs))
	for name := range programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Blending int

const (
	NormalBlending Blending = iota
	AdditiveBlending
)

// Material describes how an object is drawn.
type Material struct {
	Program     string
	Blending    Blending
	Transparent bool
	DepthWrite  bool
	DoubleSided bool

	// Texture names a texture asset; empty means untextured.
	Texture string

	Color     mgl32.Vec3
	Opacity   float32
	Metalness float32
	Roughness float32

	// points only
	Size            float32
	SizeAttenuation bool
}
