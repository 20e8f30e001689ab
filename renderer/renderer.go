// Package renderer draws scenes with OpenGL. Anything that touches GL must
// run on the thread that owns the context.
package renderer

import (
	"fmt"
	"image"
	"log"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/geometry"
	"github.com/stewi1014/glhologram/programs"
	"github.com/stewi1014/glhologram/scenes"
)

// Drawable is one scene object on the GPU. Meshes is empty until its
// geometry is available.
type Drawable struct {
	Name     string
	Material programs.Material
	Meshes   []*Mesh

	// index into anim.Frame.Objects
	object int
}

type Renderer struct {
	programs  map[string]*Program
	textures  map[string]*Texture
	drawables []*Drawable

	ambient mgl32.Vec3

	width, height int
	pixelRatio    float32
}

// New compiles the programs the scene uses. Every object draws nothing
// until its geometry is attached with SetModel.
func New(s *scenes.Scene) (*Renderer, error) {
	r := &Renderer{
		programs:   make(map[string]*Program),
		textures:   make(map[string]*Texture),
		ambient:    s.Ambient,
		pixelRatio: 1,
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	for i, o := range s.Objects {
		if _, ok := r.programs[o.Material.Program]; !ok {
			p, err := programs.GetProgram(o.Material.Program)
			if err != nil {
				r.Delete()
				return nil, err
			}
			prog, err := LoadProgram(p)
			if err != nil {
				r.Delete()
				return nil, err
			}
			if err := prog.Locate(uniformsFor(p.Name)...); err != nil {
				r.Delete()
				return nil, err
			}
			r.programs[p.Name] = prog
		}

		r.drawables = append(r.drawables, &Drawable{
			Name:     o.Object.Name,
			Material: o.Material,
			object:   i,
		})
	}

	return r, nil
}

// SetModel attaches loaded geometry to the named object.
func (r *Renderer) SetModel(name string, m *geometry.Model) error {
	for _, d := range r.drawables {
		if d.Name != name {
			continue
		}
		for _, old := range d.Meshes {
			old.Delete()
		}
		d.Meshes = UploadModel(m)
		return nil
	}
	return fmt.Errorf("no object named %q", name)
}

// SetTexture uploads img under the name materials refer to it by.
func (r *Renderer) SetTexture(name string, img image.Image) {
	if old, ok := r.textures[name]; ok {
		old.Delete()
	}
	r.textures[name] = UploadTexture(img)
}

// Resize sets the framebuffer size in pixels.
func (r *Renderer) Resize(width, height int, pixelRatio float64) {
	r.width, r.height = width, height
	if pixelRatio > 0 {
		r.pixelRatio = float32(pixelRatio)
	}
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Draw renders one frame into the bound framebuffer.
func (r *Renderer) Draw(frame anim.Frame) error {
	c := frame.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1)
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	hologram := HologramUniforms(frame.Uniforms)

	for _, d := range drawOrder(r.drawables) {
		if len(d.Meshes) == 0 || d.object >= len(frame.Objects) {
			continue
		}

		prog := r.programs[d.Material.Program]
		prog.Use()
		r.applyState(d.Material)

		var uniforms any
		switch d.Material.Program {
		case programs.Hologram:
			uniforms = &hologram
		case programs.Standard:
			u := programs.StandardUniforms{
				Color:     d.Material.Color,
				Ambient:   r.ambient,
				Opacity:   d.Material.Opacity,
				Metalness: d.Material.Metalness,
				Roughness: d.Material.Roughness,
				HasMap:    r.bindTexture(d.Material.Texture),
			}
			uniforms = &u
		case programs.Points:
			u := programs.PointsUniforms{
				Color:           d.Material.Color,
				Size:            d.Material.Size * r.pixelRatio,
				Scale:           PointScale(r.height),
				SizeAttenuation: d.Material.SizeAttenuation,
				HasMap:          r.bindTexture(d.Material.Texture),
			}
			uniforms = &u
		default:
			return fmt.Errorf("%w: %q", programs.ErrUnknownProgram, d.Material.Program)
		}
		if err := prog.SetUniforms(uniforms); err != nil {
			return err
		}

		model := frame.Objects[d.object].Model
		for _, m := range d.Meshes {
			matrices := programs.Matrices{
				Model:          model.Mul4(m.Local),
				View:           frame.View,
				Projection:     frame.Projection,
				CameraPosition: frame.CameraPosition,
			}
			if err := prog.SetUniforms(&matrices); err != nil {
				return err
			}
			m.Draw()
		}
	}

	gl.BindVertexArray(0)
	gl.DepthMask(true)
	return nil
}

func (r *Renderer) bindTexture(name string) bool {
	if name == "" {
		return false
	}
	t, ok := r.textures[name]
	if !ok {
		return false
	}
	t.Bind(0)
	return true
}

func (r *Renderer) applyState(m programs.Material) {
	if blends(m) {
		gl.Enable(gl.BLEND)
		if m.Blending == programs.AdditiveBlending {
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
		} else {
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		}
	} else {
		gl.Disable(gl.BLEND)
	}

	gl.DepthMask(m.DepthWrite)

	if m.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
}

// ReadPixels copies the framebuffer into an image, top row first.
func (r *Renderer) ReadPixels() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	if r.width <= 0 || r.height <= 0 {
		return img
	}

	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	FlipRows(img.Pix, img.Stride, r.height)

	// the clear colour is opaque, but blended fragments can lower alpha
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

// Delete frees every GL object owned by r.
func (r *Renderer) Delete() {
	for _, d := range r.drawables {
		for _, m := range d.Meshes {
			m.Delete()
		}
	}
	for _, t := range r.textures {
		t.Delete()
	}
	for _, p := range r.programs {
		p.Delete()
	}
	r.drawables = nil
	r.textures = map[string]*Texture{}
	r.programs = map[string]*Program{}
	log.Println("renderer resources released")
}
