package renderer

import (
	"fmt"
	"log"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glhologram/programs"
)

// Attribute locations shared by every vertex shader.
const (
	positionAttrib = 0
	normalAttrib   = 1
	uvAttrib       = 2
)

// Program is a linked shader program with its uniform locations cached.
type Program struct {
	Name string
	id   uint32

	locations map[string]int32
}

// LoadProgram compiles and links p.
func LoadProgram(p programs.Program) (*Program, error) {
	vertexShader, err := compileShader(p.VertexShader+"\x00", gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%s vertex shader: %w", p.Name, err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(p.FragmentShader+"\x00", gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%s fragment shader: %w", p.Name, err)
	}
	defer gl.DeleteShader(fragmentShader)

	id := gl.CreateProgram()
	gl.AttachShader(id, vertexShader)
	gl.AttachShader(id, fragmentShader)

	gl.BindAttribLocation(id, positionAttrib, gl.Str("position\x00"))
	gl.BindAttribLocation(id, normalAttrib, gl.Str("normal\x00"))
	gl.BindAttribLocation(id, uvAttrib, gl.Str("uv\x00"))
	gl.BindFragDataLocation(id, 0, gl.Str("outputColor\x00"))

	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetProgramInfoLog(id, l, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("failed to link program %s: %v", p.Name, log)
	}

	return &Program{
		Name:      p.Name,
		id:        id,
		locations: make(map[string]int32),
	}, nil
}

func (p *Program) Use() {
	gl.UseProgram(p.id)
}

func (p *Program) Delete() {
	gl.DeleteProgram(p.id)
}

// Locate looks up and caches the locations of every uniform in the given
// uniform structs. Uniforms the shader does not declare are reported once.
func (p *Program) Locate(sets ...any) error {
	for _, v := range sets {
		names, err := programs.UniformNames(v)
		if err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
		for _, name := range names {
			if p.location(name) < 0 {
				log.Printf("%s: uniform %s is unused", p.Name, name)
			}
		}
	}
	return nil
}

func (p *Program) location(name string) int32 {
	loc, ok := p.locations[name]
	if !ok {
		loc = gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
		p.locations[name] = loc
	}
	return loc
}

// SetUniforms uploads every tagged field of the struct pointed to by v. The
// program must be in use. Uniforms the shader does not declare are skipped.
func (p *Program) SetUniforms(v any) error {
	fields, err := programs.Fields(v)
	if err != nil {
		return err
	}

	for _, field := range fields {
		loc := p.location(field.Name)
		if loc < 0 {
			continue
		}
		setUniform(loc, field.Name, field.Value)
	}
	return nil
}

func setUniform(loc int32, name string, f reflect.Value) {
	ptr := f.Addr().UnsafePointer()
	count := int32(1)

SwitchElem:
	switch f.Type() {
	case reflect.TypeOf(mgl32.Vec2{}):
		gl.Uniform2fv(loc, count, (*float32)(ptr))
		return
	case reflect.TypeOf(mgl32.Vec3{}):
		gl.Uniform3fv(loc, count, (*float32)(ptr))
		return
	case reflect.TypeOf(mgl32.Vec4{}):
		gl.Uniform4fv(loc, count, (*float32)(ptr))
		return
	case reflect.TypeOf(mgl32.Mat3{}):
		gl.UniformMatrix3fv(loc, count, false, (*float32)(ptr))
		return
	case reflect.TypeOf(mgl32.Mat4{}):
		gl.UniformMatrix4fv(loc, count, false, (*float32)(ptr))
		return
	case reflect.TypeOf(int32(0)):
		gl.Uniform1iv(loc, count, (*int32)(ptr))
		return
	case reflect.TypeOf(uint32(0)):
		gl.Uniform1uiv(loc, count, (*uint32)(ptr))
		return
	case reflect.TypeOf(float32(0)):
		gl.Uniform1fv(loc, count, (*float32)(ptr))
		return
	case reflect.TypeOf(false):
		var b int32
		if f.Bool() {
			b = 1
		}
		gl.Uniform1i(loc, b)
		return
	}

	if f.Kind() == reflect.Array && f.Len() > 0 {
		count = int32(f.Len())
		f = f.Index(0)
		ptr = f.Addr().UnsafePointer()
		goto SwitchElem
	}

	log.Printf("unsupported uniform type %v for %s", f.Type(), name)
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	defer runtime.KeepAlive(source)
	cstring, free := gl.Strs(source)
	defer free()

	shader := gl.CreateShader(shaderType)
	gl.ShaderSource(shader, 1, cstring, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetShaderInfoLog(shader, l, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile: %v", log)
	}

	return shader, nil
}
