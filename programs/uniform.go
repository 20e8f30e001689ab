package programs

import (
	"fmt"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniform structs map fields onto GLSL uniforms through `uniform:"name"` tags.
// Untagged fields are skipped.

type Matrices struct {
	Model          mgl32.Mat4 `uniform:"modelMatrix"`
	View           mgl32.Mat4 `uniform:"viewMatrix"`
	Projection     mgl32.Mat4 `uniform:"projectionMatrix"`
	CameraPosition mgl32.Vec3 `uniform:"cameraPosition"`
}

type HologramUniforms struct {
	Time           float32    `uniform:"uTime"`
	Color          mgl32.Vec3 `uniform:"uColor"`
	GlitchStrength float32    `uniform:"uGlitchStrength"`
	SoundFreq      float32    `uniform:"uSoundFreq"`
}

type StandardUniforms struct {
	Color     mgl32.Vec3 `uniform:"uColor"`
	Ambient   mgl32.Vec3 `uniform:"uAmbient"`
	Opacity   float32    `uniform:"uOpacity"`
	Metalness float32    `uniform:"uMetalness"`
	Roughness float32    `uniform:"uRoughness"`
	Map       int32      `uniform:"uMap"`
	HasMap    bool       `uniform:"uHasMap"`
}

type PointsUniforms struct {
	Color           mgl32.Vec3 `uniform:"uColor"`
	Size            float32    `uniform:"uSize"`
	Scale           float32    `uniform:"uScale"`
	SizeAttenuation bool       `uniform:"uSizeAttenuation"`
	Map             int32      `uniform:"uMap"`
	HasMap          bool       `uniform:"uHasMap"`
}

// Field is one tagged uniform found in a struct.
type Field struct {
	Name  string
	Value reflect.Value
}

// Fields lists the tagged fields of the struct pointed to by v, recursing
// into embedded structs. Values are addressable.
func Fields(v any) ([]Field, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("uniforms must be a pointer to a struct, got %T", v)
	}
	return appendFields(nil, rv.Elem()), nil
}

func appendFields(fields []Field, v reflect.Value) []Field {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			fields = appendFields(fields, v.Field(i))
			continue
		}

		name := f.Tag.Get("uniform")
		if name == "" || !f.IsExported() {
			continue
		}
		fields = append(fields, Field{Name: name, Value: v.Field(i)})
	}
	return fields
}

// UniformNames returns the uniform names of the struct pointed to by v.
func UniformNames(v any) ([]string, error) {
	fields, err := Fields(v)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names, nil
}
