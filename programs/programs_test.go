package programs

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisteredPrograms(t *testing.T) {
	assert.Equal(t, []string{Hologram, Points, Standard}, Names())

	for _, name := range Names() {
		p, err := GetProgram(name)
		require.NoError(t, err)
		assert.Contains(t, p.VertexShader, "#version 410 core")
		assert.Contains(t, p.FragmentShader, "out vec4 outputColor;")
	}

	_, err := GetProgram("mandelbrot")
	assert.ErrorIs(t, err, ErrUnknownProgram)
	assert.ErrorContains(t, err, "have hologram, points, standard")

	assert.Error(t, NewProgram(Program{}))
}

var uniformDecl = regexp.MustCompile(`uniform\s+\w+\s+(\w+);`)

func declared(sources ...string) map[string]bool {
	names := map[string]bool{}
	for _, src := range sources {
		for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
			names[m[1]] = true
		}
	}
	return names
}

// Every tagged uniform must exist in its program, or its location would be
// -1 and the upload silently dropped.
func TestUniformsMatchShaders(t *testing.T) {
	tests := []struct {
		program  string
		uniforms []any
	}{
		{Hologram, []any{&Matrices{}, &HologramUniforms{}}},
		{Standard, []any{&StandardUniforms{}}},
		{Points, []any{&PointsUniforms{}}},
	}

	for _, tt := range tests {
		t.Run(tt.program, func(t *testing.T) {
			p, err := GetProgram(tt.program)
			require.NoError(t, err)
			have := declared(p.VertexShader, p.FragmentShader)

			for _, u := range tt.uniforms {
				names, err := UniformNames(u)
				require.NoError(t, err)
				for _, name := range names {
					assert.True(t, have[name], "%s does not declare %s", tt.program, name)
				}
			}
		})
	}
}

func TestFields(t *testing.T) {
	type embedded struct {
		Matrices
		Extra    float32 `uniform:"uExtra"`
		skipped  float32 `uniform:"uSkipped"`
		Untagged float32
	}

	v := &embedded{}
	fields, err := Fields(v)
	require.NoError(t, err)

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
		assert.True(t, f.Value.CanAddr())
	}
	assert.Equal(t, []string{"modelMatrix", "viewMatrix", "projectionMatrix", "cameraPosition", "uExtra"}, names)

	fields[4].Value.SetFloat(3)
	assert.Equal(t, float32(3), v.Extra)
	_ = v.skipped

	_, err = Fields(Matrices{})
	assert.Error(t, err)
}
