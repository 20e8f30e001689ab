package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "hologram", cfg.Scene)
	assert.Equal(t, 32, cfg.Audio.FFTSize)
	assert.Equal(t, 10.0, cfg.Audio.Scale)
	assert.Equal(t, 2.0, cfg.Window.MaxPixelRatio)
	assert.Equal(t, Range{Min: 1, Max: 10, Step: 0.1}, cfg.Panel.GlitchStrength)
	assert.Equal(t, Range{Min: 0, Max: 10, Step: 0.01}, cfg.Panel.Rotation)
}

func TestParseLayersOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
scene = "witch"

[audio]
scale = 20

[scenes.witch]
model = "witch/scene.gltf"
clear_color = "#000000"
`))
	require.NoError(t, err)

	assert.Equal(t, "witch", cfg.Scene)
	assert.Equal(t, 20.0, cfg.Audio.Scale)
	assert.Equal(t, 32, cfg.Audio.FFTSize, "untouched fields keep their defaults")
	assert.Equal(t, "witch/scene.gltf", cfg.SceneAssets("witch").Model)
	assert.Equal(t, Scene{}, cfg.SceneAssets("hologram"))
	require.NoError(t, cfg.Validate())
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`sceen = "typo"`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero scale", func(c *Config) { c.Audio.Scale = 0 }},
		{"negative scale", func(c *Config) { c.Audio.Scale = -10 }},
		{"fft not power of two", func(c *Config) { c.Audio.FFTSize = 48 }},
		{"fft too small", func(c *Config) { c.Audio.FFTSize = 16 }},
		{"smoothing above one", func(c *Config) { c.Audio.Smoothing = 1.5 }},
		{"inverted decibels", func(c *Config) { c.Audio.MinDecibels = -10 }},
		{"inverted glitch range", func(c *Config) { c.Panel.GlitchStrength = Range{Min: 10, Max: 1} }},
		{"unknown backend", func(c *Config) { c.Backend = "vulkan" }},
		{"zero pixel ratio", func(c *Config) { c.Window.MaxPixelRatio = 0 }},
		{"inverted distance", func(c *Config) { c.Controls.MinDistance, c.Controls.MaxDistance = 10, 2 }},
		{"bad colour", func(c *Config) { c.Scenes = map[string]Scene{"witch": {Color: "blue"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holo.toml")
	require.NoError(t, os.WriteFile(path, []byte(`backend = "glfw"`), 0o644))

	t.Setenv("HOLO_CONFIG", path)
	t.Setenv("HOLO_SCENE", "witch")
	t.Setenv("HOLO_ASSETS", "/srv/assets")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "glfw", cfg.Backend)
	assert.Equal(t, "witch", cfg.Scene)
	assert.Equal(t, "/srv/assets", cfg.Assets)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOLO_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))
	_, err := Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolve(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("static", "robo.wav"), cfg.Resolve("robo.wav"))
	assert.Equal(t, "/abs/robo.wav", cfg.Resolve("/abs/robo.wav"))
	assert.Equal(t, "", cfg.Resolve(""))
}

func TestColours(t *testing.T) {
	c, err := ParseColor("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, c)

	assert.Equal(t, "#70c1ff", HexColor(MustColor("#70c1ff")))

	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}

func TestRangeClamp(t *testing.T) {
	r := Range{Min: 1, Max: 10}
	assert.Equal(t, 1.0, r.Clamp(0))
	assert.Equal(t, 5.5, r.Clamp(5.5))
	assert.Equal(t, 10.0, r.Clamp(11))
}
