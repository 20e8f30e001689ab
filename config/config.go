package config

import (
	"bytes"
	"errors"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is read when HOLO_CONFIG is unset. A missing file is not an error.
const DefaultPath = "glhologram.toml"

var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime configuration. Every field has a default, so an
// empty or missing file yields a working setup.
type Config struct {
	Scene   string `toml:"scene"`
	Backend string `toml:"backend"` // "gtk" or "glfw"
	Assets  string `toml:"assets"`  // directory relative asset paths are resolved against
	Debug   bool   `toml:"debug"`

	Window   Window   `toml:"window"`
	Camera   Camera   `toml:"camera"`
	Controls Controls `toml:"controls"`
	Audio    Audio    `toml:"audio"`
	Panel    Panel    `toml:"panel"`

	// Scenes overrides per-scene asset paths and colours, keyed by scene name.
	Scenes map[string]Scene `toml:"scenes"`
}

type Window struct {
	Width         int     `toml:"width"`
	Height        int     `toml:"height"`
	MaxPixelRatio float64 `toml:"max_pixel_ratio"`
	FrameRate     int     `toml:"frame_rate"`
}

type Camera struct {
	Fov      float32    `toml:"fov"` // degrees
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Position [3]float32 `toml:"position"`
}

type Controls struct {
	Damping       bool    `toml:"damping"`
	DampingFactor float32 `toml:"damping_factor"`
	RotateSpeed   float32 `toml:"rotate_speed"`
	ZoomSpeed     float32 `toml:"zoom_speed"`
	// MinDistance and MaxDistance of zero defer to the scene.
	MinDistance float32 `toml:"min_distance"`
	MaxDistance float32 `toml:"max_distance"`
}

type Audio struct {
	Enabled     bool    `toml:"enabled"`
	Volume      float64 `toml:"volume"`
	Loop        bool    `toml:"loop"`
	FFTSize     int     `toml:"fft_size"`
	Scale       float64 `toml:"scale"`
	Smoothing   float64 `toml:"smoothing"`
	MinDecibels float64 `toml:"min_decibels"`
	MaxDecibels float64 `toml:"max_decibels"`
	SampleRate  int     `toml:"sample_rate"`
}

// Range is a numeric panel control range.
type Range struct {
	Min  float64 `toml:"min"`
	Max  float64 `toml:"max"`
	Step float64 `toml:"step"`
}

func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

type Panel struct {
	GlitchStrength Range `toml:"glitch_strength"`
	Rotation       Range `toml:"rotation"`
}

type Scene struct {
	Model      string `toml:"model"`
	Texture    string `toml:"texture"`
	Particle   string `toml:"particle"`
	Audio      string `toml:"audio"`
	ClearColor string `toml:"clear_color"`
	Color      string `toml:"color"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Scene:   "hologram",
		Backend: "gtk",
		Assets:  "static",
		Window: Window{
			Width:         1200,
			Height:        800,
			MaxPixelRatio: 2,
			FrameRate:     60,
		},
		Camera: Camera{
			Fov:      25,
			Near:     0.1,
			Far:      100,
			Position: [3]float32{7, 7, 7},
		},
		Controls: Controls{
			Damping:       true,
			DampingFactor: 0.05,
			RotateSpeed:   1,
			ZoomSpeed:     1,
		},
		Audio: Audio{
			Enabled:     true,
			Volume:      0.5,
			Loop:        true,
			FFTSize:     32,
			Scale:       10,
			Smoothing:   0.8,
			MinDecibels: -100,
			MaxDecibels: -30,
			SampleRate:  44100,
		},
		Panel: Panel{
			GlitchStrength: Range{Min: 1, Max: 10, Step: 0.1},
			Rotation:       Range{Min: 0, Max: 10, Step: 0.01},
		},
	}
}

// Load reads the file named by HOLO_CONFIG (or DefaultPath), layers it over
// the defaults, then applies environment overrides.
func Load() (Config, error) {
	path := envStr("HOLO_CONFIG", DefaultPath)

	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
		cfg, err = Default(), nil
	}
	if err != nil {
		return Config{}, err
	}

	cfg.Scene = envStr("HOLO_SCENE", cfg.Scene)
	cfg.Backend = envStr("HOLO_BACKEND", cfg.Backend)
	cfg.Assets = envStr("HOLO_ASSETS", cfg.Assets)
	cfg.Debug = envBool("HOLO_DEBUG", cfg.Debug)

	return cfg, cfg.Validate()
}

func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case "gtk", "glfw":
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}

	if c.Audio.Scale <= 0 {
		return fmt.Errorf("%w: audio scale must be positive, got %v", ErrInvalid, c.Audio.Scale)
	}
	if n := c.Audio.FFTSize; n < 32 || n > 32768 || bits.OnesCount(uint(n)) != 1 {
		return fmt.Errorf("%w: fft size must be a power of two in [32, 32768], got %d", ErrInvalid, n)
	}
	if c.Audio.Smoothing < 0 || c.Audio.Smoothing > 1 {
		return fmt.Errorf("%w: smoothing must be in [0, 1], got %v", ErrInvalid, c.Audio.Smoothing)
	}
	if c.Audio.MinDecibels >= c.Audio.MaxDecibels {
		return fmt.Errorf("%w: min decibels %v not below max decibels %v", ErrInvalid, c.Audio.MinDecibels, c.Audio.MaxDecibels)
	}

	for name, r := range map[string]Range{
		"glitch_strength": c.Panel.GlitchStrength,
		"rotation":        c.Panel.Rotation,
	} {
		if r.Min > r.Max {
			return fmt.Errorf("%w: panel %s range min %v above max %v", ErrInvalid, name, r.Min, r.Max)
		}
	}

	if c.Window.MaxPixelRatio <= 0 {
		return fmt.Errorf("%w: max pixel ratio must be positive", ErrInvalid)
	}
	if c.Window.FrameRate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive", ErrInvalid)
	}
	if c.Controls.MinDistance > 0 && c.Controls.MaxDistance > 0 && c.Controls.MinDistance > c.Controls.MaxDistance {
		return fmt.Errorf("%w: controls min distance above max distance", ErrInvalid)
	}

	for name, s := range c.Scenes {
		for _, hex := range []string{s.ClearColor, s.Color} {
			if hex == "" {
				continue
			}
			if _, err := ParseColor(hex); err != nil {
				return fmt.Errorf("%w: scene %s: %w", ErrInvalid, name, err)
			}
		}
	}

	return nil
}

// SceneAssets returns the overrides for the named scene, if any.
func (c Config) SceneAssets(name string) Scene {
	return c.Scenes[name]
}

// Resolve joins a relative asset path onto the assets directory.
func (c Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Assets, path)
}

// ParseColor parses a "#rrggbb" string into sRGB components in [0,1].
func ParseColor(hex string) (mgl32.Vec3, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("parse colour %q: %w", hex, err)
	}
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}, nil
}

// MustColor is ParseColor for compile-time constants.
func MustColor(hex string) mgl32.Vec3 {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// HexColor formats RGB components as "#rrggbb".
func HexColor(c mgl32.Vec3) string {
	return colorful.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2])}.Clamped().Hex()
}
