package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera looking at a target.
type Camera struct {
	Fov  float32 // vertical field of view, degrees
	Near float32
	Far  float32

	aspect   float32
	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3
}

func New(fov, aspect, near, far float32, position mgl32.Vec3) *Camera {
	return &Camera{
		Fov:      fov,
		Near:     near,
		Far:      far,
		aspect:   aspect,
		position: position,
		up:       mgl32.Vec3{0, 1, 0},
	}
}

func (c *Camera) Aspect() float32 {
	return c.aspect
}

// SetAspect replaces the aspect ratio; it does not accumulate.
func (c *Camera) SetAspect(aspect float32) {
	if aspect > 0 && !math.IsInf(float64(aspect), 0) {
		c.aspect = aspect
	}
}

func (c *Camera) Position() mgl32.Vec3 { return c.position }
func (c *Camera) Target() mgl32.Vec3   { return c.target }

func (c *Camera) SetPosition(p mgl32.Vec3) { c.position = p }
func (c *Camera) SetTarget(t mgl32.Vec3)   { c.target = t }

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.target, c.up)
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.aspect, c.Near, c.Far)
}

// Viewport tracks the drawing target size.
type Viewport struct {
	Width, Height int
	PixelRatio    float64
	MaxPixelRatio float64

	camera *Camera
}

func NewViewport(c *Camera, maxPixelRatio float64) *Viewport {
	return &Viewport{
		PixelRatio:    1,
		MaxPixelRatio: maxPixelRatio,
		camera:        c,
	}
}

// Resize handles one window-resize event. The camera aspect becomes
// width/height and the target becomes exactly width x height; the device
// pixel ratio is clamped to MaxPixelRatio. Non-positive sizes are ignored.
func (v *Viewport) Resize(width, height int, devicePixelRatio float64) bool {
	if width <= 0 || height <= 0 {
		return false
	}

	v.Width, v.Height = width, height
	v.PixelRatio = ClampPixelRatio(devicePixelRatio, v.MaxPixelRatio)
	if v.camera != nil {
		v.camera.SetAspect(float32(width) / float32(height))
	}
	return true
}

// Framebuffer returns the drawing buffer size in device pixels.
func (v *Viewport) Framebuffer() (width, height int) {
	return int(math.Round(float64(v.Width) * v.PixelRatio)),
		int(math.Round(float64(v.Height) * v.PixelRatio))
}

func ClampPixelRatio(ratio, max float64) float64 {
	if !(ratio > 0) {
		return 1
	}
	if max > 0 && ratio > max {
		return max
	}
	return ratio
}
