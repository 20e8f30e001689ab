package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const polarEpsilon = 1e-6

// Orbit rotates, and dollies a camera around its target from pointer
// input. Update must be called once per frame; with damping enabled the
// motion keeps easing out over the following frames.
type Orbit struct {
	Damping       bool
	DampingFactor float64
	RotateSpeed   float64
	ZoomSpeed     float64

	// Zero MaxDistance means unbounded.
	MinDistance float64
	MaxDistance float64

	camera *Camera

	deltaTheta float64
	deltaPhi   float64
	scale      float64

	dragging   bool
	lastX      float64
	lastY      float64
	viewHeight float64
}

func NewOrbit(c *Camera) *Orbit {
	return &Orbit{
		DampingFactor: 0.05,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		camera:        c,
		scale:         1,
		viewHeight:    1,
	}
}

// SetViewHeight sets the pixel height rotation deltas are measured against.
func (o *Orbit) SetViewHeight(h int) {
	if h > 0 {
		o.viewHeight = float64(h)
	}
}

func (o *Orbit) Dragging() bool {
	return o.dragging
}

func (o *Orbit) PointerDown(x, y float64) {
	o.dragging = true
	o.lastX, o.lastY = x, y
}

func (o *Orbit) PointerMove(x, y float64) {
	if !o.dragging {
		return
	}
	o.Rotate(x-o.lastX, y-o.lastY)
	o.lastX, o.lastY = x, y
}

func (o *Orbit) PointerUp() {
	o.dragging = false
}

// Rotate queues a rotation for a pointer movement of dx, dy pixels. A drag
// across the full view height turns the camera once around.
func (o *Orbit) Rotate(dx, dy float64) {
	o.deltaTheta -= 2 * math.Pi * dx / o.viewHeight * o.RotateSpeed
	o.deltaPhi -= 2 * math.Pi * dy / o.viewHeight * o.RotateSpeed
}

// Wheel queues a dolly. Positive steps move away from the target.
func (o *Orbit) Wheel(steps float64) {
	zoom := math.Pow(0.95, o.ZoomSpeed)
	o.scale *= math.Pow(zoom, -steps)
}

func (o *Orbit) Distance() float64 {
	return float64(o.camera.Position().Sub(o.camera.Target()).Len())
}

// Update applies pending input to the camera and reports whether it moved.
func (o *Orbit) Update() bool {
	target := o.camera.Target()
	offset := o.camera.Position().Sub(target)

	radius := float64(offset.Len())
	if radius == 0 {
		radius = polarEpsilon
	}
	theta := math.Atan2(float64(offset[0]), float64(offset[2]))
	phi := math.Acos(clamp(float64(offset[1])/radius, -1, 1))

	if o.Damping {
		theta += o.deltaTheta * o.DampingFactor
		phi += o.deltaPhi * o.DampingFactor
	} else {
		theta += o.deltaTheta
		phi += o.deltaPhi
	}
	phi = clamp(phi, polarEpsilon, math.Pi-polarEpsilon)

	radius *= o.scale
	radius = math.Max(radius, o.MinDistance)
	if o.MaxDistance > 0 {
		radius = math.Min(radius, o.MaxDistance)
	}

	sinPhi := math.Sin(phi)
	next := target.Add(mgl32.Vec3{
		float32(radius * sinPhi * math.Sin(theta)),
		float32(radius * math.Cos(phi)),
		float32(radius * sinPhi * math.Cos(theta)),
	})

	if o.Damping {
		o.deltaTheta *= 1 - o.DampingFactor
		o.deltaPhi *= 1 - o.DampingFactor
	} else {
		o.deltaTheta, o.deltaPhi = 0, 0
	}
	o.scale = 1

	moved := !next.ApproxEqualThreshold(o.camera.Position(), 1e-6)
	o.camera.SetPosition(next)
	return moved
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
