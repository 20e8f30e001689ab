package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCamera() *Camera {
	return New(25, 1, 0.1, 100, mgl32.Vec3{7, 7, 7})
}

func TestResizeSetsAspectAndSize(t *testing.T) {
	c := newTestCamera()
	v := NewViewport(c, 2)

	require.True(t, v.Resize(1920, 1080, 1))
	assert.Equal(t, float32(1920)/float32(1080), c.Aspect())
	assert.Equal(t, 1920, v.Width)
	assert.Equal(t, 1080, v.Height)
}

func TestRepeatedResizeDoesNotDrift(t *testing.T) {
	c := newTestCamera()
	v := NewViewport(c, 2)

	sizes := [][2]int{{800, 600}, {1024, 768}, {333, 777}, {800, 600}}
	for range 50 {
		for _, s := range sizes {
			v.Resize(s[0], s[1], 1.5)
			assert.Equal(t, float32(s[0])/float32(s[1]), c.Aspect())
			assert.Equal(t, s[0], v.Width)
			assert.Equal(t, s[1], v.Height)
		}
	}
}

func TestResizeIgnoresEmpty(t *testing.T) {
	c := newTestCamera()
	v := NewViewport(c, 2)
	v.Resize(640, 480, 1)

	assert.False(t, v.Resize(640, 0, 1))
	assert.False(t, v.Resize(0, 480, 1))
	assert.Equal(t, float32(640)/float32(480), c.Aspect())
	assert.Equal(t, 480, v.Height)
}

func TestPixelRatioClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1, 1},
		{1.5, 1.5},
		{2, 2},
		{3, 2},
		{0, 1},
		{math.NaN(), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampPixelRatio(tt.in, 2), "ClampPixelRatio(%v)", tt.in)
	}

	v := NewViewport(newTestCamera(), 2)
	v.Resize(100, 50, 3)
	w, h := v.Framebuffer()
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)
}

func TestProjectionUsesAspect(t *testing.T) {
	c := newTestCamera()
	c.SetAspect(2)
	want := mgl32.Perspective(mgl32.DegToRad(25), 2, 0.1, 100)
	assert.True(t, c.Projection().ApproxEqual(want))
}

func TestOrbitWithoutInputKeepsPosition(t *testing.T) {
	c := newTestCamera()
	o := NewOrbit(c)

	o.Update()
	assert.True(t, c.Position().ApproxEqualThreshold(mgl32.Vec3{7, 7, 7}, 1e-4), "got %v", c.Position())
	assert.False(t, o.Update())
}

func TestOrbitDistanceLimits(t *testing.T) {
	c := newTestCamera()
	o := NewOrbit(c)
	o.MinDistance, o.MaxDistance = 2, 10

	o.Update()
	assert.InDelta(t, 10, o.Distance(), 1e-4, "initial distance is clamped to the maximum")

	for range 200 {
		o.Wheel(-1)
		o.Update()
		assert.GreaterOrEqual(t, o.Distance(), 2-1e-4)
	}
	assert.InDelta(t, 2, o.Distance(), 1e-4)

	for range 200 {
		o.Wheel(1)
		o.Update()
		assert.LessOrEqual(t, o.Distance(), 10+1e-4)
	}
	assert.InDelta(t, 10, o.Distance(), 1e-4)
}

func TestOrbitRotateKeepsDistance(t *testing.T) {
	c := newTestCamera()
	o := NewOrbit(c)
	o.SetViewHeight(800)
	start := o.Distance()

	o.PointerDown(100, 100)
	o.PointerMove(300, 150)
	o.PointerUp()
	o.PointerMove(900, 900)

	assert.True(t, o.Update())
	assert.InDelta(t, start, o.Distance(), 1e-3)
	assert.False(t, o.Dragging())
}

func TestOrbitDampingEasesOut(t *testing.T) {
	c := newTestCamera()
	o := NewOrbit(c)
	o.Damping = true
	o.SetViewHeight(800)

	o.Rotate(200, 0)

	var moves []float32
	prev := c.Position()
	for range 10 {
		require.True(t, o.Update())
		moves = append(moves, c.Position().Sub(prev).Len())
		prev = c.Position()
	}

	for i := 1; i < len(moves); i++ {
		assert.Less(t, moves[i], moves[i-1], "step %d", i)
	}
}

func TestOrbitPolarClamp(t *testing.T) {
	c := newTestCamera()
	o := NewOrbit(c)
	o.SetViewHeight(100)

	o.Rotate(0, 1000)
	o.Update()

	pos := c.Position()
	assert.False(t, math.IsNaN(float64(pos[0])))
	assert.Greater(t, pos[1], float32(0), "camera stays above the target pole")
}
