package anim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glhologram/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct{ t float64 }

func (c *manualClock) Elapsed() float64 { return c.t }

// sequenceAmp returns one sample per call, then repeats the last one.
type sequenceAmp struct {
	samples []float64
	ready   bool
}

func (a *sequenceAmp) AverageFrequency() (float64, bool) {
	if !a.ready || len(a.samples) == 0 {
		return 0, false
	}
	v := a.samples[0]
	if len(a.samples) > 1 {
		a.samples = a.samples[1:]
	}
	return v, true
}

type countingControls struct{ updates int }

func (c *countingControls) Update() bool {
	c.updates++
	return true
}

var testOptions = Options{
	Scale:          10,
	GlitchStrength: config.Range{Min: 1, Max: 10, Step: 0.1},
	Rotation:       config.Range{Min: 0, Max: 10},
}

var testParams = Params{
	ClearColor:     mgl32.Vec3{0.1, 0.1, 0.2},
	Color:          mgl32.Vec3{0.4, 0.7, 1},
	GlitchStrength: 1,
	Rotation:       mgl32.Vec3{5.5, 2.25, 0.1},
}

func newTestLoop(t *testing.T, clock Clock, amp Amplituder, objects ...*Object) *Loop {
	t.Helper()
	l, err := NewLoop(testOptions, testParams, clock, amp, nil, nil, objects...)
	require.NoError(t, err)
	return l
}

func TestNewLoopRejectsScale(t *testing.T) {
	for _, scale := range []float64{0, -10, math.NaN()} {
		_, err := NewLoop(Options{Scale: scale}, Params{}, nil, nil, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidScale)
	}
}

func TestTickPublishesElapsedTime(t *testing.T) {
	clock := &manualClock{}
	l := newTestLoop(t, clock, nil)

	for _, tt := range []float64{0, 0.016, 1, 12.345678, 3600.125} {
		clock.t = tt
		frame := l.Tick()
		assert.Equal(t, tt, frame.Uniforms.Time)
		assert.Equal(t, tt, frame.Elapsed)
		assert.Equal(t, tt, l.Uniforms().Time)
	}
}

func TestTickNormalizesAmplitude(t *testing.T) {
	amp := &sequenceAmp{samples: []float64{0, 80, 255}, ready: true}
	l := newTestLoop(t, &manualClock{}, amp)

	var got []float64
	for range 3 {
		got = append(got, l.Tick().Uniforms.SoundFreq)
	}
	assert.Equal(t, []float64{0, 8, 25.5}, got)
}

func TestTickAmplitudeRange(t *testing.T) {
	for raw := 0; raw <= 255; raw++ {
		amp := &sequenceAmp{samples: []float64{float64(raw)}, ready: true}
		l := newTestLoop(t, &manualClock{}, amp)

		freq := l.Tick().Uniforms.SoundFreq
		assert.Equal(t, float64(raw)/10, freq)
		assert.GreaterOrEqual(t, freq, 0.0)
	}
}

func TestTickWithoutAudio(t *testing.T) {
	clock := &manualClock{}
	pending := &sequenceAmp{samples: []float64{math.NaN()}}

	for name, amp := range map[string]Amplituder{
		"nil source":     nil,
		"pending source": pending,
	} {
		t.Run(name, func(t *testing.T) {
			l := newTestLoop(t, clock, amp)
			for i := range 5 {
				clock.t = float64(i) / 60
				assert.Equal(t, 0.0, l.Tick().Uniforms.SoundFreq)
			}
		})
	}
}

func TestAudioBecomingReadyTakesEffect(t *testing.T) {
	amp := &sequenceAmp{samples: []float64{50}}
	l := newTestLoop(t, &manualClock{}, amp)
	assert.Equal(t, 0.0, l.Tick().Uniforms.SoundFreq)

	amp.ready = true
	assert.Equal(t, 5.0, l.Tick().Uniforms.SoundFreq)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw, scale, want float64
	}{
		{0, 10, 0},
		{80, 10, 8},
		{255, 10, 25.5},
		{255, 5, 51},
		{-3, 10, 0},
		{math.NaN(), 10, 0},
		{math.Inf(1), 10, 0},
		{100, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.raw, tt.scale), "Normalize(%v, %v)", tt.raw, tt.scale)
	}
}

func TestStageAppliesOnNextTick(t *testing.T) {
	clock := &manualClock{t: 2}
	amp := &sequenceAmp{samples: []float64{40}, ready: true}
	l := newTestLoop(t, clock, amp)

	before := l.Tick().Uniforms
	assert.Equal(t, 1.0, before.GlitchStrength)

	p := l.Params()
	p.GlitchStrength = 7.3
	l.Stage(p)

	assert.Equal(t, 1.0, l.Uniforms().GlitchStrength, "staged params must not apply synchronously")

	after := l.Tick().Uniforms
	assert.Equal(t, 7.3, after.GlitchStrength)
	assert.Equal(t, before.Time, after.Time)
	assert.Equal(t, before.Color, after.Color)
	assert.Equal(t, before.SoundFreq, after.SoundFreq)
}

func TestStageGlitchWithinRange(t *testing.T) {
	l := newTestLoop(t, &manualClock{}, nil)

	for v := 1.0; v <= 10; v += 0.5 {
		p := l.Params()
		p.GlitchStrength = v
		l.Stage(p)
		assert.Equal(t, v, l.Tick().Uniforms.GlitchStrength)
	}
}

func TestStageClampsOutOfRange(t *testing.T) {
	l := newTestLoop(t, &manualClock{}, nil)

	p := l.Params()
	p.GlitchStrength = 42
	p.Rotation = mgl32.Vec3{-1, 11, 3}
	l.Stage(p)
	l.Tick()

	assert.Equal(t, 10.0, l.Params().GlitchStrength)
	assert.Equal(t, mgl32.Vec3{0, 10, 3}, l.Params().Rotation)
}

func TestLatestStageWins(t *testing.T) {
	l := newTestLoop(t, &manualClock{}, nil)

	p := l.Params()
	p.GlitchStrength = 3
	l.Stage(p)
	p.GlitchStrength = 4
	l.Stage(p)

	assert.Equal(t, 4.0, l.Tick().Uniforms.GlitchStrength)
}

func TestTickRotatesObjects(t *testing.T) {
	clock := &manualClock{}
	knot := &Object{
		Name:   "knot",
		Base:   Transform{Position: mgl32.Vec3{3, 0, 0}},
		Motion: Spin(mgl32.Vec3{-0.1, 0.2, 0}),
	}
	l := newTestLoop(t, clock, nil, knot)

	for _, tt := range []float64{0, 1, 10, 100} {
		clock.t = tt
		frame := l.Tick()
		require.Len(t, frame.Objects, 1)

		rot := frame.Objects[0].Transform.Rotation
		assert.InDelta(t, -0.1*tt, rot[0], 1e-4)
		assert.InDelta(t, 0.2*tt, rot[1], 1e-4)
		assert.Equal(t, float32(0), rot[2])
		assert.Equal(t, mgl32.Vec3{3, 0, 0}, frame.Objects[0].Transform.Position)
		assert.Equal(t, knot.Transform, frame.Objects[0].Transform)
	}
}

func TestPanelRotationFollowsParams(t *testing.T) {
	witch := &Object{Name: "witch", PanelRotation: true}
	l := newTestLoop(t, &manualClock{}, nil, witch)

	assert.Equal(t, testParams.Rotation, l.Tick().Objects[0].Transform.Rotation)

	p := l.Params()
	p.Rotation = mgl32.Vec3{1, 2, 3}
	l.Stage(p)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, l.Tick().Objects[0].Transform.Rotation)
}

func TestTickUpdatesControls(t *testing.T) {
	controls := &countingControls{}
	l, err := NewLoop(testOptions, testParams, &manualClock{}, nil, controls, nil)
	require.NoError(t, err)

	for range 4 {
		l.Tick()
	}
	assert.Equal(t, 4, controls.updates)
}

type countScheduler struct {
	frames int
	cancel context.CancelFunc
}

func (s *countScheduler) Next(ctx context.Context) bool {
	if s.frames == 0 {
		if s.cancel != nil {
			s.cancel()
			return false
		}
		return false
	}
	s.frames--
	return true
}

func TestRunStopsWhenSchedulerDone(t *testing.T) {
	l := newTestLoop(t, &manualClock{}, nil)

	rendered := 0
	err := l.Run(context.Background(), &countScheduler{frames: 3}, func(Frame) error {
		rendered++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, rendered)
}

func TestRunStopsOnCancel(t *testing.T) {
	l := newTestLoop(t, &manualClock{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	rendered := 0
	err := l.Run(ctx, &countScheduler{frames: 2, cancel: cancel}, func(Frame) error {
		rendered++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, rendered)
}

func TestRunReturnsRenderError(t *testing.T) {
	l := newTestLoop(t, &manualClock{}, nil)
	boom := errors.New("boom")

	err := l.Run(context.Background(), &countScheduler{frames: 10}, func(Frame) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestSystemClockMonotonic(t *testing.T) {
	c := NewSystemClock()
	a := c.Elapsed()
	b := c.Elapsed()
	assert.GreaterOrEqual(t, a, 0.0)
	assert.GreaterOrEqual(t, b, a)
}
