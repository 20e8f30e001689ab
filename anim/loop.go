// Package anim drives the per-frame shader uniforms and object transforms
// from elapsed time and audio amplitude.
package anim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glhologram/config"
)

var ErrInvalidScale = errors.New("amplitude scale must be positive")

// Clock reports monotonic elapsed seconds, starting at 0.
type Clock interface {
	Elapsed() float64
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Elapsed() float64 {
	return time.Since(c.start).Seconds()
}

// Amplituder supplies the spectral average of the playing audio. ok is false
// while the audio is not yet available.
type Amplituder interface {
	AverageFrequency() (avg float64, ok bool)
}

// Controls is a camera manipulator updated once per frame before rendering.
type Controls interface {
	Update() bool
}

// Camera exposes the matrices the renderer needs.
type Camera interface {
	View() mgl32.Mat4
	Projection() mgl32.Mat4
	Position() mgl32.Vec3
}

// Params are the values tunable from the debug panel.
type Params struct {
	ClearColor     mgl32.Vec3
	Color          mgl32.Vec3
	GlitchStrength float64
	Rotation       mgl32.Vec3
}

// Uniforms is the hologram shader uniform set.
type Uniforms struct {
	Time           float64
	Color          mgl32.Vec3
	GlitchStrength float64
	SoundFreq      float64
}

// Object is a scene object whose transform is advanced every tick.
type Object struct {
	Name   string
	Base   Transform
	Motion Motion

	// PanelRotation makes the base rotation follow Params.Rotation.
	PanelRotation bool

	Transform Transform
}

// ObjectFrame is an object's state as of one tick.
type ObjectFrame struct {
	Name      string
	Transform Transform
	Model     mgl32.Mat4
}

// Frame holds everything published by one tick.
type Frame struct {
	Elapsed    float64
	Uniforms   Uniforms
	ClearColor mgl32.Vec3
	Objects    []ObjectFrame

	View           mgl32.Mat4
	Projection     mgl32.Mat4
	CameraPosition mgl32.Vec3
}

type Options struct {
	// Scale divides the raw analyser average before it is published as uSoundFreq.
	Scale          float64
	GlitchStrength config.Range
	Rotation       config.Range
}

// Loop owns the Params and the uniform set. It is not safe for concurrent
// use; every method must be called from the thread that renders.
type Loop struct {
	opts     Options
	clock    Clock
	amp      Amplituder
	controls Controls
	camera   Camera

	params   Params
	staged   *Params
	uniforms Uniforms
	objects  []*Object
}

// NewLoop builds a loop. amp, controls and camera may be nil.
func NewLoop(
	opts Options,
	params Params,
	clock Clock,
	amp Amplituder,
	controls Controls,
	camera Camera,
	objects ...*Object,
) (*Loop, error) {
	if !(opts.Scale > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, opts.Scale)
	}
	if clock == nil {
		clock = NewSystemClock()
	}

	l := &Loop{
		opts:     opts,
		clock:    clock,
		amp:      amp,
		controls: controls,
		camera:   camera,
		objects:  objects,
	}
	l.apply(params)

	return l, nil
}

// Params returns the active parameters.
func (l *Loop) Params() Params {
	return l.params
}

// Uniforms returns the uniform set as of the last tick.
func (l *Loop) Uniforms() Uniforms {
	return l.uniforms
}

// Stage queues new parameters. They take effect on the next Tick; a later
// Stage before that tick replaces an earlier one.
func (l *Loop) Stage(p Params) {
	l.staged = &p
}

func (l *Loop) apply(p Params) {
	if g := l.opts.GlitchStrength; g != (config.Range{}) {
		p.GlitchStrength = g.Clamp(p.GlitchStrength)
	}
	if r := l.opts.Rotation; r != (config.Range{}) {
		for i := range p.Rotation {
			p.Rotation[i] = float32(r.Clamp(float64(p.Rotation[i])))
		}
	}
	l.params = p
	l.uniforms.Color = p.Color
	l.uniforms.GlitchStrength = p.GlitchStrength
}

// Tick advances one frame. It never blocks and never fails.
func (l *Loop) Tick() Frame {
	t := l.clock.Elapsed()

	if l.staged != nil {
		l.apply(*l.staged)
		l.staged = nil
	}

	l.uniforms.Time = t
	l.uniforms.SoundFreq = 0
	if l.amp != nil {
		if raw, ok := l.amp.AverageFrequency(); ok {
			l.uniforms.SoundFreq = Normalize(raw, l.opts.Scale)
		}
	}

	frame := Frame{
		Elapsed:    t,
		Uniforms:   l.uniforms,
		ClearColor: l.params.ClearColor,
		Objects:    make([]ObjectFrame, len(l.objects)),
	}

	for i, o := range l.objects {
		base := o.Base
		if o.PanelRotation {
			base.Rotation = l.params.Rotation
		}

		motion := o.Motion
		if motion == nil {
			motion = Still
		}

		o.Transform = motion(base, t)
		frame.Objects[i] = ObjectFrame{
			Name:      o.Name,
			Transform: o.Transform,
			Model:     o.Transform.Matrix(),
		}
	}

	if l.controls != nil {
		l.controls.Update()
	}

	if l.camera != nil {
		frame.View = l.camera.View()
		frame.Projection = l.camera.Projection()
		frame.CameraPosition = l.camera.Position()
	} else {
		frame.View = mgl32.Ident4()
		frame.Projection = mgl32.Ident4()
	}

	return frame
}

// Normalize maps a raw analyser average onto the uSoundFreq scale. Anything
// that is not a finite, non-negative number becomes 0.
func Normalize(raw, scale float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 || !(scale > 0) {
		return 0
	}
	return raw / scale
}

// Scheduler paces the loop. Next blocks until the next frame is due and
// reports false when the host wants to stop.
type Scheduler interface {
	Next(ctx context.Context) bool
}

// Run ticks and renders once per scheduled frame until ctx is cancelled or
// the scheduler stops. A render error ends the loop.
func (l *Loop) Run(ctx context.Context, s Scheduler, render func(Frame) error) error {
	for {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		if !s.Next(ctx) {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			return nil
		}

		if err := render(l.Tick()); err != nil {
			return fmt.Errorf("render frame: %w", err)
		}
	}
}
