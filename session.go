package main

import (
	"fmt"
	"image"
	"log"

	"github.com/faiface/beep"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/asset"
	"github.com/stewi1014/glhologram/audio"
	"github.com/stewi1014/glhologram/camera"
	"github.com/stewi1014/glhologram/config"
	"github.com/stewi1014/glhologram/geometry"
	"github.com/stewi1014/glhologram/renderer"
	"github.com/stewi1014/glhologram/scenes"
)

// Session is the scene state both front ends drive: the animation loop, the
// camera and its controls, the audio source and the GPU resources. It must
// be used from the UI thread only.
type Session struct {
	Config config.Config
	Scene  *scenes.Scene

	Loop     *anim.Loop
	Camera   *camera.Camera
	Viewport *camera.Viewport
	Orbit    *camera.Orbit
	Assets   *asset.Manager

	source *audio.Source
	gpu    *renderer.Renderer

	// every load, keyed by object or texture name
	modelStates   map[string]*asset.State[*geometry.Model]
	textureStates map[string]*asset.State[*image.NRGBA]

	// loads not yet on the current GPU context
	models   asset.Watch[*geometry.Model]
	textures asset.Watch[*image.NRGBA]

	shots []func(*image.NRGBA)
}

// NewSession builds the configured scene. Asset completions are delivered
// through dispatch, which must run them on the UI thread.
func NewSession(cfg config.Config, dispatch asset.Dispatcher) (*Session, error) {
	scene, err := scenes.Build(cfg)
	if err != nil {
		return nil, err
	}

	cam := camera.New(
		cfg.Camera.Fov,
		float32(cfg.Window.Width)/float32(cfg.Window.Height),
		cfg.Camera.Near,
		cfg.Camera.Far,
		mgl32.Vec3(cfg.Camera.Position),
	)

	orbit := camera.NewOrbit(cam)
	orbit.Damping = cfg.Controls.Damping
	orbit.DampingFactor = float64(cfg.Controls.DampingFactor)
	orbit.RotateSpeed = float64(cfg.Controls.RotateSpeed)
	orbit.ZoomSpeed = float64(cfg.Controls.ZoomSpeed)
	orbit.MinDistance = float64(scene.MinDistance)
	orbit.MaxDistance = float64(scene.MaxDistance)

	s := &Session{
		Config:   cfg,
		Scene:    scene,
		Camera:   cam,
		Viewport: camera.NewViewport(cam, cfg.Window.MaxPixelRatio),
		Orbit:    orbit,
		Assets:   asset.NewManager(dispatch),

		modelStates:   make(map[string]*asset.State[*geometry.Model]),
		textureStates: make(map[string]*asset.State[*image.NRGBA]),
	}

	var amp anim.Amplituder
	if cfg.Audio.Enabled && scene.Audio != "" {
		analyser, err := audio.NewAnalyser(audio.AnalyserOptions{
			FFTSize:     cfg.Audio.FFTSize,
			Smoothing:   cfg.Audio.Smoothing,
			MinDecibels: cfg.Audio.MinDecibels,
			MaxDecibels: cfg.Audio.MaxDecibels,
		})
		if err != nil {
			return nil, err
		}
		s.source = audio.NewSource(
			analyser,
			&audio.Speaker{SampleRate: beep.SampleRate(cfg.Audio.SampleRate)},
			audio.PlayOptions{Volume: cfg.Audio.Volume, Loop: cfg.Audio.Loop},
		)
		amp = s.source
	}

	s.Loop, err = anim.NewLoop(
		anim.Options{
			Scale:          cfg.Audio.Scale,
			GlitchStrength: cfg.Panel.GlitchStrength,
			Rotation:       cfg.Panel.Rotation,
		},
		scene.Params,
		anim.NewSystemClock(),
		amp,
		orbit,
		cam,
		scene.Tracked()...,
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// LoadAssets starts loading every model, texture and audio clip the scene
// names. Procedural geometry is built here and is ready at once. The
// manager's callbacks report progress; the states are checked every frame.
func (s *Session) LoadAssets() error {
	for _, o := range s.Scene.Objects {
		name := o.Object.Name
		if o.Geometry.Procedural() {
			m, err := o.Geometry.Build()
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			s.modelStates[name] = asset.ReadyState(name, m)
		} else {
			s.modelStates[name] = asset.Load(s.Assets, o.Geometry.Path, asset.LoadModel, nil)
		}
		s.models.Add(name, s.modelStates[name])
	}

	for name, path := range s.Scene.Textures {
		s.textureStates[name] = asset.Load(s.Assets, path, asset.LoadTexture, nil)
		s.textures.Add(name, s.textureStates[name])
	}

	if s.source != nil {
		s.source.Attach(asset.Load(s.Assets, s.Scene.Audio, audio.Load, nil))
	}
	return nil
}

// poll starts the audio once its clip is ready and uploads whatever
// finished loading since the last frame.
func (s *Session) poll() {
	if s.source != nil {
		if err := s.source.Update(); err != nil && s.Assets.OnError != nil {
			s.Assets.OnError(s.Scene.Audio, err)
		}
	}
	if s.gpu == nil {
		return
	}

	s.models.Poll(func(name string, st *asset.State[*geometry.Model]) {
		if m, ok := st.Get(); ok {
			if err := s.gpu.SetModel(name, m); err != nil {
				log.Println(err)
			}
		}
	})
	s.textures.Poll(func(name string, st *asset.State[*image.NRGBA]) {
		if img, ok := st.Get(); ok {
			s.gpu.SetTexture(name, img)
		}
	})
}

// Realize creates the GPU resources. The GL context must be current.
func (s *Session) Realize() error {
	if err := renderer.Init(s.Config.Debug); err != nil {
		return err
	}

	gpu, err := renderer.New(s.Scene)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	s.gpu = gpu

	// a new context has none of the earlier uploads
	s.models, s.textures = asset.Watch[*geometry.Model]{}, asset.Watch[*image.NRGBA]{}
	for name, st := range s.modelStates {
		s.models.Add(name, st)
	}
	for name, st := range s.textureStates {
		s.textures.Add(name, st)
	}

	if w, h := s.Viewport.Framebuffer(); w > 0 && h > 0 {
		s.gpu.Resize(w, h, s.Viewport.PixelRatio)
	}
	return nil
}

// Resize handles a window resize. width and height are in window units,
// fbWidth and fbHeight are the drawable size in pixels.
func (s *Session) Resize(width, height, fbWidth, fbHeight int) {
	ratio := 1.0
	if width > 0 {
		ratio = float64(fbWidth) / float64(width)
	}
	if !s.Viewport.Resize(width, height, ratio) {
		return
	}
	s.Orbit.SetViewHeight(height)
	if s.gpu != nil {
		s.gpu.Resize(fbWidth, fbHeight, s.Viewport.PixelRatio)
	}
}

// Screenshot captures the next rendered frame and passes it to fn.
func (s *Session) Screenshot(fn func(*image.NRGBA)) {
	s.shots = append(s.shots, fn)
}

// Render draws one ticked frame. The GL context must be current.
func (s *Session) Render(frame anim.Frame) error {
	s.poll()
	if s.gpu == nil {
		return nil
	}

	if err := s.gpu.Draw(frame); err != nil {
		return err
	}

	if len(s.shots) > 0 {
		img := s.gpu.ReadPixels()
		for _, fn := range s.shots {
			fn(img)
		}
		s.shots = nil
	}
	return nil
}

// Close releases the GPU resources. The GL context must be current.
func (s *Session) Close() {
	if s.gpu != nil {
		s.gpu.Delete()
		s.gpu = nil
	}
}

// Init is the state the config window starts from.
func (s *Session) Init() *PanelInit {
	return &PanelInit{
		Scene:          s.Scene.Name,
		Params:         s.Loop.Params(),
		Fields:         s.Scene.Panel,
		GlitchStrength: s.Config.Panel.GlitchStrength,
		Rotation:       s.Config.Panel.Rotation,
	}
}
