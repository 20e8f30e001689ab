package main

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"image"
	"log"
	"net"
	"reflect"
	"time"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/asset"
	"github.com/stewi1014/glhologram/config"
)

type RenderWindow struct {
	*gtk.ApplicationWindow
	gla     *gtk.GLArea
	session *Session

	width, height int

	ctx  context.Context
	quit func(error)

	ticker      glib.SourceHandle
	loading     context.CancelFunc
	sendMessage chan interface{}
}

func NewRenderWindow(
	app *gtk.Application,
	conn net.Conn,
	ctx context.Context,
	quit func(error),
	cfg config.Config,
) *RenderWindow {
	var err error
	w := &RenderWindow{
		ctx:         ctx,
		quit:        quit,
		sendMessage: make(chan interface{}, 16),
	}

	w.session, err = NewSession(cfg, func(fn func()) { glib.IdleAdd(fn) })
	if err != nil {
		quit(err)
		return nil
	}
	w.watchAssets(w.session.Assets)

	go w.handleSend(conn)

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}

	w.SetDefaultSize(getWindowSize(cfg.Window))

	w.gla, err = gtk.GLAreaNew()
	if err != nil {
		quit(fmt.Errorf("gtk.GLAreaNew: %w", err))
		return nil
	}

	w.gla.SetRequiredVersion(4, 1)
	w.gla.SetHasDepthBuffer(true)
	w.gla.Connect("realize", w.glaRealize)
	w.gla.Connect("render", w.glaRender)
	w.gla.Connect("unrealize", w.glaUnrealize)

	w.gla.SetEvents(
		int(gdk.BUTTON_PRESS_MASK) |
			int(gdk.BUTTON_RELEASE_MASK) |
			int(gdk.POINTER_MOTION_MASK) |
			int(gdk.SCROLL_MASK),
	)
	w.gla.Connect("resize", w.resize)
	w.gla.Connect("scroll-event", w.scroll)
	w.gla.Connect("button-press-event", w.button)
	w.gla.Connect("button-release-event", w.button)
	w.gla.Connect("motion-notify-event", w.motion)

	w.Add(w.gla)
	w.ShowAll()

	// the host's frame clock
	interval := time.Second / time.Duration(cfg.Window.FrameRate)
	w.ticker = glib.TimeoutAdd(uint(interval.Milliseconds()), func() bool {
		if w.ctx.Err() != nil {
			return false
		}
		w.gla.QueueRender()
		return true
	})

	w.send(w.session.Init())
	if err := w.session.LoadAssets(); err != nil {
		quit(err)
		return nil
	}

	go w.handleReceive(conn)

	return w
}

func getWindowSize(cfg config.Window) (width, height int) {
	width = cfg.Width
	height = cfg.Height

	display, err := gdk.DisplayGetDefault()
	if err != nil {
		return
	}

	monitor, err := display.GetPrimaryMonitor()
	if err != nil || monitor == nil {
		return
	}

	geometry := monitor.GetGeometry()
	width = min(width, int(float32(geometry.GetWidth())*.9))
	height = min(height, int(float32(geometry.GetHeight())*.9))
	return
}

// watchAssets forwards loading progress to the config window and shows a
// progress dialog while a batch is loading.
func (w *RenderWindow) watchAssets(m *asset.Manager) {
	logStart, logProgress, logLoad, logError := m.OnStart, m.OnProgress, m.OnLoad, m.OnError

	m.OnStart = func(path string, loaded, total int) {
		logStart(path, loaded, total)
		w.send(&LoadProgress{Path: path, Loaded: loaded, Total: total})

		ctx, cancel := context.WithCancel(w.ctx)
		w.loading = cancel
		if _, err := NewLoadingDialog(ctx, w.ApplicationWindow, m, cancel); err != nil {
			log.Println(err)
		}
	}
	m.OnProgress = func(path string, loaded, total int) {
		logProgress(path, loaded, total)
		w.send(&LoadProgress{Path: path, Loaded: loaded, Total: total, Done: !m.Loading()})
	}
	m.OnLoad = func() {
		logLoad()
		if w.loading != nil && len(m.Failures()) == 0 {
			w.loading()
			w.loading = nil
		}
	}
	m.OnError = func(path string, err error) {
		logError(path, err)
		loaded, total := m.Progress()
		w.send(&LoadProgress{Path: path, Loaded: loaded, Total: total, Err: err.Error()})
		AssetErrorDialog(w.ApplicationWindow, path, err)
	}
}

func (w *RenderWindow) glaRealize(gla *gtk.GLArea) {
	gla.MakeCurrent()
	if err := gla.GetError(); err != nil {
		w.quit(fmt.Errorf("gl context: %w", err))
		return
	}

	if err := w.session.Realize(); err != nil {
		w.quit(err)
		return
	}
	w.resize(gla, gla.GetAllocatedWidth()*gla.GetScaleFactor(), gla.GetAllocatedHeight()*gla.GetScaleFactor())
}

func (w *RenderWindow) glaRender(gla *gtk.GLArea) bool {
	defer CatchPanicToContext(w.quit)

	gla.AttachBuffers()
	if err := w.session.Render(w.session.Loop.Tick()); err != nil {
		w.quit(err)
	}
	return true
}

func (w *RenderWindow) glaUnrealize(gla *gtk.GLArea) {
	gla.MakeCurrent()
	w.session.Close()
	glib.SourceRemove(w.ticker)
}

// resize receives the drawable size in device pixels.
func (w *RenderWindow) resize(gla *gtk.GLArea, width, height int) {
	scale := max(gla.GetScaleFactor(), 1)
	w.width, w.height = width/scale, height/scale
	w.session.Resize(w.width, w.height, width, height)
}

func (w *RenderWindow) button(gla *gtk.GLArea, event *gdk.Event) {
	button := gdk.EventButtonNewFromEvent(event)
	if button.Button() != gdk.BUTTON_PRIMARY {
		return
	}

	switch button.Type() {
	case gdk.EVENT_BUTTON_PRESS:
		w.session.Orbit.PointerDown(button.X(), button.Y())
	case gdk.EVENT_BUTTON_RELEASE:
		w.session.Orbit.PointerUp()
	}
}

func (w *RenderWindow) motion(gla *gtk.GLArea, event *gdk.Event) {
	if !w.session.Orbit.Dragging() {
		return
	}
	x, y := gdk.EventMotionNewFromEvent(event).MotionVal()
	w.session.Orbit.PointerMove(x, y)
}

func (w *RenderWindow) scroll(gla *gtk.GLArea, event *gdk.Event) {
	scroll := gdk.EventScrollNewFromEvent(event)

	switch scroll.Direction() {
	case gdk.SCROLL_DOWN:
		w.session.Orbit.Wheel(1)
	case gdk.SCROLL_UP:
		w.session.Orbit.Wheel(-1)
	case gdk.SCROLL_SMOOTH:
		w.session.Orbit.Wheel(scroll.DeltaY())
	}
}

// send queues msg for the config window without blocking the GTK thread
// once the window is gone.
func (w *RenderWindow) send(msg interface{}) {
	select {
	case w.sendMessage <- msg:
	case <-w.ctx.Done():
	}
}

func (w *RenderWindow) handleSend(conn net.Conn) {
	enc := gob.NewEncoder(conn)
	defer conn.Close()

	for {
		select {
		case msg := <-w.sendMessage:
			err := enc.Encode(&msg)
			if err != nil {
				w.quit(fmt.Errorf("send to config window: %w", err))
				return
			}
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *RenderWindow) handleReceive(conn net.Conn) {
	dec := gob.NewDecoder(conn)

	for {
		var v interface{}
		err := dec.Decode(&v)
		if err != nil {
			if w.ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				w.quit(fmt.Errorf("receive from config window: %w", err))
			}
			conn.Close()
			return
		}

		switch msg := v.(type) {
		case *anim.Params:
			glib.IdleAdd(func() {
				w.session.Loop.Stage(*msg)
			})

		case *SaveRequest:
			glib.IdleAdd(func() {
				w.session.Screenshot(func(img *image.NRGBA) {
					save(w.quit, w.ApplicationWindow, msg.Name, img, func(name string, err error) {
						saved := &Saved{Name: name}
						if err != nil {
							saved.Err = err.Error()
						}
						w.send(saved)
					})
				})
				w.gla.QueueRender()
			})

		default:
			log.Println("unknown message received", reflect.TypeOf(v))
		}
	}
}
