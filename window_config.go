package main

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log"
	"net"
	"reflect"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/config"
	"github.com/stewi1014/glhologram/renderer"
)

const screenshotDir = "screenshots"

// ConfigWindow is the debug panel. It edits a copy of the loop's params and
// sends every change to the render window, which applies it on its next
// frame.
type ConfigWindow struct {
	*gtk.ApplicationWindow
	box      *gtk.Box
	progress *gtk.ProgressBar
	status   *gtk.Label

	ctx  context.Context
	quit func(error)

	params      anim.Params
	sendMessage chan interface{}
}

func NewConfigWindow(
	app *gtk.Application,
	listener net.Listener,
	ctx context.Context,
	quit func(error),
) *ConfigWindow {
	var err error
	w := &ConfigWindow{
		ctx:         ctx,
		quit:        quit,
		sendMessage: make(chan interface{}, 16),
	}

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}

	w.SetDefaultSize(280, 420)

	w.box, err = gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 6)
	if err != nil {
		quit(fmt.Errorf("gtk.BoxNew: %w", err))
		return nil
	}
	w.box.SetMarginStart(12)
	w.box.SetMarginEnd(12)
	w.box.SetMarginTop(12)
	w.box.SetMarginBottom(12)

	w.status, _ = gtk.LabelNew("Waiting for the render window")
	w.box.PackEnd(w.status, false, false, 0)

	w.Add(w.box)
	w.ShowAll()

	go func() {
		defer CatchPanicToContext(quit)

		conn, err := listener.Accept()
		if err != nil {
			if w.ctx.Err() == nil {
				quit(fmt.Errorf("config window accept: %w", err))
			}
			return
		}

		go w.handleSend(conn)
		w.handleReceive(conn)
	}()

	return w
}

func (w *ConfigWindow) build(init *PanelInit) error {
	w.params = init.Params

	var err error
	if init.Fields.ClearColor {
		err = errors.Join(err, w.addColor("Clear colour", w.params.ClearColor, func(c mgl32.Vec3) {
			w.params.ClearColor = c
		}))
	}
	if init.Fields.Color {
		err = errors.Join(err, w.addColor("Colour", w.params.Color, func(c mgl32.Vec3) {
			w.params.Color = c
		}))
	}
	if init.Fields.GlitchStrength {
		err = errors.Join(err, w.addSpin("Glitch strength", init.GlitchStrength, w.params.GlitchStrength, func(v float64) {
			w.params.GlitchStrength = v
		}))
	}
	if init.Fields.Rotation {
		for axis, name := range []string{"Rotation x", "Rotation y", "Rotation z"} {
			err = errors.Join(err, w.addSlider(name, init.Rotation, float64(w.params.Rotation[axis]), func(v float64) {
				w.params.Rotation[axis] = float32(v)
			}))
		}
	}

	w.progress, _ = gtk.ProgressBarNew()
	w.progress.SetShowText(true)
	w.progress.SetText("Loading assets")
	w.box.PackStart(w.progress, false, false, 0)

	save, _ := gtk.ButtonNewWithLabel("Save screenshot")
	save.Connect("clicked", func() {
		w.send(&SaveRequest{Name: renderer.ScreenshotName(screenshotDir, time.Now())})
	})
	w.box.PackStart(save, false, false, 0)

	w.SetTitle("GLHologram Debug: " + init.Scene)
	w.status.SetText("")
	w.ShowAll()
	return err
}

func (w *ConfigWindow) addLabel(text string) {
	l, err := gtk.LabelNew(text)
	if err != nil {
		log.Println(err)
		return
	}
	l.SetXAlign(0)
	w.box.PackStart(l, false, false, 0)
}

func (w *ConfigWindow) addColor(label string, value mgl32.Vec3, set func(mgl32.Vec3)) error {
	button, err := gtk.ColorButtonNewWithRGBA(gdk.NewRGBA(float64(value[0]), float64(value[1]), float64(value[2]), 1))
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	button.SetTooltipText(config.HexColor(value))
	button.Connect("color-set", func() {
		c := button.GetRGBA()
		v := mgl32.Vec3{float32(c.GetRed()), float32(c.GetGreen()), float32(c.GetBlue())}
		button.SetTooltipText(config.HexColor(v))
		set(v)
		w.sendParams()
	})

	w.addLabel(label)
	w.box.PackStart(button, false, false, 0)
	return nil
}

func (w *ConfigWindow) addSpin(label string, r config.Range, value float64, set func(float64)) error {
	spin, err := gtk.SpinButtonNewWithRange(r.Min, r.Max, r.Step)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	spin.SetValue(value)
	spin.Connect("value-changed", func() {
		set(spin.GetValue())
		w.sendParams()
	})

	w.addLabel(label)
	w.box.PackStart(spin, false, false, 0)
	return nil
}

func (w *ConfigWindow) addSlider(label string, r config.Range, value float64, set func(float64)) error {
	scale, err := gtk.ScaleNewWithRange(gtk.ORIENTATION_HORIZONTAL, r.Min, r.Max, r.Step)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	scale.SetValue(value)
	scale.Connect("value-changed", func() {
		set(scale.GetValue())
		w.sendParams()
	})

	w.addLabel(label)
	w.box.PackStart(scale, false, false, 0)
	return nil
}

func (w *ConfigWindow) sendParams() {
	p := w.params
	w.send(&p)
}

func (w *ConfigWindow) showProgress(p *LoadProgress) {
	if w.progress == nil {
		return
	}

	fraction := 0.0
	if p.Total > 0 {
		fraction = float64(p.Loaded) / float64(p.Total)
	}
	w.progress.SetFraction(fraction)

	switch {
	case p.Err != "":
		w.status.SetText("Failed to load " + p.Path)
	case p.Done:
		w.progress.SetText("Loaded")
	default:
		w.progress.SetText(fmt.Sprintf("%.0f%%", fraction*100))
	}
}

func (w *ConfigWindow) send(msg interface{}) {
	select {
	case w.sendMessage <- msg:
	case <-w.ctx.Done():
	}
}

func (w *ConfigWindow) handleSend(conn net.Conn) {
	enc := gob.NewEncoder(conn)
	defer conn.Close()

	for {
		select {
		case msg := <-w.sendMessage:
			err := enc.Encode(&msg)
			if err != nil {
				w.quit(fmt.Errorf("send to render window: %w", err))
				return
			}
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *ConfigWindow) handleReceive(conn net.Conn) {
	dec := gob.NewDecoder(conn)

	for {
		var v interface{}
		err := dec.Decode(&v)
		if err != nil {
			if w.ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				w.quit(fmt.Errorf("receive from render window: %w", err))
			}
			conn.Close()
			return
		}

		switch msg := v.(type) {
		case *PanelInit:
			glib.IdleAdd(func() {
				if err := w.build(msg); err != nil {
					NewErrorDialog(w.ApplicationWindow, "Could not build the "+msg.Scene+" panel", err)
				}
			})

		case *LoadProgress:
			glib.IdleAdd(func() {
				w.showProgress(msg)
			})

		case *Saved:
			glib.IdleAdd(func() {
				switch {
				case msg.Err == errDeleted.Error():
					w.status.SetText("Deleted " + msg.Name)
				case msg.Err != "":
					w.status.SetText("Save failed: " + msg.Err)
				default:
					w.status.SetText("Saved " + msg.Name)
				}
			})

		default:
			log.Println("unknown message received", reflect.TypeOf(v))
		}
	}
}
