package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/asset"
	"github.com/stewi1014/glhologram/config"
	"github.com/stewi1014/glhologram/renderer"
)

// glfwMain runs the scene in a single GLFW window without a debug panel.
func glfwMain(ctx context.Context, cfg config.Config) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init failed: %w", err)
	}
	defer glfw.Terminate()

	w, err := NewGLFWWindow(cfg)
	if err != nil {
		return err
	}
	defer w.Destroy()
	defer w.session.Close()

	return w.session.Loop.Run(ctx, w, w.render)
}

// GLFWWindow is the alternative front end. It paces the loop itself and
// drains asset completions once per frame.
type GLFWWindow struct {
	*glfw.Window
	session *Session
	queue   *asset.Queue

	interval  time.Duration
	lastFrame time.Time
}

func NewGLFWWindow(cfg config.Config) (*GLFWWindow, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)
	window, err := glfw.CreateWindow(
		cfg.Window.Width,
		cfg.Window.Height,
		"GLHologram",
		nil,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}

	w := &GLFWWindow{
		Window:   window,
		queue:    &asset.Queue{},
		interval: time.Second / time.Duration(cfg.Window.FrameRate),
	}

	w.session, err = NewSession(cfg, w.queue.Post)
	if err != nil {
		window.Destroy()
		return nil, err
	}

	w.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := w.session.Realize(); err != nil {
		window.Destroy()
		return nil, err
	}

	w.SetFramebufferSizeCallback(w.framebufferSize)
	w.SetMouseButtonCallback(w.mouseButton)
	w.SetCursorPosCallback(w.cursorPos)
	w.SetScrollCallback(w.scroll)
	w.SetKeyCallback(w.key)

	fbWidth, fbHeight := w.GetFramebufferSize()
	w.framebufferSize(w.Window, fbWidth, fbHeight)

	if err := w.session.LoadAssets(); err != nil {
		w.session.Close()
		window.Destroy()
		return nil, err
	}
	return w, nil
}

// Next implements anim.Scheduler.
func (w *GLFWWindow) Next(ctx context.Context) bool {
	if wait := w.interval - time.Since(w.lastFrame); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return false
		}
	}
	w.lastFrame = time.Now()

	glfw.PollEvents()
	w.queue.Drain()
	return !w.ShouldClose()
}

func (w *GLFWWindow) render(frame anim.Frame) error {
	if err := w.session.Render(frame); err != nil {
		return err
	}
	w.SwapBuffers()
	return nil
}

func (w *GLFWWindow) framebufferSize(_ *glfw.Window, fbWidth, fbHeight int) {
	width, height := w.GetSize()
	w.session.Resize(width, height, fbWidth, fbHeight)
}

func (w *GLFWWindow) mouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		w.session.Orbit.PointerDown(w.GetCursorPos())
	case glfw.Release:
		w.session.Orbit.PointerUp()
	}
}

func (w *GLFWWindow) cursorPos(_ *glfw.Window, x, y float64) {
	if w.session.Orbit.Dragging() {
		w.session.Orbit.PointerMove(x, y)
	}
}

func (w *GLFWWindow) scroll(_ *glfw.Window, _, yoff float64) {
	// glfw reports positive offsets when scrolling up, which zooms in
	w.session.Orbit.Wheel(-yoff)
}

func (w *GLFWWindow) key(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyS:
		name := renderer.ScreenshotName(screenshotDir, time.Now())
		w.session.Screenshot(func(img *image.NRGBA) {
			go func() {
				if err := renderer.SavePNG(name, img); err != nil {
					log.Println(err)
					return
				}
				log.Println("saved", name)
			}()
		})
	}
}
