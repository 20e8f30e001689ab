package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/glhologram/config"
)

const applicationID = "com.github.stewi1014.glhologram"

func NewApplication(ctx context.Context, cfg config.Config) (*Application, error) {
	gtk.Init(&os.Args)
	app, err := gtk.ApplicationNew(applicationID, glib.APPLICATION_FLAGS_NONE)
	if err != nil {
		return nil, fmt.Errorf("gtk.ApplicationNew failed: %w", err)
	}

	a := &Application{
		Application: app,
		cfg:         cfg,
	}
	a.ctx, a.quit = context.WithCancelCause(ctx)

	app.Connect("activate", a.onActivate)

	return a, nil
}

type Application struct {
	*gtk.Application
	cfg config.Config

	ctx  context.Context
	quit context.CancelCauseFunc
}

func (a *Application) onActivate() {
	defer CatchPanicToContext(a.quit)

	client, listener := NewPipeListener(a.ctx)

	renderWindow := NewRenderWindow(a.Application, client, a.ctx, a.quit, a.cfg)
	if renderWindow == nil {
		return
	}
	renderWindow.Connect("destroy", func() {
		a.quit(nil)
	})
	renderWindow.SetTitle("GLHologram")

	configWindow := NewConfigWindow(a.Application, listener, a.ctx, a.quit)
	if configWindow == nil {
		return
	}
	configWindow.Connect("destroy", func() {
		a.quit(nil)
	})
	configWindow.SetTitle("GLHologram Debug")
}

// Run blocks until the application quits and returns the quit cause.
func (a *Application) Run() error {
	go func() {
		<-a.ctx.Done()
		glib.IdleAdd(func() {
			a.Quit()
		})
	}()
	a.Application.Run(nil)
	a.quit(nil)
	return context.Cause(a.ctx)
}
