package main

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/config"
)

func init() {
	// GTK and GLFW both want the main thread.
	runtime.LockOSThread()

	gob.Register(&anim.Params{})
	gob.Register(&PanelInit{})
	gob.Register(&SaveRequest{})
	gob.Register(&LoadProgress{})
	gob.Register(&Saved{})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	mainContext, mainQuit := context.WithCancelCause(context.Background())
	signalContext, stop := signal.NotifyContext(mainContext, os.Interrupt)
	defer stop()

	switch cfg.Backend {
	case "glfw":
		mainQuit(glfwMain(signalContext, cfg))
	default:
		mainQuit(gtkMain(signalContext, cfg))
	}

	if err := context.Cause(mainContext); err != nil && !errors.Is(err, context.Canceled) {
		log.Println(err)
		os.Exit(1)
	}
}

func gtkMain(ctx context.Context, cfg config.Config) error {
	app, err := NewApplication(ctx, cfg)
	if err != nil {
		return fmt.Errorf("gtk application: %w", err)
	}
	return app.Run()
}
