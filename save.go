package main

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/glhologram/renderer"
)

var errDeleted = errors.New("screenshot deleted")

// save encodes a captured frame on a new goroutine, then opens a preview
// where it can be kept or deleted. done runs on the GTK thread once the
// outcome is known.
func save(
	quit context.CancelCauseFunc,
	window *gtk.ApplicationWindow,
	name string,
	img image.Image,
	done func(name string, err error),
) {
	go func() {
		defer CatchPanicToContext(quit)

		err := renderer.SavePNG(name, img)
		glib.IdleAdd(func() {
			if err != nil {
				ShowErrorDialog(window, "Could not save "+name, err)
				done(name, err)
				return
			}

			if err := showPreview(window, name, done); err != nil {
				// the file is written; only the preview failed
				ShowErrorDialog(window, "Could not preview "+name, err)
				done(name, nil)
			}
		})
	}()
}

func showPreview(window *gtk.ApplicationWindow, name string, done func(string, error)) error {
	app, err := window.GetApplication()
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	preview, err := NewScreenshotPreview(app, name, done)
	if err != nil {
		return err
	}
	preview.ShowAll()
	return nil
}
