package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/glhologram/asset"
)

const previewWidth, previewHeight = 640, 480

func CatchPanicToContext(ctxCancel context.CancelCauseFunc) {
	if v := recover(); v != nil {
		err, ok := v.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", v)
		}
		err = fmt.Errorf("%w\n%v", err, string(debug.Stack()))
		if ctxCancel != nil {
			ctxCancel(err)
		}
	}
}

// ShowErrorDialog logs err and opens an error dialog from any goroutine.
func ShowErrorDialog(parent *gtk.ApplicationWindow, title string, err error) {
	log.Printf("%s: %v", title, err)
	glib.IdleAdd(func() {
		NewErrorDialog(parent, title, err)
	})
}

// NewErrorDialog shows title with err as selectable detail text. It does not
// block; the dialog closes itself on any response.
func NewErrorDialog(parent *gtk.ApplicationWindow, title string, err error) {
	dialog := gtk.MessageDialogNew(
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT,
		gtk.MESSAGE_ERROR,
		gtk.BUTTONS_CLOSE,
		"%s",
		title,
	)
	dialog.FormatSecondaryText("%s", err.Error())
	dialog.Connect("response", dialog.Destroy)

	if area, err := dialog.GetMessageArea(); err == nil {
		area.GetChildren().Foreach(func(item interface{}) {
			if widget, ok := item.(*gtk.Widget); ok {
				if l, err := gtk.WidgetToLabel(widget); err == nil {
					l.SetSelectable(true)
				}
			}
		})
	}

	dialog.SetKeepAbove(true)
	dialog.ShowAll()
}

// AssetErrorDialog names the asset that failed to load.
func AssetErrorDialog(parent *gtk.ApplicationWindow, path string, err error) {
	NewErrorDialog(parent, "Could not load "+filepath.Base(path), fmt.Errorf("%s: %w", path, err))
}

// LoadingDialog follows an asset batch: a progress bar plus the files still
// loading and any that failed. It closes when ctx is done.
type LoadingDialog struct {
	*gtk.Dialog
	progressBar *gtk.ProgressBar
	files       *gtk.Label

	manager *asset.Manager
}

// NewLoadingDialog opens the dialog for m. Hiding it early calls onHide;
// loading carries on regardless.
func NewLoadingDialog(
	ctx context.Context,
	parent gtk.IWindow,
	m *asset.Manager,
	onHide func(),
) (*LoadingDialog, error) {
	dialog := &LoadingDialog{manager: m}
	var err error
	dialog.Dialog, err = gtk.DialogNewWithButtons(
		"Loading",
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT,
		[]interface{}{"Hide", gtk.RESPONSE_CANCEL},
	)
	if err != nil {
		return nil, fmt.Errorf("gtk.DialogNewWithButtons: %w", err)
	}
	dialog.SetKeepAbove(true)
	dialog.Connect("response", func(d *gtk.Dialog, response gtk.ResponseType) {
		if response == gtk.RESPONSE_CANCEL && onHide != nil {
			onHide()
		}
	})

	ca, err := dialog.GetContentArea()
	if err != nil {
		return nil, fmt.Errorf("dialog content area: %w", err)
	}

	dialog.progressBar, _ = gtk.ProgressBarNew()
	dialog.progressBar.SetShowText(true)
	dialog.progressBar.SetSizeRequest(500, 40)
	ca.Add(dialog.progressBar)

	dialog.files, _ = gtk.LabelNew("")
	dialog.files.SetXAlign(0)
	dialog.files.SetSelectable(true)
	ca.Add(dialog.files)

	dialog.update()
	dialog.ShowAll()

	glib.TimeoutAdd(uint((time.Second / 10).Milliseconds()), func() bool {
		if ctx.Err() != nil {
			dialog.Destroy()
			return false
		}
		dialog.update()
		return true
	})
	return dialog, nil
}

func (dialog *LoadingDialog) update() {
	loaded, total := dialog.manager.Progress()
	if total > 0 {
		dialog.progressBar.SetFraction(float64(loaded) / float64(total))
	}
	dialog.progressBar.SetText(fmt.Sprintf("%d of %d", loaded, total))
	dialog.files.SetText(loadingText(dialog.manager.Pending(), dialog.manager.Failures()))
}

func loadingText(pending []string, failures []asset.Failure) string {
	var b strings.Builder
	for _, path := range pending {
		fmt.Fprintf(&b, "loading %s\n", filepath.Base(path))
	}
	for _, f := range failures {
		fmt.Fprintf(&b, "failed %s: %v\n", filepath.Base(f.Path), f.Err)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ScreenshotPreview shows a saved screenshot with the choice to keep or
// delete the file.
type ScreenshotPreview struct {
	*gtk.ApplicationWindow
}

// NewScreenshotPreview loads the PNG at name scaled down for display. done
// gets nil when the file is kept and errDeleted once it is removed.
func NewScreenshotPreview(app *gtk.Application, name string, done func(string, error)) (*ScreenshotPreview, error) {
	pixbuf, err := gdk.PixbufNewFromFileAtScale(name, previewWidth, previewHeight, true)
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", name, err)
	}

	w := &ScreenshotPreview{}
	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		return nil, fmt.Errorf("gtk.ApplicationWindowNew: %w", err)
	}
	w.SetTitle("Screenshot " + filepath.Base(name))

	image, err := gtk.ImageNewFromPixbuf(pixbuf)
	if err != nil {
		return nil, fmt.Errorf("gtk.ImageNewFromPixbuf: %w", err)
	}
	image.SetHExpand(true)
	image.SetVExpand(true)

	label, _ := gtk.LabelNew(name)
	label.SetSelectable(true)

	keep, _ := gtk.ButtonNewWithLabel("Keep")
	keep.Connect("clicked", func() {
		done(name, nil)
		w.Destroy()
	})

	remove, _ := gtk.ButtonNewWithLabel("Delete")
	remove.Connect("clicked", func() {
		if err := os.Remove(name); err != nil {
			done(name, err)
		} else {
			done(name, errDeleted)
		}
		w.Destroy()
	})

	grid, _ := gtk.GridNew()
	grid.Attach(image, 0, 0, 5, 1)
	grid.Attach(label, 0, 1, 5, 1)
	grid.Attach(keep, 0, 2, 1, 1)
	grid.Attach(remove, 4, 2, 1, 1)
	w.Add(grid)

	return w, nil
}
