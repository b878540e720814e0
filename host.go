package main

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/dweymouth/librarypicker/backend"
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
	"github.com/dweymouth/librarypicker/res"
	"github.com/dweymouth/librarypicker/sharedutil"
	"github.com/dweymouth/librarypicker/ui/picker"
	"github.com/dweymouth/librarypicker/ui/util"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
)

// host is a minimal application embedding the picker: a button that
// opens it and a label reporting what came back.
type host struct {
	app      *backend.App
	window   fyne.Window
	inDialog bool

	home   fyne.CanvasObject
	result *widget.Label
}

func newHost(app *backend.App, window fyne.Window, inDialog bool) *host {
	h := &host{app: app, window: window, inDialog: inDialog}
	h.result = widget.NewLabel("Nothing picked yet")
	h.result.Wrapping = fyne.TextWrapWord
	pick := widget.NewButtonWithIcon("Pick media", theme.MediaPhotoIcon(), h.openPicker)
	pick.Importance = widget.HighImportance
	h.home = container.NewBorder(
		container.NewPadded(pick), nil, nil, nil,
		container.NewVScroll(container.NewPadded(h.result)),
	)
	if app.IsFirstLaunch() {
		h.result.SetText(fmt.Sprintf("Welcome to %s. Pictures are read from %s.", res.DisplayName, app.Library.Root()))
	}
	return h
}

func (h *host) setContent(obj fyne.CanvasObject) {
	h.window.SetContent(fynetooltip.AddWindowToolTipLayer(obj, h.window.Canvas()))
}

func (h *host) showHome() {
	h.window.Canvas().SetOnTypedKey(nil)
	h.setContent(h.home)
}

func (h *host) delegate() picker.Delegate {
	cfg := h.app.Config.Host
	return picker.Delegate{
		SendPhotoEnabled: cfg.SendPhotoEnabled,
		SendVideoEnabled: cfg.SendVideoEnabled,
		OnUploadConfirmed: func(items []*mediaprovider.Item) {
			paths := sharedutil.MapSlice(items, func(it *mediaprovider.Item) string { return it.Path })
			h.result.SetText(fmt.Sprintf("Picked %s:\n%s",
				util.ItemCountString(len(items)), strings.Join(paths, "\n")))
		},
		OnClosed: func() {
			h.result.SetText("Picker closed without a selection")
		},
		OnPhotoCaptured: func(img image.Image) {
			b := img.Bounds()
			h.result.SetText(fmt.Sprintf("Captured a %dx%d photo", b.Dx(), b.Dy()))
		},
		OnVideoCaptured: func(path string) {
			h.result.SetText("Captured a video: " + path)
		},
		OnAuthorizationDenied: func(status mediaprovider.AuthorizationStatus) {
			h.result.SetText("Library access " + status.String())
		},
	}
}

func (h *host) openPicker() {
	cfg := h.app.Config
	opts := picker.OptionsFromConfig(&cfg.Picker, h.app.ImageManager.ThumbnailSize())
	capture := &picker.FileCaptureSurface{Window: h.window, Importer: h.app.CaptureImporter}
	screen, err := picker.NewScreen(h.app.Library, h.app.ImageManager, opts, h.delegate(), capture)
	if err != nil {
		dialog.ShowError(err, h.window)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	if h.inDialog {
		dlg := dialog.NewCustomWithoutButtons(res.DisplayName, screen, h.window)
		dlg.Resize(h.window.Canvas().Size().Subtract(fyne.NewSquareSize(theme.Padding() * 4)))
		screen.OnDismissed = func() {
			cancel()
			h.window.Canvas().SetOnTypedKey(nil)
			dlg.Hide()
		}
		dlg.Show()
	} else {
		screen.OnDismissed = func() {
			cancel()
			h.showHome()
		}
		h.setContent(screen)
	}
	h.window.Canvas().SetOnTypedKey(screen.TypedKey)
	screen.Start(ctx)
}
