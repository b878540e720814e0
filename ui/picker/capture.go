package picker

import (
	"context"
	"errors"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"github.com/dweymouth/librarypicker/backend"
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
	"github.com/dweymouth/librarypicker/backend/mediaprovider/local"
)

var ErrCaptureCancelled = errors.New("capture cancelled")

// CaptureSurface is the modal capture UI. Present must eventually call
// done exactly once on the UI goroutine: with a result, with
// ErrCaptureCancelled, or with another error on failure.
type CaptureSurface interface {
	Present(req CaptureRequest, done func(CaptureResult, error))
}

// MediaImporter validates and stores a captured file.
// impl: backend.CaptureImporter
type MediaImporter interface {
	Import(ctx context.Context, srcPath string, allowed []mediaprovider.MediaKind, maxVideoDuration time.Duration) (*backend.CapturedMedia, error)
}

// FileCaptureSurface stands in for a camera on desktop: the user picks
// a freshly captured still or video file, which is imported into the
// capture directory.
type FileCaptureSurface struct {
	Window   fyne.Window
	Importer MediaImporter
}

var _ CaptureSurface = (*FileCaptureSurface)(nil)

func (f *FileCaptureSurface) Present(req CaptureRequest, done func(CaptureResult, error)) {
	dlg := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			done(CaptureResult{}, err)
			return
		}
		if rc == nil {
			done(CaptureResult{}, ErrCaptureCancelled)
			return
		}
		path := rc.URI().Path()
		rc.Close()
		go func() {
			res, err := f.importFile(path, req)
			fyne.Do(func() { done(res, err) })
		}()
	}, f.Window)
	var exts []string
	for _, k := range req.Kinds {
		exts = append(exts, local.Extensions(k)...)
	}
	dlg.SetFilter(storage.NewExtensionFileFilter(exts))
	dlg.SetConfirmText("Use")
	dlg.Show()
}

func (f *FileCaptureSurface) importFile(path string, req CaptureRequest) (CaptureResult, error) {
	m, err := f.Importer.Import(context.Background(), path, req.Kinds, req.MaxVideoDuration)
	if err != nil {
		return CaptureResult{}, err
	}
	return CaptureResult{Kind: m.Kind, Image: m.Image, VideoPath: m.Path}, nil
}

// handleCaptureDone routes a capture surface outcome into the session.
func handleCaptureDone(s *Session, res CaptureResult, err error) {
	switch {
	case err == nil:
		s.CaptureCompleted(res)
	case errors.Is(err, ErrCaptureCancelled):
		s.CaptureCancelled()
	default:
		s.CaptureFailed(err)
	}
}
