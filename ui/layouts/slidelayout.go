package layouts

import (
	"fyne.io/fyne/v2"
)

var _ fyne.Layout = (*SlideLayout)(nil)

// SlideLayout fills the container with each object, shifted up by
// Hidden times the container height. Hidden = 1 places the objects
// just above the visible area.
type SlideLayout struct {
	Hidden float32
}

func (s *SlideLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	// the overlay never forces the container larger
	return fyne.NewSize(0, 0)
}

func (s *SlideLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	y := -size.Height * s.Hidden
	for _, o := range objects {
		o.Resize(size)
		o.Move(fyne.NewPos(0, y))
	}
}
