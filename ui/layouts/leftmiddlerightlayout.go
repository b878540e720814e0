package layouts

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

var _ fyne.Layout = (*LeftMiddleRightLayout)(nil)

// LeftMiddleRightLayout lays out exactly three objects in a row. The
// outer two get the same width so the middle one stays centered, and
// the middle one takes the remaining space.
type LeftMiddleRightLayout struct{}

func NewLeftMiddleRightLayout() *LeftMiddleRightLayout {
	return &LeftMiddleRightLayout{}
}

func (b *LeftMiddleRightLayout) sideWidth(objects []fyne.CanvasObject) float32 {
	return fyne.Max(objects[0].MinSize().Width, objects[2].MinSize().Width)
}

func (b *LeftMiddleRightLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) != 3 {
		return fyne.NewSize(0, 0)
	}
	h := float32(0)
	for _, o := range objects {
		h = fyne.Max(h, o.MinSize().Height)
	}
	return fyne.Size{
		Width:  b.sideWidth(objects)*2 + objects[1].MinSize().Width + theme.Padding()*4,
		Height: h,
	}
}

func (b *LeftMiddleRightLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) != 3 {
		return
	}
	pad := theme.Padding()
	sideW := b.sideWidth(objects)
	midW := fyne.Max(0, size.Width-sideW*2-pad*4)
	place := func(o fyne.CanvasObject, x, w float32) {
		h := o.MinSize().Height
		o.Resize(fyne.NewSize(w, h))
		o.Move(fyne.NewPos(x, (size.Height-h)/2))
	}
	// side objects keep their own width, aligned to the outer edges
	place(objects[0], pad, objects[0].MinSize().Width)
	place(objects[1], sideW+pad*2, midW)
	place(objects[2], size.Width-pad-objects[2].MinSize().Width, objects[2].MinSize().Width)
}
