package widgets

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	myTheme "github.com/dweymouth/librarypicker/ui/theme"
	"github.com/dweymouth/librarypicker/ui/util"
)

const accentAlpha = 0x50

var (
	_ fyne.Tappable  = (*AlbumRow)(nil)
	_ fyne.Focusable = (*AlbumRow)(nil)
)

// AlbumRow is one entry of the album list: a cover thumbnail, the album
// name and its item count, over a background tinted with the cover's
// dominant color.
type AlbumRow struct {
	widget.BaseWidget

	ListItemID widget.ListItemID
	Selected   bool
	Focused    bool

	OnTapped        func()
	OnFocusNeighbor func(up bool)

	albumID string
	colors  ColorSource
	loader  util.ThumbnailLoader

	accent        *myTheme.ThemedRectangle
	selectionRect *canvas.Rectangle
	focusedRect   *canvas.Rectangle
	cover         *canvas.Image
	name          *widget.Label
	count         *widget.Label
	coverItemID   string
}

// ColorSource gives the dominant color of an item's cached thumbnail.
// impl: backend.ImageManager
type ColorSource interface {
	DominantColor(itemID string) (color.Color, bool)
}

func NewAlbumRow(im util.ImageFetcher, colors ColorSource, thumbSize float32) *AlbumRow {
	a := &AlbumRow{colors: colors}
	a.ExtendBaseWidget(a)
	a.loader = util.NewThumbnailLoader(im, a.setCover)
	a.accent = myTheme.NewThemedRectangle(theme.ColorNameBackground)
	a.accent.CornerRadius = theme.SelectionRadiusSize()
	a.cover = &canvas.Image{FillMode: canvas.ImageFillContain, ScaleMode: canvas.ImageScaleFastest}
	a.cover.SetMinSize(fyne.NewSquareSize(thumbSize))
	a.name = widget.NewLabel("")
	a.name.TextStyle.Bold = true
	a.name.Truncation = fyne.TextTruncateEllipsis
	a.count = widget.NewLabel("")
	a.count.Importance = widget.LowImportance
	return a
}

func (a *AlbumRow) Update(model AlbumListModel, selected bool) {
	a.albumID = model.ID
	a.name.SetText(model.Name)
	a.count.SetText(util.ItemCountString(model.ItemCount))
	a.Selected = selected
	if id := itemIDOrEmpty(model); id != a.coverItemID || id == "" {
		a.coverItemID = id
		a.cover.Image = nil
		a.accent.FillColor = nil
		a.loader.Load(model.CoverItem)
	}
	a.Refresh()
}

func (a *AlbumRow) AlbumID() string {
	return a.albumID
}

func (a *AlbumRow) setCover(img image.Image) {
	a.cover.Image = img
	a.accent.FillColor = nil
	if img != nil && a.colors != nil {
		if c, ok := a.colors.DominantColor(a.coverItemID); ok {
			a.accent.FillColor = myTheme.WithAlpha(c, accentAlpha)
		}
	}
	a.cover.Refresh()
	a.accent.Refresh()
}

// Accent is the row's tint, nil before the cover has loaded.
func (a *AlbumRow) Accent() color.Color {
	return a.accent.FillColor
}

func itemIDOrEmpty(m AlbumListModel) string {
	if m.CoverItem == nil {
		return ""
	}
	return m.CoverItem.ID
}

func (a *AlbumRow) Tapped(*fyne.PointEvent) {
	if a.OnTapped != nil {
		a.OnTapped()
	}
}

func (a *AlbumRow) Cursor() desktop.Cursor {
	return desktop.PointerCursor
}

func (a *AlbumRow) FocusGained() {
	a.Focused = true
	a.Refresh()
}

func (a *AlbumRow) FocusLost() {
	a.Focused = false
	a.Refresh()
}

func (a *AlbumRow) TypedKey(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyUp, fyne.KeyDown:
		if a.OnFocusNeighbor != nil {
			a.OnFocusNeighbor(e.Name == fyne.KeyUp)
		}
	case fyne.KeySpace, fyne.KeyReturn, fyne.KeyEnter:
		if a.OnTapped != nil {
			a.OnTapped()
		}
	}
}

func (a *AlbumRow) TypedRune(rune) {}

func (a *AlbumRow) Refresh() {
	if a.selectionRect == nil {
		a.BaseWidget.Refresh()
		return
	}
	a.focusedRect.FillColor = theme.Color(theme.ColorNameHover)
	a.focusedRect.Hidden = !a.Focused
	a.selectionRect.FillColor = theme.Color(theme.ColorNameSelection)
	a.selectionRect.Hidden = !a.Selected
	a.BaseWidget.Refresh()
}

func (a *AlbumRow) CreateRenderer() fyne.WidgetRenderer {
	a.selectionRect = canvas.NewRectangle(theme.Color(theme.ColorNameSelection))
	a.selectionRect.CornerRadius = theme.SelectionRadiusSize()
	a.selectionRect.Hidden = !a.Selected
	a.focusedRect = canvas.NewRectangle(theme.Color(theme.ColorNameHover))
	a.focusedRect.CornerRadius = theme.SelectionRadiusSize()
	a.focusedRect.Hidden = !a.Focused
	info := container.NewVBox(a.name, a.count)
	row := container.NewBorder(nil, nil, container.NewPadded(a.cover), nil, info)
	return widget.NewSimpleRenderer(
		container.NewStack(a.accent, a.selectionRect, a.focusedRect, row),
	)
}
