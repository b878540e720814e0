package widgets

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
	myTheme "github.com/dweymouth/librarypicker/ui/theme"
	"github.com/dweymouth/librarypicker/ui/util"
)

const pressedTranslucency = 0.5

var (
	_ fyne.Widget        = (*ThumbnailCell)(nil)
	_ fyne.Tappable      = (*ThumbnailCell)(nil)
	_ desktop.Mouseable  = (*ThumbnailCell)(nil)
	_ desktop.Cursorable = (*ThumbnailCell)(nil)
	_ mobile.Touchable   = (*ThumbnailCell)(nil)
)

// ThumbnailCell is one media item in the picker grid: its thumbnail,
// a duration badge for videos and a selection indicator.
type ThumbnailCell struct {
	widget.BaseWidget

	OnTapped func()

	item     *mediaprovider.Item
	selected bool
	pressed  bool
	size     float32
	loader   util.ThumbnailLoader

	placeholder   *myTheme.ThemedRectangle
	thumbnail     *canvas.Image
	badgeText     *canvas.Text
	badge         *fyne.Container
	selectionRing *canvas.Rectangle
	selectionMark *fyne.Container
	content       *fyne.Container
}

func NewThumbnailCell(im util.ImageFetcher, size float32) *ThumbnailCell {
	c := &ThumbnailCell{size: size}
	c.ExtendBaseWidget(c)
	c.loader = util.NewThumbnailLoader(im, c.setThumbnail)

	c.placeholder = myTheme.NewThemedRectangle(theme.ColorNameInputBackground)
	c.thumbnail = &canvas.Image{FillMode: canvas.ImageFillContain, ScaleMode: canvas.ImageScaleFastest}

	c.badgeText = canvas.NewText("", color.White)
	c.badgeText.TextSize = theme.CaptionTextSize()
	c.badgeText.TextStyle.Monospace = true
	badgeBg := canvas.NewRectangle(color.NRGBA{A: 0x99})
	badgeBg.CornerRadius = 3
	c.badge = container.NewStack(badgeBg, container.New(layout.NewCustomPaddedLayout(1, 1, 4, 4), c.badgeText))
	c.badge.Hide()

	c.selectionRing = canvas.NewRectangle(color.Transparent)
	c.selectionRing.StrokeWidth = 3
	c.selectionRing.Hide()
	markBg := canvas.NewCircle(theme.Color(theme.ColorNamePrimary))
	markIcon := widget.NewIcon(theme.NewInvertedThemedResource(theme.ConfirmIcon()))
	c.selectionMark = container.NewStack(markBg, container.NewPadded(markIcon))
	c.selectionMark.Hide()

	pad := theme.Padding()
	c.content = container.NewStack(
		c.placeholder,
		c.thumbnail,
		container.New(layout.NewCustomPaddedLayout(pad, pad, pad, pad),
			container.NewBorder(
				container.NewHBox(layout.NewSpacer(), c.selectionMark),
				container.NewHBox(layout.NewSpacer(), c.badge),
				nil, nil),
		),
		c.selectionRing,
	)
	return c
}

// Bind shows item in the cell. The previous image, duration badge
// and selection indicator are cleared before the new thumbnail loads.
func (c *ThumbnailCell) Bind(item *mediaprovider.Item) {
	if c.item == item {
		return
	}
	c.item = item
	c.thumbnail.Image = nil
	c.selected = false
	c.badge.Hide()
	if item != nil && item.Kind == mediaprovider.MediaKindVideo {
		c.badgeText.Text = util.FormatDuration(item.Duration)
		c.badge.Show()
	}
	c.Refresh()
	c.loader.Load(item)
}

func (c *ThumbnailCell) Item() *mediaprovider.Item {
	return c.item
}

func (c *ThumbnailCell) SetSelected(selected bool) {
	if c.selected == selected {
		return
	}
	c.selected = selected
	c.Refresh()
}

func (c *ThumbnailCell) Selected() bool {
	return c.selected
}

// DurationText is the badge text, empty when the badge is hidden.
func (c *ThumbnailCell) DurationText() string {
	if !c.badge.Visible() {
		return ""
	}
	return c.badgeText.Text
}

func (c *ThumbnailCell) Image() image.Image {
	return c.thumbnail.Image
}

func (c *ThumbnailCell) setThumbnail(img image.Image) {
	c.thumbnail.Image = img
	c.thumbnail.Refresh()
}

func (c *ThumbnailCell) Tapped(*fyne.PointEvent) {
	if c.OnTapped != nil {
		c.OnTapped()
	}
}

func (c *ThumbnailCell) MouseDown(*desktop.MouseEvent) {
	c.setPressed(true)
}

func (c *ThumbnailCell) MouseUp(*desktop.MouseEvent) {
	c.setPressed(false)
}

func (c *ThumbnailCell) TouchDown(*mobile.TouchEvent) {
	c.setPressed(true)
}

func (c *ThumbnailCell) TouchUp(*mobile.TouchEvent) {
	c.setPressed(false)
}

func (c *ThumbnailCell) TouchCancel(*mobile.TouchEvent) {
	c.setPressed(false)
}

func (c *ThumbnailCell) setPressed(pressed bool) {
	if c.pressed == pressed {
		return
	}
	c.pressed = pressed
	c.Refresh()
}

// Translucency is the current press feedback: 0 when idle.
func (c *ThumbnailCell) Translucency() float64 {
	return c.thumbnail.Translucency
}

func (c *ThumbnailCell) Cursor() desktop.Cursor {
	return desktop.PointerCursor
}

func (c *ThumbnailCell) MinSize() fyne.Size {
	return fyne.NewSquareSize(c.size)
}

func (c *ThumbnailCell) Refresh() {
	var t float64
	if c.pressed {
		t = pressedTranslucency
	}
	c.thumbnail.Translucency = t
	c.selectionRing.StrokeColor = theme.Color(theme.ColorNamePrimary)
	c.selectionRing.Hidden = !c.selected
	c.selectionMark.Hidden = !c.selected
	c.BaseWidget.Refresh()
}

func (c *ThumbnailCell) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.content)
}
