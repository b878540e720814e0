package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	myTheme "github.com/dweymouth/librarypicker/ui/theme"
)

var (
	_ fyne.Tappable     = (*CameraCell)(nil)
	_ desktop.Mouseable = (*CameraCell)(nil)
	_ mobile.Touchable  = (*CameraCell)(nil)
)

// CameraCell is the capture affordance shown in the first grid slot.
type CameraCell struct {
	widget.BaseWidget

	OnTapped func()

	size    float32
	pressed bool
	bg      *myTheme.ThemedRectangle
	icon    *widget.Icon
	label   *widget.Label
}

func NewCameraCell(size float32) *CameraCell {
	c := &CameraCell{size: size}
	c.ExtendBaseWidget(c)
	c.bg = myTheme.NewThemedRectangle(theme.ColorNameButton)
	c.icon = widget.NewIcon(theme.MediaPhotoIcon())
	c.label = widget.NewLabel("Camera")
	c.label.Alignment = fyne.TextAlignCenter
	return c
}

func (c *CameraCell) Tapped(*fyne.PointEvent) {
	if c.OnTapped != nil {
		c.OnTapped()
	}
}

func (c *CameraCell) MouseDown(*desktop.MouseEvent) {
	c.setPressed(true)
}

func (c *CameraCell) MouseUp(*desktop.MouseEvent) {
	c.setPressed(false)
}

func (c *CameraCell) TouchDown(*mobile.TouchEvent) {
	c.setPressed(true)
}

func (c *CameraCell) TouchUp(*mobile.TouchEvent) {
	c.setPressed(false)
}

func (c *CameraCell) TouchCancel(*mobile.TouchEvent) {
	c.setPressed(false)
}

func (c *CameraCell) setPressed(pressed bool) {
	if c.pressed == pressed {
		return
	}
	c.pressed = pressed
	c.Refresh()
}

func (c *CameraCell) Pressed() bool {
	return c.pressed
}

func (c *CameraCell) Cursor() desktop.Cursor {
	return desktop.PointerCursor
}

func (c *CameraCell) MinSize() fyne.Size {
	return fyne.NewSquareSize(c.size)
}

func (c *CameraCell) Refresh() {
	c.bg.FillColor = nil
	if c.pressed {
		// half opacity, matching pressed thumbnails
		c.bg.FillColor = myTheme.WithAlpha(theme.Color(theme.ColorNameButton), 0x80)
	}
	c.bg.Refresh()
	c.BaseWidget.Refresh()
}

func (c *CameraCell) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(
		c.bg,
		container.NewCenter(container.NewVBox(container.NewCenter(c.icon), c.label)),
	))
}
