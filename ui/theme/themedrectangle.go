package theme

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// ThemedRectangle is a rectangle whose colors follow the app theme.
type ThemedRectangle struct {
	widget.BaseWidget

	rect *canvas.Rectangle

	ColorName fyne.ThemeColorName
	// FillColor, if set, is used instead of ColorName
	FillColor       color.Color
	BorderWidth     float32
	BorderColorName fyne.ThemeColorName
	CornerRadius    float32
}

func NewThemedRectangle(colorName fyne.ThemeColorName) *ThemedRectangle {
	t := &ThemedRectangle{
		ColorName: colorName,
		rect:      canvas.NewRectangle(color.Transparent),
	}
	t.ExtendBaseWidget(t)
	t.updateColors()
	return t
}

func (t *ThemedRectangle) updateColors() {
	settings := fyne.CurrentApp().Settings()
	th := settings.Theme()
	if t.FillColor != nil {
		t.rect.FillColor = t.FillColor
	} else {
		t.rect.FillColor = th.Color(t.ColorName, settings.ThemeVariant())
	}
	t.rect.StrokeWidth = t.BorderWidth
	if t.BorderColorName != "" {
		t.rect.StrokeColor = th.Color(t.BorderColorName, settings.ThemeVariant())
	}
	t.rect.CornerRadius = t.CornerRadius
}

func (t *ThemedRectangle) Refresh() {
	t.updateColors()
	t.BaseWidget.Refresh()
}

func (t *ThemedRectangle) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.rect)
}
