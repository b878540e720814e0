package theme

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

type colorOverrideTheme struct {
	colors map[fyne.ThemeColorName]color.Color
}

// WithColorOverrides returns a theme that answers the given color
// names with fixed colors and defers everything else to the app theme.
func WithColorOverrides(colors map[fyne.ThemeColorName]color.Color) fyne.Theme {
	return &colorOverrideTheme{colors: colors}
}

// ButtonTheme colors an importance-high button with fill, choosing
// a contrasting foreground and a brightened hover state.
func ButtonTheme(fill color.Color) fyne.Theme {
	fg := color.Color(color.White)
	if IsLight(fill) {
		fg = color.Black
	}
	return WithColorOverrides(map[fyne.ThemeColorName]color.Color{
		theme.ColorNamePrimary:             fill,
		theme.ColorNameForegroundOnPrimary: fg,
		theme.ColorNameHover:               brightenColor(fill, 0.15),
		theme.ColorNamePressed:             BlendColors(fill, color.Black, 0.7),
	})
}

var _ fyne.Theme = (*colorOverrideTheme)(nil)

func (c *colorOverrideTheme) Color(n fyne.ThemeColorName, v fyne.ThemeVariant) color.Color {
	if col, ok := c.colors[n]; ok {
		return col
	}
	return fyne.CurrentApp().Settings().Theme().Color(n, v)
}

func (*colorOverrideTheme) Font(s fyne.TextStyle) fyne.Resource {
	return fyne.CurrentApp().Settings().Theme().Font(s)
}

func (*colorOverrideTheme) Icon(s fyne.ThemeIconName) fyne.Resource {
	return fyne.CurrentApp().Settings().Theme().Icon(s)
}

func (*colorOverrideTheme) Size(s fyne.ThemeSizeName) float32 {
	return fyne.CurrentApp().Settings().Theme().Size(s)
}
