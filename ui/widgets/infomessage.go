package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// NewInfoMessage is a centered icon and title with an optional
// subtitle, used for the picker's empty and denied states.
func NewInfoMessage(icon fyne.Resource, title, subtitle string) fyne.CanvasObject {
	c := container.New(layout.NewCustomPaddedVBoxLayout(-10),
		container.NewCenter(
			container.NewBorder(nil, nil,
				widget.NewIcon(icon), nil,
				widget.NewRichText(&widget.TextSegment{
					Text:  title,
					Style: widget.RichTextStyleSubHeading,
				}))),
	)
	if subtitle != "" {
		sub := widget.NewLabel(subtitle)
		sub.Alignment = fyne.TextAlignCenter
		sub.Wrapping = fyne.TextWrapWord
		c.Add(sub)
	}
	return container.NewCenter(c)
}
