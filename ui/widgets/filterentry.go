package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// FilterEntry is a single-line entry whose trailing icon turns into a
// clear button once text is entered.
type FilterEntry struct {
	widget.Entry

	clear *clearTextButton
}

func NewFilterEntry(placeholder string) *FilterEntry {
	f := &FilterEntry{clear: newClearTextButton()}
	f.ExtendBaseWidget(f)
	f.PlaceHolder = placeholder
	f.clear.OnTapped = func() { f.SetText("") }
	f.ActionItem = f.clear
	return f
}

func (f *FilterEntry) SetText(text string) {
	f.Entry.SetText(text)
	f.updateIcon()
}

func (f *FilterEntry) TypedRune(r rune) {
	f.Entry.TypedRune(r)
	f.updateIcon()
}

func (f *FilterEntry) TypedKey(e *fyne.KeyEvent) {
	f.Entry.TypedKey(e)
	f.updateIcon()
}

func (f *FilterEntry) TypedShortcut(s fyne.Shortcut) {
	f.Entry.TypedShortcut(s)
	f.updateIcon()
}

// updateIcon shows the clear action only while there is text to clear.
func (f *FilterEntry) updateIcon() {
	res := theme.SearchIcon()
	if f.Text != "" {
		res = theme.ContentClearIcon()
	}
	if f.clear.Resource != nil && f.clear.Resource.Name() == res.Name() {
		return
	}
	f.clear.Resource = res
	f.clear.Refresh()
}

var _ fyne.Tappable = (*clearTextButton)(nil)

type clearTextButton struct {
	widget.Icon

	OnTapped func()
}

func newClearTextButton() *clearTextButton {
	c := &clearTextButton{}
	c.ExtendBaseWidget(c)
	c.Resource = theme.SearchIcon()
	return c
}

func (c *clearTextButton) Tapped(*fyne.PointEvent) {
	if c.OnTapped != nil {
		c.OnTapped()
	}
}
