package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/charlievieth/strcase"
	"github.com/deluan/sanitize"
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
	"github.com/dweymouth/librarypicker/sharedutil"
	"github.com/dweymouth/librarypicker/ui/util"

	list "github.com/dweymouth/fyne-advanced-list"
)

// AlbumListModel is the data shown by one album row.
type AlbumListModel struct {
	ID        string
	Name      string
	ItemCount int
	CoverItem *mediaprovider.Item
}

// AlbumListView lists the library albums with the active one selected.
// Activating a row reports it through OnAlbumSelected; the owner
// decides when to hide the view.
type AlbumListView struct {
	widget.BaseWidget

	OnAlbumSelected func(albumID string)

	im        util.ImageFetcher
	colors    ColorSource
	thumbSize float32

	albums   []AlbumListModel
	visible  []AlbumListModel
	activeID string
	query    string

	filter  *FilterEntry
	list    *list.List
	content *fyne.Container
}

func NewAlbumListView(im util.ImageFetcher, colors ColorSource, thumbSize float32) *AlbumListView {
	a := &AlbumListView{im: im, colors: colors, thumbSize: thumbSize}
	a.ExtendBaseWidget(a)
	a.list = &list.List{
		HideSeparators: true,
		Length:         func() int { return len(a.visible) },
		CreateItem:     a.createRow,
		UpdateItem:     a.updateRow,
	}
	a.list.ExtendBaseWidget(a.list)

	a.filter = NewFilterEntry("Filter albums")
	a.filter.OnChanged = a.SetFilter

	a.content = container.NewBorder(container.NewPadded(a.filter), nil, nil, nil, a.list)
	return a
}

func (a *AlbumListView) createRow() fyne.CanvasObject {
	row := NewAlbumRow(a.im, a.colors, a.thumbSize)
	row.OnTapped = func() { a.onRowTapped(row) }
	row.OnFocusNeighbor = func(up bool) { a.focusNeighbor(row.ListItemID, up) }
	return row
}

func (a *AlbumListView) updateRow(id widget.ListItemID, obj fyne.CanvasObject) {
	if id < 0 || id >= len(a.visible) {
		return
	}
	row := obj.(*AlbumRow)
	row.ListItemID = id
	model := a.visible[id]
	row.Update(model, model.ID == a.activeID)
}

func (a *AlbumListView) onRowTapped(row *AlbumRow) {
	if a.OnAlbumSelected != nil {
		a.OnAlbumSelected(row.AlbumID())
	}
}

func (a *AlbumListView) focusNeighbor(cur widget.ListItemID, up bool) {
	next := cur + 1
	if up {
		next = cur - 1
	}
	if next < 0 || next >= len(a.visible) {
		return
	}
	a.list.ScrollTo(next)
	if other := a.list.ItemForID(next); other != nil {
		if c := fyne.CurrentApp().Driver().CanvasForObject(a); c != nil {
			c.Focus(other.(fyne.Focusable))
		}
	}
}

// SetAlbums replaces the listed albums and marks activeID as selected.
func (a *AlbumListView) SetAlbums(albums []AlbumListModel, activeID string) {
	a.albums = albums
	a.activeID = activeID
	a.applyFilter()
}

// SetFilter narrows the rows to names containing query, ignoring
// case and accents.
func (a *AlbumListView) SetFilter(query string) {
	a.query = query
	a.applyFilter()
}

func (a *AlbumListView) applyFilter() {
	if a.query == "" {
		a.visible = a.albums
	} else {
		q := sanitize.Accents(a.query)
		a.visible = sharedutil.FilterSlice(a.albums, func(m AlbumListModel) bool {
			return strcase.Contains(sanitize.Accents(m.Name), q)
		})
	}
	a.list.Refresh()
	for i, m := range a.visible {
		if m.ID == a.activeID {
			a.list.ScrollTo(i)
			break
		}
	}
}

// ClearFilter resets the filter entry, e.g. when the view is reopened.
func (a *AlbumListView) ClearFilter() {
	a.query = ""
	a.filter.SetText("")
	a.applyFilter()
}

// VisibleAlbums returns the rows currently shown.
func (a *AlbumListView) VisibleAlbums() []AlbumListModel {
	return a.visible
}

func (a *AlbumListView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(a.content)
}
