package picker

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
	"github.com/dweymouth/librarypicker/sharedutil"
	"github.com/dweymouth/librarypicker/ui/layouts"
	myTheme "github.com/dweymouth/librarypicker/ui/theme"
	"github.com/dweymouth/librarypicker/ui/util"
	"github.com/dweymouth/librarypicker/ui/widgets"

	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
)

const (
	overlayAnimDuration = 200 * time.Millisecond
	minCellSize         = 64
)

// ImageSource serves thumbnails and their dominant colors.
// impl: backend.ImageManager
type ImageSource interface {
	util.ImageFetcher
	widgets.ColorSource
}

// Screen is the picker UI: a navigation bar with cancel, album and
// upload controls over a grid of the active album's items, with the
// album list sliding down over the grid on demand.
type Screen struct {
	widget.BaseWidget

	// OnDismissed is called after the picker confirmed or cancelled;
	// the host should hide whatever window or dialog holds the screen.
	OnDismissed func()

	session  *Session
	images   ImageSource
	capture  CaptureSurface
	cellSize float32

	cancelBtn *ttwidget.Button
	uploadBtn *ttwidget.Button
	albumBtn  *ttwidget.Button
	grid      *widget.GridWrap
	albumList *widgets.AlbumListView
	loading   *widgets.LoadingDots
	emptyMsg  fyne.CanvasObject
	deniedMsg fyne.CanvasObject

	overlay      *fyne.Container
	overlaySlide *layouts.SlideLayout
	overlayAnim  *fyne.Animation

	cells   []*slotCell
	content *fyne.Container
}

// NewScreen creates a picker over gateway. capture may be nil, in
// which case the camera slot does nothing.
func NewScreen(gateway mediaprovider.Gateway, images ImageSource, opts Options, delegate Delegate, capture CaptureSurface) (*Screen, error) {
	session, err := NewSession(gateway, opts, delegate)
	if err != nil {
		return nil, err
	}
	return newScreen(session, images, capture), nil
}

func newScreen(session *Session, images ImageSource, capture CaptureSurface) *Screen {
	opts := session.Options()
	s := &Screen{
		session:  session,
		images:   images,
		capture:  capture,
		cellSize: fyne.Max(minCellSize, float32(opts.ThumbnailSize)*0.6),
	}
	s.ExtendBaseWidget(s)
	s.buildNavBar(opts)
	s.buildGrid()
	s.buildOverlay()
	s.loading = widgets.NewLoadingDots()
	s.emptyMsg = widgets.NewInfoMessage(theme.MediaPhotoIcon(), "No photos or videos", "")
	s.emptyMsg.Hide()
	s.deniedMsg = widgets.NewInfoMessage(theme.WarningIcon(), "No access to the library",
		"Allow access to your photos to pick items.")
	s.deniedMsg.Hide()

	navBar := container.New(layouts.NewLeftMiddleRightLayout(),
		container.NewThemeOverride(s.cancelBtn, myTheme.ButtonTheme(opts.CancelButtonColor)),
		s.albumBtn,
		container.NewThemeOverride(s.uploadBtn, myTheme.ButtonTheme(opts.UploadButtonColor)),
	)
	body := container.NewStack(s.grid, container.NewCenter(s.loading), s.emptyMsg, s.deniedMsg, s.overlay)
	s.content = container.NewBorder(container.NewVBox(navBar, widget.NewSeparator()), nil, nil, nil, body)

	s.wireSession()
	return s
}

func (s *Screen) buildNavBar(opts Options) {
	s.cancelBtn = ttwidget.NewButton(opts.CancelButtonTitle, s.session.Cancel)
	s.cancelBtn.Importance = widget.HighImportance
	s.cancelBtn.SetToolTip("Close without picking")

	s.uploadBtn = ttwidget.NewButton(opts.UploadButtonTitle, func() { s.session.Confirm() })
	s.uploadBtn.Importance = widget.HighImportance
	s.uploadBtn.SetToolTip("Send the selected items")

	s.albumBtn = ttwidget.NewButtonWithIcon("", theme.MenuDropDownIcon(), func() { s.session.ToggleAlbumOverlay() })
	s.albumBtn.IconPlacement = widget.ButtonIconTrailingText
	s.albumBtn.Importance = widget.LowImportance
	s.albumBtn.SetToolTip("Switch album")
	s.albumBtn.Disable()
}

func (s *Screen) buildGrid() {
	s.grid = widget.NewGridWrap(
		func() int {
			if a := s.session.ActiveAlbum(); a != nil {
				return len(a.Slots)
			}
			return 0
		},
		s.createCell,
		s.updateCell,
	)
}

func (s *Screen) buildOverlay() {
	s.albumList = widgets.NewAlbumListView(s.images, s.images, s.cellSize/2)
	s.albumList.OnAlbumSelected = s.onAlbumSelected
	bg := myTheme.NewThemedRectangle(theme.ColorNameBackground)
	s.overlaySlide = &layouts.SlideLayout{Hidden: 1}
	s.overlay = container.New(s.overlaySlide, container.NewStack(bg, s.albumList))
	s.overlay.Hide()
}

// slotCell holds both cell kinds; the grid reuses it for either.
type slotCell struct {
	widget.BaseWidget

	pos    widget.GridWrapItemID
	camera *widgets.CameraCell
	thumb  *widgets.ThumbnailCell
}

func (c *slotCell) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(c.camera, c.thumb))
}

func (s *Screen) createCell() fyne.CanvasObject {
	c := &slotCell{
		camera: widgets.NewCameraCell(s.cellSize),
		thumb:  widgets.NewThumbnailCell(s.images, s.cellSize),
	}
	c.ExtendBaseWidget(c)
	c.camera.OnTapped = func() { s.session.Select(c.pos) }
	c.thumb.OnTapped = func() { s.session.Tap(c.pos) }
	c.camera.Hide()
	s.cells = append(s.cells, c)
	return c
}

func (s *Screen) updateCell(id widget.GridWrapItemID, obj fyne.CanvasObject) {
	c := obj.(*slotCell)
	c.pos = id
	active := s.session.ActiveAlbum()
	if active == nil {
		return
	}
	slot, ok := active.SlotAt(id)
	if !ok {
		return
	}
	if slot.IsCamera() {
		c.thumb.Hide()
		c.thumb.Bind(nil)
		c.camera.Show()
		return
	}
	c.camera.Hide()
	c.thumb.Show()
	c.thumb.Bind(slot.Item())
	c.thumb.SetSelected(s.session.IsSelected(id))
}

func (s *Screen) wireSession() {
	ss := s.session
	ss.OnStateChanged = s.onStateChanged
	ss.OnAlbumsChanged = func([]*MediaAlbum, bool) { s.refreshAlbumList() }
	ss.OnActiveAlbumChanged = s.onActiveAlbumChanged
	ss.OnSelectionChanged = s.onSelectionChanged
	ss.OnOverlayToggled = s.onOverlayToggled
	ss.OnDismissed = s.onDismissed
	if s.capture != nil {
		ss.OnCaptureRequested = func(req CaptureRequest) {
			s.capture.Present(req, func(res CaptureResult, err error) {
				handleCaptureDone(ss, res, err)
			})
		}
	}
}

// Start begins loading the library. Call it once the screen is shown.
func (s *Screen) Start(ctx context.Context) {
	s.session.Start(ctx)
}

func (s *Screen) Session() *Session {
	return s.session
}

func (s *Screen) onStateChanged(st State) {
	switch st {
	case StateUnauthorized, StateLoadingAlbums, StateLoadingActiveAlbum:
		s.loading.Start()
		s.emptyMsg.Hide()
	case StateDenied:
		s.loading.Stop()
		s.deniedMsg.Show()
		s.uploadBtn.Disable()
	default:
		s.loading.Stop()
	}
	s.updateEmptyMessage()
}

func (s *Screen) onActiveAlbumChanged(a *MediaAlbum) {
	if a == nil {
		s.albumBtn.SetText("")
	} else {
		s.albumBtn.SetText(a.Name)
	}
	s.updateEmptyMessage()
	s.grid.Refresh()
	s.grid.ScrollToTop()
	s.updateUploadTitle()
}

func (s *Screen) updateEmptyMessage() {
	a := s.session.ActiveAlbum()
	empty := s.session.State() == StateActiveAlbumReady && (a == nil || len(a.Slots) == 0)
	if empty {
		s.emptyMsg.Show()
	} else {
		s.emptyMsg.Hide()
	}
}

func (s *Screen) onSelectionChanged() {
	s.grid.Refresh()
	s.updateUploadTitle()
}

func (s *Screen) updateUploadTitle() {
	opts := s.session.Options()
	title := opts.UploadButtonTitle
	if n := s.session.SelectionCount(); opts.MultiSelect() && n > 0 {
		title = fmt.Sprintf("%s (%d/%d)", title, n, opts.MaximumSelectionsAllowed)
	}
	s.uploadBtn.SetText(title)
}

func (s *Screen) refreshAlbumList() {
	active := ""
	if a := s.session.ActiveAlbum(); a != nil {
		active = sourceID(a)
	}
	s.albumList.SetAlbums(sharedutil.MapSlice(s.session.Albums(), albumListModel), active)
	if s.session.AlbumsReady() {
		s.albumBtn.Enable()
	} else {
		s.albumBtn.Disable()
	}
}

func albumListModel(a *MediaAlbum) widgets.AlbumListModel {
	return widgets.AlbumListModel{
		ID:        sourceID(a),
		Name:      a.Name,
		ItemCount: a.ItemCount(),
		CoverItem: a.FirstItem(),
	}
}

func (s *Screen) onAlbumSelected(id string) {
	for _, a := range s.session.Albums() {
		if sourceID(a) == id {
			s.session.SelectAlbum(a)
			return
		}
	}
}

func (s *Screen) onOverlayToggled(open bool) {
	if open {
		s.albumBtn.SetIcon(theme.MenuDropUpIcon())
		s.albumList.ClearFilter()
		s.refreshAlbumList()
		s.overlay.Show()
	} else {
		s.albumBtn.SetIcon(theme.MenuDropDownIcon())
	}
	s.animateOverlay(open)
}

func (s *Screen) animateOverlay(open bool) {
	if s.overlayAnim != nil {
		s.overlayAnim.Stop()
	}
	from := s.overlaySlide.Hidden
	to := float32(1)
	if open {
		to = 0
	}
	s.overlayAnim = fyne.NewAnimation(overlayAnimDuration, func(f float32) {
		s.overlaySlide.Hidden = from + (to-from)*f
		s.overlay.Refresh()
		if f == 1 && !open {
			s.overlay.Hide()
		}
	})
	s.overlayAnim.Curve = fyne.AnimationEaseOut
	s.overlayAnim.Start()
}

func (s *Screen) onDismissed() {
	if s.overlayAnim != nil {
		s.overlayAnim.Stop()
	}
	s.loading.Stop()
	for _, c := range s.cells {
		c.thumb.Bind(nil)
	}
	if s.OnDismissed != nil {
		s.OnDismissed()
	}
}

// TypedKey handles the picker's keyboard commands. Hosts forward
// canvas key events here. Escape closes the album list or else
// cancels, and Return confirms.
func (s *Screen) TypedKey(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyEscape:
		if s.session.OverlayOpen() {
			s.session.ToggleAlbumOverlay()
		} else {
			s.session.Cancel()
		}
	case fyne.KeyReturn, fyne.KeyEnter:
		s.session.Confirm()
	}
}

func (s *Screen) MinSize() fyne.Size {
	cols := float32(s.session.Options().ColumnsHint)
	pad := theme.Padding()
	min := s.content.MinSize()
	return fyne.NewSize(fyne.Max(min.Width, cols*s.cellSize+(cols+1)*pad), min.Height)
}

func (s *Screen) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.content)
}
