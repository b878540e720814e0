package picker

import (
	"context"
	"fmt"
	"image"
	"log"
	"slices"
	"time"

	"fyne.io/fyne/v2"
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
	"github.com/dweymouth/librarypicker/sharedutil"
)

type State int

const (
	StateUnauthorized State = iota
	StateLoadingAlbums
	StateLoadingActiveAlbum
	StateActiveAlbumReady
	StateConfirmed
	StateCancelled
	StateDenied
)

func (s State) String() string {
	switch s {
	case StateUnauthorized:
		return "unauthorized"
	case StateLoadingAlbums:
		return "loading albums"
	case StateLoadingActiveAlbum:
		return "loading active album"
	case StateActiveAlbumReady:
		return "active album ready"
	case StateConfirmed:
		return "confirmed"
	case StateCancelled:
		return "cancelled"
	case StateDenied:
		return "denied"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Dismissed reports whether the picker has been torn down.
func (s State) Dismissed() bool {
	return s == StateConfirmed || s == StateCancelled
}

var (
	excludedAlbumSubtypes = []mediaprovider.AlbumSubtype{
		mediaprovider.SmartAlbumPanoramas,
		mediaprovider.SmartAlbumTimelapses,
		mediaprovider.SmartAlbumSlomoVideos,
		mediaprovider.SmartAlbumLivePhotos,
	}

	excludedItemSubtypes = mediaprovider.SubtypePhotoLive |
		mediaprovider.SubtypeVideoTimelapse |
		mediaprovider.SubtypeVideoHighFrameRate
)

// CaptureRequest describes what the capture surface may produce.
type CaptureRequest struct {
	Kinds            []mediaprovider.MediaKind
	MaxVideoDuration time.Duration
}

// CaptureResult is a successful capture: a still image or the
// location of a recorded video.
type CaptureResult struct {
	Kind      mediaprovider.MediaKind
	Image     image.Image
	VideoPath string
}

// Session is the picker's state machine. All exported methods and
// callbacks run on the UI goroutine; gateway calls are made in the
// background and their results marshalled back before touching state.
type Session struct {
	gateway  mediaprovider.Gateway
	opts     Options
	delegate Delegate

	runInBackground func(func())
	runOnMain       func(func())

	ctx          context.Context
	cancel       context.CancelFunc
	stopWatching func()

	state       State
	overlayOpen bool
	captureOpen bool
	albumsReady bool
	albums      []*MediaAlbum
	active      *MediaAlbum
	selection   *SelectionSet

	// generation tokens; a completion carrying an older token is dropped
	albumsGen uint64
	activeGen uint64

	// item IDs to reselect once a reload of the active album completes
	reselectIDs map[string]struct{}

	OnStateChanged       func(State)
	OnAlbumsChanged      func(albums []*MediaAlbum, ready bool)
	OnActiveAlbumChanged func(*MediaAlbum)
	OnSelectionChanged   func()
	OnOverlayToggled     func(open bool)
	OnCaptureRequested   func(CaptureRequest)
	OnDismissed          func()
}

// NewSession creates a session that runs gateway calls on new
// goroutines and applies their results with fyne.Do.
func NewSession(gateway mediaprovider.Gateway, opts Options, delegate Delegate) (*Session, error) {
	return newSession(gateway, opts, delegate, func(f func()) { go f() }, fyne.Do)
}

func newSession(gateway mediaprovider.Gateway, opts Options, delegate Delegate, background, main func(func())) (*Session, error) {
	d, err := delegate.resolve()
	if err != nil {
		return nil, err
	}
	opts = opts.normalized()
	return &Session{
		gateway:         gateway,
		opts:            opts,
		delegate:        d,
		runInBackground: background,
		runOnMain:       main,
		ctx:             context.Background(),
		cancel:          func() {},
		selection:       NewSelectionSet(opts.MaximumSelectionsAllowed),
	}, nil
}

func (s *Session) Options() Options { return s.opts }

func (s *Session) State() State { return s.state }

func (s *Session) AlbumsReady() bool { return s.albumsReady }

func (s *Session) OverlayOpen() bool { return s.overlayOpen }

func (s *Session) Albums() []*MediaAlbum { return s.albums }

func (s *Session) ActiveAlbum() *MediaAlbum { return s.active }

func (s *Session) IsSelected(pos int) bool { return s.selection.Contains(pos) }

func (s *Session) SelectionCount() int { return s.selection.Len() }

// Predicate is the item filter derived from the delegate's enabled
// kinds and the configured maximum video duration.
func (s *Session) Predicate() mediaprovider.ItemPredicate {
	return mediaprovider.ItemPredicate{
		Kinds:            s.delegate.EnabledKinds(),
		MaxDuration:      s.opts.MaxVideoDuration,
		ExcludedSubtypes: excludedItemSubtypes,
	}
}

func (s *Session) cameraEnabled() bool {
	return s.opts.TakePhotoEnabled && len(s.delegate.EnabledKinds()) > 0
}

// Start requests library access and begins loading albums.
func (s *Session) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.setState(StateUnauthorized)
	if n, ok := s.gateway.(mediaprovider.ChangeNotifier); ok {
		s.stopWatching = n.OnLibraryChanged(func() { s.runOnMain(s.Reload) })
	}
	ctx = s.ctx
	s.runInBackground(func() {
		status := s.gateway.RequestAuthorization(ctx)
		s.runOnMain(func() {
			if ctx.Err() != nil {
				return
			}
			s.onAuthorization(status)
		})
	})
}

func (s *Session) onAuthorization(status mediaprovider.AuthorizationStatus) {
	if status != mediaprovider.AuthorizationAuthorized {
		log.Printf("media library authorization: %s", status)
		s.setState(StateDenied)
		s.delegate.OnAuthorizationDenied(status)
		return
	}
	s.loadAlbums("")
}

// Reload re-enumerates the library after a change, keeping the active
// album and any still-present selected items.
func (s *Session) Reload() {
	if s.state.Dismissed() || s.state == StateDenied || s.state == StateUnauthorized {
		return
	}
	keepID := ""
	if s.active != nil {
		keepID = sourceID(s.active)
		s.reselectIDs = sharedutil.ToSet(sharedutil.MapSlice(s.SelectedItems(),
			func(it *mediaprovider.Item) string { return it.ID }))
	}
	if s.overlayOpen {
		s.setOverlay(false)
	}
	s.loadAlbums(keepID)
}

func (s *Session) loadAlbums(keepID string) {
	s.setState(StateLoadingAlbums)
	s.albumsReady = false
	s.albumsGen++
	s.activeGen++
	gen := s.albumsGen
	ctx := s.ctx
	s.runInBackground(func() {
		albums, err := s.gateway.FetchAlbums(ctx, mediaprovider.AlbumFetchOptions{
			SortByEndDateDesc: true,
			ExcludedSubtypes:  excludedAlbumSubtypes,
		})
		s.runOnMain(func() {
			if ctx.Err() != nil || gen != s.albumsGen {
				return
			}
			if err != nil {
				log.Printf("failed to fetch albums: %v", err)
			}
			s.onAlbumsLoaded(orderAlbums(albums), keepID)
		})
	})
}

// orderAlbums drops excluded smart albums, sorts newest first and
// moves the user library album to the front.
func orderAlbums(albums []*mediaprovider.Album) []*mediaprovider.Album {
	albums = sharedutil.FilterSlice(albums, func(a *mediaprovider.Album) bool {
		return a != nil && !slices.Contains(excludedAlbumSubtypes, a.Subtype)
	})
	slices.SortStableFunc(albums, func(a, b *mediaprovider.Album) int {
		return b.EndDate.Compare(a.EndDate)
	})
	return sharedutil.MoveToFront(albums, func(a *mediaprovider.Album) bool {
		return a.Subtype == mediaprovider.SmartAlbumUserLibrary
	})
}

func (s *Session) onAlbumsLoaded(sources []*mediaprovider.Album, keepID string) {
	if s.active != nil {
		s.active.setCamera(false)
	}
	s.albums = sharedutil.MapSlice(sources, newMediaAlbum)
	s.active = nil
	if len(s.albums) == 0 {
		s.selection.Clear()
		s.albumsReady = true
		s.setState(StateActiveAlbumReady)
		s.notifyAlbums()
		s.notifyActive()
		return
	}
	active := s.albums[0]
	if keepID != "" {
		for _, a := range s.albums {
			if sourceID(a) == keepID {
				active = a
				break
			}
		}
	}
	if keepID != sourceID(active) {
		s.reselectIDs = nil
	}
	s.selection.Clear()
	s.active = active
	s.notifyAlbums()
	s.loadActiveAlbumItems(active)
}

func (s *Session) loadActiveAlbumItems(album *MediaAlbum) {
	s.setState(StateLoadingActiveAlbum)
	s.notifyActive()
	s.activeGen++
	gen := s.activeGen
	albumsGen := s.albumsGen
	ctx := s.ctx
	pred := s.Predicate()
	src := album.Source
	s.runInBackground(func() {
		items, err := s.fetchItems(ctx, src, pred)
		s.runOnMain(func() {
			if ctx.Err() != nil || gen != s.activeGen || s.active != album {
				return
			}
			if err != nil {
				log.Printf("failed to fetch items of album %q: %v", album.Name, err)
			}
			album.setItems(items, s.cameraEnabled())
			s.restoreSelection()
			s.setState(StateActiveAlbumReady)
			s.notifyActive()
			if !s.albumsReady && albumsGen == s.albumsGen {
				s.loadRemainingAlbumsInfo()
			}
		})
	})
}

func (s *Session) fetchItems(ctx context.Context, src *mediaprovider.Album, pred mediaprovider.ItemPredicate) ([]*mediaprovider.Item, error) {
	if len(pred.Kinds) == 0 {
		return nil, nil
	}
	items, err := s.gateway.FetchItems(ctx, src, pred)
	if err != nil {
		return nil, err
	}
	// the gateway is not trusted to have applied the predicate
	return sharedutil.FilterSlice(items, pred.Matches), nil
}

func (s *Session) restoreSelection() {
	ids := s.reselectIDs
	s.reselectIDs = nil
	if len(ids) == 0 || s.active == nil {
		return
	}
	for pos, slot := range s.active.Slots {
		if slot.IsCamera() {
			continue
		}
		if _, ok := ids[slot.Item().ID]; ok {
			s.selection.Add(pos)
		}
	}
	s.notifySelection()
}

// loadRemainingAlbumsInfo fetches the contents of every album but the
// active one, then drops albums left empty. The album overlay stays
// unavailable until it completes.
func (s *Session) loadRemainingAlbumsInfo() {
	gen := s.albumsGen
	ctx := s.ctx
	pred := s.Predicate()
	var pending []*MediaAlbum
	for _, a := range s.albums {
		if a != s.active && !a.Loaded {
			pending = append(pending, a)
		}
	}
	s.runInBackground(func() {
		results := make(map[*MediaAlbum][]*mediaprovider.Item, len(pending))
		for _, a := range pending {
			if ctx.Err() != nil {
				return
			}
			items, err := s.fetchItems(ctx, a.Source, pred)
			if err != nil {
				log.Printf("failed to fetch items of album %q: %v", a.Name, err)
			}
			results[a] = items
		}
		s.runOnMain(func() {
			if ctx.Err() != nil || gen != s.albumsGen {
				return
			}
			for a, items := range results {
				if a != s.active {
					a.setItems(items, false)
				}
			}
			s.albums = sharedutil.FilterSlice(s.albums, func(a *MediaAlbum) bool {
				return a == s.active || a.ItemCount() > 0
			})
			s.albumsReady = true
			s.notifyAlbums()
		})
	})
}

// ToggleAlbumOverlay opens or closes the album list. It does nothing
// until every album's contents are known.
func (s *Session) ToggleAlbumOverlay() bool {
	if !s.albumsReady || s.active == nil || s.state.Dismissed() {
		return false
	}
	s.setOverlay(!s.overlayOpen)
	return true
}

// SelectAlbum makes album the active one and closes the overlay.
// Choosing the already-active album keeps the current selection.
func (s *Session) SelectAlbum(album *MediaAlbum) {
	if s.state.Dismissed() {
		return
	}
	if s.overlayOpen {
		s.setOverlay(false)
	}
	if album == nil || album == s.active || album.Equal(s.active) || !slices.Contains(s.albums, album) {
		return
	}
	if s.active != nil {
		s.active.setCamera(false)
	}
	s.active = album
	s.selection.Clear()
	s.reselectIDs = nil
	s.notifySelection()
	if !album.Loaded {
		s.loadActiveAlbumItems(album)
		return
	}
	s.activeGen++
	album.setCamera(s.cameraEnabled())
	s.setState(StateActiveAlbumReady)
	s.notifyActive()
}

// ShouldSelect is the selection admission rule. In multi-select mode a
// media slot is admitted only while the selection is below its maximum;
// the camera slot is always admitted.
func (s *Session) ShouldSelect(pos int) bool {
	if s.state != StateActiveAlbumReady || s.active == nil {
		return false
	}
	slot, ok := s.active.SlotAt(pos)
	if !ok {
		return false
	}
	if !s.opts.MultiSelect() || slot.IsCamera() {
		return true
	}
	return !s.selection.Full()
}

// Select applies a selection at pos. Selecting the camera slot starts
// the capture flow instead and never changes the selection.
func (s *Session) Select(pos int) bool {
	if !s.ShouldSelect(pos) {
		return false
	}
	if s.active.Slots[pos].IsCamera() {
		s.requestCapture()
		return false
	}
	if s.selection.Contains(pos) {
		return true
	}
	if !s.opts.MultiSelect() {
		s.selection.Clear()
	}
	s.selection.Add(pos)
	s.notifySelection()
	return true
}

func (s *Session) Deselect(pos int) {
	if s.selection.Remove(pos) {
		s.notifySelection()
	}
}

// Tap toggles the slot at pos the way a grid tap does.
func (s *Session) Tap(pos int) {
	if s.selection.Contains(pos) {
		if s.opts.MultiSelect() {
			s.Deselect(pos)
		}
		return
	}
	s.Select(pos)
}

// SelectedItems returns the selected items in grid order.
func (s *Session) SelectedItems() []*mediaprovider.Item {
	if s.active == nil {
		return nil
	}
	return sharedutil.FilterMapSlice(s.selection.Positions(), func(pos int) (*mediaprovider.Item, bool) {
		slot, ok := s.active.SlotAt(pos)
		return slot.Item(), ok && !slot.IsCamera()
	})
}

// Confirm reports the selection to the delegate and dismisses the
// picker. An empty selection is ignored and returns false.
func (s *Session) Confirm() bool {
	if s.state != StateActiveAlbumReady {
		return false
	}
	items := s.SelectedItems()
	if len(items) == 0 {
		return false
	}
	s.setState(StateConfirmed)
	s.delegate.OnUploadConfirmed(items)
	s.dismiss()
	return true
}

func (s *Session) Cancel() {
	if s.state.Dismissed() {
		return
	}
	s.setState(StateCancelled)
	s.delegate.OnClosed()
	s.dismiss()
}

func (s *Session) requestCapture() {
	if s.captureOpen {
		return
	}
	s.captureOpen = true
	req := CaptureRequest{
		Kinds:            s.delegate.EnabledKinds(),
		MaxVideoDuration: s.opts.MaxVideoDuration,
	}
	if s.OnCaptureRequested != nil {
		s.OnCaptureRequested(req)
	} else {
		s.CaptureCancelled()
	}
}

// CaptureCompleted hands the captured media to the delegate and
// dismisses the picker.
func (s *Session) CaptureCompleted(res CaptureResult) {
	if !s.captureOpen || s.state.Dismissed() {
		return
	}
	s.captureOpen = false
	switch res.Kind {
	case mediaprovider.MediaKindImage:
		s.delegate.OnPhotoCaptured(res.Image)
	case mediaprovider.MediaKindVideo:
		s.delegate.OnVideoCaptured(res.VideoPath)
	default:
		log.Printf("ignoring capture of unknown kind %s", res.Kind)
		return
	}
	s.setState(StateConfirmed)
	s.dismiss()
}

// CaptureCancelled returns to the grid with the selection untouched.
func (s *Session) CaptureCancelled() {
	s.captureOpen = false
}

func (s *Session) CaptureFailed(err error) {
	log.Printf("capture failed: %v", err)
	s.CaptureCancelled()
}

func (s *Session) dismiss() {
	s.cancel()
	if s.stopWatching != nil {
		s.stopWatching()
		s.stopWatching = nil
	}
	s.overlayOpen = false
	s.captureOpen = false
	if s.OnDismissed != nil {
		s.OnDismissed()
	}
}

func (s *Session) setOverlay(open bool) {
	s.overlayOpen = open
	if s.OnOverlayToggled != nil {
		s.OnOverlayToggled(open)
	}
}

func (s *Session) setState(st State) {
	s.state = st
	if s.OnStateChanged != nil {
		s.OnStateChanged(st)
	}
}

func (s *Session) notifyAlbums() {
	if s.OnAlbumsChanged != nil {
		s.OnAlbumsChanged(s.albums, s.albumsReady)
	}
}

func (s *Session) notifyActive() {
	if s.OnActiveAlbumChanged != nil {
		s.OnActiveAlbumChanged(s.active)
	}
}

func (s *Session) notifySelection() {
	if s.OnSelectionChanged != nil {
		s.OnSelectionChanged()
	}
}
