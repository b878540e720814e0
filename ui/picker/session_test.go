package picker

import (
	"context"
	"errors"
	"image"
	"slices"
	"testing"
	"time"

	"github.com/dweymouth/librarypicker/backend/mediaprovider"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeGateway struct {
	status    mediaprovider.AuthorizationStatus
	albums    []*mediaprovider.Album
	items     map[string][]*mediaprovider.Item
	albumsErr error

	albumFetches int
	itemFetches  []string
	onChange     func()
}

func (f *fakeGateway) RequestAuthorization(context.Context) mediaprovider.AuthorizationStatus {
	return f.status
}

// FetchAlbums deliberately ignores the fetch options.
func (f *fakeGateway) FetchAlbums(context.Context, mediaprovider.AlbumFetchOptions) ([]*mediaprovider.Album, error) {
	f.albumFetches++
	return slices.Clone(f.albums), f.albumsErr
}

// FetchItems deliberately ignores the predicate.
func (f *fakeGateway) FetchItems(_ context.Context, a *mediaprovider.Album, _ mediaprovider.ItemPredicate) ([]*mediaprovider.Item, error) {
	f.itemFetches = append(f.itemFetches, a.ID)
	return slices.Clone(f.items[a.ID]), nil
}

func (f *fakeGateway) RequestThumbnail(context.Context, *mediaprovider.Item, int) (image.Image, error) {
	return nil, mediaprovider.ErrNoThumbnail
}

func (f *fakeGateway) OnLibraryChanged(cb func()) func() {
	f.onChange = cb
	return func() { f.onChange = nil }
}

func album(id, name string, sub mediaprovider.AlbumSubtype, endDay int) *mediaprovider.Album {
	return &mediaprovider.Album{ID: id, Name: name, Subtype: sub, EndDate: baseTime.AddDate(0, 0, endDay)}
}

func images(prefix string, n int) []*mediaprovider.Item {
	items := make([]*mediaprovider.Item, n)
	for i := range items {
		items[i] = &mediaprovider.Item{ID: prefix + string(rune('a'+i)), Kind: mediaprovider.MediaKindImage}
	}
	return items
}

func video(id string, d time.Duration, sub mediaprovider.MediaSubtype) *mediaprovider.Item {
	return &mediaprovider.Item{ID: id, Kind: mediaprovider.MediaKindVideo, Duration: d, Subtypes: sub}
}

type recordingDelegate struct {
	confirmed [][]*mediaprovider.Item
	closed    int
	photos    []image.Image
	videos    []string
	denied    []mediaprovider.AuthorizationStatus
}

func (r *recordingDelegate) delegate(photo, video bool) Delegate {
	return Delegate{
		SendPhotoEnabled:      photo,
		SendVideoEnabled:      video,
		OnUploadConfirmed:     func(items []*mediaprovider.Item) { r.confirmed = append(r.confirmed, items) },
		OnClosed:              func() { r.closed++ },
		OnPhotoCaptured:       func(img image.Image) { r.photos = append(r.photos, img) },
		OnVideoCaptured:       func(p string) { r.videos = append(r.videos, p) },
		OnAuthorizationDenied: func(s mediaprovider.AuthorizationStatus) { r.denied = append(r.denied, s) },
	}
}

func runNow(f func()) { f() }

func newSyncSession(t *testing.T, g mediaprovider.Gateway, opts Options, d Delegate) *Session {
	t.Helper()
	s, err := newSession(g, opts, d, runNow, runNow)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// queue defers background work until the test runs it.
type queue struct{ pending []func() }

func (q *queue) add(f func()) { q.pending = append(q.pending, f) }

func (q *queue) runNext(t *testing.T) {
	t.Helper()
	if len(q.pending) == 0 {
		t.Fatal("no pending background work")
	}
	f := q.pending[0]
	q.pending = q.pending[1:]
	f()
}

func (q *queue) drain() {
	for len(q.pending) > 0 {
		f := q.pending[0]
		q.pending = q.pending[1:]
		f()
	}
}

func itemIDs(items []*mediaprovider.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func albumNames(albums []*MediaAlbum) []string {
	names := make([]string, len(albums))
	for i, a := range albums {
		names[i] = a.Name
	}
	return names
}

func singleAlbumGateway(items []*mediaprovider.Item) *fakeGateway {
	return &fakeGateway{
		status: mediaprovider.AuthorizationAuthorized,
		albums: []*mediaprovider.Album{album("all", "All Photos", mediaprovider.SmartAlbumUserLibrary, 0)},
		items:  map[string][]*mediaprovider.Item{"all": items},
	}
}

func Test_LoadAlbums_OrderAndExclusion(t *testing.T) {
	g := &fakeGateway{
		status: mediaprovider.AuthorizationAuthorized,
		albums: []*mediaprovider.Album{
			album("trip", "Trip", mediaprovider.AlbumRegular, 3),
			album("pano", "Panoramas", mediaprovider.SmartAlbumPanoramas, 9),
			album("all", "All Photos", mediaprovider.SmartAlbumUserLibrary, 1),
			album("vid", "Videos", mediaprovider.SmartAlbumVideos, 8),
			album("live", "Live Photos", mediaprovider.SmartAlbumLivePhotos, 7),
			album("tl", "Time-lapse", mediaprovider.SmartAlbumTimelapses, 6),
			album("slomo", "Slo-mo", mediaprovider.SmartAlbumSlomoVideos, 6),
			album("home", "Home", mediaprovider.AlbumRegular, 5),
			album("empty", "Empty", mediaprovider.AlbumRegular, 4),
		},
		items: map[string][]*mediaprovider.Item{
			"all":  images("all", 4),
			"trip": images("trip", 2),
			"home": images("home", 1),
			"vid":  {video("v1", 5*time.Second, 0)},
			"pano": images("pano", 2),
		},
	}
	rec := &recordingDelegate{}
	s := newSyncSession(t, g, DefaultOptions(), rec.delegate(true, false))

	var readyCalls int
	s.OnAlbumsChanged = func(_ []*MediaAlbum, ready bool) {
		if ready {
			readyCalls++
		}
	}
	s.Start(context.Background())

	if s.State() != StateActiveAlbumReady || !s.AlbumsReady() || readyCalls != 1 {
		t.Fatalf("state %s, albumsReady %v, ready calls %d", s.State(), s.AlbumsReady(), readyCalls)
	}
	// videos are not enabled, so the Videos album and the empty album drop out
	want := []string{"All Photos", "Home", "Trip"}
	if got := albumNames(s.Albums()); !slices.Equal(got, want) {
		t.Errorf("albums = %v, want %v", got, want)
	}
	if s.ActiveAlbum().Name != "All Photos" {
		t.Errorf("active album = %s", s.ActiveAlbum().Name)
	}
	if slices.Contains(g.itemFetches, "pano") {
		t.Error("excluded album contents were fetched")
	}
}

func Test_OrderAlbums_UserLibraryFirst(t *testing.T) {
	in := []*mediaprovider.Album{
		album("a", "A", mediaprovider.AlbumRegular, 1),
		album("b", "B", mediaprovider.AlbumRegular, 3),
		album("all", "All Photos", mediaprovider.SmartAlbumUserLibrary, 0),
		album("c", "C", mediaprovider.AlbumRegular, 2),
	}
	got := orderAlbums(in)
	ids := make([]string, len(got))
	for i, a := range got {
		ids[i] = a.ID
	}
	if want := []string{"all", "b", "c", "a"}; !slices.Equal(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}
	if got := orderAlbums(nil); len(got) != 0 {
		t.Errorf("expected no albums, got %d", len(got))
	}
}

func Test_FetchItems_PredicateEnforced(t *testing.T) {
	items := []*mediaprovider.Item{
		{ID: "still", Kind: mediaprovider.MediaKindImage},
		{ID: "pano", Kind: mediaprovider.MediaKindImage, Subtypes: mediaprovider.SubtypePhotoPanorama},
		{ID: "live", Kind: mediaprovider.MediaKindImage, Subtypes: mediaprovider.SubtypePhotoLive},
		video("short", 19*time.Second, 0),
		video("exact", 20*time.Second, 0),
		video("long", 21*time.Second, 0),
		video("hfr", 3*time.Second, mediaprovider.SubtypeVideoHighFrameRate),
		video("timelapse", 3*time.Second, mediaprovider.SubtypeVideoTimelapse),
		{ID: "other", Kind: mediaprovider.MediaKindUnknown},
	}
	for _, tt := range []struct {
		name         string
		photo, video bool
		want         []string
	}{
		{"photos only", true, false, []string{"still", "pano"}},
		{"videos only", false, true, []string{"short", "exact"}},
		{"both", true, true, []string{"still", "pano", "short", "exact"}},
		{"neither", false, false, nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingDelegate{}
			opts := DefaultOptions()
			opts.TakePhotoEnabled = false
			s := newSyncSession(t, singleAlbumGateway(items), opts, rec.delegate(tt.photo, tt.video))
			s.Start(context.Background())

			var got []string
			for _, slot := range s.ActiveAlbum().Slots {
				got = append(got, slot.Item().ID)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("items = %v, want %v", got, tt.want)
			}
			pred := s.Predicate()
			for _, slot := range s.ActiveAlbum().Slots {
				if !pred.Matches(slot.Item()) {
					t.Errorf("item %s does not match predicate", slot.Item().ID)
				}
			}
		})
	}
}

func Test_MultiSelect_CapAndConfirmOrder(t *testing.T) {
	rec := &recordingDelegate{}
	opts := DefaultOptions()
	opts.MaximumSelectionsAllowed = 3
	opts.TakePhotoEnabled = true
	items := images("img", 5)
	s := newSyncSession(t, singleAlbumGateway(items), opts, rec.delegate(true, false))
	s.Start(context.Background())

	if !s.ActiveAlbum().HasCamera() || len(s.ActiveAlbum().Slots) != 6 {
		t.Fatalf("expected camera slot plus 5 items, got %d slots", len(s.ActiveAlbum().Slots))
	}
	for _, pos := range []int{3, 1, 2} {
		if !s.Select(pos) {
			t.Fatalf("select %d rejected", pos)
		}
	}
	if s.ShouldSelect(4) {
		t.Error("fourth item admitted past the maximum")
	}
	if s.Select(4) || s.IsSelected(4) {
		t.Error("fourth item selected past the maximum")
	}
	if !s.ShouldSelect(0) {
		t.Error("camera slot should always be selectable")
	}

	if !s.Confirm() {
		t.Fatal("confirm with a selection failed")
	}
	if len(rec.confirmed) != 1 {
		t.Fatalf("expected exactly one upload call, got %d", len(rec.confirmed))
	}
	want := []string{"imga", "imgb", "imgc"}
	if got := itemIDs(rec.confirmed[0]); !slices.Equal(got, want) {
		t.Errorf("confirmed %v, want %v", got, want)
	}
	if s.State() != StateConfirmed {
		t.Errorf("state = %s", s.State())
	}
	if s.Confirm() || len(rec.confirmed) != 1 {
		t.Error("second confirm should be ignored")
	}
}

func Test_MultiSelect_DeselectFreesSlot(t *testing.T) {
	rec := &recordingDelegate{}
	opts := DefaultOptions()
	opts.MaximumSelectionsAllowed = 2
	opts.TakePhotoEnabled = false
	s := newSyncSession(t, singleAlbumGateway(images("i", 4)), opts, rec.delegate(true, false))
	s.Start(context.Background())

	s.Tap(0)
	s.Tap(1)
	if s.ShouldSelect(2) {
		t.Fatal("selection should be full")
	}
	s.Tap(0) // toggles off
	if !s.ShouldSelect(2) || !s.Select(2) {
		t.Fatal("deselecting should free a slot")
	}
	s.Confirm()
	if got := itemIDs(rec.confirmed[0]); !slices.Equal(got, []string{"ib", "ic"}) {
		t.Errorf("confirmed %v", got)
	}
}

func Test_SingleSelect_ReplacesPick(t *testing.T) {
	rec := &recordingDelegate{}
	opts := DefaultOptions()
	opts.MaximumSelectionsAllowed = 1
	items := images("img", 5)
	s := newSyncSession(t, singleAlbumGateway(items), opts, rec.delegate(true, false))
	s.Start(context.Background())

	s.Tap(2)
	s.Tap(4)
	if !s.ShouldSelect(3) {
		t.Error("single-select admits every position")
	}
	if s.SelectionCount() != 1 || !s.IsSelected(4) {
		t.Fatalf("expected only position 4 selected")
	}
	s.Confirm()
	if len(rec.confirmed) != 1 {
		t.Fatalf("expected one upload call, got %d", len(rec.confirmed))
	}
	// position 4 is the fourth item, after the camera slot
	if got := itemIDs(rec.confirmed[0]); !slices.Equal(got, []string{"imgd"}) {
		t.Errorf("confirmed %v", got)
	}
}

func Test_CameraSlot_CaptureCancelled(t *testing.T) {
	rec := &recordingDelegate{}
	opts := DefaultOptions()
	opts.MaximumSelectionsAllowed = 3
	s := newSyncSession(t, singleAlbumGateway(images("img", 3)), opts, rec.delegate(true, true))
	var requests []CaptureRequest
	s.OnCaptureRequested = func(r CaptureRequest) { requests = append(requests, r) }
	s.Start(context.Background())

	if s.Select(0) {
		t.Error("camera slot must not report as selected")
	}
	if len(requests) != 1 {
		t.Fatalf("expected one capture request, got %d", len(requests))
	}
	wantKinds := []mediaprovider.MediaKind{mediaprovider.MediaKindImage, mediaprovider.MediaKindVideo}
	if !slices.Equal(requests[0].Kinds, wantKinds) || requests[0].MaxVideoDuration != 20*time.Second {
		t.Errorf("unexpected capture request %+v", requests[0])
	}
	if s.IsSelected(0) || s.SelectionCount() != 0 {
		t.Error("camera slot entered the selection")
	}

	s.CaptureCancelled()
	if s.State() != StateActiveAlbumReady || s.SelectionCount() != 0 {
		t.Errorf("capture cancel changed state: %s, %d selected", s.State(), s.SelectionCount())
	}
	if s.Confirm() {
		t.Error("confirm with empty selection should be a no-op")
	}
	if len(rec.confirmed) != 0 || rec.closed != 0 || s.State() != StateActiveAlbumReady {
		t.Error("empty confirm must not call the delegate or dismiss")
	}
}

func Test_CaptureCompleted_RoutesByKind(t *testing.T) {
	for _, kind := range []mediaprovider.MediaKind{mediaprovider.MediaKindImage, mediaprovider.MediaKindVideo} {
		t.Run(kind.String(), func(t *testing.T) {
			rec := &recordingDelegate{}
			s := newSyncSession(t, singleAlbumGateway(images("img", 1)), DefaultOptions(), rec.delegate(true, true))
			s.OnCaptureRequested = func(CaptureRequest) {}
			var dismissed int
			s.OnDismissed = func() { dismissed++ }
			s.Start(context.Background())

			s.Select(0)
			img := image.NewRGBA(image.Rect(0, 0, 1, 1))
			s.CaptureCompleted(CaptureResult{Kind: kind, Image: img, VideoPath: "/tmp/clip.mov"})

			if kind == mediaprovider.MediaKindImage && (len(rec.photos) != 1 || len(rec.videos) != 0) {
				t.Errorf("photo capture routed wrong: %d photos, %d videos", len(rec.photos), len(rec.videos))
			}
			if kind == mediaprovider.MediaKindVideo && (len(rec.videos) != 1 || rec.videos[0] != "/tmp/clip.mov" || len(rec.photos) != 0) {
				t.Errorf("video capture routed wrong: %v", rec.videos)
			}
			if dismissed != 1 || !s.State().Dismissed() {
				t.Errorf("picker not dismissed after capture")
			}
			if len(rec.confirmed) != 0 {
				t.Error("capture must not report an upload")
			}
		})
	}
}

func Test_CaptureCompleted_WithoutRequestIgnored(t *testing.T) {
	rec := &recordingDelegate{}
	s := newSyncSession(t, singleAlbumGateway(images("img", 1)), DefaultOptions(), rec.delegate(true, false))
	s.Start(context.Background())
	s.CaptureCompleted(CaptureResult{Kind: mediaprovider.MediaKindImage})
	if len(rec.photos) != 0 || s.State().Dismissed() {
		t.Error("unsolicited capture result should be ignored")
	}
	s.OnCaptureRequested = func(CaptureRequest) {}
	s.Select(0)
	s.CaptureFailed(errors.New("camera unavailable"))
	if s.State() != StateActiveAlbumReady {
		t.Errorf("capture failure should return to the grid, state %s", s.State())
	}
}

func Test_AlbumOverlay_ToggleIdempotent(t *testing.T) {
	g := &fakeGateway{
		status: mediaprovider.AuthorizationAuthorized,
		albums: []*mediaprovider.Album{
			album("all", "All Photos", mediaprovider.SmartAlbumUserLibrary, 0),
			album("trip", "Trip", mediaprovider.AlbumRegular, 1),
		},
		items: map[string][]*mediaprovider.Item{"all": images("a", 4), "trip": images("t", 2)},
	}
	rec := &recordingDelegate{}
	opts := DefaultOptions()
	opts.MaximumSelectionsAllowed = 2
	s := newSyncSession(t, g, opts, rec.delegate(true, false))
	var toggles []bool
	s.OnOverlayToggled = func(open bool) { toggles = append(toggles, open) }
	s.Start(context.Background())

	s.Select(1)
	s.Select(3)
	active := s.ActiveAlbum()
	for range 2 {
		s.ToggleAlbumOverlay()
		if !s.OverlayOpen() {
			t.Fatal("overlay did not open")
		}
		s.ToggleAlbumOverlay()
		if s.OverlayOpen() {
			t.Fatal("overlay did not close")
		}
	}
	if !slices.Equal(toggles, []bool{true, false, true, false}) {
		t.Errorf("toggles = %v", toggles)
	}
	if s.ActiveAlbum() != active || !s.IsSelected(1) || !s.IsSelected(3) || s.SelectionCount() != 2 {
		t.Error("overlay round trips changed album or selection")
	}
}

func Test_AlbumOverlay_GatedUntilAlbumsReady(t *testing.T) {
	g := &fakeGateway{
		status: mediaprovider.AuthorizationAuthorized,
		albums: []*mediaprovider.Album{
			album("all", "All Photos", mediaprovider.SmartAlbumUserLibrary, 0),
			album("trip", "Trip", mediaprovider.AlbumRegular, 1),
		},
		items: map[string][]*mediaprovider.Item{"all": images("a", 2), "trip": images("t", 2)},
	}
	rec := &recordingDelegate{}
	q := &queue{}
	s, err := newSession(g, DefaultOptions(), rec.delegate(true, false), q.add, runNow)
	if err != nil {
		t.Fatal(err)
	}
	s.Start(context.Background())
	q.runNext(t) // authorization
	q.runNext(t) // albums
	q.runNext(t) // active album items

	if s.State() != StateActiveAlbumReady {
		t.Fatalf("state = %s", s.State())
	}
	if s.AlbumsReady() || s.ToggleAlbumOverlay() || s.OverlayOpen() {
		t.Error("overlay must stay closed until remaining albums are loaded")
	}
	q.runNext(t) // remaining albums
	if !s.AlbumsReady() || !s.ToggleAlbumOverlay() || !s.OverlayOpen() {
		t.Error("overlay should open once albums are ready")
	}
}

func Test_SelectAlbum_MovesCameraAndClearsSelection(t *testing.T) {
	g := &fakeGateway{
		status: mediaprovider.AuthorizationAuthorized,
		albums: []*mediaprovider.Album{
			album("all", "All Photos", mediaprovider.SmartAlbumUserLibrary, 0),
			album("trip", "Trip", mediaprovider.AlbumRegular, 1),
		},
		items: map[string][]*mediaprovider.Item{"all": images("a", 3), "trip": images("t", 2)},
	}
	rec := &recordingDelegate{}
	s := newSyncSession(t, g, DefaultOptions(), rec.delegate(true, false))
	s.Start(context.Background())

	all := s.ActiveAlbum()
	trip := s.Albums()[1]
	if trip.HasCamera() || trip.ItemCount() != 2 {
		t.Fatalf("inactive album should be loaded without camera, got %d slots", len(trip.Slots))
	}

	s.Select(2)
	s.ToggleAlbumOverlay()
	s.SelectAlbum(all)
	if s.OverlayOpen() || !s.IsSelected(2) {
		t.Error("reselecting the active album should close the overlay and keep the selection")
	}

	s.ToggleAlbumOverlay()
	s.SelectAlbum(trip)
	if s.OverlayOpen() {
		t.Error("overlay should close on album selection")
	}
	if s.ActiveAlbum() != trip || !trip.HasCamera() || all.HasCamera() {
		t.Error("camera slot did not move to the new active album")
	}
	if s.SelectionCount() != 0 {
		t.Error("selection should clear on album switch")
	}
	if all.ItemCount() != 3 || len(all.Slots) != 3 {
		t.Errorf("previous album lost items: %d slots", len(all.Slots))
	}
	if n := len(g.itemFetches); n != 2 {
		t.Errorf("switching to a loaded album should not refetch, %d fetches", n)
	}
}

func Test_AuthorizationDenied(t *testing.T) {
	for _, status := range []mediaprovider.AuthorizationStatus{
		mediaprovider.AuthorizationDenied,
		mediaprovider.AuthorizationRestricted,
		mediaprovider.AuthorizationNotDetermined,
	} {
		t.Run(status.String(), func(t *testing.T) {
			g := singleAlbumGateway(images("a", 1))
			g.status = status
			rec := &recordingDelegate{}
			s := newSyncSession(t, g, DefaultOptions(), rec.delegate(true, false))
			s.Start(context.Background())

			if s.State() != StateDenied {
				t.Errorf("state = %s", s.State())
			}
			if !slices.Equal(rec.denied, []mediaprovider.AuthorizationStatus{status}) {
				t.Errorf("denied callbacks = %v", rec.denied)
			}
			if g.albumFetches != 0 {
				t.Error("albums fetched without authorization")
			}
			if s.ToggleAlbumOverlay() || s.Select(0) {
				t.Error("denied picker should not accept interaction")
			}
			s.Cancel()
			if rec.closed != 1 || s.State() != StateCancelled {
				t.Error("cancel should still close a denied picker")
			}
		})
	}
}

func Test_Cancel_NotifiesAndDiscardsPendingWork(t *testing.T) {
	g := singleAlbumGateway(images("a", 3))
	rec := &recordingDelegate{}
	q := &queue{}
	s, _ := newSession(g, DefaultOptions(), rec.delegate(true, false), q.add, runNow)
	var dismissed int
	s.OnDismissed = func() { dismissed++ }
	s.Start(context.Background())
	q.runNext(t) // authorization
	q.runNext(t) // albums

	s.Cancel()
	s.Cancel()
	if rec.closed != 1 || dismissed != 1 {
		t.Errorf("closed %d, dismissed %d", rec.closed, dismissed)
	}
	q.drain()
	if s.State() != StateCancelled || s.ActiveAlbum().Loaded {
		t.Error("completion after dismissal was applied")
	}
}

func Test_StaleActiveAlbumLoadIgnored(t *testing.T) {
	g := &fakeGateway{
		status: mediaprovider.AuthorizationAuthorized,
		albums: []*mediaprovider.Album{album("all", "All Photos", mediaprovider.SmartAlbumUserLibrary, 0)},
		items:  map[string][]*mediaprovider.Item{"all": images("old", 2)},
	}
	rec := &recordingDelegate{}
	q := &queue{}
	s, _ := newSession(g, DefaultOptions(), rec.delegate(true, false), q.add, runNow)
	s.Start(context.Background())
	q.runNext(t) // authorization
	q.runNext(t) // albums

	// library changes while the first item load is in flight
	g.items["all"] = images("new", 3)
	s.Reload()
	q.runNext(t) // stale item load
	if s.State() == StateActiveAlbumReady {
		t.Fatal("stale item load was applied")
	}
	q.drain()
	if got := s.ActiveAlbum().FirstItem().ID; got != "newa" {
		t.Errorf("first item = %s, want newa", got)
	}
	if s.ActiveAlbum().ItemCount() != 3 {
		t.Errorf("item count = %d", s.ActiveAlbum().ItemCount())
	}
}

func Test_Reload_KeepsActiveAlbumAndSelection(t *testing.T) {
	trip := images("t", 3)
	g := &fakeGateway{
		status: mediaprovider.AuthorizationAuthorized,
		albums: []*mediaprovider.Album{
			album("all", "All Photos", mediaprovider.SmartAlbumUserLibrary, 0),
			album("trip", "Trip", mediaprovider.AlbumRegular, 1),
		},
		items: map[string][]*mediaprovider.Item{"all": images("a", 2), "trip": trip},
	}
	rec := &recordingDelegate{}
	opts := DefaultOptions()
	opts.MaximumSelectionsAllowed = 3
	s := newSyncSession(t, g, opts, rec.delegate(true, false))
	s.Start(context.Background())
	s.SelectAlbum(s.Albums()[1])
	s.Select(2) // tb
	s.Select(3) // tc

	// a new item arrives at the front of the album
	g.items["trip"] = append([]*mediaprovider.Item{{ID: "t0", Kind: mediaprovider.MediaKindImage}}, trip...)
	g.onChange()

	if s.ActiveAlbum().Name != "Trip" {
		t.Fatalf("active album changed to %s", s.ActiveAlbum().Name)
	}
	if got := itemIDs(s.SelectedItems()); !slices.Equal(got, []string{"tb", "tc"}) {
		t.Errorf("selection after reload = %v", got)
	}
	if !s.IsSelected(3) || !s.IsSelected(4) {
		t.Error("selection should follow items to their new positions")
	}
}

func Test_ZeroItemActiveAlbumKept(t *testing.T) {
	g := &fakeGateway{
		status: mediaprovider.AuthorizationAuthorized,
		albums: []*mediaprovider.Album{
			album("all", "All Photos", mediaprovider.SmartAlbumUserLibrary, 0),
			album("trip", "Trip", mediaprovider.AlbumRegular, 1),
		},
		items: map[string][]*mediaprovider.Item{"trip": images("t", 1)},
	}
	rec := &recordingDelegate{}
	opts := DefaultOptions()
	opts.TakePhotoEnabled = false
	s := newSyncSession(t, g, opts, rec.delegate(true, false))
	s.Start(context.Background())

	if got := albumNames(s.Albums()); !slices.Equal(got, []string{"All Photos", "Trip"}) {
		t.Errorf("albums = %v", got)
	}
	if s.ActiveAlbum().ItemCount() != 0 || s.ActiveAlbum().HasCamera() {
		t.Error("active album should be empty without a camera slot")
	}
}

func Test_NoAlbums(t *testing.T) {
	g := &fakeGateway{status: mediaprovider.AuthorizationAuthorized, albumsErr: errors.New("boom")}
	rec := &recordingDelegate{}
	s := newSyncSession(t, g, DefaultOptions(), rec.delegate(true, false))
	s.Start(context.Background())
	if s.State() != StateActiveAlbumReady || s.ActiveAlbum() != nil || len(s.Albums()) != 0 {
		t.Errorf("state %s, active %v", s.State(), s.ActiveAlbum())
	}
	if s.Select(0) || s.Confirm() || s.ToggleAlbumOverlay() {
		t.Error("empty picker should not accept interaction")
	}
}

func Test_NewSession_RequiresUploadHandler(t *testing.T) {
	_, err := newSession(&fakeGateway{}, DefaultOptions(), Delegate{SendPhotoEnabled: true}, runNow, runNow)
	if !errors.Is(err, ErrNoUploadHandler) {
		t.Errorf("expected ErrNoUploadHandler, got %v", err)
	}
}

func Test_Dismiss_StopsLibraryChangeCallbacks(t *testing.T) {
	for _, finish := range []struct {
		name string
		fn   func(*Session)
	}{
		{"cancel", func(s *Session) { s.Cancel() }},
		{"confirm", func(s *Session) {
			s.Select(1)
			s.Confirm()
		}},
	} {
		t.Run(finish.name, func(t *testing.T) {
			g := singleAlbumGateway(images("p", 2))
			rec := &recordingDelegate{}
			s := newSyncSession(t, g, DefaultOptions(), rec.delegate(true, false))
			s.Start(context.Background())
			if g.onChange == nil {
				t.Fatal("session should watch the library while open")
			}
			finish.fn(s)
			if !s.State().Dismissed() {
				t.Fatalf("state = %s", s.State())
			}
			if g.onChange != nil {
				t.Error("dismissed session should stop watching the library")
			}
		})
	}
}
