// Package local implements a media library gateway over a directory
// tree of photos and videos. Sub-directories become regular albums and
// smart albums are derived from item kinds and subtypes.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/boxes-ltd/imaging"
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
	"github.com/dweymouth/librarypicker/backend/metrics"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const changeNotifyDelay = 500 * time.Millisecond

type Options struct {
	Root           string
	UseExiftool    bool
	UseFFmpeg      bool
	MetadataDBPath string // empty disables the metadata store
	WatchChanges   bool
}

type Provider struct {
	root   string
	meta   MetadataReader
	store  *MetadataStore
	ffmpeg string

	mu    sync.Mutex
	lib   *library
	stale bool

	watcher     *watcher
	cancelWatch context.CancelFunc

	cbMu        sync.Mutex
	onChange    []changeCallback
	nextCbID    int
	notifyTimer *time.Timer
}

var (
	_ mediaprovider.Gateway        = (*Provider)(nil)
	_ mediaprovider.ChangeNotifier = (*Provider)(nil)
)

func New(ctx context.Context, opts Options) (*Provider, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving library root: %w", err)
	}
	p := &Provider{root: root, meta: statReader{}}

	if opts.UseExiftool {
		if r, err := NewExifReader(); err == nil {
			p.meta = r
		} else {
			log.Printf("exiftool unavailable, classifying by extension only: %v", err)
		}
	}
	if opts.MetadataDBPath != "" {
		store, err := OpenMetadataStore(ctx, opts.MetadataDBPath)
		if err != nil {
			log.Printf("metadata store unavailable: %v", err)
		} else {
			p.store = store
			p.meta = &cachedReader{MetadataReader: p.meta, store: store}
		}
	}
	if opts.UseFFmpeg {
		if path, err := exec.LookPath("ffmpeg"); err == nil {
			p.ffmpeg = path
		} else {
			log.Println("ffmpeg not found: video thumbnails disabled")
		}
	}
	if opts.WatchChanges {
		wctx, cancel := context.WithCancel(ctx)
		w, err := newWatcher(wctx, p.handleFSEvent)
		if err != nil {
			cancel()
			log.Printf("library watcher unavailable: %v", err)
		} else {
			p.watcher = w
			p.cancelWatch = cancel
		}
	}
	return p, nil
}

func (p *Provider) Root() string {
	return p.root
}

// Metadata returns the reader the provider classifies items with.
// It stays owned by the provider and is closed by Close.
func (p *Provider) Metadata() MetadataReader {
	return p.meta
}

func (p *Provider) Close() error {
	if p.cancelWatch != nil {
		p.cancelWatch()
	}
	err := p.meta.Close()
	if p.store != nil {
		err = errors.Join(err, p.store.Close())
	}
	return err
}

func (p *Provider) RequestAuthorization(ctx context.Context) mediaprovider.AuthorizationStatus {
	info, err := os.Stat(p.root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return mediaprovider.AuthorizationNotDetermined
	case errors.Is(err, fs.ErrPermission):
		return mediaprovider.AuthorizationDenied
	case err != nil || !info.IsDir():
		return mediaprovider.AuthorizationRestricted
	}

	f, err := os.Open(p.root)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return mediaprovider.AuthorizationDenied
		}
		return mediaprovider.AuthorizationRestricted
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return mediaprovider.AuthorizationDenied
	}
	return mediaprovider.AuthorizationAuthorized
}

func (p *Provider) FetchAlbums(ctx context.Context, opts mediaprovider.AlbumFetchOptions) ([]*mediaprovider.Album, error) {
	started := time.Now()
	defer func() {
		metrics.LibraryFetchDuration.WithLabelValues("albums").Observe(time.Since(started).Seconds())
	}()

	lib, err := p.library(ctx)
	if err != nil {
		return nil, err
	}
	albums := make([]*mediaprovider.Album, 0, len(lib.albums))
	for _, a := range lib.albums {
		if !slices.Contains(opts.ExcludedSubtypes, a.Subtype) {
			albums = append(albums, a)
		}
	}
	if opts.SortByEndDateDesc {
		col := collate.New(language.Und, collate.IgnoreCase)
		slices.SortStableFunc(albums, func(a, b *mediaprovider.Album) int {
			if c := b.EndDate.Compare(a.EndDate); c != 0 {
				return c
			}
			return col.CompareString(a.Name, b.Name)
		})
	}
	return albums, nil
}

func (p *Provider) FetchItems(ctx context.Context, album *mediaprovider.Album, pred mediaprovider.ItemPredicate) ([]*mediaprovider.Item, error) {
	started := time.Now()
	defer func() {
		metrics.LibraryFetchDuration.WithLabelValues("items").Observe(time.Since(started).Seconds())
	}()

	if album == nil {
		return nil, errors.New("nil album")
	}
	lib, err := p.library(ctx)
	if err != nil {
		return nil, err
	}
	var items []*mediaprovider.Item
	for _, i := range lib.items[album.ID] {
		if pred.Matches(i) {
			items = append(items, i)
		}
	}
	return items, nil
}

func (p *Provider) RequestThumbnail(ctx context.Context, item *mediaprovider.Item, size int) (image.Image, error) {
	var img image.Image
	var err error
	switch item.Kind {
	case mediaprovider.MediaKindImage:
		img, err = imaging.Open(item.Path, imaging.AutoOrientation(true))
	case mediaprovider.MediaKindVideo:
		img, err = p.videoFrame(ctx, item.Path)
	default:
		err = mediaprovider.ErrNoThumbnail
	}
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos), nil
}

func (p *Provider) videoFrame(ctx context.Context, path string) (image.Image, error) {
	if p.ffmpeg == "" {
		return nil, mediaprovider.ErrNoThumbnail
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.ffmpeg,
		"-i", path,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, mediaprovider.ErrNoThumbnail
	}
	return png.Decode(&stdout)
}

type changeCallback struct {
	id int
	cb func()
}

func (p *Provider) OnLibraryChanged(cb func()) func() {
	p.cbMu.Lock()
	defer p.cbMu.Unlock()
	p.nextCbID++
	id := p.nextCbID
	p.onChange = append(p.onChange, changeCallback{id: id, cb: cb})
	return func() {
		p.cbMu.Lock()
		defer p.cbMu.Unlock()
		p.onChange = slices.DeleteFunc(p.onChange, func(c changeCallback) bool { return c.id == id })
	}
}

// ChangeListeners is the number of registered change callbacks.
func (p *Provider) ChangeListeners() int {
	p.cbMu.Lock()
	defer p.cbMu.Unlock()
	return len(p.onChange)
}

// Invalidate marks the scanned snapshot stale; the next fetch rescans.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.stale = true
	p.mu.Unlock()
}

func (p *Provider) library(ctx context.Context) (*library, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lib != nil && !p.stale {
		return p.lib, nil
	}
	lib, err := p.scanLibrary(ctx)
	if err != nil {
		return nil, err
	}
	p.lib = lib
	p.stale = false
	if p.watcher != nil {
		p.watcher.Sync(lib.dirs)
	}
	return lib, nil
}

func (p *Provider) handleFSEvent(ev fsnotify.Event) {
	if p.store != nil && (ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Write)) {
		if err := p.store.Delete(ev.Name); err != nil {
			log.Printf("failed to invalidate metadata for %s: %v", ev.Name, err)
		}
	}
	p.Invalidate()

	p.cbMu.Lock()
	defer p.cbMu.Unlock()
	if p.notifyTimer != nil {
		p.notifyTimer.Stop()
	}
	p.notifyTimer = time.AfterFunc(changeNotifyDelay, p.notifyChanged)
}

func (p *Provider) notifyChanged() {
	p.cbMu.Lock()
	cbs := slices.Clone(p.onChange)
	p.cbMu.Unlock()
	for _, c := range cbs {
		c.cb()
	}
}
