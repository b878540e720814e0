package local

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dweymouth/librarypicker/backend/mediaprovider"
	"github.com/dweymouth/librarypicker/backend/metrics"
	"github.com/karrick/godirwalk"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".mkv":  true,
	".avi":  true,
	".webm": true,
	".3gp":  true,
	".mpg":  true,
	".mpeg": true,
}

// MediaKindForPath classifies a file by its extension.
func MediaKindForPath(path string) mediaprovider.MediaKind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		return mediaprovider.MediaKindImage
	case videoExtensions[ext]:
		return mediaprovider.MediaKindVideo
	}
	return mediaprovider.MediaKindUnknown
}

// Extensions lists the file extensions recognized for kind, sorted.
func Extensions(kind mediaprovider.MediaKind) []string {
	var m map[string]bool
	switch kind {
	case mediaprovider.MediaKindImage:
		m = imageExtensions
	case mediaprovider.MediaKindVideo:
		m = videoExtensions
	}
	exts := make([]string, 0, len(m))
	for ext := range m {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

type smartAlbumDef struct {
	subtype mediaprovider.AlbumSubtype
	name    string
	match   func(*mediaprovider.Item) bool
}

func hasSubtype(s mediaprovider.MediaSubtype) func(*mediaprovider.Item) bool {
	return func(i *mediaprovider.Item) bool { return i.Subtypes.Has(s) }
}

var smartAlbumDefs = []smartAlbumDef{
	{mediaprovider.SmartAlbumUserLibrary, "All Photos", func(*mediaprovider.Item) bool { return true }},
	{mediaprovider.SmartAlbumVideos, "Videos", func(i *mediaprovider.Item) bool { return i.Kind == mediaprovider.MediaKindVideo }},
	{mediaprovider.SmartAlbumPanoramas, "Panoramas", hasSubtype(mediaprovider.SubtypePhotoPanorama)},
	{mediaprovider.SmartAlbumTimelapses, "Time-lapse", hasSubtype(mediaprovider.SubtypeVideoTimelapse)},
	{mediaprovider.SmartAlbumSlomoVideos, "Slo-mo", hasSubtype(mediaprovider.SubtypeVideoHighFrameRate)},
	{mediaprovider.SmartAlbumLivePhotos, "Live Photos", hasSubtype(mediaprovider.SubtypePhotoLive)},
	{mediaprovider.SmartAlbumScreenshots, "Screenshots", hasSubtype(mediaprovider.SubtypePhotoScreenshot)},
}

// library is an in-memory snapshot of the scanned media tree.
type library struct {
	albums []*mediaprovider.Album
	items  map[string][]*mediaprovider.Item // by album ID, newest first
	dirs   []string
}

type walkResult struct {
	dirs  []string
	files map[string][]string // dir -> media files directly in it
}

func walkLibrary(root string) (*walkResult, error) {
	w := &walkResult{files: make(map[string][]string)}
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path != root && strings.HasPrefix(filepath.Base(path), ".") {
				return godirwalk.SkipThis
			}
			if de.IsDir() {
				w.dirs = append(w.dirs, path)
				return nil
			}
			if MediaKindForPath(path) != mediaprovider.MediaKindUnknown {
				dir := filepath.Dir(path)
				w.files[dir] = append(w.files[dir], path)
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			log.Printf("skipping %s: %v", path, err)
			return godirwalk.SkipNode
		},
		Unsorted: true,
	})
	return w, err
}

func stem(path string) string {
	return strings.ToLower(strings.TrimSuffix(path, filepath.Ext(path)))
}

// readDirItems builds the items for the media files of one directory.
// A .mov sharing its stem with a still image is the motion part of a
// live photo: the still is flagged and the .mov is not listed.
func (p *Provider) readDirItems(ctx context.Context, files []string) []*mediaprovider.Item {
	stills := make(map[string]bool)
	for _, f := range files {
		if MediaKindForPath(f) == mediaprovider.MediaKindImage {
			stills[stem(f)] = true
		}
	}
	livePairs := make(map[string]bool)
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ".mov") && stills[stem(f)] {
			livePairs[stem(f)] = true
		}
	}

	items := make([]*mediaprovider.Item, 0, len(files))
	for _, f := range files {
		if ctx.Err() != nil {
			return nil
		}
		kind := MediaKindForPath(f)
		if kind == mediaprovider.MediaKindVideo && livePairs[stem(f)] {
			continue
		}
		info, err := os.Stat(f)
		if err != nil {
			log.Printf("stat failure: %v", err)
			continue
		}
		meta, err := p.meta.Read(f, info)
		if err != nil {
			log.Printf("metadata read failure: %v", err)
		}
		subtypes := meta.Subtypes(kind)
		if kind == mediaprovider.MediaKindImage && livePairs[stem(f)] {
			subtypes |= mediaprovider.SubtypePhotoLive
		}
		items = append(items, &mediaprovider.Item{
			ID:        p.itemID(f),
			Path:      f,
			Kind:      kind,
			Subtypes:  subtypes,
			Duration:  meta.Duration,
			CreatedAt: meta.CreatedAt,
			Width:     meta.Width,
			Height:    meta.Height,
			ModTime:   info.ModTime(),
			FileSize:  info.Size(),
		})
	}
	return items
}

func (p *Provider) itemID(path string) string {
	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func sortNewestFirst(items []*mediaprovider.Item) {
	slices.SortStableFunc(items, func(a, b *mediaprovider.Item) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func dateRange(items []*mediaprovider.Item) (start, end time.Time) {
	for _, i := range items {
		if start.IsZero() || i.CreatedAt.Before(start) {
			start = i.CreatedAt
		}
		if i.CreatedAt.After(end) {
			end = i.CreatedAt
		}
	}
	return start, end
}

func (p *Provider) scanLibrary(ctx context.Context) (*library, error) {
	started := time.Now()
	w, err := walkLibrary(p.root)
	if err != nil {
		return nil, err
	}

	lib := &library{
		items: make(map[string][]*mediaprovider.Item),
		dirs:  w.dirs,
	}
	var all []*mediaprovider.Item
	for dir, files := range w.files {
		items := p.readDirItems(ctx, files)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		all = append(all, items...)
		if dir == p.root || len(items) == 0 {
			continue
		}
		sortNewestFirst(items)
		rel := p.itemID(dir)
		album := &mediaprovider.Album{
			ID:      "album:" + rel,
			Name:    filepath.Base(dir),
			Subtype: mediaprovider.AlbumRegular,
			Path:    dir,
		}
		album.StartDate, album.EndDate = dateRange(items)
		lib.albums = append(lib.albums, album)
		lib.items[album.ID] = items
	}
	sortNewestFirst(all)

	for _, def := range smartAlbumDefs {
		var items []*mediaprovider.Item
		for _, i := range all {
			if def.match(i) {
				items = append(items, i)
			}
		}
		album := &mediaprovider.Album{
			ID:      "smart:" + strings.ToLower(strings.ReplaceAll(def.name, " ", "-")),
			Name:    def.name,
			Subtype: def.subtype,
			Path:    p.root,
		}
		album.StartDate, album.EndDate = dateRange(items)
		lib.albums = append(lib.albums, album)
		lib.items[album.ID] = items
	}

	metrics.LibraryScansTotal.Inc()
	metrics.LibraryItems.Set(float64(len(all)))
	log.Printf("Scanned %d items in %d albums under %s (%v)",
		len(all), len(lib.albums), p.root, time.Since(started).Round(time.Millisecond))
	return lib, nil
}
