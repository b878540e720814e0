package backend

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/20after4/configdir"
	"github.com/cenkalti/dominantcolor"
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
	"github.com/dweymouth/librarypicker/backend/metrics"
	"github.com/google/uuid"
)

const (
	defaultThumbnailSize      = 200
	defaultDiskCacheSizeBytes = 50 * 1_048_576
)

// The ImageManager serves item thumbnails to the UI layer.
// It keeps an in-memory cache of recently used thumbnails and a larger
// on-disk cache, and only asks the gateway to render on a miss of both.
type ImageManager struct {
	gateway        mediaprovider.Gateway
	baseCacheDir   string
	thumbnailSize  int
	thumbnailCache ImageCache

	maxOnDiskCacheSizeBytes    atomic.Int64
	filesWrittenSinceLastPrune atomic.Bool

	colorsMu sync.Mutex
	colors   map[string]color.Color
}

func NewImageManager(ctx context.Context, gateway mediaprovider.Gateway, baseCacheDir string, thumbnailSize int) *ImageManager {
	if baseCacheDir != "" {
		baseCacheDir = filepath.Join(baseCacheDir, "thumbnails")
		if err := configdir.MakePath(baseCacheDir); err != nil {
			log.Println("failed to create thumbnail cache dir")
			baseCacheDir = ""
		}
	}
	if thumbnailSize <= 0 {
		thumbnailSize = defaultThumbnailSize
	}
	i := &ImageManager{
		gateway:       gateway,
		baseCacheDir:  baseCacheDir,
		thumbnailSize: thumbnailSize,
		thumbnailCache: ImageCache{
			MinSize:    24,
			MaxSize:    300,
			DefaultTTL: 1 * time.Minute,
		},
		colors: make(map[string]color.Color),
	}
	i.maxOnDiskCacheSizeBytes.Store(defaultDiskCacheSizeBytes)
	i.thumbnailCache.OnEvictTaskRan = i.pruneOnDiskCache
	i.thumbnailCache.Init(ctx, 2*time.Minute)
	return i
}

func (i *ImageManager) SetMaxOnDiskCacheSizeBytes(size int64) {
	i.maxOnDiskCacheSizeBytes.Store(size)
}

func (i *ImageManager) ThumbnailSize() int {
	return i.thumbnailSize
}

func (i *ImageManager) GetThumbnailFromCache(itemID string) (image.Image, bool) {
	img, err := i.thumbnailCache.Get(itemID)
	if err == nil && img != nil {
		metrics.ThumbnailCacheHits.WithLabelValues("memory").Inc()
		return img, true
	}
	return nil, false
}

func (i *ImageManager) GetThumbnail(ctx context.Context, item *mediaprovider.Item) (image.Image, error) {
	if img, ok := i.GetThumbnailFromCache(item.ID); ok {
		return img, nil
	}

	path := i.filePathForThumbnail(item)
	if path != "" {
		if img, ok := loadLocalImage(path); ok {
			metrics.ThumbnailCacheHits.WithLabelValues("disk").Inc()
			i.thumbnailCache.Set(item.ID, img)
			return img, nil
		}
	}

	metrics.ThumbnailCacheMisses.Inc()
	started := time.Now()
	img, err := i.gateway.RequestThumbnail(ctx, item, i.thumbnailSize)
	if err != nil {
		return nil, err
	}
	metrics.ThumbnailRenderDuration.Observe(time.Since(started).Seconds())
	if path != "" {
		_ = i.writeJpeg(img, path)
	}
	i.thumbnailCache.Set(item.ID, img)
	return img, nil
}

// GetThumbnailAsync fetches the thumbnail on a background goroutine.
// The callback is not invoked if the returned cancel func is called first.
func (i *ImageManager) GetThumbnailAsync(item *mediaprovider.Item, cb func(image.Image, error)) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		img, err := i.GetThumbnail(ctx, item)
		if ctx.Err() != nil {
			return
		}
		cb(img, err)
	}()
	return cancel
}

// DominantColor returns the dominant color of the item's thumbnail,
// if the thumbnail is already cached in memory.
func (i *ImageManager) DominantColor(itemID string) (color.Color, bool) {
	i.colorsMu.Lock()
	c, ok := i.colors[itemID]
	i.colorsMu.Unlock()
	if ok {
		return c, true
	}
	img, ok := i.GetThumbnailFromCache(itemID)
	if !ok {
		return nil, false
	}
	c = dominantcolor.Find(img)
	i.colorsMu.Lock()
	i.colors[itemID] = c
	i.colorsMu.Unlock()
	return c, true
}

// Clear drops all in-memory thumbnails, e.g. after the library changed.
func (i *ImageManager) Clear() {
	i.thumbnailCache.Clear()
	i.colorsMu.Lock()
	clear(i.colors)
	i.colorsMu.Unlock()
}

// the cached file name changes whenever the item's file is modified
// or the configured thumbnail size changes
func (i *ImageManager) filePathForThumbnail(item *mediaprovider.Item) string {
	if i.baseCacheDir == "" {
		return ""
	}
	key := fmt.Sprintf("%s|%d|%d|%d", item.ID, item.ModTime.UnixNano(), item.FileSize, i.thumbnailSize)
	name := uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
	return filepath.Join(i.baseCacheDir, name+".jpg")
}

func (i *ImageManager) writeJpeg(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		log.Printf("failed to cache thumbnail: %s", err.Error())
		return err
	}
	i.filesWrittenSinceLastPrune.Store(true)
	return nil
}

func loadLocalImage(path string) (image.Image, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, false
	}
	// touch so that pruning by modTime approximates LRU
	now := time.Now()
	_ = os.Chtimes(path, now, now)
	return img, true
}

func (i *ImageManager) pruneOnDiskCache() {
	if i.baseCacheDir == "" || !i.filesWrittenSinceLastPrune.Swap(false) {
		return
	}

	type fileInfo struct {
		path    string
		size    int64
		modTime time.Time
	}
	var files []fileInfo
	var totalSize int64
	filepath.WalkDir(i.baseCacheDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".jpg") {
			return nil
		}
		if info, err := d.Info(); err == nil {
			files = append(files, fileInfo{path: path, size: info.Size(), modTime: info.ModTime()})
			totalSize += info.Size()
		}
		return nil
	})

	limit := i.maxOnDiskCacheSizeBytes.Load()
	if totalSize <= limit {
		return
	}
	slices.SortFunc(files, func(a, b fileInfo) int {
		return a.modTime.Compare(b.modTime)
	})
	for n := 0; n < len(files) && totalSize > limit; n++ {
		if err := os.Remove(files[n].path); err == nil {
			totalSize -= files[n].size
		}
	}
}
