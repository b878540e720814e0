package local

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
	"github.com/dweymouth/librarypicker/backend/metrics"
)

const exifDate = "2006:01:02 15:04:05"

// Exif CustomRendered value for panoramas (Exif 2.32)
const customRenderedPanorama = 6

// Metadata is the subset of file metadata used to classify an item.
type Metadata struct {
	CreatedAt      time.Time
	Duration       time.Duration
	Width          int
	Height         int
	FrameRate      float64
	CaptureMode    string
	UserComment    string
	CustomRendered int
}

// Subtypes derives the item subtype flags for the given media kind.
func (m Metadata) Subtypes(kind mediaprovider.MediaKind) mediaprovider.MediaSubtype {
	var s mediaprovider.MediaSubtype
	switch kind {
	case mediaprovider.MediaKindImage:
		if m.CustomRendered == customRenderedPanorama ||
			(m.Height > 0 && m.Width >= 2*m.Height) {
			s |= mediaprovider.SubtypePhotoPanorama
		}
		if strings.EqualFold(m.UserComment, "Screenshot") {
			s |= mediaprovider.SubtypePhotoScreenshot
		}
	case mediaprovider.MediaKindVideo:
		if m.FrameRate >= 100 {
			s |= mediaprovider.SubtypeVideoHighFrameRate
		}
		if strings.Contains(strings.ToLower(m.CaptureMode), "time-lapse") {
			s |= mediaprovider.SubtypeVideoTimelapse
		}
	}
	return s
}

type MetadataReader interface {
	Read(path string, info os.FileInfo) (Metadata, error)
	Close() error
}

// exifReader reads metadata through a long-running exiftool process.
type exifReader struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

func NewExifReader() (MetadataReader, error) {
	et, err := exiftool.NewExiftool(exiftool.NoPrintConversion())
	if err != nil {
		return nil, fmt.Errorf("starting exiftool: %w", err)
	}
	return &exifReader{et: et}, nil
}

func (e *exifReader) Read(path string, info os.FileInfo) (Metadata, error) {
	e.mu.Lock()
	fis := e.et.ExtractMetadata(path)
	e.mu.Unlock()

	m := Metadata{CreatedAt: info.ModTime()}
	if len(fis) == 0 {
		return m, fmt.Errorf("no metadata for %q", path)
	}
	fi := fis[0]
	if fi.Err != nil {
		return m, fmt.Errorf("extract fail for %q: %w", path, fi.Err)
	}

	if w, err := fi.GetInt("ImageWidth"); err == nil {
		m.Width = int(w)
	}
	if h, err := fi.GetInt("ImageHeight"); err == nil {
		m.Height = int(h)
	}
	if d, err := fi.GetFloat("Duration"); err == nil {
		m.Duration = time.Duration(d * float64(time.Second))
	}
	if r, err := fi.GetFloat("VideoFrameRate"); err == nil {
		m.FrameRate = r
	}
	if c, err := fi.GetInt("CustomRendered"); err == nil {
		m.CustomRendered = int(c)
	}
	m.CaptureMode, _ = fi.GetString("CaptureMode")
	m.UserComment, _ = fi.GetString("UserComment")

	for _, key := range []string{"DateTimeOriginal", "CreateDate"} {
		ds, err := fi.GetString(key)
		if err != nil {
			continue
		}
		if t, err := time.ParseInLocation(exifDate, ds, time.Local); err == nil && !t.IsZero() {
			m.CreatedAt = t
			break
		}
	}
	return m, nil
}

func (e *exifReader) Close() error {
	return e.et.Close()
}

// statReader is used when exiftool is unavailable;
// items are classified from the file extension alone.
type statReader struct{}

func (statReader) Read(path string, info os.FileInfo) (Metadata, error) {
	m := Metadata{CreatedAt: info.ModTime()}
	if MediaKindForPath(path) != mediaprovider.MediaKindImage {
		return m, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return m, err
	}
	defer f.Close()
	if cfg, _, err := image.DecodeConfig(f); err == nil {
		m.Width, m.Height = cfg.Width, cfg.Height
	}
	return m, nil
}

func (statReader) Close() error { return nil }

// cachedReader serves metadata from the MetadataStore when the
// file is unchanged since it was last read.
type cachedReader struct {
	MetadataReader
	store *MetadataStore
}

func (c *cachedReader) Read(path string, info os.FileInfo) (Metadata, error) {
	if m, ok := c.store.Get(path, info.ModTime(), info.Size()); ok {
		metrics.MetadataStoreHits.Inc()
		return m, nil
	}
	m, err := c.MetadataReader.Read(path, info)
	if err != nil {
		return m, err
	}
	if err := c.store.Put(path, info.ModTime(), info.Size(), m); err != nil {
		log.Printf("failed to store metadata for %s: %v", path, err)
	}
	return m, nil
}
