package backend

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/20after4/configdir"
	"github.com/boxes-ltd/imaging"
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
	"github.com/dweymouth/librarypicker/backend/mediaprovider/local"
	"github.com/google/uuid"
	"github.com/otiai10/copy"
)

var (
	ErrCaptureKindNotAllowed = errors.New("captured media kind is not allowed")
	ErrCaptureTooLong        = errors.New("captured video exceeds the maximum duration")
)

// CapturedMedia is the result of a capture: either a still image
// or the location of a video file.
type CapturedMedia struct {
	Kind  mediaprovider.MediaKind
	Path  string
	Image image.Image // set for stills
}

// CaptureImporter takes newly captured files into the capture directory,
// validating them against the picker's capture constraints.
type CaptureImporter struct {
	dir  string
	meta local.MetadataReader
}

func NewCaptureImporter(dir string, meta local.MetadataReader) *CaptureImporter {
	if err := configdir.MakePath(dir); err != nil {
		dir = os.TempDir()
	}
	return &CaptureImporter{dir: dir, meta: meta}
}

func (c *CaptureImporter) Dir() string {
	return c.dir
}

func (c *CaptureImporter) Import(ctx context.Context, srcPath string, allowed []mediaprovider.MediaKind, maxVideoDuration time.Duration) (*CapturedMedia, error) {
	kind := local.MediaKindForPath(srcPath)
	if !slices.Contains(allowed, kind) {
		return nil, fmt.Errorf("%w: %s", ErrCaptureKindNotAllowed, kind)
	}
	if kind == mediaprovider.MediaKindVideo && c.meta != nil && maxVideoDuration > 0 {
		info, err := os.Stat(srcPath)
		if err != nil {
			return nil, err
		}
		if m, err := c.meta.Read(srcPath, info); err == nil && m.Duration > maxVideoDuration {
			return nil, fmt.Errorf("%w: %v > %v", ErrCaptureTooLong, m.Duration.Round(time.Second), maxVideoDuration)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dest := filepath.Join(c.dir, uuid.NewString()+strings.ToLower(filepath.Ext(srcPath)))
	if err := copy.Copy(srcPath, dest); err != nil {
		return nil, fmt.Errorf("copying captured file: %w", err)
	}

	media := &CapturedMedia{Kind: kind, Path: dest}
	if kind == mediaprovider.MediaKindImage {
		img, err := imaging.Open(dest, imaging.AutoOrientation(true))
		if err != nil {
			os.Remove(dest)
			return nil, fmt.Errorf("decoding captured image: %w", err)
		}
		media.Image = img
	}
	return media, nil
}
