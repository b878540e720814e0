package picker

import (
	"image/color"
	"log"
	"time"

	"github.com/dweymouth/librarypicker/backend"
	myTheme "github.com/dweymouth/librarypicker/ui/theme"
)

var (
	defaultCancelColor = color.RGBA{R: 0x4A, G: 0x4A, B: 0x4A, A: 0xFF}
	defaultUploadColor = color.RGBA{R: 0xFE, G: 0x3B, B: 0x2F, A: 0xFF}
)

// Options configure a picker. They are fixed once the picker is created.
type Options struct {
	// 1 means single-select
	MaximumSelectionsAllowed int
	TakePhotoEnabled         bool
	MaxVideoDuration         time.Duration

	CancelButtonTitle string
	UploadButtonTitle string
	CancelButtonColor color.Color
	UploadButtonColor color.Color

	ThumbnailSize int
	ColumnsHint   int
}

func DefaultOptions() Options {
	return Options{
		MaximumSelectionsAllowed: 1,
		TakePhotoEnabled:         true,
		MaxVideoDuration:         20 * time.Second,
		CancelButtonTitle:        "Cancel",
		UploadButtonTitle:        "Upload",
		CancelButtonColor:        defaultCancelColor,
		UploadButtonColor:        defaultUploadColor,
		ThumbnailSize:            200,
		ColumnsHint:              3,
	}
}

// OptionsFromConfig builds Options from the persisted picker config.
// Invalid color strings fall back to the defaults.
func OptionsFromConfig(c *backend.PickerConfig, thumbnailSize int) Options {
	o := DefaultOptions()
	o.MaximumSelectionsAllowed = c.MaximumSelectionsAllowed
	o.TakePhotoEnabled = c.TakePhotoEnabled
	o.MaxVideoDuration = time.Duration(c.MaxVideoDurationSecs * float64(time.Second))
	o.CancelButtonTitle = c.CancelButtonTitle
	o.UploadButtonTitle = c.UploadButtonTitle
	o.CancelButtonColor = parseColorOr(c.CancelButtonColor, defaultCancelColor)
	o.UploadButtonColor = parseColorOr(c.UploadButtonColor, defaultUploadColor)
	o.ThumbnailSize = thumbnailSize
	o.ColumnsHint = c.ItemsInRow
	return o.normalized()
}

func parseColorOr(s string, def color.Color) color.Color {
	if s == "" {
		return def
	}
	c, err := myTheme.ColorStringToColor(s)
	if err != nil {
		log.Printf("invalid button color %q: %v", s, err)
		return def
	}
	return c
}

// normalized fills zero or out of range values with defaults.
func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.MaximumSelectionsAllowed < 1 {
		o.MaximumSelectionsAllowed = 1
	}
	if o.MaxVideoDuration <= 0 {
		o.MaxVideoDuration = def.MaxVideoDuration
	}
	if o.CancelButtonTitle == "" {
		o.CancelButtonTitle = def.CancelButtonTitle
	}
	if o.UploadButtonTitle == "" {
		o.UploadButtonTitle = def.UploadButtonTitle
	}
	if o.CancelButtonColor == nil {
		o.CancelButtonColor = def.CancelButtonColor
	}
	if o.UploadButtonColor == nil {
		o.UploadButtonColor = def.UploadButtonColor
	}
	if o.ThumbnailSize <= 0 {
		o.ThumbnailSize = def.ThumbnailSize
	}
	if o.ColumnsHint < 1 {
		o.ColumnsHint = def.ColumnsHint
	}
	return o
}

func (o Options) MultiSelect() bool {
	return o.MaximumSelectionsAllowed > 1
}
