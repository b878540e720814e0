package util

import (
	"context"
	"errors"
	"image"
	"log"

	"fyne.io/fyne/v2"
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
)

// ThumbnailLoader loads the thumbnail for the item a cell is bound to.
// If the image is immediately available in the cache, OnLoaded is called
// immediately. If not, OnBeforeLoad is called first, then OnLoaded is
// called on the UI goroutine once the image is available.
// Each call to Load cancels the previous load, and a completion is only
// applied if the loader is still bound to the item it was started for.
type ThumbnailLoader struct {
	im        ImageFetcher
	runOnMain func(func())

	gen        uint64
	boundID    string
	loadCancel context.CancelFunc

	OnBeforeLoad func()
	OnLoaded     func(image.Image)
}

// Image backend interface for the ThumbnailLoader
// impl: backend.ImageManager
type ImageFetcher interface {
	GetThumbnailFromCache(itemID string) (image.Image, bool)
	GetThumbnailAsync(*mediaprovider.Item, func(image.Image, error)) context.CancelFunc
}

func NewThumbnailLoader(im ImageFetcher, onLoaded func(image.Image)) ThumbnailLoader {
	return ThumbnailLoader{im: im, runOnMain: fyne.Do, OnLoaded: onLoaded}
}

// BoundID is the ID of the item last passed to Load.
func (l *ThumbnailLoader) BoundID() string {
	return l.boundID
}

// Load binds the loader to item. A nil item clears the image.
func (l *ThumbnailLoader) Load(item *mediaprovider.Item) {
	l.cancel()
	l.gen++
	if item == nil {
		l.boundID = ""
		l.callOnLoaded(nil)
		return
	}
	l.boundID = item.ID
	if img, ok := l.im.GetThumbnailFromCache(item.ID); ok {
		l.callOnLoaded(img)
		return
	}
	if l.OnBeforeLoad != nil {
		l.OnBeforeLoad()
	}
	gen := l.gen
	l.loadCancel = l.im.GetThumbnailAsync(item, func(img image.Image, err error) {
		if err != nil && !errors.Is(err, mediaprovider.ErrNoThumbnail) {
			log.Printf("Error loading thumbnail for %s: %s", item.ID, err.Error())
		}
		l.runOnMain(func() {
			if gen != l.gen {
				return
			}
			l.cancel() // done; release resources of the un-cancelled ctx
			l.callOnLoaded(img)
		})
	})
}

// Unbind cancels any in-flight load without calling OnLoaded.
func (l *ThumbnailLoader) Unbind() {
	l.cancel()
	l.gen++
	l.boundID = ""
}

func (l *ThumbnailLoader) cancel() {
	if l.loadCancel != nil {
		l.loadCancel()
		l.loadCancel = nil
	}
}

func (l *ThumbnailLoader) callOnLoaded(im image.Image) {
	if l.OnLoaded != nil {
		l.OnLoaded(im)
	}
}
