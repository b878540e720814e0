package picker

import (
	"errors"
	"image"
	"log"

	"github.com/dweymouth/librarypicker/backend/mediaprovider"
)

var ErrNoUploadHandler = errors.New("picker delegate requires OnUploadConfirmed")

// Delegate is the host's capability set. Only SendPhotoEnabled and
// OnUploadConfirmed must be provided; every other member is optional.
type Delegate struct {
	SendPhotoEnabled bool
	SendVideoEnabled bool

	OnUploadConfirmed     func(items []*mediaprovider.Item)
	OnClosed              func()
	OnPhotoCaptured       func(img image.Image)
	OnVideoCaptured       func(path string)
	OnAuthorizationDenied func(status mediaprovider.AuthorizationStatus)
}

// resolve returns a copy with no-op handlers filled in for
// the optional members.
func (d Delegate) resolve() (Delegate, error) {
	if d.OnUploadConfirmed == nil {
		return d, ErrNoUploadHandler
	}
	if d.OnClosed == nil {
		d.OnClosed = func() {}
	}
	if d.OnPhotoCaptured == nil {
		d.OnPhotoCaptured = func(image.Image) {}
	}
	if d.OnVideoCaptured == nil {
		d.OnVideoCaptured = func(string) {}
	}
	if d.OnAuthorizationDenied == nil {
		d.OnAuthorizationDenied = func(s mediaprovider.AuthorizationStatus) {
			log.Printf("media library access %s", s)
		}
	}
	return d, nil
}

// EnabledKinds lists the media kinds the host accepts.
func (d Delegate) EnabledKinds() []mediaprovider.MediaKind {
	var kinds []mediaprovider.MediaKind
	if d.SendPhotoEnabled {
		kinds = append(kinds, mediaprovider.MediaKindImage)
	}
	if d.SendVideoEnabled {
		kinds = append(kinds, mediaprovider.MediaKindVideo)
	}
	return kinds
}
