package mediaprovider

import (
	"context"
	"errors"
	"image"
)

var (
	ErrNotAuthorized = errors.New("media library access not authorized")
	ErrNoThumbnail   = errors.New("no thumbnail available")
)

type AlbumFetchOptions struct {
	// sort by album end date, newest first
	SortByEndDateDesc bool
	ExcludedSubtypes  []AlbumSubtype
}

// Gateway is the platform media library: album and item enumeration
// plus thumbnail rendering.
type Gateway interface {
	RequestAuthorization(ctx context.Context) AuthorizationStatus

	FetchAlbums(ctx context.Context, opts AlbumFetchOptions) ([]*Album, error)

	FetchItems(ctx context.Context, album *Album, pred ItemPredicate) ([]*Item, error)

	RequestThumbnail(ctx context.Context, item *Item, size int) (image.Image, error)
}

// ChangeNotifier is implemented by gateways that can report
// changes to the underlying library. The returned func unregisters cb.
type ChangeNotifier interface {
	OnLibraryChanged(cb func()) (unregister func())
}
