package mediaprovider

import (
	"fmt"
	"slices"
	"time"
)

type AuthorizationStatus int

const (
	AuthorizationNotDetermined AuthorizationStatus = iota
	AuthorizationRestricted
	AuthorizationDenied
	AuthorizationAuthorized
)

func (a AuthorizationStatus) String() string {
	switch a {
	case AuthorizationNotDetermined:
		return "not determined"
	case AuthorizationRestricted:
		return "restricted"
	case AuthorizationDenied:
		return "denied"
	case AuthorizationAuthorized:
		return "authorized"
	}
	return fmt.Sprintf("AuthorizationStatus(%d)", int(a))
}

// AlbumSubtype identifies how an album is curated.
// Regular albums are explicit user collections; the rest are smart albums
// which group items by a library-defined criterion.
type AlbumSubtype int

const (
	AlbumRegular AlbumSubtype = iota
	SmartAlbumUserLibrary
	SmartAlbumVideos
	SmartAlbumPanoramas
	SmartAlbumTimelapses
	SmartAlbumSlomoVideos
	SmartAlbumLivePhotos
	SmartAlbumScreenshots
)

func (a AlbumSubtype) IsSmart() bool {
	return a != AlbumRegular
}

type MediaKind int

const (
	MediaKindUnknown MediaKind = iota
	MediaKindImage
	MediaKindVideo
)

func (m MediaKind) String() string {
	switch m {
	case MediaKindImage:
		return "image"
	case MediaKindVideo:
		return "video"
	}
	return "unknown"
}

// Bit field of platform-defined item subtypes
type MediaSubtype uint32

const (
	SubtypePhotoPanorama      MediaSubtype = 0x0001
	SubtypePhotoLive          MediaSubtype = 0x0002
	SubtypePhotoScreenshot    MediaSubtype = 0x0004
	SubtypeVideoHighFrameRate MediaSubtype = 0x0010
	SubtypeVideoTimelapse     MediaSubtype = 0x0020
)

// Has reports whether any of the bits in o are set in m.
func (m MediaSubtype) Has(o MediaSubtype) bool {
	return m&o != 0
}

type Album struct {
	ID        string
	Name      string
	Subtype   AlbumSubtype
	Path      string
	StartDate time.Time
	EndDate   time.Time
}

type Item struct {
	ID        string
	Path      string
	Kind      MediaKind
	Subtypes  MediaSubtype
	Duration  time.Duration
	CreatedAt time.Time
	Width     int
	Height    int

	// file modification time and size; they change when the file is edited
	ModTime  time.Time
	FileSize int64
}

// DurationSeconds returns the item duration rounded to whole seconds.
func (i *Item) DurationSeconds() int {
	return int(i.Duration.Round(time.Second) / time.Second)
}

// ItemPredicate is the filter applied to item fetches.
// A zero MaxDuration means no duration limit.
type ItemPredicate struct {
	Kinds            []MediaKind
	MaxDuration      time.Duration
	ExcludedSubtypes MediaSubtype
}

func (p ItemPredicate) Matches(item *Item) bool {
	if item == nil || !slices.Contains(p.Kinds, item.Kind) {
		return false
	}
	if p.MaxDuration > 0 && item.Duration > p.MaxDuration {
		return false
	}
	return !item.Subtypes.Has(p.ExcludedSubtypes)
}
