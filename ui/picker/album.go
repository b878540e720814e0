package picker

import (
	"github.com/dweymouth/librarypicker/backend/mediaprovider"
)

// Slot is one grid position of an album: either the camera
// placeholder or a media item.
type Slot struct {
	camera bool
	item   *mediaprovider.Item
}

func CameraSlot() Slot {
	return Slot{camera: true}
}

func MediaSlot(item *mediaprovider.Item) Slot {
	return Slot{item: item}
}

func (s Slot) IsCamera() bool {
	return s.camera
}

// Item returns the slot's media item, or nil for the camera slot.
func (s Slot) Item() *mediaprovider.Item {
	return s.item
}

// MediaAlbum is the picker's view of one library album.
// The camera slot, when present, is always Slots[0].
type MediaAlbum struct {
	Name   string
	Source *mediaprovider.Album
	Slots  []Slot
	Loaded bool
}

func newMediaAlbum(src *mediaprovider.Album) *MediaAlbum {
	return &MediaAlbum{Name: src.Name, Source: src}
}

// Equal reports approximate equality: same name, same source album
// and the same number of slots. Item contents are not compared.
func (a *MediaAlbum) Equal(o *MediaAlbum) bool {
	if a == nil || o == nil {
		return a == o
	}
	return a.Name == o.Name && sourceID(a) == sourceID(o) && len(a.Slots) == len(o.Slots)
}

func sourceID(a *MediaAlbum) string {
	if a.Source == nil {
		return ""
	}
	return a.Source.ID
}

func (a *MediaAlbum) HasCamera() bool {
	return len(a.Slots) > 0 && a.Slots[0].IsCamera()
}

// ItemCount is the number of media items, excluding the camera slot.
func (a *MediaAlbum) ItemCount() int {
	if a.HasCamera() {
		return len(a.Slots) - 1
	}
	return len(a.Slots)
}

// FirstItem returns the album's first media item, if any.
func (a *MediaAlbum) FirstItem() *mediaprovider.Item {
	for _, s := range a.Slots {
		if !s.IsCamera() {
			return s.Item()
		}
	}
	return nil
}

func (a *MediaAlbum) SlotAt(pos int) (Slot, bool) {
	if pos < 0 || pos >= len(a.Slots) {
		return Slot{}, false
	}
	return a.Slots[pos], true
}

// setItems replaces the album contents.
func (a *MediaAlbum) setItems(items []*mediaprovider.Item, camera bool) {
	slots := make([]Slot, 0, len(items)+1)
	if camera {
		slots = append(slots, CameraSlot())
	}
	for _, it := range items {
		slots = append(slots, MediaSlot(it))
	}
	a.Slots = slots
	a.Loaded = true
}

// setCamera adds or removes the camera slot at index 0.
func (a *MediaAlbum) setCamera(on bool) {
	switch {
	case on && !a.HasCamera():
		a.Slots = append([]Slot{CameraSlot()}, a.Slots...)
	case !on && a.HasCamera():
		a.Slots = a.Slots[1:]
	}
}
