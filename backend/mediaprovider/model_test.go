package mediaprovider

import (
	"testing"
	"time"
)

func Test_ItemPredicate_Matches(t *testing.T) {
	pred := ItemPredicate{
		Kinds:            []MediaKind{MediaKindImage, MediaKindVideo},
		MaxDuration:      20 * time.Second,
		ExcludedSubtypes: SubtypePhotoLive | SubtypeVideoTimelapse | SubtypeVideoHighFrameRate,
	}

	tests := []struct {
		name string
		item *Item
		want bool
	}{
		{"plain image", &Item{Kind: MediaKindImage}, true},
		{"short video", &Item{Kind: MediaKindVideo, Duration: 12 * time.Second}, true},
		{"video at limit", &Item{Kind: MediaKindVideo, Duration: 20 * time.Second}, true},
		{"long video", &Item{Kind: MediaKindVideo, Duration: 21 * time.Second}, false},
		{"live photo", &Item{Kind: MediaKindImage, Subtypes: SubtypePhotoLive}, false},
		{"panorama", &Item{Kind: MediaKindImage, Subtypes: SubtypePhotoPanorama}, true},
		{"slo-mo", &Item{Kind: MediaKindVideo, Subtypes: SubtypeVideoHighFrameRate}, false},
		{"unknown kind", &Item{Kind: MediaKindUnknown}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		if got := pred.Matches(tt.item); got != tt.want {
			t.Errorf("%s: Matches() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func Test_ItemPredicate_KindsOnlyImages(t *testing.T) {
	pred := ItemPredicate{Kinds: []MediaKind{MediaKindImage}}
	if pred.Matches(&Item{Kind: MediaKindVideo, Duration: time.Second}) {
		t.Error("video should not match an image-only predicate")
	}
	if !pred.Matches(&Item{Kind: MediaKindImage, Duration: time.Hour}) {
		t.Error("zero MaxDuration should not limit duration")
	}
}

func Test_Item_DurationSeconds(t *testing.T) {
	i := &Item{Duration: 74600 * time.Millisecond}
	if s := i.DurationSeconds(); s != 75 {
		t.Errorf("DurationSeconds() = %d, want 75", s)
	}
}
