package backend

import (
	"context"
	"image"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(min, max int, clock *fakeClock) *ImageCache {
	c := &ImageCache{MinSize: min, MaxSize: max, DefaultTTL: time.Minute, now: clock.now}
	c.Init(context.Background(), 0)
	return c
}

func Test_ImageCache_EvictsLRUWhenFull(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := newTestCache(0, 2, clock)
	img := image.NewGray(image.Rect(0, 0, 1, 1))

	c.Set("a", img)
	clock.t = clock.t.Add(time.Second)
	c.Set("b", img)
	clock.t = clock.t.Add(time.Second)
	if _, err := c.Get("a"); err != nil { // a is now more recently used than b
		t.Fatal(err)
	}
	clock.t = clock.t.Add(time.Second)
	c.Set("c", img)

	if c.Has("b") {
		t.Error("expected LRU item b to be evicted")
	}
	if !c.Has("a") || !c.Has("c") {
		t.Error("expected a and c to remain")
	}
}

func Test_ImageCache_PrefersExpiredWhenFull(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := newTestCache(0, 2, clock)
	img := image.NewGray(image.Rect(0, 0, 1, 1))

	c.SetWithTTL("long", img, time.Hour)
	clock.t = clock.t.Add(time.Second)
	c.SetWithTTL("short", img, time.Second)
	clock.t = clock.t.Add(10 * time.Second)
	c.Set("new", img)

	if c.Has("short") {
		t.Error("expired item should be evicted before the LRU live item")
	}
	if !c.Has("long") {
		t.Error("unexpired item should remain")
	}
}

func Test_ImageCache_EvictExpiredRespectsMinSize(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := newTestCache(2, 10, clock)
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	for _, k := range []string{"a", "b", "c", "d"} {
		c.SetWithTTL(k, img, time.Second)
		clock.t = clock.t.Add(time.Millisecond)
	}
	clock.t = clock.t.Add(time.Minute)
	c.EvictExpired()

	if l := c.Len(); l != 2 {
		t.Fatalf("expected 2 items after eviction, got %d", l)
	}
	if !c.Has("c") || !c.Has("d") {
		t.Error("the most recently used expired items should be kept")
	}
}

func Test_ImageCache_GetExtendsTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := newTestCache(0, 10, clock)
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	c.SetWithTTL("a", img, time.Second)
	c.SetWithTTL("b", img, time.Second)

	if _, err := c.GetExtendTTL("a", time.Hour); err != nil {
		t.Fatal(err)
	}
	clock.t = clock.t.Add(time.Minute)
	c.EvictExpired()
	if !c.Has("a") {
		t.Error("extended item should not be evicted")
	}
	if c.Has("b") {
		t.Error("expired item should be evicted")
	}
	if _, err := c.Get("missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
