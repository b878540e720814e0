package local

import (
	"context"
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// watcher watches every directory of the library tree.
// fsnotify is not recursive, so the set of watched directories
// is re-synced after each scan.
type watcher struct {
	fsw *fsnotify.Watcher

	mu      sync.Mutex
	watched map[string]bool
}

func newWatcher(ctx context.Context, onEvent func(fsnotify.Event)) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{fsw: fsw, watched: make(map[string]bool)}
	go func() {
		for {
			select {
			case <-ctx.Done():
				fsw.Close()
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
					continue
				}
				onEvent(ev)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Printf("library watcher error: %v", err)
			}
		}
	}()
	return w, nil
}

func (w *watcher) Sync(dirs []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	keep := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		keep[d] = true
		if w.watched[d] {
			continue
		}
		if err := w.fsw.Add(d); err != nil {
			log.Printf("failed to watch %s: %v", d, err)
			continue
		}
		w.watched[d] = true
	}
	for d := range w.watched {
		if !keep[d] {
			_ = w.fsw.Remove(d)
			delete(w.watched, d)
		}
	}
}
