package window

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ChangeLocation        = "location"
	ChangeSectionLoaded   = "section_loaded"
	ChangeSectionFailed   = "section_failed"
	ChangeBlogLoaded      = "blog_loaded"
	ChangeBlogFailed      = "blog_failed"
	ChangeGalleryBatch    = "gallery_batch"
	ChangeGalleryComplete = "gallery_complete"
	ChangeBannerHidden    = "banner_hidden"
	ChangeLightbox        = "lightbox"
	ChangeAlert           = "alert"
)

// Change describes something observable that happened on the page.
type Change struct {
	ID   string         `json:"id"`
	Kind string         `json:"kind"`
	Data map[string]any `json:"data,omitempty"`
	At   time.Time      `json:"at"`
}

type broadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Change)
}

// Subscribe registers fn for every future change. Subscribers are called
// synchronously and must not block.
func (w *Window) Subscribe(fn func(Change)) (unsubscribe func()) {
	b := w.changes
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = map[int]func(Change){}
	}
	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (w *Window) Emit(kind string, data map[string]any) {
	change := Change{
		ID:   uuid.NewString(),
		Kind: kind,
		Data: data,
		At:   time.Now(),
	}
	b := w.changes
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.subs {
		fn(change)
	}
}
