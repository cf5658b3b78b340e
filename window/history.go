package window

import (
	"sync"
)

// History records the URL fragments pushed by navigation. The fragment is
// the only navigation state that survives a reload.
type History struct {
	mu      sync.RWMutex
	entries []string
}

func NewHistory(initial string) *History {
	return &History{entries: []string{initial}}
}

func (h *History) Push(hash string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, hash)
}

// Location returns the current URL fragment including the leading '#', or
// "" when there is none.
func (h *History) Location() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[len(h.entries)-1]
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.entries...)
}
