package engine

import (
	"sync"

	"github.com/IshaanNene/shopcrawl/internal/urlnorm"
)

// VisitedSet tracks normalized URLs. Membership is decided on the
// normalized form, so query strings and fragments never make a URL new.
type VisitedSet struct {
	mu    sync.RWMutex
	seen  map[string]struct{}
	order []string
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// Add marks rawURL as seen. It returns false if it was already present.
func (v *VisitedSet) Add(rawURL string) bool {
	key := urlnorm.Normalize(rawURL)

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	v.order = append(v.order, key)
	return true
}

// Has reports whether rawURL has been seen.
func (v *VisitedSet) Has(rawURL string) bool {
	key := urlnorm.Normalize(rawURL)

	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.seen[key]
	return ok
}

// Len returns the number of unique URLs seen.
func (v *VisitedSet) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.seen)
}

// List returns the normalized URLs in insertion order.
func (v *VisitedSet) List() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}
