package engine

import (
	"sync"

	"github.com/IshaanNene/shopcrawl/internal/types"
)

// Frontier is a thread-safe FIFO queue of crawl targets.
type Frontier struct {
	mu    sync.Mutex
	items []types.CrawlTarget
	head  int
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{items: make([]types.CrawlTarget, 0, 64)}
}

// Push appends a target to the back of the queue.
func (f *Frontier) Push(t types.CrawlTarget) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, t)
}

// Pop removes the oldest target. ok is false when the queue is empty.
func (f *Frontier) Pop() (t types.CrawlTarget, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head == len(f.items) {
		return types.CrawlTarget{}, false
	}
	t = f.items[f.head]
	f.items[f.head] = types.CrawlTarget{}
	f.head++

	// Compact once the consumed prefix dominates the backing array.
	if f.head > 1024 && f.head*2 > len(f.items) {
		n := copy(f.items, f.items[f.head:])
		f.items = f.items[:n]
		f.head = 0
	}
	return t, true
}

// Len returns the number of queued targets.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items) - f.head
}

// Snapshot returns the queued targets in pop order.
func (f *Frontier) Snapshot() []types.CrawlTarget {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.CrawlTarget, len(f.items)-f.head)
	copy(out, f.items[f.head:])
	return out
}
