// Package buffer implements a fixed-capacity LRU cache of page residency
// that charges a simulated fetch penalty on admission. Pages themselves
// are always fully resident in the owning table (see table.Table) — the
// buffer never holds page data, only bookkeeping of which page ids are
// presently considered "hot," so correctness never depends on buffer
// residency, only benchmark timing does.
package buffer

import (
	"container/list"
	"time"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/page"
)

// Buffer is a fixed-capacity LRU over page.ID residency.
type Buffer struct {
	capacity int
	latency  time.Duration

	order *list.List                // front = most recently used
	elems map[page.ID]*list.Element // page.ID -> element in order
}

// New creates a Buffer with the given capacity and per-miss fetch latency.
func New(capacity int, fetchLatency time.Duration) *Buffer {
	return &Buffer{
		capacity: capacity,
		latency:  fetchLatency,
		order:    list.New(),
		elems:    make(map[page.ID]*list.Element),
	}
}

// NewFromOptions builds a Buffer sized from recql.Options.
func NewFromOptions(opts recql.Options) *Buffer {
	return New(opts.BufferCapacity, opts.FetchLatency())
}

// HasPage reports residency using peek semantics: it never touches LRU
// order and never charges latency.
func (b *Buffer) HasPage(id page.ID) bool {
	_, ok := b.elems[id]
	return ok
}

// Get promotes pg's id to most-recently-used, charging the simulated
// fetch latency on a miss and evicting the LRU victim if the buffer is
// now over capacity. pg is returned unchanged — the buffer never
// transforms or copies page data, it only tracks hotness.
func (b *Buffer) Get(pg *page.Page) *page.Page {
	id := pg.ID()
	if elem, ok := b.elems[id]; ok {
		b.order.MoveToFront(elem)
		return pg
	}
	b.addPage(id)
	return pg
}

// addPage charges FETCH_MS for the admission and installs id as the new
// most-recently-used entry, evicting the LRU victim if over capacity.
func (b *Buffer) addPage(id page.ID) {
	busyWait(b.latency)
	elem := b.order.PushFront(id)
	b.elems[id] = elem
	if b.capacity > 0 && b.order.Len() > b.capacity {
		victim := b.order.Back()
		b.order.Remove(victim)
		delete(b.elems, victim.Value.(page.ID))
	}
}

// GetPageContents promotes pg and returns a fresh snapshot iterator over
// its current contents.
func (b *Buffer) GetPageContents(pg *page.Page) []recql.Record {
	b.Get(pg)
	return pg.Iterate()
}

// Resident returns the page ids currently tracked as resident, most
// recently used first. Exposed for tests; not part of the engine's
// operational surface.
func (b *Buffer) Resident() []page.ID {
	out := make([]page.ID, 0, b.order.Len())
	for e := b.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(page.ID))
	}
	return out
}

// busyWait blocks for at least d using a monotonic clock read, rather than
// relying on the scheduler's sleep granularity: the latency is the
// contract, not the mechanism.
func busyWait(d time.Duration) {
	if d <= 0 {
		return
	}
	start := time.Now()
	for time.Since(start) < d {
	}
}
