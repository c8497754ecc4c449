package table

import (
	"container/heap"

	"github.com/brodenix/recql/page"
)

// freeEntry is a cached (page, spacesLeft) observation on the free-space
// priority queue. Entries may go stale (a page's real SpacesLeft can
// have dropped since the entry was pushed); staleness is resolved lazily
// at the top of the heap on read, never by eagerly repairing every
// entry.
type freeEntry struct {
	pageID     page.ID
	spacesLeft int
}

// freeSpaceHeap is a max-heap on spacesLeft: the top always names a
// candidate for "the page with the most room," subject to the lazy
// staleness check performed by Table.mostFreePage.
type freeSpaceHeap []*freeEntry

func (h freeSpaceHeap) Len() int            { return len(h) }
func (h freeSpaceHeap) Less(i, j int) bool  { return h[i].spacesLeft > h[j].spacesLeft }
func (h freeSpaceHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *freeSpaceHeap) Push(x interface{}) { *h = append(*h, x.(*freeEntry)) }
func (h *freeSpaceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*freeSpaceHeap)(nil)
