package table

import (
	"container/heap"

	"github.com/brodenix/recql/page"
)

// Table holds one table's state: its column list, its pages (tracked in
// insertion order for iteration), a free-space priority queue over those
// pages, and a per-column hash-index map.
type Table struct {
	name string
	cols []string

	pages    []*page.Page
	pageByID map[page.ID]*page.Page
	free     freeSpaceHeap

	indexes map[string]*HashIndex
}

func newTable(name string, cols []string) *Table {
	return &Table{
		name:     name,
		cols:     append([]string(nil), cols...),
		pageByID: make(map[page.ID]*page.Page),
		indexes:  make(map[string]*HashIndex),
	}
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Columns returns a defensive copy of the declared column list.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

func (t *Table) addPage(pg *page.Page) {
	t.pages = append(t.pages, pg)
	t.pageByID[pg.ID()] = pg
	heap.Push(&t.free, &freeEntry{pageID: pg.ID(), spacesLeft: pg.SpacesLeft()})
}

// pushFresh re-pushes an up-to-date entry for pg after a write, so the
// heap top always has a current observation to offer.
func (t *Table) pushFresh(pg *page.Page) {
	heap.Push(&t.free, &freeEntry{pageID: pg.ID(), spacesLeft: pg.SpacesLeft()})
}

// mostFreePage returns the page with the most SpacesLeft, repairing stale
// heap entries lazily as it pops them. It returns nil if every allocated
// page is full (the caller must then allocate a new one).
func (t *Table) mostFreePage() *page.Page {
	for t.free.Len() > 0 {
		top := t.free[0]
		pg := t.pageByID[top.pageID]
		actual := pg.SpacesLeft()
		if actual == top.spacesLeft {
			if actual == 0 {
				return nil
			}
			return pg
		}
		// Stale: pop and, if the page still has room, push a corrected
		// entry; a page that's since filled up is simply dropped from
		// consideration (it only re-enters the heap when ClearTable
		// rebuilds it via rebuildFreeHeap).
		heap.Pop(&t.free)
		if actual > 0 {
			heap.Push(&t.free, &freeEntry{pageID: top.pageID, spacesLeft: actual})
		}
	}
	return nil
}

// rebuildFreeHeap re-heapifies from scratch, used by ClearTable.
func (t *Table) rebuildFreeHeap() {
	t.free = t.free[:0]
	for _, pg := range t.pages {
		t.free = append(t.free, &freeEntry{pageID: pg.ID(), spacesLeft: pg.SpacesLeft()})
	}
	heap.Init(&t.free)
}

// numEntries counts the records held across all pages, read directly off
// the live pages rather than the (possibly stale) heap.
func (t *Table) numEntries() int {
	total := 0
	for _, pg := range t.pages {
		total += pg.Len()
	}
	return total
}
