// Package page implements a fixed-capacity, append-only, in-memory
// record container with slot-indexed direct access.
package page

import (
	"github.com/brodenix/recql"
	"github.com/dropbox/godropbox/errors"
)

// ID is an opaque, globally unique page identifier.
type ID int64

// Page holds an ordered sequence of at most Capacity records. A caller
// that appends without first checking SpacesLeft has a bug, so appending
// past capacity is reported rather than silently refused.
type Page struct {
	id       ID
	capacity int
	records  []recql.Record
}

// New allocates an empty page with the given id and capacity.
func New(id ID, capacity int) *Page {
	return &Page{
		id:       id,
		capacity: capacity,
		records:  make([]recql.Record, 0, capacity),
	}
}

// ID returns the page's identifier.
func (p *Page) ID() ID {
	return p.id
}

// SpacesLeft returns how many more records this page can hold.
func (p *Page) SpacesLeft() int {
	return p.capacity - len(p.records)
}

// Len returns the number of records currently held.
func (p *Page) Len() int {
	return len(p.records)
}

// Append inserts record at the next free slot, returning its slot index.
// ok is false when the page is full; the caller is
// expected to have consulted SpacesLeft first, so a full page is a normal,
// recoverable condition here, not a panic.
func (p *Page) Append(record recql.Record) (slot int, ok bool) {
	if len(p.records) >= p.capacity {
		return 0, false
	}
	p.records = append(p.records, record)
	return len(p.records) - 1, true
}

// Get returns the record at slot, by value semantics (a shallow copy via
// Record.Clone, so the caller's mutations of the returned Record never
// reach storage).
func (p *Page) Get(slot int) (recql.Record, error) {
	if slot < 0 || slot >= len(p.records) {
		return nil, errors.Newf(
			"slot %d out of bounds for page %d holding %d records",
			slot, p.id, len(p.records))
	}
	return p.records[slot].Clone(), nil
}

// Iterate returns a stable snapshot of the page's current contents, so a
// caller may safely insert into another page of the same table while
// iterating this one.
func (p *Page) Iterate() []recql.Record {
	out := make([]recql.Record, len(p.records))
	copy(out, p.records)
	return out
}

// Clear resets the page to empty without freeing the backing array.
func (p *Page) Clear() {
	p.records = p.records[:0]
}
