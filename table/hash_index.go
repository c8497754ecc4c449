package table

import (
	sortedmap "github.com/tobshub/go-sortedmap"

	"github.com/brodenix/recql"
)

// bucket is one distinct indexed value together with every locator that
// currently holds it.
type bucket struct {
	value    recql.Value
	locators []RecordID
}

func bucketLess(a, b *bucket) bool {
	return a.value.Less(b.value)
}

// HashIndex maps a column value to the (possibly many) locators that hold
// it. Backed by a sorted map keyed on the value's canonical
// (normalized-to-string) form, rather than a bare Go map, so
// CopyIntoSortedTable can walk keys in ascending order directly off the
// index instead of collecting and sorting them by hand.
type HashIndex struct {
	col string
	m   *sortedmap.SortedMap[string, *bucket]
	// indexedCount is how many records (in table scan order) have already
	// been folded into this index; HashTable's non-fresh ("extend") mode
	// resumes from here instead of rescanning from scratch.
	indexedCount int
}

func newHashIndex(col string) *HashIndex {
	return &HashIndex{
		col: col,
		m:   sortedmap.New[string, *bucket](0, bucketLess),
	}
}

// Add records that locator rid holds value v.
func (h *HashIndex) Add(v recql.Value, rid RecordID) {
	key := v.Canonical()
	if b, ok := h.m.Get(key); ok {
		b.locators = append(b.locators, rid)
		return
	}
	h.m.Insert(key, &bucket{value: v, locators: []RecordID{rid}})
}

// Equal returns the locators for exactly v (possibly empty).
func (h *HashIndex) Equal(v recql.Value) []RecordID {
	b, ok := h.m.Get(v.Canonical())
	if !ok {
		return nil
	}
	return b.locators
}

// HasValue reports whether v is present in the index.
func (h *HashIndex) HasValue(v recql.Value) bool {
	_, ok := h.m.Get(v.Canonical())
	return ok
}

// GreaterThan returns, concatenated, the locators of every distinct value
// strictly greater than v, in ascending key order.
func (h *HashIndex) GreaterThan(v recql.Value) []RecordID {
	ch, err := h.m.IterCh()
	if err != nil {
		// IterCh errors only on an empty map.
		return nil
	}
	defer ch.Close()
	var out []RecordID
	for rec := range ch.Records() {
		if v.Less(rec.Val.value) {
			out = append(out, rec.Val.locators...)
		}
	}
	return out
}

// AscendingValues returns the index's distinct values in ascending order,
// used by CopyIntoSortedTable.
func (h *HashIndex) AscendingValues() []recql.Value {
	ch, err := h.m.IterCh()
	if err != nil {
		return nil
	}
	defer ch.Close()
	out := make([]recql.Value, 0, h.m.Len())
	for rec := range ch.Records() {
		out = append(out, rec.Val.value)
	}
	return out
}
