package table

import (
	"io"

	"github.com/dropbox/godropbox/errors"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/page"
)

// idScan is the lowest-level lazy primitive: a page-insertion-order,
// within-page-slot-order walk that also yields each record's RecordID,
// used internally by HashTable/InsertUniqueRecordsByID. It snapshots the
// table's page list at creation time but re-fetches each page's contents
// through the buffer lazily as it's reached — so a page evicted between
// two iterators is just silently re-admitted (and re-charged the fetch
// latency) on next access.
type idScan struct {
	eng   *Engine
	pages []*page.Page
	pageI int

	current []recql.Record
	recI    int
	curPage *page.Page
}

func (e *Engine) newIDScan(t *Table) *idScan {
	pages := make([]*page.Page, len(t.pages))
	copy(pages, t.pages)
	return &idScan{eng: e, pages: pages}
}

func (s *idScan) next() (recql.Record, RecordID, error) {
	for {
		if s.recI < len(s.current) {
			rec := s.current[s.recI]
			rid := RecordID{PageID: s.curPage.ID(), Slot: s.recI}
			s.recI++
			return rec, rid, nil
		}
		if s.pageI >= len(s.pages) {
			return nil, RecordID{}, io.EOF
		}
		s.curPage = s.pages[s.pageI]
		s.pageI++
		s.current = s.eng.buf.GetPageContents(s.curPage)
		s.recI = 0
	}
}

// recordIterator adapts idScan to the public recql.Iterator contract.
type recordIterator struct {
	scan *idScan
	pred recql.Predicate
}

func (r *recordIterator) Next() (recql.Record, error) {
	for {
		rec, _, err := r.scan.next()
		if err != nil {
			return nil, err
		}
		if r.pred == nil || r.pred(rec) {
			return rec.Clone(), nil
		}
	}
}

func (r *recordIterator) Close() error { return nil }

// GetAllRecords returns a lazy full scan of t in page-insertion order.
func (e *Engine) GetAllRecords(name string) (recql.Iterator, error) {
	t, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	return &recordIterator{scan: e.newIDScan(t)}, nil
}

// FilterRecords returns a lazy full scan of t restricted to records
// satisfying pred.
func (e *Engine) FilterRecords(name string, pred recql.Predicate) (recql.Iterator, error) {
	t, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	return &recordIterator{scan: e.newIDScan(t), pred: pred}, nil
}

// IsTableHashed reports whether t already has a hash index on col.
func (e *Engine) IsTableHashed(name, col string) (bool, error) {
	t, err := e.lookup(name)
	if err != nil {
		return false, err
	}
	_, ok := t.indexes[col]
	return ok, nil
}

// HasValue reports whether v appears in t's index on col. Requires an
// existing index; errors otherwise.
func (e *Engine) HasValue(name, col string, v recql.Value) (bool, error) {
	t, err := e.lookup(name)
	if err != nil {
		return false, err
	}
	idx, ok := t.indexes[col]
	if !ok {
		return false, errors.Newf("table %q has no hash index on %q", name, col)
	}
	return idx.HasValue(v), nil
}

// HashTable (re)builds the hash index on (t, col). When fresh is true, a
// new index replaces any existing one; otherwise the existing index is
// extended to cover records inserted since it was last built. Every page
// is visited through the buffer, recording (page_id, slot) per value.
func (e *Engine) HashTable(name, col string, fresh bool) error {
	t, err := e.lookup(name)
	if err != nil {
		return err
	}
	idx, ok := t.indexes[col]
	if fresh || !ok {
		idx = newHashIndex(col)
		t.indexes[col] = idx
	}

	scan := e.newIDScan(t)
	seen := 0
	for {
		rec, rid, err := scan.next()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		seen++
		if seen <= idx.indexedCount {
			continue
		}
		v, ok := rec[col]
		if !ok {
			return errors.Newf("table %q has no column %q", name, col)
		}
		idx.Add(v, rid)
	}
	idx.indexedCount = seen
	return nil
}

// get fetches the record at rid through the buffer, given its owning
// table.
func (e *Engine) get(t *Table, rid RecordID) (recql.Record, error) {
	pg, ok := t.pageByID[rid.PageID]
	if !ok {
		return nil, errors.Newf("no such page %d in table %q", rid.PageID, t.name)
	}
	contents := e.buf.GetPageContents(pg)
	if rid.Slot < 0 || rid.Slot >= len(contents) {
		return nil, errors.Newf(
			"slot %d out of bounds for page %d", rid.Slot, rid.PageID)
	}
	return contents[rid.Slot].Clone(), nil
}

// locatorIterator lazily materializes a fixed slice of locators into
// records through the buffer, one Next() call at a time.
type locatorIterator struct {
	eng      *Engine
	t        *Table
	locators []RecordID
	pos      int
}

func (l *locatorIterator) Next() (recql.Record, error) {
	if l.pos >= len(l.locators) {
		return nil, io.EOF
	}
	rid := l.locators[l.pos]
	l.pos++
	return l.eng.get(l.t, rid)
}

func (l *locatorIterator) Close() error { return nil }

// GetRecsFromHash returns a lazy stream of records from t whose value in
// col satisfies `col op rhs`, sourced from the existing hash index on
// (t, col). A lookup miss yields an empty stream, never an error — absent
// data is an expected condition, not a programmer error. Only '=' and
// '>' are supported; anything else is a programmer error.
func (e *Engine) GetRecsFromHash(name, col string, op recql.Op, rhs recql.Value) (recql.Iterator, error) {
	t, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	idx, ok := t.indexes[col]
	if !ok {
		return nil, errors.Newf("table %q has no hash index on %q", name, col)
	}
	var locators []RecordID
	switch op {
	case recql.OpEq:
		locators = idx.Equal(rhs)
	case recql.OpGt:
		locators = idx.GreaterThan(rhs)
	default:
		return nil, errors.Newf("unsupported operator %v", op)
	}
	return &locatorIterator{eng: e, t: t, locators: locators}, nil
}

// DistinctValues returns t's hash-indexed distinct values for col, in
// ascending order. Requires an existing index on col.
func (e *Engine) DistinctValues(name, col string) ([]recql.Value, error) {
	t, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	idx, ok := t.indexes[col]
	if !ok {
		return nil, errors.Newf("table %q has no hash index on %q", name, col)
	}
	return idx.AscendingValues(), nil
}

// CopyIntoSortedTable creates a new table with t's columns, (re)hashes t
// on col, and inserts t's records key by key in ascending order of col.
// Stability within a key is not required.
func (e *Engine) CopyIntoSortedTable(name, col string) (string, error) {
	t, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	if err := e.HashTable(name, col, false); err != nil {
		return "", err
	}
	idx := t.indexes[col]

	dest := RandomTableName("sorted")
	if err := e.AddTable(dest, t.Columns()); err != nil {
		return "", err
	}
	for _, v := range idx.AscendingValues() {
		for _, rid := range idx.Equal(v) {
			rec, err := e.get(t, rid)
			if err != nil {
				return "", err
			}
			if err := e.InsertRecords(dest, []recql.Record{rec}); err != nil {
				return "", err
			}
		}
	}
	return dest, nil
}
