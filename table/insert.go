package table

import (
	"github.com/dropbox/godropbox/errors"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/page"
)

// InsertRecords assigns a "{table}:{nanoid}" id to any record missing an
// _id, places each record into the currently most-free page (allocating a
// new page when the current one fills), and repairs the free-space queue
// after the batch. It does not enforce _id uniqueness and does not
// maintain secondary hash indexes — a caller that follows with a
// hash-dependent read must rehash.
func (e *Engine) InsertRecords(name string, recs []recql.Record) error {
	t, err := e.lookup(name)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		rec = rec.Clone()
		if _, ok := rec.ID(); !ok {
			rec[recql.IDColumn] = recql.StringValue(name + ":" + RandomSuffix(16))
		}
		if err := e.placeRecord(t, rec); err != nil {
			return err
		}
	}
	return nil
}

// placeRecord appends rec to the table's currently most-free page,
// allocating a fresh page first if every existing page is full.
func (e *Engine) placeRecord(t *Table, rec recql.Record) error {
	pg := t.mostFreePage()
	if pg == nil {
		pg = page.New(e.allocPageID(), e.opts.PageCapacity)
		t.addPage(pg)
	}
	if _, ok := pg.Append(rec); !ok {
		// mostFreePage only ever returns a page with room, and we just
		// allocated a fresh one as a fallback, so this is a programmer
		// error, not an expected condition.
		return errors.Newf("page %d reported space but append failed", pg.ID())
	}
	t.pushFresh(pg)
	return nil
}

// InsertUniqueRecordsByID ensures t has an _id hash index, skips any
// record whose _id is already present, and incrementally updates the _id
// index with the new locator for each accepted record.
func (e *Engine) InsertUniqueRecordsByID(name string, recs []recql.Record) (int, error) {
	t, err := e.lookup(name)
	if err != nil {
		return 0, err
	}
	idx, ok := t.indexes[recql.IDColumn]
	if !ok {
		// Cover whatever the table already holds before enforcing
		// uniqueness against it.
		if err := e.HashTable(name, recql.IDColumn, false); err != nil {
			return 0, err
		}
		idx = t.indexes[recql.IDColumn]
	}

	inserted := 0
	for _, rec := range recs {
		id, ok := rec.ID()
		if !ok {
			return inserted, errors.Newf("record missing %s column", recql.IDColumn)
		}
		if idx.HasValue(id) {
			continue
		}
		rec = rec.Clone()
		pg := t.mostFreePage()
		if pg == nil {
			pg = page.New(e.allocPageID(), e.opts.PageCapacity)
			t.addPage(pg)
		}
		slot, ok := pg.Append(rec)
		if !ok {
			return inserted, errors.Newf("page %d reported space but append failed", pg.ID())
		}
		t.pushFresh(pg)
		idx.Add(id, RecordID{PageID: pg.ID(), Slot: slot})
		idx.indexedCount++
		inserted++
	}
	return inserted, nil
}
