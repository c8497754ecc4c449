package table

import (
	"io"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/brodenix/recql"
	. "github.com/dropbox/godropbox/gocheck2"
)

func Test(t *testing.T) { TestingT(t) }

type TableSuite struct{}

var _ = Suite(&TableSuite{})

func smallOpts() recql.Options {
	o := recql.DefaultOptions()
	o.PageCapacity = 3
	o.PageFetchMS = 0
	return o
}

func readAll(c *C, it recql.Iterator) []recql.Record {
	var out []recql.Record
	for {
		rec, err := it.Next()
		if err == io.EOF {
			break
		}
		c.Assert(err, IsNil)
		out = append(out, rec)
	}
	return out
}

func (s *TableSuite) TestAddTableRejectsDuplicate(c *C) {
	e := New(smallOpts())
	c.Assert(e.AddTable("a", []string{"c1", "c2"}), IsNil)
	c.Assert(e.AddTable("a", []string{"c1"}), NotNil)
}

func (s *TableSuite) TestInsertSpillsAcrossPages(c *C) {
	e := New(smallOpts())
	c.Assert(e.AddTable("a", []string{"c1"}), IsNil)
	recs := make([]recql.Record, 0, 7)
	for i := 0; i < 7; i++ {
		recs = append(recs, recql.Record{"c1": recql.IntValue(int64(i))})
	}
	c.Assert(e.InsertRecords("a", recs), IsNil)
	n, err := e.GetNumberOfEntries("a")
	c.Assert(err, IsNil)
	c.Assert(n, Equals, 7)

	it, err := e.GetAllRecords("a")
	c.Assert(err, IsNil)
	got := readAll(c, it)
	c.Assert(len(got), Equals, 7)
	for _, r := range got {
		_, ok := r.ID()
		c.Assert(ok, IsTrue)
	}
}

// TestUniqueByID checks that after InsertUniqueRecordsByID, the multiset
// of _id values is a set.
func (s *TableSuite) TestUniqueByID(c *C) {
	e := New(smallOpts())
	c.Assert(e.AddTable("a", []string{"c1"}), IsNil)
	rec := recql.Record{"_id": recql.StringValue("x"), "c1": recql.IntValue(1)}
	n, err := e.InsertUniqueRecordsByID("a", []recql.Record{rec, rec, rec})
	c.Assert(err, IsNil)
	c.Assert(n, Equals, 1)
	total, _ := e.GetNumberOfEntries("a")
	c.Assert(total, Equals, 1)
}

func (s *TableSuite) TestClearTableDropsIndexesAndData(c *C) {
	e := New(smallOpts())
	c.Assert(e.AddTable("a", []string{"c1"}), IsNil)
	c.Assert(e.InsertRecords("a", []recql.Record{{"c1": recql.IntValue(1)}}), IsNil)
	c.Assert(e.HashTable("a", "c1", true), IsNil)
	hashed, _ := e.IsTableHashed("a", "c1")
	c.Assert(hashed, IsTrue)

	c.Assert(e.ClearTable("a"), IsNil)
	n, _ := e.GetNumberOfEntries("a")
	c.Assert(n, Equals, 0)
	hashed, _ = e.IsTableHashed("a", "c1")
	c.Assert(hashed, IsFalse)
}

func (s *TableSuite) TestHashAndGetRecsFromHash(c *C) {
	e := New(smallOpts())
	c.Assert(e.AddTable("a", []string{"c1"}), IsNil)
	recs := []recql.Record{
		{"c1": recql.IntValue(1)},
		{"c1": recql.IntValue(2)},
		{"c1": recql.IntValue(2)},
		{"c1": recql.IntValue(3)},
	}
	c.Assert(e.InsertRecords("a", recs), IsNil)
	c.Assert(e.HashTable("a", "c1", true), IsNil)

	it, err := e.GetRecsFromHash("a", "c1", recql.OpEq, recql.IntValue(2))
	c.Assert(err, IsNil)
	got := readAll(c, it)
	c.Assert(len(got), Equals, 2)

	it, err = e.GetRecsFromHash("a", "c1", recql.OpGt, recql.IntValue(1))
	c.Assert(err, IsNil)
	got = readAll(c, it)
	c.Assert(len(got), Equals, 3)

	// Loose equality: looking up the string "2" should hit integer 2.
	it, err = e.GetRecsFromHash("a", "c1", recql.OpEq, recql.StringValue("2"))
	c.Assert(err, IsNil)
	got = readAll(c, it)
	c.Assert(len(got), Equals, 2)
}

func (s *TableSuite) TestHasValueRequiresIndex(c *C) {
	e := New(smallOpts())
	c.Assert(e.AddTable("a", []string{"c1"}), IsNil)
	_, err := e.HasValue("a", "c1", recql.IntValue(1))
	c.Assert(err, NotNil)
}

func (s *TableSuite) TestCopyIntoSortedTable(c *C) {
	e := New(smallOpts())
	c.Assert(e.AddTable("a", []string{"c1"}), IsNil)
	recs := []recql.Record{
		{"c1": recql.IntValue(3)},
		{"c1": recql.IntValue(1)},
		{"c1": recql.IntValue(2)},
	}
	c.Assert(e.InsertRecords("a", recs), IsNil)

	sorted, err := e.CopyIntoSortedTable("a", "c1")
	c.Assert(err, IsNil)
	it, err := e.GetAllRecords(sorted)
	c.Assert(err, IsNil)
	got := readAll(c, it)
	c.Assert(len(got), Equals, 3)
	c.Assert(got[0]["c1"], Equals, recql.IntValue(1))
	c.Assert(got[1]["c1"], Equals, recql.IntValue(2))
	c.Assert(got[2]["c1"], Equals, recql.IntValue(3))
}

// TestMostFreePageTracksWrites checks that after any sequence of writes,
// the free-space queue hands out a page with at least as much room as
// every other page of the table, stale heap entries notwithstanding.
func (s *TableSuite) TestMostFreePageTracksWrites(c *C) {
	e := New(smallOpts())
	c.Assert(e.AddTable("a", []string{"c1"}), IsNil)
	for i := 0; i < 10; i++ {
		c.Assert(e.InsertRecords("a", []recql.Record{
			{"c1": recql.IntValue(int64(i))},
		}), IsNil)

		t := e.tables["a"]
		top := t.mostFreePage()
		if top == nil {
			for _, pg := range t.pages {
				c.Assert(pg.SpacesLeft(), Equals, 0)
			}
			continue
		}
		for _, pg := range t.pages {
			c.Assert(top.SpacesLeft() >= pg.SpacesLeft(), IsTrue)
		}
	}
}

// TestScanUnderBufferPressure loads more pages than the buffer can hold
// and checks a full scan still visits every record exactly once, with
// evicted pages silently re-admitted.
func (s *TableSuite) TestScanUnderBufferPressure(c *C) {
	o := recql.DefaultOptions()
	o.PageCapacity = 2
	o.BufferCapacity = 2
	o.PageFetchMS = 0
	e := New(o)
	c.Assert(e.AddTable("a", []string{"c1"}), IsNil)
	recs := make([]recql.Record, 0, 6)
	for i := 0; i < 6; i++ {
		recs = append(recs, recql.Record{"c1": recql.IntValue(int64(i))})
	}
	c.Assert(e.InsertRecords("a", recs), IsNil)
	c.Assert(len(e.tables["a"].pages) >= 3, IsTrue)

	it, err := e.GetAllRecords("a")
	c.Assert(err, IsNil)
	seen := make(map[int64]int)
	for _, r := range readAll(c, it) {
		seen[r["c1"].I]++
	}
	c.Assert(len(seen), Equals, 6)
	for _, n := range seen {
		c.Assert(n, Equals, 1)
	}
}

func (s *TableSuite) TestDropRemovesTable(c *C) {
	e := New(smallOpts())
	c.Assert(e.AddTable("a", []string{"c1"}), IsNil)
	c.Assert(e.Drop("a"), IsNil)
	c.Assert(e.HasTable("a"), IsFalse)
}
