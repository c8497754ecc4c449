package buffer

import (
	"testing"
	"time"

	. "gopkg.in/check.v1"

	"github.com/brodenix/recql/page"
	. "github.com/dropbox/godropbox/gocheck2"
)

func Test(t *testing.T) { TestingT(t) }

type BufferSuite struct{}

var _ = Suite(&BufferSuite{})

// TestLatency checks that over N misses, elapsed wall time is at least
// N times the configured fetch latency.
func (s *BufferSuite) TestLatency(c *C) {
	fetch := 2 * time.Millisecond
	b := New(50, fetch)
	pages := []*page.Page{
		page.New(1, 10),
		page.New(2, 10),
		page.New(3, 10),
	}
	start := time.Now()
	for _, pg := range pages {
		b.Get(pg)
	}
	elapsed := time.Since(start)
	c.Assert(elapsed >= time.Duration(len(pages))*fetch, IsTrue)
}

// TestLRU checks that with capacity k, the resident set is the k
// most-recently Get-accessed page ids.
func (s *BufferSuite) TestLRU(c *C) {
	b := New(2, 0)
	p1 := page.New(1, 10)
	p2 := page.New(2, 10)
	p3 := page.New(3, 10)

	b.Get(p1)
	b.Get(p2)
	c.Assert(b.Resident(), DeepEquals, []page.ID{2, 1})

	// Touching p1 again makes it MRU.
	b.Get(p1)
	c.Assert(b.Resident(), DeepEquals, []page.ID{1, 2})

	// Admitting p3 evicts the LRU victim (p2).
	b.Get(p3)
	c.Assert(b.Resident(), DeepEquals, []page.ID{3, 1})
	c.Assert(b.HasPage(2), IsFalse)
}

// TestPeekDoesNotPromote checks that HasPage uses peek semantics.
func (s *BufferSuite) TestPeekDoesNotPromote(c *C) {
	b := New(2, 0)
	p1 := page.New(1, 10)
	p2 := page.New(2, 10)
	b.Get(p1)
	b.Get(p2)
	c.Assert(b.HasPage(1), IsTrue)
	// Peeking p1 must not change its LRU position.
	c.Assert(b.Resident(), DeepEquals, []page.ID{2, 1})
}
