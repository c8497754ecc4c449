package dataset

import (
	"os"
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/brodenix/recql"
	. "github.com/dropbox/godropbox/gocheck2"
)

func Test(t *testing.T) { TestingT(t) }

type DatasetSuite struct{}

var _ = Suite(&DatasetSuite{})

func (s *DatasetSuite) TestLoadCSVDefaultColumnsAndScale(c *C) {
	dir := c.MkDir()
	path := filepath.Join(dir, "in.csv")
	c.Assert(os.WriteFile(path, []byte("1,a\n2,b\n3,c\n4,d\n"), 0o644), IsNil)

	tbl, err := LoadCSV(path, 50)
	c.Assert(err, IsNil)
	c.Assert(tbl.Columns, DeepEquals, []string{"c1", "c2"})
	c.Assert(len(tbl.Records), Equals, 2) // round(4*50/100) = 2

	c.Assert(tbl.Records[0]["c1"], Equals, recql.IntValue(1))
	c.Assert(tbl.Records[0]["c2"], Equals, recql.StringValue("a"))
	id, ok := tbl.Records[0].ID()
	c.Assert(ok, IsTrue)
	c.Assert(id.S, Equals, `["1","a"]`)
}

func (s *DatasetSuite) TestLoadCSVFullScaleKeepsAllRows(c *C) {
	dir := c.MkDir()
	path := filepath.Join(dir, "in.csv")
	c.Assert(os.WriteFile(path, []byte("1\r\n2\r\n3\r\n"), 0o644), IsNil)

	tbl, err := LoadCSV(path, 100)
	c.Assert(err, IsNil)
	c.Assert(len(tbl.Records), Equals, 3)
}

func (s *DatasetSuite) TestRandomGraphNoSelfLoops(c *C) {
	g := RandomGraph(10, 3)
	c.Assert(g.Columns, DeepEquals, []string{"c1", "c2"})
	for _, r := range g.Records {
		from := r["c1"]
		to := r["c2"]
		c.Assert(from.Equal(to), IsFalse)
	}
}

func (s *DatasetSuite) TestRandomPermutationIsAPermutation(c *C) {
	perm := RandomPermutation(20)
	seen := make(map[int]bool, 20)
	for _, v := range perm {
		c.Assert(v >= 0 && v < 20, IsTrue)
		c.Assert(seen[v], IsFalse)
		seen[v] = true
	}
	c.Assert(len(seen), Equals, 20)
}

func (s *DatasetSuite) TestCountIncreasingPairsIdentity(c *C) {
	c.Assert(CountIncreasingPairs([]int{0, 1, 2, 3}), Equals, 6)
	c.Assert(CountIncreasingPairs([]int{3, 2, 1, 0}), Equals, 0)
}

func (s *DatasetSuite) TestOrderEdgesMatchesIncreasingPairCount(c *C) {
	perm := []int{3, 1, 0, 2}
	edges := OrderEdges(perm)
	c.Assert(len(edges.Records), Equals, CountIncreasingPairs(perm))
}
