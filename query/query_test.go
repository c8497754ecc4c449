package query

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/brodenix/recql"
	. "github.com/dropbox/godropbox/gocheck2"
)

func Test(t *testing.T) { TestingT(t) }

type QuerySuite struct{}

var _ = Suite(&QuerySuite{})

func (s *QuerySuite) TestParseColumn(c *C) {
	all, err := ParseColumn("*")
	c.Assert(err, IsNil)
	c.Assert(all.All, IsTrue)

	col, err := ParseColumn("edges.to")
	c.Assert(err, IsNil)
	c.Assert(col.Table, Equals, "edges")
	c.Assert(col.Col, Equals, "to")

	_, err = ParseColumn("badtoken")
	c.Assert(err, NotNil)
}

func (s *QuerySuite) TestParseOperationLiteral(c *C) {
	op, err := ParseOperation("edges.weight", ">", "10")
	c.Assert(err, IsNil)
	c.Assert(op.Op, Equals, recql.OpGt)
	c.Assert(op.RHS.IsColumn(), IsFalse)
	c.Assert(op.RHS.Literal(), Equals, recql.IntValue(10))
}

func (s *QuerySuite) TestParseOperationColumn(c *C) {
	op, err := ParseOperation("r.to", "=", "e.from")
	c.Assert(err, IsNil)
	c.Assert(op.RHS.IsColumn(), IsTrue)
	c.Assert(op.RHS.Column(), Equals, NewColumn("e", "from"))
}

func (s *QuerySuite) TestParseOperationRejectsUnsupportedOp(c *C) {
	_, err := ParseOperation("e.from", "<", "e.to")
	c.Assert(err, NotNil)
}

func (s *QuerySuite) TestParseOperationRejectsWildcardLHS(c *C) {
	_, err := NewOperation(AllColumns(), recql.OpEq, LiteralOperand(recql.IntValue(1)))
	c.Assert(err, NotNil)
}

func (s *QuerySuite) TestNewTermRejectsUnknownTableInOp(c *C) {
	op, err := ParseOperation("missing.col", "=", "1")
	c.Assert(err, IsNil)
	_, err = NewTerm([]Column{AllColumns()}, []string{"edges"}, []Operation{op})
	c.Assert(err, NotNil)
}

func (s *QuerySuite) TestNewQueryRoundTrip(c *C) {
	with, err := NewWithDecl("reach", []string{"from", "to"})
	c.Assert(err, IsNil)

	nonrec, err := NewTerm([]Column{AllColumns()}, []string{"edges"}, nil)
	c.Assert(err, IsNil)

	op, err := ParseOperation("e.from", "=", "reach.to")
	c.Assert(err, IsNil)
	rec, err := NewTerm([]Column{AllColumns()}, []string{"reach", "e"}, []Operation{op})
	c.Assert(err, IsNil)

	q, err := NewQuery(with, nonrec, rec, "result")
	c.Assert(err, IsNil)
	c.Assert(q.ResultTableName, Equals, "result")
	c.Assert(q.WithDecl.Name, Equals, "reach")
}
