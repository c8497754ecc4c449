package parser

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/query"
	. "github.com/dropbox/godropbox/gocheck2"
)

func Test(t *testing.T) { TestingT(t) }

type ParserSuite struct{}

var _ = Suite(&ParserSuite{})

func (s *ParserSuite) TestParseTrivialReflexiveClosure(c *C) {
	src := `
		WITH RECURSIVE t(c1, c2) AS (
		  SELECT * FROM a UNION SELECT a.c1, t.c2 FROM a, t WHERE t.c1 = a.c2
		)
		SELECT * INTO n FROM t;
	`
	qs, err := Parse(src)
	c.Assert(err, IsNil)
	c.Assert(len(qs), Equals, 1)
	q := qs[0]

	c.Assert(q.WithDecl.Name, Equals, "t")
	c.Assert(q.WithDecl.Cols, DeepEquals, []string{"c1", "c2"})
	c.Assert(q.ResultTableName, Equals, "n")

	c.Assert(q.NonRecTerm.Cols, DeepEquals, []query.Column{query.AllColumns()})
	c.Assert(q.NonRecTerm.Tables, DeepEquals, []string{"a"})

	c.Assert(q.RecTerm.Tables, DeepEquals, []string{"a", "t"})
	c.Assert(q.RecTerm.Cols, DeepEquals, []query.Column{
		query.NewColumn("a", "c1"),
		query.NewColumn("t", "c2"),
	})
	c.Assert(len(q.RecTerm.Ops), Equals, 1)
	op := q.RecTerm.Ops[0]
	c.Assert(op.LHS, Equals, query.NewColumn("t", "c1"))
	c.Assert(op.Op, Equals, recql.OpEq)
	c.Assert(op.RHS.IsColumn(), IsTrue)
	c.Assert(op.RHS.Column(), Equals, query.NewColumn("a", "c2"))
}

func (s *ParserSuite) TestParseMultipleAndConditions(c *C) {
	src := `WITH RECURSIVE t(c1, c2) AS (
		SELECT * FROM a UNION
		SELECT a.c1, t.c2 FROM a, t WHERE t.c1 = a.c2 AND t.c2 > t.c1 AND a.c2 > a.c1
	) SELECT * INTO n FROM t;`
	qs, err := Parse(src)
	c.Assert(err, IsNil)
	c.Assert(len(qs[0].RecTerm.Ops), Equals, 3)
}

func (s *ParserSuite) TestParseLiteralOperand(c *C) {
	src := `WITH RECURSIVE t(c1) AS (
		SELECT * FROM a UNION SELECT a.c1 FROM a, t WHERE a.c1 > 10
	) SELECT * INTO n FROM t;`
	qs, err := Parse(src)
	c.Assert(err, IsNil)
	op := qs[0].RecTerm.Ops[0]
	c.Assert(op.RHS.IsColumn(), IsFalse)
	c.Assert(op.RHS.Literal(), Equals, recql.IntValue(10))
}

func (s *ParserSuite) TestParseMultipleStatements(c *C) {
	src := `WITH RECURSIVE t(c1) AS (SELECT * FROM a UNION SELECT a.c1 FROM a, t WHERE a.c1 = t.c1) SELECT * INTO n FROM t;
	WITH RECURSIVE u(c1) AS (SELECT * FROM b UNION SELECT b.c1 FROM b, u WHERE b.c1 = u.c1) SELECT * INTO m FROM u;`
	qs, err := Parse(src)
	c.Assert(err, IsNil)
	c.Assert(len(qs), Equals, 2)
	c.Assert(qs[0].ResultTableName, Equals, "n")
	c.Assert(qs[1].ResultTableName, Equals, "m")
}

func (s *ParserSuite) TestParseRejectsMismatchedColumnCount(c *C) {
	src := `WITH RECURSIVE t(c1, c2) AS (
		SELECT * FROM a UNION SELECT a.c1 FROM a, t WHERE a.c1 = t.c1
	) SELECT * INTO n FROM t;`
	_, err := Parse(src)
	c.Assert(err, NotNil)
}

func (s *ParserSuite) TestParseRejectsUnsupportedOperator(c *C) {
	src := `WITH RECURSIVE t(c1) AS (
		SELECT * FROM a UNION SELECT a.c1 FROM a, t WHERE a.c1 != t.c1
	) SELECT * INTO n FROM t;`
	_, err := Parse(src)
	c.Assert(err, NotNil)
}

func (s *ParserSuite) TestParseRejectsEmptyInput(c *C) {
	_, err := Parse("   ")
	c.Assert(err, NotNil)
}
