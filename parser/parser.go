package parser

import (
	"github.com/dropbox/godropbox/errors"

	"github.com/brodenix/recql/query"
)

// Parse reads one or more statements from src and returns the
// corresponding query.Query values in source order.
func Parse(src string) ([]query.Query, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	stmts := splitStatements(toks)
	if len(stmts) == 0 {
		return nil, errors.Newf("no WITH RECURSIVE statement found")
	}
	out := make([]query.Query, 0, len(stmts))
	for _, stmt := range stmts {
		q, err := parseStatement(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// state walks a single statement's token slice.
type state struct {
	toks []token
	pos  int
}

func (s *state) peek() token { return s.toks[s.pos] }

func (s *state) next() token {
	t := s.toks[s.pos]
	if t.kind != tokEOF {
		s.pos++
	}
	return t
}

func (s *state) expectKeyword(kw string) error {
	t := s.next()
	if t.kind != tokWord || !isKeyword(t.text, kw) {
		return errors.Newf("expected %q, got %q", kw, t.text)
	}
	return nil
}

func (s *state) peekKeyword(kw string) bool {
	t := s.peek()
	return t.kind == tokWord && isKeyword(t.text, kw)
}

func (s *state) expectPunct(p string) error {
	t := s.next()
	if t.kind != tokPunct || t.text != p {
		return errors.Newf("expected %q, got %q", p, t.text)
	}
	return nil
}

func (s *state) peekPunct(p string) bool {
	t := s.peek()
	return t.kind == tokPunct && t.text == p
}

func (s *state) expectWord() (string, error) {
	t := s.next()
	if t.kind != tokWord {
		return "", errors.Newf("expected identifier, got %q", t.text)
	}
	return t.text, nil
}

// parseStatement parses one complete:
//
//	WITH RECURSIVE <name>(<col>, …) AS (
//	  <term> UNION <term>
//	)
//	SELECT * INTO <dest> FROM <name>;
func parseStatement(toks []token) (query.Query, error) {
	s := &state{toks: toks}

	if err := s.expectKeyword("WITH"); err != nil {
		return query.Query{}, err
	}
	if err := s.expectKeyword("RECURSIVE"); err != nil {
		return query.Query{}, err
	}
	name, err := s.expectWord()
	if err != nil {
		return query.Query{}, err
	}
	if err := s.expectPunct("("); err != nil {
		return query.Query{}, err
	}
	var cols []string
	for {
		c, err := s.expectWord()
		if err != nil {
			return query.Query{}, err
		}
		cols = append(cols, c)
		if s.peekPunct(",") {
			s.next()
			continue
		}
		break
	}
	if err := s.expectPunct(")"); err != nil {
		return query.Query{}, err
	}
	withDecl, err := query.NewWithDecl(name, cols)
	if err != nil {
		return query.Query{}, err
	}

	if err := s.expectKeyword("AS"); err != nil {
		return query.Query{}, err
	}
	if err := s.expectPunct("("); err != nil {
		return query.Query{}, err
	}
	nonrec, err := parseTerm(s, withDecl)
	if err != nil {
		return query.Query{}, err
	}
	if err := s.expectKeyword("UNION"); err != nil {
		return query.Query{}, err
	}
	rec, err := parseTerm(s, withDecl)
	if err != nil {
		return query.Query{}, err
	}
	if err := s.expectPunct(")"); err != nil {
		return query.Query{}, err
	}

	if err := s.expectKeyword("SELECT"); err != nil {
		return query.Query{}, err
	}
	if err := s.expectPunct("*"); err != nil {
		return query.Query{}, err
	}
	if err := s.expectKeyword("INTO"); err != nil {
		return query.Query{}, err
	}
	dest, err := s.expectWord()
	if err != nil {
		return query.Query{}, err
	}
	if err := s.expectKeyword("FROM"); err != nil {
		return query.Query{}, err
	}
	src, err := s.expectWord()
	if err != nil {
		return query.Query{}, err
	}
	if src != name {
		return query.Query{}, errors.Newf(
			"SELECT * INTO %s FROM %s: expected FROM to name the WITH RECURSIVE table %q", dest, src, name)
	}
	if s.peekPunct(";") {
		s.next()
	}
	return query.NewQuery(withDecl, nonrec, rec, dest)
}

// parseTerm parses one "SELECT <cols> FROM <tables> [WHERE <ops>]"
// clause. withDecl is used only to validate that a non-wildcard column
// list has exactly as many entries as the WITH declaration — every
// entry of term.Cols is later matched positionally against
// withDecl.Cols by the evaluator.
func parseTerm(s *state, withDecl query.WithDecl) (query.Term, error) {
	if err := s.expectKeyword("SELECT"); err != nil {
		return query.Term{}, err
	}
	cols, err := parseCols(s)
	if err != nil {
		return query.Term{}, err
	}
	if !(len(cols) == 1 && cols[0].All) && len(cols) != len(withDecl.Cols) {
		return query.Term{}, errors.Newf(
			"term selects %d columns, want %d to match WITH RECURSIVE %s(%v)",
			len(cols), len(withDecl.Cols), withDecl.Name, withDecl.Cols)
	}

	if err := s.expectKeyword("FROM"); err != nil {
		return query.Term{}, err
	}
	tables, err := parseTables(s)
	if err != nil {
		return query.Term{}, err
	}

	var ops []query.Operation
	if s.peekKeyword("WHERE") {
		s.next()
		ops, err = parseOps(s)
		if err != nil {
			return query.Term{}, err
		}
	}
	return query.NewTerm(cols, tables, ops)
}

func parseCols(s *state) ([]query.Column, error) {
	if s.peekPunct("*") {
		s.next()
		return []query.Column{query.AllColumns()}, nil
	}
	var cols []query.Column
	for {
		tok, err := s.expectWord()
		if err != nil {
			return nil, err
		}
		col, err := query.ParseColumn(tok)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if s.peekPunct(",") {
			s.next()
			continue
		}
		break
	}
	return cols, nil
}

func parseTables(s *state) ([]string, error) {
	var tables []string
	for {
		t, err := s.expectWord()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
		if s.peekPunct(",") {
			s.next()
			continue
		}
		break
	}
	return tables, nil
}

func parseOps(s *state) ([]query.Operation, error) {
	var ops []query.Operation
	for {
		lhs, err := s.expectWord()
		if err != nil {
			return nil, err
		}
		opTok, err := parseOpToken(s)
		if err != nil {
			return nil, err
		}
		rhs, err := s.expectWord()
		if err != nil {
			return nil, err
		}
		op, err := query.ParseOperation(lhs, opTok, rhs)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		if s.peekKeyword("AND") {
			s.next()
			continue
		}
		break
	}
	return ops, nil
}

func parseOpToken(s *state) (string, error) {
	t := s.next()
	if t.kind != tokPunct || (t.text != "=" && t.text != ">") {
		return "", errors.Newf("expected '=' or '>', got %q", t.text)
	}
	return t.text, nil
}
