package query

import "github.com/dropbox/godropbox/errors"

// Term is one "SELECT <cols> FROM <tables> [WHERE <ops>]" clause.
type Term struct {
	Cols   []Column
	Tables []string
	Ops    []Operation
}

// NewTerm validates at least one source table and that every operation's
// column references name a table present in Tables.
func NewTerm(cols []Column, tables []string, ops []Operation) (Term, error) {
	if len(tables) == 0 {
		return Term{}, errors.Newf("term has no source tables")
	}
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t] = true
	}
	for _, op := range ops {
		if !known[op.LHS.Table] {
			return Term{}, errors.Newf("operation references unknown table %q", op.LHS.Table)
		}
		if op.RHS.IsColumn() && !known[op.RHS.Column().Table] {
			return Term{}, errors.Newf("operation references unknown table %q", op.RHS.Column().Table)
		}
	}
	return Term{Cols: cols, Tables: tables, Ops: ops}, nil
}
