package query

import "github.com/dropbox/godropbox/errors"

// WithDecl is the "WITH RECURSIVE <name>(<col>, …)" header: the name and
// column list of the working/result table pair.
type WithDecl struct {
	Name string
	Cols []string
}

// NewWithDecl validates a non-empty name and column list.
func NewWithDecl(name string, cols []string) (WithDecl, error) {
	if name == "" {
		return WithDecl{}, errors.Newf("with-decl has empty name")
	}
	if len(cols) == 0 {
		return WithDecl{}, errors.Newf("with-decl %q declares no columns", name)
	}
	return WithDecl{Name: name, Cols: cols}, nil
}

// Query is one complete "WITH RECURSIVE … UNION … SELECT * INTO …"
// statement: the declaration, its non-recursive and recursive terms, and
// the destination table for the final result.
type Query struct {
	WithDecl        WithDecl
	NonRecTerm      Term
	RecTerm         Term
	ResultTableName string
}

// NewQuery validates ResultTableName is non-empty.
func NewQuery(with WithDecl, nonrec, rec Term, resultTableName string) (Query, error) {
	if resultTableName == "" {
		return Query{}, errors.Newf("query has empty result table name")
	}
	return Query{
		WithDecl:        with,
		NonRecTerm:      nonrec,
		RecTerm:         rec,
		ResultTableName: resultTableName,
	}, nil
}
