// Package query defines the immutable intermediate representation
// consumed by the recursive evaluator: Column, Operation, Term, WithDecl,
// and Query. Values are built through constructors that enforce the
// grammar's constraints at construction time rather than deferring to
// evaluation.
package query

import (
	"strings"

	"github.com/dropbox/godropbox/errors"
)

// Column is either the "*" wildcard or a qualified "table.col" reference.
type Column struct {
	All   bool
	Table string
	Col   string
}

// AllColumns is the "*" column.
func AllColumns() Column {
	return Column{All: true}
}

// NewColumn builds a qualified table.col reference.
func NewColumn(table, col string) Column {
	return Column{Table: table, Col: col}
}

// ParseColumn parses a single grammar token: "*" or "table.col".
func ParseColumn(tok string) (Column, error) {
	if tok == "*" {
		return AllColumns(), nil
	}
	table, col, ok := strings.Cut(tok, ".")
	if !ok || table == "" || col == "" {
		return Column{}, errors.Newf("invalid column reference %q, want \"*\" or \"t.c\"", tok)
	}
	return NewColumn(table, col), nil
}

func (c Column) String() string {
	if c.All {
		return "*"
	}
	return c.Table + "." + c.Col
}
