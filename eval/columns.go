package eval

import (
	"github.com/brodenix/recql/join"
	"github.com/brodenix/recql/query"
)

// destColumns returns the with-declared destination column names that
// term.Cols draws from any table in tables, in term.Cols order.
func destColumns(term query.Term, withDecl query.WithDecl, tables map[string]bool) []string {
	var cols []string
	for i, col := range term.Cols {
		if tables[col.Table] {
			cols = append(cols, withDecl.Cols[i])
		}
	}
	return cols
}

// buildProjection derives a join.Projection restricted to the columns
// term.Cols draws from tables, resolving each source table through
// nameMap (its simplification alias, or identity for untouched tables).
func buildProjection(term query.Term, withDecl query.WithDecl, nameMap map[string]string, tables map[string]bool) join.Projection {
	var proj join.Projection
	for i, col := range term.Cols {
		if !tables[col.Table] {
			continue
		}
		proj = append(proj, join.Entry{
			DstCol:   withDecl.Cols[i],
			SrcTable: nameMap[col.Table],
			SrcCol:   col.Col,
		})
	}
	return proj
}
