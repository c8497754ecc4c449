package eval

import (
	"github.com/dropbox/godropbox/errors"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/query"
	"github.com/brodenix/recql/table"
)

// projectStandalone renames src (t's simplification alias, or t itself)
// down to the with-declared destination names term.Cols assigns to t's
// columns, so every member handed to the final cross product — whether a
// composite pair/tree representative or a lone table — shares one column
// naming scheme by the time they're combined.
func projectStandalone(eng *table.Engine, term query.Term, withDecl query.WithDecl, src, t string) (string, error) {
	recs, err := drain(eng.GetAllRecords(src))
	if err != nil {
		return "", err
	}
	out := make([]recql.Record, 0, len(recs))
	for _, rec := range recs {
		row := make(recql.Record, len(term.Cols))
		for i, col := range term.Cols {
			if col.Table != t {
				continue
			}
			v, ok := rec[col.Col]
			if !ok {
				return "", errors.Newf("table %q has no column %q", t, col.Col)
			}
			row[withDecl.Cols[i]] = v
		}
		out = append(out, row)
	}

	name := table.RandomTableName("std")
	if err := eng.AddTable(name, destColumns(term, withDecl, map[string]bool{t: true})); err != nil {
		return "", err
	}
	if err := eng.InsertRecords(name, out); err != nil {
		return "", err
	}
	return name, nil
}
