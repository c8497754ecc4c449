// Package join implements the two pull-iterator join strategies used by
// the recursive evaluator: a lazy block-nested-loop join and a hash join
// over per-column hash indexes (built or extended on demand).
package join

import (
	"github.com/dropbox/godropbox/errors"

	"github.com/brodenix/recql"
)

// Entry maps one destination column of a join's output to a column of
// one of the two source tables.
type Entry struct {
	DstCol   string
	SrcTable string
	SrcCol   string
}

// Projection is an ordered list of output-column mappings.
type Projection []Entry

// project builds one output row. compositeID additionally sets a
// composite "_id" = "{r1._id}|{r2._id}"; only HashJoin's withPairID mode
// asks for it — BlockJoin's withPairID stops at the two provenance
// columns and produces no composite row identity.
func project(t1, t2 string, proj Projection, r1, r2 recql.Record, withPairID, compositeID bool) (recql.Record, error) {
	out := make(recql.Record, len(proj)+3)
	for _, e := range proj {
		var src recql.Record
		switch e.SrcTable {
		case t1:
			src = r1
		case t2:
			src = r2
		default:
			return nil, errors.Newf(
				"projection entry %q references unknown source table %q", e.DstCol, e.SrcTable)
		}
		v, ok := src[e.SrcCol]
		if !ok {
			return nil, errors.Newf(
				"source record from %q has no column %q", e.SrcTable, e.SrcCol)
		}
		out[e.DstCol] = v
	}
	if withPairID {
		id1, ok1 := r1.ID()
		id2, ok2 := r2.ID()
		if !ok1 || !ok2 {
			return nil, errors.Newf("with_pair_id requires both sides to carry %s", recql.IDColumn)
		}
		col1, col2 := ProvenanceColumns(t1, t2)
		out[col1] = id1
		out[col2] = id2
		if compositeID {
			out[recql.IDColumn] = recql.StringValue(id1.Canonical() + "|" + id2.Canonical())
		}
	}
	return out, nil
}

// ProvenanceColumns returns the two sides' provenance column names for a
// join of t1 against t2. When t1 and t2 are the same table (a
// self-join), the two sides are tagged by distinct occurrence (0 and 1)
// so they never collide under the same map key; otherwise both keep the
// plain per-table name. Callers that build a pair table's own column
// list must use this, not recql.PairIDColumn directly, so the names they
// hash/intersect on match what project() actually wrote.
func ProvenanceColumns(t1, t2 string) (string, string) {
	if t1 == t2 {
		return recql.PairIDColumn(t1, 0), recql.PairIDColumn(t2, 1)
	}
	return recql.PairIDColumn(t1, 0), recql.PairIDColumn(t2, 0)
}
