// Package standard implements the naive comparison strategy: the same
// term contract and semi-naive fixpoint driver as eval.Evaluator, but
// without any of the optimized strategy's simplification tables,
// composite joins, or join-tree reuse — every multi-table term is
// evaluated by a single left-to-right chain of block joins followed by
// one full-record predicate scan. It exists only so the benchmark driver
// has something to compare the optimized evaluator against.
package standard

import (
	"io"

	"github.com/dropbox/godropbox/errors"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/join"
	"github.com/brodenix/recql/query"
	"github.com/brodenix/recql/table"
)

// Evaluator drives the naive strategy over an Engine.
type Evaluator struct {
	eng *table.Engine
}

// New wraps an engine for query execution.
func New(eng *table.Engine) *Evaluator {
	return &Evaluator{eng: eng}
}

// Run executes q to completion, identically in contract to
// eval.Evaluator.Run: it runs the non-recursive term, then the
// recursive term to a semi-naive fixpoint, drops the working table, and
// copies the accumulated result into q.ResultTableName.
func (e *Evaluator) Run(q query.Query) (string, error) {
	w := q.WithDecl.Name
	r := table.RandomTableName("std_result")
	if err := e.eng.AddTable(w, q.WithDecl.Cols); err != nil {
		return "", err
	}
	if err := e.eng.AddTable(r, q.WithDecl.Cols); err != nil {
		return "", err
	}

	if _, err := e.executeTerm(q.NonRecTerm, q.WithDecl, w, r); err != nil {
		return "", err
	}
	for {
		delta, err := e.executeTerm(q.RecTerm, q.WithDecl, w, r)
		if err != nil {
			return "", err
		}
		if delta == 0 {
			break
		}
	}
	if err := e.eng.Drop(w); err != nil {
		return "", err
	}

	recs, err := drainAll(e.eng, r)
	if err != nil {
		return "", err
	}
	if err := e.eng.AddTable(q.ResultTableName, q.WithDecl.Cols); err != nil {
		return "", err
	}
	if err := e.eng.InsertRecords(q.ResultTableName, recs); err != nil {
		return "", err
	}
	if err := e.eng.Drop(r); err != nil {
		return "", err
	}
	return q.ResultTableName, nil
}

func (e *Evaluator) executeTerm(term query.Term, withDecl query.WithDecl, w, r string) (int, error) {
	var recs []recql.Record
	if len(term.Cols) == 1 && term.Cols[0].All {
		filtered, err := e.selectStar(term)
		if err != nil {
			return 0, err
		}
		recs = filtered
	} else {
		joined, err := e.selectJoined(term, withDecl)
		if err != nil {
			return 0, err
		}
		recs = joined
	}

	if err := e.eng.ClearTable(w); err != nil {
		return 0, err
	}
	before, err := e.eng.GetNumberOfEntries(r)
	if err != nil {
		return 0, err
	}
	if _, err := e.eng.InsertUniqueRecordsByID(w, recs); err != nil {
		return 0, err
	}
	if _, err := e.eng.InsertUniqueRecordsByID(r, recs); err != nil {
		return 0, err
	}
	after, err := e.eng.GetNumberOfEntries(r)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

// selectStar handles the "SELECT * FROM t" term shape exactly as the
// optimized evaluator does: scan the sole source table, keep rows a
// row-local predicate accepts, and reassign a content-addressed _id.
func (e *Evaluator) selectStar(term query.Term) ([]recql.Record, error) {
	t := term.Tables[0]
	recs, err := drainAll(e.eng, t)
	if err != nil {
		return nil, err
	}
	var out []recql.Record
	for _, rec := range recs {
		if !evalRowLocal(term.Ops, t, rec) {
			continue
		}
		clean := rec.WithoutSyntheticColumns()
		clean[recql.IDColumn] = recql.StringValue(recql.ContentAddress(rec))
		out = append(out, clean)
	}
	return out, nil
}

// selectJoined joins every source table left-to-right with block_join,
// evaluates the full predicate against the combined namespaced record,
// and projects survivors down to the WITH-declared column order.
// term.Cols is required (by the parser) to be exactly as long as
// withDecl.Cols, so term.Cols[i] maps positionally to withDecl.Cols[i].
func (e *Evaluator) selectJoined(term query.Term, withDecl query.WithDecl) ([]recql.Record, error) {
	combined, err := e.chainJoin(term.Tables)
	if err != nil {
		return nil, err
	}
	defer e.eng.Drop(combined)

	recs, err := drainAll(e.eng, combined)
	if err != nil {
		return nil, err
	}

	var out []recql.Record
	for _, rec := range recs {
		if !evalNamespaced(term.Ops, rec) {
			continue
		}
		row := make(recql.Record, len(term.Cols)+1)
		for i, col := range term.Cols {
			v, ok := rec[namespaced(col.Table, col.Col)]
			if !ok {
				return nil, errors.Newf("joined row has no column %s.%s", col.Table, col.Col)
			}
			row[withDecl.Cols[i]] = v
		}
		row[recql.IDColumn] = recql.StringValue(recql.ContentAddress(row))
		out = append(out, row)
	}
	return out, nil
}

func namespaced(tableName, col string) string {
	return tableName + "$" + col
}

// chainJoin folds tables left-to-right into one namespaced table whose
// columns are "<table>$<col>" for every non-synthetic column of every
// source, via repeated block_join (never hash_join — the whole point
// of this package is to not build or reuse any index).
func (e *Evaluator) chainJoin(tables []string) (string, error) {
	left, err := e.namespaceTable(tables[0])
	if err != nil {
		return "", err
	}
	blockSize := e.eng.Options().BlockJoinSize

	for _, t := range tables[1:] {
		leftCols, err := e.eng.GetTableKeys(left)
		if err != nil {
			return "", err
		}
		rightCols, err := e.eng.GetTableKeys(t)
		if err != nil {
			return "", err
		}

		var proj join.Projection
		for _, c := range leftCols {
			proj = append(proj, join.Entry{DstCol: c, SrcTable: left, SrcCol: c})
		}
		var newRightCols []string
		for _, c := range rightCols {
			if recql.IsSyntheticColumn(c) {
				continue
			}
			dst := namespaced(t, c)
			proj = append(proj, join.Entry{DstCol: dst, SrcTable: t, SrcCol: c})
			newRightCols = append(newRightCols, dst)
		}

		it, err := join.BlockJoin(e.eng, left, t, proj, false, blockSize)
		if err != nil {
			return "", err
		}
		recs, err := drainIter(it)
		if err != nil {
			return "", err
		}

		newName := table.RandomTableName("std_chain")
		if err := e.eng.AddTable(newName, append(append([]string{}, leftCols...), newRightCols...)); err != nil {
			return "", err
		}
		if err := e.eng.InsertRecords(newName, recs); err != nil {
			return "", err
		}
		if err := e.eng.Drop(left); err != nil {
			return "", err
		}
		left = newName
	}
	return left, nil
}

func (e *Evaluator) namespaceTable(src string) (string, error) {
	cols, err := e.eng.GetTableKeys(src)
	if err != nil {
		return "", err
	}
	recs, err := drainAll(e.eng, src)
	if err != nil {
		return "", err
	}

	var nsCols []string
	for _, c := range cols {
		if recql.IsSyntheticColumn(c) {
			continue
		}
		nsCols = append(nsCols, namespaced(src, c))
	}

	out := make([]recql.Record, 0, len(recs))
	for _, r := range recs {
		row := make(recql.Record, len(nsCols))
		for _, c := range cols {
			if recql.IsSyntheticColumn(c) {
				continue
			}
			row[namespaced(src, c)] = r[c]
		}
		out = append(out, row)
	}

	name := table.RandomTableName("std_ns")
	if err := e.eng.AddTable(name, nsCols); err != nil {
		return "", err
	}
	if err := e.eng.InsertRecords(name, out); err != nil {
		return "", err
	}
	return name, nil
}

// evalRowLocal evaluates ops against a single un-namespaced record from
// table t, resolving any column-vs-column predicate against the same
// record (the only shape a single-table term's predicates can take).
func evalRowLocal(ops []query.Operation, t string, rec recql.Record) bool {
	for _, op := range ops {
		lv, ok := rec[op.LHS.Col]
		if !ok {
			return false
		}
		var rv recql.Value
		if op.RHS.IsColumn() {
			v, ok := rec[op.RHS.Column().Col]
			if !ok {
				return false
			}
			rv = v
		} else {
			rv = op.RHS.Literal()
		}
		if !recql.EvalOp(op.Op, lv, rv) {
			return false
		}
	}
	return true
}

// evalNamespaced evaluates ops against a combined, namespaced record
// produced by chainJoin.
func evalNamespaced(ops []query.Operation, rec recql.Record) bool {
	for _, op := range ops {
		lv, ok := rec[namespaced(op.LHS.Table, op.LHS.Col)]
		if !ok {
			return false
		}
		var rv recql.Value
		if op.RHS.IsColumn() {
			rc := op.RHS.Column()
			v, ok := rec[namespaced(rc.Table, rc.Col)]
			if !ok {
				return false
			}
			rv = v
		} else {
			rv = op.RHS.Literal()
		}
		if !recql.EvalOp(op.Op, lv, rv) {
			return false
		}
	}
	return true
}

func drainAll(eng *table.Engine, t string) ([]recql.Record, error) {
	it, err := eng.GetAllRecords(t)
	if err != nil {
		return nil, err
	}
	return drainIter(it)
}

func drainIter(it recql.Iterator) ([]recql.Record, error) {
	defer it.Close()
	var out []recql.Record
	for {
		rec, err := it.Next()
		if err == io.EOF {
			return out, nil
		} else if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}
