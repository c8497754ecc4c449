// Package eval implements the optimized recursive evaluator: the term
// executor that classifies predicates, builds per-table simplification
// tables, builds per-pair composite join tables, assembles a join-tree
// forest, cross-products the remainder, and drives the whole thing in a
// semi-naive fixpoint loop.
package eval

import (
	"github.com/dropbox/godropbox/errors"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/query"
)

// ConstructFilter builds a row-local predicate from the subset of ops
// whose left-hand side names tbl. A right-hand column reference is
// resolved against the record under test when it names tbl itself, or
// against ctx (a fixed context record from another table) otherwise. An
// operand naming neither tbl nor a column present in ctx is a fatal
// construction error. With zero applicable predicates the result always
// accepts.
func ConstructFilter(ops []query.Operation, tbl string, ctx recql.Record) (recql.Predicate, error) {
	var applicable []query.Operation
	for _, op := range ops {
		if op.LHS.Table != tbl {
			continue
		}
		if op.RHS.IsColumn() {
			rc := op.RHS.Column()
			if rc.Table != tbl && ctx == nil {
				return nil, errors.Newf(
					"filter on %q references column %q with no context record supplied", tbl, rc)
			}
			if _, ok := ctx[rc.Col]; rc.Table != tbl && !ok {
				return nil, errors.Newf(
					"filter on %q references column %q missing from the context record", tbl, rc)
			}
		}
		applicable = append(applicable, op)
	}
	return func(rec recql.Record) bool {
		for _, op := range applicable {
			lv, ok := rec[op.LHS.Col]
			if !ok {
				return false
			}
			var rv recql.Value
			if op.RHS.IsColumn() {
				rc := op.RHS.Column()
				var src recql.Record
				if rc.Table == tbl {
					src = rec
				} else {
					src = ctx
				}
				v, ok := src[rc.Col]
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
	}, nil
}
