package eval

import (
	"encoding/json"
	"sort"

	"github.com/brodenix/recql/query"
)

// classified is the partition of term.Ops into single-table predicates,
// cross-table predicates keyed by canonical pair, and the tables touched
// by neither.
type classified struct {
	simple    map[string][]query.Operation
	composite map[string][]query.Operation
	noOps     []string
}

// pairKey canonicalizes an unordered table pair as the JSON of its
// lexicographically sorted 2-tuple.
func pairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	data, _ := json.Marshal(pair)
	return string(data)
}

// pairTables recovers the two original table names from a pairKey.
func pairTables(key string) [2]string {
	var pair [2]string
	_ = json.Unmarshal([]byte(key), &pair)
	return pair
}

func classify(term query.Term) classified {
	c := classified{
		simple:    make(map[string][]query.Operation),
		composite: make(map[string][]query.Operation),
	}
	touched := make(map[string]bool)
	for _, op := range term.Ops {
		if !op.RHS.IsColumn() {
			c.simple[op.LHS.Table] = append(c.simple[op.LHS.Table], op)
			touched[op.LHS.Table] = true
			continue
		}
		rc := op.RHS.Column()
		touched[op.LHS.Table] = true
		touched[rc.Table] = true
		// A column-vs-column predicate naming the same table on both
		// sides has no way to denote two distinct occurrences of that
		// table (the grammar has no aliasing), so it is read as a
		// row-local constraint on that table's own columns rather than
		// a genuine self-join — matching the standard evaluator's
		// treatment of the identical predicate shape.
		if rc.Table == op.LHS.Table {
			c.simple[op.LHS.Table] = append(c.simple[op.LHS.Table], op)
			continue
		}
		key := pairKey(op.LHS.Table, rc.Table)
		c.composite[key] = append(c.composite[key], op)
	}
	for _, t := range term.Tables {
		if !touched[t] {
			c.noOps = append(c.noOps, t)
		}
	}
	return c
}
