package eval

import (
	"github.com/brodenix/recql"
	"github.com/brodenix/recql/join"
	"github.com/brodenix/recql/query"
	"github.com/brodenix/recql/table"
)

// pairNode tracks one composite pair's working table through join-tree
// assembly: its two original source tables, the provenance column each
// side's id is stored under (distinct even when both tables are the
// same, i.e. a self-join pair), and the live table currently holding its
// joined rows (initially the pair table built here; replaced in place as
// the tree fold absorbs children into it).
type pairNode struct {
	tables [2]string
	provA  string
	provB  string
	name   string
}

// provFor returns the provenance column node carries for source table t.
// Ambiguous only when t equals both of node.tables (a self-join pair),
// in which case provA (occurrence 0) wins; callers needing the other
// occurrence must compare against provB directly.
func (node *pairNode) provFor(t string) string {
	if t == node.tables[1] && t != node.tables[0] {
		return node.provB
	}
	return node.provA
}

// buildPairs builds, for each unordered pair with composite predicates,
// one pair table: it hash-joins the (possibly simplified) sides on every
// predicate, applies the same-source self-join filter, intersects
// multi-predicate pairs by composite id, and hashes the result on both
// provenance columns.
func buildPairs(eng *table.Engine, term query.Term, withDecl query.WithDecl, nameMap map[string]string, composite map[string][]query.Operation) (map[string]*pairNode, error) {
	pairs := make(map[string]*pairNode, len(composite))
	for key, ops := range composite {
		tabs := pairTables(key)
		// Every predicate under this key shares the same pair of source
		// tables, so the pair's two provenance columns are fixed for the
		// whole key — computed once via join.ProvenanceColumns so they
		// always match what hash_join's own projection actually writes,
		// rather than re-derived ad hoc per predicate. For tabs[0] ==
		// tabs[1] (a self-join pair) this yields two distinct
		// occurrence-tagged columns instead of one collided name.
		provA, provB := join.ProvenanceColumns(nameMap[tabs[0]], nameMap[tabs[1]])

		var temps []string
		for _, op := range ops {
			rc := op.RHS.Column()
			ltName, rtName := nameMap[op.LHS.Table], nameMap[rc.Table]
			tables := map[string]bool{tabs[0]: true, tabs[1]: true}
			proj := buildProjection(term, withDecl, nameMap, tables)
			cols := append([]string{provA, provB}, destColumns(term, withDecl, tables)...)

			it, err := join.HashJoin(eng, ltName, op.LHS.Col, rtName, rc.Col, proj, op.Op, true)
			if err != nil {
				return nil, err
			}
			recs, err := drain(it, nil)
			if err != nil {
				return nil, err
			}
			if op.LHS.Table == rc.Table {
				recs = selfJoinFilter(recs, provA, provB)
			}

			tmp := table.RandomTableName("pair")
			if err := eng.AddTable(tmp, cols); err != nil {
				return nil, err
			}
			if _, err := eng.InsertUniqueRecordsByID(tmp, recs); err != nil {
				return nil, err
			}
			temps = append(temps, tmp)
		}

		dest := table.RandomTableName("pair")
		cols := append([]string{provA, provB},
			destColumns(term, withDecl, map[string]bool{tabs[0]: true, tabs[1]: true})...)
		if err := eng.AddTable(dest, cols); err != nil {
			return nil, err
		}
		if err := intersectInto(eng, dest, temps); err != nil {
			return nil, err
		}
		for _, tmp := range temps {
			if err := eng.Drop(tmp); err != nil {
				return nil, err
			}
		}
		if err := eng.HashTable(dest, provA, true); err != nil {
			return nil, err
		}
		if err := eng.HashTable(dest, provB, true); err != nil {
			return nil, err
		}
		pairs[key] = &pairNode{tables: tabs, provA: provA, provB: provB, name: dest}
	}
	return pairs, nil
}

// selfJoinFilter drops rows where the two provenance columns agree —
// the degenerate pairing of a record with itself when a term joins one
// source table against itself.
func selfJoinFilter(recs []recql.Record, colA, colB string) []recql.Record {
	out := make([]recql.Record, 0, len(recs))
	for _, r := range recs {
		a, okA := r[colA]
		b, okB := r[colB]
		if okA && okB && a.Equal(b) {
			continue
		}
		out = append(out, r)
	}
	return out
}
