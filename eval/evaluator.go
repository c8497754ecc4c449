package eval

import (
	"github.com/brodenix/recql"
	"github.com/brodenix/recql/query"
	"github.com/brodenix/recql/table"
)

// Evaluator drives the optimized recursive strategy over an Engine.
type Evaluator struct {
	eng *table.Engine
}

// New wraps an engine for query execution.
func New(eng *table.Engine) *Evaluator {
	return &Evaluator{eng: eng}
}

// Run executes q to completion: runs the non-recursive term, then the
// recursive term to a semi-naive fixpoint, drops the working table, and
// copies the accumulated result into q.ResultTableName.
//
// The WITH-declared name is used literally as the working table, since
// the recursive term's FROM clause references it to read the previous
// round's delta (semi-naive evaluation). A second, internally-named
// result table accumulates the full set across rounds — the final
// "SELECT * INTO <dest> FROM <name>" is read against this accumulator,
// since by the time the fixpoint terminates the working table holds only
// the final (empty) round's delta, not the full relation.
func (e *Evaluator) Run(q query.Query) (string, error) {
	w := q.WithDecl.Name
	r := table.RandomTableName("result")
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

	recs, err := drain(e.eng.GetAllRecords(r))
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

// executeTerm runs one term to completion and returns the number of
// rows the pass added to r.
func (e *Evaluator) executeTerm(term query.Term, withDecl query.WithDecl, w, r string) (int, error) {
	if len(term.Cols) == 1 && term.Cols[0].All {
		return e.executeSelectStar(term, w, r)
	}
	return e.executeJoinTerm(term, withDecl, w, r)
}

// executeSelectStar handles the "SELECT * FROM t" term shape: a
// single-table scan with a row-local filter and content-addressed
// identity reassignment.
func (e *Evaluator) executeSelectStar(term query.Term, w, r string) (int, error) {
	t := term.Tables[0]
	pred, err := ConstructFilter(term.Ops, t, nil)
	if err != nil {
		return 0, err
	}
	recs, err := drain(e.eng.FilterRecords(t, pred))
	if err != nil {
		return 0, err
	}

	accepted := make([]recql.Record, 0, len(recs))
	for _, rec := range recs {
		clean := rec.WithoutSyntheticColumns()
		clean[recql.IDColumn] = recql.StringValue(recql.ContentAddress(rec))
		accepted = append(accepted, clean)
	}

	if err := e.eng.ClearTable(w); err != nil {
		return 0, err
	}
	before, err := e.eng.GetNumberOfEntries(r)
	if err != nil {
		return 0, err
	}
	if _, err := e.eng.InsertUniqueRecordsByID(w, accepted); err != nil {
		return 0, err
	}
	if _, err := e.eng.InsertUniqueRecordsByID(r, accepted); err != nil {
		return 0, err
	}
	after, err := e.eng.GetNumberOfEntries(r)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

// executeJoinTerm handles every multi-table term: predicate
// classification, per-table simplification, per-pair composite join,
// join-tree forest resolution, independent cross-product, and emission
// into w/r.
func (e *Evaluator) executeJoinTerm(term query.Term, withDecl query.WithDecl, w, r string) (int, error) {
	c := classify(term)

	nameMap, err := simplify(e.eng, term, c.simple)
	if err != nil {
		return 0, err
	}

	pairs, err := buildPairs(e.eng, term, withDecl, nameMap, c.composite)
	if err != nil {
		return 0, err
	}

	inTree := make(map[string]bool, len(pairs)*2)
	for _, p := range pairs {
		inTree[p.tables[0]] = true
		inTree[p.tables[1]] = true
	}
	// The per-table simplification aliases of tables absorbed into a
	// composite pair were only needed as buildPairs' join inputs; drop
	// them now rather than leaking a temp per fixpoint round.
	for t := range inTree {
		if nameMap[t] != t {
			if err := e.eng.Drop(nameMap[t]); err != nil {
				return 0, err
			}
		}
	}

	roots, children := buildForest(pairs)
	if err := resolveTree(e.eng, nameMap, pairs, roots, children); err != nil {
		return 0, err
	}

	var items []string
	for _, root := range roots {
		items = append(items, pairs[root].name)
	}
	for _, t := range term.Tables {
		if inTree[t] {
			continue
		}
		proj, err := projectStandalone(e.eng, term, withDecl, nameMap[t], t)
		if err != nil {
			return 0, err
		}
		if nameMap[t] != t {
			if err := e.eng.Drop(nameMap[t]); err != nil {
				return 0, err
			}
		}
		items = append(items, proj)
	}

	finalTemp, err := crossProduct(e.eng, withDecl, items, e.eng.Options().BlockJoinSize)
	if err != nil {
		return 0, err
	}

	recs, err := drain(e.eng.GetAllRecords(finalTemp))
	if err != nil {
		return 0, err
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
	if err := e.eng.Drop(finalTemp); err != nil {
		return 0, err
	}
	return after - before, nil
}
