package eval

import (
	"github.com/brodenix/recql"
	"github.com/brodenix/recql/query"
	"github.com/brodenix/recql/table"
)

// simplify builds, for each table with simple predicates (column-vs-
// constant, or column-vs-column within that same table), one temp per
// predicate — via the hash index for a constant, via a filtered full scan
// for a same-table column — intersects the temps by _id when there's
// more than one, and records the survivors' table under a fresh name.
// Tables with no simple predicates map to themselves.
func simplify(eng *table.Engine, term query.Term, simple map[string][]query.Operation) (map[string]string, error) {
	nameMap := make(map[string]string, len(term.Tables))
	for t, ops := range simple {
		cols, err := eng.GetTableKeys(t)
		if err != nil {
			return nil, err
		}
		var temps []string
		for _, op := range ops {
			var recs []recql.Record
			var err error
			if op.RHS.IsColumn() {
				// Row-local column-vs-column predicate (same table on
				// both sides, per classify's reclassification): no hash
				// index applies, so full-scan with a row-local filter.
				pred, ferr := ConstructFilter([]query.Operation{op}, t, nil)
				if ferr != nil {
					return nil, ferr
				}
				recs, err = drain(eng.FilterRecords(t, pred))
			} else {
				v := op.RHS.Literal()
				if err := eng.HashTable(t, op.LHS.Col, false); err != nil {
					return nil, err
				}
				recs, err = drain(eng.GetRecsFromHash(t, op.LHS.Col, op.Op, v))
			}
			if err != nil {
				return nil, err
			}
			tmp := table.RandomTableName("simpl")
			if err := eng.AddTable(tmp, cols); err != nil {
				return nil, err
			}
			if _, err := eng.InsertUniqueRecordsByID(tmp, recs); err != nil {
				return nil, err
			}
			temps = append(temps, tmp)
		}

		dest := table.RandomTableName("simpl")
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
		nameMap[t] = dest
	}
	for _, t := range term.Tables {
		if _, ok := nameMap[t]; !ok {
			nameMap[t] = t
		}
	}
	return nameMap, nil
}

// intersectInto inserts, into dest, the records of temps[0] whose _id is
// present in every other temp (or the whole of temps[0] when there's
// only one temp). A zero-length temps list leaves dest empty.
func intersectInto(eng *table.Engine, dest string, temps []string) error {
	if len(temps) == 0 {
		return nil
	}
	base, err := drain(eng.GetAllRecords(temps[0]))
	if err != nil {
		return err
	}
	others := temps[1:]
	var survivors []recql.Record
	for _, rec := range base {
		id, ok := rec.ID()
		if !ok {
			continue
		}
		keep := true
		for _, other := range others {
			present, err := eng.HasValue(other, recql.IDColumn, id)
			if err != nil {
				return err
			}
			if !present {
				keep = false
				break
			}
		}
		if keep {
			survivors = append(survivors, rec)
		}
	}
	_, err = eng.InsertUniqueRecordsByID(dest, survivors)
	return err
}
