package eval

import (
	"github.com/dropbox/godropbox/errors"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/join"
	"github.com/brodenix/recql/query"
	"github.com/brodenix/recql/table"
)

// crossProduct combines the independent collection `items` — every
// member already renamed to withDecl's column names, per
// projectStandalone / buildPairs — into one content-addressed table. A
// single item is copied through a fresh dedup pass; more than one is
// folded pairwise left-to-right via block_join, re-addressing `_id`
// after each step. Every item, and every intermediate fold, is ephemeral
// and is dropped once consumed.
func crossProduct(eng *table.Engine, withDecl query.WithDecl, items []string, blockSize int) (string, error) {
	if len(items) == 0 {
		return "", errors.Newf("cross product has no tables to combine")
	}
	if len(items) == 1 {
		final, err := dedupeIntoFresh(eng, withDecl, items[0])
		if err != nil {
			return "", err
		}
		if err := eng.Drop(items[0]); err != nil {
			return "", err
		}
		return final, nil
	}

	left := items[0]
	for i := 1; i < len(items); i++ {
		right := items[i]
		newLeft, err := combinePair(eng, left, right, blockSize)
		if err != nil {
			return "", err
		}
		if err := eng.Drop(left); err != nil {
			return "", err
		}
		if err := eng.Drop(right); err != nil {
			return "", err
		}
		left = newLeft
	}
	return left, nil
}

func dedupeIntoFresh(eng *table.Engine, withDecl query.WithDecl, src string) (string, error) {
	recs, err := drain(eng.GetAllRecords(src))
	if err != nil {
		return "", err
	}
	out := make([]recql.Record, 0, len(recs))
	for _, r := range recs {
		clean := r.WithoutSyntheticColumns()
		clean[recql.IDColumn] = recql.StringValue(recql.ContentAddress(r))
		out = append(out, clean)
	}
	fresh := table.RandomTableName("final")
	if err := eng.AddTable(fresh, append([]string{}, withDecl.Cols...)); err != nil {
		return "", err
	}
	if _, err := eng.InsertUniqueRecordsByID(fresh, out); err != nil {
		return "", err
	}
	return fresh, nil
}

func combinePair(eng *table.Engine, left, right string, blockSize int) (string, error) {
	leftCols, err := eng.GetTableKeys(left)
	if err != nil {
		return "", err
	}
	rightCols, err := eng.GetTableKeys(right)
	if err != nil {
		return "", err
	}

	var proj join.Projection
	var cols []string
	for _, c := range leftCols {
		if recql.IsSyntheticColumn(c) {
			continue
		}
		proj = append(proj, join.Entry{DstCol: c, SrcTable: left, SrcCol: c})
		cols = append(cols, c)
	}
	for _, c := range rightCols {
		if recql.IsSyntheticColumn(c) {
			continue
		}
		proj = append(proj, join.Entry{DstCol: c, SrcTable: right, SrcCol: c})
		cols = append(cols, c)
	}

	it, err := join.BlockJoin(eng, left, right, proj, false, blockSize)
	if err != nil {
		return "", err
	}
	recs, err := drain(it, nil)
	if err != nil {
		return "", err
	}
	out := make([]recql.Record, 0, len(recs))
	for _, r := range recs {
		r[recql.IDColumn] = recql.StringValue(recql.ContentAddress(r))
		out = append(out, r)
	}

	newName := table.RandomTableName("cross")
	if err := eng.AddTable(newName, append([]string{}, cols...)); err != nil {
		return "", err
	}
	if _, err := eng.InsertUniqueRecordsByID(newName, out); err != nil {
		return "", err
	}
	return newName, nil
}
