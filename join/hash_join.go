package join

import (
	"io"

	"github.com/dropbox/godropbox/errors"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/table"
)

// HashJoin hashes t1 on c1 and t2 on c2 (building or extending each index
// as needed), then for every distinct left value v1 enumerates the
// matching right values v2 under op and emits the cross product of their
// locator groups. Output is grouped by the left side's ascending hash
// iteration order, then by the right side's.
//
// op == OpEq pairs v1 with v2 == v1. op == OpGt pairs v1 with every v2 <
// v1, found as the ascending prefix of t2's distinct values that ends
// before v1 — equivalent to, but cheaper than, testing every v2 in turn.
func HashJoin(eng *table.Engine, t1, c1, t2, c2 string, proj Projection, op recql.Op, withPairID bool) (recql.Iterator, error) {
	if err := eng.HashTable(t1, c1, false); err != nil {
		return nil, err
	}
	if err := eng.HashTable(t2, c2, false); err != nil {
		return nil, err
	}

	left, err := eng.DistinctValues(t1, c1)
	if err != nil {
		return nil, err
	}
	right, err := eng.DistinctValues(t2, c2)
	if err != nil {
		return nil, err
	}

	var pairs []valuePair
	switch op {
	case recql.OpEq:
		ri := 0
		for _, v1 := range left {
			for ri < len(right) && right[ri].Less(v1) {
				ri++
			}
			if ri < len(right) && right[ri].Equal(v1) {
				pairs = append(pairs, valuePair{v1, right[ri]})
			}
		}
	case recql.OpGt:
		ri := 0
		for _, v1 := range left {
			for ri < len(right) && right[ri].Less(v1) {
				ri++
			}
			for k := 0; k < ri; k++ {
				pairs = append(pairs, valuePair{v1, right[k]})
			}
		}
	default:
		return nil, errors.Newf("unsupported hash_join operator %v", op)
	}

	return &hashJoinIter{
		eng: eng, t1: t1, c1: c1, t2: t2, c2: c2,
		proj: proj, withPairID: withPairID, pairs: pairs,
	}, nil
}

type valuePair struct {
	v1, v2 recql.Value
}

// hashJoinIter walks the precomputed (v1, v2) groups in order; within each
// group it materializes both locator lists (typically small, since
// they're a single equality bucket) and emits their full cross product
// before advancing to the next group.
type hashJoinIter struct {
	eng        *table.Engine
	t1, c1     string
	t2, c2     string
	proj       Projection
	withPairID bool

	pairs []valuePair
	pairI int

	leftRecs  []recql.Record
	rightRecs []recql.Record
	li, ri    int
}

func readAllRecords(it recql.Iterator) ([]recql.Record, error) {
	var out []recql.Record
	for {
		rec, err := it.Next()
		if err == io.EOF {
			it.Close()
			return out, nil
		} else if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func (h *hashJoinIter) loadGroup() error {
	for h.pairI < len(h.pairs) {
		p := h.pairs[h.pairI]
		h.pairI++

		leftIt, err := h.eng.GetRecsFromHash(h.t1, h.c1, recql.OpEq, p.v1)
		if err != nil {
			return err
		}
		leftRecs, err := readAllRecords(leftIt)
		if err != nil {
			return err
		}
		rightIt, err := h.eng.GetRecsFromHash(h.t2, h.c2, recql.OpEq, p.v2)
		if err != nil {
			return err
		}
		rightRecs, err := readAllRecords(rightIt)
		if err != nil {
			return err
		}
		if len(leftRecs) == 0 || len(rightRecs) == 0 {
			continue
		}
		h.leftRecs, h.rightRecs = leftRecs, rightRecs
		h.li, h.ri = 0, 0
		return nil
	}
	return io.EOF
}

func (h *hashJoinIter) Next() (recql.Record, error) {
	for {
		if h.li >= len(h.leftRecs) {
			if err := h.loadGroup(); err != nil {
				return nil, err
			}
		}
		l, r := h.leftRecs[h.li], h.rightRecs[h.ri]
		h.ri++
		if h.ri >= len(h.rightRecs) {
			h.ri = 0
			h.li++
		}
		return project(h.t1, h.t2, h.proj, l, r, h.withPairID, h.withPairID)
	}
}

func (h *hashJoinIter) Close() error { return nil }
