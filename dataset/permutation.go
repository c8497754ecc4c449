package dataset

import (
	"github.com/dropbox/godropbox/math2/rand2"

	"github.com/brodenix/recql"
)

// RandomPermutation returns a uniformly random permutation of 0..n-1 via
// a Fisher-Yates shuffle, for the `order` driver.
func RandomPermutation(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rand2.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// OrderEdges builds the "a(c1, c2)" edge table the order driver's
// recursive query (queryOrdered) runs over: one (perm[i], perm[j]) row
// for every index pair i < j whose values are already increasing. "<"
// is transitive, so the table is its own transitive closure and the
// recursive pass of a reachability query over it is expected to add
// nothing — while still exercising the fixpoint driver and the
// hash/block join paths against a denser table than the handwritten
// test fixtures.
func OrderEdges(perm []int) *Table {
	var recs []recql.Record
	for i := 0; i < len(perm); i++ {
		for j := i + 1; j < len(perm); j++ {
			if perm[i] < perm[j] {
				recs = append(recs, recql.Record{
					"c1": recql.IntValue(int64(perm[i])),
					"c2": recql.IntValue(int64(perm[j])),
				})
			}
		}
	}
	return &Table{Columns: []string{"c1", "c2"}, Records: recs}
}

// CountIncreasingPairs returns the number of index pairs (i, j) with
// i < j and perm[i] < perm[j], used to sanity-check the order
// benchmark's recursive-query result size by a method that doesn't share
// any code with the evaluator.
func CountIncreasingPairs(perm []int) int {
	count := 0
	for i := 0; i < len(perm); i++ {
		for j := i + 1; j < len(perm); j++ {
			if perm[i] < perm[j] {
				count++
			}
		}
	}
	return count
}
