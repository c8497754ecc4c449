package dataset

import (
	"github.com/dropbox/godropbox/math2/rand2"

	"github.com/brodenix/recql"
)

// RandomGraph builds a random directed graph on n nodes (0..n-1) as a
// "c1, c2" edge table, for the `graph --n N` driver, using the same
// generic column naming CSV-loaded tables get. Each node
// gets a handful of outgoing edges to distinct, non-self targets, so
// the table is dense enough to make a recursive reachability query
// exercise more than one fixpoint round.
func RandomGraph(n, edgesPerNode int) *Table {
	recs := make([]recql.Record, 0, n*edgesPerNode)
	for from := 0; from < n; from++ {
		seen := map[int]bool{from: true}
		for k := 0; k < edgesPerNode && len(seen) < n; k++ {
			to := rand2.Intn(n)
			if seen[to] {
				continue
			}
			seen[to] = true
			recs = append(recs, recql.Record{
				"c1": recql.IntValue(int64(from)),
				"c2": recql.IntValue(int64(to)),
			})
		}
	}
	return &Table{Columns: []string{"c1", "c2"}, Records: recs}
}
