// Command benchmark drives the `benchmark --batchNumber N --queryNumber M`
// CLI surface: for each configured scale and run, it evaluates a
// built-in recursive query against a freshly generated synthetic graph
// with both the standard and optimized strategies, reports elapsed time,
// and streams live samples to the plot server.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/fatih/color"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/dataset"
	"github.com/brodenix/recql/eval"
	"github.com/brodenix/recql/parser"
	"github.com/brodenix/recql/plot"
	"github.com/brodenix/recql/query"
	"github.com/brodenix/recql/standard"
	"github.com/brodenix/recql/table"
)

// builtinQueries is the small fixed corpus --queryNumber selects from.
var builtinQueries = []string{
	// Transitive reachability over a directed edge table.
	`WITH RECURSIVE reach(c1, c2) AS (
		SELECT * FROM edges UNION
		SELECT edges.c1, reach.c2 FROM edges, reach WHERE reach.c1 = edges.c2
	) SELECT * INTO result FROM reach;`,
	// Reachability restricted to strictly increasing pairs.
	`WITH RECURSIVE reach(c1, c2) AS (
		SELECT * FROM edges UNION
		SELECT edges.c1, reach.c2 FROM edges, reach
		WHERE reach.c1 = edges.c2 AND reach.c2 > reach.c1 AND edges.c2 > edges.c1
	) SELECT * INTO result FROM reach;`,
}

func main() {
	var batchNumber, queryNumber int
	flag.IntVar(&batchNumber, "batchNumber", 0, "synthetic dataset batch to generate")
	flag.IntVar(&queryNumber, "queryNumber", 0, "built-in query to run (0..1)")
	flag.Parse()

	if queryNumber < 0 || queryNumber >= len(builtinQueries) {
		log.Fatalf("queryNumber %d out of range [0,%d)", queryNumber, len(builtinQueries))
	}
	qs, err := parser.Parse(builtinQueries[queryNumber])
	if err != nil {
		log.Fatal(err)
	}
	q := qs[0]

	srv := plot.NewServer()
	go func() {
		if err := srv.ListenAndServe("localhost:8991"); err != nil {
			log.Println("plot server stopped:", err)
		}
	}()
	color.Cyan("live plot at http://localhost:8991/plots/0/index.html")

	opts := recql.DefaultOptions()
	for _, scale := range opts.Scales {
		n := 10 + batchNumber*5 + scale/5
		for run := 0; run < opts.Runs; run++ {
			g := dataset.RandomGraph(n, 3)
			for _, strategy := range []string{"standard", "optimized"} {
				elapsed, err := runOnce(opts, g, q, strategy)
				if err != nil {
					log.Fatal(err)
				}
				if run == 0 {
					// First run of each scale warms caches and is discarded.
					continue
				}
				ms := float64(elapsed.Microseconds()) / 1000
				color.Green("scale=%-3d run=%d strategy=%-9s n=%-4d elapsed=%.3fms",
					scale, run, strategy, n, ms)
				srv.Push(plot.Sample{Scale: scale, Strategy: strategy, ElapsedMS: ms})
			}
		}
	}
	color.Yellow("benchmark complete")
}

// runOnce loads g into a fresh engine and runs q with the named
// strategy, returning the wall-clock time of the Run call alone; table
// setup and teardown are excluded so the measurement isolates
// evaluation cost.
func runOnce(opts recql.Options, g *dataset.Table, q query.Query, strategy string) (time.Duration, error) {
	eng := table.New(opts)
	if err := eng.AddTable("edges", g.Columns); err != nil {
		return 0, err
	}
	if err := eng.InsertRecords("edges", g.Records); err != nil {
		return 0, err
	}

	start := time.Now()
	var result string
	var err error
	switch strategy {
	case "standard":
		result, err = standard.New(eng).Run(q)
	default:
		result, err = eval.New(eng).Run(q)
	}
	elapsed := time.Since(start)
	if err != nil {
		return 0, err
	}
	if err := eng.Drop(result); err != nil {
		return 0, err
	}
	return elapsed, nil
}
