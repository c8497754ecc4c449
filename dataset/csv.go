// Package dataset implements the benchmark drivers' data sources: CSV
// loading, random graphs, and random permutations.
package dataset

import (
	"bufio"
	"encoding/json"
	"math"
	"os"
	"strings"

	"github.com/dropbox/godropbox/errors"

	"github.com/brodenix/recql"
)

// Table is a plain in-memory dataset: a column list plus the records
// loaded/generated for it, ready to be handed to table.Engine.AddTable
// and InsertRecords by a CLI driver.
type Table struct {
	Columns []string
	Records []recql.Record
}

// LoadCSV reads a UTF-8, LF- or CRLF-terminated, comma-separated file
// with no quoting and no header. Columns default to c1, c2, …. Each
// row's _id is the JSON of the row's raw fields as they appeared before
// the scale cut, and a scalePercent of s keeps only the first
// round(n*s/100) rows.
//
// Quoting is deliberately not interpreted (the format has none), so a
// manual split keeps a literal quote character in a field from being
// swallowed the way encoding/csv would.
func LoadCSV(path string, scalePercent int) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		rows = append(rows, strings.Split(line, ","))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	width := len(rows[0])
	cols := make([]string, width)
	for i := range cols {
		cols[i] = columnName(i)
	}

	keep := int(math.Round(float64(len(rows)*scalePercent) / 100))
	if keep > len(rows) {
		keep = len(rows)
	}
	if keep < 0 {
		keep = 0
	}

	recs := make([]recql.Record, 0, keep)
	for i := 0; i < keep; i++ {
		row := rows[i]
		if len(row) != width {
			return nil, errors.Newf("csv row %d has %d fields, want %d", i, len(row), width)
		}
		idJSON, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		rec := make(recql.Record, width+1)
		for j, field := range row {
			rec[cols[j]] = recql.ValueFromLiteral(field)
		}
		rec[recql.IDColumn] = recql.StringValue(string(idJSON))
		recs = append(recs, rec)
	}
	return &Table{Columns: cols, Records: recs}, nil
}

// columnName returns the i-th default CSV column name: c1, c2, ….
func columnName(i int) string {
	n := i + 1
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return "c" + string(digits)
}
