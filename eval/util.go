package eval

import (
	"io"

	"github.com/brodenix/recql"
)

// drain materializes a lazy iterator fully, closing it on both exit
// paths. Used throughout the evaluator wherever a step needs the whole
// set in memory to intersect, cross, or re-insert it.
func drain(it recql.Iterator, err error) ([]recql.Record, error) {
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []recql.Record
	for {
		rec, err := it.Next()
		if err == io.EOF {
			return out, nil
		} else if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}
