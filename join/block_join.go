package join

import (
	"io"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/table"
)

// blockJoin reads t1 in contiguous blocks of blockSize records and, for
// each outer record of a block, opens a fresh scan of t2 and pairs that
// outer record with every inner record, emitting rows grouped by outer
// (block, within-block) order and then by inner scan order — a lazy
// nested-loop join with no hash/sort requirement on either side. The
// inner table is rescanned once per outer record, not once per block.
type blockJoin struct {
	eng        *table.Engine
	t1         string
	t2         string
	proj       Projection
	withPairID bool
	blockSize  int

	outer     recql.Iterator
	outerDone bool

	block    []recql.Record
	blockIdx int

	inner     recql.Iterator
	outerCurr recql.Record
}

// BlockJoin returns a lazy block-nested-loop join of t1 against t2.
// blockSize <= 0 is treated as 1.
func BlockJoin(eng *table.Engine, t1, t2 string, proj Projection, withPairID bool, blockSize int) (recql.Iterator, error) {
	if blockSize <= 0 {
		blockSize = 1
	}
	outer, err := eng.GetAllRecords(t1)
	if err != nil {
		return nil, err
	}
	return &blockJoin{
		eng: eng, t1: t1, t2: t2, proj: proj, withPairID: withPairID,
		blockSize: blockSize, outer: outer,
	}, nil
}

func (b *blockJoin) fillBlock() error {
	b.block = b.block[:0]
	for len(b.block) < b.blockSize {
		rec, err := b.outer.Next()
		if err == io.EOF {
			b.outerDone = true
			break
		} else if err != nil {
			return err
		}
		b.block = append(b.block, rec)
	}
	b.blockIdx = 0
	return nil
}

func (b *blockJoin) Next() (recql.Record, error) {
	for {
		if b.inner == nil {
			if b.blockIdx >= len(b.block) {
				if b.outerDone {
					return nil, io.EOF
				}
				if err := b.fillBlock(); err != nil {
					return nil, err
				}
				if len(b.block) == 0 {
					return nil, io.EOF
				}
			}
			b.outerCurr = b.block[b.blockIdx]
			b.blockIdx++
			inner, err := b.eng.GetAllRecords(b.t2)
			if err != nil {
				return nil, err
			}
			b.inner = inner
		}

		rec, err := b.inner.Next()
		if err == io.EOF {
			b.inner.Close()
			b.inner = nil
			continue
		} else if err != nil {
			return nil, err
		}
		return project(b.t1, b.t2, b.proj, b.outerCurr, rec, b.withPairID, false)
	}
}

func (b *blockJoin) Close() error {
	if b.inner != nil {
		b.inner.Close()
	}
	return b.outer.Close()
}
