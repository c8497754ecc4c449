package table

import (
	"sort"

	"github.com/dropbox/godropbox/errors"
	"github.com/dropbox/godropbox/math2/rand2"

	"github.com/brodenix/recql"
	"github.com/brodenix/recql/buffer"
	"github.com/brodenix/recql/page"
)

// Engine is the process-wide catalog+buffer, re-architected (per
// DESIGN.md "Global state") as an explicit value threaded through the
// join engine and the recursive evaluator instead of package-level
// singletons.
type Engine struct {
	opts   recql.Options
	buf    *buffer.Buffer
	tables map[string]*Table

	nextPageID int64
}

// New creates an Engine from the given options.
func New(opts recql.Options) *Engine {
	return &Engine{
		opts:   opts,
		buf:    buffer.NewFromOptions(opts),
		tables: make(map[string]*Table),
	}
}

// Options returns the engine's configuration.
func (e *Engine) Options() recql.Options { return e.opts }

func (e *Engine) allocPageID() page.ID {
	id := page.ID(e.nextPageID)
	e.nextPageID++
	return id
}

func (e *Engine) lookup(name string) (*Table, error) {
	t, ok := e.tables[name]
	if !ok {
		return nil, errors.Newf("no such table %q", name)
	}
	return t, nil
}

// AddTable creates a new, empty table with one empty page. Fails if the
// name is already in use.
func (e *Engine) AddTable(name string, cols []string) error {
	if _, ok := e.tables[name]; ok {
		return errors.Newf("table %q already exists", name)
	}
	t := newTable(name, cols)
	pg := page.New(e.allocPageID(), e.opts.PageCapacity)
	t.addPage(pg)
	e.tables[name] = t
	return nil
}

// HasTable reports whether name is a live table.
func (e *Engine) HasTable(name string) bool {
	_, ok := e.tables[name]
	return ok
}

// GetTableKeys returns a defensive copy of t's declared column list.
func (e *Engine) GetTableKeys(name string) ([]string, error) {
	t, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	return t.Columns(), nil
}

// ClearTable clears every page of t in place, re-heapifies its free-space
// queue, and discards all of its hash indexes.
func (e *Engine) ClearTable(name string) error {
	t, err := e.lookup(name)
	if err != nil {
		return err
	}
	for _, pg := range t.pages {
		pg.Clear()
	}
	t.rebuildFreeHeap()
	t.indexes = make(map[string]*HashIndex)
	return nil
}

// Drop clears then removes all state for t.
func (e *Engine) Drop(name string) error {
	if _, ok := e.tables[name]; !ok {
		return errors.Newf("no such table %q", name)
	}
	delete(e.tables, name)
	return nil
}

// DropAllTables tears down every table; used for engine-wide teardown
// between logical queries.
func (e *Engine) DropAllTables() {
	e.tables = make(map[string]*Table)
}

// GetNumberOfEntries returns how many records t currently holds.
func (e *Engine) GetNumberOfEntries(name string) (int, error) {
	t, err := e.lookup(name)
	if err != nil {
		return 0, err
	}
	return t.numEntries(), nil
}

// randomAlphabet is used for opaque ephemeral identifiers (table names
// and record-id suffixes).
const randomAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomSuffix returns an opaque nanoid-style random string of length n.
func RandomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = randomAlphabet[rand2.Intn(len(randomAlphabet))]
	}
	return string(b)
}

// RandomTableName returns an opaque ephemeral table name; the recursive
// evaluator uses this for every temp/simplification/pair/tree table it
// allocates, matching every such allocation with a Drop on its success
// path. When a query aborts with an error, the evaluator returns at once
// and the ephemeral tables allocated so far stay in the engine.
func RandomTableName(prefix string) string {
	return prefix + "_" + RandomSuffix(12)
}

// sortedTableNames returns every live table name, sorted; used only for
// deterministic debugging/inspection, never by the evaluator itself.
func (e *Engine) sortedTableNames() []string {
	names := make([]string, 0, len(e.tables))
	for n := range e.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
