package recql

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// SyntheticPrefix marks columns that are injected bookkeeping rather than
// user data: "_id" is a record's own identity, "_id<table>" is a
// provenance marker attached by a join.
const SyntheticPrefix = "_id"

// IDColumn is the record-identity column.
const IDColumn = "_id"

// IsSyntheticColumn reports whether col is a synthetic (_id / _id<table>)
// column rather than user data.
func IsSyntheticColumn(col string) bool {
	return strings.HasPrefix(col, SyntheticPrefix)
}

// PairIDColumn returns the provenance column name used to carry a row's
// identity from source table t through a join, e.g. "_id<orders>".
// occurrence distinguishes the two sides of a join when both name the
// same source table (a self-join): occurrence 0 keeps the plain
// "_id<table>" form, any other occurrence gets a "#<occurrence>" suffix
// so the two sides never collide under the same map key.
func PairIDColumn(table string, occurrence int) string {
	if occurrence == 0 {
		return SyntheticPrefix + "<" + table + ">"
	}
	return SyntheticPrefix + "<" + table + ">#" + strconv.Itoa(occurrence)
}

// Record is an ordered-by-declaration mapping from column name to scalar.
// Values are looked up by name; column declaration order lives on the
// owning Table, not on the Record itself.
type Record map[string]Value

// Clone returns a shallow copy so that mutation of a yielded Record never
// affects the record held in storage.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the record's identity value and whether it has one.
func (r Record) ID() (Value, bool) {
	v, ok := r[IDColumn]
	return v, ok
}

// WithoutSyntheticColumns returns a copy of r with every "_id"-prefixed
// column removed; used to compute a content-addressed id.
func (r Record) WithoutSyntheticColumns() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if IsSyntheticColumn(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// canonicalValue is the JSON-friendly projection of a Value: a small
// {"k","i","s"} object carrying the kind tag next to the int64 (Int) or
// string (Str), so integer 3 and string "3" encode differently.
type canonicalValue struct {
	Kind int    `json:"k"`
	I    int64  `json:"i,omitempty"`
	S    string `json:"s,omitempty"`
}

// ContentAddress computes a record's stable structural identity: the
// JSON of its non-synthetic columns, sorted by column name so the
// encoding is deterministic. The evaluator assigns this as the _id of
// every derived row, giving set semantics over derived content.
func ContentAddress(r Record) string {
	data := r.WithoutSyntheticColumns()
	cols := make([]string, 0, len(data))
	for c := range data {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(c)
		buf.Write(keyJSON)
		buf.WriteByte(':')
		v := data[c]
		valJSON, _ := json.Marshal(canonicalValue{Kind: int(v.Kind), I: v.I, S: v.S})
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.String()
}
