package recql

import "strconv"

// Kind distinguishes the two scalar shapes a Value can hold.
type Kind uint8

const (
	// Int marks a Value holding an integer.
	Int Kind = iota
	// Str marks a Value holding a string.
	Str
)

// Value is a scalar that's either an integer or a string. Two Values
// compare equal under loose equality when their canonical string forms
// match, so IntValue(3) and StringValue("3") collide in a hash index.
type Value struct {
	Kind Kind
	I    int64
	S    string
}

// IntValue builds an integer-kinded Value.
func IntValue(i int64) Value {
	return Value{Kind: Int, I: i}
}

// StringValue builds a string-kinded Value.
func StringValue(s string) Value {
	return Value{Kind: Str, S: s}
}

// ValueFromLiteral parses a query-grammar literal, detecting integers by
// numeric parse and falling back to a string.
func ValueFromLiteral(lit string) Value {
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return IntValue(i)
	}
	return StringValue(lit)
}

// Canonical returns the normalized string key used for hash-index storage
// and loose-equality comparison.
func (v Value) Canonical() string {
	if v.Kind == Int {
		return strconv.FormatInt(v.I, 10)
	}
	return v.S
}

// Equal implements loose equality: numeric and string forms of the same
// value collide.
func (v Value) Equal(other Value) bool {
	return v.Canonical() == other.Canonical()
}

// Less orders two Values for the '>' comparator and for ascending
// hash-index iteration. Both-integer comparisons are numeric; anything
// else falls back to lexicographic comparison of the canonical form.
func (v Value) Less(other Value) bool {
	if v.Kind == Int && other.Kind == Int {
		return v.I < other.I
	}
	return v.Canonical() < other.Canonical()
}

func (v Value) String() string {
	return v.Canonical()
}

// Predicate is a host-supplied row filter used by filter_records.
type Predicate func(Record) bool

// Op is a comparison operator. The query grammar and this engine support
// only '=' and '>'.
type Op int

const (
	// OpEq is '='.
	OpEq Op = iota
	// OpGt is '>'.
	OpGt
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpGt:
		return ">"
	default:
		return "?"
	}
}

// EvalOp evaluates `lhs op rhs` under loose equality / scalar ordering.
func EvalOp(op Op, lhs, rhs Value) bool {
	switch op {
	case OpEq:
		return lhs.Equal(rhs)
	case OpGt:
		return rhs.Less(lhs)
	default:
		return false
	}
}

// ParseOp parses a grammar operator token, rejecting anything but '='
// or '>'.
func ParseOp(s string) (Op, bool) {
	switch s {
	case "=":
		return OpEq, true
	case ">":
		return OpGt, true
	default:
		return 0, false
	}
}
