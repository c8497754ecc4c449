package query

import (
	"strings"

	"github.com/dropbox/godropbox/errors"

	"github.com/brodenix/recql"
)

// Operand is the right-hand side of an Operation: either another column
// reference or a literal scalar.
type Operand struct {
	column  *Column
	literal recql.Value
}

// IsColumn reports whether the operand is a column reference rather than
// a literal.
func (o Operand) IsColumn() bool { return o.column != nil }

// Column returns the operand's column reference. Only valid when
// IsColumn() is true.
func (o Operand) Column() Column { return *o.column }

// Literal returns the operand's literal value. Only valid when IsColumn()
// is false.
func (o Operand) Literal() recql.Value { return o.literal }

// ColumnOperand wraps a column reference as an operand.
func ColumnOperand(c Column) Operand { return Operand{column: &c} }

// LiteralOperand wraps a scalar literal as an operand.
func LiteralOperand(v recql.Value) Operand { return Operand{literal: v} }

// Operation is one WHERE clause condition: lhs op rhs, where lhs is
// always a qualified column and rhs is a column or a literal. Only '='
// and '>' are supported.
type Operation struct {
	LHS Column
	Op  recql.Op
	RHS Operand
}

// NewOperation validates lhs is a concrete column (never "*") and op is
// supported, rejecting anything else at construction.
func NewOperation(lhs Column, op recql.Op, rhs Operand) (Operation, error) {
	if lhs.All {
		return Operation{}, errors.Newf("operation left-hand side cannot be '*'")
	}
	if op != recql.OpEq && op != recql.OpGt {
		return Operation{}, errors.Newf("unsupported operator %v", op)
	}
	return Operation{LHS: lhs, Op: op, RHS: rhs}, nil
}

// ParseOperation parses one "t.c (= | >) (t.c | literal)" condition
// token, detecting integer literals by numeric parse and falling back to
// string.
func ParseOperation(lhsTok, opTok, rhsTok string) (Operation, error) {
	lhs, err := ParseColumn(lhsTok)
	if err != nil {
		return Operation{}, err
	}
	op, ok := recql.ParseOp(opTok)
	if !ok {
		return Operation{}, errors.Newf("unsupported operator %q", opTok)
	}
	var rhs Operand
	if strings.Contains(rhsTok, ".") {
		col, err := ParseColumn(rhsTok)
		if err != nil {
			return Operation{}, err
		}
		rhs = ColumnOperand(col)
	} else {
		rhs = LiteralOperand(recql.ValueFromLiteral(rhsTok))
	}
	return NewOperation(lhs, op, rhs)
}
