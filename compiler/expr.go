package compiler

import (
	"bytec/frag"
	"bytec/internal/leb128"
	"bytec/opcode"
	"bytec/token"
)

// Expr unifies the two shapes a production can yield: a plain
// value-producing fragment, or an assignable place. Consumers that only
// need a value call value(), which downgrades a place to its get()
// fragment; consumers on the left of `=`/`del` require a place and reject
// plain values with "lhs must be an lvalue".
type Expr struct {
	val   *frag.Fragment
	place *frag.LValue
}

func valueExpr(f *frag.Fragment) Expr {
	return Expr{val: f}
}

func placeExpr(lv *frag.LValue) Expr {
	return Expr{place: lv}
}

// isPlace reports whether e was produced by an identifier, attribute, item,
// or slice production.
func (e Expr) isPlace() bool {
	return e.place != nil
}

// value returns e's value-producing fragment, downgrading a place via get().
func (e Expr) value() (*frag.Fragment, error) {
	if e.place != nil {
		return e.place.Get()
	}
	return e.val, nil
}

// litBytes builds the full LIT_BYTES push: opcode, ULEB128 length, payload.
func litBytes(b []byte) *frag.Fragment {
	return frag.New([]byte{opcode.LIT_BYTES}, leb128.EncodeUnsigned(uint64(len(b))), b)
}

// inlineName builds the bare length-prefixed-name encoding used for
// CLOSURE_BIND's capture list, where the name is inline operand data rather
// than a LIT_BYTES push.
func inlineName(name string) []byte {
	out := leb128.EncodeUnsigned(uint64(len(name)))
	return append(out, name...)
}

// identPlace builds the LValue for a bare identifier: the prefix pushes the
// name as a bytes literal, and GET_LOCAL/SET_LOCAL/DEL_LOCAL consume it.
func identPlace(name string) *frag.LValue {
	return &frag.LValue{Prefix: litBytes([]byte(name)), Options: frag.OptionsLocal}
}

// binaryOpcode maps a binary operator token kind to its opcode.
var binaryOpcode = map[token.Kind]byte{
	token.PLUS:   opcode.OP_ADD,
	token.MINUS:  opcode.OP_SUB,
	token.TIMES:  opcode.OP_MUL,
	token.SLASH:  opcode.OP_DIV,
	token.MOD:    opcode.OP_MOD,
	token.BITAND: opcode.OP_AND,
	token.BITOR:  opcode.OP_OR,
	token.XOR:    opcode.OP_XOR,
	token.EQ:     opcode.OP_EQ,
	token.NE:     opcode.OP_NE,
	token.GT:     opcode.OP_GT,
	token.LT:     opcode.OP_LT,
	token.GE:     opcode.OP_GE,
	token.LE:     opcode.OP_LE,
	token.SHL:    opcode.OP_SHL,
	token.SHR:    opcode.OP_SHR,
}

// compoundOpcode maps a compound-assignment operator token kind to the same
// binary opcode a plain `+`/`-`/… expression would use; set_update applies
// it between the lvalue's current value and the right-hand side.
var compoundOpcode = map[token.Kind]byte{
	token.ASSIGN_PLUS:  opcode.OP_ADD,
	token.ASSIGN_MINUS: opcode.OP_SUB,
	token.ASSIGN_MUL:   opcode.OP_MUL,
	token.ASSIGN_DIV:   opcode.OP_DIV,
	token.ASSIGN_MOD:   opcode.OP_MOD,
	token.ASSIGN_AND:   opcode.OP_AND,
	token.ASSIGN_OR:    opcode.OP_OR,
	token.ASSIGN_XOR:   opcode.OP_XOR,
}
