package frag

import "bytec/opcode"

// Options describes the three opcodes and the arity of an assignable
// place: 1 for a local (the prefix leaves nothing extra on the stack but
// the GET_LOCAL/SET_LOCAL/DEL_LOCAL opcode consumes the name pushed by the
// prefix), 2 for an item/attribute/slice place (prefix leaves container
// and key).
type Options struct {
	Get, Set, Del byte
	Arity         int
}

var (
	// OptionsLocal is used by bare identifier places.
	OptionsLocal = Options{Get: opcode.GET_LOCAL, Set: opcode.SET_LOCAL, Del: opcode.DEL_LOCAL, Arity: 1}

	// OptionsAttr is used by `e.x` places.
	OptionsAttr = Options{Get: opcode.GET_ATTR, Set: opcode.SET_ATTR, Del: opcode.DEL_ATTR, Arity: 2}

	// OptionsItem is used by `e[k]` and `e[a:b]` places; a slice place
	// differs only in what the prefix leaves as the key.
	OptionsItem = Options{Get: opcode.GET_ITEM, Set: opcode.SET_ITEM, Del: opcode.DEL_ITEM, Arity: 2}
)

// LValue is an assignable place: a prefix fragment that leaves the
// context values (nothing extra for a local; container and key for an
// item/attr) the chosen opcode needs, plus the GET/SET/DEL/arity triple
// describing how to read, write, or delete through that context.
//
// Each LValue is consumed by exactly one of Get/Set/SetUpdate/Del, which
// mutates and returns its own prefix fragment - mirroring the reference
// compiler's single-use bytecode buffer per production.
type LValue struct {
	Prefix  *Fragment
	Options Options
}

// Get emits the prefix followed by the GET opcode. Net stack effect: +1.
func (lv *LValue) Get() (*Fragment, error) {
	return lv.Prefix.Append(Bytes(lv.Options.Get))
}

// Set emits the prefix, then value, then the SET opcode. Net effect: 0
// (SET consumes the value and the prefix's context; nothing is left behind).
func (lv *LValue) Set(value *Fragment) (*Fragment, error) {
	return lv.Prefix.AppendAll(value, Bytes(lv.Options.Set))
}

// SetUpdate models compound assignment (`+=` and friends) atomically with
// respect to stack discipline: prefix, DUP/DUP2 to replicate the context,
// GET, value, op, SET.
func (lv *LValue) SetUpdate(value *Fragment, op byte) (*Fragment, error) {
	dup := byte(opcode.ST_DUP)
	if lv.Options.Arity == 2 {
		dup = opcode.ST_DUP2
	}
	return lv.Prefix.AppendAll(
		Bytes(dup),
		Bytes(lv.Options.Get),
		value,
		Bytes(op),
		Bytes(lv.Options.Set),
	)
}

// Del emits the prefix followed by the DEL opcode.
func (lv *LValue) Del() (*Fragment, error) {
	return lv.Prefix.Append(Bytes(lv.Options.Del))
}
