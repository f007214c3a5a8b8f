// Package opcode defines the bytecode instruction set emitted by the
// compiler. Numeric values are part of the output format's contract.
package opcode

const (
	// ERROR is never emitted; it marks opcode value 0 as reserved.
	ERROR = 0x00

	// ST_SWAP swaps the top two stack values.
	ST_SWAP = 0x01

	// ST_POP discards the top of stack.
	ST_POP = 0x02

	// ST_DUP duplicates the top of stack.
	ST_DUP = 0x03

	// ST_DUP2 duplicates the top two stack values, preserving order.
	ST_DUP2 = 0x04

	// LIT_BYTES pushes a length-prefixed byte-string literal.
	LIT_BYTES = 0x0a

	// LIT_INT pushes a signed-LEB128 integer literal.
	LIT_INT = 0x0b

	// LIT_FLOAT pushes an 8-byte little-endian IEEE-754 double.
	LIT_FLOAT = 0x0c

	// LIT_SLICE builds a slice value from the two bound values below it.
	LIT_SLICE = 0x0d

	// LIT_NONE pushes the none value.
	LIT_NONE = 0x0e

	// LIT_TRUE pushes the boolean true.
	LIT_TRUE = 0x0f

	// LIT_FALSE pushes the boolean false.
	LIT_FALSE = 0x10

	// TUPLE_0..TUPLE_4 build fixed-arity tuples from the stack.
	TUPLE_0 = 0x11
	TUPLE_1 = 0x12
	TUPLE_2 = 0x13
	TUPLE_3 = 0x14
	TUPLE_4 = 0x15

	// TUPLE_N builds an N-arity tuple; N follows as unsigned LEB128.
	TUPLE_N = 0x16

	// CLOSURE builds a closure with no captured names.
	CLOSURE = 0x17

	// CLOSURE_BIND builds a closure with M captured names.
	CLOSURE_BIND = 0x18

	// EMPTY_DICT pushes a new empty dict.
	EMPTY_DICT = 0x19

	// CLASS consumes (name, base, dict) and produces a class value.
	CLASS = 0x1a

	// GET_ATTR, SET_ATTR, DEL_ATTR operate on object attributes.
	GET_ATTR = 0x28
	SET_ATTR = 0x29
	DEL_ATTR = 0x2a

	// GET_ITEM, SET_ITEM, DEL_ITEM operate on container items/slices.
	GET_ITEM = 0x2b
	SET_ITEM = 0x2c
	DEL_ITEM = 0x2d

	// GET_LOCAL, SET_LOCAL, DEL_LOCAL operate on named locals.
	GET_LOCAL = 0x2e
	SET_LOCAL = 0x2f
	DEL_LOCAL = 0x30

	// LOAD_ARGS pushes the current call's argument tuple.
	LOAD_ARGS = 0x31

	// JUMP, JUMP_IF, TRY each take a 4-byte absolute offset operand.
	JUMP    = 0x3c
	JUMP_IF = 0x3d
	TRY     = 0x3e

	// TRY_END pops the innermost exception handler.
	TRY_END = 0x3f

	// CALL invokes a callable with a tuple of arguments.
	CALL = 0x40

	// SPAWN invokes a callable concurrently with a tuple of arguments.
	SPAWN = 0x41

	// RAISE throws the top-of-stack value as an exception.
	RAISE = 0x42

	// RETURN returns the top-of-stack value from the current function.
	RETURN = 0x43

	// YIELD suspends the current function, yielding the top-of-stack value.
	YIELD = 0x44

	// RAISE_IF_NOT_STOP discards the top-of-stack exception and falls
	// through iff it is the loop-termination sentinel, else re-raises.
	RAISE_IF_NOT_STOP = 0x45

	// Binary and unary operators. Unary OP_NEG/OP_NOT/OP_INV consume one
	// operand; the rest consume two.
	OP_ADD = 0x50
	OP_SUB = 0x51
	OP_MUL = 0x52
	OP_DIV = 0x53
	OP_MOD = 0x54
	OP_AND = 0x55
	OP_OR  = 0x56
	OP_XOR = 0x57
	OP_NEG = 0x58
	OP_NOT = 0x59
	OP_INV = 0x5a
	OP_EQ  = 0x5b
	OP_NE  = 0x5c
	OP_GT  = 0x5d
	OP_LT  = 0x5e
	OP_GE  = 0x5f
	OP_LE  = 0x60
	OP_SHL = 0x61
	OP_SHR = 0x62
)

// names maps each opcode value to its mnemonic, used by String.
var names = map[byte]string{
	ERROR:             "ERROR",
	ST_SWAP:           "ST_SWAP",
	ST_POP:            "ST_POP",
	ST_DUP:            "ST_DUP",
	ST_DUP2:           "ST_DUP2",
	LIT_BYTES:         "LIT_BYTES",
	LIT_INT:           "LIT_INT",
	LIT_FLOAT:         "LIT_FLOAT",
	LIT_SLICE:         "LIT_SLICE",
	LIT_NONE:          "LIT_NONE",
	LIT_TRUE:          "LIT_TRUE",
	LIT_FALSE:         "LIT_FALSE",
	TUPLE_0:           "TUPLE_0",
	TUPLE_1:           "TUPLE_1",
	TUPLE_2:           "TUPLE_2",
	TUPLE_3:           "TUPLE_3",
	TUPLE_4:           "TUPLE_4",
	TUPLE_N:           "TUPLE_N",
	CLOSURE:           "CLOSURE",
	CLOSURE_BIND:      "CLOSURE_BIND",
	EMPTY_DICT:        "EMPTY_DICT",
	CLASS:             "CLASS",
	GET_ATTR:          "GET_ATTR",
	SET_ATTR:          "SET_ATTR",
	DEL_ATTR:          "DEL_ATTR",
	GET_ITEM:          "GET_ITEM",
	SET_ITEM:          "SET_ITEM",
	DEL_ITEM:          "DEL_ITEM",
	GET_LOCAL:         "GET_LOCAL",
	SET_LOCAL:         "SET_LOCAL",
	DEL_LOCAL:         "DEL_LOCAL",
	LOAD_ARGS:         "LOAD_ARGS",
	JUMP:              "JUMP",
	JUMP_IF:           "JUMP_IF",
	TRY:               "TRY",
	TRY_END:           "TRY_END",
	CALL:              "CALL",
	SPAWN:             "SPAWN",
	RAISE:             "RAISE",
	RETURN:            "RETURN",
	YIELD:             "YIELD",
	RAISE_IF_NOT_STOP: "RAISE_IF_NOT_STOP",
	OP_ADD:            "OP_ADD",
	OP_SUB:            "OP_SUB",
	OP_MUL:            "OP_MUL",
	OP_DIV:            "OP_DIV",
	OP_MOD:            "OP_MOD",
	OP_AND:            "OP_AND",
	OP_OR:             "OP_OR",
	OP_XOR:            "OP_XOR",
	OP_NEG:            "OP_NEG",
	OP_NOT:            "OP_NOT",
	OP_INV:            "OP_INV",
	OP_EQ:             "OP_EQ",
	OP_NE:             "OP_NE",
	OP_GT:             "OP_GT",
	OP_LT:             "OP_LT",
	OP_GE:             "OP_GE",
	OP_LE:             "OP_LE",
	OP_SHL:            "OP_SHL",
	OP_SHR:            "OP_SHR",
}

// Opcode is a holder for a single instruction byte. It does not account
// for any operands that may follow it in the bytecode stream.
type Opcode struct {
	instruction byte
}

// New creates a new Opcode.
func New(instruction byte) Opcode {
	return Opcode{instruction: instruction}
}

func (o Opcode) String() string {
	if name, ok := names[o.instruction]; ok {
		return name
	}
	return "unknown opcode"
}

// Value returns the byte value of the opcode.
func (o Opcode) Value() byte {
	return o.instruction
}
