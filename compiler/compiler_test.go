package compiler

import (
	"encoding/binary"
	"testing"

	"bytec/lexer"
)

// compile lexes, parses, and links src, failing the test on any error.
func compile(t *testing.T, src string) []byte {
	t.Helper()
	l := lexer.New(src)
	c, err := New(l)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	root, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile: %s", err)
	}
	out, err := root.Link()
	if err != nil {
		t.Fatalf("Link: %s", err)
	}
	return out
}

// TestS1Assignment checks `x = 1;` against spec.md's S1 scenario.
func TestS1Assignment(t *testing.T) {
	got := compile(t, "x = 1;")
	want := []byte{0x0A, 0x01, 'x', 0x0B, 0x01, 0x2F}
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

// TestS2ReturnAdd checks `return 2 + 3;` against spec.md's S2 scenario.
func TestS2ReturnAdd(t *testing.T) {
	got := compile(t, "return 2 + 3;")
	want := []byte{0x0B, 0x02, 0x0B, 0x03, 0x50, 0x43}
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

// TestS3WhileBreak checks `while 1 { break; }`: a JUMP_IF guarding the
// loop, the break lowered to a JUMP retargeted to the loop's end, and the
// trailing unconditional JUMP back to the loop's start (offset 0) that
// spec.md's while-lowering algorithm always emits.
func TestS3WhileBreak(t *testing.T) {
	got := compile(t, "while 1 { break; }")
	end := uint32(len(got))
	want := []byte{
		0x0B, 0x01, // LIT_INT 1
		0x59,                               // OP_NOT
		0x3D, 0, 0, 0, 0, // JUMP_IF <end>  (patched below)
		0x3C, 0, 0, 0, 0, // break -> JUMP <end> (patched below)
		0x3C, 0, 0, 0, 0, // JUMP <start=0>
	}
	binary.LittleEndian.PutUint32(want[4:8], end)
	binary.LittleEndian.PutUint32(want[9:13], end)
	binary.LittleEndian.PutUint32(want[14:18], 0)
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

// TestS4IfElse checks `if 0 { a; } else { b; }`: both branches are
// statement-expressions of a bare identifier, which lower to a GET_LOCAL
// followed by ST_POP; the tail jump must land exactly where the else
// branch starts, and the end jump exactly at the fragment's end.
func TestS4IfElse(t *testing.T) {
	got := compile(t, "if 0 { a; } else { b; }")
	want := []byte{
		0x0B, 0x00, // LIT_INT 0
		0x59,             // OP_NOT
		0x3D, 18, 0, 0, 0, // JUMP_IF <tail=18>
		0x0A, 0x01, 'a', 0x2E, 0x02, // a; -> LIT_BYTES "a", GET_LOCAL, ST_POP
		0x3C, 23, 0, 0, 0, // JUMP <end=23>
		0x0A, 0x01, 'b', 0x2E, 0x02, // b; -> LIT_BYTES "b", GET_LOCAL, ST_POP
	}
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

// TestLabelUniqueness checks that two labels with the same name in one
// link-scope are rejected before link (frag.Append's duplicate-symbol
// check fires as soon as the second label is folded into the root).
func TestLabelUniqueness(t *testing.T) {
	l := lexer.New("again: x = 1; again: x = 2;")
	c, err := New(l)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	if _, err := c.Compile(); err == nil {
		t.Fatalf("expected duplicate label error")
	}
}

// TestContinueOutsideLoopFailsAtLink checks that a continue/break outside
// any loop in the same function body surfaces as a link error, since its
// relocation is never retargeted away from the sentinel symbol.
func TestContinueOutsideLoopFailsAtLink(t *testing.T) {
	l := lexer.New("continue;")
	c, err := New(l)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	root, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile: %s", err)
	}
	if _, err := root.Link(); err == nil {
		t.Fatalf("expected unresolved reference error")
	}
}

// TestLoopLocality checks that break inside a nested loop targets the
// inner loop, not the outer one: linking succeeds (every sentinel gets
// retargeted by its own enclosing loop) and the inner loop's body is
// shorter than the whole program, so the two loops' JUMP targets differ.
func TestLoopLocality(t *testing.T) {
	got := compile(t, "while 1 { while 2 { break; } break; }")
	if len(got) != 36 {
		t.Fatalf("got %d bytes, want 36", len(got))
	}
	// Inner break: JUMP at 16, targeting the inner loop's end (26).
	if inner := binary.LittleEndian.Uint32(got[17:21]); inner != 26 {
		t.Fatalf("inner break targets %d, want 26", inner)
	}
	// Outer break: JUMP at 26, targeting the outer loop's end (36).
	if outer := binary.LittleEndian.Uint32(got[27:31]); outer != 36 {
		t.Fatalf("outer break targets %d, want 36", outer)
	}
}

// TestShortCircuitAnd checks `a and b` emits the ST_DUP/OP_NOT/JUMP_IF
// short-circuit skeleton from spec.md's logical-and lowering.
func TestShortCircuitAnd(t *testing.T) {
	got := compile(t, "return a and b;")
	// LIT_BYTES "a", GET_LOCAL, ST_DUP, OP_NOT, JUMP_IF <end>, ST_POP,
	// LIT_BYTES "b", GET_LOCAL, <end>:, RETURN
	want := []byte{
		0x0A, 0x01, 'a', 0x2E,
		0x03, 0x59, 0x3D, 16, 0, 0, 0,
		0x02,
		0x0A, 0x01, 'b', 0x2E,
		0x43,
	}
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

// TestForLoopLinksAndRetargetsLoopLocally checks spec.md's S6 scenario:
// `for i in xs { break; }` links successfully (the implicit try/catch
// around the iterator protocol and the break's sentinel both resolve).
func TestForLoopLinksAndRetargetsLoopLocally(t *testing.T) {
	got := compile(t, "for i in xs { break; }")
	if len(got) == 0 {
		t.Fatalf("expected non-empty output")
	}
	if got[0] != 0x0A {
		t.Fatalf("expected program to open with the __for_0 name's LIT_BYTES push, got 0x%02x", got[0])
	}
}

// TestFunctionLiteralLinksIndependently checks that a continue/break
// inside a function body cannot leak out: the function's own body is
// linked immediately, so a loop fully contained in the function links
// fine even though the function itself sits inside no loop.
func TestFunctionLiteralLinksIndependently(t *testing.T) {
	got := compile(t, "f = fn (x) { while 1 { break; } return x; };")
	if len(got) == 0 {
		t.Fatalf("expected non-empty output")
	}
}

// TestCompoundAssignment checks `x += 1;` uses set_update's DUP-based
// lowering rather than a plain get/set pair.
func TestCompoundAssignment(t *testing.T) {
	got := compile(t, "x += 1;")
	want := []byte{
		0x0A, 0x01, 'x', // prefix (name)
		0x03,       // ST_DUP (arity 1: local)
		0x2E,       // GET_LOCAL
		0x0B, 0x01, // LIT_INT 1
		0x50, // OP_ADD
		0x2F, // SET_LOCAL
	}
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

// TestDeleteStatementRequiresLvalue checks that `del` on a non-lvalue
// expression is rejected during parsing.
func TestDeleteStatementRequiresLvalue(t *testing.T) {
	l := lexer.New("del 1;")
	c, err := New(l)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	if _, err := c.Compile(); err == nil {
		t.Fatalf("expected lhs-must-be-lvalue error")
	}
}

// TestClassLiteral checks `class (Base) { x = 1; }` emits the base
// lookup, dict construction, one member assignment, and CLASS.
func TestClassLiteral(t *testing.T) {
	got := compile(t, "return class (Base) { x = 1; };")
	want := []byte{
		0x0A, 0x04, 'B', 'a', 's', 'e', 0x2E, // GET_LOCAL(Base)
		0x19,                   // EMPTY_DICT
		0x03,                   // ST_DUP
		0x0A, 0x01, 'x', // member name
		0x0B, 0x01, // LIT_INT 1
		0x2C, // SET_ITEM
		0x1A, // CLASS
		0x43, // RETURN
	}
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

// TestTupleLiteral checks `[1, 2]` always lowers via TUPLE_N + ULEB128(N),
// never a fixed-arity TUPLE_0..TUPLE_4 opcode, matching the same rule used
// for call argument tuples regardless of arity.
func TestTupleLiteral(t *testing.T) {
	got := compile(t, "return [1, 2];")
	want := []byte{
		0x0B, 0x01, // LIT_INT 1
		0x0B, 0x02, // LIT_INT 2
		0x16, 0x02, // TUPLE_N, ULEB128(2)
		0x43, // RETURN
	}
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}
