// Package frag implements the linkable fragment abstraction that lets
// bytecode chunks be concatenated before the addresses of their forward
// references are known, and a final Link pass that resolves them.
//
// A Fragment holds three things: an ordered list of byte segments (kept
// separate rather than flattened so Append is cheap), a map from symbol
// identity to the byte offset it was defined at, and a map from byte
// offset to the symbol a 4-byte placeholder there refers to. Symbols are
// opaque, reference-equality identities minted per syntactic construct
// (see Symbol below), mirroring the reference compiler's per-construct
// unique objects used as forward-reference targets.
package frag

import (
	"encoding/binary"
	"fmt"
)

// Fragment is a partially linked chunk of bytecode.
type Fragment struct {
	segments    [][]byte
	length      int
	symbols     map[Symbol]int
	relocations map[int]Symbol
}

// New builds a Fragment out of zero or more raw byte segments.
func New(segments ...[]byte) *Fragment {
	f := &Fragment{symbols: map[Symbol]int{}, relocations: map[int]Symbol{}}
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		f.segments = append(f.segments, seg)
		f.length += len(seg)
	}
	return f
}

// Bytes is a convenience constructor for a fragment made of raw bytes,
// e.g. a single opcode or an opcode followed by its inline operands.
func Bytes(b ...byte) *Fragment {
	return New(b)
}

// Empty returns a zero-length fragment with no symbols or relocations.
func Empty() *Fragment {
	return New()
}

// Len returns the fragment's total byte length.
func (f *Fragment) Len() int {
	return f.length
}

// Mark records sym as defined at the fragment's current end. Used by
// label statements and by loop/if/try constructs to place their end
// markers once the preceding code has been appended.
func (f *Fragment) Mark(sym Symbol) {
	f.symbols[sym] = f.length
}

// MarkAt records sym as defined at a specific offset. Used by while-loop
// lowering, where the loop start coincides with the fragment's own
// offset 0 before anything has been appended to it.
func (f *Fragment) MarkAt(sym Symbol, offset int) {
	f.symbols[sym] = offset
}

// Reloc records a 4-byte placeholder at offset awaiting sym's resolved
// address at link time.
func (f *Fragment) Reloc(offset int, sym Symbol) {
	f.relocations[offset] = sym
}

// Append concatenates other onto f in place and returns f, shifting every
// symbol and relocation offset in other by len(f). It is an error for both
// fragments to define the same symbol.
func (f *Fragment) Append(other *Fragment) (*Fragment, error) {
	offset := f.length

	for sym := range other.symbols {
		if _, ok := f.symbols[sym]; ok {
			if sym.kind == symNamed {
				return nil, fmt.Errorf("duplicate label %q", sym.name)
			}
			return nil, fmt.Errorf("duplicate label definition")
		}
	}

	f.segments = append(f.segments, other.segments...)
	f.length += other.length

	for sym, addr := range other.symbols {
		f.symbols[sym] = addr + offset
	}
	for addr, sym := range other.relocations {
		f.relocations[addr+offset] = sym
	}

	return f, nil
}

// AppendAll is a small variadic helper over Append for the common case of
// chaining several fragments together, short-circuiting on the first error.
func (f *Fragment) AppendAll(others ...*Fragment) (*Fragment, error) {
	cur := f
	for _, other := range others {
		var err error
		cur, err = cur.Append(other)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// RetargetLoop rewrites every relocation in f's own relocation map that
// points at the LoopContinue/LoopBreak sentinels to point instead at
// start/end. This is shallow by design: it only touches f's own map, so a
// nested loop's sentinels - already rewritten by the inner loop before its
// fragment was appended here - are left alone.
func (f *Fragment) RetargetLoop(start, end Symbol) {
	for addr, sym := range f.relocations {
		switch sym {
		case LoopContinue:
			f.relocations[addr] = start
		case LoopBreak:
			f.relocations[addr] = end
		}
	}
}

// Link flattens the fragment into a single byte array and resolves every
// relocation against the fragment's own symbol table. It fails if any
// relocation references a symbol with no definition anywhere in f.
func (f *Fragment) Link() ([]byte, error) {
	buf := make([]byte, f.length)
	pos := 0
	for _, seg := range f.segments {
		pos += copy(buf[pos:], seg)
	}

	for addr, sym := range f.relocations {
		target, ok := f.symbols[sym]
		if !ok {
			return nil, fmt.Errorf("unresolved reference at offset %d", addr)
		}
		binary.LittleEndian.PutUint32(buf[addr:addr+4], uint32(target))
	}

	return buf, nil
}
