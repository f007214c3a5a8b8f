package frag

import (
	"encoding/binary"
	"testing"
)

// TestLengthLaw checks |append(a,b)| == |a| + |b|.
func TestLengthLaw(t *testing.T) {
	a := Bytes(1, 2, 3)
	b := Bytes(4, 5)
	wantLen := a.Len() + b.Len()
	merged, err := a.Append(b)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if merged.Len() != wantLen {
		t.Fatalf("got length %d, want %d", merged.Len(), wantLen)
	}
}

// TestRelocationDisjointness checks that two distinct relocations never
// share any of their 4 bytes once assembled into one fragment.
func TestRelocationDisjointness(t *testing.T) {
	a := Bytes(0, 0, 0, 0)
	symA := NewSymbol()
	a.Reloc(0, symA)

	b := Bytes(0, 0, 0, 0)
	symB := NewSymbol()
	b.Reloc(0, symB)

	merged, err := a.Append(b)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	type window struct{ lo, hi int }
	var windows []window
	for addr := range merged.relocations {
		windows = append(windows, window{addr, addr + 4})
	}
	for i := range windows {
		for j := range windows {
			if i == j {
				continue
			}
			if windows[i].lo < windows[j].hi && windows[j].lo < windows[i].hi {
				t.Fatalf("relocations overlap: %v and %v", windows[i], windows[j])
			}
		}
	}
}

// TestAppendAssociativity checks append(append(a,b),c) and
// append(a,append(b,c)) produce byte-identical linked output.
func TestAppendAssociativity(t *testing.T) {
	build := func() (*Fragment, *Fragment, *Fragment) {
		return Bytes(1, 2), Bytes(3, 4), Bytes(5, 6)
	}

	a1, b1, c1 := build()
	left, err := a1.Append(b1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	left, err = left.Append(c1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	a2, b2, c2 := build()
	bc, err := b2.Append(c2)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	right, err := a2.Append(bc)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	leftBytes, err := left.Link()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	rightBytes, err := right.Link()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if string(leftBytes) != string(rightBytes) {
		t.Fatalf("got %v, want %v", leftBytes, rightBytes)
	}
}

// TestDuplicateLabelIsAnError checks that appending two fragments that
// both define the same named symbol fails.
func TestDuplicateLabelIsAnError(t *testing.T) {
	sym := NamedLabel("loop")
	a := Empty()
	a.Mark(sym)
	b := Empty()
	b.Mark(sym)

	if _, err := a.Append(b); err == nil {
		t.Fatalf("expected duplicate label error")
	}
}

func TestLinkResolvesRelocation(t *testing.T) {
	f := Bytes(0xAA, 0, 0, 0, 0, 0xBB)
	sym := NewSymbol()
	f.Reloc(1, sym)
	f.Mark(sym)

	out, err := f.Link()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	got := binary.LittleEndian.Uint32(out[1:5])
	if got != uint32(f.Len()) {
		t.Fatalf("got target %d, want %d", got, f.Len())
	}
}

func TestLinkUnresolvedSymbolFails(t *testing.T) {
	f := Bytes(0, 0, 0, 0)
	f.Reloc(0, NewSymbol())
	if _, err := f.Link(); err == nil {
		t.Fatalf("expected unresolved reference error")
	}
}

func TestRetargetLoopIsShallow(t *testing.T) {
	inner := Bytes(0, 0, 0, 0)
	inner.Reloc(0, LoopBreak)
	innerStart, innerEnd := NewSymbol(), NewSymbol()
	inner.RetargetLoop(innerStart, innerEnd)

	outer := Bytes(0, 0, 0, 0)
	outer.Reloc(0, LoopBreak)

	merged, err := outer.Append(inner)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	outerStart, outerEnd := NewSymbol(), NewSymbol()
	merged.RetargetLoop(outerStart, outerEnd)

	if merged.relocations[0] != outerEnd {
		t.Fatalf("outer break should retarget to outer end")
	}
	innerBreakOffset := 4 // inner fragment was appended after outer's 4 bytes
	if merged.relocations[innerBreakOffset] != innerEnd {
		t.Fatalf("inner break should remain targeting inner end, not be re-retargeted")
	}
}
