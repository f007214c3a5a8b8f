package lexer

import (
	"testing"

	"bytec/token"
)

func tokenize(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New(input)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lex error: %s", err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestIntegerLiterals(t *testing.T) {
	toks := tokenize(t, "1 42 0x1A")
	want := []int64{1, 42, 26}
	for i, w := range want {
		if toks[i].Kind != token.INT || toks[i].Int != w {
			t.Fatalf("token %d: got %+v, want INT %d", i, toks[i], w)
		}
	}
}

func TestFloatLiterals(t *testing.T) {
	toks := tokenize(t, "1.5 .5 5.")
	want := []float64{1.5, 0.5, 5.0}
	for i, w := range want {
		if toks[i].Kind != token.FLOAT || toks[i].Float != w {
			t.Fatalf("token %d: got %+v, want FLOAT %v", i, toks[i], w)
		}
	}
}

func TestBytesLiteralEscapes(t *testing.T) {
	toks := tokenize(t, `"a\nb\x41"`)
	if toks[0].Kind != token.BYTES {
		t.Fatalf("got %+v, want BYTES", toks[0])
	}
	if string(toks[0].Bytes) != "a\nbA" {
		t.Fatalf("got %q, want %q", toks[0].Bytes, "a\nbA")
	}
}

func TestCompoundOperatorsOutrankPrefixes(t *testing.T) {
	toks := tokenize(t, "== != <= >= << >> += -= *= /= %= &= |= ^=")
	want := []token.Kind{
		token.EQ, token.NE, token.LE, token.GE, token.SHL, token.SHR,
		token.ASSIGN_PLUS, token.ASSIGN_MINUS, token.ASSIGN_MUL, token.ASSIGN_DIV,
		token.ASSIGN_MOD, token.ASSIGN_AND, token.ASSIGN_OR, token.ASSIGN_XOR,
	}
	for i, w := range want {
		if toks[i].Kind != w {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Kind, w)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := tokenize(t, "fn class while foobar")
	want := []token.Kind{token.FN, token.CLASS, token.WHILE, token.IDENT}
	for i, w := range want {
		if toks[i].Kind != w {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Kind, w)
		}
	}
	if toks[3].Literal != "foobar" {
		t.Fatalf("got literal %q, want foobar", toks[3].Literal)
	}
}

func TestCommentsAndLineTracking(t *testing.T) {
	toks := tokenize(t, "1 # a comment\n2")
	if toks[0].Line != 1 || toks[1].Line != 2 {
		t.Fatalf("got lines %d, %d, want 1, 2", toks[0].Line, toks[1].Line)
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("1 @ 2")
	if _, err := l.Next(); err != nil {
		t.Fatalf("unexpected error on first token: %s", err)
	}
	if _, err := l.Next(); err == nil {
		t.Fatalf("expected a lex error on '@'")
	}
}
