package frag

// symbolKind distinguishes the four flavors of Symbol identity described
// in spec.md's design notes: freshly minted per-construct symbols, the two
// process-wide loop sentinels, and named labels from `label:` statements.
type symbolKind uint8

const (
	symFresh symbolKind = iota
	symLoopContinue
	symLoopBreak
	symNamed
)

// Symbol is an opaque forward/backward-reference target, resolved to a
// byte offset at link time. Symbol is comparable, so two Symbol values
// compare equal iff they denote the same identity - the Go analogue of the
// reference compiler's reference-equality sentinel objects.
type Symbol struct {
	kind symbolKind
	id   uint64
	name string
}

// LoopContinue and LoopBreak are the two process-wide sentinel symbols
// that continue/break statements target before the enclosing loop
// retargets them to its own start/end symbols.
var (
	LoopContinue = Symbol{kind: symLoopContinue}
	LoopBreak    = Symbol{kind: symLoopBreak}
)

var nextSymbolID uint64

// NewSymbol mints a fresh, unique symbol identity. Every syntactic
// construct that needs a jump target (if/while/for/try end markers, loop
// start markers, short-circuit end markers) mints its own.
func NewSymbol() Symbol {
	nextSymbolID++
	return Symbol{kind: symFresh, id: nextSymbolID}
}

// NamedLabel returns the symbol identity for a user-written `name:` label.
// Two NamedLabel calls with the same name denote the same symbol, which is
// what makes a duplicate `label:` in one link-scope detectable as a
// duplicate-definition error during Append.
func NamedLabel(name string) Symbol {
	return Symbol{kind: symNamed, name: name}
}
