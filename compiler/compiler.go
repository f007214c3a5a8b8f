// Package compiler parses the token stream from package lexer and emits
// bytecode fragments directly as it parses: there is no separate AST phase.
// Each production yields either an Expr wrapping a value-producing
// Fragment, or one wrapping an assignable frag.LValue; statement-level
// productions consume those and, through repeated frag.Fragment.Append,
// build up the program's single root fragment.
package compiler

import (
	"fmt"

	"bytec/frag"
	"bytec/internal/diag"
	"bytec/lexer"
	"bytec/token"
)

// Compiler turns one compilation unit's token stream into a single,
// unlinked root fragment. Link-scope sealing (the point at which goto
// labels and loop sentinels must already be resolved) happens at a higher
// level: the top-level caller links the root fragment returned by Compile,
// and function literals link their own body fragment before embedding it.
type Compiler struct {
	lex       *lexer.Lexer
	token     token.Token // current token
	peekToken token.Token // lookahead token

	forCounter int // used to mint __for_<n> iterator locals
}

// New primes the two-token lookahead buffer from l.
func New(l *lexer.Lexer) (*Compiler, error) {
	c := &Compiler{lex: l}
	if err := c.nextToken(); err != nil {
		return nil, err
	}
	if err := c.nextToken(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Compiler) nextToken() error {
	c.token = c.peekToken
	tok, err := c.lex.Next()
	if err != nil {
		return err
	}
	c.peekToken = tok
	if diag.Enabled() {
		diag.Tracef("token %s %q (line %d)", c.token.Kind, c.token.Literal, c.token.Line)
	}
	return nil
}

func (c *Compiler) peekIs(k token.Kind) bool {
	return c.peekToken.Kind == k
}

// expectPeek requires the lookahead token to have kind k, advances past it
// on success, and otherwise reports a parse error.
func (c *Compiler) expectPeek(k token.Kind) error {
	if !c.peekIs(k) {
		return fmt.Errorf("line %d: expected %s, got %s", c.peekToken.Line, k, c.peekToken.Kind)
	}
	return c.nextToken()
}

// Compile parses the whole token stream as a sequence of statements and
// returns the unlinked root fragment. The caller links it.
func (c *Compiler) Compile() (*frag.Fragment, error) {
	root := frag.Empty()
	for c.token.Kind != token.EOF {
		stmt, err := c.parseStatement()
		if err != nil {
			return nil, err
		}
		if root, err = root.Append(stmt); err != nil {
			return nil, err
		}
		if err := c.nextToken(); err != nil {
			return nil, err
		}
	}
	return root, nil
}
