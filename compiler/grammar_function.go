package compiler

import (
	"fmt"

	"bytec/frag"
	"bytec/internal/leb128"
	"bytec/opcode"
	"bytec/token"
)

// parseIdentList parses a comma-separated list of identifiers up to (and
// consuming) closing. c.token is on the token preceding the list (the
// opening delimiter) on entry; on return c.token is on closing.
func (c *Compiler) parseIdentList(closing token.Kind) ([]string, error) {
	var names []string
	if c.peekIs(closing) {
		return names, c.nextToken()
	}
	if err := c.nextToken(); err != nil {
		return nil, err
	}
	for {
		if c.token.Kind != token.IDENT {
			return nil, fmt.Errorf("line %d: expected identifier, got %s", c.token.Line, c.token.Kind)
		}
		names = append(names, c.token.Literal)
		if c.peekIs(token.COMMA) {
			if err := c.nextToken(); err != nil {
				return nil, err
			}
			if err := c.nextToken(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := c.expectPeek(closing); err != nil {
		return nil, err
	}
	return names, nil
}

// paramPrologue builds the parameter-binding prologue described in
// spec.md's function-literal emission rule: for each parameter, push its
// name, LOAD_ARGS, the index as a signed-LEB128 LIT_INT, GET_ITEM, then
// SET_LOCAL — i.e. `name = LOAD_ARGS[i]` via the ordinary lvalue set.
func paramPrologue(params []string) (*frag.Fragment, error) {
	out := frag.Empty()
	for i, name := range params {
		value, err := frag.New([]byte{opcode.LOAD_ARGS}).AppendAll(
			frag.New([]byte{opcode.LIT_INT}, leb128.EncodeSigned(int64(i))),
			frag.Bytes(opcode.GET_ITEM),
		)
		if err != nil {
			return nil, err
		}
		setFrag, err := identPlace(name).Set(value)
		if err != nil {
			return nil, err
		}
		if out, err = out.Append(setFrag); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// parseFunctionLiteral parses `fn (p1, …, pN) [cap1, …, capM]? { body }`.
// The whole body, prologue included, is linked immediately (sealing its
// own label scope) and embedded as a length-prefixed byte string followed
// by CLOSURE or CLOSURE_BIND.
func (c *Compiler) parseFunctionLiteral() (Expr, error) {
	if err := c.expectPeek(token.LPAREN); err != nil {
		return Expr{}, err
	}
	params, err := c.parseIdentList(token.RPAREN)
	if err != nil {
		return Expr{}, err
	}

	var captures []string
	hasCaptureClause := false
	if c.peekIs(token.LBRACKET) {
		hasCaptureClause = true
		if err := c.nextToken(); err != nil {
			return Expr{}, err
		}
		captures, err = c.parseIdentList(token.RBRACKET)
		if err != nil {
			return Expr{}, err
		}
	}

	if err := c.expectPeek(token.LBRACE); err != nil {
		return Expr{}, err
	}
	stmts, err := c.parseBlock()
	if err != nil {
		return Expr{}, err
	}

	prologue, err := paramPrologue(params)
	if err != nil {
		return Expr{}, err
	}
	bodyFrag, err := prologue.Append(stmts)
	if err != nil {
		return Expr{}, err
	}
	linked, err := bodyFrag.Link()
	if err != nil {
		return Expr{}, fmt.Errorf("line %d: function body: %w", c.token.Line, err)
	}

	out := litBytes(linked)
	if !hasCaptureClause {
		out, err = out.Append(frag.Bytes(opcode.CLOSURE))
	} else {
		out, err = out.Append(frag.Bytes(opcode.CLOSURE_BIND))
		if err != nil {
			return Expr{}, err
		}
		out, err = out.Append(frag.New(leb128.EncodeUnsigned(uint64(len(captures)))))
		if err != nil {
			return Expr{}, err
		}
		for _, name := range captures {
			if out, err = out.Append(frag.New(inlineName(name))); err != nil {
				return Expr{}, err
			}
		}
	}
	if err != nil {
		return Expr{}, err
	}
	return valueExpr(out), nil
}

// parseClassLiteral parses `class (Base) { name = expr; … }`. The base
// identifier is looked up as a local (GET_LOCAL), matching the reference
// compiler's byte sequence exactly: it pushes no separate class-name
// literal, since the one identifier in the grammar already serves as both
// the base's lookup key and the class's own distinguishing name.
func (c *Compiler) parseClassLiteral() (Expr, error) {
	if err := c.expectPeek(token.LPAREN); err != nil {
		return Expr{}, err
	}
	if err := c.expectPeek(token.IDENT); err != nil {
		return Expr{}, err
	}
	baseName := c.token.Literal
	if err := c.expectPeek(token.RPAREN); err != nil {
		return Expr{}, err
	}
	if err := c.expectPeek(token.LBRACE); err != nil {
		return Expr{}, err
	}
	if err := c.nextToken(); err != nil { // move past '{'
		return Expr{}, err
	}

	baseGet, err := identPlace(baseName).Get()
	if err != nil {
		return Expr{}, err
	}
	out, err := baseGet.Append(frag.Bytes(opcode.EMPTY_DICT))
	if err != nil {
		return Expr{}, err
	}

	for c.token.Kind != token.RBRACE {
		if c.token.Kind != token.IDENT {
			return Expr{}, fmt.Errorf("line %d: expected member name, got %s", c.token.Line, c.token.Kind)
		}
		memberName := c.token.Literal
		if err := c.expectPeek(token.ASSIGN); err != nil {
			return Expr{}, err
		}
		if err := c.nextToken(); err != nil { // first token of member value
			return Expr{}, err
		}
		valueExprNode, err := c.parseExpression()
		if err != nil {
			return Expr{}, err
		}
		value, err := valueExprNode.value()
		if err != nil {
			return Expr{}, err
		}
		if err := c.expectPeek(token.SEMICOLON); err != nil {
			return Expr{}, err
		}
		out, err = out.AppendAll(frag.Bytes(opcode.ST_DUP), litBytes([]byte(memberName)), value, frag.Bytes(opcode.SET_ITEM))
		if err != nil {
			return Expr{}, err
		}
		if err := c.nextToken(); err != nil { // next member name or '}'
			return Expr{}, err
		}
	}

	out, err = out.Append(frag.Bytes(opcode.CLASS))
	if err != nil {
		return Expr{}, err
	}
	return valueExpr(out), nil
}
