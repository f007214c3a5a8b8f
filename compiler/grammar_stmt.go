package compiler

import (
	"fmt"

	"bytec/frag"
	"bytec/opcode"
	"bytec/token"
)

// parseStatement parses one statement. c.token is on its first token on
// entry; on return c.token is on its last token, mirroring the convention
// used throughout the expression grammar so callers can uniformly call
// nextToken to advance to whatever follows.
func (c *Compiler) parseStatement() (*frag.Fragment, error) {
	switch c.token.Kind {
	case token.IDENT:
		if c.peekIs(token.COLON) {
			return c.parseLabelStatement()
		}
		return c.parseSimpleOrAssignStatement()
	case token.GOTO:
		return c.parseGotoStatement()
	case token.CONTINUE:
		if err := c.expectPeek(token.SEMICOLON); err != nil {
			return nil, err
		}
		return emitJump(opcode.JUMP, frag.LoopContinue), nil
	case token.BREAK:
		if err := c.expectPeek(token.SEMICOLON); err != nil {
			return nil, err
		}
		return emitJump(opcode.JUMP, frag.LoopBreak), nil
	case token.RETURN:
		return c.parseValueStatement(opcode.RETURN)
	case token.THROW:
		return c.parseValueStatement(opcode.RAISE)
	case token.YIELD:
		return c.parseValueStatement(opcode.YIELD)
	case token.DEL:
		return c.parseDelStatement()
	case token.IF:
		return c.parseIfStatement()
	case token.WHILE:
		return c.parseWhileStatement()
	case token.FOR:
		return c.parseForStatement()
	case token.TRY:
		return c.parseTryStatement()
	default:
		return c.parseSimpleOrAssignStatement()
	}
}

// parseLabelStatement parses `name:`. c.token is on the IDENT.
func (c *Compiler) parseLabelStatement() (*frag.Fragment, error) {
	name := c.token.Literal
	if err := c.nextToken(); err != nil { // now on ':'
		return nil, err
	}
	f := frag.Empty()
	f.Mark(frag.NamedLabel(name))
	return f, nil
}

func (c *Compiler) parseGotoStatement() (*frag.Fragment, error) {
	if err := c.expectPeek(token.IDENT); err != nil {
		return nil, err
	}
	name := c.token.Literal
	if err := c.expectPeek(token.SEMICOLON); err != nil {
		return nil, err
	}
	return emitJump(opcode.JUMP, frag.NamedLabel(name)), nil
}

// parseValueStatement parses `return e;` / `throw e;` / `yield e;`.
func (c *Compiler) parseValueStatement(op byte) (*frag.Fragment, error) {
	if err := c.nextToken(); err != nil { // first token of expr
		return nil, err
	}
	e, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	v, err := e.value()
	if err != nil {
		return nil, err
	}
	if err := c.expectPeek(token.SEMICOLON); err != nil {
		return nil, err
	}
	return v.Append(frag.Bytes(op))
}

func (c *Compiler) parseDelStatement() (*frag.Fragment, error) {
	if err := c.nextToken(); err != nil { // first token of lvalue expr
		return nil, err
	}
	e, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	if !e.isPlace() {
		return nil, fmt.Errorf("line %d: lhs must be an lvalue", c.token.Line)
	}
	if err := c.expectPeek(token.SEMICOLON); err != nil {
		return nil, err
	}
	return e.place.Del()
}

// parseSimpleOrAssignStatement parses `e;`, `lv = e;`, or `lv ⊕= e;`.
func (c *Compiler) parseSimpleOrAssignStatement() (*frag.Fragment, error) {
	e, err := c.parseExpression()
	if err != nil {
		return nil, err
	}

	if c.peekIs(token.ASSIGN) {
		if !e.isPlace() {
			return nil, fmt.Errorf("line %d: lhs must be an lvalue", c.token.Line)
		}
		if err := c.nextToken(); err != nil { // '='
			return nil, err
		}
		if err := c.nextToken(); err != nil { // first token of rhs
			return nil, err
		}
		rhs, err := c.parseExpression()
		if err != nil {
			return nil, err
		}
		rhsFrag, err := rhs.value()
		if err != nil {
			return nil, err
		}
		if err := c.expectPeek(token.SEMICOLON); err != nil {
			return nil, err
		}
		return e.place.Set(rhsFrag)
	}

	if op, ok := compoundOpcode[c.peekToken.Kind]; ok {
		if !e.isPlace() {
			return nil, fmt.Errorf("line %d: lhs must be an lvalue", c.token.Line)
		}
		if err := c.nextToken(); err != nil { // compound operator
			return nil, err
		}
		if err := c.nextToken(); err != nil { // first token of rhs
			return nil, err
		}
		rhs, err := c.parseExpression()
		if err != nil {
			return nil, err
		}
		rhsFrag, err := rhs.value()
		if err != nil {
			return nil, err
		}
		if err := c.expectPeek(token.SEMICOLON); err != nil {
			return nil, err
		}
		return e.place.SetUpdate(rhsFrag, op)
	}

	v, err := e.value()
	if err != nil {
		return nil, err
	}
	if err := c.expectPeek(token.SEMICOLON); err != nil {
		return nil, err
	}
	return v.Append(frag.Bytes(opcode.ST_POP))
}

// parseBlock parses `{ stmt* }`. c.token is on the opening '{' on entry;
// on return c.token is on the closing '}'.
func (c *Compiler) parseBlock() (*frag.Fragment, error) {
	if c.token.Kind != token.LBRACE {
		return nil, fmt.Errorf("line %d: expected {, got %s", c.token.Line, c.token.Kind)
	}
	if err := c.nextToken(); err != nil {
		return nil, err
	}
	body := frag.Empty()
	for c.token.Kind != token.RBRACE {
		if c.token.Kind == token.EOF {
			return nil, fmt.Errorf("line %d: unterminated block", c.token.Line)
		}
		stmt, err := c.parseStatement()
		if err != nil {
			return nil, err
		}
		if body, err = body.Append(stmt); err != nil {
			return nil, err
		}
		if err := c.nextToken(); err != nil {
			return nil, err
		}
	}
	return body, nil
}
