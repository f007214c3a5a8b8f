package compiler

import (
	"fmt"
	"math"

	"bytec/frag"
	"bytec/internal/leb128"
	"bytec/opcode"
	"bytec/token"
)

// parseExpression enters the precedence ladder at its lowest level,
// logical or. c.token must be on the first token of the expression on
// entry; on return c.token sits on the expression's last token.
func (c *Compiler) parseExpression() (Expr, error) {
	return c.parseLogicalOr()
}

// binaryLevel parses one precedence level: it calls next for each operand
// and, while the lookahead token's kind is one of ops, consumes the
// operator and right operand and folds them together with combine, which
// receives the matched operator's token kind alongside both operands.
func (c *Compiler) binaryLevel(next func() (Expr, error), ops map[token.Kind]bool, combine func(op token.Kind, left, right *frag.Fragment) (*frag.Fragment, error)) (Expr, error) {
	left, err := next()
	if err != nil {
		return Expr{}, err
	}
	for ops[c.peekToken.Kind] {
		op := c.peekToken.Kind
		if err := c.nextToken(); err != nil { // operator
			return Expr{}, err
		}
		if err := c.nextToken(); err != nil { // first token of rhs
			return Expr{}, err
		}
		right, err := next()
		if err != nil {
			return Expr{}, err
		}
		leftFrag, err := left.value()
		if err != nil {
			return Expr{}, err
		}
		rightFrag, err := right.value()
		if err != nil {
			return Expr{}, err
		}
		merged, err := combine(op, leftFrag, rightFrag)
		if err != nil {
			return Expr{}, err
		}
		left = valueExpr(merged)
	}
	return left, nil
}

func (c *Compiler) parseLogicalOr() (Expr, error) {
	return c.binaryLevel(c.parseLogicalAnd, map[token.Kind]bool{token.LOGOR: true},
		func(_ token.Kind, left, right *frag.Fragment) (*frag.Fragment, error) { return emitOr(left, right) })
}

func (c *Compiler) parseLogicalAnd() (Expr, error) {
	return c.binaryLevel(c.parseBitOr, map[token.Kind]bool{token.LOGAND: true},
		func(_ token.Kind, left, right *frag.Fragment) (*frag.Fragment, error) { return emitAnd(left, right) })
}

func (c *Compiler) parseBitOr() (Expr, error) {
	return c.binaryLevel(c.parseBitXor, map[token.Kind]bool{token.BITOR: true}, opCombine)
}

func (c *Compiler) parseBitXor() (Expr, error) {
	return c.binaryLevel(c.parseBitAnd, map[token.Kind]bool{token.XOR: true}, opCombine)
}

func (c *Compiler) parseBitAnd() (Expr, error) {
	return c.binaryLevel(c.parseEquality, map[token.Kind]bool{token.BITAND: true}, opCombine)
}

func (c *Compiler) parseEquality() (Expr, error) {
	return c.binaryLevel(c.parseRelational, map[token.Kind]bool{token.EQ: true, token.NE: true}, opCombine)
}

func (c *Compiler) parseRelational() (Expr, error) {
	return c.binaryLevel(c.parseShift, map[token.Kind]bool{token.GT: true, token.LT: true, token.GE: true, token.LE: true}, opCombine)
}

func (c *Compiler) parseShift() (Expr, error) {
	return c.binaryLevel(c.parseAdditive, map[token.Kind]bool{token.SHL: true, token.SHR: true}, opCombine)
}

func (c *Compiler) parseAdditive() (Expr, error) {
	return c.binaryLevel(c.parseMultiplicative, map[token.Kind]bool{token.PLUS: true, token.MINUS: true}, opCombine)
}

func (c *Compiler) parseMultiplicative() (Expr, error) {
	return c.binaryLevel(c.parseUnary, map[token.Kind]bool{token.TIMES: true, token.SLASH: true, token.MOD: true}, opCombine)
}

// opCombine looks the matched operator up in binaryOpcode and emits the
// plain (non-short-circuiting) two-operand lowering.
func opCombine(op token.Kind, left, right *frag.Fragment) (*frag.Fragment, error) {
	code, ok := binaryOpcode[op]
	if !ok {
		return nil, fmt.Errorf("internal: no opcode for operator %s", op)
	}
	return emitBinary(left, right, code)
}

func emitBinary(left, right *frag.Fragment, op byte) (*frag.Fragment, error) {
	return left.AppendAll(right, frag.Bytes(op))
}

// emitJump builds a single JUMP-family instruction with its 4-byte operand
// registered as a relocation to target.
func emitJump(op byte, target frag.Symbol) *frag.Fragment {
	f := frag.Bytes(op, 0, 0, 0, 0)
	f.Reloc(1, target)
	return f
}

func emitAnd(left, right *frag.Fragment) (*frag.Fragment, error) {
	end := frag.NewSymbol()
	out, err := left.AppendAll(
		frag.Bytes(opcode.ST_DUP),
		frag.Bytes(opcode.OP_NOT),
		emitJump(opcode.JUMP_IF, end),
		frag.Bytes(opcode.ST_POP),
		right,
	)
	if err != nil {
		return nil, err
	}
	out.Mark(end)
	return out, nil
}

func emitOr(left, right *frag.Fragment) (*frag.Fragment, error) {
	end := frag.NewSymbol()
	out, err := left.AppendAll(
		frag.Bytes(opcode.ST_DUP),
		emitJump(opcode.JUMP_IF, end),
		frag.Bytes(opcode.ST_POP),
		right,
	)
	if err != nil {
		return nil, err
	}
	out.Mark(end)
	return out, nil
}

// parseUnary handles prefix `-`, `!`, `~`, and the no-op prefix `+`.
func (c *Compiler) parseUnary() (Expr, error) {
	switch c.token.Kind {
	case token.MINUS, token.NOT, token.INV:
		opTok := c.token.Kind
		if err := c.nextToken(); err != nil {
			return Expr{}, err
		}
		operand, err := c.parseUnary()
		if err != nil {
			return Expr{}, err
		}
		v, err := operand.value()
		if err != nil {
			return Expr{}, err
		}
		var op byte
		switch opTok {
		case token.MINUS:
			op = opcode.OP_NEG
		case token.NOT:
			op = opcode.OP_NOT
		case token.INV:
			op = opcode.OP_INV
		}
		merged, err := v.Append(frag.Bytes(op))
		if err != nil {
			return Expr{}, err
		}
		return valueExpr(merged), nil
	case token.PLUS:
		if err := c.nextToken(); err != nil {
			return Expr{}, err
		}
		return c.parseUnary()
	default:
		return c.parsePostfix()
	}
}

// parsePostfix handles call, attribute, item, and slice suffixes chained
// onto a primary expression.
func (c *Compiler) parsePostfix() (Expr, error) {
	expr, err := c.parsePrimary()
	if err != nil {
		return Expr{}, err
	}

	for {
		switch c.peekToken.Kind {
		case token.DOT:
			if err := c.nextToken(); err != nil {
				return Expr{}, err
			}
			if err := c.expectPeek(token.IDENT); err != nil {
				return Expr{}, err
			}
			name := c.token.Literal
			base, err := expr.value()
			if err != nil {
				return Expr{}, err
			}
			prefix, err := base.Append(litBytes([]byte(name)))
			if err != nil {
				return Expr{}, err
			}
			expr = placeExpr(&frag.LValue{Prefix: prefix, Options: frag.OptionsAttr})
		case token.LBRACKET:
			e, err := c.parseItemOrSlice(expr)
			if err != nil {
				return Expr{}, err
			}
			expr = e
		case token.LPAREN:
			e, err := c.parseCallOrSpawn(expr, false)
			if err != nil {
				return Expr{}, err
			}
			expr = e
		default:
			return expr, nil
		}
	}
}

// parseSpawnCallee parses the callable in `spawn f(args)`: a primary
// expression followed by attribute/item suffixes, stopping before the
// final call parentheses so the caller can lower it as SPAWN instead of
// the CALL a plain parsePostfix chain would emit.
func (c *Compiler) parseSpawnCallee() (Expr, error) {
	expr, err := c.parsePrimary()
	if err != nil {
		return Expr{}, err
	}
	for {
		switch c.peekToken.Kind {
		case token.DOT:
			if err := c.nextToken(); err != nil {
				return Expr{}, err
			}
			if err := c.expectPeek(token.IDENT); err != nil {
				return Expr{}, err
			}
			name := c.token.Literal
			base, err := expr.value()
			if err != nil {
				return Expr{}, err
			}
			prefix, err := base.Append(litBytes([]byte(name)))
			if err != nil {
				return Expr{}, err
			}
			expr = placeExpr(&frag.LValue{Prefix: prefix, Options: frag.OptionsAttr})
		case token.LBRACKET:
			e, err := c.parseItemOrSlice(expr)
			if err != nil {
				return Expr{}, err
			}
			expr = e
		default:
			return expr, nil
		}
	}
}

// parseItemOrSlice parses `[k]` or `[a:b]` following base. c.token is on
// base's last token when called; c.peekToken is `[`.
func (c *Compiler) parseItemOrSlice(base Expr) (Expr, error) {
	if err := c.nextToken(); err != nil { // now on '['
		return Expr{}, err
	}
	baseFrag, err := base.value()
	if err != nil {
		return Expr{}, err
	}

	if c.peekIs(token.COLON) {
		// [:b] form, no lower bound.
		if err := c.nextToken(); err != nil { // now on ':'
			return Expr{}, err
		}
		return c.finishSlice(baseFrag, frag.Bytes(opcode.LIT_NONE))
	}

	if err := c.nextToken(); err != nil { // first token of key/lower-bound expr
		return Expr{}, err
	}
	first, err := c.parseExpression()
	if err != nil {
		return Expr{}, err
	}
	firstFrag, err := first.value()
	if err != nil {
		return Expr{}, err
	}

	if c.peekIs(token.COLON) {
		if err := c.nextToken(); err != nil { // now on ':'
			return Expr{}, err
		}
		return c.finishSlice(baseFrag, firstFrag)
	}

	if err := c.expectPeek(token.RBRACKET); err != nil {
		return Expr{}, err
	}
	prefix, err := baseFrag.AppendAll(firstFrag)
	if err != nil {
		return Expr{}, err
	}
	return placeExpr(&frag.LValue{Prefix: prefix, Options: frag.OptionsItem}), nil
}

// finishSlice parses the optional upper bound and closing `]`, given the
// base and already-parsed lower-bound fragments; c.token is on `:`.
func (c *Compiler) finishSlice(base, lower *frag.Fragment) (Expr, error) {
	var upper *frag.Fragment
	if c.peekIs(token.RBRACKET) {
		upper = frag.Bytes(opcode.LIT_NONE)
		if err := c.nextToken(); err != nil {
			return Expr{}, err
		}
	} else {
		if err := c.nextToken(); err != nil {
			return Expr{}, err
		}
		e, err := c.parseExpression()
		if err != nil {
			return Expr{}, err
		}
		upper, err = e.value()
		if err != nil {
			return Expr{}, err
		}
		if err := c.expectPeek(token.RBRACKET); err != nil {
			return Expr{}, err
		}
	}
	prefix, err := base.AppendAll(lower, upper, frag.Bytes(opcode.LIT_SLICE))
	if err != nil {
		return Expr{}, err
	}
	return placeExpr(&frag.LValue{Prefix: prefix, Options: frag.OptionsItem}), nil
}

// parseCallOrSpawn parses `(args)` following callee; spawn is true when
// lowering a `spawn f(args)` expression, which emits SPAWN instead of CALL.
func (c *Compiler) parseCallOrSpawn(callee Expr, spawn bool) (Expr, error) {
	if err := c.nextToken(); err != nil { // now on '('
		return Expr{}, err
	}
	calleeFrag, err := callee.value()
	if err != nil {
		return Expr{}, err
	}

	args, err := c.parseArgList()
	if err != nil {
		return Expr{}, err
	}

	out, err := calleeFrag.AppendAll(args...)
	if err != nil {
		return Expr{}, err
	}
	out, err = out.AppendAll(frag.Bytes(opcode.TUPLE_N), frag.New(leb128.EncodeUnsigned(uint64(len(args)))))
	if err != nil {
		return Expr{}, err
	}
	op := byte(opcode.CALL)
	if spawn {
		op = opcode.SPAWN
	}
	out, err = out.Append(frag.Bytes(op))
	if err != nil {
		return Expr{}, err
	}
	return valueExpr(out), nil
}

// parseArgList parses a parenthesized, comma-separated expression list.
// c.token is on '(' on entry; on return c.token is on the closing ')'.
func (c *Compiler) parseArgList() ([]*frag.Fragment, error) {
	var args []*frag.Fragment
	if c.peekIs(token.RPAREN) {
		if err := c.nextToken(); err != nil {
			return nil, err
		}
		return args, nil
	}
	if err := c.nextToken(); err != nil {
		return nil, err
	}
	for {
		e, err := c.parseExpression()
		if err != nil {
			return nil, err
		}
		v, err := e.value()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
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
	if err := c.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parsePrimary handles literals, parenthesized expressions, tuple
// literals, identifiers, function literals, class literals, and `spawn`.
func (c *Compiler) parsePrimary() (Expr, error) {
	switch c.token.Kind {
	case token.INT:
		return valueExpr(frag.New([]byte{opcode.LIT_INT}, leb128.EncodeSigned(c.token.Int))), nil
	case token.FLOAT:
		return valueExpr(frag.New([]byte{opcode.LIT_FLOAT}, encodeFloat64(c.token.Float))), nil
	case token.BYTES:
		return valueExpr(litBytes(c.token.Bytes)), nil
	case token.IDENT:
		return placeExpr(identPlace(c.token.Literal)), nil
	case token.LPAREN:
		if err := c.nextToken(); err != nil {
			return Expr{}, err
		}
		e, err := c.parseExpression()
		if err != nil {
			return Expr{}, err
		}
		if err := c.expectPeek(token.RPAREN); err != nil {
			return Expr{}, err
		}
		return e, nil
	case token.LBRACKET:
		return c.parseTuple()
	case token.FN:
		return c.parseFunctionLiteral()
	case token.CLASS:
		return c.parseClassLiteral()
	case token.SPAWN:
		if err := c.nextToken(); err != nil {
			return Expr{}, err
		}
		callee, err := c.parseSpawnCallee()
		if err != nil {
			return Expr{}, err
		}
		if !c.peekIs(token.LPAREN) {
			return Expr{}, fmt.Errorf("line %d: spawn requires a call expression", c.peekToken.Line)
		}
		return c.parseCallOrSpawn(callee, true)
	default:
		return Expr{}, fmt.Errorf("line %d: unexpected token %s in expression", c.token.Line, c.token.Kind)
	}
}

// parseTuple parses `[e1, …, eN]`. c.token is on the opening '['.
func (c *Compiler) parseTuple() (Expr, error) {
	var elems []*frag.Fragment
	if c.peekIs(token.RBRACKET) {
		if err := c.nextToken(); err != nil {
			return Expr{}, err
		}
	} else {
		if err := c.nextToken(); err != nil {
			return Expr{}, err
		}
		for {
			e, err := c.parseExpression()
			if err != nil {
				return Expr{}, err
			}
			v, err := e.value()
			if err != nil {
				return Expr{}, err
			}
			elems = append(elems, v)
			if c.peekIs(token.COMMA) {
				if err := c.nextToken(); err != nil {
					return Expr{}, err
				}
				if err := c.nextToken(); err != nil {
					return Expr{}, err
				}
				continue
			}
			break
		}
		if err := c.expectPeek(token.RBRACKET); err != nil {
			return Expr{}, err
		}
	}

	out := frag.Empty()
	var err error
	for _, elem := range elems {
		if out, err = out.Append(elem); err != nil {
			return Expr{}, err
		}
	}
	out, err = out.AppendAll(frag.Bytes(opcode.TUPLE_N), frag.New(leb128.EncodeUnsigned(uint64(len(elems)))))
	if err != nil {
		return Expr{}, err
	}
	return valueExpr(out), nil
}

// encodeFloat64 renders f as an 8-byte little-endian IEEE-754 double.
func encodeFloat64(f float64) []byte {
	bits := math.Float64bits(f)
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(bits >> (8 * i))
	}
	return out
}
