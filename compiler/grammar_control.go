package compiler

import (
	"fmt"

	"bytec/frag"
	"bytec/opcode"
	"bytec/token"
)

// parseIfStatement parses an if/elif/else chain. The <end> symbol is
// minted once here and threaded through parseIfChain so every branch,
// however deep the elif chain, jumps past the whole construct.
func (c *Compiler) parseIfStatement() (*frag.Fragment, error) {
	end := frag.NewSymbol()
	out, err := c.parseIfChain(end)
	if err != nil {
		return nil, err
	}
	out.Mark(end)
	return out, nil
}

// parseIfChain handles one `if`/`elif` arm. c.token is on IF or ELIF.
func (c *Compiler) parseIfChain(end frag.Symbol) (*frag.Fragment, error) {
	if err := c.nextToken(); err != nil { // first token of condition
		return nil, err
	}
	condExpr, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	cond, err := condExpr.value()
	if err != nil {
		return nil, err
	}
	if err := c.expectPeek(token.LBRACE); err != nil {
		return nil, err
	}
	thenBody, err := c.parseBlock()
	if err != nil {
		return nil, err
	}

	tail := frag.NewSymbol()
	out, err := cond.AppendAll(
		frag.Bytes(opcode.OP_NOT),
		emitJump(opcode.JUMP_IF, tail),
		thenBody,
		emitJump(opcode.JUMP, end),
	)
	if err != nil {
		return nil, err
	}
	out.Mark(tail)

	switch {
	case c.peekIs(token.ELIF):
		if err := c.nextToken(); err != nil { // now on ELIF
			return nil, err
		}
		rest, err := c.parseIfChain(end)
		if err != nil {
			return nil, err
		}
		return out.Append(rest)
	case c.peekIs(token.ELSE):
		if err := c.nextToken(); err != nil { // now on ELSE
			return nil, err
		}
		if err := c.expectPeek(token.LBRACE); err != nil {
			return nil, err
		}
		elseBody, err := c.parseBlock()
		if err != nil {
			return nil, err
		}
		return out.Append(elseBody)
	default:
		return out, nil
	}
}

// parseWhileStatement lowers `while cond { body }` per the loop-locality
// design: mint start/end, emit the test-and-branch skeleton, then retarget
// any continue/break sentinel this loop's own body contributed.
func (c *Compiler) parseWhileStatement() (*frag.Fragment, error) {
	start := frag.NewSymbol()
	end := frag.NewSymbol()

	if err := c.nextToken(); err != nil { // first token of condition
		return nil, err
	}
	condExpr, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	cond, err := condExpr.value()
	if err != nil {
		return nil, err
	}
	if err := c.expectPeek(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := c.parseBlock()
	if err != nil {
		return nil, err
	}

	out := frag.Empty()
	out.MarkAt(start, 0)
	out, err = out.AppendAll(
		cond,
		frag.Bytes(opcode.OP_NOT),
		emitJump(opcode.JUMP_IF, end),
		body,
		emitJump(opcode.JUMP, start),
	)
	if err != nil {
		return nil, err
	}
	out.Mark(end)
	out.RetargetLoop(start, end)
	return out, nil
}

// attrCallNoArgs builds `recv.name()`: get recv's value, GET_ATTR name,
// then CALL with an empty argument tuple. Used to materialize the
// `__iter__`/`__next__` iterator protocol calls the `for` lowering needs,
// which have no surface syntax of their own.
func attrCallNoArgs(recv *frag.Fragment, name string) (*frag.Fragment, error) {
	attrPrefix, err := recv.Append(litBytes([]byte(name)))
	if err != nil {
		return nil, err
	}
	lv := frag.LValue{Prefix: attrPrefix, Options: frag.OptionsAttr}
	getFrag, err := lv.Get()
	if err != nil {
		return nil, err
	}
	return getFrag.Append(frag.Bytes(opcode.TUPLE_0, opcode.CALL))
}

// parseForStatement lowers `for x in e { body }` using the inline iterator
// protocol from the language's for-loop design: `U = e.__iter__()`, then a
// try/catch around `x = U.__next__()` whose implicit handler re-raises
// anything but the stop-iteration sentinel.
func (c *Compiler) parseForStatement() (*frag.Fragment, error) {
	if err := c.expectPeek(token.IDENT); err != nil {
		return nil, err
	}
	varName := c.token.Literal
	if err := c.expectPeek(token.IN); err != nil {
		return nil, err
	}
	if err := c.nextToken(); err != nil { // first token of iterable expr
		return nil, err
	}
	iterableExpr, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	iterable, err := iterableExpr.value()
	if err != nil {
		return nil, err
	}
	if err := c.expectPeek(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := c.parseBlock()
	if err != nil {
		return nil, err
	}

	uName := fmt.Sprintf("__for_%d", c.forCounter)
	c.forCounter++

	start := frag.NewSymbol()
	catch := frag.NewSymbol()
	end := frag.NewSymbol()

	iterCall, err := attrCallNoArgs(iterable, "__iter__")
	if err != nil {
		return nil, err
	}
	uSet, err := identPlace(uName).Set(iterCall)
	if err != nil {
		return nil, err
	}

	out := frag.Empty()
	if out, err = out.Append(uSet); err != nil {
		return nil, err
	}
	out.Mark(start)

	uGet, err := identPlace(uName).Get()
	if err != nil {
		return nil, err
	}
	nextCall, err := attrCallNoArgs(uGet, "__next__")
	if err != nil {
		return nil, err
	}
	xSet, err := identPlace(varName).Set(nextCall)
	if err != nil {
		return nil, err
	}

	out, err = out.AppendAll(
		emitJump(opcode.TRY, catch),
		xSet,
		frag.Bytes(opcode.TRY_END),
		body,
		emitJump(opcode.JUMP, start),
	)
	if err != nil {
		return nil, err
	}
	out.Mark(catch)
	out, err = out.Append(frag.Bytes(opcode.RAISE_IF_NOT_STOP))
	if err != nil {
		return nil, err
	}
	out.Mark(end)
	out.RetargetLoop(start, end)
	return out, nil
}

// parseTryStatement lowers `try { body } catch x { handler }`.
func (c *Compiler) parseTryStatement() (*frag.Fragment, error) {
	catch := frag.NewSymbol()
	end := frag.NewSymbol()

	if err := c.expectPeek(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := c.parseBlock()
	if err != nil {
		return nil, err
	}
	if err := c.expectPeek(token.CATCH); err != nil {
		return nil, err
	}
	if err := c.expectPeek(token.IDENT); err != nil {
		return nil, err
	}
	varName := c.token.Literal
	if err := c.expectPeek(token.LBRACE); err != nil {
		return nil, err
	}
	handlerBody, err := c.parseBlock()
	if err != nil {
		return nil, err
	}

	out, err := emitJump(opcode.TRY, catch).AppendAll(
		body,
		frag.Bytes(opcode.TRY_END),
		emitJump(opcode.JUMP, end),
	)
	if err != nil {
		return nil, err
	}
	out.Mark(catch)

	// The exception value is already on the stack on entry to the catch
	// block; push the variable name and ST_SWAP to bring it above the
	// name before SET_LOCAL, matching lvalue set's (prefix, value, SET)
	// shape with the value supplied by the running exception instead of
	// a parsed expression.
	out, err = out.AppendAll(litBytes([]byte(varName)), frag.Bytes(opcode.ST_SWAP, opcode.SET_LOCAL), handlerBody)
	if err != nil {
		return nil, err
	}
	out.Mark(end)
	return out, nil
}
