// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox

import (
	"strconv"

	"github.com/dmajere/golox/token"
)

// Precedence is the binding power of an operator in the Pratt parser.
type Precedence int

// List of precedences, lowest first
const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   Precedence
}

var parseRules map[token.Type]parseRule

// the table references the parse functions and they recurse back through it
func init() {
	parseRules = map[token.Type]parseRule{
		token.LParen:       {(*Compiler).grouping, (*Compiler).call, PrecCall},
		token.Dot:          {nil, (*Compiler).dot, PrecCall},
		token.Minus:        {(*Compiler).unary, (*Compiler).binary, PrecTerm},
		token.Plus:         {nil, (*Compiler).binary, PrecTerm},
		token.Slash:        {nil, (*Compiler).binary, PrecFactor},
		token.Star:         {nil, (*Compiler).binary, PrecFactor},
		token.Bang:         {(*Compiler).unary, nil, PrecNone},
		token.BangEqual:    {nil, (*Compiler).binary, PrecEquality},
		token.EqualEqual:   {nil, (*Compiler).binary, PrecEquality},
		token.Greater:      {nil, (*Compiler).binary, PrecComparison},
		token.GreaterEqual: {nil, (*Compiler).binary, PrecComparison},
		token.Less:         {nil, (*Compiler).binary, PrecComparison},
		token.LessEqual:    {nil, (*Compiler).binary, PrecComparison},
		token.Ident:        {(*Compiler).variable, nil, PrecNone},
		token.String:       {(*Compiler).stringLit, nil, PrecNone},
		token.Number:       {(*Compiler).number, nil, PrecNone},
		token.And:          {nil, (*Compiler).and, PrecAnd},
		token.Or:           {nil, (*Compiler).or, PrecOr},
		token.True:         {(*Compiler).literal, nil, PrecNone},
		token.False:        {(*Compiler).literal, nil, PrecNone},
		token.Nil:          {(*Compiler).literal, nil, PrecNone},
		token.This:         {(*Compiler).this, nil, PrecNone},
		token.Super:        {(*Compiler).super, nil, PrecNone},
	}
}

func getRule(t token.Type) parseRule { return parseRules[t] }

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// parsePrecedence parses at the given precedence or tighter. Assignment is
// only permitted when the whole expression parsed so far can be a target,
// which the prefix and infix handlers learn through canAssign.
func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.s.Previous().Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.s.Current().Type).prec {
		c.advance()
		infix := getRule(c.s.Previous().Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(bool) {
	c.expression()
	c.consume(token.RParen, "Expect ')' after expression.")
}

func (c *Compiler) number(bool) {
	f, err := strconv.ParseFloat(c.s.Previous().Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emit(OpConstant, c.makeConstant(Number(f)))
}

func (c *Compiler) stringLit(bool) {
	c.emit(OpConstant, c.makeConstant(String(c.s.Previous().Lexeme)))
}

func (c *Compiler) literal(bool) {
	switch c.s.Previous().Type {
	case token.True:
		c.emit(OpTrue)
	case token.False:
		c.emit(OpFalse)
	case token.Nil:
		c.emit(OpNil)
	}
}

func (c *Compiler) unary(bool) {
	op := c.s.Previous().Type
	c.parsePrecedence(PrecUnary)
	switch op {
	case token.Minus:
		c.emit(OpNegate)
	case token.Bang:
		c.emit(OpNot)
	}
}

func (c *Compiler) binary(bool) {
	op := c.s.Previous().Type
	c.parsePrecedence(getRule(op).prec + 1)

	switch op {
	case token.Plus:
		c.emit(OpAdd)
	case token.Minus:
		c.emit(OpSubtract)
	case token.Star:
		c.emit(OpMultiply)
	case token.Slash:
		c.emit(OpDivide)
	case token.BangEqual:
		c.emit(OpNotEqual)
	case token.EqualEqual:
		c.emit(OpEqual)
	case token.Greater:
		c.emit(OpGreater)
	case token.GreaterEqual:
		c.emit(OpGreaterEqual)
	case token.Less:
		c.emit(OpLess)
	case token.LessEqual:
		c.emit(OpLessEqual)
	}
}

// and short-circuits: the left operand is peeked by the jump, popped when
// evaluation continues into the right operand.
func (c *Compiler) and(bool) {
	endJump := c.emitJump(OpJumpFalsy)
	c.emit(OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(bool) {
	elseJump := c.emitJump(OpJumpFalsy)
	endJump := c.emitJump(OpJump)
	c.patchJump(elseJump)
	c.emit(OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(bool) {
	argc := c.argumentList()
	c.emit(OpCall, argc)
}

func (c *Compiler) argumentList() int {
	count := 0
	if !c.s.Check(token.RParen) {
		for ok := true; ok; ok = c.match(token.Comma) {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			count++
		}
	}
	c.consume(token.RParen, "Expect ')' after arguments.")
	return count
}

// dot handles property reads, property assignment and the fused
// property-access-then-call form.
func (c *Compiler) dot(canAssign bool) {
	nameTok := c.consume(token.Ident, "Expect property name after '.'.")
	nameConst := c.identifierConstant(nameTok.Lexeme)

	switch {
	case canAssign && c.match(token.Equal):
		c.expression()
		c.emit(OpSetProperty, nameConst)
	case c.match(token.LParen):
		argc := c.argumentList()
		c.emit(OpInvoke, nameConst, argc)
	default:
		c.emit(OpGetProperty, nameConst)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.s.Previous(), canAssign)
}

// namedVariable resolves an identifier to a local slot, an upvalue or a
// global name and emits the matching get or set.
func (c *Compiler) namedVariable(tok token.Token, canAssign bool) {
	var getOp, setOp Opcode
	var arg int

	slot, ownInit := c.ctx.scope.Resolve(tok.Lexeme)
	switch {
	case slot != -1:
		getOp, setOp = OpGetLocal, OpSetLocal
		arg = slot
	case ownInit:
		c.errorAt(tok, "Can't read local variable in its own initializer.")
		return
	default:
		if uv := c.resolveUpvalue(c.ctx, tok.Lexeme); uv != -1 {
			getOp, setOp = OpGetUpvalue, OpSetUpvalue
			arg = uv
		} else {
			getOp, setOp = OpGetGlobal, OpSetGlobal
			arg = c.identifierConstant(tok.Lexeme)
		}
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emit(setOp, arg)
	} else {
		c.emit(getOp, arg)
	}
}

// resolveUpvalue searches the enclosing function for the name. A hit on an
// enclosing local marks it captured and records a local descriptor; a hit
// further out arrives as an upvalue of the enclosing closure.
func (c *Compiler) resolveUpvalue(ctx *funcContext, name string) int {
	if ctx.parent == nil {
		return -1
	}
	if slot, _ := ctx.parent.scope.Resolve(name); slot != -1 {
		ctx.parent.scope.Capture(slot)
		return c.addUpvalue(ctx, slot, true)
	}
	if uv := c.resolveUpvalue(ctx.parent, name); uv != -1 {
		return c.addUpvalue(ctx, uv, false)
	}
	return -1
}

func (c *Compiler) addUpvalue(ctx *funcContext, index int, isLocal bool) int {
	chunk := ctx.fn.Chunk
	for i, d := range chunk.Upvalues {
		if d.Index == byte(index) && d.IsLocal == isLocal {
			return i
		}
	}
	if len(chunk.Upvalues) == 255 {
		c.error("Too many closure variables in function.")
		return 0
	}
	chunk.Upvalues = append(chunk.Upvalues, UpvalueDesc{Index: byte(index), IsLocal: isLocal})
	return len(chunk.Upvalues) - 1
}

func (c *Compiler) this(bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super(bool) {
	switch {
	case c.class == nil:
		c.error("Can't use 'super' outside of a class.")
	case !c.class.hasSuper:
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.Dot, "Expect '.' after 'super'.")
	nameTok := c.consume(token.Ident, "Expect superclass method name.")
	nameConst := c.identifierConstant(nameTok.Lexeme)

	thisTok := token.Token{Type: token.Ident, Lexeme: "this", Line: nameTok.Line}
	superTok := token.Token{Type: token.Ident, Lexeme: "super", Line: nameTok.Line}

	c.namedVariable(thisTok, false)
	if c.match(token.LParen) {
		argc := c.argumentList()
		c.namedVariable(superTok, false)
		c.emit(OpSuperInvoke, nameConst, argc)
	} else {
		c.namedVariable(superTok, false)
		c.emit(OpGetSuper, nameConst)
	}
}
