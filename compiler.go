// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox

import (
	"errors"
	"io"
	"math"

	"github.com/dmajere/golox/token"
)

// FuncType tells the compiler what kind of callable it is emitting; it
// changes slot 0 naming, implicit returns and 'this' legality.
type FuncType int

// List of function kinds
const (
	FuncScript FuncType = iota
	FuncFunction
	FuncMethod
	FuncInitializer
)

// CompilerOptions represents customizable options for Compile().
type CompilerOptions struct {
	// Trace is the destination of trace output.
	Trace io.Writer
	// TraceCompiler writes a listing of every compiled function to Trace.
	TraceCompiler bool
}

// DefaultCompilerOptions holds default Compiler options.
var DefaultCompilerOptions = CompilerOptions{}

// funcContext is the per function compile state. Nested function literals
// push a new context whose parent is the enclosing one; upvalue resolution
// walks this chain.
type funcContext struct {
	parent  *funcContext
	fn      *Function
	fnType  FuncType
	scope   *Scope
	lastOp  Opcode
	hasCode bool
}

func newFuncContext(parent *funcContext, fnType FuncType, name string) *funcContext {
	slotZero := ""
	if fnType == FuncMethod || fnType == FuncInitializer {
		slotZero = "this"
	}
	return &funcContext{
		parent: parent,
		fn:     &Function{Name: name, Chunk: NewChunk()},
		fnType: fnType,
		scope:  NewScope(slotZero),
	}
}

// classContext tracks the innermost class declaration being compiled, for
// 'this' and 'super' legality checks.
type classContext struct {
	parent   *classContext
	hasSuper bool
}

// Compiler is a single pass parser and bytecode emitter. It owns the token
// cursor and a stack of function contexts; expressions are parsed with Pratt
// precedence rules and emitted directly into the current function's chunk.
type Compiler struct {
	s         *Scanner
	ctx       *funcContext
	class     *classContext
	errors    ErrorList
	panicMode bool
	trace     io.Writer
}

// Compile compiles source into the top level script function. On any compile
// error it keeps parsing to collect further errors and returns the full list.
func Compile(src []byte, opts CompilerOptions) (*Function, error) {
	c := &Compiler{s: NewScanner(src)}
	if opts.TraceCompiler {
		c.trace = opts.Trace
	}
	c.ctx = newFuncContext(nil, FuncScript, mainName)
	c.drainIllegal()
	for !c.s.IsAtEnd() {
		c.declaration()
	}
	fn := c.endFunc()
	if err := c.errors.Err(); err != nil {
		return nil, err
	}
	if c.trace != nil {
		fn.Fprint(c.trace)
	}
	return fn, nil
}

// ---------------------------------------------------------
// cursor and error plumbing

// advance consumes the current token, reporting and skipping any lexical
// error tokens that follow it.
func (c *Compiler) advance() token.Token {
	prev := c.s.Advance()
	c.drainIllegal()
	return prev
}

func (c *Compiler) drainIllegal() {
	for c.s.Current().Type == token.Illegal {
		// the lexeme of an Illegal token is the scan error message
		c.report(&CompileError{Line: c.s.Current().Line, Msg: c.s.Current().Lexeme})
		c.s.Advance()
	}
}

func (c *Compiler) match(t token.Type) bool {
	if !c.s.Check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, msg string) token.Token {
	tok, cerr := c.s.Consume(t, msg)
	if cerr != nil {
		c.report(cerr)
		return tok
	}
	c.drainIllegal()
	return tok
}

// errorAt records a compile error unless the compiler is already in panic
// mode; declaration() leaves panic mode at the next statement boundary.
func (c *Compiler) errorAt(tok token.Token, msg string) {
	c.report(&CompileError{Line: tok.Line, Lexeme: tok.Lexeme, Msg: msg})
}

func (c *Compiler) report(cerr *CompileError) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.errors = append(c.errors, cerr)
}

// error reports at the just consumed token.
func (c *Compiler) error(msg string) {
	c.errorAt(c.s.Previous(), msg)
}

// ---------------------------------------------------------
// emitters

func (c *Compiler) chunk() *Chunk { return c.ctx.fn.Chunk }

// emit appends an instruction to the current chunk, recording the line of
// the just consumed token for every byte.
func (c *Compiler) emit(op Opcode, operands ...int) int {
	chunk := c.chunk()
	pos := len(chunk.Code)
	line := c.s.Previous().Line
	for _, b := range MakeInstruction(op, operands...) {
		chunk.write(b, line)
	}
	c.ctx.lastOp = op
	c.ctx.hasCode = true
	return pos
}

// emitReturn emits the implicit return: nil, or the receiver for an
// initializer.
func (c *Compiler) emitReturn() {
	if c.ctx.fnType == FuncInitializer {
		c.emit(OpGetLocal, 0)
	} else {
		c.emit(OpNil)
	}
	c.emit(OpReturn)
}

// makeConstant adds a value to the current constant pool, checking the one
// byte index limit.
func (c *Compiler) makeConstant(obj Object) int {
	idx := c.chunk().AddConstant(obj)
	if idx > math.MaxUint8 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

func (c *Compiler) identifierConstant(name string) int {
	return c.makeConstant(String(name))
}

// emitJump emits op with a placeholder offset and returns the position of
// the operand for patchJump.
func (c *Compiler) emitJump(op Opcode) int {
	return c.emit(op, 0xFFFF) + 1
}

// patchJump back-fills a forward jump operand to land after the last
// emitted instruction.
func (c *Compiler) patchJump(operandPos int) {
	chunk := c.chunk()
	jump := len(chunk.Code) - operandPos - 2
	if jump > math.MaxUint16 {
		c.error("Too much code to jump over.")
		jump = 0
	}
	chunk.Code[operandPos] = byte(jump >> 8)
	chunk.Code[operandPos+1] = byte(jump)
	// the jump lands after the last instruction, so a RETURN emitted before
	// it no longer ends every path and endFunc must still append one
	c.ctx.lastOp = OpJump
}

// emitLoop emits a backward jump to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	offset := len(c.chunk().Code) - loopStart + 3
	if offset > math.MaxUint16 {
		c.error("Loop body too large.")
		offset = 0
	}
	c.emit(OpLoop, offset)
}

// endFunc seals the current function: every body ends on RETURN.
func (c *Compiler) endFunc() *Function {
	if !c.ctx.hasCode || c.ctx.lastOp != OpReturn {
		c.emitReturn()
	}
	return c.ctx.fn
}

// ---------------------------------------------------------
// scopes and variables

func (c *Compiler) beginScope() { c.ctx.scope.Begin() }

// endScope pops the block's locals, closing the upvalues of captured ones.
func (c *Compiler) endScope() {
	for _, l := range c.ctx.scope.End() {
		if l.Captured {
			c.emit(OpCloseUpvalue)
		} else {
			c.emit(OpPop)
		}
	}
}

// parseVariable consumes an identifier and declares it. For globals it
// returns the constant index of the name; locals live on the stack and
// return 0.
func (c *Compiler) parseVariable(msg string) int {
	tok := c.consume(token.Ident, msg)
	c.declareVariable(tok)
	if c.ctx.scope.Depth() > 0 {
		return 0
	}
	return c.identifierConstant(tok.Lexeme)
}

func (c *Compiler) declareVariable(tok token.Token) {
	if c.ctx.scope.Depth() == 0 {
		return
	}
	if err := c.ctx.scope.Declare(tok.Lexeme); err != nil {
		switch {
		case errors.Is(err, errLocalRedefined):
			c.errorAt(tok, "Already a variable with this name in this scope.")
		case errors.Is(err, errTooManyLocals):
			c.errorAt(tok, "Too many local variables in function.")
		}
	}
}

func (c *Compiler) defineVariable(global int) {
	if c.ctx.scope.Depth() > 0 {
		c.ctx.scope.MarkInitialized()
		return
	}
	c.emit(OpDefineGlobal, global)
}

// ---------------------------------------------------------
// declarations and statements

func (c *Compiler) declaration() {
	switch {
	case c.match(token.Class):
		c.classDeclaration()
	case c.match(token.Fun):
		c.funDeclaration()
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.panicMode = false
		c.s.Synchronize()
		c.drainIllegal()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emit(OpNil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	if c.ctx.scope.Depth() > 0 {
		// readable in its own body, recursion works
		c.ctx.scope.MarkInitialized()
	}
	c.function(FuncFunction, c.s.Previous().Lexeme)
	c.defineVariable(global)
}

// function compiles a parameter list and body in a fresh context and emits
// the CLOSURE instruction with one (isLocal, index) byte pair per captured
// variable.
func (c *Compiler) function(fnType FuncType, name string) {
	c.ctx = newFuncContext(c.ctx, fnType, name)
	c.beginScope()

	c.consume(token.LParen, "Expect '(' after function name.")
	if !c.s.Check(token.RParen) {
		for ok := true; ok; ok = c.match(token.Comma) {
			c.ctx.fn.Arity++
			if c.ctx.fn.Arity > 255 {
				c.errorAt(c.s.Current(), "Can't have more than 255 parameters.")
			}
			param := c.parseVariable("Expect parameter name.")
			c.defineVariable(param)
		}
	}
	c.consume(token.RParen, "Expect ')' after parameters.")
	c.consume(token.LBrace, "Expect '{' before function body.")
	c.block()

	fn := c.endFunc()
	c.ctx = c.ctx.parent

	c.emit(OpClosure, c.makeConstant(fn))
	line := c.s.Previous().Line
	for _, uv := range fn.Chunk.Upvalues {
		isLocal := byte(0)
		if uv.IsLocal {
			isLocal = 1
		}
		c.chunk().write(isLocal, line)
		c.chunk().write(uv.Index, line)
	}
}

func (c *Compiler) classDeclaration() {
	nameTok := c.consume(token.Ident, "Expect class name.")
	nameConst := c.identifierConstant(nameTok.Lexeme)
	c.declareVariable(nameTok)

	c.emit(OpClass, nameConst)
	c.defineVariable(nameConst)

	c.class = &classContext{parent: c.class}

	if c.match(token.Less) {
		superTok := c.consume(token.Ident, "Expect superclass name.")
		c.namedVariable(superTok, false)
		if nameTok.Lexeme == superTok.Lexeme {
			c.errorAt(superTok, "A class can't inherit from itself.")
		}

		// 'super' lives in a scope of its own around the class body so
		// every method closes over the same slot
		c.beginScope()
		if err := c.ctx.scope.Declare("super"); err == nil {
			c.ctx.scope.MarkInitialized()
		}

		c.namedVariable(nameTok, false)
		c.emit(OpInherit)
		c.class.hasSuper = true
	}

	c.namedVariable(nameTok, false)
	c.consume(token.LBrace, "Expect '{' before class body.")
	for !c.s.Check(token.RBrace) && !c.s.IsAtEnd() {
		c.method()
	}
	c.consume(token.RBrace, "Expect '}' after class body.")
	c.emit(OpPop)

	if c.class.hasSuper {
		c.endScope()
	}
	c.class = c.class.parent
}

func (c *Compiler) method() {
	nameTok := c.consume(token.Ident, "Expect method name.")
	nameConst := c.identifierConstant(nameTok.Lexeme)
	fnType := FuncMethod
	if nameTok.Lexeme == "init" {
		fnType = FuncInitializer
	}
	c.function(fnType, nameTok.Lexeme)
	c.emit(OpMethod, nameConst)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.Return):
		c.returnStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.LBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.s.Check(token.RBrace) && !c.s.IsAtEnd() {
		c.declaration()
	}
	c.consume(token.RBrace, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emit(OpPrint)
	c.emit(OpPop)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emit(OpPop)
}

// returnStatement compiles 'return'. At the top level it is legal and ends
// the script.
func (c *Compiler) returnStatement() {
	if c.match(token.Semicolon) {
		c.emitReturn()
		return
	}
	if c.ctx.fnType == FuncInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after return value.")
	c.emit(OpReturn)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RParen, "Expect ')' after condition.")

	// the jump peeks the condition; both arms pop it
	thenJump := c.emitJump(OpJumpFalsy)
	c.emit(OpPop)
	c.statement()
	elseJump := c.emitJump(OpJump)
	c.patchJump(thenJump)
	c.emit(OpPop)
	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.consume(token.LParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RParen, "Expect ')' after condition.")

	exitJump := c.emitJump(OpJumpFalsy)
	c.emit(OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emit(OpPop)
}

// forStatement lowers 'for' onto while shape: the increment runs in a
// trampoline between body and condition so the body falls through to it.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LParen, "Expect '(' after 'for'.")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(OpJumpFalsy)
		c.emit(OpPop)
	}

	if !c.match(token.RParen) {
		bodyJump := c.emitJump(OpJump)
		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emit(OpPop)
		c.consume(token.RParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emit(OpPop)
	}
	c.endScope()
}
