// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox

import (
	"fmt"
	"io"
	"strconv"
)

const mainName = "<script>"

// UpvalueDesc describes one captured variable of a function. Index refers to
// a local slot of the enclosing function when IsLocal is set, otherwise to an
// upvalue of the enclosing closure.
type UpvalueDesc struct {
	Index   byte
	IsLocal bool
}

// Chunk is the compiled unit of one function: code bytes, a line number per
// byte, the constant pool and the upvalue descriptors. Chunks are immutable
// after compilation.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Object
	Upvalues  []UpvalueDesc

	constsCache map[Object]int
}

// NewChunk creates an empty Chunk.
func NewChunk() *Chunk {
	return &Chunk{constsCache: make(map[Object]int)}
}

// write appends a single byte keeping the line table in step.
func (c *Chunk) write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends a value to the constant pool and returns its index.
// Numbers, booleans, strings and nil are deduplicated by value; other kinds are
// always appended. The caller checks the pool limit.
func (c *Chunk) AddConstant(obj Object) int {
	switch obj.(type) {
	case Number, String, Bool, nilValue:
		if i, ok := c.constsCache[obj]; ok {
			return i
		}
	default:
		c.Constants = append(c.Constants, obj)
		return len(c.Constants) - 1
	}
	c.Constants = append(c.Constants, obj)
	i := len(c.Constants) - 1
	c.constsCache[obj] = i
	return i
}

// Fprint writes a human readable listing of the chunk to w.
func (c *Chunk) Fprint(w io.Writer, name string) {
	_, _ = fmt.Fprintf(w, "== %s ==\n", name)
	var operands []int
	i := 0
	for i < len(c.Code) {
		i = c.fprintInstruction(w, i, &operands)
	}
}

func (c *Chunk) fprintInstruction(w io.Writer, pos int, operands *[]int) int {
	op := c.Code[pos]
	if pos > 0 && c.Lines[pos] == c.Lines[pos-1] {
		_, _ = fmt.Fprintf(w, "%04d    | ", pos)
	} else {
		_, _ = fmt.Fprintf(w, "%04d %4d ", pos, c.Lines[pos])
	}

	var offset int
	*operands, offset = ReadOperands(OpcodeOperands[op], c.Code[pos+1:], *operands)
	_, _ = fmt.Fprintf(w, "%-12s", OpcodeNames[op])
	for _, r := range *operands {
		_, _ = fmt.Fprint(w, "    ", strconv.Itoa(r))
	}

	switch op {
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal,
		OpGetProperty, OpSetProperty, OpClass, OpMethod, OpGetSuper:
		_, _ = fmt.Fprintf(w, "    ; %s", c.constantString((*operands)[0]))
	case OpInvoke, OpSuperInvoke:
		_, _ = fmt.Fprintf(w, "    ; %s", c.constantString((*operands)[0]))
	case OpClosure:
		fn, ok := c.Constants[(*operands)[0]].(*Function)
		_, _ = fmt.Fprintf(w, "    ; %s", c.constantString((*operands)[0]))
		if ok {
			// variable part: one (isLocal, index) pair per upvalue
			for range fn.Chunk.Upvalues {
				isLocal := c.Code[pos+1+offset]
				index := c.Code[pos+2+offset]
				offset += 2
				kind := "upvalue"
				if isLocal == 1 {
					kind = "local"
				}
				_, _ = fmt.Fprintf(w, " %s:%d", kind, index)
			}
		}
	}
	_, _ = fmt.Fprintln(w)
	return pos + 1 + offset
}

func (c *Chunk) constantString(idx int) string {
	if idx < 0 || idx >= len(c.Constants) {
		return "?"
	}
	if s, ok := c.Constants[idx].(String); ok {
		return s.Quoted()
	}
	return c.Constants[idx].String()
}

// Fprint writes a listing of the function and every nested function to w.
func (f *Function) Fprint(w io.Writer) {
	name := f.Name
	if name == "" {
		name = mainName
	}
	_, _ = fmt.Fprintf(w, "Arity:%d Upvalues:%d\n", f.Arity, len(f.Chunk.Upvalues))
	f.Chunk.Fprint(w, name)
	for _, obj := range f.Chunk.Constants {
		if fn, ok := obj.(*Function); ok {
			fn.Fprint(w)
		}
	}
}
