// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/dmajere/golox"
)

func TestChunkConstants(t *testing.T) {
	c := NewChunk()
	require.Equal(t, 0, c.AddConstant(Number(1)))
	require.Equal(t, 1, c.AddConstant(Number(2)))
	require.Equal(t, 0, c.AddConstant(Number(1)))
	require.Equal(t, 2, c.AddConstant(String("1")))
	require.Equal(t, 2, c.AddConstant(String("1")))
	require.Equal(t, 3, c.AddConstant(True))

	// functions are never deduplicated
	fn := &Function{Name: "f", Chunk: NewChunk()}
	require.Equal(t, 4, c.AddConstant(fn))
	require.Equal(t, 5, c.AddConstant(fn))
}

func TestChunkDisassembly(t *testing.T) {
	fn, err := Compile([]byte("var x = 1;\nprint x;\n"), DefaultCompilerOptions)
	require.NoError(t, err)

	var sb strings.Builder
	fn.Fprint(&sb)
	listing := sb.String()

	require.Contains(t, listing, "== <script> ==")
	require.Contains(t, listing, "CONSTANT")
	require.Contains(t, listing, `; "x"`)
	require.Contains(t, listing, "DEFINEGLOBAL")
	require.Contains(t, listing, "GETGLOBAL")
	require.Contains(t, listing, "PRINT")
	require.Contains(t, listing, "RETURN")
}

func TestChunkDisassemblyNestedFunctions(t *testing.T) {
	fn, err := Compile(
		[]byte(`fun outer() { var x = 1; fun inner() { return x; } return inner; }`),
		DefaultCompilerOptions)
	require.NoError(t, err)

	var sb strings.Builder
	fn.Fprint(&sb)
	listing := sb.String()

	require.Contains(t, listing, "== outer ==")
	require.Contains(t, listing, "== inner ==")
	// the CLOSURE line of inner shows its captured local
	require.Contains(t, listing, "local:1")
	require.Contains(t, listing, "GETUPVALUE")
}

func TestReadOperands(t *testing.T) {
	inst := MakeInstruction(OpInvoke, 3, 2)
	operands, offset := ReadOperands(OpcodeOperands[OpInvoke], inst[1:], nil)
	require.Equal(t, []int{3, 2}, operands)
	require.Equal(t, 2, offset)

	inst = MakeInstruction(OpJump, 65535)
	operands, offset = ReadOperands(OpcodeOperands[OpJump], inst[1:], operands)
	require.Equal(t, []int{65535}, operands)
	require.Equal(t, 2, offset)

	inst = MakeInstruction(OpPop)
	operands, offset = ReadOperands(OpcodeOperands[OpPop], inst[1:], operands)
	require.Empty(t, operands)
	require.Equal(t, 0, offset)
}
