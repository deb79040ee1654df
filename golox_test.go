// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/dmajere/golox"
)

func TestInterpretOK(t *testing.T) {
	var out bytes.Buffer
	vm := NewVM().SetOut(&out)

	result, err := Interpret([]byte(`print "done";`), vm, DefaultCompilerOptions)
	require.NoError(t, err)
	require.Equal(t, ResultOK, result)
	require.Equal(t, 0, int(result))
	require.Equal(t, "[Out]: done\n", out.String())
}

func TestInterpretCompileError(t *testing.T) {
	vm := NewVM().SetOut(&bytes.Buffer{})

	result, err := Interpret([]byte(`print 1`), vm, DefaultCompilerOptions)
	require.Error(t, err)
	require.Equal(t, ResultCompileError, result)
	require.Equal(t, 65, int(result))
	require.True(t, IsCompileError(err))
	require.False(t, IsRuntimeError(err))
}

func TestInterpretRuntimeError(t *testing.T) {
	vm := NewVM().SetOut(&bytes.Buffer{})

	result, err := Interpret([]byte(`print x;`), vm, DefaultCompilerOptions)
	require.Error(t, err)
	require.Equal(t, ResultRuntimeError, result)
	require.Equal(t, 70, int(result))
	require.ErrorIs(t, err, ErrUndefinedGlobal)
	require.True(t, IsRuntimeError(err))
	require.False(t, IsCompileError(err))
}

func TestInterpretKeepsGlobals(t *testing.T) {
	// the REPL feeds one VM line by line
	var out bytes.Buffer
	vm := NewVM().SetOut(&out)

	for _, line := range []string{
		`var count = 0;`,
		`fun next() { count = count + 1; return count; }`,
		`print next();`,
		`print next();`,
	} {
		result, err := Interpret([]byte(line), vm, DefaultCompilerOptions)
		require.NoError(t, err)
		require.Equal(t, ResultOK, result)
	}
	require.Equal(t, "[Out]: 1\n[Out]: 2\n", out.String())
}
