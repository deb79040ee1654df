// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/dmajere/golox"
)

func TestObjectString(t *testing.T) {
	require.Equal(t, "1", Number(1).String())
	require.Equal(t, "1.5", Number(1.5).String())
	require.Equal(t, "-0.25", Number(-0.25).String())
	require.Equal(t, "true", True.String())
	require.Equal(t, "false", False.String())
	require.Equal(t, "nil", Nil.String())
	require.Equal(t, "text", String("text").String())
	require.Equal(t, `"text"`, String("text").Quoted())

	fn := &Function{Name: "f", Chunk: NewChunk()}
	require.Equal(t, "<fn f>", fn.String())
	require.Equal(t, "<fn f>", (&Closure{Fn: fn}).String())
	require.Equal(t, "<native fn clock>",
		(&NativeFunction{Name: "clock"}).String())

	class := NewClass("Box")
	require.Equal(t, "<class Box>", class.String())
	require.Equal(t, "<Box instance>", NewInstance(class).String())
}

func TestObjectEqual(t *testing.T) {
	// value kinds compare by value
	require.True(t, Number(1).Equal(Number(1)))
	require.False(t, Number(1).Equal(Number(2)))
	require.True(t, String("a").Equal(String("a")))
	require.False(t, String("a").Equal(String("b")))
	require.True(t, True.Equal(True))
	require.False(t, True.Equal(False))
	require.True(t, Nil.Equal(Nil))

	// no equality across kinds
	require.False(t, Number(1).Equal(String("1")))
	require.False(t, False.Equal(Nil))
	require.False(t, Number(0).Equal(False))

	// reference kinds compare by identity
	a := NewClass("A")
	b := NewClass("A")
	require.True(t, a.Equal(a))
	require.False(t, a.Equal(b))

	i1 := NewInstance(a)
	i2 := NewInstance(a)
	require.True(t, i1.Equal(i1))
	require.False(t, i1.Equal(i2))
}

func TestObjectIsFalsy(t *testing.T) {
	require.True(t, Nil.IsFalsy())
	require.True(t, False.IsFalsy())
	require.False(t, True.IsFalsy())
	require.False(t, Number(0).IsFalsy())
	require.False(t, String("").IsFalsy())
	require.False(t, NewClass("A").IsFalsy())
}
