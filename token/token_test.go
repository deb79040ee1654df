// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	require.Equal(t, Class, Lookup("class"))
	require.Equal(t, While, Lookup("while"))
	require.Equal(t, Ident, Lookup("classes"))
	require.Equal(t, Ident, Lookup("Class"))
	require.Equal(t, Ident, Lookup(""))
}

func TestTypePredicates(t *testing.T) {
	for _, typ := range []Type{Ident, String, Number} {
		require.True(t, typ.IsLiteral(), typ.String())
		require.False(t, typ.IsKeyword(), typ.String())
	}
	for _, typ := range []Type{LParen, Dot, BangEqual, PlusEqual} {
		require.True(t, typ.IsOperator(), typ.String())
	}
	for _, word := range Keywords() {
		require.True(t, Lookup(word).IsKeyword(), word)
	}
	require.Len(t, Keywords(), 16)
	require.False(t, EOF.IsLiteral())
	require.False(t, EOF.IsOperator())
	require.False(t, EOF.IsKeyword())
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "(", LParen.String())
	require.Equal(t, "!=", BangEqual.String())
	require.Equal(t, "class", Class.String())
	require.Equal(t, "IDENT", Ident.String())
	require.Equal(t, "EOF", EOF.String())
}

func TestTokenString(t *testing.T) {
	require.Equal(t, "NUMBER(1.5)", Token{Type: Number, Lexeme: "1.5"}.String())
	require.Equal(t, "class", Token{Type: Class, Lexeme: "class"}.String())
}
