// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/dmajere/golox"
	"github.com/dmajere/golox/token"
)

func TestScannerTokens(t *testing.T) {
	expectTokens(t, `( ) { } , . - + ; / * ! = > < ? :`,
		token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Slash, token.Star, token.Bang, token.Equal, token.Greater,
		token.Less, token.Question, token.Colon)

	expectTokens(t, `!= == >= <= += -= *= /= ++ --`,
		token.BangEqual, token.EqualEqual, token.GreaterEqual,
		token.LessEqual, token.PlusEqual, token.MinusEqual,
		token.StarEqual, token.SlashEqual, token.PlusPlus, token.MinusMinus)

	expectTokens(t,
		`and class else false fun for if nil or print return super this true var while`,
		token.And, token.Class, token.Else, token.False, token.Fun,
		token.For, token.If, token.Nil, token.Or, token.Print, token.Return,
		token.Super, token.This, token.True, token.Var, token.While)

	expectTokens(t, `foo _ignored x1 andx classes`,
		token.Ident, token.Illegal, token.Ident, token.Ident, token.Ident,
		token.Ident)
}

func TestScannerNumbers(t *testing.T) {
	s := NewScanner([]byte(`1 12.5 0.25 7.`))
	require.Equal(t, "1", s.Advance().Lexeme)
	require.Equal(t, "12.5", s.Advance().Lexeme)
	require.Equal(t, "0.25", s.Advance().Lexeme)

	// the trailing dot is not part of the number
	tok := s.Advance()
	require.Equal(t, token.Number, tok.Type)
	require.Equal(t, "7", tok.Lexeme)
	require.Equal(t, token.Dot, s.Advance().Type)
	require.True(t, s.IsAtEnd())
}

func TestScannerStrings(t *testing.T) {
	s := NewScanner([]byte(`"hello" "" "a b"`))
	require.Equal(t, "hello", s.Advance().Lexeme)
	require.Equal(t, "", s.Advance().Lexeme)
	require.Equal(t, "a b", s.Advance().Lexeme)

	// a backslash keeps the next character raw, including a quote
	s = NewScanner([]byte(`"a\"b"`))
	tok := s.Advance()
	require.Equal(t, token.String, tok.Type)
	require.Equal(t, `a\"b`, tok.Lexeme)

	s = NewScanner([]byte(`"unterminated`))
	tok = s.Advance()
	require.Equal(t, token.Illegal, tok.Type)
	require.Equal(t, "Unterminated string.", tok.Lexeme)
}

func TestScannerComments(t *testing.T) {
	expectTokens(t, "1 // comment to end of line\n2",
		token.Number, token.Number)
	expectTokens(t, "1 /* block\ncomment */ 2",
		token.Number, token.Number)

	s := NewScanner([]byte("/* never closed"))
	tok := s.Current()
	require.Equal(t, token.Illegal, tok.Type)
	require.Equal(t, "Unterminated block comment.", tok.Lexeme)
}

func TestScannerLines(t *testing.T) {
	s := NewScanner([]byte("one\ntwo\n\nfour"))
	require.Equal(t, 1, s.Advance().Line)
	require.Equal(t, 2, s.Advance().Line)
	require.Equal(t, 4, s.Advance().Line)

	// newlines inside block comments count
	s = NewScanner([]byte("/* a\nb */ x"))
	require.Equal(t, 2, s.Advance().Line)
}

func TestScannerCursor(t *testing.T) {
	s := NewScanner([]byte(`var x = 1;`))

	require.True(t, s.Check(token.Var))
	require.False(t, s.Check(token.Ident))
	require.True(t, s.Match(token.Var))
	require.Equal(t, token.Var, s.Previous().Type)
	require.Equal(t, token.Ident, s.Current().Type)

	tok, cerr := s.Consume(token.Ident, "Expect variable name.")
	require.Nil(t, cerr)
	require.Equal(t, "x", tok.Lexeme)

	_, cerr = s.Consume(token.Semicolon, "Expect ';'.")
	require.NotNil(t, cerr)
	require.Contains(t, cerr.Error(), "Expect ';'.")
	require.Equal(t, "=", cerr.Lexeme)

	require.True(t, s.Match(token.Equal))
	require.True(t, s.Match(token.Number))
	require.True(t, s.Match(token.Semicolon))
	require.True(t, s.IsAtEnd())
}

func TestScannerSynchronize(t *testing.T) {
	// stops just past a semicolon
	s := NewScanner([]byte(`+ + + ; print 1;`))
	s.Advance()
	s.Synchronize()
	require.Equal(t, token.Print, s.Current().Type)

	// or at the next declaration keyword
	s = NewScanner([]byte(`+ + + var x;`))
	s.Advance()
	s.Synchronize()
	require.Equal(t, token.Var, s.Current().Type)

	// or at end of input
	s = NewScanner([]byte(`+ + +`))
	s.Advance()
	s.Synchronize()
	require.True(t, s.IsAtEnd())
}

func expectTokens(t *testing.T, src string, expect ...token.Type) {
	t.Helper()
	s := NewScanner([]byte(src))
	var got []token.Type
	for !s.IsAtEnd() {
		got = append(got, s.Advance().Type)
	}
	require.Equal(t, expect, got, "source: %s", src)
}
