// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package golox

import (
	"github.com/dmajere/golox/token"
)

// Scanner produces tokens from source on demand. It keeps a one token
// lookahead window: Current is the token being considered, Previous the one
// just consumed. Lexical errors surface as Illegal tokens whose lexeme is
// the error message; the compiler reports them when it meets them.
type Scanner struct {
	src     []byte
	start   int
	current int
	line    int
	prev    token.Token
	cur     token.Token
}

// NewScanner creates a Scanner over src and primes the lookahead.
func NewScanner(src []byte) *Scanner {
	s := &Scanner{src: src, line: 1}
	s.cur = s.scanToken()
	return s
}

// Current returns the token under consideration.
func (s *Scanner) Current() token.Token { return s.cur }

// Previous returns the most recently consumed token.
func (s *Scanner) Previous() token.Token { return s.prev }

// Advance consumes the current token and returns it.
func (s *Scanner) Advance() token.Token {
	s.prev = s.cur
	s.cur = s.scanToken()
	return s.prev
}

// Check reports whether the current token has the given type.
func (s *Scanner) Check(t token.Type) bool { return s.cur.Type == t }

// Match consumes the current token if it has the given type.
func (s *Scanner) Match(t token.Type) bool {
	if !s.Check(t) {
		return false
	}
	s.Advance()
	return true
}

// Consume advances over a token of the given type or returns a CompileError
// describing what was found instead.
func (s *Scanner) Consume(t token.Type, msg string) (token.Token, *CompileError) {
	if s.Check(t) {
		return s.Advance(), nil
	}
	return s.cur, &CompileError{Line: s.cur.Line, Lexeme: s.cur.Lexeme, Msg: msg}
}

// IsAtEnd reports whether all tokens have been consumed.
func (s *Scanner) IsAtEnd() bool { return s.cur.Type == token.EOF }

// Synchronize advances to a likely statement boundary after a parse error:
// just past the next semicolon, or at the next declaration keyword.
func (s *Scanner) Synchronize() {
	for !s.IsAtEnd() {
		if s.prev.Type == token.Semicolon {
			return
		}
		switch s.cur.Type {
		case token.Class, token.For, token.Fun, token.If,
			token.Print, token.Return, token.Var, token.While:
			return
		}
		s.Advance()
	}
}

func (s *Scanner) scanToken() token.Token {
	if tok, ok := s.skipWhitespace(); !ok {
		return tok
	}
	s.start = s.current
	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advanceChar()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LParen)
	case ')':
		return s.make(token.RParen)
	case '{':
		return s.make(token.LBrace)
	case '}':
		return s.make(token.RBrace)
	case ',':
		return s.make(token.Comma)
	case '.':
		return s.make(token.Dot)
	case ':':
		return s.make(token.Colon)
	case ';':
		return s.make(token.Semicolon)
	case '?':
		return s.make(token.Question)
	case '-':
		switch {
		case s.matchChar('='):
			return s.make(token.MinusEqual)
		case s.matchChar('-'):
			return s.make(token.MinusMinus)
		}
		return s.make(token.Minus)
	case '+':
		switch {
		case s.matchChar('='):
			return s.make(token.PlusEqual)
		case s.matchChar('+'):
			return s.make(token.PlusPlus)
		}
		return s.make(token.Plus)
	case '/':
		if s.matchChar('=') {
			return s.make(token.SlashEqual)
		}
		return s.make(token.Slash)
	case '*':
		if s.matchChar('=') {
			return s.make(token.StarEqual)
		}
		return s.make(token.Star)
	case '!':
		if s.matchChar('=') {
			return s.make(token.BangEqual)
		}
		return s.make(token.Bang)
	case '=':
		if s.matchChar('=') {
			return s.make(token.EqualEqual)
		}
		return s.make(token.Equal)
	case '<':
		if s.matchChar('=') {
			return s.make(token.LessEqual)
		}
		return s.make(token.Less)
	case '>':
		if s.matchChar('=') {
			return s.make(token.GreaterEqual)
		}
		return s.make(token.Greater)
	case '"':
		return s.scanString()
	}
	return s.illegal("Unexpected character.")
}

// skipWhitespace also skips comments. It returns an Illegal token and false
// on an unterminated block comment.
func (s *Scanner) skipWhitespace() (token.Token, bool) {
	for {
		switch s.peek() {
		case ' ', '\t', '\r', 0:
			if s.atEnd() {
				return token.Token{}, true
			}
			s.current++
		case '\n':
			s.line++
			s.current++
		case '/':
			switch s.peekNext() {
			case '/':
				for !s.atEnd() && s.peek() != '\n' {
					s.current++
				}
			case '*':
				s.start = s.current
				s.current += 2
				for !s.atEnd() && !(s.peek() == '*' && s.peekNext() == '/') {
					if s.peek() == '\n' {
						s.line++
					}
					s.current++
				}
				if s.atEnd() {
					return s.illegal("Unterminated block comment."), false
				}
				s.current += 2
			default:
				return token.Token{}, true
			}
		default:
			return token.Token{}, true
		}
	}
}

func (s *Scanner) scanString() token.Token {
	for !s.atEnd() && s.peek() != '"' {
		switch s.peek() {
		case '\n':
			s.line++
		case '\\':
			// the escaped character is consumed raw
			s.current++
		}
		s.current++
	}
	if s.atEnd() {
		return s.illegal("Unterminated string.")
	}
	s.current++ // closing quote
	return token.Token{
		Type:   token.String,
		Lexeme: string(s.src[s.start+1 : s.current-1]),
		Line:   s.line,
	}
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.current++
	}
	// a trailing '.' with no fractional digit stays unconsumed
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.current++
		for isDigit(s.peek()) {
			s.current++
		}
	}
	return s.make(token.Number)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) || s.peek() == '_' {
		s.current++
	}
	lexeme := string(s.src[s.start:s.current])
	return token.Token{Type: token.Lookup(lexeme), Lexeme: lexeme, Line: s.line}
}

func (s *Scanner) make(t token.Type) token.Token {
	return token.Token{
		Type:   t,
		Lexeme: string(s.src[s.start:s.current]),
		Line:   s.line,
	}
}

func (s *Scanner) illegal(msg string) token.Token {
	return token.Token{Type: token.Illegal, Lexeme: msg, Line: s.line}
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advanceChar() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) matchChar(c byte) bool {
	if s.atEnd() || s.src[s.current] != c {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
