// Package scanner turns source bytes into a stream of positioned tokens.
//
// The Scanner is stateless beyond a byte cursor: Peek is implemented by
// saving the cursor, calling Advance, and restoring the cursor, rather than
// by caching a lookahead token.
package scanner

import (
	"github.com/sam-decook/loxi/internal/token"
)

// Scanner lexes an in-memory source buffer.
type Scanner struct {
	src  []byte
	pos  int
	line int
	col  int
}

// New returns a Scanner positioned at the start of src.
func New(src []byte) *Scanner {
	return &Scanner{src: src, pos: 0, line: 1, col: 1}
}

func (s *Scanner) atEnd() bool {
	return s.pos >= len(s.src)
}

func (s *Scanner) cur() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.pos]
}

func (s *Scanner) at(offset int) byte {
	i := s.pos + offset
	if i < 0 || i >= len(s.src) {
		return 0
	}
	return s.src[i]
}

// advanceByte consumes and returns the current byte, updating line/col.
func (s *Scanner) advanceByte() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

func isLineTerminator(c byte) bool {
	return c == '\n' || c == '\r'
}

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() token.Token {
	savedPos, savedLine, savedCol := s.pos, s.line, s.col
	t := s.Advance()
	s.pos, s.line, s.col = savedPos, savedLine, savedCol
	return t
}

// Advance consumes and returns the next token. At end of input it returns an
// EOF token repeatedly.
func (s *Scanner) Advance() token.Token {
	s.skipWhitespaceAndComments()

	start, line, col := s.pos, s.line, s.col

	if s.atEnd() {
		return token.Token{Kind: token.EOF, Start: start, Line: line, Col: col}
	}

	c := s.advanceByte()

	simple := func(k token.Kind) token.Token {
		return token.Token{Kind: k, Start: start, Len: s.pos - start, Line: line, Col: col}
	}

	switch c {
	case '(':
		return simple(token.LeftParen)
	case ')':
		return simple(token.RightParen)
	case '{':
		return simple(token.LeftBrace)
	case '}':
		return simple(token.RightBrace)
	case ',':
		return simple(token.Comma)
	case '.':
		return simple(token.Dot)
	case '-':
		return simple(token.Minus)
	case '+':
		return simple(token.Plus)
	case ';':
		return simple(token.Semicolon)
	case '*':
		return simple(token.Star)
	case '/':
		return simple(token.Slash)
	case '=':
		if s.cur() == '=' {
			s.advanceByte()
			return simple(token.EqualEqual)
		}
		return simple(token.Equal)
	case '!':
		if s.cur() == '=' {
			s.advanceByte()
			return simple(token.BangEqual)
		}
		return simple(token.Bang)
	case '<':
		if s.cur() == '=' {
			s.advanceByte()
			return simple(token.LessEqual)
		}
		return simple(token.Less)
	case '>':
		if s.cur() == '=' {
			s.advanceByte()
			return simple(token.GreaterEqual)
		}
		return simple(token.Greater)
	case '"':
		return s.scanString(start, line, col)
	default:
		if isDigit(c) {
			return s.scanNumber(start, line, col)
		}
		if isAlpha(c) {
			return s.scanIdentifier(start, line, col)
		}
		return token.Token{
			Kind: token.Error, ErrorKind: token.InvalidToken,
			Start: start, Len: 0, Line: line, Col: col,
		}
	}
}

// skipWhitespaceAndComments advances past whitespace runs and `//` line
// comments, leaving the cursor at the start of the next token (or EOF).
func (s *Scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		c := s.cur()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == 0x0B:
			s.advanceByte()
		case c == '/' && s.at(1) == '/':
			s.advanceByte()
			s.advanceByte()
			for !s.atEnd() && !isLineTerminator(s.cur()) {
				s.advanceByte()
			}
			if !s.atEnd() {
				term := s.advanceByte()
				if term == '\r' && s.cur() == '\n' {
					s.advanceByte()
				}
			}
		default:
			return
		}
	}
}

// scanString consumes a `"`-delimited literal that already had its opening
// quote consumed. It must terminate with `"` on the same source line.
func (s *Scanner) scanString(start, line, col int) token.Token {
	for {
		if s.atEnd() || isLineTerminator(s.cur()) {
			return token.Token{
				Kind: token.Error, ErrorKind: token.InvalidSingleLineString,
				Start: start, Len: s.pos - start, Line: line, Col: col,
			}
		}
		c := s.advanceByte()
		if c == '"' {
			return token.Token{Kind: token.String, Start: start, Len: s.pos - start, Line: line, Col: col}
		}
	}
}

// scanNumber consumes a numeric literal whose first digit has already been
// consumed.
func (s *Scanner) scanNumber(start, line, col int) token.Token {
	for isDigit(s.cur()) {
		s.advanceByte()
	}

	if s.cur() == '.' {
		if isDigit(s.at(1)) {
			s.advanceByte() // '.'
			for isDigit(s.cur()) {
				s.advanceByte()
			}
			return token.Token{Kind: token.Number, Start: start, Len: s.pos - start, Line: line, Col: col}
		}
		// Trailing '.' with no following digit: include it in the error span.
		s.advanceByte()
		return token.Token{
			Kind: token.Error, ErrorKind: token.NumberMissingDecimal,
			Start: start, Len: s.pos - start, Line: line, Col: col,
		}
	}

	return token.Token{Kind: token.Number, Start: start, Len: s.pos - start, Line: line, Col: col}
}

// scanIdentifier consumes an identifier/keyword whose first letter has
// already been consumed.
func (s *Scanner) scanIdentifier(start, line, col int) token.Token {
	for isAlphaNumeric(s.cur()) {
		s.advanceByte()
	}

	lexeme := string(s.src[start:s.pos])
	kind := token.Identifier
	if k, ok := token.Keywords[lexeme]; ok {
		kind = k
	}
	return token.Token{Kind: kind, Start: start, Len: s.pos - start, Line: line, Col: col}
}
