package jsontext

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Scanner lexes a character stream into JSON tokens. The sequence is
// lazy, finite and not restartable.
//
// The scanner accepts a slightly wider grammar than encoding/json on
// purpose: strings may be single- or double-quoted and are read
// verbatim with no escape processing, and malformed fragments surface
// as TokenUndefined instead of errors. Any read failure, not just
// io.EOF, is treated as end of stream.
type Scanner struct {
	r        *bufio.Reader
	offset   int
	lastSize int
	eof      bool
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

func (s *Scanner) read() (rune, bool) {
	if s.eof {
		return 0, false
	}
	c, size, err := s.r.ReadRune()
	if err != nil {
		s.eof = true
		return 0, false
	}
	s.offset += size
	s.lastSize = size
	return c, true
}

// unread pushes back the most recently read rune. At most one rune of
// pushback is ever needed.
func (s *Scanner) unread() {
	if s.eof {
		return
	}
	_ = s.r.UnreadRune()
	s.offset -= s.lastSize
}

// Next returns the next token, or the TokenEOF sentinel when only
// whitespace remains.
func (s *Scanner) Next() Token {
	c, ok := s.read()
	for ok && unicode.IsSpace(c) {
		c, ok = s.read()
	}
	if !ok {
		return Token{Kind: TokenEOF, Offset: s.offset}
	}
	start := s.offset - s.lastSize
	switch c {
	case '{':
		return Token{Kind: TokenObjectStart, Offset: start}
	case '}':
		return Token{Kind: TokenObjectEnd, Offset: start}
	case '[':
		return Token{Kind: TokenArrayStart, Offset: start}
	case ']':
		return Token{Kind: TokenArrayEnd, Offset: start}
	case ':':
		return Token{Kind: TokenColon, Offset: start}
	case ',':
		return Token{Kind: TokenComma, Offset: start}
	case '\'', '"':
		return s.scanString(c, start)
	case 't':
		return s.scanLiteral("rue", TokenTrue, start)
	case 'f':
		return s.scanLiteral("alse", TokenFalse, start)
	case 'n':
		return s.scanLiteral("ull", TokenNull, start)
	default:
		if c >= '0' && c <= '9' {
			return s.scanNumber(c, start)
		}
		return Token{Kind: TokenUndefined, Offset: start}
	}
}

// scanString reads verbatim until the quote that opened the string.
// No escape sequences are processed. End of stream before the closing
// quote yields an undefined token.
func (s *Scanner) scanString(quote rune, start int) Token {
	var sb strings.Builder
	for {
		c, ok := s.read()
		if !ok {
			return Token{Kind: TokenUndefined, Offset: start}
		}
		if c == quote {
			return Token{Kind: TokenString, Str: sb.String(), Offset: start}
		}
		sb.WriteRune(c)
	}
}

// scanLiteral matches the remaining characters of true/false/null,
// which must be followed by a token separator. Any mismatch, including
// end of stream before the separator, yields an undefined token.
func (s *Scanner) scanLiteral(rest string, kind TokenKind, start int) Token {
	for _, want := range rest {
		c, ok := s.read()
		if !ok || c != want {
			return Token{Kind: TokenUndefined, Offset: start}
		}
	}
	c, ok := s.read()
	if !ok {
		return Token{Kind: TokenUndefined, Offset: start}
	}
	if !isTokenSeparator(c) {
		return Token{Kind: TokenUndefined, Offset: start}
	}
	s.unread()
	return Token{Kind: kind, Offset: start}
}

// scanNumber accumulates characters until a token separator, then
// attempts a decimal parse. Reaching end of stream before a separator
// leaves the token undefined, and so does a failed parse. Lenient
// behavior carried over from the upstream tokenizer; the parser
// rejects the undefined token if it matters.
func (s *Scanner) scanNumber(first rune, start int) Token {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		c, ok := s.read()
		if !ok {
			return Token{Kind: TokenUndefined, Offset: start}
		}
		if isTokenSeparator(c) {
			s.unread()
			break
		}
		sb.WriteRune(c)
	}
	n, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return Token{Kind: TokenUndefined, Offset: start}
	}
	return Token{Kind: TokenNumber, Num: n, Offset: start}
}

// isTokenSeparator reports whether c terminates a literal or numeric
// token. The dot is excluded so decimal fractions lex as one number.
func isTokenSeparator(c rune) bool {
	return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '.'
}
