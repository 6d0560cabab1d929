package jsontext

import (
	"fmt"
	"io"
	"strings"
)

// SyntaxErrorKind classifies what the parser expected when it hit an
// unexpected token.
type SyntaxErrorKind int

const (
	ErrExpectedValue SyntaxErrorKind = iota
	ErrExpectedName
	ErrExpectedColon
	ErrExpectedCommaOrClose
)

func (k SyntaxErrorKind) String() string {
	switch k {
	case ErrExpectedValue:
		return "expected a value"
	case ErrExpectedName:
		return "expected a member name"
	case ErrExpectedColon:
		return "expected ':'"
	case ErrExpectedCommaOrClose:
		return "expected ',' or a closing token"
	default:
		return "unexpected token"
	}
}

// SyntaxError reports a malformed document. Offset is the approximate
// byte position of the offending token.
type SyntaxError struct {
	Kind   SyntaxErrorKind
	Token  TokenKind
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("jsontext: %s, got %s at offset %d", e.Kind, e.Token, e.Offset)
}

// Parse consumes r and materializes a single document tree. One tree
// per call; the parser is neither lazy nor restartable.
func Parse(r io.Reader) (*Value, error) {
	p := &parser{s: NewScanner(r)}
	return p.parseValue(p.s.Next())
}

// ParseString is a convenience wrapper around Parse.
func ParseString(doc string) (*Value, error) {
	return Parse(strings.NewReader(doc))
}

type parser struct {
	s *Scanner
}

func (p *parser) parseValue(tok Token) (*Value, error) {
	switch tok.Kind {
	case TokenObjectStart:
		return p.parseObject()
	case TokenArrayStart:
		return p.parseArray()
	case TokenString:
		return &Value{Kind: KindString, Str: tok.Str}, nil
	case TokenNumber:
		return &Value{Kind: KindNumber, Num: tok.Num}, nil
	case TokenTrue:
		return &Value{Kind: KindBool, Bool: true}, nil
	case TokenFalse:
		return &Value{Kind: KindBool}, nil
	case TokenNull:
		return &Value{Kind: KindNull}, nil
	default:
		return nil, &SyntaxError{Kind: ErrExpectedValue, Token: tok.Kind, Offset: tok.Offset}
	}
}

// parseObject consumes `name : value ,` pairs until the matching close.
// The opening token has already been consumed.
func (p *parser) parseObject() (*Value, error) {
	obj := NewObject()
	tok := p.s.Next()
	if tok.Kind == TokenObjectEnd {
		return &Value{Kind: KindObject, Obj: obj}, nil
	}
	for {
		if tok.Kind != TokenString {
			return nil, &SyntaxError{Kind: ErrExpectedName, Token: tok.Kind, Offset: tok.Offset}
		}
		name := tok.Str
		if colon := p.s.Next(); colon.Kind != TokenColon {
			return nil, &SyntaxError{Kind: ErrExpectedColon, Token: colon.Kind, Offset: colon.Offset}
		}
		member, err := p.parseValue(p.s.Next())
		if err != nil {
			return nil, err
		}
		obj.Set(name, member)

		tok = p.s.Next()
		switch tok.Kind {
		case TokenComma:
			tok = p.s.Next()
		case TokenObjectEnd:
			return &Value{Kind: KindObject, Obj: obj}, nil
		default:
			return nil, &SyntaxError{Kind: ErrExpectedCommaOrClose, Token: tok.Kind, Offset: tok.Offset}
		}
	}
}

// parseArray consumes comma-separated values until the matching close.
// The opening token has already been consumed.
func (p *parser) parseArray() (*Value, error) {
	arr := &Value{Kind: KindArray}
	tok := p.s.Next()
	if tok.Kind == TokenArrayEnd {
		return arr, nil
	}
	for {
		elem, err := p.parseValue(tok)
		if err != nil {
			return nil, err
		}
		arr.Arr = append(arr.Arr, elem)

		tok = p.s.Next()
		switch tok.Kind {
		case TokenComma:
			tok = p.s.Next()
		case TokenArrayEnd:
			return arr, nil
		default:
			return nil, &SyntaxError{Kind: ErrExpectedCommaOrClose, Token: tok.Kind, Offset: tok.Offset}
		}
	}
}
