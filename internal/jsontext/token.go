package jsontext

// TokenKind enumerates the lexical token types produced by the Scanner.
type TokenKind int

const (
	// TokenUndefined marks a fragment the scanner could not classify.
	// The scanner is lenient on purpose; the parser turns undefined
	// tokens into syntax errors.
	TokenUndefined TokenKind = iota
	TokenObjectStart
	TokenObjectEnd
	TokenArrayStart
	TokenArrayEnd
	TokenColon
	TokenComma
	TokenString
	TokenNumber
	TokenTrue
	TokenFalse
	TokenNull
	// TokenEOF is the end-of-stream sentinel. Once returned, every
	// subsequent call returns it again.
	TokenEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokenUndefined:
		return "undefined"
	case TokenObjectStart:
		return "'{'"
	case TokenObjectEnd:
		return "'}'"
	case TokenArrayStart:
		return "'['"
	case TokenArrayEnd:
		return "']'"
	case TokenColon:
		return "':'"
	case TokenComma:
		return "','"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenTrue:
		return "true"
	case TokenFalse:
		return "false"
	case TokenNull:
		return "null"
	case TokenEOF:
		return "end of stream"
	default:
		return "unknown"
	}
}

// Token is one lexical unit. Str is set for TokenString, Num for
// TokenNumber. Offset is the byte offset of the token's first
// character, kept for error reporting.
type Token struct {
	Kind   TokenKind
	Str    string
	Num    float64
	Offset int
}
