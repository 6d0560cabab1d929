package jsontext_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yonah/apidisco/internal/jsontext"
)

func scanAll(t *testing.T, input string) []jsontext.Token {
	t.Helper()
	s := jsontext.NewScanner(strings.NewReader(input))
	var tokens []jsontext.Token
	for {
		tok := s.Next()
		if tok.Kind == jsontext.TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
		require.Less(t, len(tokens), 1000, "scanner did not terminate")
	}
}

func TestScanner_Next(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		name  string
		input string
		want  []jsontext.Token
	}{
		{
			name:  "structural punctuation",
			input: "{}[]:,",
			want: []jsontext.Token{
				{Kind: jsontext.TokenObjectStart},
				{Kind: jsontext.TokenObjectEnd, Offset: 1},
				{Kind: jsontext.TokenArrayStart, Offset: 2},
				{Kind: jsontext.TokenArrayEnd, Offset: 3},
				{Kind: jsontext.TokenColon, Offset: 4},
				{Kind: jsontext.TokenComma, Offset: 5},
			},
		},
		{
			name:  "single quoted string",
			input: "'hello'",
			want:  []jsontext.Token{{Kind: jsontext.TokenString, Str: "hello"}},
		},
		{
			name:  "double quoted string with no escape processing",
			input: `"a\nb"`,
			want:  []jsontext.Token{{Kind: jsontext.TokenString, Str: `a\nb`}},
		},
		{
			name:  "unterminated string",
			input: `"oops`,
			want:  []jsontext.Token{{Kind: jsontext.TokenUndefined}},
		},
		{
			name:  "decimal number followed by separator",
			input: "123.5 ",
			want:  []jsontext.Token{{Kind: jsontext.TokenNumber, Num: 123.5}},
		},
		{
			name:  "integer terminated by structural token",
			input: "42}",
			want: []jsontext.Token{
				{Kind: jsontext.TokenNumber, Num: 42},
				{Kind: jsontext.TokenObjectEnd, Offset: 2},
			},
		},
		{
			// Documented lenient behavior: the numeric accumulator
			// needs a separator before the parse runs, so a digit run
			// cut off by end of stream stays undefined.
			name:  "digits immediately followed by end of stream",
			input: "1234",
			want:  []jsontext.Token{{Kind: jsontext.TokenUndefined}},
		},
		{
			name:  "malformed number stays undefined",
			input: "12.3.4,",
			want:  []jsontext.Token{{Kind: jsontext.TokenUndefined}, {Kind: jsontext.TokenComma, Offset: 6}},
		},
		{
			name:  "literals with separators",
			input: "true,false,null,",
			want: []jsontext.Token{
				{Kind: jsontext.TokenTrue},
				{Kind: jsontext.TokenComma, Offset: 4},
				{Kind: jsontext.TokenFalse, Offset: 5},
				{Kind: jsontext.TokenComma, Offset: 10},
				{Kind: jsontext.TokenNull, Offset: 11},
				{Kind: jsontext.TokenComma, Offset: 15},
			},
		},
		{
			name:  "misspelled literal",
			input: "trua,",
			want:  []jsontext.Token{{Kind: jsontext.TokenUndefined}, {Kind: jsontext.TokenComma, Offset: 4}},
		},
		{
			name:  "literal glued to alphanumeric tail",
			input: "nullx,",
			want:  []jsontext.Token{{Kind: jsontext.TokenUndefined}, {Kind: jsontext.TokenComma, Offset: 5}},
		},
		{
			name:  "whitespace only",
			input: "  \t\n  ",
			want:  nil,
		},
		{
			name:  "unknown leading character",
			input: "@",
			want:  []jsontext.Token{{Kind: jsontext.TokenUndefined}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanAll(t, tt.input)
			assert.Equal(tt.want, got)
		})
	}
}

func TestScanner_EOFSentinelIsSticky(t *testing.T) {
	s := jsontext.NewScanner(strings.NewReader(" "))
	for i := 0; i < 3; i++ {
		assert.Equal(t, jsontext.TokenEOF, s.Next().Kind)
	}
}

// errReader fails after its content is exhausted. The scanner treats
// the read failure as end of stream rather than an error.
type errReader struct {
	content string
	done    bool
}

func (r *errReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, assert.AnError
	}
	r.done = true
	return copy(p, r.content), nil
}

func TestScanner_ReadFailureIsEndOfStream(t *testing.T) {
	s := jsontext.NewScanner(&errReader{content: "'a' "})
	tok := s.Next()
	require.Equal(t, jsontext.TokenString, tok.Kind)
	assert.Equal(t, "a", tok.Str)
	assert.Equal(t, jsontext.TokenEOF, s.Next().Kind)
}
