package mustachec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, input string) []token {
	t.Helper()
	l := newLexer(input, "{{", "}}")
	var tokens []token
	for {
		tok := l.token()
		tokens = append(tokens, tok)
		if tok.typ == tokenEOF || tok.typ == tokenError {
			return tokens
		}
	}
}

func typesOf(tokens []token) []tokenType {
	out := make([]tokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.typ
	}
	return out
}

func TestLexerSigils(t *testing.T) {
	for _, test := range []struct {
		name  string
		input string
		want  []tokenType
	}{
		{"value", "{{foo}}", []tokenType{tokenLeftDelim, tokenIdentifier, tokenRightDelim, tokenEOF}},
		{"iterable", "{{#foo}}", []tokenType{tokenLeftDelim, tokenSectionStart, tokenIdentifier, tokenRightDelim, tokenEOF}},
		{"if-iterable", "{{?foo}}", []tokenType{tokenLeftDelim, tokenSectionIf, tokenIdentifier, tokenRightDelim, tokenEOF}},
		{"inverted", "{{^foo}}", []tokenType{tokenLeftDelim, tokenSectionInverse, tokenIdentifier, tokenRightDelim, tokenEOF}},
		{"function", "{{_foo}}", []tokenType{tokenLeftDelim, tokenSectionFunction, tokenIdentifier, tokenRightDelim, tokenEOF}},
		{"extend", "{{<foo}}", []tokenType{tokenLeftDelim, tokenExtend, tokenIdentifier, tokenRightDelim, tokenEOF}},
		{"name", "{{$foo}}", []tokenType{tokenLeftDelim, tokenName, tokenIdentifier, tokenRightDelim, tokenEOF}},
		{"end", "{{/foo}}", []tokenType{tokenLeftDelim, tokenSectionEnd, tokenIdentifier, tokenRightDelim, tokenEOF}},
		{"partial", "{{>foo}}", []tokenType{tokenLeftDelim, tokenPartial, tokenIdentifier, tokenRightDelim, tokenEOF}},
		{"raw triple", "{{{foo}}}", []tokenType{tokenLeftDelim, tokenRawStart, tokenIdentifier, tokenRawEnd, tokenRightDelim, tokenEOF}},
		{"raw alt", "{{&foo}}", []tokenType{tokenLeftDelim, tokenRawAlt, tokenIdentifier, tokenRightDelim, tokenEOF}},
	} {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, typesOf(lexAll(t, test.input)))
		})
	}
}

func TestLexerTextAroundTags(t *testing.T) {
	tokens := lexAll(t, "before {{foo}} after")
	want := []tokenType{tokenText, tokenLeftDelim, tokenIdentifier, tokenRightDelim, tokenText, tokenEOF}
	assert.Equal(t, want, typesOf(tokens))
	assert.Equal(t, "before ", tokens[0].val)
	assert.Equal(t, " after", tokens[4].val)
}

func TestLexerUnclosedTagErrors(t *testing.T) {
	tokens := lexAll(t, "{{foo")
	last := tokens[len(tokens)-1]
	require.Equal(t, tokenError, last.typ)
}

func TestLexerSetDelim(t *testing.T) {
	l := newLexer("{{=<% %>=}}<%foo%> plain {{bar}}", "{{", "}}")
	tok := l.token()
	require.Equal(t, tokenSetDelim, tok.typ)
	tok = l.token()
	require.Equal(t, tokenLeftDelim, tok.typ)
	require.Equal(t, "<%", tok.val)
}
