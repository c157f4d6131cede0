package mustachec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateBuildsLookaheadWithoutAliasing(t *testing.T) {
	a := newWriteCode("a", 1)
	b := newWriteCode("b", 1)
	c := newWriteCode("c", 1)
	siblings := []Code{a, b, c}
	next := []Code{newEofCode(1)}

	view := truncate(siblings, 0, next)
	require.Len(t, view, 3)
	assert.Same(t, Code(b), view[0])
	assert.Same(t, Code(c), view[1])
	assert.Same(t, next[0], view[2])

	// Mutating the returned slice must not affect siblings or next.
	view[0] = newWriteCode("mutated", 1)
	assert.Same(t, Code(b), siblings[1])
}

func TestExtractSpanStopsAtNextLiteralMatch(t *testing.T) {
	scope := NewScope()
	next := []Code{newWriteCode("!", 1), newEofCode(1)}

	span, pos, ok := extractSpan(scope, "world!", 0, next)
	require.True(t, ok)
	assert.Equal(t, "world", span)
	assert.Equal(t, 5, pos)
}

func TestExtractSpanEmptyLookaheadFails(t *testing.T) {
	_, _, ok := extractSpan(NewScope(), "anything", 0, nil)
	assert.False(t, ok)
}

// TestExtractSpanTrailingEofKnownLimitation documents the accepted gap
// the package comment on extractSpan calls out: when next's head is an
// Eof, it matches immediately at any probe position, so a trailing
// value with nothing else following extracts a zero-length span rather
// than consuming to the end of the text.
func TestExtractSpanTrailingEofKnownLimitation(t *testing.T) {
	next := []Code{newEofCode(1)}
	span, pos, ok := extractSpan(NewScope(), "world", 0, next)
	require.True(t, ok)
	assert.Equal(t, "", span)
	assert.Equal(t, 0, pos)
}
