package mustachec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValueHandle(t *testing.T) Handle {
	return newTestHandle(t)
}

// TestIterableUnexecuteEmptySubScopeDrop exercises invariant 6: an
// iteration that fully matches but binds nothing still advances pos,
// without growing the recovered result list.
func TestIterableUnexecuteEmptySubScopeDrop(t *testing.T) {
	handle := newValueHandle(t)
	children := []Code{newWriteCode("x", 1)}
	ic := newIterableCode("items", children, 1, handle)
	next := []Code{newEofCode(1)}

	scope := NewScope()
	pos := 0
	resolved, ok := ic.Unexecute(scope, "xxx", &pos, next)
	require.True(t, ok)
	assert.Equal(t, 3, pos)

	_, found := resolved.Get("items")
	assert.False(t, found, "an iteration with no bindings must not appear in the recovered result list")
}

// TestIterableUnexecuteGreedyRepeats exercises the greedy repeat-until-
// mismatch behavior and that each iteration's bindings are recorded.
func TestIterableUnexecuteGreedyRepeats(t *testing.T) {
	handle := newValueHandle(t)
	children := []Code{
		newWriteCode("[", 1),
		newValueCode("v", true, 1, handle),
		newWriteCode("]", 1),
	}
	ic := newIterableCode("xs", children, 1, handle)
	next := []Code{newEofCode(1)}

	scope := NewScope()
	pos := 0
	resolved, ok := ic.Unexecute(scope, "[1][2][3]", &pos, next)
	require.True(t, ok)
	assert.Equal(t, 9, pos)

	v, found := resolved.Get("xs")
	require.True(t, found)
	subs, ok := v.([]*Scope)
	require.True(t, ok)
	require.Len(t, subs, 3)
	for i, want := range []string{"1", "2", "3"} {
		got, found := subs[i].Get("v")
		require.True(t, found)
		assert.Equal(t, want, got)
	}
}

func TestIterableExecuteRepeatsChildrenPerSubScope(t *testing.T) {
	handle := newValueHandle(t)
	ic := newIterableCode("xs", []Code{newWriteCode("*", 1)}, 1, handle)

	scope := NewScope()
	scope.Set("xs", []interface{}{1, 2})

	w := NewFutureWriter()
	require.NoError(t, ic.Execute(w, scope))
	out, err := w.Flush()
	require.NoError(t, err)
	assert.Equal(t, "**", out)
}

func TestInvertedIterableUnexecuteMarksBranchTaken(t *testing.T) {
	handle := newValueHandle(t)
	ic := newInvertedIterableCode("missing", nil, 1, handle)
	next := []Code{newEofCode(1)}

	scope := NewScope()
	pos := 0
	resolved, ok := ic.Unexecute(scope, "", &pos, next)
	require.True(t, ok)
	v, found := resolved.Get("missing")
	require.True(t, found)
	assert.Equal(t, false, v)
}
