package mustachec

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dumpScope renders a human-readable tree of a *Scope for test failure
// messages, since testify's default %v on an ordereddict-backed Scope
// is unreadable (unexported fields, no String method).
func dumpScope(s *Scope) string {
	return spew.Sdump(s)
}

func TestScopeGetSetOwnKeyOnly(t *testing.T) {
	parent := NewScope()
	parent.Set("a", 1)
	child := parent.Push()

	_, ok := child.Get("a")
	assert.False(t, ok, "Get must not walk the parent chain:\n%s", dumpScope(child))

	v, ok := parent.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestScopeResolveWalksParentChain(t *testing.T) {
	parent := NewScope()
	parent.Set("a", "from-parent")
	child := parent.Push()
	child.Set("b", "from-child")

	v, ok := child.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, "from-parent", v)

	v, ok = child.Resolve("b")
	require.True(t, ok)
	assert.Equal(t, "from-child", v)

	_, ok = child.Resolve("missing")
	assert.False(t, ok)
}

func TestScopeResolveShadowsParent(t *testing.T) {
	parent := NewScope()
	parent.Set("a", "parent-value")
	child := parent.Push()
	child.Set("a", "child-value")

	v, ok := child.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, "child-value", v)
}

func TestScopeResolveDottedThroughNestedScope(t *testing.T) {
	root := NewScope()
	inner := NewScope()
	inner.Set("b", "nested")
	root.Set("a", inner)

	v, ok := root.Resolve("a.b")
	require.True(t, ok)
	assert.Equal(t, "nested", v)
}

func TestScopeResolveDotReturnsForeignOrSelf(t *testing.T) {
	foreign := NewScopeFromValue(map[string]string{"k": "v"})
	v, ok := foreign.Resolve(".")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"k": "v"}, v)

	plain := NewScope()
	v, ok = plain.Resolve(".")
	require.True(t, ok)
	assert.Same(t, plain, v)
}

func TestScopeSetDottedCreatesIntermediateScopes(t *testing.T) {
	root := NewScope()
	root.SetDotted("a.b.c", "leaf")

	v, ok := root.Resolve("a.b.c")
	require.True(t, ok)
	assert.Equal(t, "leaf", v)
}

func TestScopeMergeOverwritesExistingKeys(t *testing.T) {
	dst := NewScope()
	dst.Set("a", "old")
	dst.Set("keep", "unchanged")

	src := NewScope()
	src.Set("a", "new")

	dst.Merge(src)

	v, _ := dst.Get("a")
	assert.Equal(t, "new", v)
	v, _ = dst.Get("keep")
	assert.Equal(t, "unchanged", v)
}

func TestScopeIdentitySentinel(t *testing.T) {
	assert.True(t, Identity().IsIdentity())
	assert.False(t, NewScope().IsIdentity())
}

func TestScopeForeignFallbackLookup(t *testing.T) {
	scope := NewScopeFromValue(map[string]interface{}{"name": "world"})
	v, ok := scope.Resolve("name")
	require.True(t, ok)
	assert.Equal(t, "world", v)
}
