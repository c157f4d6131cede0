package mustachec

import (
	"strings"

	"github.com/Velocidex/ordereddict"
)

// Callable is a function bound into a Scope that a Function section can
// post-process its rendered body through. See §4.6.
type Callable func(string) (string, error)

// Scope is a key/value mapping that also acts as a stack of parent
// scopes for name resolution. Values are any of: string, number, bool,
// *Scope, []*Scope, Callable, or nil.
//
// Scope is the environment shared by both interpreters (spec §3). It is
// mutated only while parsing inherited templates (never), while building
// up a result during Unexecute, and while a caller assembles a root
// scope before rendering; it is never mutated during forward Execute.
type Scope struct {
	parent *Scope
	data   *ordereddict.Dict

	// foreign holds an arbitrary Go value (map/struct/slice) attached to
	// this scope when the caller rendered against a plain Go value
	// instead of a *Scope. Lookup falls back to reflection over this
	// value; see lookup.go.
	foreign interface{}
}

// identityScope is the sentinel compared by pointer identity that
// toggles every opcode into emitting its own source form (§5, §9).
var identityScope = &Scope{}

// Identity returns the reserved sentinel scope used for introspection
// rendering (spec §5 "Identity mode").
func Identity() *Scope { return identityScope }

// IsIdentity reports whether s is the identity-mode sentinel.
func (s *Scope) IsIdentity() bool { return s == identityScope }

// NewScope returns an empty root scope with no parent.
func NewScope() *Scope {
	return &Scope{data: ordereddict.NewDict()}
}

// NewScopeFromValue wraps an arbitrary Go value (map, struct, slice) as
// a root scope. Name resolution against it falls back to reflection.
func NewScopeFromValue(v interface{}) *Scope {
	if s, ok := v.(*Scope); ok {
		return s
	}
	return &Scope{data: ordereddict.NewDict(), foreign: v}
}

// Push returns a new child scope whose parent is s. Lookups that miss in
// the child fall through to the parent chain (spec §3).
func (s *Scope) Push() *Scope {
	return &Scope{parent: s, data: ordereddict.NewDict()}
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Get resolves a single (non-dotted) key against this scope only, not
// its parent chain. Returns false if absent.
func (s *Scope) Get(key string) (interface{}, bool) {
	if s == nil || s.data == nil {
		return nil, false
	}
	return s.data.Get(key)
}

// Set assigns a single (non-dotted) key in this scope.
func (s *Scope) Set(key string, value interface{}) {
	if s.data == nil {
		s.data = ordereddict.NewDict()
	}
	s.data.Set(key, value)
}

// Foreign returns the arbitrary Go value attached via NewScopeFromValue,
// or nil if this scope was built from structured data alone.
func (s *Scope) Foreign() interface{} { return s.foreign }

// Keys returns this scope's own keys (not the parent chain's), in
// insertion order.
func (s *Scope) Keys() []string {
	if s == nil || s.data == nil {
		return nil
	}
	return s.data.Keys()
}

// Resolve walks the scope chain looking for the first (possibly
// dotted) name, per spec §3's lookup invariant: "a.b.c" resolves "a"
// against the scope chain, then "b" against the resolved value treated
// as a scope, and so on. Missing intermediate levels yield (nil, false)
// per §4.11.
func (s *Scope) Resolve(name string) (interface{}, bool) {
	if name == "." {
		if s == nil {
			return nil, false
		}
		if s.foreign != nil {
			return s.foreign, true
		}
		return s, true
	}

	head, rest, dotted := strings.Cut(name, ".")

	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.Get(head); ok {
			if !dotted {
				return v, true
			}
			return resolveInto(v, rest)
		}
		if cur.foreign != nil {
			if v, ok := lookupForeign(head, cur.foreign); ok {
				if !dotted {
					return v, true
				}
				return resolveInto(v, rest)
			}
		}
	}
	return nil, false
}

// resolveInto continues dotted resolution into a value that is not
// itself a *Scope (§4.11's "treated as a scope").
func resolveInto(v interface{}, rest string) (interface{}, bool) {
	switch t := v.(type) {
	case *Scope:
		return t.Resolve(rest)
	default:
		head, tail, dotted := strings.Cut(rest, ".")
		val, ok := lookupForeign(head, v)
		if !ok {
			return nil, false
		}
		if !dotted {
			return val, true
		}
		return resolveInto(val, tail)
	}
}

// SetDotted stores a.b.c = v by walking/creating nested scopes at a and
// a.b, then setting c at the deepest level (spec §4.11).
func (s *Scope) SetDotted(name string, value interface{}) {
	head, rest, dotted := strings.Cut(name, ".")
	if !dotted {
		s.Set(head, value)
		return
	}
	child, ok := s.Get(head)
	childScope, isScope := child.(*Scope)
	if !ok || !isScope {
		childScope = NewScope()
		s.Set(head, childScope)
	}
	childScope.SetDotted(rest, value)
}

// Merge copies every key from other into s, overwriting existing keys.
// Used by InvertedIterable.Unexecute (§4.5) to fold a recovered
// sub-scope's bindings into the caller's scope.
func (s *Scope) Merge(other *Scope) {
	if other == nil {
		return
	}
	for _, k := range other.Keys() {
		v, _ := other.Get(k)
		s.Set(k, v)
	}
}
