package mustachec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Handle is the template handle external interface consumed by the
// core Code variants (spec §6). Code nodes never reach into a
// Template's internals directly; they call back through Handle for
// every semantic query, which is what lets the code model stay
// decoupled from how lookup, iteration, and partial resolution are
// actually implemented.
type Handle interface {
	// Lookup evaluates a dotted name against scope.
	Lookup(scope *Scope, name string) (interface{}, bool)

	// Iterable resolves name to the sub-scopes a repeating Iterable
	// section (§4.3) should run its children against. A nil/empty
	// result means "render nothing".
	Iterable(scope *Scope, name string) []*Scope

	// IfIterable resolves name for the truthy-once interpretation
	// (§4.4): at most one sub-scope.
	IfIterable(scope *Scope, name string) []*Scope

	// Inverted resolves name for the falsy-once interpretation (§4.5):
	// at most one sub-scope, run when name is absent/falsy.
	Inverted(scope *Scope, name string) []*Scope

	// Apply derives the sub-scopes used by a Function section whose
	// binding is nil (§4.6 "behaves like iteration over the singleton
	// [scope]"; spec §6 "apply(scope, callable) -> seq<scope>").
	Apply(scope *Scope) []*Scope

	// Partial resolves name to a compiled Template, eagerly, at
	// construction time (§4.9).
	Partial(name string) (*Template, error)

	// Extend resolves name to the parent Template an Extend node
	// inherits from, eagerly, at construction time (§4.7). Parent
	// templates share the same name registry as Partial.
	Extend(name string) (*Template, error)

	// PushWriter creates a nested writer owned by the caller, whose
	// eventual output is spliced into w at enqueue position (§5, §6).
	PushWriter(w *FutureWriter) *FutureWriter

	// WriteValue formats and writes the value bound to name, escaped
	// per the encoded flag (§4.2).
	WriteValue(w *FutureWriter, scope *Scope, name string, encoded bool) error

	// Compiled returns the owning template's compiled code array.
	Compiled() []Code

	// SilentMiss reports whether a failed lookup or other execute-time
	// error should be swallowed rather than aborting rendering (§6, §7
	// "lookup-failure ... may render empty").
	SilentMiss() bool
}

// escapeMode controls how WriteValue escapes a formatted value. The
// Value opcode itself only distinguishes encoded vs raw; escapeMode
// adds a JSON-escape variant as an ambient Template option layered on
// top of "encoded=true" without changing the Code model.
type escapeMode int

const (
	escapeHTML escapeMode = iota
	escapeJSONMode
	escapeNone
)

// defaultHandle is the Handle implementation backing every Template
// (§6), generalized from a plain "...interface{} context stack" onto
// *Scope, with resolving a value split from iterating it.
type defaultHandle struct {
	tmpl   *Template
	escape escapeMode
}

func (h *defaultHandle) Lookup(scope *Scope, name string) (interface{}, bool) {
	return scope.Resolve(name)
}

// childScope wraps v as a sub-scope of parent: *Scope values pass
// through, everything else becomes a foreign value a fresh child scope
// delegates reflection lookups to (scope.go / lookup.go).
func childScope(parent *Scope, v interface{}) *Scope {
	if sc, ok := v.(*Scope); ok {
		return sc
	}
	c := parent.Push()
	c.foreign = v
	return c
}

func (h *defaultHandle) Iterable(scope *Scope, name string) []*Scope {
	v, ok := scope.Resolve(name)
	if !ok || v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return nil
		}
		out := make([]*Scope, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = childScope(scope, rv.Index(i).Interface())
		}
		return out
	default:
		if !truth(v) {
			return nil
		}
		return []*Scope{childScope(scope, v)}
	}
}

func (h *defaultHandle) IfIterable(scope *Scope, name string) []*Scope {
	v, ok := scope.Resolve(name)
	if !ok || !truth(v) {
		return nil
	}
	return []*Scope{childScope(scope, v)}
}

func (h *defaultHandle) Inverted(scope *Scope, name string) []*Scope {
	v, ok := scope.Resolve(name)
	if ok && truth(v) {
		return nil
	}
	return []*Scope{scope.Push()}
}

func (h *defaultHandle) Apply(scope *Scope) []*Scope {
	return []*Scope{scope}
}

func (h *defaultHandle) PushWriter(w *FutureWriter) *FutureWriter {
	return w.Push()
}

func (h *defaultHandle) Partial(name string) (*Template, error) {
	t, ok := h.tmpl.partials[name]
	if !ok {
		return nil, newConstructError(h.tmpl.name, 0, "partial not found: %s", name)
	}
	return t, nil
}

func (h *defaultHandle) Extend(name string) (*Template, error) {
	t, ok := h.tmpl.partials[name]
	if !ok {
		return nil, newConstructError(h.tmpl.name, 0, "extend parent not found: %s", name)
	}
	return t, nil
}

func (h *defaultHandle) WriteValue(w *FutureWriter, scope *Scope, name string, encoded bool) error {
	v, ok := scope.Resolve(name)
	if !ok || v == nil {
		return newRenderError(h.tmpl.name, 0, "lookup-failure", fmt.Errorf("failed to lookup %s", name))
	}
	w.WriteString(formatValue(v, h.escapeFor(encoded)))
	return nil
}

func (h *defaultHandle) escapeFor(encoded bool) escapeMode {
	if !encoded {
		return escapeNone
	}
	return h.escape
}

func (h *defaultHandle) Compiled() []Code {
	return h.tmpl.codes
}

func (h *defaultHandle) SilentMiss() bool {
	return h.tmpl.silentMiss
}

// formatValue renders v as text: Stringer first, then numeric/string
// fast paths, then a newline-trimmed, HTML-unescaped JSON encoding as
// the catch-all for composite values.
func formatValue(v interface{}, mode escapeMode) string {
	var output string
	if s, ok := v.(fmt.Stringer); ok {
		output = s.String()
	} else {
		switch t := v.(type) {
		case string:
			output = t
		case int, uint, int8, uint8, int16, uint16, int32, uint32, int64, uint64:
			output = fmt.Sprintf("%d", t)
		case float32, float64:
			output = fmt.Sprintf("%g", t)
		case bool:
			output = fmt.Sprintf("%t", t)
		default:
			var b bytes.Buffer
			enc := json.NewEncoder(&b)
			enc.SetEscapeHTML(false)
			_ = enc.Encode(v)
			output = strings.TrimRight(b.String(), "\n")
		}
	}

	switch mode {
	case escapeHTML:
		return escapeHTMLString(output)
	case escapeJSONMode:
		return escapeJSONString(output)
	default:
		return output
	}
}

// escapeHTMLString replicates text/template.HTMLEscapeString but keeps
// "&apos;"/"&quot;" for mustache-spec compatibility.
func escapeHTMLString(s string) string {
	if !strings.ContainsAny(s, `'"&<>`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeJSONString(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return s
	}
	out := b.String()
	// Skip the opening quote, and the closing quote + trailing newline
	// the encoder always appends.
	if len(out) < 3 {
		return out
	}
	return out[1 : len(out)-2]
}
