package mustachec

import "fmt"

// functionCode is the Function variant (spec §4.6): `{{_name}}…{{/name}}`,
// which post-processes its rendered body through a callable bound to
// name, or behaves like singleton iteration if name is null.
type functionCode struct {
	name     string
	children []Code
	line     int
	handle   Handle
}

func newFunctionCode(name string, children []Code, line int, handle Handle) *functionCode {
	return &functionCode{name: name, children: children, line: line, handle: handle}
}

func (c *functionCode) Execute(w *FutureWriter, scope *Scope) error {
	if scope.IsIdentity() {
		return c.Identity(w)
	}
	v, _ := c.handle.Lookup(scope, c.name)
	if v == nil {
		var errs []error
		for _, sub := range c.handle.Apply(scope) {
			child := c.handle.PushWriter(w)
			errs = append(errs, executeChildren(child, sub, c.children)...)
		}
		return renderError(c.handle, errs)
	}
	fn, ok := v.(Callable)
	if !ok {
		return newRenderError("", c.line, "not-a-function", fmt.Errorf("%s is not a function", c.name))
	}

	w.Defer(func() (string, error) {
		body := NewFutureWriter()
		errs := executeChildren(body, scope, c.children)
		rendered, err := body.Flush()
		if err != nil {
			return "", err
		}
		if err := renderError(c.handle, errs); err != nil {
			return "", err
		}
		result, err := fn(rendered)
		if err != nil {
			return "", newRenderError("", c.line, "function", err)
		}
		return result, nil
	})
	return nil
}

func (c *functionCode) Identity(w *FutureWriter) error {
	w.WriteString("{{_" + c.name + "}}")
	for _, node := range c.children {
		if err := node.Identity(w); err != nil {
			return err
		}
	}
	w.WriteString("{{/" + c.name + "}}")
	return nil
}

// Unexecute treats the whole section as a value span (§4.10), renders
// the children forward against scope to recover the body text, and
// stores a Callable on scope that maps that exact body back to the
// extracted text. This is the best-effort heuristic flagged as an open
// question in spec §9: it round-trips a subsequent forward render of
// the same template, not arbitrary callables.
func (c *functionCode) Unexecute(scope *Scope, text string, pos *int, next []Code) (*Scope, bool) {
	extracted, newPos, ok := extractSpan(scope, text, *pos, next)
	if !ok {
		return nil, false
	}

	body := NewFutureWriter()
	for _, node := range c.children {
		if err := node.Execute(body, scope); err != nil {
			return nil, false
		}
	}
	rendered, err := body.Flush()
	if err != nil {
		return nil, false
	}

	*pos = newPos
	extractedCopy := extracted
	scope.Set(c.name, Callable(func(s string) (string, error) {
		if s == rendered {
			return extractedCopy, nil
		}
		return s, nil
	}))
	return scope, true
}

func (c *functionCode) Line() int { return c.line }
