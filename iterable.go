package mustachec

// iterableCode is the Iterable variant (spec §4.3): `{{#name}}…{{/name}}`,
// repeating its children once per resolved sub-scope.
type iterableCode struct {
	name     string
	children []Code
	line     int
	handle   Handle
}

func newIterableCode(name string, children []Code, line int, handle Handle) *iterableCode {
	return &iterableCode{name: name, children: children, line: line, handle: handle}
}

func (c *iterableCode) Execute(w *FutureWriter, scope *Scope) error {
	if scope.IsIdentity() {
		return c.Identity(w)
	}
	var errs []error
	for _, sub := range c.handle.Iterable(scope, c.name) {
		child := c.handle.PushWriter(w)
		errs = append(errs, executeChildren(child, sub, c.children)...)
	}
	return renderError(c.handle, errs)
}

func (c *iterableCode) Identity(w *FutureWriter) error {
	w.WriteString("{{#" + c.name + "}}")
	for _, node := range c.children {
		if err := node.Identity(w); err != nil {
			return err
		}
	}
	w.WriteString("{{/" + c.name + "}}")
	return nil
}

// Unexecute performs the greedy reverse match of spec §4.3: repeatedly
// run the children in sequence starting from a fresh sub-scope; an
// iteration that fully matches but contributes no bindings still
// advances pos (invariant 6, "empty sub-scope drop") without growing
// the result list; an iteration where any child fails to match rewinds
// pos to where that iteration started and stops.
func (c *iterableCode) Unexecute(scope *Scope, text string, pos *int, next []Code) (*Scope, bool) {
	var results []*Scope
	for {
		start := *pos
		sub := NewScope()
		failed := false
		for i, node := range c.children {
			lookahead := truncate(c.children, i, next)
			resolved, matched := node.Unexecute(sub, text, pos, lookahead)
			if !matched {
				failed = true
				break
			}
			sub = resolved
		}
		if failed {
			*pos = start
			break
		}
		if len(sub.Keys()) > 0 {
			results = append(results, sub)
		}
		if *pos == start {
			// No children, or all matched zero-width: stop to avoid
			// looping forever on a resolved-but-stationary iteration.
			break
		}
	}
	if len(results) > 0 {
		scope.Set(c.name, results)
	}
	return scope, true
}

func (c *iterableCode) Line() int { return c.line }

// ifIterableCode is the IfIterable variant (spec §4.4):
// `{{?name}}…{{/name}}`, a truthy once-through.
type ifIterableCode struct {
	name     string
	children []Code
	line     int
	handle   Handle
}

func newIfIterableCode(name string, children []Code, line int, handle Handle) *ifIterableCode {
	return &ifIterableCode{name: name, children: children, line: line, handle: handle}
}

func (c *ifIterableCode) Execute(w *FutureWriter, scope *Scope) error {
	child := c.handle.PushWriter(w)
	if scope.IsIdentity() {
		return c.identityInto(child)
	}
	var errs []error
	for _, sub := range c.handle.IfIterable(scope, c.name) {
		errs = append(errs, executeChildren(child, sub, c.children)...)
	}
	return renderError(c.handle, errs)
}

func (c *ifIterableCode) Identity(w *FutureWriter) error {
	return c.identityInto(w)
}

func (c *ifIterableCode) identityInto(w *FutureWriter) error {
	w.WriteString("{{?" + c.name + "}}")
	for _, node := range c.children {
		if err := node.Identity(w); err != nil {
			return err
		}
	}
	w.WriteString("{{/" + c.name + "}}")
	return nil
}

func (c *ifIterableCode) Unexecute(scope *Scope, text string, pos *int, next []Code) (*Scope, bool) {
	start := *pos
	sub := NewScope()
	for i, node := range c.children {
		lookahead := truncate(c.children, i, next)
		resolved, matched := node.Unexecute(sub, text, pos, lookahead)
		if !matched {
			*pos = start
			return scope, true
		}
		sub = resolved
	}
	if len(sub.Keys()) > 0 {
		scope.Set(c.name, sub)
	}
	return scope, true
}

func (c *ifIterableCode) Line() int { return c.line }

// invertedIterableCode is the InvertedIterable variant (spec §4.5):
// `{{^name}}…{{/name}}`, run when name is empty/falsy.
type invertedIterableCode struct {
	name     string
	children []Code
	line     int
	handle   Handle
}

func newInvertedIterableCode(name string, children []Code, line int, handle Handle) *invertedIterableCode {
	return &invertedIterableCode{name: name, children: children, line: line, handle: handle}
}

func (c *invertedIterableCode) Execute(w *FutureWriter, scope *Scope) error {
	child := c.handle.PushWriter(w)
	if scope.IsIdentity() {
		return c.identityInto(child)
	}
	var errs []error
	for _, sub := range c.handle.Inverted(scope, c.name) {
		errs = append(errs, executeChildren(child, sub, c.children)...)
	}
	return renderError(c.handle, errs)
}

func (c *invertedIterableCode) Identity(w *FutureWriter) error {
	return c.identityInto(w)
}

func (c *invertedIterableCode) identityInto(w *FutureWriter) error {
	w.WriteString("{{^" + c.name + "}}")
	for _, node := range c.children {
		if err := node.Identity(w); err != nil {
			return err
		}
	}
	w.WriteString("{{/" + c.name + "}}")
	return nil
}

// Unexecute runs a single pass; on success it merges the recovered
// sub-scope's bindings into scope and records name = false to mark the
// inverted branch as taken (spec §4.5).
func (c *invertedIterableCode) Unexecute(scope *Scope, text string, pos *int, next []Code) (*Scope, bool) {
	start := *pos
	sub := NewScope()
	for i, node := range c.children {
		lookahead := truncate(c.children, i, next)
		resolved, matched := node.Unexecute(sub, text, pos, lookahead)
		if !matched {
			*pos = start
			return scope, true
		}
		sub = resolved
	}
	scope.Merge(sub)
	scope.Set(c.name, false)
	return scope, true
}

func (c *invertedIterableCode) Line() int { return c.line }
