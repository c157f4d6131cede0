package mustachec

// partialCode is the Partial variant (spec §4.9): `{{>name}}`,
// inclusion of another compiled template. The referent is resolved
// eagerly at construction; resolution failure is a construction-time
// error (spec §3 invariant).
type partialCode struct {
	name     string
	resolved *Template
	line     int
	handle   Handle
}

func newPartialCode(name string, line int, handle Handle) (*partialCode, error) {
	tmpl, err := handle.Partial(name)
	if err != nil {
		return nil, err
	}
	return &partialCode{name: name, resolved: tmpl, line: line, handle: handle}, nil
}

func (c *partialCode) Execute(w *FutureWriter, scope *Scope) error {
	if scope.IsIdentity() {
		return c.Identity(w)
	}
	w.Defer(func() (string, error) {
		sub := NewFutureWriter()
		errs := executeChildren(sub, scope, c.resolved.codes)
		out, err := sub.Flush()
		if err != nil {
			return "", err
		}
		if err := renderError(c.handle, errs); err != nil {
			return "", err
		}
		return out, nil
	})
	return nil
}

func (c *partialCode) Identity(w *FutureWriter) error {
	w.WriteString("{{>" + c.name + "}}")
	return nil
}

// Unexecute extracts the text span this partial occupies (§4.10), then
// recursively unexecutes the partial's own compiled codes against a
// fresh position counter over that span, storing the resulting scope
// under name.
func (c *partialCode) Unexecute(scope *Scope, text string, pos *int, next []Code) (*Scope, bool) {
	extracted, newPos, ok := extractSpan(scope, text, *pos, next)
	if !ok {
		return nil, false
	}

	sub := NewScope()
	cur := sub
	p := 0
	codes := c.resolved.codes
	for i, node := range codes {
		lookahead := truncate(codes, i, nil)
		resolved, matched := node.Unexecute(cur, extracted, &p, lookahead)
		if !matched {
			return nil, false
		}
		cur = resolved
	}

	*pos = newPos
	scope.Set(c.name, cur)
	return scope, true
}

func (c *partialCode) Line() int { return c.line }
