package mustachec

import "html"

// valueCode is the Value variant (spec §4.2): looks up and emits a
// value, escaped per the template's escape mode (HTML by default) when
// encoded.
type valueCode struct {
	name    string
	encoded bool
	line    int
	handle  Handle
}

func newValueCode(name string, encoded bool, line int, handle Handle) *valueCode {
	return &valueCode{name: name, encoded: encoded, line: line, handle: handle}
}

func (c *valueCode) Execute(w *FutureWriter, scope *Scope) error {
	if scope.IsIdentity() {
		return c.Identity(w)
	}
	if err := c.handle.WriteValue(w, scope, c.name, c.encoded); err != nil {
		return newRenderError("", c.line, "lookup", err)
	}
	return nil
}

func (c *valueCode) Identity(w *FutureWriter) error {
	if c.encoded {
		w.WriteString("{{" + c.name + "}}")
	} else {
		w.WriteString("{{{" + c.name + "}}}")
	}
	return nil
}

// Unexecute extracts this value's span (§4.10) and stores the
// extracted text at name (respecting dotted nesting, §4.11). Encoded
// values are HTML-entity decoded before storage — see DESIGN.md "Open
// Question decisions".
func (c *valueCode) Unexecute(scope *Scope, text string, pos *int, next []Code) (*Scope, bool) {
	extracted, newPos, ok := extractSpan(scope, text, *pos, next)
	if !ok {
		return nil, false
	}
	*pos = newPos
	if c.encoded {
		extracted = html.UnescapeString(extracted)
	}
	scope.SetDotted(c.name, extracted)
	return scope, true
}

func (c *valueCode) Line() int { return c.line }
