// Copyright (c) 2014 Alex Kalyvitis

package mustachec

import (
	"bytes"
	"io"
	"strings"
)

// Option configures a Template using the functional-options pattern.
type Option func(*Template)

// Name sets the template's name, used as its own partial/extend key.
func Name(n string) Option {
	return func(t *Template) { t.name = n }
}

// Delimiters sets the start and end tag delimiters.
func Delimiters(start, end string) Option {
	return func(t *Template) { t.startDelim, t.endDelim = start, end }
}

// WithPartial registers p as a partial (and Extend parent) available
// to the template under p's own name.
func WithPartial(p *Template) Option {
	return func(t *Template) { t.partials[p.name] = p }
}

// SilentMiss sets whether a failed value lookup during Render produces
// an error or is silently skipped.
func SilentMiss(silent bool) Option {
	return func(t *Template) { t.silentMiss = silent }
}

// Debug enables override-exhaustiveness checking on Extend (§8
// invariant 8).
func Debug(debug bool) Option {
	return func(t *Template) { t.debug = debug }
}

// HTMLEscape is the default: encoded values are HTML-escaped.
func HTMLEscape() Option {
	return func(t *Template) { t.escape = escapeHTML }
}

// JSONEscape escapes encoded values using JSON string-escaping rules.
func JSONEscape() Option {
	return func(t *Template) { t.escape = escapeJSONMode }
}

// NoEscape disables escaping of encoded values.
func NoEscape() Option {
	return func(t *Template) { t.escape = escapeNone }
}

// Template is the public façade tying the lexer, parser, factory,
// handle, and compiled code array together (§4.17).
type Template struct {
	name       string
	codes      []Code
	partials   map[string]*Template
	startDelim string
	endDelim   string
	silentMiss bool
	debug      bool
	escape     escapeMode
	handle     *defaultHandle
}

// New returns a new, unparsed Template.
func New(options ...Option) *Template {
	t := &Template{
		partials:   make(map[string]*Template),
		startDelim: "{{",
		endDelim:   "}}",
		silentMiss: true,
		escape:     escapeHTML,
	}
	t.handle = &defaultHandle{tmpl: t, escape: t.escape}
	t.Option(options...)
	t.handle.escape = t.escape
	return t
}

// Option applies options to t.
func (t *Template) Option(options ...Option) {
	for _, opt := range options {
		opt(t)
	}
}

// Parse reads and compiles a template from r.
func (t *Template) Parse(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	l := newLexer(string(b), t.startDelim, t.endDelim)
	f := newFactory(t.name, t.handle, t.debug)
	p := newParser(l, f, true)
	codes, err := p.parse()
	if err != nil {
		return err
	}
	t.codes = codes
	return nil
}

// ParseString is a helper that parses s.
func (t *Template) ParseString(s string) error {
	return t.Parse(strings.NewReader(s))
}

// ParseBytes is a helper that parses b.
func (t *Template) ParseBytes(b []byte) error {
	return t.Parse(bytes.NewReader(b))
}

// Render executes the compiled template against scope and writes the
// result to w.
func (t *Template) Render(w io.Writer, scope *Scope) error {
	fw := NewFutureWriter()
	for _, code := range t.codes {
		if err := code.Execute(fw, scope); err != nil {
			if t.silentMiss {
				continue
			}
			return err
		}
	}
	return fw.FlushTo(w)
}

// RenderString is a helper that renders to a string.
func (t *Template) RenderString(scope *Scope) (string, error) {
	var b bytes.Buffer
	if err := t.Render(&b, scope); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderIdentity renders the template's own source-reproducing form
// (§5, §9) by executing every code against the identity sentinel
// scope.
func (t *Template) RenderIdentity() (string, error) {
	fw := NewFutureWriter()
	for _, code := range t.codes {
		if err := code.Execute(fw, Identity()); err != nil {
			return "", err
		}
	}
	return fw.Flush()
}

// Unexecute runs the inverse interpreter over text, threading a fresh
// root Scope through every compiled code in sequence (§4). It returns
// (nil, false) if any code fails to match, never an error: Unexecute
// is data-driven and best-effort (§7, §9).
func (t *Template) Unexecute(text string) (*Scope, bool) {
	scope := NewScope()
	cur := scope
	pos := 0
	for i, code := range t.codes {
		lookahead := truncate(t.codes, i, nil)
		resolved, ok := code.Unexecute(cur, text, &pos, lookahead)
		if !ok {
			return nil, false
		}
		cur = resolved
	}
	return cur, true
}

// Parse wraps template creation and parsing from r into one call.
func Parse(r io.Reader, options ...Option) (*Template, error) {
	t := New(options...)
	if err := t.Parse(r); err != nil {
		return nil, err
	}
	return t, nil
}

// Render wraps parsing and rendering into a single call.
func Render(r io.Reader, w io.Writer, scope *Scope, options ...Option) error {
	t, err := Parse(r, options...)
	if err != nil {
		return err
	}
	return t.Render(w, scope)
}
