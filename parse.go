// Copyright (c) 2014 Alex Kalyvitis

package mustachec

import (
	"fmt"
)

// parser turns a lexer's token stream directly into a []Code (spec §3):
// every section closes by calling straight into the factory, since
// Code construction can itself fail — Partial and Extend resolve
// their referent eagerly.
type parser struct {
	lexer   *lexer
	factory *factory
	encoded bool
}

// newParser creates a new parser using the supplied lexer.
func newParser(l *lexer, f *factory, encoded bool) *parser {
	return &parser{lexer: l, factory: f, encoded: encoded}
}

func (p *parser) errorf(t token, format string, v ...interface{}) error {
	return fmt.Errorf("%d:%d syntax error: %s", t.line, t.col, fmt.Sprintf(format, v...))
}

// parse parses the whole template and appends a trailing Eof code, so
// that every compiled array is terminated the way value-span
// extraction (§4.10) and Unexecute (§4.9, §4.6) require.
func (p *parser) parse() ([]Code, error) {
	codes, err := p.parseUntil("")
	if err != nil {
		return nil, err
	}
	codes = append(codes, p.factory.eof(p.lexer.lineNum()))
	return codes, nil
}

// parseUntil collects codes until EOF (when name is empty) or until a
// matching {{/name}} is read (when parsing the body of a section).
func (p *parser) parseUntil(name string) ([]Code, error) {
	var codes []Code
	for {
		t := p.lexer.token()
		switch t.typ {
		case tokenEOF:
			if name != "" {
				return nil, p.errorf(t, "unclosed section %q", name)
			}
			return codes, nil
		case tokenError:
			return nil, p.errorf(t, "%s", t.val)
		case tokenText:
			codes = append(codes, p.factory.write(t.val, t.line))
		case tokenSetDelim:
			// Delimiters were already swapped inside the lexer; nothing
			// reaches the code model.
		case tokenLeftDelim:
			code, closed, err := p.parseTag(name)
			if err != nil {
				return nil, err
			}
			if closed {
				return codes, nil
			}
			if code != nil {
				codes = append(codes, code)
			}
		default:
			return nil, p.errorf(t, "unexpected token %s", t)
		}
	}
}

// parseTag parses the inside of a {{ ... }} tag. If it reads the
// closing {{/name}} for the section currently being parsed, closed is
// true and the caller should stop collecting codes.
func (p *parser) parseTag(openName string) (code Code, closed bool, err error) {
	t := p.lexer.token()
	switch t.typ {
	case tokenIdentifier:
		c, err := p.parseVar(t, p.encoded)
		return c, false, err
	case tokenRawStart:
		c, err := p.parseRawVar()
		return c, false, err
	case tokenRawAlt:
		c, err := p.parseVar(p.lexer.token(), false)
		return c, false, err
	case tokenComment:
		err := p.parseComment()
		return nil, false, err
	case tokenPartial:
		c, err := p.parsePartial(t.line)
		return c, false, err
	case tokenSectionStart:
		c, err := p.parseSection(t, tokenSectionStart)
		return c, false, err
	case tokenSectionIf:
		c, err := p.parseSection(t, tokenSectionIf)
		return c, false, err
	case tokenSectionInverse:
		c, err := p.parseSection(t, tokenSectionInverse)
		return c, false, err
	case tokenSectionFunction:
		c, err := p.parseSection(t, tokenSectionFunction)
		return c, false, err
	case tokenExtend:
		c, err := p.parseSection(t, tokenExtend)
		return c, false, err
	case tokenName:
		c, err := p.parseSection(t, tokenName)
		return c, false, err
	case tokenSectionEnd:
		ident := p.lexer.token()
		if ident.typ != tokenIdentifier {
			return nil, false, p.errorf(ident, "unexpected token %s", ident)
		}
		if next := p.lexer.token(); next.typ != tokenRightDelim {
			return nil, false, p.errorf(next, "unexpected token %s", next)
		}
		if ident.val != openName {
			return nil, false, p.errorf(ident, "mismatched section close %q, want %q", ident.val, openName)
		}
		return nil, true, nil
	}
	return nil, false, p.errorf(t, "unreachable code %s", t)
}

func (p *parser) parseVar(ident token, encoded bool) (Code, error) {
	if t := p.lexer.token(); t.typ != tokenRightDelim {
		return nil, p.errorf(t, "unexpected token %s", t)
	}
	return p.factory.value(ident.val, encoded, ident.line), nil
}

func (p *parser) parseRawVar() (Code, error) {
	t := p.lexer.token()
	if t.typ != tokenIdentifier {
		return nil, p.errorf(t, "unexpected token %s", t)
	}
	if next := p.lexer.token(); next.typ != tokenRawEnd {
		return nil, p.errorf(next, "unexpected token %s", next)
	}
	if next := p.lexer.token(); next.typ != tokenRightDelim {
		return nil, p.errorf(next, "unexpected token %s", next)
	}
	return p.factory.value(t.val, false, t.line), nil
}

func (p *parser) parseComment() error {
	for {
		t := p.lexer.token()
		switch t.typ {
		case tokenEOF:
			return p.errorf(t, "unexpected token %s", t)
		case tokenError:
			return p.errorf(t, "%s", t.val)
		case tokenRightDelim:
			return nil
		}
	}
}

func (p *parser) parsePartial(line int) (Code, error) {
	t := p.lexer.token()
	if t.typ != tokenIdentifier {
		return nil, p.errorf(t, "unexpected token %s", t)
	}
	if next := p.lexer.token(); next.typ != tokenRightDelim {
		return nil, p.errorf(next, "unexpected token %s", next)
	}
	code, err := p.factory.partial(t.val, line)
	if err != nil {
		return nil, err
	}
	return code, nil
}

// parseSection parses the body of any of the six bracketing section
// kinds (Iterable, IfIterable, InvertedIterable, Function, Extend,
// Name) sharing the same {{sigil name}}...{{/name}} grammar.
func (p *parser) parseSection(t token, kind tokenType) (Code, error) {
	ident := p.lexer.token()
	if ident.typ != tokenIdentifier {
		return nil, p.errorf(ident, "unexpected token %s", ident)
	}
	if next := p.lexer.token(); next.typ != tokenRightDelim {
		return nil, p.errorf(next, "unexpected token %s", next)
	}

	children, err := p.parseUntil(ident.val)
	if err != nil {
		return nil, err
	}

	switch kind {
	case tokenSectionStart:
		return p.factory.iterable(ident.val, children, t.line), nil
	case tokenSectionIf:
		return p.factory.ifIterable(ident.val, children, t.line), nil
	case tokenSectionInverse:
		return p.factory.invertedIterable(ident.val, children, t.line), nil
	case tokenSectionFunction:
		return p.factory.function(ident.val, children, t.line), nil
	case tokenExtend:
		return p.factory.extend(ident.val, children, t.line)
	case tokenName:
		return p.factory.name(ident.val, children, t.line), nil
	}
	return nil, p.errorf(t, "unreachable section kind")
}
