package mustachec

// extendCode is the Extend variant (spec §4.7): `{{<name}}…{{/name}}`,
// template inheritance. At construction it resolves the parent
// template, takes a copy of its compiled code array, and substitutes
// any Name node reachable at any depth whose key matches a local
// override.
type extendCode struct {
	name      string
	rewritten []Code
	line      int
	handle    Handle
}

// newExtendCode implements the three construction-time steps of §4.7.
func newExtendCode(name string, children []Code, line int, handle Handle, debug bool) (*extendCode, error) {
	overrides := make(map[string]*nameCode)
	for _, child := range children {
		switch n := child.(type) {
		case *nameCode:
			overrides[n.name] = n
		case *writeCode:
			// Pure whitespace/text between named sections: silently
			// consumed (§4.7.1).
		default:
			return nil, newConstructError(name, line, "illegal code in extend %s", name)
		}
	}

	parent, err := handle.Extend(name)
	if err != nil {
		return nil, err
	}

	used := make(map[string]bool, len(overrides))
	rewritten := make([]Code, len(parent.codes))
	for i, node := range parent.codes {
		rewritten[i] = rewriteNode(node, overrides, used)
	}

	if debug {
		var unused []string
		for key := range overrides {
			if !used[key] {
				unused = append(unused, key)
			}
		}
		if len(unused) > 0 {
			return nil, newConstructError(name, line, "unused override(s) in extend %s: %v", name, unused)
		}
	}

	return &extendCode{name: name, rewritten: rewritten, line: line, handle: handle}, nil
}

// rewriteNode returns a copy of node with any Name descendant matching
// an override key substituted in place, and any other Name/section
// children recursively rewritten (§4.7.2/.3). Leaf nodes (Write, Value,
// Partial, Eof) are returned unchanged; every section node is rebuilt
// with a freshly copied child slice, whether or not an override matched
// below it, so the parent template's own arrays stay untouched.
func rewriteNode(node Code, overrides map[string]*nameCode, used map[string]bool) Code {
	switch n := node.(type) {
	case *nameCode:
		if override, ok := overrides[n.name]; ok {
			used[n.name] = true
			return override
		}
		return newNameCode(n.name, rewriteChildren(n.children, overrides, used), n.line, n.handle)
	case *iterableCode:
		return newIterableCode(n.name, rewriteChildren(n.children, overrides, used), n.line, n.handle)
	case *ifIterableCode:
		return newIfIterableCode(n.name, rewriteChildren(n.children, overrides, used), n.line, n.handle)
	case *invertedIterableCode:
		return newInvertedIterableCode(n.name, rewriteChildren(n.children, overrides, used), n.line, n.handle)
	case *functionCode:
		return newFunctionCode(n.name, rewriteChildren(n.children, overrides, used), n.line, n.handle)
	case *extendCode:
		return &extendCode{name: n.name, rewritten: rewriteChildren(n.rewritten, overrides, used), line: n.line, handle: n.handle}
	default:
		return node
	}
}

func rewriteChildren(children []Code, overrides map[string]*nameCode, used map[string]bool) []Code {
	out := make([]Code, len(children))
	for i, child := range children {
		out[i] = rewriteNode(child, overrides, used)
	}
	return out
}

func (c *extendCode) Execute(w *FutureWriter, scope *Scope) error {
	if scope.IsIdentity() {
		return c.Identity(w)
	}
	errs := executeChildren(w, scope, c.rewritten)
	return renderError(c.handle, errs)
}

func (c *extendCode) Identity(w *FutureWriter) error {
	w.WriteString("{{<" + c.name + "}}")
	return nil
}

// Unexecute runs each rewritten parent code in sequence against scope,
// truncating tail-lookahead as in §4.10 (§4.7 unexecute clause).
func (c *extendCode) Unexecute(scope *Scope, text string, pos *int, next []Code) (*Scope, bool) {
	start := *pos
	cur := scope
	for i, node := range c.rewritten {
		lookahead := truncate(c.rewritten, i, next)
		resolved, matched := node.Unexecute(cur, text, pos, lookahead)
		if !matched {
			*pos = start
			return nil, false
		}
		cur = resolved
	}
	return cur, true
}

func (c *extendCode) Line() int { return c.line }
