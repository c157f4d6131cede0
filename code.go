package mustachec

import "unicode/utf8"

// Code is the polymorphic compiled template opcode (spec §2/§3). The
// set of variants is closed: Write, Value, Iterable, IfIterable,
// InvertedIterable, Function, Partial, Extend, Name, Eof.
type Code interface {
	// Execute renders this code against scope into w. If scope is the
	// identity sentinel (Scope.IsIdentity), implementations delegate to
	// Identity instead of evaluating (spec §5 "Identity mode", §9).
	Execute(w *FutureWriter, scope *Scope) error

	// Unexecute attempts to match this code against text starting at
	// *pos, given the codes that follow it in document order (next).
	// On success it advances *pos past whatever this code consumed and
	// returns the (possibly extended) scope and true. On failure it
	// returns (nil, false) and must not have mutated *pos (spec §4,
	// §7 "never raises for data-driven mismatches").
	Unexecute(scope *Scope, text string, pos *int, next []Code) (*Scope, bool)

	// Identity writes this code's own source-like form (spec §5
	// round-trip contract).
	Identity(w *FutureWriter) error

	// Line reports the source line this code was compiled from, for
	// diagnostics (spec §4.13).
	Line() int
}

// executeChildren runs every child against scope into w, continuing
// through every one regardless of failure instead of aborting at the
// first: a missing field in one child (or one sub-scope iteration)
// must not suppress the children that come after it. Failures are
// collected rather than discarded, for renderError to turn into the
// section's aggregate result.
func executeChildren(w *FutureWriter, scope *Scope, children []Code) []error {
	var errs []error
	for _, node := range children {
		if err := node.Execute(w, scope); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// renderError turns a section's accumulated child failures into the
// value its Execute should return: nil if nothing failed, nil if the
// handle is configured to silently swallow lookup misses (§6), and
// otherwise the first failure (the uniform single-error-kind model of
// §7 has no aggregate/slice variant to report the rest).
func renderError(handle Handle, errs []error) error {
	if len(errs) == 0 || handle.SilentMiss() {
		return nil
	}
	return errs[0]
}

// truncate builds the lookahead view that the child at index i within
// siblings should see: whatever follows it among its own siblings,
// concatenated with the externally supplied next. Each call returns a
// freshly allocated slice so that recursive callers never share
// mutable backing arrays (spec §4.10).
func truncate(siblings []Code, i int, next []Code) []Code {
	tail := siblings[i+1:]
	view := make([]Code, 0, len(tail)+len(next))
	view = append(view, tail...)
	view = append(view, next...)
	return view
}

// extractSpan implements the shared value-span extraction primitive of
// spec §4.10: given the current position, the text, and the lookahead
// list of codes that follow, it probes forward one rune at a time until
// the next opcode would match, and returns the substring consumed by
// the current opcode plus the position to commit to.
//
// Known limitation (§9 accepted gap): if next's head is an Eof, it
// always matches immediately regardless of probe position, so a
// trailing value with nothing but Eof following it extracts a
// zero-length span instead of consuming to end-of-text. Unexecute is
// explicitly best-effort (§1, §9).
func extractSpan(scope *Scope, text string, pos int, next []Code) (string, int, bool) {
	if len(next) == 0 {
		return "", pos, false
	}
	lastPos := pos
	probe := pos
	for len(next) > 0 && probe < len(text) {
		lastPos = probe
		p := probe
		if _, ok := next[0].Unexecute(scope, text, &p, next[1:]); ok {
			return text[pos:lastPos], lastPos, true
		}
		_, width := utf8.DecodeRuneInString(text[probe:])
		probe += width
	}
	return "", pos, false
}
