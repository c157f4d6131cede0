package mustachec

import (
	"fmt"

	"github.com/pkg/errors"
)

// RenderError is the single uniform error kind surfaced by forward
// rendering (spec §7): I/O failures and semantic type violations (a
// Function section whose binding is neither a callable nor nil) all
// wrap into this, with causal chains preserved via github.com/pkg/errors.
// Line is the source line of the failing code (0 for a write failure).
// The code nodes leave File empty, and Error prints "<string>" in its
// place.
type RenderError struct {
	File string
	Line int
	Op   string
	err  error
}

func newRenderError(file string, line int, op string, err error) *RenderError {
	return &RenderError{File: file, Line: line, Op: op, err: errors.WithStack(err)}
}

func (e *RenderError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s:%d: %s: %s", "<string>", e.Line, e.Op, e.err)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Op, e.err)
}

func (e *RenderError) Unwrap() error { return e.err }

// ConstructError is fatal and reported to the caller at template
// compile time: partial-not-found, illegal-code-in-extend, or (in debug
// mode) unused-override (spec §6, §7).
type ConstructError struct {
	File   string
	Line   int
	Reason string
}

func newConstructError(file string, line int, reason string, args ...interface{}) *ConstructError {
	return &ConstructError{File: file, Line: line, Reason: fmt.Sprintf(reason, args...)}
}

func (e *ConstructError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}
