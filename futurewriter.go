package mustachec

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

// writeItem is one entry in a FutureWriter's queue: either literal text
// or a deferred subcomputation that produces another writer's
// accumulated output (spec §5).
type writeItem struct {
	text     string
	isText   bool
	deferred func() (string, error)
}

// FutureWriter is a streaming writer that accepts literal text
// fragments and deferred subcomputations producing more writers; it
// flushes them in enqueue order to the underlying sink (spec §5).
//
// Section boundaries push a fresh child FutureWriter (spec §5 "Section
// boundary = writer push"); the child's Flush result is what gets
// enqueued into the parent as a single deferred item. This isolates a
// section's contents from interleaving with whatever the parent writes
// after enqueuing the section, while still letting the parent keep
// appending before the child actually runs.
type FutureWriter struct {
	queue []writeItem
}

// NewFutureWriter returns an empty FutureWriter.
func NewFutureWriter() *FutureWriter {
	return &FutureWriter{}
}

// WriteString enqueues a literal text fragment.
func (w *FutureWriter) WriteString(s string) {
	if s == "" {
		return
	}
	w.queue = append(w.queue, writeItem{text: s, isText: true})
}

// Write satisfies io.Writer by enqueuing the given bytes as text.
func (w *FutureWriter) Write(p []byte) (int, error) {
	w.WriteString(string(p))
	return len(p), nil
}

// Defer enqueues a subcomputation. fn is invoked during Flush, in the
// order it was enqueued; its result is spliced into the stream at
// exactly that position regardless of when fn actually runs (spec §5
// "Document order preserved").
func (w *FutureWriter) Defer(fn func() (string, error)) {
	w.queue = append(w.queue, writeItem{deferred: fn})
}

// Push creates a nested FutureWriter and enqueues its eventual Flush
// output as a deferred item of w, returning the child for the caller to
// write into. This is the "writer push" of spec §5.
func (w *FutureWriter) Push() *FutureWriter {
	child := NewFutureWriter()
	w.Defer(func() (string, error) {
		return child.Flush()
	})
	return child
}

// Flush drains the queue in enqueue order and concatenates outputs,
// running deferred subcomputations as it reaches them. A failing
// subcomputation aborts the flush, wrapped with the offending item's
// position so callers can attribute it.
func (w *FutureWriter) Flush() (string, error) {
	var b strings.Builder
	for i, item := range w.queue {
		if item.isText {
			b.WriteString(item.text)
			continue
		}
		s, err := item.deferred()
		if err != nil {
			return "", errors.Wrapf(err, "flushing deferred write item %d", i)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// FlushTo drains the queue directly into an io.Writer, propagating I/O
// errors as RenderError (spec §7 "I/O failures ... raise a single
// uniform error kind").
func (w *FutureWriter) FlushTo(dst io.Writer) error {
	s, err := w.Flush()
	if err != nil {
		return err
	}
	_, err = io.WriteString(dst, s)
	if err != nil {
		return newRenderError("", 0, "write", err)
	}
	return nil
}
