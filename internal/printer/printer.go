// Package printer implements the constraint-driven pretty-printer: a
// chunk-stack render loop that walks a document and picks, at each
// Choice, between a flat and a broken layout using a bounded-lookahead
// fit test against the configured width.
package printer

import (
	"strings"

	"github.com/gregvale/apexfmt/internal/doc"
)

// chunk is a (document, indent, flat) triple on the render/fit stack.
type chunk struct {
	ref    doc.Ref
	indent int
	flat   bool
}

func (c chunk) withRef(ref doc.Ref) chunk {
	c.ref = ref
	return c
}

func (c chunk) indented(n int, ref doc.Ref) chunk {
	c.ref = ref
	c.indent += n
	return c
}

func (c chunk) flatten(ref doc.Ref) chunk {
	c.ref = ref
	c.flat = true
	return c
}

// printer holds render-loop state for a single Print call.
type printer struct {
	b        *doc.Builder
	maxWidth int
	col      int
	chunks   []chunk
}

// Print renders root under maxWidth columns, choosing between flat and
// broken layouts at every Choice via a bounded-lookahead fit test.
// Rendering is O(document size) amortised.
func Print(b *doc.Builder, root doc.Ref, maxWidth int) string {
	p := &printer{
		b:        b,
		maxWidth: maxWidth,
		chunks:   []chunk{{ref: root, indent: 0, flat: false}},
	}
	return p.print()
}

func (p *printer) print() string {
	var out strings.Builder

	for len(p.chunks) > 0 {
		c := p.pop()

		switch p.b.KindOf(c.ref) {
		case doc.KindNewline:
			out.WriteByte('\n')
			for i := 0; i < c.indent; i++ {
				out.WriteByte(' ')
			}
			p.col = c.indent

		case doc.KindText:
			out.WriteString(p.b.TextOf(c.ref))
			p.col += p.b.WidthOf(c.ref)

		case doc.KindFlat:
			p.push(c.flatten(p.b.ChildOf(c.ref)))

		case doc.KindIndent:
			p.push(c.indented(p.b.IndentOf(c.ref), p.b.ChildOf(c.ref)))

		case doc.KindConcat:
			items := p.b.ItemsOf(c.ref)
			for i := len(items) - 1; i >= 0; i-- {
				p.push(c.withRef(items[i]))
			}

		case doc.KindChoice:
			a, fallback := p.b.ChoiceOf(c.ref)
			if c.flat || p.fits(c.withRef(a)) {
				p.push(c.withRef(a))
			} else {
				p.push(c.withRef(fallback))
			}
		}
	}

	return out.String()
}

func (p *printer) push(c chunk) { p.chunks = append(p.chunks, c) }

func (p *printer) pop() chunk {
	n := len(p.chunks) - 1
	c := p.chunks[n]
	p.chunks = p.chunks[:n]
	return c
}

// fits is the bounded lookahead: walk a candidate chunk, then the
// remaining outer chunk stack (outermost last), accumulating text widths
// until a Newline under a non-flat chunk is reached (fits), the combined
// stack empties (fits), or the remaining budget is exceeded (does not
// fit). Within the fit test, a Choice picks its second branch when
// non-flat — by the first-line-shorter invariant on Choice this is a
// safe lower bound — and its first branch when flat.
func (p *printer) fits(candidate chunk) bool {
	remaining := p.maxWidth - p.col
	if remaining < 0 {
		remaining = 0
	}

	stack := []chunk{candidate}
	outer := p.chunks

	next := func() (chunk, bool) {
		if n := len(stack); n > 0 {
			c := stack[n-1]
			stack = stack[:n-1]
			return c, true
		}
		if n := len(outer); n > 0 {
			c := outer[n-1]
			outer = outer[:n-1]
			return c, true
		}
		return chunk{}, false
	}

	for {
		c, ok := next()
		if !ok {
			return true
		}

		switch p.b.KindOf(c.ref) {
		case doc.KindNewline:
			if c.flat {
				return false
			}
			return true

		case doc.KindText:
			w := p.b.WidthOf(c.ref)
			if w > remaining {
				return false
			}
			remaining -= w

		case doc.KindFlat:
			stack = append(stack, c.flatten(p.b.ChildOf(c.ref)))

		case doc.KindIndent:
			stack = append(stack, c.indented(p.b.IndentOf(c.ref), p.b.ChildOf(c.ref)))

		case doc.KindConcat:
			items := p.b.ItemsOf(c.ref)
			for i := len(items) - 1; i >= 0; i-- {
				stack = append(stack, c.withRef(items[i]))
			}

		case doc.KindChoice:
			a, fallback := p.b.ChoiceOf(c.ref)
			if c.flat {
				stack = append(stack, c.withRef(a))
			} else {
				stack = append(stack, c.withRef(fallback))
			}
		}
	}
}
