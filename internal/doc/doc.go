// Package doc implements the layout-document algebra: an immutable,
// arena-allocated intermediate representation of formatting choices.
//
// A Doc is one of six variants (Text, Newline, Flat, Indent, Concat,
// Choice). Every Doc is allocated from a Builder whose lifetime bounds a
// single file's formatting; Refs returned by a Builder are only valid for
// the Builder that produced them.
package doc

// Kind discriminates the six document variants.
type Kind int

const (
	KindText Kind = iota
	KindNewline
	KindFlat
	KindIndent
	KindConcat
	KindChoice
)

// Ref addresses a Doc owned by a Builder's arena by its index; the first
// Doc a Builder allocates is Ref 0.
type Ref int

// node is the arena-resident representation of a Doc. Only the fields
// relevant to Kind are populated.
type node struct {
	kind Kind

	text  string // KindText
	width int    // KindText: precomputed display width of text

	child Ref // KindFlat, KindIndent
	n     int // KindIndent: added indent columns

	items []Ref // KindConcat

	a, b Ref // KindChoice: a is preferred, b is the fallback
}

// Builder is a bump-allocated arena of document nodes scoped to one
// format call. It owns every Ref it hands out; there is no ownership
// bookkeeping beyond the slice backing the arena, and the whole arena is
// discarded in one step when the caller is done with it.
type Builder struct {
	nodes []node
}

// NewBuilder returns an empty arena with room for a typical file's worth
// of documents preallocated, to cut down on slice growth during a single
// emission pass.
func NewBuilder() *Builder {
	return &Builder{nodes: make([]node, 0, 1024)}
}

func (b *Builder) alloc(n node) Ref {
	b.nodes = append(b.nodes, n)
	return Ref(len(b.nodes) - 1)
}

// at returns the node addressed by ref. It panics on an out-of-range ref,
// which can only happen if a Ref from a different Builder is misused.
func (b *Builder) at(ref Ref) *node {
	return &b.nodes[ref]
}

// Text allocates a literal string fragment. s must not contain a newline.
func (b *Builder) Text(s string) Ref {
	return b.alloc(node{kind: KindText, text: s, width: displayWidth(s)})
}

// Newline allocates a mandatory line break.
func (b *Builder) Newline() Ref {
	return b.alloc(node{kind: KindNewline})
}

// Flat forces d and all its descendants into single-line mode.
func (b *Builder) Flat(d Ref) Ref {
	return b.alloc(node{kind: KindFlat, child: d})
}

// Indent renders d with the current indent increased by n columns.
func (b *Builder) Indent(n int, d Ref) Ref {
	return b.alloc(node{kind: KindIndent, child: d, n: n})
}

// Concat sequentially composes the given documents.
func (b *Builder) Concat(items ...Ref) Ref {
	return b.alloc(node{kind: KindConcat, items: items})
}

// Choice tries a first; if a does not fit on the current line, b is used
// instead. Callers must maintain the invariant that b's first line is
// never longer than a's first line — Group, Softline and Maybeline all
// preserve it by construction.
func (b *Builder) Choice(a, c Ref) Ref {
	return b.alloc(node{kind: KindChoice, a: a, b: c})
}

// Group prefers the flat rendering of d, breaking only if it does not fit.
func (b *Builder) Group(d Ref) Ref {
	return b.Choice(b.Flat(d), d)
}

// Softline renders as a single space when flat, a newline when broken.
func (b *Builder) Softline() Ref {
	return b.Choice(b.Text(" "), b.Newline())
}

// Maybeline renders as nothing when flat, a newline when broken.
func (b *Builder) Maybeline() Ref {
	return b.Choice(b.Text(""), b.Newline())
}

// Join interleaves sep between each item, producing a single Concat.
func (b *Builder) Join(sep Ref, items []Ref) Ref {
	if len(items) == 0 {
		return b.Text("")
	}
	out := make([]Ref, 0, 2*len(items)-1)
	for i, it := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, it)
	}
	return b.Concat(out...)
}

// List builds the canonical "comma-separated list that may wrap" shape:
// Choice(Flat(open, item0, ", ", item1, ..., close),
// Concat(open, indent(newline, item0, ",", newline, item1, ...), newline, close)).
// The whole list collapses onto one line when it fits; otherwise every
// item goes on its own line and a trailing separator is omitted.
func (b *Builder) List(open, close string, indentSize int, items []Ref) Ref {
	o, c := b.Text(open), b.Text(close)
	if len(items) == 0 {
		return b.Concat(o, c)
	}

	flat := make([]Ref, 0, 2*len(items))
	broken := make([]Ref, 0, 2*len(items)+1)
	broken = append(broken, b.Newline())
	for i, it := range items {
		if i > 0 {
			flat = append(flat, b.Text(", "))
			broken = append(broken, b.Text(","), b.Newline())
		}
		flat = append(flat, it)
		broken = append(broken, it)
	}

	oneLine := b.Flat(b.Concat(o, b.Concat(flat...), c))
	return b.Choice(oneLine, b.Concat(o, b.Indent(indentSize, b.Concat(broken...)), b.Newline(), c))
}

// Inspection API for internal/printer. The arena's node type stays
// unexported — printer walks the tree through these accessors rather than
// reaching into Builder's internals directly.

// KindOf returns the variant tag of ref.
func (b *Builder) KindOf(ref Ref) Kind { return b.at(ref).kind }

// TextOf returns the literal text of a KindText node.
func (b *Builder) TextOf(ref Ref) string { return b.at(ref).text }

// WidthOf returns the precomputed display width of a KindText node.
func (b *Builder) WidthOf(ref Ref) int { return b.at(ref).width }

// ChildOf returns the sole child of a KindFlat or KindIndent node.
func (b *Builder) ChildOf(ref Ref) Ref { return b.at(ref).child }

// IndentOf returns the added indent of a KindIndent node.
func (b *Builder) IndentOf(ref Ref) int { return b.at(ref).n }

// ItemsOf returns the sequence of a KindConcat node.
func (b *Builder) ItemsOf(ref Ref) []Ref { return b.at(ref).items }

// ChoiceOf returns the preferred and fallback branches of a KindChoice node.
func (b *Builder) ChoiceOf(ref Ref) (a, fallback Ref) {
	n := b.at(ref)
	return n.a, n.b
}

// displayWidth computes the on-screen column width of s. Apex source is
// ASCII-oriented; this counts runes rather than bytes so the rare non-ASCII
// identifier or string literal still lines up under width bookkeeping.
func displayWidth(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
