// Package comment implements the collector and attacher of spec.md
// §4.3: a single CST walk gathers every line/block comment, classifies
// it, and binds it to the nearest semantic-node neighbour as a pre,
// post, or dangling comment.
package comment

import (
	"strings"

	"github.com/gregvale/apexfmt/internal/cst"
)

// Kind distinguishes a line comment from a block comment.
type Kind int

const (
	Line Kind = iota
	Block
)

// Comment is a value copied out of the CST, with the metadata spec.md
// §3.3 lists.
type Comment struct {
	Text    string
	Kind    Kind
	CSTID   uintptr

	HasLeadingContent              bool // a non-comment token ends on the same row just before it.
	HasTrailingContent             bool // a non-comment token begins on the same row just after it (block only).
	HasNewlineAbove                bool
	HasNewlineBelow                bool
	IsFollowedByBracketComposite   bool
	NeedsTrailingNewline           bool
	HasEmbeddedNewline             bool // block comment whose text spans multiple lines.
}

// Bucket holds the three ordered comment lists spec.md §3.3 defines for
// a single owning semantic node.
type Bucket struct {
	Pre      []Comment
	Post     []Comment
	Dangling []Comment
}

// Map is the global comment map: CST node identity to the bucket of
// comments attached to the semantic node built from it. Keyed by
// identity rather than back-pointers, per
// original_source/src/node_comment.rs's CommentMap.
type Map map[uintptr]*Bucket

func (m Map) bucket(id uintptr) *Bucket {
	b, ok := m[id]
	if !ok {
		b = &Bucket{}
		m[id] = b
	}
	return b
}

// Collect walks the tree rooted at root and returns every comment found,
// in source order, with its metadata populated from its immediate CST
// siblings.
func Collect(root *cst.Node) []*rawComment {
	var out []*rawComment
	walk(root, &out)
	return out
}

// rawComment pairs a Comment value with the CST node it came from; Attach
// looks up the attachment neighbours from that node.
type rawComment struct {
	node *cst.Node
	c    Comment
}

func walk(n *cst.Node, out *[]*rawComment) {
	if n == nil {
		return
	}
	if n.IsComment() {
		*out = append(*out, &rawComment{node: n, c: build(n)})
	}
	for i := 0; i < n.NamedChildCount(); i++ {
		walk(n.NamedChild(i), out)
	}
}

func build(n *cst.Node) Comment {
	text := n.Text()
	k := Line
	if n.Kind() == "block_comment" {
		k = Block
	}

	c := Comment{
		Text:  strings.TrimRight(text, " \t"),
		Kind:  k,
		CSTID: n.ID(),
	}

	if k == Block {
		c.HasEmbeddedNewline = strings.Contains(text, "\n")
	}

	if prev := n.PrevSibling(); prev != nil {
		c.HasNewlineAbove = n.StartRow() > prev.EndRow()+1
		for prev != nil && prev.IsComment() {
			prev = prev.PrevSibling()
		}
		c.HasLeadingContent = prev != nil && prev.EndRow() == n.StartRow()
	}
	if next := n.NextSibling(); next != nil {
		c.HasNewlineBelow = next.StartRow() > n.EndRow()+1
		c.IsFollowedByBracketComposite = next.IsBracketComposite()
		for next != nil && next.IsComment() {
			next = next.NextSibling()
		}
		c.HasTrailingContent = k == Block && next != nil && next.StartRow() == n.EndRow()
	}

	return c
}

// Attach applies the policy of spec.md §4.3 to every collected comment,
// adding each to m under the CST node id (cst.Node.ID) of the owning
// neighbour; the builder copies the same ids into the semantic tree, so
// Attach does not need to import the builder package.
func Attach(comments []*rawComment, m Map) {
	for _, rc := range comments {
		attachOne(rc, m)
	}
}

func attachOne(rc *rawComment, m Map) {
	n := rc.node
	c := rc.c

	// Decision 1 (DESIGN.md Open Question 1): a line comment's
	// trailing-newline requirement is only meaningful outside a bracket
	// composite node — inside one, the enclosing group's own
	// collapse/break decision already places one item per line when it
	// breaks, so forcing an extra hard break would double up or
	// contradict that decision.
	if parent := n.Parent(); parent != nil && !parent.IsBracketComposite() {
		if c.Kind == Line && n.NextSibling() != nil {
			c.NeedsTrailingNewline = true
		}
	}

	if c.HasLeadingContent {
		// Rule 1: shares a row with the preceding token — attach as
		// post of the preceding sibling's owning node.
		if prev := n.PrevNamedSibling(); prev != nil {
			m.bucket(prev.ID()).Post = append(m.bucket(prev.ID()).Post, c)
			return
		}
	}

	if next := n.NextNamedSibling(); next != nil {
		// Rule 2: attach as pre of the next non-extra sibling.
		m.bucket(next.ID()).Pre = append(m.bucket(next.ID()).Pre, c)
		return
	}

	// Rule 3: no such neighbour — dangling on the enclosing parent.
	if parent := n.Parent(); parent != nil {
		m.bucket(parent.ID()).Dangling = append(m.bucket(parent.ID()).Dangling, c)
	}
}
