// Package cst is the thin capability layer over the Apex concrete syntax
// tree: child-by-field-name, child-by-kind, children lookups, sibling
// walks, and UTF-8 text slicing. It is the only package that imports the
// tree-sitter bindings or the Apex grammar directly — every other
// package in this repository sees CST nodes only through *Node.
package cst

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	apex "github.com/aheber/tree-sitter-sfapex/bindings/go"
)

// Node wraps a tree-sitter node together with the source bytes it was
// parsed from, so callers never need to thread source text alongside a
// node separately.
type Node struct {
	n   *sitter.Node
	src []byte
}

func wrap(n *sitter.Node, src []byte) *Node {
	if n == nil {
		return nil
	}
	return &Node{n: n, src: src}
}

// Tree is a parsed file: its root node plus the source it was parsed
// from, kept together so callers can slice arbitrary ranges.
type Tree struct {
	Root   *Node
	Source []byte
}

// Parse parses src as Apex source and returns the resulting tree. It
// does not itself reject error nodes — callers needing the
// parse-or-fail contract of spec.md §4.6 should use FindError.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(apex.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("cst: parse: %w", err)
	}

	return &Tree{Root: wrap(tree.RootNode(), src), Source: src}, nil
}

// FindError returns the deepest error node in the tree rooted at n, or
// nil if the tree is free of errors. "Deepest" matches the original
// implementation's find_last_error_node: the reported error is the most
// specific one, not the root's generic "has an error somewhere" signal.
func FindError(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.IsError() || n.n.IsMissing() {
		// Prefer a deeper error if one exists under this node.
		if deeper := findErrorInChildren(n); deeper != nil {
			return deeper
		}
		return n
	}
	return findErrorInChildren(n)
}

func findErrorInChildren(n *Node) *Node {
	// All children, not only named ones: a parser-inserted MISSING token
	// is anonymous.
	for i := 0; i < int(n.n.ChildCount()); i++ {
		if found := FindError(wrap(n.n.Child(i), n.src)); found != nil {
			return found
		}
	}
	return nil
}

// ID returns a stable identity for n, suitable as a map key for the
// comment map (spec.md §3.3/§9 "keyed by CST node identity, not
// back-pointers").
func (n *Node) ID() uintptr { return n.n.ID() }

// Kind returns the node's grammar kind string.
func (n *Node) Kind() string { return n.n.Type() }

// IsError reports whether n itself is a syntax-error node.
func (n *Node) IsError() bool { return n.n.IsError() }

// IsComment reports whether n is a line or block comment node.
func (n *Node) IsComment() bool {
	switch n.Kind() {
	case "line_comment", "block_comment":
		return true
	default:
		return false
	}
}

// IsExtra reports whether n is an "extra" node (comments, and other
// grammar-defined extras) that participates in the tree but is skipped
// during normal sibling iteration over semantic content.
func (n *Node) IsExtra() bool { return n.n.IsExtra() }

// StartByte returns n's start byte offset in the source.
func (n *Node) StartByte() uint32 { return n.n.StartByte() }

// EndByte returns n's end byte offset in the source.
func (n *Node) EndByte() uint32 { return n.n.EndByte() }

// StartRow returns n's 0-indexed starting line.
func (n *Node) StartRow() uint32 { return n.n.StartPoint().Row }

// EndRow returns n's 0-indexed ending line.
func (n *Node) EndRow() uint32 { return n.n.EndPoint().Row }

// Text returns the UTF-8 slice of source text spanned by n.
func (n *Node) Text() string {
	return string(n.src[n.n.StartByte():n.n.EndByte()])
}

// NamedChildCount returns the number of named (non-anonymous) children.
func (n *Node) NamedChildCount() int { return int(n.n.NamedChildCount()) }

// NamedChild returns the named child at idx, or nil if out of range.
func (n *Node) NamedChild(idx int) *Node { return wrap(n.n.NamedChild(idx), n.src) }

// Children returns every named, non-extra child in source order —
// Go-idiomized from accessor.rs's children_vec.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, n.NamedChildCount())
	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c != nil && !c.IsExtra() {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first named, non-extra child, or nil.
// Go-idiomized from accessor.rs's try_first_c.
func (n *Node) FirstChild() *Node {
	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c != nil && !c.IsExtra() {
			return c
		}
	}
	return nil
}

// ChildByField returns the child registered under the given grammar
// field name, or nil. Go-idiomized from accessor.rs's try_c_by_n.
func (n *Node) ChildByField(name string) *Node {
	return wrap(n.n.ChildByFieldName(name), n.src)
}

// ChildByKind returns the first named child with the given kind, or nil.
// Go-idiomized from accessor.rs's try_c_by_k.
func (n *Node) ChildByKind(kind string) *Node {
	for _, c := range n.Children() {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

// ChildrenByKind returns every named child with the given kind.
// Go-idiomized from accessor.rs's try_cs_by_k / cs_by_k.
func (n *Node) ChildrenByKind(kind string) []*Node {
	var out []*Node
	for _, c := range n.Children() {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenByField returns every child registered under the given field
// name (the grammar allows repeated field names, e.g. multiple `modifier`
// children of `modifiers`). Go-idiomized from accessor.rs's cs_by_n.
func (n *Node) ChildrenByField(name string) []*Node {
	cursor := sitter.NewTreeCursor(n.n)
	defer cursor.Close()

	var out []*Node
	if !cursor.GoToFirstChild() {
		return out
	}
	for {
		if cursor.CurrentFieldName() == name {
			out = append(out, wrap(cursor.CurrentNode(), n.src))
		}
		if !cursor.GoToNextSibling() {
			break
		}
	}
	return out
}

// ChildValueByField returns the source text of the child registered
// under name. Go-idiomized from accessor.rs's cv_by_n / cvalue_by_n.
func (n *Node) ChildValueByField(name string) (string, bool) {
	c := n.ChildByField(name)
	if c == nil {
		return "", false
	}
	return c.Text(), true
}

// NextNamedSibling returns the next named, non-extra sibling, skipping
// over comments and other extras. Go-idiomized from accessor.rs's
// next_named (there it panics on absence; here absence is representable
// since Go callers are expected to check).
func (n *Node) NextNamedSibling() *Node {
	s := wrap(n.n.NextNamedSibling(), n.src)
	for s != nil && s.IsExtra() {
		s = wrap(s.n.NextNamedSibling(), s.src)
	}
	return s
}

// PrevNamedSibling returns the previous named, non-extra sibling.
func (n *Node) PrevNamedSibling() *Node {
	s := wrap(n.n.PrevNamedSibling(), n.src)
	for s != nil && s.IsExtra() {
		s = wrap(s.n.PrevNamedSibling(), s.src)
	}
	return s
}

// NextSibling returns the immediate next sibling, including extras
// (comments). Used by the comment collector, which must see comments
// that NextNamedSibling would otherwise skip over.
func (n *Node) NextSibling() *Node { return wrap(n.n.NextSibling(), n.src) }

// PrevSibling returns the immediate previous sibling, including extras.
func (n *Node) PrevSibling() *Node { return wrap(n.n.PrevSibling(), n.src) }

// Parent returns n's parent, or nil at the root.
func (n *Node) Parent() *Node { return wrap(n.n.Parent(), n.src) }

// bracketComposite is the set of CST kinds whose surface form is wrapped
// in {}, (), or [] — relevant to comment-placement heuristics (spec.md
// GLOSSARY "Bracket composite node").
var bracketComposite = map[string]bool{
	"block":                   true,
	"argument_list":           true,
	"accessor_list":           true,
	"annotation_argument_list": true,
	"array_initializer":       true,
	"map_initializer":         true,
	"enum_body":               true,
	"class_body":              true,
	"interface_body":          true,
}

// IsBracketComposite reports whether n's surface form is enclosed in
// {}, (), or [].
func (n *Node) IsBracketComposite() bool {
	return bracketComposite[n.Kind()]
}
