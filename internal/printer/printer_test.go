package printer

import (
	"testing"

	"github.com/gregvale/apexfmt/internal/doc"
)

func TestPrintText(t *testing.T) {
	b := doc.NewBuilder()
	root := b.Concat(b.Text("class "), b.Text("A"))

	got := Print(b, root, 80)
	want := "class A"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintGroupCollapsesWhenItFits(t *testing.T) {
	b := doc.NewBuilder()
	items := []doc.Ref{b.Text("a"), b.Text("b"), b.Text("c")}
	root := b.List("(", ")", 2, items)

	got := Print(b, root, 80)
	want := "(a, b, c)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintGroupBreaksWhenItDoesNotFit(t *testing.T) {
	b := doc.NewBuilder()
	// Five arguments under a narrow width force a break — each
	// argument lands on its own indented line, the trailing separator is
	// omitted, and the closing paren sits on its own line. Mirrors spec.md
	// §8 scenario S5.
	items := []doc.Ref{
		b.Text("alpha"), b.Text("beta"), b.Text("gamma"),
		b.Text("delta"), b.Text("epsilon"),
	}
	call := b.Concat(b.Text("foo"), b.List("(", ")", 2, items))

	got := Print(b, call, 20)
	want := "foo(\n  alpha,\n  beta,\n  gamma,\n  delta,\n  epsilon\n)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintNestedGroupsCollapseIndependently(t *testing.T) {
	b := doc.NewBuilder()
	inner := b.List("(", ")", 2, []doc.Ref{b.Text("x"), b.Text("y")})
	outer := b.List("[", "]", 2, []doc.Ref{inner, b.Text("z")})

	got := Print(b, outer, 80)
	want := "[(x, y), z]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintHeaderBraceBody(t *testing.T) {
	// Concat[header, " {", Indent(n, Concat[Newline, body]), Newline, "}"]
	// as described in spec.md §4.4 — exercised directly against the
	// classic S1/S2 class-declaration shape.
	b := doc.NewBuilder()
	header := b.Concat(b.Text("class "), b.Text("A"))
	body := b.Concat(b.Text("Integer x = 1;"))
	root := b.Concat(
		header,
		b.Text(" {"),
		b.Indent(2, b.Concat(b.Newline(), body)),
		b.Newline(),
		b.Text("}"),
	)

	got := Print(b, root, 80)
	want := "class A {\n  Integer x = 1;\n}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintFlatForcesSingleLine(t *testing.T) {
	b := doc.NewBuilder()
	inner := b.Concat(b.Text("a"), b.Newline(), b.Text("b"))
	root := b.Flat(b.Choice(b.Text("flat-branch"), inner))

	got := Print(b, root, 1)
	want := "flat-branch"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintUnbreakableTokenOverflowsWidth(t *testing.T) {
	// Invariant 1 (spec.md §8): a line may exceed max_width only when
	// every enclosing Choice had both branches overflow, i.e. a single
	// unbreakable token. There is nothing a Choice can do about a bare
	// Text wider than the budget — it is emitted as-is.
	b := doc.NewBuilder()
	root := b.Text("a_single_unbreakable_identifier_that_is_long")

	got := Print(b, root, 10)
	if got != "a_single_unbreakable_identifier_that_is_long" {
		t.Errorf("got %q", got)
	}
}

func TestPrintGroupNeverFitsWhenBodyContainsHardNewline(t *testing.T) {
	// Mirrors an anonymous-class body (a hard Newline from internal/emitter's
	// body()) sitting as one argument before a later, overly long argument.
	// fits() must never report the enclosing Group as fitting flat just
	// because it reached that embedded Newline first — if it did, the
	// softline before the long argument would be force-flattened to a
	// single space (skipping its own fits check) instead of breaking,
	// letting the long argument overflow max_width on the same line.
	b := doc.NewBuilder()
	item0 := b.Concat(b.Text("{"), b.Indent(2, b.Concat(b.Newline(), b.Text("x"))), b.Newline(), b.Text("}"))
	long := b.Text("reallyLongArgumentName")
	inner := b.Concat(item0, b.Text(","), b.Softline(), long)
	root := b.Group(b.Concat(b.Text("("), b.Indent(2, inner), b.Text(")")))

	got := Print(b, root, 20)
	want := "({\n    x\n  },\n  reallyLongArgumentName)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintEmptyList(t *testing.T) {
	b := doc.NewBuilder()
	root := b.Concat(b.Text("foo"), b.List("(", ")", 2, nil))

	got := Print(b, root, 80)
	want := "foo()"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
