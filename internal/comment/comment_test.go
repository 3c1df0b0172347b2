package comment

import (
	"context"
	"testing"

	"github.com/gregvale/apexfmt/internal/cst"
)

func collectAndAttach(t *testing.T, src string) (Map, []*rawComment) {
	t.Helper()
	tree, err := cst.Parse(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("cst.Parse() error = %v", err)
	}
	raw := Collect(tree.Root)
	m := Map{}
	Attach(raw, m)
	return m, raw
}

func TestAttachLeadingCommentBindsAsPre(t *testing.T) {
	src := "class A {\n  // hi\n  Integer x;\n}"
	m, raw := collectAndAttach(t, src)
	if len(raw) != 1 {
		t.Fatalf("len(raw) = %d, want 1", len(raw))
	}
	var found bool
	for _, b := range m {
		if len(b.Pre) == 1 && b.Pre[0].Text == "// hi" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a bucket with Pre = [// hi], got %+v", m)
	}
}

func TestAttachTrailingCommentBindsAsPost(t *testing.T) {
	src := "class A {\n  Integer x; // trailing\n}"
	m, _ := collectAndAttach(t, src)
	var found bool
	for _, b := range m {
		if len(b.Post) == 1 && b.Post[0].Text == "// trailing" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a bucket with Post = [// trailing], got %+v", m)
	}
}

func TestAttachDanglingCommentInEmptyBody(t *testing.T) {
	src := "class A { /* inner */ }"
	m, _ := collectAndAttach(t, src)
	var found bool
	for _, b := range m {
		if len(b.Dangling) == 1 && b.Dangling[0].Text == "/* inner */" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a bucket with Dangling = [/* inner */], got %+v", m)
	}
}

func TestCollectPreservesSourceOrder(t *testing.T) {
	src := "// first\nclass A {}\n// second\nclass B {}"
	_, raw := collectAndAttach(t, src)
	if len(raw) != 2 {
		t.Fatalf("len(raw) = %d, want 2", len(raw))
	}
	if raw[0].c.Text != "// first" || raw[1].c.Text != "// second" {
		t.Fatalf("raw = %+v, want [// first, // second] in order", raw)
	}
}
