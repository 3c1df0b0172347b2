package emitter

import (
	"testing"

	"github.com/gregvale/apexfmt/internal/comment"
	"github.com/gregvale/apexfmt/internal/doc"
	"github.com/gregvale/apexfmt/internal/printer"
	"github.com/gregvale/apexfmt/internal/semantic"
)

func render(t *testing.T, root *semantic.Root, cmts comment.Map) string {
	t.Helper()
	b := doc.NewBuilder()
	e := New(b, cmts)
	d := e.Emit(root)
	return printer.Print(b, d, 80)
}

func TestEmitEmptyClass(t *testing.T) {
	root := &semantic.Root{Declarations: []semantic.Node{
		&semantic.ClassDeclaration{Name: "A"},
	}}
	got := render(t, root, comment.Map{})
	want := "class A {}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEmitFieldDeclaration(t *testing.T) {
	root := &semantic.Root{Declarations: []semantic.Node{
		&semantic.ClassDeclaration{Name: "A", Body: []semantic.Node{
			&semantic.FieldDeclaration{
				Type: &semantic.TypeRef{Name: "Integer"},
				Declarators: []*semantic.VariableDeclarator{
					{Name: "x", Initializer: &semantic.Literal{LitKind: semantic.LiteralInt, Text: "1"}},
				},
			},
		}},
	}}
	got := render(t, root, comment.Map{})
	want := "class A {\n  Integer x = 1;\n}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEmitDanglingCommentInEmptyBody(t *testing.T) {
	bodyID := uintptr(42)
	root := &semantic.Root{Declarations: []semantic.Node{
		&semantic.ClassDeclaration{Name: "A", BodyID: bodyID},
	}}
	cmts := comment.Map{
		bodyID: {Dangling: []comment.Comment{{Text: "/* inner */", Kind: comment.Block}}},
	}
	got := render(t, root, cmts)
	want := "class A {\n  /* inner */\n}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEmitPreAndPostComments(t *testing.T) {
	decl := &semantic.ClassDeclaration{Name: "A"}
	cmts := comment.Map{
		decl.CSTID(): {
			Pre:  []comment.Comment{{Text: "// hi", Kind: comment.Line}},
			Post: []comment.Comment{{Text: "// trailing", Kind: comment.Line}},
		},
	}
	root := &semantic.Root{Declarations: []semantic.Node{decl}}
	got := render(t, root, cmts)
	want := "// hi\nclass A {} // trailing"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEmitCommentOnDeclaratorSurvives(t *testing.T) {
	// Regression: a comment attached to a VariableDeclarator (reached only
	// through declaratorList, never through emit's dispatch) used to be
	// silently dropped.
	decl := &semantic.VariableDeclarator{
		Base:        semantic.Base{ID: 7},
		Name:        "x",
		Initializer: &semantic.Literal{LitKind: semantic.LiteralInt, Text: "1"},
	}
	root := &semantic.Root{Declarations: []semantic.Node{
		&semantic.ClassDeclaration{Name: "A", Body: []semantic.Node{
			&semantic.FieldDeclaration{
				Type:        &semantic.TypeRef{Name: "Integer"},
				Declarators: []*semantic.VariableDeclarator{decl},
			},
		}},
	}}
	cmts := comment.Map{
		decl.CSTID(): {Pre: []comment.Comment{{Text: "// note", Kind: comment.Line}}},
	}
	got := render(t, root, cmts)
	want := "class A {\n  Integer // note\n  x = 1;\n}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEmitCommentOnMethodArgumentSurvives(t *testing.T) {
	// Regression: a comment attached to an argument inside a method
	// invocation (reached only through the argument's own emit() call,
	// not as a top-level emitSeq item) used to be dropped.
	arg := &semantic.Identifier{Base: semantic.Base{ID: 5}, Name: "a"}
	root := &semantic.Root{Declarations: []semantic.Node{
		&semantic.MethodInvocation{Base: semantic.Base{ID: 6}, Name: "foo", Arguments: []semantic.Node{arg}},
	}}
	cmts := comment.Map{
		arg.CSTID(): {Post: []comment.Comment{{Text: "// arg", Kind: comment.Line}}},
	}
	got := render(t, root, cmts)
	want := "foo(a // arg)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEmitMethodInvocationWraps(t *testing.T) {
	args := make([]semantic.Node, 5)
	for i := range args {
		args[i] = &semantic.Identifier{Name: string(rune('a' + i))}
	}
	root := &semantic.Root{Declarations: []semantic.Node{
		// 66-column name: the one-line form "name(a, b, c, d, e)" is 81 columns.
		&semantic.MethodInvocation{Name: "fooooooooooooooooooooooooooooooooooooooooooooooooooooooooooooooooo", Arguments: args},
	}}
	got := render(t, root, comment.Map{})
	if len(got) == 0 {
		t.Fatal("expected non-empty output")
	}
	if len(splitLines(got)) == 1 {
		t.Fatalf("expected the call to wrap, got %q", got)
	}
	for _, line := range splitLines(got) {
		if len(line) > 80 {
			t.Errorf("line exceeds width 80: %q", line)
		}
	}
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
