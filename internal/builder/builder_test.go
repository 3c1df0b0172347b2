package builder

import (
	"context"
	"testing"

	"github.com/gregvale/apexfmt/internal/cst"
	"github.com/gregvale/apexfmt/internal/semantic"
)

func parse(t *testing.T, src string) *cst.Tree {
	t.Helper()
	tree, err := cst.Parse(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("cst.Parse() error = %v", err)
	}
	return tree
}

func TestBuildSimpleClass(t *testing.T) {
	tree := parse(t, "public class Foo { Integer x = 1; }")

	root, err := Build(tree.Root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(root.Declarations) != 1 {
		t.Fatalf("len(Declarations) = %d, want 1", len(root.Declarations))
	}

	class, ok := root.Declarations[0].(*semantic.ClassDeclaration)
	if !ok {
		t.Fatalf("Declarations[0] is %T, want *semantic.ClassDeclaration", root.Declarations[0])
	}
	if class.Name != "Foo" {
		t.Errorf("Name = %q, want %q", class.Name, "Foo")
	}
	if len(class.Body) != 1 {
		t.Fatalf("len(Body) = %d, want 1", len(class.Body))
	}

	field, ok := class.Body[0].(*semantic.FieldDeclaration)
	if !ok {
		t.Fatalf("Body[0] is %T, want *semantic.FieldDeclaration", class.Body[0])
	}
	if field.Type.Name != "Integer" {
		t.Errorf("Type.Name = %q, want %q", field.Type.Name, "Integer")
	}
	if len(field.Declarators) != 1 || field.Declarators[0].Name != "x" {
		t.Errorf("Declarators = %+v, want [{Name: x}]", field.Declarators)
	}
}

func TestBuildUnknownNodeReturnsTypedError(t *testing.T) {
	// A bare expression at the top level is not a recognised declaration
	// kind, so the dispatch table should report it precisely.
	tree := parse(t, "1 + 1;")

	_, err := Build(tree.Root)
	if err == nil {
		t.Fatal("Build() on a non-declaration top level: want error, got nil")
	}
}
