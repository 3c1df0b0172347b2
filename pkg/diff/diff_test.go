package diff

import (
	"strings"
	"testing"
)

func TestUnifiedIdenticalInputProducesNoDiff(t *testing.T) {
	src := "class Foo {\n}\n"
	if got := Unified("Foo.cls", src, src); got != "" {
		t.Fatalf("Unified() for identical input = %q, want empty", got)
	}
}

func TestUnifiedReportsChangedLines(t *testing.T) {
	old := "class Foo {\n  void bar(){}\n}\n"
	newSrc := "class Foo {\n  void bar() {\n  }\n}\n"

	got := Unified("Foo.cls", old, newSrc)
	if !strings.Contains(got, "--- Foo.cls") {
		t.Errorf("missing from-file header: %q", got)
	}
	if !strings.Contains(got, "+++ Foo.cls.formatted") {
		t.Errorf("missing to-file header: %q", got)
	}
	if !strings.Contains(got, "-  void bar(){}") {
		t.Errorf("missing removed line: %q", got)
	}
	if !strings.Contains(got, "+  void bar() {") {
		t.Errorf("missing added line: %q", got)
	}
}
