package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gregvale/apexfmt/internal/runner"
)

const sampleSource = "public class Foo{\npublic void bar( ) {\nreturn;\n}\n}\n"

func TestRunCheckAndWriteAreMutuallyExclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.cls")
	if err := os.WriteFile(path, []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}

	code := run([]string{"-check", "-write", path})
	if code != runner.ExitUsageError {
		t.Fatalf("run() = %d, want %d", code, runner.ExitUsageError)
	}
}

func TestRunCheckRequiresAPath(t *testing.T) {
	code := run([]string{"-check"})
	if code != runner.ExitUsageError {
		t.Fatalf("run() = %d, want %d", code, runner.ExitUsageError)
	}
}

func TestRunVersionFlag(t *testing.T) {
	code := run([]string{"-version"})
	if code != runner.ExitOK {
		t.Fatalf("run() = %d, want %d", code, runner.ExitOK)
	}
}

func TestRunCheckDetectsUnformattedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.cls")
	if err := os.WriteFile(path, []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}

	code := run([]string{"-check", "-quiet", path})
	if code != runner.ExitDifferences {
		t.Fatalf("run() = %d, want %d", code, runner.ExitDifferences)
	}
}
