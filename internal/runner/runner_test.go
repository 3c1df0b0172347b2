package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gregvale/apexfmt/internal/config"
)

const sampleSource = "public class Foo{\npublic void bar( ) {\nreturn;\n}\n}\n"

func TestFormatProducesStableOutput(t *testing.T) {
	out1, err := Format(context.Background(), []byte(sampleSource), config.Default())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out2, err := Format(context.Background(), []byte(out1), config.Default())
	if err != nil {
		t.Fatalf("Format() on own output error = %v", err)
	}
	if out1 != out2 {
		t.Fatalf("Format() is not idempotent:\nfirst:\n%s\nsecond:\n%s", out1, out2)
	}
}

func TestFormatRejectsInvalidUTF8(t *testing.T) {
	_, err := Format(context.Background(), []byte{0xff, 0xfe, 0x00}, config.Default())
	if err == nil {
		t.Fatal("Format() on invalid UTF-8: want error, got nil")
	}
}

func TestFormatRejectsSyntaxError(t *testing.T) {
	_, err := Format(context.Background(), []byte("public class Foo{"), config.Default())
	if err == nil {
		t.Fatal("Format() on truncated input: want error, got nil")
	}
}

func TestRunCheckModeExitsNonZeroWhenUnformatted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.cls")
	if err := os.WriteFile(path, []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	code := Run(context.Background(), Options{
		Paths:  []string{path},
		Mode:   ModeCheck,
		Stdout: &bytes.Buffer{},
		Stderr: &stderr,
	})

	if code != ExitDifferences {
		t.Fatalf("Run() exit = %d, want %d", code, ExitDifferences)
	}
	if !strings.Contains(stderr.String(), "would be reformatted") {
		t.Errorf("stderr = %q, want a reformat diagnostic", stderr.String())
	}
}

func TestRunWriteModeOverwritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.cls")
	if err := os.WriteFile(path, []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}

	code := Run(context.Background(), Options{
		Paths:  []string{path},
		Mode:   ModeWrite,
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	if code != ExitOK {
		t.Fatalf("Run() exit = %d, want %d", code, ExitOK)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) == sampleSource {
		t.Fatal("file was not rewritten")
	}
}

func TestRunQuietSuppressesPerFileDiagnostic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.cls")
	if err := os.WriteFile(path, []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	code := Run(context.Background(), Options{
		Paths:  []string{path},
		Mode:   ModeCheck,
		Quiet:  true,
		Stdout: &bytes.Buffer{},
		Stderr: &stderr,
	})

	if code != ExitDifferences {
		t.Fatalf("Run() exit = %d, want %d", code, ExitDifferences)
	}
	if strings.Contains(stderr.String(), "would be reformatted") {
		t.Errorf("stderr = %q, want no per-file diagnostic under --quiet", stderr.String())
	}
}

func TestStdinIsTerminalFalseForNonFileReader(t *testing.T) {
	if stdinIsTerminal(strings.NewReader(sampleSource)) {
		t.Fatal("a strings.Reader must never be treated as a terminal")
	}
}

func TestStdinIsTerminalFalseForRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.cls")
	if err := os.WriteFile(path, []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if stdinIsTerminal(f) {
		t.Fatal("a regular file must never be treated as a terminal")
	}
}

func TestFormatNormalizesCRLFToLF(t *testing.T) {
	crlf := strings.ReplaceAll(sampleSource, "\n", "\r\n")
	out, err := Format(context.Background(), []byte(crlf), config.Default())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.ContainsRune(out, '\r') {
		t.Fatalf("Format() output contains CR: %q", out)
	}
}

func TestRunStdinPrintsFormattedOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{
		Stdin:  strings.NewReader(sampleSource),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if code != ExitOK {
		t.Fatalf("Run() exit = %d, want %d; stderr=%s", code, ExitOK, stderr.String())
	}
	if stdout.Len() == 0 {
		t.Fatal("Run() over stdin produced no output")
	}
}
