package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MaxWidth != 80 || cfg.IndentSize != 2 {
		t.Fatalf("Default() = %+v, want {80 2}", cfg)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load(\"\") = %+v, want %+v", cfg, Default())
	}
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apexfmt.toml")
	if err := os.WriteFile(path, []byte("max_width = 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxWidth != 100 {
		t.Errorf("MaxWidth = %d, want 100", cfg.MaxWidth)
	}
	if cfg.IndentSize != 2 {
		t.Errorf("IndentSize = %d, want unchanged default 2", cfg.IndentSize)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apexfmt.toml")
	if err := os.WriteFile(path, []byte("max_wdith = 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() with unknown key: want error, got nil")
	}
}

func TestLoadRejectsNonPositiveWidth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apexfmt.toml")
	if err := os.WriteFile(path, []byte("max_width = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() with max_width = 0: want error, got nil")
	}
}

func TestDiscoverFindsNearestAncestor(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(root, "a", "apexfmt.toml")
	if err := os.WriteFile(cfgPath, []byte("max_width = 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := Discover(sub)
	if got != cfgPath {
		t.Fatalf("Discover(%q) = %q, want %q", sub, got, cfgPath)
	}
}

func TestDiscoverReturnsEmptyWhenNotFound(t *testing.T) {
	got := Discover(t.TempDir())
	if got != "" {
		t.Fatalf("Discover() = %q, want empty", got)
	}
}
