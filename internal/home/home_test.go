package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	d, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Path() != dir {
		t.Errorf("Path() = %q, want %q", d.Path(), dir)
	}
}

func TestNew_DefaultPath(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no user home directory available")
	}
	want := filepath.Join(home, DefaultDirName)
	if d.Path() != want {
		t.Errorf("Path() = %q, want %q", d.Path(), want)
	}
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()
	d, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := d.ExportsPath(), filepath.Join(dir, ExportsDirName); got != want {
		t.Errorf("ExportsPath() = %q, want %q", got, want)
	}
	if got, want := d.ConfigPath(), filepath.Join(dir, ConfigFileName); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
	if got, want := d.ExportPath("my-book", "json"), filepath.Join(dir, ExportsDirName, "my-book.json"); got != want {
		t.Errorf("ExportPath() = %q, want %q", got, want)
	}
}

func TestEnsureExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lectern-home")
	d, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	if d.Exists() {
		t.Fatal("home should not exist yet")
	}
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Exists() {
		t.Error("home should exist after EnsureExists")
	}
	if _, err := os.Stat(d.ExportsPath()); err != nil {
		t.Errorf("exports directory missing: %v", err)
	}
	if d.ConfigExists() {
		t.Error("config should not exist until written")
	}
}
