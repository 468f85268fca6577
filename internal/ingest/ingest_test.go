package ingest

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSortPDFsByNumber(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "numeric suffixes sort numerically",
			paths: []string{"book-2.pdf", "book-10.pdf", "book-1.pdf"},
			want:  []string{"book-1.pdf", "book-2.pdf", "book-10.pdf"},
		},
		{
			name:  "unnumbered file comes first",
			paths: []string{"book-1.pdf", "book.pdf"},
			want:  []string{"book.pdf", "book-1.pdf"},
		},
		{
			name:  "no numbers sorts alphabetically",
			paths: []string{"zebra.pdf", "alpha.pdf"},
			want:  []string{"alpha.pdf", "zebra.pdf"},
		},
		{
			name:  "single path unchanged",
			paths: []string{"only.pdf"},
			want:  []string{"only.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sortPDFsByNumber(tt.paths)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sortPDFsByNumber(%v) = %v, want %v", tt.paths, got, tt.want)
			}
		})
	}
}

func TestSortPDFsByNumber_DoesNotMutateInput(t *testing.T) {
	paths := []string{"book-2.pdf", "book-1.pdf"}
	sortPDFsByNumber(paths)
	if paths[0] != "book-2.pdf" {
		t.Error("input slice was mutated")
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"crusade-europe.pdf", "crusade-europe"},
		{"my-book-1.pdf", "my-book"},
		{"/some/dir/another-book-12.pdf", "another-book"},
		{"plain.pdf", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := deriveTitle(tt.path); got != tt.want {
				t.Errorf("deriveTitle(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty string", "", nil},
		{"single line", "hello", []string{"hello"}},
		{"trailing newline dropped", "a\nb\n", []string{"a", "b"}},
		{"windows line endings", "a\r\nb", []string{"a", "b"}},
		{"blank interior line kept", "a\n\nb", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitLines(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitLines(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFromText(t *testing.T) {
	doc := FromText("page one line\fpage two line\nsecond line")

	if doc.ID == "" {
		t.Error("expected a generated document ID")
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if doc.Pages[0].Number != 1 || doc.Pages[1].Number != 2 {
		t.Errorf("pages not numbered sequentially: %d, %d", doc.Pages[0].Number, doc.Pages[1].Number)
	}
	if len(doc.Pages[1].Lines) != 2 {
		t.Errorf("expected 2 lines on page 2, got %d", len(doc.Pages[1].Lines))
	}
}

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample-book.txt")
	if err := os.WriteFile(path, []byte("first page\fsecond page"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadText(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "sample-book" {
		t.Errorf("expected title derived from filename, got %q", doc.Title)
	}
	if doc.TotalPages() != 2 {
		t.Errorf("expected 2 pages, got %d", doc.TotalPages())
	}
}

func TestLoadText_Missing(t *testing.T) {
	if _, err := LoadText(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no paths", func(t *testing.T) {
		if _, err := Load(ctx, Request{}); err == nil {
			t.Error("expected an error for an empty path list")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		req := Request{Paths: []string{filepath.Join(t.TempDir(), "missing.pdf")}}
		if _, err := Load(ctx, req); err == nil {
			t.Error("expected an error for a missing PDF")
		}
	})
}
