package footnotes

import (
	"testing"

	"github.com/jackzampolin/lectern/internal/classify"
	"github.com/jackzampolin/lectern/internal/types"
)

func TestFootnotes(t *testing.T) {
	e := New(classify.DefaultPatterns())
	lines := []types.Line{
		{Text: "The treaty was signed in the spring.", Page: 12, Index: 0, Category: types.CategoryContent},
		{Text: "[3] See also page 12", Page: 12, Index: 8, Category: types.CategoryFootnote},
		{Text: "1. the original manuscript is lost", Page: 14, Index: 9, Category: types.CategoryFootnote},
		{Text: "an annotation with no numeral marker", Page: 15, Index: 7, Category: types.CategoryFootnote},
	}

	records := e.Footnotes(lines)
	if len(records) != 3 {
		t.Fatalf("expected 3 footnotes, got %d", len(records))
	}

	first := records[0]
	if first.Page != 12 || first.Text != "[3] See also page 12" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.Marker == nil || *first.Marker != 3 {
		t.Errorf("expected marker 3, got %v", first.Marker)
	}

	if records[1].Marker == nil || *records[1].Marker != 1 {
		t.Errorf("expected marker 1, got %v", records[1].Marker)
	}
	if records[2].Marker != nil {
		t.Errorf("expected no marker, got %d", *records[2].Marker)
	}
}

func TestFootnotes_OrderPreserved(t *testing.T) {
	e := New(classify.DefaultPatterns())
	lines := []types.Line{
		{Text: "[1] first note", Page: 2, Index: 9, Category: types.CategoryFootnote},
		{Text: "[2] second note", Page: 5, Index: 9, Category: types.CategoryFootnote},
		{Text: "[3] third note", Page: 5, Index: 10, Category: types.CategoryFootnote},
	}

	records := e.Footnotes(lines)
	if len(records) != 3 {
		t.Fatalf("expected 3 footnotes, got %d", len(records))
	}
	for i, rec := range records {
		if rec.Marker == nil || *rec.Marker != i+1 {
			t.Errorf("record %d out of order: %+v", i, rec)
		}
	}
}

func TestFootnotes_NoneFound(t *testing.T) {
	e := New(classify.DefaultPatterns())
	lines := []types.Line{
		{Text: "Plain narration only.", Page: 1, Index: 0, Category: types.CategoryContent},
	}
	if got := e.Footnotes(lines); len(got) != 0 {
		t.Errorf("expected no footnotes, got %d", len(got))
	}
}

func TestReferences(t *testing.T) {
	e := New(classify.DefaultPatterns())
	bib := types.Chapter{Title: "Bibliography", StartPage: 200, EndPage: 202}
	lines := []types.Line{
		{Text: "Narration before the bibliography.", Page: 199, Index: 0, Category: types.CategoryContent},
		{Text: "Bibliography", Page: 200, Index: 0, Category: types.CategoryChapterHeading},
		{Text: "Smith, J. A History of Harbors. 1990.", Page: 200, Index: 1, Category: types.CategoryContent},
		{Text: "My Book", Page: 200, Index: 5, Category: types.CategoryFooter},
		{Text: "Jones, K. Willow Cultivation. 2004.", Page: 201, Index: 0, Category: types.CategoryContent},
		{Text: "", Page: 201, Index: 1, Category: types.CategoryEmpty},
		{Text: "Back-cover copy after the bibliography.", Page: 203, Index: 0, Category: types.CategoryContent},
	}

	refs := e.References(lines, bib)
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}
	if refs[0].Page != 200 || refs[0].Text != "Smith, J. A History of Harbors. 1990." {
		t.Errorf("unexpected first reference: %+v", refs[0])
	}
	if refs[1].Page != 201 {
		t.Errorf("unexpected second reference: %+v", refs[1])
	}
}
