package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jackzampolin/lectern/internal/types"
)

func sampleInput() (*types.DocumentStructure, []types.Chapter) {
	summary := &types.DocumentStructure{
		TotalPages:    3,
		TotalChapters: 1,
		ReadingTime:   types.ReadingTime{Slow: 0.2, Medium: 0.1, Fast: 0.1},
	}
	chaps := []types.Chapter{
		{
			Number:     1,
			Title:      "Beginnings",
			StartPage:  1,
			EndPage:    3,
			Paragraphs: []string{"It was a quiet morning in the old town square."},
			WordCount:  10,
			Duration:   types.ReadingTime{Slow: 0.1, Medium: 0.1, Fast: 0.1},
		},
	}
	return summary, chaps
}

func TestBuild(t *testing.T) {
	summary, chaps := sampleInput()
	doc := Build(summary, chaps)

	if doc.Metadata.TotalPages != 3 || doc.Metadata.TotalChapters != 1 {
		t.Errorf("unexpected metadata: %+v", doc.Metadata)
	}
	if len(doc.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(doc.Chapters))
	}
	ch := doc.Chapters[0]
	if ch.PageRange != [2]int{1, 3} {
		t.Errorf("unexpected page range: %v", ch.PageRange)
	}
	if ch.Title != "Beginnings" || ch.WordCount != 10 {
		t.Errorf("unexpected chapter: %+v", ch)
	}
}

func TestBuild_NilParagraphs(t *testing.T) {
	summary, chaps := sampleInput()
	chaps[0].Paragraphs = nil
	doc := Build(summary, chaps)

	if doc.Chapters[0].Paragraphs == nil {
		t.Fatal("paragraphs should export as an empty list, not null")
	}

	data, err := doc.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(data), `"paragraphs": null`) {
		t.Error("JSON output carries a null paragraphs field")
	}
}

func TestJSON_ValidatesAndRoundTrips(t *testing.T) {
	summary, chaps := sampleInput()
	doc := Build(summary, chaps)

	data, err := doc.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Document
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Metadata.TotalPages != 3 {
		t.Errorf("round trip lost metadata: %+v", decoded.Metadata)
	}
	if decoded.Chapters[0].Title != "Beginnings" {
		t.Errorf("round trip lost chapter title: %+v", decoded.Chapters[0])
	}
}

func TestJSON_Deterministic(t *testing.T) {
	summary, chaps := sampleInput()
	doc := Build(summary, chaps)

	first, err := doc.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := doc.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("repeated serialization is not byte identical")
	}
}

func TestYAML(t *testing.T) {
	summary, chaps := sampleInput()
	doc := Build(summary, chaps)

	data, err := doc.YAML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(data)
	for _, want := range []string{"total_pages: 3", "title: Beginnings", "word_count: 10"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML output missing %q:\n%s", want, out)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name: "minimal valid document",
			payload: `{
				"metadata": {
					"total_pages": 0,
					"total_chapters": 0,
					"estimated_reading_time": {"slow": 0, "medium": 0, "fast": 0}
				},
				"chapters": []
			}`,
		},
		{
			name:    "missing required sections",
			payload: `{}`,
			wantErr: true,
		},
		{
			name: "chapter missing title",
			payload: `{
				"metadata": {
					"total_pages": 1,
					"total_chapters": 1,
					"estimated_reading_time": {"slow": 0, "medium": 0, "fast": 0}
				},
				"chapters": [{
					"number": 1,
					"page_range": [1, 1],
					"word_count": 0,
					"paragraphs": [],
					"estimated_duration": {"slow": 0, "medium": 0, "fast": 0}
				}]
			}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			payload: `[]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.payload))
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
