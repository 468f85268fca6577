package classify

import (
	"testing"

	"github.com/jackzampolin/lectern/internal/types"
)

func TestClassify_RuleOrder(t *testing.T) {
	c := New(DefaultPatterns())

	tests := []struct {
		name      string
		line      string
		index     int
		pageLines int
		want      types.Category
	}{
		{"empty line", "", 5, 20, types.CategoryEmpty},
		{"whitespace only", "   \t ", 5, 20, types.CategoryEmpty},
		{"explicit chapter heading", "Chapter 4: The Storm", 0, 20, types.CategoryChapterHeading},
		{"portuguese heading", "Capítulo 2: O Começo", 3, 20, types.CategoryChapterHeading},
		{"roman numeral alone", "XI", 4, 20, types.CategoryChapterHeading},
		{"all caps heading", "THE LONG WINTER", 5, 20, types.CategoryChapterHeading},
		{"numbered section", "12. The Voyage Home", 5, 20, types.CategoryChapterHeading},
		{"page number top", "42", 0, 20, types.CategoryHeader},
		{"page number bottom", "42", 19, 20, types.CategoryFooter},
		{"page number mid-page", "42", 15, 20, types.CategoryFooter},
		{"decorated page number", "- 42 -", 19, 20, types.CategoryFooter},
		{"footnote bracketed", "[3] See also page 12", 10, 20, types.CategoryFootnote},
		{"footnote dotted", "3. an earlier survey found the same.", 10, 20, types.CategoryFootnote},
		{"body text", "It was a quiet morning in the old town.", 10, 20, types.CategoryContent},
		{"copyright footer", "Copyright 2019 by the author", 19, 20, types.CategoryFooter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conf := c.Classify(tt.line, tt.index, tt.pageLines, 1)
			if got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.line, got, tt.want)
			}
			if conf < 0 || conf > 1 {
				t.Errorf("confidence %v outside [0,1]", conf)
			}
		})
	}
}

func TestClassify_RepeatedPhrases(t *testing.T) {
	repeated := map[string]struct{}{
		Normalize("My Book Title"): {},
	}
	c := New(DefaultPatterns(), WithRepeatedPhrases(repeated))

	t.Run("repeated edge phrase is a header", func(t *testing.T) {
		got, _ := c.Classify("My Book Title", 0, 20, 3)
		if got != types.CategoryHeader {
			t.Errorf("got %s, want header", got)
		}
	})

	t.Run("repeated all-caps phrase is not promoted to heading", func(t *testing.T) {
		c2 := New(DefaultPatterns(), WithRepeatedPhrases(map[string]struct{}{
			Normalize("MY BOOK TITLE"): {},
		}))
		got, _ := c2.Classify("MY BOOK TITLE", 0, 20, 3)
		if got != types.CategoryHeader {
			t.Errorf("got %s, want header", got)
		}
	})

	t.Run("same phrase mid-page is content", func(t *testing.T) {
		got, _ := c.Classify("My Book Title", 10, 20, 3)
		if got != types.CategoryContent {
			t.Errorf("got %s, want content", got)
		}
	})
}

func TestClassify_NumeralHeadingTieBreak(t *testing.T) {
	t.Run("default treats bare numeral as page number", func(t *testing.T) {
		c := New(DefaultPatterns())
		got, _ := c.Classify("3", 10, 20, 1)
		if got != types.CategoryFooter {
			t.Errorf("got %s, want footer", got)
		}
	})

	t.Run("enabled treats mid-page numeral as heading", func(t *testing.T) {
		c := New(DefaultPatterns(), WithNumeralHeadings(true))
		got, _ := c.Classify("3", 10, 20, 1)
		if got != types.CategoryChapterHeading {
			t.Errorf("got %s, want chapter_heading", got)
		}
	})

	t.Run("enabled still removes edge numerals", func(t *testing.T) {
		c := New(DefaultPatterns(), WithNumeralHeadings(true))
		got, _ := c.Classify("3", 19, 20, 1)
		if got != types.CategoryFooter {
			t.Errorf("got %s, want footer", got)
		}
	})
}

func TestHeadingTier_RomanCharsetWords(t *testing.T) {
	p := DefaultPatterns()

	tests := []struct {
		line string
		want HeadingTier
	}{
		// Words spelled entirely in roman-numeral letters are not numerals;
		// they must still reach the all-caps tier.
		{"CIVIL", TierAllCaps},
		{"MIMIC", TierAllCaps},
		{"LIVID", TierAllCaps},
		{"THE LONG WINTER", TierAllCaps},
		{"XI", TierRoman},
		{"IV", TierRoman},
		// Too short for the all-caps tier and not a supported numeral.
		{"C", TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := p.HeadingTier(tt.line); got != tt.want {
				t.Errorf("HeadingTier(%q) = %d, want %d", tt.line, got, tt.want)
			}
		})
	}
}

func TestClassifyPages_Completeness(t *testing.T) {
	c := New(DefaultPatterns())
	pages := []types.Page{
		{Number: 1, Lines: []string{"Chapter 1", "", "Some body text here.", "42"}},
		{Number: 2, Lines: []string{"More text.", "", "[1] A footnote.", "43"}},
	}

	lines := c.ClassifyPages(pages)

	total := 0
	for _, p := range pages {
		total += len(p.Lines)
	}
	if len(lines) != total {
		t.Fatalf("classified %d lines, want %d", len(lines), total)
	}
	for i, ln := range lines {
		if ln.Category == "" {
			t.Errorf("line %d has no category", i)
		}
	}
}

func TestClassifyPages_OCRConfidenceCarried(t *testing.T) {
	c := New(DefaultPatterns())
	pages := []types.Page{
		{Number: 1, Lines: []string{"Scanned text line."}, OCRConfidences: []float64{0.42}},
	}

	lines := c.ClassifyPages(pages)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].OCRConfidence == nil || *lines[0].OCRConfidence != 0.42 {
		t.Error("expected OCR confidence to be carried through")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"My Book — Page 12", "my book — page #"},
		{"My Book — Page 13", "my book — page #"},
		{"  Spaced   Out  ", "spaced out"},
		{"42", "#"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
