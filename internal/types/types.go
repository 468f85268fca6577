// Package types provides shared types used across multiple packages.
// This package has no dependencies on other lectern packages to avoid import cycles.
package types

// Category is the classification assigned to a single extracted line.
type Category string

const (
	// CategoryChapterHeading marks a line that opens a chapter, part or section.
	CategoryChapterHeading Category = "chapter_heading"
	// CategoryHeader marks a running header or page number at the top of a page.
	CategoryHeader Category = "header"
	// CategoryFooter marks a running footer or page number at the bottom of a page.
	CategoryFooter Category = "footer"
	// CategoryFootnote marks a footnote line.
	CategoryFootnote Category = "footnote"
	// CategoryContent marks a narratable body-text line.
	CategoryContent Category = "content"
	// CategoryEmpty marks a blank or whitespace-only line.
	CategoryEmpty Category = "empty"
)

// Line is a single extracted line of text with its classification.
// Category and Confidence are assigned once by the classifier; a Line is
// never mutated after that.
type Line struct {
	Text       string   // raw text, leading/trailing whitespace preserved
	Page       int      // source page number, 1-indexed
	Index      int      // position within the page, 0-indexed
	Category   Category // assigned classification
	Confidence float64  // classifier confidence in [0,1]

	// OCRConfidence is an opaque quality hint from the OCR engine, if any.
	// Nil when the text came from a native text layer.
	OCRConfidence *float64
}

// Page is one page of raw extracted text before classification.
type Page struct {
	Number int      // 1-indexed page number
	Lines  []string // raw lines in reading order

	// OCRConfidences, when present, is parallel to Lines.
	OCRConfidences []float64
}

// Document is the raw per-page input produced by the extraction step.
type Document struct {
	ID    string // opaque document identifier
	Title string // title, usually derived from the source filename
	Pages []Page
}

// TotalPages returns the page count of the document.
func (d *Document) TotalPages() int {
	return len(d.Pages)
}

// MarkerKind indicates which structural unit a chapter marker opens.
type MarkerKind string

const (
	KindChapter MarkerKind = "chapter"
	KindPart    MarkerKind = "part"
	KindSection MarkerKind = "section"
	KindHeading MarkerKind = "heading"
)

// ChapterMarker is a detected chapter boundary. Markers are ordered by
// document position; no two markers share a (Page, LineIndex) pair.
type ChapterMarker struct {
	Title      string
	Number     *int // parsed arabic or roman numeral, nil if none
	Kind       MarkerKind
	Page       int     // 1-indexed page the marker appears on
	LineIndex  int     // 0-indexed line within the page
	Confidence float64 // detection-pattern confidence in [0,1]
}

// ReadingTime holds estimated minutes at the three named narration rates.
type ReadingTime struct {
	Slow   float64 `json:"slow" yaml:"slow"`
	Medium float64 `json:"medium" yaml:"medium"`
	Fast   float64 `json:"fast" yaml:"fast"`
}

// Chapter is the structural unit of the document: a title, an inclusive page
// range and the paragraphs that belong to it. Immutable once built.
type Chapter struct {
	Number     int
	Title      string
	StartPage  int // inclusive
	EndPage    int // inclusive
	Paragraphs []string
	WordCount  int
	Duration   ReadingTime
}

// DocumentStructure is the document-level summary derived once from the full
// classified line stream.
type DocumentStructure struct {
	HasTableOfContents bool
	HasIntroduction    bool
	HasPreface         bool
	HasEpilogue        bool
	HasBibliography    bool
	HasIndex           bool
	TotalPages         int
	TotalChapters      int
	ReadingTime        ReadingTime

	// IsEmpty is set when extraction produced no usable words anywhere.
	// Callers decide whether that is fatal.
	IsEmpty bool
}

// FootnoteRecord is a footnote with its page and optional leading marker.
type FootnoteRecord struct {
	Page   int
	Text   string
	Marker *int // numeral parsed from the line start, nil if absent
}

// Reference is a bibliography-style entry associated with a page.
type Reference struct {
	Page int
	Text string
}
