// Package footnotes collects footnote lines and bibliography-style
// references from the classified line stream.
package footnotes

import (
	"strings"

	"github.com/jackzampolin/lectern/internal/classify"
	"github.com/jackzampolin/lectern/internal/types"
)

// Extractor scans classified lines for footnotes and references.
type Extractor struct {
	patterns *classify.Patterns
}

// New builds an Extractor around the shared pattern vocabulary.
func New(patterns *classify.Patterns) *Extractor {
	return &Extractor{patterns: patterns}
}

// Footnotes returns every footnote-classified line as a FootnoteRecord, in
// document order, with the leading numeral marker parsed when present.
func (e *Extractor) Footnotes(lines []types.Line) []types.FootnoteRecord {
	var records []types.FootnoteRecord
	for _, ln := range lines {
		if ln.Category != types.CategoryFootnote {
			continue
		}
		trimmed := strings.TrimSpace(ln.Text)
		rec := types.FootnoteRecord{
			Page: ln.Page,
			Text: trimmed,
		}
		if n, ok := e.patterns.FootnoteMarker(trimmed); ok {
			rec.Marker = &n
		}
		records = append(records, rec)
	}
	return records
}

// References returns the lines of a bibliography chapter as references.
// Every non-empty line of the chapter counts, whether or not it looks like a
// footnote: bibliography entries rarely carry numeral markers.
func (e *Extractor) References(lines []types.Line, bib types.Chapter) []types.Reference {
	var refs []types.Reference
	for _, ln := range lines {
		if ln.Page < bib.StartPage || ln.Page > bib.EndPage {
			continue
		}
		trimmed := strings.TrimSpace(ln.Text)
		if trimmed == "" {
			continue
		}
		switch ln.Category {
		case types.CategoryHeader, types.CategoryFooter, types.CategoryChapterHeading:
			continue
		}
		refs = append(refs, types.Reference{Page: ln.Page, Text: trimmed})
	}
	return refs
}
