// Package structure assembles the hierarchical document model: ordered
// chapters with cleaned paragraphs, word counts and reading-time estimates,
// plus the document-level structure summary.
package structure

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackzampolin/lectern/internal/classify"
	"github.com/jackzampolin/lectern/internal/types"
)

// ErrPageRange indicates a chapter was computed with a negative page range,
// which the partitioning algorithm cannot produce. Fail loudly rather than
// silently repair.
var ErrPageRange = errors.New("negative chapter page range")

// Rates holds the words-per-minute constants for the three narration speeds.
type Rates struct {
	SlowWPM   int `mapstructure:"slow_wpm" yaml:"slow_wpm"`
	MediumWPM int `mapstructure:"medium_wpm" yaml:"medium_wpm"`
	FastWPM   int `mapstructure:"fast_wpm" yaml:"fast_wpm"`
}

// DefaultRates are the stock narration speeds.
func DefaultRates() Rates {
	return Rates{SlowWPM: 130, MediumWPM: 155, FastWPM: 180}
}

// Structurer partitions classified lines into chapters and derives the
// document summary. Construct with New; immutable afterwards.
type Structurer struct {
	patterns *classify.Patterns
	rates    Rates

	frontFraction float64 // fraction of leading pages scanned for front-matter cues
	backFraction  float64 // fraction of trailing pages scanned for back-matter cues
}

// Option configures a Structurer.
type Option func(*Structurer)

// WithRates overrides the narration-speed constants.
func WithRates(r Rates) Option {
	return func(s *Structurer) {
		if r.SlowWPM > 0 && r.MediumWPM > 0 && r.FastWPM > 0 {
			s.rates = r
		}
	}
}

// New builds a Structurer sharing the classifier's pattern vocabulary.
func New(patterns *classify.Patterns, opts ...Option) *Structurer {
	s := &Structurer{
		patterns:      patterns,
		rates:         DefaultRates(),
		frontFraction: 0.10,
		backFraction:  0.15,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rates returns the narration-speed constants in use.
func (s *Structurer) Rates() Rates { return s.rates }

// Build partitions the classified line stream by the chapter markers and
// returns the document summary plus the ordered chapter sequence.
//
// A document with no usable words yields an empty chapter list and a summary
// with IsEmpty set; that is not an error. Marker-order or page-range
// violations are errors: they indicate a detector bug upstream.
func (s *Structurer) Build(lines []types.Line, markers []types.ChapterMarker, totalPages int) (*types.DocumentStructure, []types.Chapter, error) {
	summary := &types.DocumentStructure{TotalPages: totalPages}

	if totalWords(lines) == 0 {
		summary.IsEmpty = true
		return summary, nil, nil
	}
	if len(markers) == 0 {
		// The detector guarantees at least one implicit marker.
		return nil, nil, fmt.Errorf("no chapter markers supplied")
	}

	chaps, err := s.buildChapters(lines, markers, totalPages)
	if err != nil {
		return nil, nil, err
	}

	s.fillStructureFlags(summary, lines, chaps, totalPages)
	summary.TotalChapters = len(chaps)

	words := 0
	for _, ch := range chaps {
		words += ch.WordCount
	}
	summary.ReadingTime = s.Estimate(words)

	return summary, chaps, nil
}

// Estimate converts a word count to minutes at the three narration speeds.
func (s *Structurer) Estimate(wordCount int) types.ReadingTime {
	minutes := func(wpm int) float64 {
		return math.Round(float64(wordCount)/float64(wpm)*10) / 10
	}
	return types.ReadingTime{
		Slow:   minutes(s.rates.SlowWPM),
		Medium: minutes(s.rates.MediumWPM),
		Fast:   minutes(s.rates.FastWPM),
	}
}

// buildChapters partitions lines at marker boundaries. Front-matter lines
// before the first marker become a preface chapter when the structural cues
// support one; otherwise they are dropped as non-narratable.
func (s *Structurer) buildChapters(lines []types.Line, markers []types.ChapterMarker, totalPages int) ([]types.Chapter, error) {
	var chaps []types.Chapter

	front := segmentBefore(lines, markers[0])
	if fm, ok := s.frontMatterChapter(front, markers[0]); ok {
		chaps = append(chaps, fm)
	}

	for i, m := range markers {
		seg := segmentBetween(lines, m, next(markers, i))

		ch := types.Chapter{
			Number:    i + 1,
			Title:     m.Title,
			StartPage: m.Page,
		}
		if m.Number != nil {
			ch.Number = *m.Number
		}
		if i+1 < len(markers) {
			ch.EndPage = markers[i+1].Page - 1
		} else {
			ch.EndPage = totalPages
		}
		if ch.EndPage < ch.StartPage {
			// Next chapter starts on the same page.
			ch.EndPage = ch.StartPage
		}
		// The first chapter absorbs any discarded front matter so page
		// ranges cover the document from page 1.
		if len(chaps) == 0 {
			ch.StartPage = 1
		}

		ch.Paragraphs = paragraphs(seg)
		ch.WordCount = wordCount(ch.Paragraphs)
		ch.Duration = s.Estimate(ch.WordCount)

		if ch.EndPage < ch.StartPage {
			return nil, fmt.Errorf("%w: chapter %q pages [%d, %d]", ErrPageRange, ch.Title, ch.StartPage, ch.EndPage)
		}
		chaps = append(chaps, ch)
	}

	return chaps, nil
}

// frontMatterChapter builds an implicit preface/introduction chapter from
// the lines before the first marker, when the cues support one.
func (s *Structurer) frontMatterChapter(front []types.Line, first types.ChapterMarker) (types.Chapter, bool) {
	if len(front) == 0 || first.Page <= 1 {
		// No room for a front-matter page range.
		return types.Chapter{}, false
	}

	title := ""
	for _, ln := range front {
		trimmed := strings.TrimSpace(ln.Text)
		switch {
		case s.patterns.MatchesPreface(trimmed):
			title = "Preface"
		case title == "" && s.patterns.MatchesIntroduction(trimmed):
			title = "Introduction"
		}
	}
	if title == "" {
		return types.Chapter{}, false
	}

	paras := paragraphs(front)
	if len(paras) == 0 {
		return types.Chapter{}, false
	}
	ch := types.Chapter{
		Number:     0,
		Title:      title,
		StartPage:  1,
		EndPage:    first.Page - 1,
		Paragraphs: paras,
	}
	ch.WordCount = wordCount(paras)
	ch.Duration = s.Estimate(ch.WordCount)
	return ch, true
}

// fillStructureFlags derives the front/back-matter presence flags.
// Table-of-contents and preface cues are searched in the leading fraction of
// pages, introduction must appear as a chapter title, bibliography and index
// cues are searched in the trailing fraction.
func (s *Structurer) fillStructureFlags(summary *types.DocumentStructure, lines []types.Line, chaps []types.Chapter, totalPages int) {
	frontLimit := int(math.Ceil(s.frontFraction * float64(totalPages)))
	if frontLimit < 1 {
		frontLimit = 1
	}
	backStart := totalPages - int(math.Ceil(s.backFraction*float64(totalPages)))
	if backStart < 1 {
		backStart = 1
	}

	for _, ln := range lines {
		trimmed := strings.TrimSpace(ln.Text)
		if trimmed == "" {
			continue
		}
		if ln.Page <= frontLimit {
			if s.patterns.MatchesTableOfContents(trimmed) {
				summary.HasTableOfContents = true
			}
			if s.patterns.MatchesPreface(trimmed) {
				summary.HasPreface = true
			}
		}
		if ln.Page >= backStart {
			if s.patterns.MatchesBibliography(trimmed) {
				summary.HasBibliography = true
			}
			if s.patterns.MatchesIndex(trimmed) {
				summary.HasIndex = true
			}
			if s.patterns.MatchesEpilogue(trimmed) {
				summary.HasEpilogue = true
			}
		}
	}

	for _, ch := range chaps {
		if s.patterns.MatchesIntroduction(ch.Title) {
			summary.HasIntroduction = true
		}
		if s.patterns.MatchesPreface(ch.Title) {
			summary.HasPreface = true
		}
		if s.patterns.MatchesEpilogue(ch.Title) {
			summary.HasEpilogue = true
		}
		if s.patterns.MatchesBibliography(ch.Title) {
			summary.HasBibliography = true
		}
	}
}

// BibliographyChapter returns the first chapter whose title matches the
// bibliography cue, for the reference extractor.
func (s *Structurer) BibliographyChapter(chaps []types.Chapter) (types.Chapter, bool) {
	for _, ch := range chaps {
		if s.patterns.MatchesBibliography(ch.Title) {
			return ch, true
		}
	}
	return types.Chapter{}, false
}

// segmentBefore returns the lines strictly before the marker position.
func segmentBefore(lines []types.Line, m types.ChapterMarker) []types.Line {
	var out []types.Line
	for _, ln := range lines {
		if before(ln, m) {
			out = append(out, ln)
		}
	}
	return out
}

// segmentBetween returns the lines at or after marker m and strictly before
// marker end (nil end means document end).
func segmentBetween(lines []types.Line, m types.ChapterMarker, end *types.ChapterMarker) []types.Line {
	var out []types.Line
	for _, ln := range lines {
		if before(ln, m) {
			continue
		}
		if end != nil && !before(ln, *end) {
			break
		}
		out = append(out, ln)
	}
	return out
}

func before(ln types.Line, m types.ChapterMarker) bool {
	if ln.Page != m.Page {
		return ln.Page < m.Page
	}
	return ln.Index < m.LineIndex
}

func next(markers []types.ChapterMarker, i int) *types.ChapterMarker {
	if i+1 < len(markers) {
		return &markers[i+1]
	}
	return nil
}

// paragraphs joins runs of content lines into paragraphs. A run ends at an
// empty-classified line; everything else (headings, footnotes) is skipped
// without breaking the run's position.
func paragraphs(lines []types.Line) []string {
	var paras []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			paras = append(paras, strings.Join(current, " "))
			current = nil
		}
	}

	for _, ln := range lines {
		switch ln.Category {
		case types.CategoryContent:
			// Normalize internal whitespace while joining.
			current = append(current, strings.Join(strings.Fields(ln.Text), " "))
		case types.CategoryEmpty:
			flush()
		}
	}
	flush()
	return paras
}

func wordCount(paras []string) int {
	n := 0
	for _, p := range paras {
		n += len(strings.Fields(p))
	}
	return n
}

func totalWords(lines []types.Line) int {
	n := 0
	for _, ln := range lines {
		if ln.Category == types.CategoryContent {
			n += len(strings.Fields(ln.Text))
		}
	}
	return n
}
