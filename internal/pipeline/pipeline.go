// Package pipeline orchestrates the processing stages over one document:
// clean, classify, detect chapters, structure, extract footnotes. The whole
// pipeline is deterministic: running it twice on the same input produces
// identical results.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/jackzampolin/lectern/internal/chapters"
	"github.com/jackzampolin/lectern/internal/classify"
	"github.com/jackzampolin/lectern/internal/clean"
	"github.com/jackzampolin/lectern/internal/export"
	"github.com/jackzampolin/lectern/internal/footnotes"
	"github.com/jackzampolin/lectern/internal/structure"
	"github.com/jackzampolin/lectern/internal/types"
)

// Classifier assigns a category to every line of every page.
// The concrete implementation is chosen once at pipeline construction.
type Classifier interface {
	ClassifyPages(pages []types.Page) []types.Line
}

// Detector finds chapter boundaries in a classified line stream.
type Detector interface {
	Detect(lines []types.Line) ([]types.ChapterMarker, error)
}

// Settings carries the pipeline tunables. The zero value is usable; empty
// fields fall back to defaults.
type Settings struct {
	Languages           []string
	Rates               structure.Rates
	RepetitionThreshold float64
	EdgeWindow          int
	MaxEdgeLineLength   int
	NumeralHeadings     bool
}

// Processor runs the full pipeline. Construct with New; a Processor holds no
// per-document state and is safe for concurrent use across documents.
type Processor struct {
	patterns   *classify.Patterns
	cleaner    *clean.Cleaner
	structurer *structure.Structurer
	extractor  *footnotes.Extractor
	settings   Settings
	log        *slog.Logger

	newClassifier func(repeated map[string]struct{}) Classifier
	newDetector   func(repeated map[string]struct{}) Detector
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the pipeline logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Processor) { p.log = log }
}

// WithClassifier injects an alternative classifier implementation. The
// repeated-phrase set from the cleaner's pre-scan is supplied at run time.
func WithClassifier(fn func(repeated map[string]struct{}) Classifier) Option {
	return func(p *Processor) { p.newClassifier = fn }
}

// WithDetector injects an alternative chapter detector implementation.
func WithDetector(fn func(repeated map[string]struct{}) Detector) Option {
	return func(p *Processor) { p.newDetector = fn }
}

// New builds a Processor with the given settings.
func New(settings Settings, opts ...Option) *Processor {
	patterns := classify.DefaultPatterns(settings.Languages...)

	p := &Processor{
		patterns: patterns,
		settings: settings,
		cleaner: clean.New(patterns,
			clean.WithThreshold(settings.RepetitionThreshold),
			clean.WithEdgeWindow(settings.EdgeWindow)),
		structurer: structure.New(patterns, structure.WithRates(settings.Rates)),
		extractor:  footnotes.New(patterns),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	if p.newClassifier == nil {
		p.newClassifier = func(repeated map[string]struct{}) Classifier {
			return classify.New(patterns,
				classify.WithEdgeWindow(settings.EdgeWindow),
				classify.WithMaxEdgeLength(settings.MaxEdgeLineLength),
				classify.WithNumeralHeadings(settings.NumeralHeadings),
				classify.WithRepeatedPhrases(repeated))
		}
	}
	if p.newDetector == nil {
		p.newDetector = func(repeated map[string]struct{}) Detector {
			return chapters.New(patterns,
				chapters.WithRepeatedPhrases(repeated),
				chapters.WithLogger(p.log))
		}
	}
	return p
}

// Patterns returns the shared pattern vocabulary.
func (p *Processor) Patterns() *classify.Patterns { return p.patterns }

// Result holds everything the pipeline derived from one document. It is the
// consumer surface for narration and reading components.
type Result struct {
	doc        types.Document
	lines      []types.Line
	markers    []types.ChapterMarker
	summary    *types.DocumentStructure
	chapters   []types.Chapter
	footnotes  []types.FootnoteRecord
	references []types.Reference
}

// StructuredContent returns the ordered chapter sequence.
func (r *Result) StructuredContent() []types.Chapter { return r.chapters }

// DocumentStructure returns the document-level summary.
func (r *Result) DocumentStructure() *types.DocumentStructure { return r.summary }

// FootnotesAndReferences returns the footnote records and the reference
// list, separately.
func (r *Result) FootnotesAndReferences() ([]types.FootnoteRecord, []types.Reference) {
	return r.footnotes, r.references
}

// ChapterMarkers returns the detected chapter boundaries.
func (r *Result) ChapterMarkers() []types.ChapterMarker { return r.markers }

// Lines returns the cleaned, classified line stream.
func (r *Result) Lines() []types.Line { return r.lines }

// Export flattens the result into the portable export document.
func (r *Result) Export() *export.Document {
	return export.Build(r.summary, r.chapters)
}

// Run executes the pipeline over one document.
func (p *Processor) Run(doc types.Document) (*Result, error) {
	log := p.log.With("document", doc.ID, "pages", len(doc.Pages))

	// Pass 1 over the raw pages: repetition pre-scan shared by the
	// cleaner, classifier and detector.
	repeated := p.cleaner.RepeatedPhrases(doc.Pages)
	cleaned := p.cleaner.Clean(doc.Pages)

	classifier := p.newClassifier(repeated)
	lines := classifier.ClassifyPages(cleaned)

	detector := p.newDetector(repeated)
	markers, err := detector.Detect(lines)
	if err != nil {
		return nil, fmt.Errorf("chapter detection failed: %w", err)
	}

	summary, chaps, err := p.structurer.Build(lines, markers, doc.TotalPages())
	if err != nil {
		return nil, fmt.Errorf("structuring failed: %w", err)
	}

	res := &Result{
		doc:      doc,
		lines:    lines,
		markers:  markers,
		summary:  summary,
		chapters: chaps,
	}

	if summary.IsEmpty {
		log.Warn("document produced no usable text")
		return res, nil
	}

	res.footnotes = p.extractor.Footnotes(lines)
	if bib, ok := p.structurer.BibliographyChapter(chaps); ok {
		res.references = p.extractor.References(lines, bib)
	}

	log.Info("pipeline complete",
		"chapters", len(chaps),
		"footnotes", len(res.footnotes),
		"words", totalWords(chaps))
	return res, nil
}

func totalWords(chaps []types.Chapter) int {
	n := 0
	for _, ch := range chaps {
		n += ch.WordCount
	}
	return n
}
