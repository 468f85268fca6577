// Package clean removes non-content lines from raw per-page text: bare page
// numbers, and running headers/footers that repeat at the same page position
// across the document.
package clean

import (
	"math"

	"github.com/jackzampolin/lectern/internal/classify"
	"github.com/jackzampolin/lectern/internal/types"
)

const (
	// DefaultRepetitionThreshold is the fraction of pages on which a
	// normalized edge line must appear before it is treated as a running
	// header or footer.
	DefaultRepetitionThreshold = 0.30
	// DefaultEdgeWindow is how many lines at each page edge are inspected.
	DefaultEdgeWindow = 2
)

// Cleaner removes headers, footers and page numbers from raw pages.
// Removal is two-pass: a pre-scan builds a frequency map of normalized edge
// lines across the whole document, then a removal pass drops every
// occurrence of a phrase that clears the repetition threshold, on all
// pages rather than just where it was first seen.
type Cleaner struct {
	patterns   *classify.Patterns
	threshold  float64
	edgeWindow int
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithThreshold sets the repetition threshold as a fraction of pages.
func WithThreshold(t float64) Option {
	return func(c *Cleaner) {
		if t > 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// WithEdgeWindow sets how many lines at each page edge are inspected.
func WithEdgeWindow(n int) Option {
	return func(c *Cleaner) {
		if n > 0 {
			c.edgeWindow = n
		}
	}
}

// New builds a Cleaner sharing the classifier's pattern vocabulary.
func New(patterns *classify.Patterns, opts ...Option) *Cleaner {
	c := &Cleaner{
		patterns:   patterns,
		threshold:  DefaultRepetitionThreshold,
		edgeWindow: DefaultEdgeWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// bucket identifies which page edge a line sits on.
type bucket int

const (
	bucketNone bucket = iota
	bucketHead
	bucketFoot
)

type phraseKey struct {
	bucket bucket
	norm   string
}

// Clean returns cleaned copies of the pages with page numbers and running
// headers/footers removed. Input pages are not mutated.
func (c *Cleaner) Clean(pages []types.Page) []types.Page {
	running := c.runningPhrases(pages)

	cleaned := make([]types.Page, 0, len(pages))
	for _, page := range pages {
		out := types.Page{Number: page.Number}
		for i, raw := range page.Lines {
			if c.remove(raw, i, len(page.Lines), running) {
				continue
			}
			out.Lines = append(out.Lines, raw)
			if i < len(page.OCRConfidences) {
				out.OCRConfidences = append(out.OCRConfidences, page.OCRConfidences[i])
			}
		}
		cleaned = append(cleaned, out)
	}
	return cleaned
}

// RepeatedPhrases returns the normalized edge phrases seen at the same
// position on at least two pages besides their own, so three pages in total.
// The classifier uses this set for its repetition cue.
func (c *Cleaner) RepeatedPhrases(pages []types.Page) map[string]struct{} {
	counts := c.phraseCounts(pages)
	set := make(map[string]struct{})
	for key, n := range counts {
		if n >= 3 {
			set[key.norm] = struct{}{}
		}
	}
	return set
}

// remove decides whether one line goes: unconditionally for bare page
// numbers, by repetition for edge lines.
func (c *Cleaner) remove(raw string, index, pageLines int, running map[phraseKey]bool) bool {
	norm := classify.Normalize(raw)
	if norm == "" {
		return false
	}
	if c.patterns.IsDigitOnly(raw) {
		return true
	}
	b := c.edgeBucket(index, pageLines)
	if b == bucketNone {
		return false
	}
	return running[phraseKey{bucket: b, norm: norm}]
}

// runningPhrases is pass 1: which normalized edge phrases clear the
// repetition threshold.
func (c *Cleaner) runningPhrases(pages []types.Page) map[phraseKey]bool {
	counts := c.phraseCounts(pages)
	minPages := int(math.Ceil(c.threshold * float64(len(pages))))
	if minPages < 2 {
		minPages = 2
	}
	running := make(map[phraseKey]bool)
	for key, n := range counts {
		if n >= minPages {
			running[key] = true
		}
	}
	return running
}

// phraseCounts counts, per (edge bucket, normalized text), how many distinct
// pages carry the phrase.
func (c *Cleaner) phraseCounts(pages []types.Page) map[phraseKey]int {
	counts := make(map[phraseKey]int)
	for _, page := range pages {
		seen := make(map[phraseKey]bool)
		for i, raw := range page.Lines {
			b := c.edgeBucket(i, len(page.Lines))
			if b == bucketNone {
				continue
			}
			norm := classify.Normalize(raw)
			if norm == "" || c.patterns.IsDigitOnly(raw) {
				continue
			}
			key := phraseKey{bucket: b, norm: norm}
			if !seen[key] {
				seen[key] = true
				counts[key]++
			}
		}
	}
	return counts
}

func (c *Cleaner) edgeBucket(index, pageLines int) bucket {
	if index < c.edgeWindow {
		return bucketHead
	}
	if index >= pageLines-c.edgeWindow {
		return bucketFoot
	}
	return bucketNone
}
