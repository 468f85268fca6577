// Package chapters scans the classified line stream for chapter-boundary
// patterns and produces an ordered list of chapter markers.
package chapters

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackzampolin/lectern/internal/classify"
	"github.com/jackzampolin/lectern/internal/types"
)

// ErrMarkerOrder indicates markers were produced out of document order or
// with a duplicate position. The detection algorithm cannot do this; seeing
// it means a detector bug, so it is surfaced loudly instead of reordered.
var ErrMarkerOrder = errors.New("chapter markers out of document order")

// Detector finds chapter boundaries. Construct with New; a Detector is
// immutable and safe for concurrent use.
type Detector struct {
	patterns *classify.Patterns
	repeated map[string]struct{}
	log      *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithRepeatedPhrases supplies normalized running-phrase text so an all-caps
// running header is never promoted to a chapter marker.
func WithRepeatedPhrases(set map[string]struct{}) Option {
	return func(d *Detector) { d.repeated = set }
}

// WithLogger sets the logger used to record ambiguous pattern resolutions.
func WithLogger(log *slog.Logger) Option {
	return func(d *Detector) { d.log = log }
}

// New builds a Detector around the shared pattern vocabulary.
func New(patterns *classify.Patterns, opts ...Option) *Detector {
	d := &Detector{patterns: patterns}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	return d
}

// candidate is a scored potential chapter boundary.
type candidate struct {
	marker types.ChapterMarker
	tier   classify.HeadingTier
	seq    int // absolute position in the line stream
}

// Detect returns the ordered chapter markers for the classified line stream.
// At least one marker is always returned: when no pattern matches anywhere,
// an implicit untitled marker is placed at document start so downstream
// partitioning never sees an empty list.
func (d *Detector) Detect(lines []types.Line) ([]types.ChapterMarker, error) {
	var cands []candidate
	for seq, ln := range lines {
		switch ln.Category {
		case types.CategoryHeader, types.CategoryFooter, types.CategoryFootnote:
			// Never promote lines the classifier already ruled out.
			continue
		}
		trimmed := strings.TrimSpace(ln.Text)
		if trimmed == "" {
			continue
		}
		tier := d.patterns.HeadingTier(trimmed)
		if tier == classify.TierNone {
			continue
		}
		if tier == classify.TierAllCaps && d.isRunningPhrase(trimmed) {
			continue
		}
		d.logAmbiguity(trimmed, tier)
		cands = append(cands, candidate{
			marker: d.buildMarker(trimmed, tier, ln),
			tier:   tier,
			seq:    seq,
		})
	}

	cands = collapseAdjacent(cands)

	markers := make([]types.ChapterMarker, 0, len(cands))
	for _, c := range cands {
		markers = append(markers, c.marker)
	}

	if len(markers) == 0 {
		start := types.ChapterMarker{
			Title:     "",
			Kind:      types.KindChapter,
			Page:      1,
			LineIndex: 0,
		}
		if len(lines) > 0 {
			start.Page = lines[0].Page
		}
		one := 1
		start.Number = &one
		markers = append(markers, start)
	}

	if err := validateOrder(markers); err != nil {
		return nil, err
	}
	return markers, nil
}

// buildMarker fills in title, numeral and kind for a matched line.
func (d *Detector) buildMarker(trimmed string, tier classify.HeadingTier, ln types.Line) types.ChapterMarker {
	m := types.ChapterMarker{
		Title:      trimmed,
		Kind:       types.KindHeading,
		Page:       ln.Page,
		LineIndex:  ln.Index,
		Confidence: tierConfidence(tier),
	}

	switch tier {
	case classify.TierExplicit:
		keyword, numeral, title, _ := d.patterns.ExplicitHeadingParts(trimmed)
		m.Kind = keywordKind(keyword)
		if title != "" {
			m.Title = title
		}
		if n, err := strconv.Atoi(numeral); err == nil {
			m.Number = &n
		} else if n, ok := classify.RomanToArabic(strings.ToUpper(numeral)); ok {
			m.Number = &n
		}
	case classify.TierRoman:
		if n, ok := classify.RomanToArabic(trimmed); ok {
			m.Number = &n
		}
		m.Kind = types.KindChapter
	case classify.TierNumbered:
		if numeral, ok := d.patterns.NumberedSectionValue(trimmed); ok {
			if n, err := strconv.Atoi(numeral); err == nil {
				m.Number = &n
			}
		}
		m.Kind = types.KindSection
	}
	return m
}

// logAmbiguity records lines that match more than one detection tier. The
// tier order resolves these deterministically; the record exists for
// diagnosability only.
func (d *Detector) logAmbiguity(trimmed string, winner classify.HeadingTier) {
	if winner != classify.TierExplicit {
		return
	}
	// An explicit heading in caps also matches the all-caps tier.
	upper := strings.ToUpper(trimmed) == trimmed && len(trimmed) >= 3 && len(trimmed) <= 80
	if upper {
		d.log.Debug("ambiguous heading pattern resolved by tier order",
			"line", trimmed,
			"winner", "explicit",
			"also_matched", "all_caps")
	}
}

func (d *Detector) isRunningPhrase(trimmed string) bool {
	if len(d.repeated) == 0 {
		return false
	}
	_, ok := d.repeated[classify.Normalize(trimmed)]
	return ok
}

// collapseAdjacent merges candidate lines within one line of each other into
// a single marker, keeping the higher-scored one (the earlier on a tie).
// Multi-line headings like "CHAPTER IV" over "THE LONG WINTER" collapse this
// way.
func collapseAdjacent(cands []candidate) []candidate {
	var out []candidate
	for _, c := range cands {
		if len(out) == 0 {
			out = append(out, c)
			continue
		}
		prev := &out[len(out)-1]
		if c.seq-prev.seq <= 1 {
			if c.tier > prev.tier {
				*prev = c
			} else {
				// Keep the earlier marker but extend the run so a
				// three-line heading still collapses to one marker.
				prev.seq = c.seq
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

// validateOrder enforces strictly increasing (page, line) positions.
func validateOrder(markers []types.ChapterMarker) error {
	for i := 1; i < len(markers); i++ {
		prev, cur := markers[i-1], markers[i]
		if cur.Page < prev.Page ||
			(cur.Page == prev.Page && cur.LineIndex <= prev.LineIndex) {
			return fmt.Errorf("%w: marker %d at page %d line %d follows page %d line %d",
				ErrMarkerOrder, i, cur.Page, cur.LineIndex, prev.Page, prev.LineIndex)
		}
	}
	return nil
}

func keywordKind(keyword string) types.MarkerKind {
	switch strings.ToLower(keyword) {
	case "part", "parte":
		return types.KindPart
	case "section", "seção":
		return types.KindSection
	default:
		return types.KindChapter
	}
}

func tierConfidence(tier classify.HeadingTier) float64 {
	switch tier {
	case classify.TierExplicit:
		return 0.95
	case classify.TierRoman:
		return 0.85
	case classify.TierAllCaps:
		return 0.75
	case classify.TierNumbered:
		return 0.65
	}
	return 0
}
