// Package classify assigns a category to each extracted line of text using
// positional and pattern cues. Classification is deterministic: the rules are
// an ordered table evaluated in a single loop, first match wins.
package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jackzampolin/lectern/internal/types"
)

const (
	// DefaultEdgeWindow is how many lines at each page edge are considered
	// header/footer territory.
	DefaultEdgeWindow = 2
	// DefaultMaxEdgeLength is the longest a line may be and still count as
	// a running header or footer.
	DefaultMaxEdgeLength = 60
)

// Classifier assigns categories to lines. Construct with New; a Classifier
// is immutable and safe for concurrent use.
type Classifier struct {
	patterns        *Patterns
	edgeWindow      int
	maxEdgeLen      int
	numeralHeadings bool
	repeated        map[string]struct{}
	rules           []rule
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithEdgeWindow sets how many lines at each page edge are checked for
// headers and footers.
func WithEdgeWindow(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.edgeWindow = n
		}
	}
}

// WithMaxEdgeLength sets the maximum length of a header/footer candidate.
func WithMaxEdgeLength(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxEdgeLen = n
		}
	}
}

// WithRepeatedPhrases supplies normalized phrases known to repeat at the
// same page position across the document (see clean.RepeatedPhrases).
func WithRepeatedPhrases(set map[string]struct{}) Option {
	return func(c *Classifier) { c.repeated = set }
}

// WithNumeralHeadings controls the numeral-only tie-break: when true, a line
// that is a bare number outside the page-edge window is treated as a chapter
// heading ("3" alone on a page opening chapter three) instead of a page
// number. Default false.
func WithNumeralHeadings(enabled bool) Option {
	return func(c *Classifier) { c.numeralHeadings = enabled }
}

// lineContext carries one line plus its position through the rule table.
type lineContext struct {
	raw       string
	trimmed   string
	index     int // 0-indexed position within the page
	pageLines int // total lines on the page
	page      int
}

// rule is one entry in the ordered classification table. apply returns
// ok=false to pass the line to the next rule.
type rule struct {
	name  string
	apply func(c *Classifier, ln lineContext) (types.Category, float64, bool)
}

// rules in priority order; first match wins. The digit-only rule sits after
// the heading rule so a numeral chapter title (when enabled) is not eaten by
// page-number removal, and before the positional rules because a bare page
// number is removable wherever it appears.
var ruleTable = []rule{
	{"empty", ruleEmpty},
	{"chapter-heading", ruleHeading},
	{"digit-only", ruleDigitOnly},
	{"header", ruleHeader},
	{"footer", ruleFooter},
	{"footnote", ruleFootnote},
	{"content", ruleContent},
}

// New builds a Classifier around the given pattern vocabulary.
func New(patterns *Patterns, opts ...Option) *Classifier {
	c := &Classifier{
		patterns:   patterns,
		edgeWindow: DefaultEdgeWindow,
		maxEdgeLen: DefaultMaxEdgeLength,
		rules:      ruleTable,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Patterns returns the classifier's pattern vocabulary.
func (c *Classifier) Patterns() *Patterns { return c.patterns }

// Classify assigns a category and confidence to a single line given its
// position within the page.
func (c *Classifier) Classify(raw string, index, pageLines, page int) (types.Category, float64) {
	ln := lineContext{
		raw:       raw,
		trimmed:   strings.TrimSpace(raw),
		index:     index,
		pageLines: pageLines,
		page:      page,
	}
	for _, r := range c.rules {
		if cat, conf, ok := r.apply(c, ln); ok {
			return cat, conf
		}
	}
	// The content rule always matches; this is unreachable.
	return types.CategoryContent, 0
}

// ClassifyPages classifies every line of every page, producing the flat
// ordered line stream the rest of the pipeline consumes.
func (c *Classifier) ClassifyPages(pages []types.Page) []types.Line {
	var lines []types.Line
	for _, page := range pages {
		for i, raw := range page.Lines {
			cat, conf := c.Classify(raw, i, len(page.Lines), page.Number)
			ln := types.Line{
				Text:       raw,
				Page:       page.Number,
				Index:      i,
				Category:   cat,
				Confidence: conf,
			}
			if i < len(page.OCRConfidences) {
				v := page.OCRConfidences[i]
				ln.OCRConfidence = &v
			}
			lines = append(lines, ln)
		}
	}
	return lines
}

func ruleEmpty(c *Classifier, ln lineContext) (types.Category, float64, bool) {
	if ln.trimmed == "" {
		return types.CategoryEmpty, 1, true
	}
	return "", 0, false
}

func ruleHeading(c *Classifier, ln lineContext) (types.Category, float64, bool) {
	if c.patterns.IsDigitOnly(ln.trimmed) {
		// Numeral-only titles are handled by the digit-only tie-break.
		if c.numeralHeadings && !c.inHeaderZone(ln) && !c.inFooterZone(ln) {
			return types.CategoryChapterHeading, 0.5, true
		}
		return "", 0, false
	}
	tier := c.patterns.HeadingTier(ln.trimmed)
	if tier == TierNone {
		return "", 0, false
	}
	if tier == TierAllCaps && c.isRepeatedPhrase(ln.trimmed) {
		// A running header in caps is not a chapter title.
		return "", 0, false
	}
	return types.CategoryChapterHeading, headingConfidence(tier), true
}

func ruleDigitOnly(c *Classifier, ln lineContext) (types.Category, float64, bool) {
	if !c.patterns.IsDigitOnly(ln.trimmed) {
		return "", 0, false
	}
	// Guaranteed page-number removal, independent of the edge window.
	if ln.index < ln.pageLines/2 {
		return types.CategoryHeader, 1, true
	}
	return types.CategoryFooter, 1, true
}

func ruleHeader(c *Classifier, ln lineContext) (types.Category, float64, bool) {
	if c.inHeaderZone(ln) && c.isEdgeNoise(ln.trimmed) {
		return types.CategoryHeader, 0.8, true
	}
	return "", 0, false
}

func ruleFooter(c *Classifier, ln lineContext) (types.Category, float64, bool) {
	if !c.inFooterZone(ln) {
		return "", 0, false
	}
	if c.isEdgeNoise(ln.trimmed) || c.patterns.IsCopyright(ln.trimmed) {
		return types.CategoryFooter, 0.8, true
	}
	return "", 0, false
}

func ruleFootnote(c *Classifier, ln lineContext) (types.Category, float64, bool) {
	if c.patterns.IsFootnote(ln.trimmed) && len(ln.trimmed) < 150 {
		return types.CategoryFootnote, 0.7, true
	}
	return "", 0, false
}

func ruleContent(c *Classifier, ln lineContext) (types.Category, float64, bool) {
	return types.CategoryContent, 0.6, true
}

func (c *Classifier) inHeaderZone(ln lineContext) bool {
	return ln.index < c.edgeWindow
}

func (c *Classifier) inFooterZone(ln lineContext) bool {
	return ln.index >= ln.pageLines-c.edgeWindow
}

// isEdgeNoise reports whether a short edge line looks like a running header
// or footer: digit/punctuation heavy, or a phrase repeated at the same page
// position elsewhere in the document.
func (c *Classifier) isEdgeNoise(trimmed string) bool {
	if len(trimmed) >= c.maxEdgeLen {
		return false
	}
	if digitPunctHeavy(trimmed) {
		return true
	}
	return c.isRepeatedPhrase(trimmed)
}

func (c *Classifier) isRepeatedPhrase(trimmed string) bool {
	if len(c.repeated) == 0 {
		return false
	}
	_, ok := c.repeated[Normalize(trimmed)]
	return ok
}

// digitPunctHeavy reports whether fewer than half of a line's non-space
// runes are letters.
func digitPunctHeavy(s string) bool {
	letters, total := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return total > 0 && letters*2 < total
}

func headingConfidence(tier HeadingTier) float64 {
	switch tier {
	case TierExplicit:
		return 0.95
	case TierRoman:
		return 0.85
	case TierAllCaps:
		return 0.75
	case TierNumbered:
		return 0.65
	}
	return 0
}

var digitRun = regexp.MustCompile(`\d+`)
var spaceRun = regexp.MustCompile(`\s+`)

// Normalize canonicalizes a line for repetition comparison: lowercased,
// whitespace collapsed, digit runs replaced by "#" so "Page 12" and
// "Page 13" compare equal.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = digitRun.ReplaceAllString(s, "#")
	return spaceRun.ReplaceAllString(s, " ")
}
