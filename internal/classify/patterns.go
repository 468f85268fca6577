package classify

import (
	"regexp"
	"sort"
	"strings"
)

// Patterns is the immutable pattern vocabulary shared by the line classifier
// and the chapter detector. Build one with DefaultPatterns at construction
// time; there is no package-level pattern state.
type Patterns struct {
	languages []string

	explicitHeading *regexp.Regexp // "Chapter 4", "Parte II: Title"
	romanAlone      *regexp.Regexp // bare roman numeral line
	allCaps         *regexp.Regexp // ALL CAPS heading line
	numberedSection *regexp.Regexp // "12. Title" / "12) Title"

	digitOnly      *regexp.Regexp // page number alone on a line
	footnote       *regexp.Regexp // "[3] text" / "3. text"
	footnoteMarker *regexp.Regexp // capture group for the footnote numeral
	copyright      *regexp.Regexp

	tableOfContents *regexp.Regexp
	introduction    *regexp.Regexp
	preface         *regexp.Regexp
	epilogue        *regexp.Regexp
	bibliography    *regexp.Regexp
	index           *regexp.Regexp
}

// headingKeywords maps a language code to the structural keywords that open
// an explicit chapter heading in that language.
var headingKeywords = map[string][]string{
	"en": {"Chapter", "Part", "Section"},
	"pt": {"Capítulo", "Parte", "Seção"},
}

// structuralCues maps a language code to the phrases that flag special
// document sections.
var structuralCues = map[string]map[string][]string{
	"en": {
		"toc":          {"Table of Contents", "Contents"},
		"introduction": {"Introduction"},
		"preface":      {"Preface", "Foreword"},
		"epilogue":     {"Epilogue"},
		"bibliography": {"Bibliography", "References", "Works Cited"},
		"index":        {"Index"},
	},
	"pt": {
		"toc":          {"Índice", "Sumário"},
		"introduction": {"Introdução"},
		"preface":      {"Prefácio"},
		"epilogue":     {"Epílogo"},
		"bibliography": {"Bibliografia", "Referências"},
		"index":        {"Índice Remissivo"},
	},
}

// DefaultPatterns builds the pattern vocabulary for the given languages.
// With no arguments it covers English and Portuguese.
func DefaultPatterns(languages ...string) *Patterns {
	if len(languages) == 0 {
		languages = []string{"en", "pt"}
	}

	var keywords []string
	for _, lang := range languages {
		keywords = append(keywords, headingKeywords[lang]...)
	}
	if len(keywords) == 0 {
		keywords = headingKeywords["en"]
	}

	cue := func(kind string) *regexp.Regexp {
		var phrases []string
		for _, lang := range languages {
			if cues, ok := structuralCues[lang]; ok {
				phrases = append(phrases, cues[kind]...)
			}
		}
		if len(phrases) == 0 {
			phrases = structuralCues["en"][kind]
		}
		// Longest phrases first so "Índice Remissivo" wins over "Índice".
		sort.Slice(phrases, func(i, j int) bool { return len(phrases[i]) > len(phrases[j]) })
		for i, p := range phrases {
			phrases[i] = regexp.QuoteMeta(p)
		}
		return regexp.MustCompile(`(?i)\b(` + strings.Join(phrases, "|") + `)\b`)
	}

	for i, k := range keywords {
		keywords[i] = regexp.QuoteMeta(k)
	}
	explicit := regexp.MustCompile(
		`(?i)^(` + strings.Join(keywords, "|") + `)\s+(\d{1,4}|[IVXLCDM]+)\b\s*(?:[:\-–—.]\s*(.*))?$`,
	)

	return &Patterns{
		languages:       languages,
		explicitHeading: explicit,
		romanAlone:      regexp.MustCompile(`^[IVXLCDM]+$`),
		allCaps:         regexp.MustCompile(`^[\p{Lu}][\p{Lu}\d\s.,:;'"!?&\-–—()]*$`),
		numberedSection: regexp.MustCompile(`^(\d{1,3})[.)]\s+\p{Lu}`),
		digitOnly:       regexp.MustCompile(`^[\s[:punct:]]*\d+[\s[:punct:]]*$`),
		footnote:        regexp.MustCompile(`^\[?\d{1,3}\]?[.)]?\s+\S`),
		footnoteMarker:  regexp.MustCompile(`^\[?(\d+)\]?[.)]?\s`),
		copyright:       regexp.MustCompile(`^(Copyright|©)`),
		tableOfContents: cue("toc"),
		introduction:    cue("introduction"),
		preface:         cue("preface"),
		epilogue:        cue("epilogue"),
		bibliography:    cue("bibliography"),
		index:           cue("index"),
	}
}

// Languages returns the language codes the vocabulary was built for.
func (p *Patterns) Languages() []string {
	out := make([]string, len(p.languages))
	copy(out, p.languages)
	return out
}

// HeadingTier identifies which chapter-detection pattern a line matches.
// Tiers are ordered by detection strength: explicit keyword headings beat
// bare roman numerals, which beat all-caps headings, which beat numbered
// sections.
type HeadingTier int

const (
	TierNone HeadingTier = iota
	TierNumbered
	TierAllCaps
	TierRoman
	TierExplicit
)

// HeadingTier returns the strongest heading tier the trimmed line matches,
// or TierNone. The all-caps tier requires at least minAllCaps letters so a
// lone "I" or stray punctuation does not qualify.
func (p *Patterns) HeadingTier(line string) HeadingTier {
	if p.explicitHeading.MatchString(line) {
		return TierExplicit
	}
	if p.romanAlone.MatchString(line) {
		if _, ok := RomanToArabic(line); ok {
			return TierRoman
		}
		// Roman charset but not a valid numeral ("CIVIL", "MIMIC"): still a
		// candidate for the lower tiers.
	}
	n := len(line)
	if n >= 3 && n <= 80 && p.allCaps.MatchString(line) && hasLetter(line) {
		return TierAllCaps
	}
	if p.numberedSection.MatchString(line) {
		return TierNumbered
	}
	return TierNone
}

// ExplicitHeadingParts returns the keyword, numeral and trailing title of an
// explicit heading match, or ok=false.
func (p *Patterns) ExplicitHeadingParts(line string) (keyword, numeral, title string, ok bool) {
	m := p.explicitHeading.FindStringSubmatch(line)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], strings.TrimSpace(m[3]), true
}

// NumberedSectionValue returns the leading integer of a numbered-section
// heading, or ok=false.
func (p *Patterns) NumberedSectionValue(line string) (string, bool) {
	m := p.numberedSection.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsDigitOnly reports whether the line is a bare number, optionally wrapped
// in whitespace or punctuation. Such lines are page numbers and are always
// removable.
func (p *Patterns) IsDigitOnly(line string) bool {
	return p.digitOnly.MatchString(line)
}

// IsFootnote reports whether the line starts with a footnote-style numeral
// marker followed by text.
func (p *Patterns) IsFootnote(line string) bool {
	return p.footnote.MatchString(line)
}

// FootnoteMarker parses the leading numeral of a footnote line.
func (p *Patterns) FootnoteMarker(line string) (int, bool) {
	m := p.footnoteMarker.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n := 0
	for _, r := range m[1] {
		n = n*10 + int(r-'0')
	}
	return n, true
}

// IsCopyright reports whether the line is a copyright notice.
func (p *Patterns) IsCopyright(line string) bool {
	return p.copyright.MatchString(line)
}

// Structural cue matchers used by the document structurer.

func (p *Patterns) MatchesTableOfContents(s string) bool { return p.tableOfContents.MatchString(s) }
func (p *Patterns) MatchesIntroduction(s string) bool    { return p.introduction.MatchString(s) }
func (p *Patterns) MatchesPreface(s string) bool         { return p.preface.MatchString(s) }
func (p *Patterns) MatchesEpilogue(s string) bool        { return p.epilogue.MatchString(s) }
func (p *Patterns) MatchesBibliography(s string) bool    { return p.bibliography.MatchString(s) }
func (p *Patterns) MatchesIndex(s string) bool           { return p.index.MatchString(s) }

func hasLetter(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r > 127 {
			return true
		}
	}
	return false
}
