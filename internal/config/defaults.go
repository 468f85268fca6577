package config

import (
	"github.com/jackzampolin/lectern/internal/classify"
	"github.com/jackzampolin/lectern/internal/clean"
	"github.com/jackzampolin/lectern/internal/structure"
)

// DefaultConfig returns the stock configuration. The heuristic constants
// (repetition threshold, edge window) have no principled derivation; they
// are starting points tuned against typical print books.
func DefaultConfig() *Config {
	return &Config{
		Languages:    []string{"en", "pt"},
		ReadingRates: structure.DefaultRates(),
		Cleaner: CleanerConfig{
			RepetitionThreshold: clean.DefaultRepetitionThreshold,
			EdgeWindow:          clean.DefaultEdgeWindow,
		},
		Classifier: ClassifierConfig{
			MaxEdgeLineLength: classify.DefaultMaxEdgeLength,
			NumeralHeadings:   false,
		},
		OCR: OCRConfig{
			Enabled:    true,
			Command:    "tesseract",
			DPI:        300,
			MaxRetries: 3,
		},
	}
}
