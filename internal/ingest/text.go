package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jackzampolin/lectern/internal/types"
)

// LoadText reads a plain-text file as a document, splitting pages on form
// feeds. Useful for tests and for text dumped by external extractors.
func LoadText(path string) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	doc := FromText(string(data))
	doc.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return doc, nil
}

// FromText builds a document from raw text with form-feed page breaks.
func FromText(text string) *types.Document {
	doc := &types.Document{ID: uuid.New().String()}
	for i, pageText := range strings.Split(text, "\f") {
		doc.Pages = append(doc.Pages, types.Page{
			Number: i + 1,
			Lines:  splitLines(pageText),
		})
	}
	return doc
}
