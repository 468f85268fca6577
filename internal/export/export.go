// Package export flattens the document model into the portable structured
// representation consumed by narration tooling, and serializes it as JSON or
// YAML. Serialized JSON is validated against an embedded schema before it is
// returned.
package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/lectern/internal/types"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Document is the top-level export representation.
type Document struct {
	Metadata Metadata  `json:"metadata" yaml:"metadata"`
	Chapters []Chapter `json:"chapters" yaml:"chapters"`
}

// Metadata carries the document-level summary fields.
type Metadata struct {
	TotalPages           int               `json:"total_pages" yaml:"total_pages"`
	TotalChapters        int               `json:"total_chapters" yaml:"total_chapters"`
	EstimatedReadingTime types.ReadingTime `json:"estimated_reading_time" yaml:"estimated_reading_time"`
}

// Chapter is one exported chapter.
type Chapter struct {
	Number            int               `json:"number" yaml:"number"`
	Title             string            `json:"title" yaml:"title"`
	PageRange         [2]int            `json:"page_range" yaml:"page_range,flow"`
	WordCount         int               `json:"word_count" yaml:"word_count"`
	Paragraphs        []string          `json:"paragraphs" yaml:"paragraphs"`
	EstimatedDuration types.ReadingTime `json:"estimated_duration" yaml:"estimated_duration"`
}

// Build flattens the structurer's output into a Document.
func Build(summary *types.DocumentStructure, chaps []types.Chapter) *Document {
	doc := &Document{
		Metadata: Metadata{
			TotalPages:           summary.TotalPages,
			TotalChapters:        summary.TotalChapters,
			EstimatedReadingTime: summary.ReadingTime,
		},
		Chapters: make([]Chapter, 0, len(chaps)),
	}
	for _, ch := range chaps {
		paras := ch.Paragraphs
		if paras == nil {
			paras = []string{}
		}
		doc.Chapters = append(doc.Chapters, Chapter{
			Number:            ch.Number,
			Title:             ch.Title,
			PageRange:         [2]int{ch.StartPage, ch.EndPage},
			WordCount:         ch.WordCount,
			Paragraphs:        paras,
			EstimatedDuration: ch.Duration,
		})
	}
	return doc
}

// JSON serializes the document with stable field order and validates the
// result against the export schema.
func (d *Document) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode export document: %w", err)
	}
	data := buf.Bytes()
	if err := Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// YAML serializes the document as YAML.
func (d *Document) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode export document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks serialized JSON against the export schema.
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode export JSON for validation: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("export does not match schema: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("export.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load export schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("export.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile export schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}
