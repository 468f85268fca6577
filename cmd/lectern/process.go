package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/config"
	"github.com/jackzampolin/lectern/internal/home"
	"github.com/jackzampolin/lectern/internal/ingest"
	"github.com/jackzampolin/lectern/internal/output"
	"github.com/jackzampolin/lectern/internal/pipeline"
	"github.com/jackzampolin/lectern/internal/types"
)

var (
	docTitle  string
	writeFile bool
	noOCR     bool
)

var processCmd = &cobra.Command{
	Use:   "process <pdf> [pdf...]",
	Short: "Run the full pipeline and print the structured export",
	Long: `Process loads the given PDF (multi-part books as book-1.pdf,
book-2.pdf, ...), runs the cleaning/classification/structuring pipeline, and
prints the audiobook-ready export document.

Plain-text files (.txt, pages separated by form feeds) are accepted as well,
for text dumped by external extractors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, doc, err := runPipeline(cmd, args)
		if err != nil {
			return err
		}

		exported := res.Export()
		if !writeFile {
			return output.Write(exported)
		}

		dir, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := dir.EnsureExists(); err != nil {
			return err
		}

		format := string(output.GetFormat())
		var data []byte
		if output.GetFormat() == output.FormatJSON {
			data, err = exported.JSON()
		} else {
			data, err = exported.YAML()
		}
		if err != nil {
			return err
		}

		path := dir.ExportPath(doc.Title, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters <pdf> [pdf...]",
	Short: "Print the detected chapter markers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, err := runPipeline(cmd, args)
		if err != nil {
			return err
		}
		return output.Write(res.ChapterMarkers())
	},
}

var structureCmd = &cobra.Command{
	Use:   "structure <pdf> [pdf...]",
	Short: "Print the document structure summary",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, err := runPipeline(cmd, args)
		if err != nil {
			return err
		}
		return output.Write(res.DocumentStructure())
	},
}

var footnotesCmd = &cobra.Command{
	Use:   "footnotes <pdf> [pdf...]",
	Short: "Print extracted footnotes and references",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, err := runPipeline(cmd, args)
		if err != nil {
			return err
		}
		footnotes, references := res.FootnotesAndReferences()
		return output.Write(map[string]any{
			"footnotes":  footnotes,
			"references": references,
		})
	},
}

// runPipeline loads the input document and runs the full pipeline on it.
func runPipeline(cmd *cobra.Command, args []string) (*pipeline.Result, *types.Document, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cfg := cm.Get()

	doc, err := loadDocument(cmd, cfg, args)
	if err != nil {
		return nil, nil, err
	}

	proc := pipeline.New(cfg.PipelineSettings(), pipeline.WithLogger(slog.Default()))
	res, err := proc.Run(*doc)
	if err != nil {
		return nil, nil, err
	}
	return res, doc, nil
}

func loadDocument(cmd *cobra.Command, cfg *config.Config, args []string) (*types.Document, error) {
	if len(args) == 1 && strings.HasSuffix(args[0], ".txt") {
		doc, err := ingest.LoadText(args[0])
		if err != nil {
			return nil, err
		}
		if docTitle != "" {
			doc.Title = docTitle
		}
		return doc, nil
	}

	ocr := ingest.OCRConfig{
		Enabled:    cfg.OCR.Enabled && !noOCR,
		Command:    cfg.OCR.Command,
		DPI:        cfg.OCR.DPI,
		MaxRetries: cfg.OCR.MaxRetries,
	}
	return ingest.Load(cmd.Context(), ingest.Request{
		Paths:  args,
		Title:  docTitle,
		OCR:    ocr,
		Logger: slog.Default(),
	})
}

func init() {
	for _, cmd := range []*cobra.Command{processCmd, chaptersCmd, structureCmd, footnotesCmd} {
		cmd.Flags().StringVar(&docTitle, "title", "", "document title (default: derived from filename)")
		cmd.Flags().BoolVar(&noOCR, "no-ocr", false, "disable the OCR fallback for pages without a text layer")
	}
	processCmd.Flags().BoolVarP(&writeFile, "write", "w", false, "write the export into the home exports directory")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(chaptersCmd)
	rootCmd.AddCommand(structureCmd)
	rootCmd.AddCommand(footnotesCmd)
}
