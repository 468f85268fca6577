package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/output"
	"github.com/jackzampolin/lectern/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Convert PDF documents into audiobook-ready structured text",
	Long: `Lectern extracts text from PDF documents, strips page numbers and
running headers/footers, detects chapter boundaries, and segments the result
into a hierarchical script suitable for narration.

The pipeline includes:
  - Page cleaning (page numbers, repeated headers/footers)
  - Per-line classification (headings, footnotes, body text)
  - Pattern-based chapter detection (English and Portuguese)
  - Reading-time estimation at three narration speeds
  - Structured export as JSON or YAML`,
	Version: version.GitRelease,
	// main prints the error once; keep cobra from printing it a second time.
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.lectern/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "lectern home directory (default: ~/.lectern)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		output.SetFormat(outputFormat)

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}
