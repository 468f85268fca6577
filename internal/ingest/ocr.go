package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// OCRConfig controls the OCR fallback for pages without a text layer.
type OCRConfig struct {
	Enabled    bool
	Command    string // OCR binary, tesseract by default
	DPI        int
	MaxRetries int
}

// ocrEngine shells out to a local OCR binary. Pages are first rendered with
// pdftoppm (poppler-utils), then recognized. Both tools are optional: when
// either is missing the engine is disabled and pages stay empty.
type ocrEngine struct {
	cfg OCRConfig
	log *slog.Logger
}

// newOCR returns nil when OCR is disabled or the required tools are not on
// PATH.
func newOCR(cfg OCRConfig, log *slog.Logger) *ocrEngine {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Command == "" {
		cfg.Command = "tesseract"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if _, err := exec.LookPath(cfg.Command); err != nil {
		log.Debug("OCR engine not available", "command", cfg.Command)
		return nil
	}
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		log.Debug("pdftoppm not available, OCR fallback disabled")
		return nil
	}
	return &ocrEngine{cfg: cfg, log: log}
}

// recognize runs OCR over one page and returns its lines with per-line
// confidence hints. Transient failures are retried.
func (e *ocrEngine) recognize(ctx context.Context, pdfPath string, pageNum int) ([]string, []float64, error) {
	text, err := retry.DoWithData(
		func() (string, error) {
			return e.runPage(ctx, pdfPath, pageNum)
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.cfg.MaxRetries)),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		e.log.Debug("OCR failed", "page", pageNum, "error", err)
		return nil, nil, err
	}

	lines := splitLines(text)
	// The plain-text output carries no per-line confidence; report a flat
	// hint so downstream consumers can tell OCR text from native text.
	confs := make([]float64, len(lines))
	for i := range confs {
		confs[i] = 0.5
	}
	return lines, confs, nil
}

// runPage renders the page to a temp PNG and feeds it to the OCR binary.
func (e *ocrEngine) runPage(ctx context.Context, pdfPath string, pageNum int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "lectern-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	pageStr := fmt.Sprintf("%d", pageNum)
	render := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", e.cfg.DPI),
		"-singlefile",
		pdfPath,
		prefix,
	)
	if out, err := render.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	// "-" writes the recognized text to stdout.
	recognize := exec.CommandContext(ctx, e.cfg.Command, prefix+".png", "-")
	out, err := recognize.Output()
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", e.cfg.Command, err)
	}
	return string(out), nil
}
