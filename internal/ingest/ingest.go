// Package ingest loads PDF documents into the pipeline's per-page input
// form. Text comes from the PDF's native text layer when one exists; pages
// without one fall back to OCR when a local engine is available.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/lectern/internal/types"
)

// Request contains the parameters for loading a document.
type Request struct {
	Paths  []string     // PDF file paths (sorted by numeric suffix for multi-part books)
	Title  string       // Document title (optional, derived from filename if empty)
	OCR    OCRConfig    // OCR fallback configuration
	Logger *slog.Logger // Optional logger for progress updates
}

// Load extracts pages from the PDFs in the request and returns the raw
// document. OCR absence is never an error; pages that yield no text are
// recorded empty and the structurer reports the document empty downstream.
func Load(ctx context.Context, req Request) (*types.Document, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	if len(req.Paths) == 0 {
		return nil, fmt.Errorf("no PDF paths provided")
	}
	for _, p := range req.Paths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("PDF not found: %s", p)
		}
	}

	sortedPaths := sortPDFsByNumber(req.Paths)
	log.Info("loading document", "pdfs", len(sortedPaths), "title", req.Title)

	title := req.Title
	if title == "" {
		title = deriveTitle(sortedPaths[0])
	}

	doc := &types.Document{
		ID:    uuid.New().String(),
		Title: title,
	}

	ocr := newOCR(req.OCR, log)

	for i, path := range sortedPaths {
		log.Debug("extracting PDF", "file", filepath.Base(path), "part", i+1, "of", len(sortedPaths))
		pages, err := extractPages(ctx, path, len(doc.Pages), ocr)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", path, err)
		}
		doc.Pages = append(doc.Pages, pages...)
	}

	log.Info("document loaded", "document", doc.ID, "pages", len(doc.Pages))
	return doc, nil
}

// extractPages pulls the text layer of every page of one PDF. pageOffset is
// the page-number offset for multi-part books.
func extractPages(ctx context.Context, path string, pageOffset int, ocr *ocrEngine) ([]types.Page, error) {
	// pdfcpu validates the file and gives an authoritative page count;
	// a PDF the text-layer reader cannot open entirely is surfaced here.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	pageCount, err := api.PageCount(f, nil)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	tf, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF text layer: %w", err)
	}
	defer tf.Close()

	pages := make([]types.Page, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := types.Page{Number: pageOffset + i}

		text := pageText(reader, i)
		if strings.TrimSpace(text) == "" && ocr != nil {
			lines, confs, err := ocr.recognize(ctx, path, i)
			if err == nil {
				page.Lines = lines
				page.OCRConfidences = confs
			}
			// OCR failure leaves the page empty, by contract.
		} else {
			page.Lines = splitLines(text)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// pageText returns the plain text of a single page, empty when the page has
// no usable text layer.
func pageText(reader *pdflib.Reader, num int) string {
	if num > reader.NumPage() {
		return ""
	}
	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

// sortPDFsByNumber sorts PDF paths by their numeric suffix.
// e.g., ["book-2.pdf", "book-1.pdf", "book-10.pdf"] -> ["book-1.pdf", "book-2.pdf", "book-10.pdf"]
func sortPDFsByNumber(paths []string) []string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)

	re := regexp.MustCompile(`-(\d+)\.pdf$`)

	sort.Slice(sorted, func(i, j int) bool {
		mi := re.FindStringSubmatch(sorted[i])
		mj := re.FindStringSubmatch(sorted[j])

		// If both have numbers, sort numerically
		if len(mi) > 1 && len(mj) > 1 {
			ni, _ := strconv.Atoi(mi[1])
			nj, _ := strconv.Atoi(mj[1])
			return ni < nj
		}

		// Files without numbers come first
		if len(mi) > 1 {
			return false
		}
		if len(mj) > 1 {
			return true
		}

		// Both without numbers: alphabetical
		return sorted[i] < sorted[j]
	})

	return sorted
}

// deriveTitle extracts a title from a PDF filename.
// e.g., "crusade-europe.pdf" -> "crusade-europe"
// e.g., "my-book-1.pdf" -> "my-book"
func deriveTitle(pdfPath string) string {
	base := filepath.Base(pdfPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	// Remove numeric suffix like "-1", "-2", etc.
	re := regexp.MustCompile(`-\d+$`)
	name = re.ReplaceAllString(name, "")

	return name
}
